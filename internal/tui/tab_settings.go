package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/greenlint/internal/cli"
	"github.com/theirongolddev/greenlint/internal/config"
	"github.com/theirongolddev/greenlint/internal/model"
	"github.com/theirongolddev/greenlint/internal/tui/components"
	"github.com/theirongolddev/greenlint/internal/tui/theme"
)

const (
	settingsFieldTheme = iota
	settingsFieldReportFile
	settingsFieldMaxViolations
	settingsFieldWorkers
	settingsFieldHistory
	settingsFieldCount // sentinel
)

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool  // flash "saved" message briefly
	saveErr error // non-nil if last save failed
}

func newSettingsInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 50
	return ti
}

func (a App) settingsStartEdit() (tea.Model, tea.Cmd) {
	cfg := loadConfigOrDefault()
	a.settings.editing = true
	a.settings.saved = false

	ti := newSettingsInput()
	switch a.settings.cursor {
	case settingsFieldTheme:
		ti.Placeholder = strings.Join(theme.Names(), ", ")
		ti.SetValue(cfg.Appearance.Theme)
	case settingsFieldReportFile:
		ti.Placeholder = "greenlint-report.md"
		ti.SetValue(cfg.General.ReportFile)
	case settingsFieldMaxViolations:
		ti.Placeholder = "20"
		ti.SetValue(strconv.Itoa(cfg.General.MaxViolations))
	case settingsFieldWorkers:
		ti.Placeholder = "0 (one per CPU)"
		ti.SetValue(strconv.Itoa(cfg.General.Workers))
	case settingsFieldHistory:
		ti.Placeholder = "true or false"
		ti.SetValue(strconv.FormatBool(cfg.History.Enabled))
	}

	ti.Focus()
	a.settings.input = ti
	return a, ti.Cursor.BlinkCmd()
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.settingsSave()
		a.settings.editing = false
		a.settings.saved = a.settings.saveErr == nil
		return a, nil
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

// settingsSave writes the edited field. Invalid values are ignored and the
// previous setting stays in place.
func (a *App) settingsSave() {
	cfg := loadConfigOrDefault()
	val := strings.TrimSpace(a.settings.input.Value())

	switch a.settings.cursor {
	case settingsFieldTheme:
		for _, name := range theme.Names() {
			if name == val {
				cfg.Appearance.Theme = val
				theme.SetActive(val)
				break
			}
		}
	case settingsFieldReportFile:
		if val != "" {
			cfg.General.ReportFile = val
		}
	case settingsFieldMaxViolations:
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			cfg.General.MaxViolations = n
			a.opts.Scan.MaxViolations = n
		}
	case settingsFieldWorkers:
		if n, err := strconv.Atoi(val); err == nil && n >= 0 {
			cfg.General.Workers = n
			a.opts.Scan.Workers = n
		}
	case settingsFieldHistory:
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.History.Enabled = b
		}
	}

	a.settings.saveErr = config.Save(cfg)
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active
	cfg := loadConfigOrDefault()

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	greenStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)
	warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)

	workers := "one per CPU"
	if cfg.General.Workers > 0 {
		workers = strconv.Itoa(cfg.General.Workers)
	}

	fields := []struct{ label, value string }{
		{"Theme", cfg.Appearance.Theme},
		{"Report File", cfg.General.ReportFile},
		{"Max Violations", strconv.Itoa(cfg.General.MaxViolations)},
		{"Workers", workers},
		{"Record History", strconv.FormatBool(cfg.History.Enabled)},
	}

	innerW := components.CardInnerWidth(cw)
	var formBody strings.Builder
	for i, f := range fields {
		if a.settings.editing && i == a.settings.cursor {
			formBody.WriteString(markerStyle.Render("▸ "))
			formBody.WriteString(accentStyle.Render(fmt.Sprintf("%-18s ", f.label)))
			formBody.WriteString(a.settings.input.View())
			formBody.WriteString("\n")
			continue
		}

		if i == a.settings.cursor {
			marker := markerStyle.Render("▸ ")
			label := selectedLabelStyle.Render(fmt.Sprintf("%-18s ", f.label+":"))
			value := selectedStyle.Render(f.value)
			formBody.WriteString(marker + label + value)
			if pad := innerW - lipgloss.Width(marker) - lipgloss.Width(label) - lipgloss.Width(value); pad > 0 {
				formBody.WriteString(lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", pad)))
			}
		} else {
			formBody.WriteString(lipgloss.NewStyle().Background(t.Surface).Render("  "))
			formBody.WriteString(labelStyle.Render(fmt.Sprintf("%-18s ", f.label+":")))
			formBody.WriteString(valueStyle.Render(f.value))
		}
		formBody.WriteString("\n")
	}

	switch {
	case a.settings.saveErr != nil:
		formBody.WriteString("\n" + warnStyle.Render(fmt.Sprintf("Save failed: %s", a.settings.saveErr)))
	case a.settings.saved:
		formBody.WriteString("\n" + greenStyle.Render("Saved!"))
	}
	formBody.WriteString("\n")
	formBody.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit  [Esc] cancel"))

	// Active policy, read-only here; edit the file or rerun setup.
	p := a.policies.Current()
	g := p.GreenPolicy
	orNone := func(s string) string {
		if s == "" {
			return "(none)"
		}
		return s
	}
	users := "(not set)"
	if n := p.DailyUsers(); n > 0 {
		users = cli.FormatNumber(int64(n))
	}

	line := func(label, value string) string {
		return labelStyle.Render(fmt.Sprintf("%-17s", label)) + valueStyle.Render(truncStr(value, max(10, innerW-17))) + "\n"
	}

	var policyBody strings.Builder
	policyBody.WriteString(line("Policy file:", a.policies.Path()))
	if msg := a.policies.Err(); msg != "" {
		policyBody.WriteString(warnStyle.Render(truncStr("Using defaults: "+msg, innerW)) + "\n")
	}
	policyBody.WriteString(line("Carbon budget:", model.FormatAmount(p.CarbonCeiling())+" gCO2e"))
	policyBody.WriteString(line("Cost budget:", cli.FormatCost(p.CostCeiling())))
	policyBody.WriteString(line("Max model tier:", orNone(string(g.MaxModelTier))))
	policyBody.WriteString(line("Allowed regions:", orNone(strings.Join(g.AllowedRegions, ", "))))
	policyBody.WriteString(line("Banned models:", orNone(strings.Join(g.BannedModels, ", "))))
	policyBody.WriteString(line("Require caching:", strconv.FormatBool(g.RequireCaching)))
	policyBody.WriteString(line("Strict:", strconv.FormatBool(p.Strict())))
	policyBody.WriteString(line("Daily users:", users))
	policyBody.WriteString(line("Generation:", strconv.FormatUint(a.policies.Generation(), 10)))

	var infoBody strings.Builder
	infoBody.WriteString(line("Scan root:", a.opts.Root))
	infoBody.WriteString(line("Config file:", config.Path()))
	if a.result != nil {
		infoBody.WriteString(line("Files scanned:", cli.FormatNumber(int64(a.result.FilesScanned))))
	}
	infoBody.WriteString(line("Scan time:", fmt.Sprintf("%.1fs", a.scanTime.Seconds())))
	history := "disabled"
	if a.opts.History != nil {
		history = fmt.Sprintf("%d recorded scans", a.baseline.Scans)
	}
	infoBody.WriteString(strings.TrimSuffix(line("History:", history), "\n"))

	var b strings.Builder
	b.WriteString(components.ContentCard("Settings", formBody.String(), cw))
	b.WriteString("\n")
	if a.isCompactLayout() {
		b.WriteString(components.ContentCard("Policy", strings.TrimSuffix(policyBody.String(), "\n"), cw))
		b.WriteString("\n")
		b.WriteString(components.ContentCard("General", infoBody.String(), cw))
		return b.String()
	}
	halves := components.LayoutRow(cw, 2)
	b.WriteString(components.CardRow([]string{
		components.ContentCard("Policy", strings.TrimSuffix(policyBody.String(), "\n"), halves[0]),
		components.ContentCard("General", infoBody.String(), halves[1]),
	}))
	return b.String()
}
