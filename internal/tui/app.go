// Package tui provides the interactive Bubble Tea dashboard for greenlint.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/greenlint/internal/config"
	"github.com/theirongolddev/greenlint/internal/estimate"
	"github.com/theirongolddev/greenlint/internal/model"
	"github.com/theirongolddev/greenlint/internal/pipeline"
	"github.com/theirongolddev/greenlint/internal/store"
	"github.com/theirongolddev/greenlint/internal/tui/components"
	"github.com/theirongolddev/greenlint/internal/tui/theme"
)

// ScanDoneMsg is sent when a scan finishes.
type ScanDoneMsg struct {
	Result  *model.ScanResult
	Err     error
	Elapsed time.Duration
}

// ProgressMsg reports file analysis progress.
type ProgressMsg struct {
	Current int
	Total   int
}

// HistoryMsg carries recorded scans for the current root.
type HistoryMsg struct {
	Records  []store.Record
	Baseline model.Baseline
	Err      error
}

// Options configures the dashboard.
type Options struct {
	Root       string
	PolicyPath string
	Scan       pipeline.Options // Policy is ignored; the app owns a PolicyStore
	History    *store.History   // nil disables the History tab
	AutoRescan time.Duration    // 0 = manual only
}

// App is the root Bubble Tea model.
type App struct {
	opts     Options
	policies *config.PolicyStore

	// Data
	result   *model.ScanResult
	scanErr  error
	loaded   bool
	scanTime time.Duration
	score    model.Sustainability
	history  []store.Record
	baseline model.Baseline
	histErr  error

	// Rescan state
	autoRescan bool
	lastScan   time.Time
	rescanning bool

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool

	// Per-tab state
	viol     violationsState
	settings settingsState

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals SetupValues
	needSetup bool

	// Loading: channel-based progress subscription
	spinner     spinner.Model
	progress    int
	progressMax int
	loadSub     chan tea.Msg
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180

	scrollOverhead    = 8 // header + status bar + card chrome for half-page calc
	minHalfPageScroll = 1
	minContentHeight  = 5

	historyLimit = 30
)

// loadConfigOrDefault loads config, returning defaults on error so the
// dashboard can always start.
func loadConfigOrDefault() config.Config {
	cfg, err := config.Load()
	if err != nil {
		return config.DefaultConfig()
	}
	return cfg
}

// NewApp creates a new dashboard model.
func NewApp(opts Options) App {
	if opts.Root == "" {
		opts.Root = "."
	}
	if opts.PolicyPath == "" {
		opts.PolicyPath = config.PolicyPath(opts.Root, "")
	}
	if opts.Scan.Analyzer == nil {
		if an, err := pipeline.NewAnalyzer(estimate.New(opts.Scan.Estimator), pipeline.DefaultCacheSize); err == nil {
			opts.Scan.Analyzer = an
		}
	}

	policies := config.NewPolicyStore(opts.PolicyPath)
	cfg := loadConfigOrDefault()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	return App{
		opts:       opts,
		policies:   policies,
		autoRescan: opts.AutoRescan > 0,
		needSetup:  !config.Exists(),
		setupVals:  DefaultSetupValues(cfg, policies.Current()),
		spinner:    sp,
		loadSub:    make(chan tea.Msg, 1),
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnableMouseCellMotion,
		scanCmd(a.opts, a.policies.Current(), a.loadSub),
		a.spinner.Tick,
		tickCmd(),
	}
	if a.opts.History != nil {
		cmds = append(cmds, historyCmd(a.opts.History, a.opts.Root))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.setupForm != nil {
			return a, nil
		}
		return a.updateMouse(msg)

	case tea.KeyMsg:
		return a.updateKey(msg)

	case ProgressMsg:
		a.progress = msg.Current
		a.progressMax = msg.Total
		return a, waitForLoadMsg(a.loadSub)

	case ScanDoneMsg:
		first := !a.loaded
		a.loaded = true
		a.rescanning = false
		a.lastScan = time.Now()
		a.scanErr = msg.Err
		if msg.Err == nil {
			a.result = msg.Result
			a.scanTime = msg.Elapsed
			a.score = pipeline.Score(a.result, a.baseline)
			a.viol.clamp(len(a.filteredViolations()))
		}

		if first && a.needSetup {
			files := 0
			if a.result != nil {
				files = a.result.FilesScanned
			}
			a.setupForm = NewSetupForm(a.opts.Root, files, &a.setupVals)
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
			}
			return a, a.setupForm.Init()
		}
		return a, nil

	case HistoryMsg:
		a.histErr = msg.Err
		if msg.Err == nil {
			a.history = msg.Records
			a.baseline = msg.Baseline
			if a.result != nil {
				a.score = pipeline.Score(a.result, a.baseline)
			}
		}
		return a, nil

	case spinner.TickMsg:
		if !a.loaded || a.rescanning {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		if a.loaded && a.autoRescan && !a.rescanning && a.opts.AutoRescan > 0 &&
			time.Since(a.lastScan) >= a.opts.AutoRescan {
			cmds = append(cmds, a.startRescan())
			a.rescanning = true
		}
		return a, tea.Batch(cmds...)
	}

	// Forward unhandled messages to the setup form (cursor blinks, etc.)
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	return a, nil
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if a.activeTab == tabViolations && !a.viol.searching {
			a.viol.move(-1, len(a.filteredViolations()))
		}
	case tea.MouseButtonWheelDown:
		if a.activeTab == tabViolations && !a.viol.searching {
			a.viol.move(1, len(a.filteredViolations()))
		}
	case tea.MouseButtonLeft:
		if msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}
	if !a.loaded {
		return a, nil
	}

	// First-run setup wizard intercepts all keys
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.activeTab == tabSettings && a.settings.editing {
		return a.updateSettingsInput(msg)
	}
	if a.activeTab == tabViolations && a.viol.searching {
		return a.updateViolationsSearch(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch a.activeTab {
	case tabViolations:
		if m, cmd, handled := a.updateViolationsKey(key); handled {
			return m, cmd
		}
	case tabSettings:
		switch key {
		case "j", "down":
			if a.settings.cursor < settingsFieldCount-1 {
				a.settings.cursor++
			}
			return a, nil
		case "k", "up":
			if a.settings.cursor > 0 {
				a.settings.cursor--
			}
			return a, nil
		case "enter":
			return a.settingsStartEdit()
		}
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "r":
		if a.rescanning {
			return a, nil
		}
		a.rescanning = true
		return a, tea.Batch(a.startRescan(), a.spinner.Tick)
	case "R":
		if a.opts.AutoRescan > 0 {
			a.autoRescan = !a.autoRescan
		}
		return a, nil
	case "left":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	}
	if len(key) == 1 {
		if idx := components.TabIdxByKey(rune(key[0])); idx >= 0 {
			a.activeTab = idx
		}
	}
	return a, nil
}

// startRescan reloads the policy from disk and rescans without the
// progress screen.
func (a App) startRescan() tea.Cmd {
	_ = a.policies.Reload()
	cmds := []tea.Cmd{rescanCmd(a.opts, a.policies.Current())}
	if a.opts.History != nil {
		cmds = append(cmds, historyCmd(a.opts.History, a.opts.Root))
	}
	return tea.Batch(cmds...)
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		a.setupForm = nil
		a.needSetup = false
		rescan := a.saveSetup()
		if rescan {
			a.rescanning = true
			return a, a.startRescan()
		}
		return a, nil
	case huh.StateAborted:
		a.setupForm = nil
		a.needSetup = false
		return a, nil
	}
	return a, cmd
}

// saveSetup persists the wizard answers and reports whether a policy was
// written, in which case the caller rescans.
func (a *App) saveSetup() bool {
	cfg := loadConfigOrDefault()
	a.setupVals.Apply(&cfg)
	theme.SetActive(cfg.Appearance.Theme)
	a.settings.saveErr = config.Save(cfg)

	if !a.setupVals.WritePolicy {
		return false
	}
	p, err := a.setupVals.Policy()
	if err == nil {
		err = WritePolicy(a.opts.PolicyPath, p)
	}
	if err != nil {
		a.settings.saveErr = err
		return false
	}
	return true
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  greenlint needs at least %d columns.\n",
		a.width, minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spinnerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	countStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ greenlint"))
	b.WriteString(subtitleStyle.Render(" · carbon & cost lint"))
	b.WriteString("\n\n")

	if a.progressMax > 0 {
		barW := max(20, min(40, a.width-30))
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(" Analyzing files\n\n"))
		b.WriteString(components.ProgressBar(float64(a.progress)/float64(a.progressMax), barW))
		b.WriteString("\n")
		b.WriteString(countStyle.Render(fmt.Sprintf("%d", a.progress)))
		b.WriteString(subtitleStyle.Render(" / "))
		b.WriteString(countStyle.Render(fmt.Sprintf("%d", a.progressMax)))
	} else {
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(" Discovering files..."))
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	section := func(b *strings.Builder, title string, binds []struct{ key, desc string }) {
		b.WriteString(sectionStyle.Render(title))
		b.WriteString("\n")
		for _, bind := range binds {
			fmt.Fprintf(b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")
	section(&b, "Navigation", []struct{ key, desc string }{
		{"o v b h x", "Jump to tab"},
		{"← →", "Previous / Next tab"},
		{"j k", "Move through violations"},
		{"J K", "Scroll detail pane"},
		{"^d ^u", "Half-page scroll"},
	})
	b.WriteString("\n")
	section(&b, "Violations", []struct{ key, desc string }{
		{"f", "Cycle severity filter"},
		{"/", "Search file, rule or message"},
		{"Esc", "Clear search"},
	})
	b.WriteString("\n")
	section(&b, "Actions", []struct{ key, desc string }{
		{"r", "Rescan (reloads policy)"},
		{"R", "Toggle auto-rescan"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	})
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w)

	info := components.StatusInfo{
		Root:        a.opts.Root,
		Rescanning:  a.rescanning,
		AutoRescan:  a.autoRescan,
		PolicyError: a.policies.Err(),
		Scanned:     a.result != nil,
	}
	if a.result != nil {
		info.Passed = a.result.Passed
		info.ScanTime = fmt.Sprintf("%.1fs", a.scanTime.Seconds())
	}
	statusBar := components.RenderStatusBar(w, info)

	contentH := max(minContentHeight, h-lipgloss.Height(header)-lipgloss.Height(statusBar))

	var content string
	switch {
	case a.result == nil:
		msg := "No scan result yet."
		if a.scanErr != nil {
			msg = "Scan failed: " + a.scanErr.Error()
		}
		content = components.ContentCard("greenlint", lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface).Render(msg), cw)
	default:
		switch a.activeTab {
		case tabOverview:
			content = a.renderOverviewTab(cw)
		case tabViolations:
			content = a.renderViolationsTab(cw, contentH)
		case tabBreakdown:
			content = a.renderBreakdownTab(cw)
		case tabHistory:
			content = a.renderHistoryTab(cw)
		case tabSettings:
			content = a.renderSettingsTab(cw)
		}
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// Tab indices, matching components.Tabs.
const (
	tabOverview = iota
	tabViolations
	tabBreakdown
	tabHistory
	tabSettings
)

type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// scanCmd starts the first scan in a background goroutine. It streams
// ProgressMsg updates and a final ScanDoneMsg through sub.
func scanCmd(opts Options, p *config.PolicyConfig, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			start := time.Now()
			so := opts.Scan
			so.Policy = p
			// Non-blocking send: a full channel drops the update and the
			// next one catches up.
			so.Progress = func(current, total int) {
				select {
				case sub <- ProgressMsg{Current: current, Total: total}:
				default:
				}
			}
			r, err := pipeline.Scan(context.Background(), opts.Root, so)
			sub <- ScanDoneMsg{Result: r, Err: err, Elapsed: time.Since(start)}
		}()
		return <-sub
	}
}

// waitForLoadMsg blocks until the next message arrives from the scan goroutine.
func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

// rescanCmd scans in the background with no progress UI.
func rescanCmd(opts Options, p *config.PolicyConfig) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		so := opts.Scan
		so.Policy = p
		so.Progress = nil
		r, err := pipeline.Scan(context.Background(), opts.Root, so)
		return ScanDoneMsg{Result: r, Err: err, Elapsed: time.Since(start)}
	}
}

func historyCmd(h *store.History, root string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		recs, err := h.Recent(ctx, root, historyLimit)
		if err != nil {
			return HistoryMsg{Err: err}
		}
		base, err := h.Baseline(ctx, root)
		return HistoryMsg{Records: recs, Baseline: base, Err: err}
	}
}

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW
		if i < len(components.Tabs)-1 {
			pos++ // separator
		}
	}
	return -1
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	var result strings.Builder
	for i, line := range lines {
		result.WriteString(lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg)))
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}
