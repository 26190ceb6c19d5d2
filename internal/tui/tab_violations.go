package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/greenlint/internal/cli"
	"github.com/theirongolddev/greenlint/internal/model"
	"github.com/theirongolddev/greenlint/internal/tui/components"
	"github.com/theirongolddev/greenlint/internal/tui/theme"
)

// Severity filters, cycled with "f".
const (
	filterAll = iota
	filterErrors
	filterWarnings
	filterInfo
	filterSuggestions
	filterCount
)

var filterNames = [filterCount]string{"all", "errors", "warnings", "info", "suggestions"}

// violationsState holds the violations tab state.
type violationsState struct {
	cursor       int
	offset       int // scroll offset for the list
	detailScroll int
	filter       int

	searching   bool
	searchInput textinput.Model
	searchQuery string
}

func (s *violationsState) clamp(n int) {
	if s.cursor >= n {
		s.cursor = n - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

func (s *violationsState) move(delta, n int) {
	s.cursor += delta
	s.clamp(n)
	s.detailScroll = 0
}

func (s *violationsState) reset() {
	s.cursor = 0
	s.offset = 0
	s.detailScroll = 0
}

func newSearchInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "file, rule, model or message"
	ti.CharLimit = 128
	ti.Width = 40
	return ti
}

// filteredViolations applies the severity filter and search query. The
// "all" view lists violations followed by suggestions.
func (a App) filteredViolations() []model.Violation {
	if a.result == nil {
		return nil
	}
	var src []model.Violation
	switch a.viol.filter {
	case filterSuggestions:
		src = a.result.Suggestions
	case filterAll:
		src = make([]model.Violation, 0, len(a.result.Violations)+len(a.result.Suggestions))
		src = append(src, a.result.Violations...)
		src = append(src, a.result.Suggestions...)
	default:
		want := map[int]model.Severity{
			filterErrors:   model.SeverityError,
			filterWarnings: model.SeverityWarning,
			filterInfo:     model.SeverityInfo,
		}[a.viol.filter]
		for _, v := range a.result.Violations {
			if v.Severity == want {
				src = append(src, v)
			}
		}
	}
	return searchViolations(src, a.viol.searchQuery)
}

// searchViolations keeps violations whose file, rule, model, region or
// message contains query, case-insensitively.
func searchViolations(vs []model.Violation, query string) []model.Violation {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return vs
	}
	var out []model.Violation
	for _, v := range vs {
		hay := strings.ToLower(strings.Join([]string{v.File, v.Rule, v.Model, v.Region, v.Message}, "\x00"))
		if strings.Contains(hay, q) {
			out = append(out, v)
		}
	}
	return out
}

func (a App) updateViolationsKey(key string) (tea.Model, tea.Cmd, bool) {
	n := len(a.filteredViolations())
	switch key {
	case "/":
		a.viol.searching = true
		a.viol.searchInput = newSearchInput()
		a.viol.searchInput.SetValue(a.viol.searchQuery)
		a.viol.searchInput.Focus()
		return a, a.viol.searchInput.Cursor.BlinkCmd(), true
	case "f":
		a.viol.filter = (a.viol.filter + 1) % filterCount
		a.viol.reset()
		return a, nil, true
	case "esc":
		if a.viol.searchQuery != "" {
			a.viol.searchQuery = ""
			a.viol.reset()
		}
		return a, nil, true
	case "j", "down":
		a.viol.move(1, n)
		return a, nil, true
	case "k", "up":
		a.viol.move(-1, n)
		return a, nil, true
	case "g":
		a.viol.reset()
		return a, nil, true
	case "G":
		a.viol.move(n, n)
		return a, nil, true
	case "J":
		a.viol.detailScroll++
		return a, nil, true
	case "K":
		a.viol.detailScroll = max(0, a.viol.detailScroll-1)
		return a, nil, true
	case "ctrl+d":
		a.viol.move(max(minHalfPageScroll, (a.height-scrollOverhead)/2), n)
		return a, nil, true
	case "ctrl+u":
		a.viol.move(-max(minHalfPageScroll, (a.height-scrollOverhead)/2), n)
		return a, nil, true
	}
	return a, nil, false
}

// updateViolationsSearch handles key events while in search mode.
func (a App) updateViolationsSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.viol.searchQuery = strings.TrimSpace(a.viol.searchInput.Value())
		a.viol.searching = false
		a.viol.reset()
		return a, nil
	case "esc":
		a.viol.searching = false
		return a, nil
	}

	var cmd tea.Cmd
	a.viol.searchInput, cmd = a.viol.searchInput.Update(msg)
	return a, cmd
}

func (a App) renderViolationsTab(cw, h int) string {
	t := theme.Active
	list := a.filteredViolations()

	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	accentStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	title := fmt.Sprintf("Violations [%s] %d", filterNames[a.viol.filter], len(list))
	if a.viol.searchQuery != "" {
		title += fmt.Sprintf(" matching %q", a.viol.searchQuery)
	}

	var searchBar string
	if a.viol.searching {
		searchBar = accentStyle.Render("/ ") + a.viol.searchInput.View() + "\n"
		h -= 2
	}

	if len(list) == 0 {
		msg := "No violations. Nice and green."
		if a.viol.filter != filterAll || a.viol.searchQuery != "" {
			msg = "Nothing matches. [f] cycles the filter, [esc] clears search."
		}
		return searchBar + components.ContentCard(title, mutedStyle.Render(msg), cw)
	}

	sel := a.viol.cursor
	if sel >= len(list) {
		sel = len(list) - 1
	}

	if a.isCompactLayout() {
		listH := max(5, h/2)
		listCard := components.ContentCard(title, a.renderViolationList(list, sel, cw, listH), cw)
		detail := components.ContentCard(cli.FormatLocation(list[sel]), a.renderViolationDetail(list[sel], cw), cw)
		return searchBar + listCard + "\n" + detail
	}

	leftW := max(44, cw*2/5)
	rightW := cw - leftW
	leftCard := components.ContentCard(title, a.renderViolationList(list, sel, leftW, h), leftW)
	rightCard := components.ContentCard(cli.FormatLocation(list[sel]), a.renderViolationDetail(list[sel], rightW), rightW)
	return searchBar + components.CardRow([]string{leftCard, rightCard})
}

func (a App) renderViolationList(list []model.Violation, sel, w, h int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(w)

	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)

	visible := max(3, h-4) // card border (2) + title (1) + hint (1)
	offset := a.viol.offset
	if sel < offset {
		offset = sel
	}
	if sel >= offset+visible {
		offset = sel - visible + 1
	}
	end := min(len(list), offset+visible)

	var b strings.Builder
	for i := offset; i < end; i++ {
		v := list[i]
		sevColor := t.ForSeverity(v.Severity, v.Suggestion)
		marker := "●"
		if v.Suggestion {
			marker = "◆"
		}

		loc := fmt.Sprintf("%s:%d", v.File, v.Line)
		if v.File == "" {
			loc = "(scan)"
		}
		text := truncStr(fmt.Sprintf("%-*s %s", min(24, innerW/2), truncStr(loc, min(24, innerW/2)), v.Rule), innerW-2)

		style := rowStyle
		bg := t.Surface
		if i == sel {
			style = selectedStyle
			bg = t.SurfaceBright
		}
		b.WriteString(lipgloss.NewStyle().Foreground(sevColor).Background(bg).Render(marker + " "))
		b.WriteString(style.Render(fmt.Sprintf("%-*s", innerW-2, text)))
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (a App) renderViolationDetail(v model.Violation, w int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(w)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	codeStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.SurfaceHover)
	sevStyle := lipgloss.NewStyle().Foreground(t.ForSeverity(v.Severity, v.Suggestion)).Background(t.Surface).Bold(true)

	kind := strings.ToUpper(string(v.Severity))
	if v.Suggestion {
		kind = "SUGGESTION"
	}

	var lines []string
	lines = append(lines, sevStyle.Render(kind)+labelStyle.Render("  ")+headerStyle.Render(v.Rule))
	lines = append(lines, "")
	lines = append(lines, wrap(v.Message, innerW, valueStyle)...)
	lines = append(lines, "")

	field := func(label, value string) {
		if value != "" {
			lines = append(lines, labelStyle.Render(fmt.Sprintf("%-12s", label))+valueStyle.Render(value))
		}
	}
	if v.File != "" {
		field("Location", fmt.Sprintf("%s:%d:%d", v.File, v.Range.Start.Line, v.Range.Start.Column))
	}
	field("Model", v.Model)
	field("Region", v.Region)
	if v.Intensity > 0 {
		field("Intensity", cli.FormatIntensity(v.Intensity))
	}
	if v.Carbon > 0 {
		field("Carbon", cli.FormatCarbon(v.Carbon))
	}
	if v.Cost > 0 {
		field("Cost", cli.FormatCost(v.Cost))
	}
	if v.Threshold > 0 {
		field("Threshold", model.FormatAmount(v.Threshold))
	}
	if v.Count > 0 {
		field("Occurrences", fmt.Sprintf("%d", v.Count))
	}

	if len(v.Alternatives) > 0 {
		lines = append(lines, "")
		lines = append(lines, headerStyle.Render("ALTERNATIVES"))
		for _, alt := range v.Alternatives {
			lines = append(lines, valueStyle.Render("  "+alt))
		}
	}

	if v.Fix != nil {
		lines = append(lines, "")
		lines = append(lines, headerStyle.Render("FIX")+labelStyle.Render("  "+v.Fix.Title))
		for _, l := range strings.Split(strings.TrimRight(v.Fix.Text, "\n"), "\n") {
			lines = append(lines, codeStyle.Render(truncStr(l, innerW)))
		}
	}

	if a.viol.detailScroll > 0 {
		lines = lines[min(a.viol.detailScroll, len(lines)-1):]
	}
	lines = append(lines, "", labelStyle.Render("[j/k] navigate  [f] filter  [/] search  [J/K] scroll"))
	return strings.Join(lines, "\n")
}

// wrap breaks s on spaces to fit width, styling each line.
func wrap(s string, width int, style lipgloss.Style) []string {
	var out []string
	var line strings.Builder
	for _, word := range strings.Fields(s) {
		if line.Len() > 0 && lipgloss.Width(line.String())+1+lipgloss.Width(word) > width {
			out = append(out, style.Render(line.String()))
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(word)
	}
	if line.Len() > 0 {
		out = append(out, style.Render(line.String()))
	}
	return out
}
