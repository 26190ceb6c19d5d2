package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/greenlint/internal/model"
)

// Theme colors (Flexoki Dark)
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
	ColorBlue      = lipgloss.Color("#4385BE")
	ColorYellow    = lipgloss.Color("#D0A215")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	passStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorGreen)

	failStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorRed)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// SeverityStyle returns the foreground style for a severity.
func SeverityStyle(s model.Severity) lipgloss.Style {
	switch s {
	case model.SeverityError:
		return lipgloss.NewStyle().Foreground(ColorRed)
	case model.SeverityWarning:
		return lipgloss.NewStyle().Foreground(ColorOrange)
	}
	return lipgloss.NewStyle().Foreground(ColorBlue)
}

// TierColor maps a model or region tier to a theme color.
func TierColor(tier string) lipgloss.Color {
	switch tier {
	case string(model.TierHeavy), string(model.RegionDirty):
		return ColorRed
	case string(model.TierMedium), string(model.RegionModerate):
		return ColorYellow
	case string(model.TierLight), string(model.RegionGreen):
		return ColorGreen
	}
	return ColorTextMuted
}

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Widths  []int // optional column widths, auto-calculated if nil
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(55).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// RenderTable renders a bordered table with headers and rows. The first
// column is left-aligned, the rest right-aligned. A row of exactly "---"
// draws a separator.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return ""
	}

	numCols := len(t.Headers)
	if numCols == 0 {
		numCols = len(t.Rows[0])
	}
	widths := columnWidths(t, numCols)

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}

	b.WriteString(rule("╭", "┬", "╮", widths))
	if len(t.Headers) > 0 {
		b.WriteString(row(t.Headers, widths, headerStyle, false))
		b.WriteString(rule("├", "┼", "┤", widths))
	}
	for _, r := range t.Rows {
		if len(r) == 1 && r[0] == "---" {
			b.WriteString(rule("├", "┼", "┤", widths))
			continue
		}
		b.WriteString(row(r, widths, valueStyle, true))
	}
	b.WriteString(rule("╰", "┴", "╯", widths))
	return b.String()
}

func columnWidths(t Table, numCols int) []int {
	widths := make([]int, numCols)
	if t.Widths != nil {
		copy(widths, t.Widths)
		return widths
	}
	for i, h := range t.Headers {
		widths[i] = max(widths[i], lipgloss.Width(h))
	}
	for _, r := range t.Rows {
		for i, cell := range r {
			if i < numCols {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}
	return widths
}

func rule(left, mid, right string, widths []int) string {
	var b strings.Builder
	b.WriteString(left)
	for i, w := range widths {
		b.WriteString(strings.Repeat("─", w+2))
		if i < len(widths)-1 {
			b.WriteString(mid)
		}
	}
	b.WriteString(right)
	return dimStyle.Render(b.String()) + "\n"
}

func row(cells []string, widths []int, style lipgloss.Style, alignRight bool) string {
	var b strings.Builder
	b.WriteString(dimStyle.Render("│"))
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		pad := strings.Repeat(" ", max(0, w-lipgloss.Width(cell)))
		if i == 0 || !alignRight {
			cell = " " + cell + pad + " "
		} else {
			cell = " " + pad + cell + " "
		}
		b.WriteString(style.Render(cell))
		b.WriteString(dimStyle.Render("│"))
	}
	return b.String() + "\n"
}

// RenderProgressBar renders a simple text progress bar.
func RenderProgressBar(current, total int, width int) string {
	if total <= 0 {
		return ""
	}
	bar := ProportionBar(float64(current)/float64(total), width)
	return fmt.Sprintf("[%s] %s/%s",
		mutedStyle.Render(bar),
		FormatNumber(int64(current)),
		FormatNumber(int64(total)),
	)
}

// RenderSparkline generates a unicode block sparkline from a series of values.
func RenderSparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	peak := values[0]
	for _, v := range values[1:] {
		peak = max(peak, v)
	}
	if peak == 0 {
		peak = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := int(v / peak * float64(len(blocks)-1))
		idx = max(0, min(len(blocks)-1, idx))
		b.WriteRune(blocks[idx])
	}
	return b.String()
}

// RenderBudgetBar renders one labelled budget line, colored by how much of
// the budget is used.
func RenderBudgetBar(label, used, ceiling string, frac float64) string {
	color := ColorGreen
	switch {
	case frac > 1:
		color = ColorRed
	case frac >= 0.8:
		color = ColorOrange
	}
	bar := lipgloss.NewStyle().Foreground(color).Render(ProportionBar(frac, BarWidth))
	return fmt.Sprintf("  %-8s %s %s / %s (%s)",
		label, bar, valueStyle.Render(used), mutedStyle.Render(ceiling), FormatPercent(frac))
}

// RenderSummary renders the terminal verdict for a scan.
func RenderSummary(r *model.ScanResult, limit int) string {
	if limit <= 0 {
		limit = DefaultMaxViolations
	}
	var b strings.Builder

	b.WriteString(RenderTitle("greenlint"))
	b.WriteString("\n\n")

	verdict := passStyle.Render("PASSED")
	if !r.Passed {
		verdict = failStyle.Render("FAILED")
	}
	if r.Strict {
		verdict += mutedStyle.Render(" (strict)")
	}
	fmt.Fprintf(&b, "  %s  %s files, %s API calls\n\n", verdict,
		FormatNumber(int64(r.FilesScanned)), FormatNumber(int64(r.APICalls)))

	b.WriteString(RenderBudgetBar("Carbon", FormatCarbon(r.TotalCarbon), FormatCarbon(r.Budget.CarbonCeiling), r.Budget.CarbonUsed))
	b.WriteString("\n")
	b.WriteString(RenderBudgetBar("Cost", FormatCost(r.TotalCost), FormatCost(r.Budget.CostCeiling), r.Budget.CostUsed))
	b.WriteString("\n\n")

	if len(r.Violations) > 0 {
		t := Table{Title: "Violations", Headers: []string{"Location", "Severity", "Rule", "Message"}}
		for i, v := range r.Violations {
			if i == limit {
				t.Rows = append(t.Rows, []string{fmt.Sprintf("… and %d more", len(r.Violations)-limit)})
				break
			}
			t.Rows = append(t.Rows, []string{FormatLocation(v), SeverityStyle(v.Severity).Render(string(v.Severity)), v.Rule, truncate(v.Message, 72)})
		}
		b.WriteString(RenderTable(t))
		b.WriteString("\n")
	}
	if n := len(r.Suggestions); n > 0 {
		fmt.Fprintf(&b, "  %s\n\n", mutedStyle.Render(fmt.Sprintf("%d suggestions; see the report or --format json", n)))
	}

	b.WriteString("  ")
	b.WriteString(dimStyle.Render(Disclaimer))
	b.WriteString("\n")
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
