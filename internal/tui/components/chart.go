package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/greenlint/internal/tui/theme"
)

// Sparkline renders a unicode sparkline from values.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	peak := values[0]
	for _, v := range values[1:] {
		peak = max(peak, v)
	}
	if peak == 0 {
		peak = 1
	}

	var buf strings.Builder
	buf.Grow(len(values) * 3)
	for _, v := range values {
		idx := min(len(blocks)-1, max(0, int(v/peak*float64(len(blocks)-1))))
		buf.WriteRune(blocks[idx]) //nolint:gosec // bounds checked above
	}

	return lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render(buf.String())
}

// Bar is one row of a horizontal bar chart.
type Bar struct {
	Label string
	Value float64
	Text  string // shown after the bar; defaults to the value
	Color lipgloss.Color
}

// HBarChart renders labelled horizontal bars scaled to the largest value.
func HBarChart(bars []Bar, width int) string {
	if len(bars) == 0 {
		return ""
	}
	t := theme.Active

	labelW, textW := 0, 0
	peak := 0.0
	for i := range bars {
		if bars[i].Text == "" {
			bars[i].Text = fmt.Sprintf("%.2f", bars[i].Value)
		}
		labelW = max(labelW, lipgloss.Width(bars[i].Label))
		textW = max(textW, lipgloss.Width(bars[i].Text))
		peak = max(peak, bars[i].Value)
	}
	labelW = min(labelW, width/3)
	barMax := max(1, width-labelW-textW-2)
	if peak == 0 {
		peak = 1
	}

	labelStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	textStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	for i, bar := range bars {
		color := bar.Color
		if color == "" {
			color = t.Accent
		}
		n := int(bar.Value / peak * float64(barMax))
		if bar.Value > 0 && n == 0 {
			n = 1
		}
		label := bar.Label
		if lipgloss.Width(label) > labelW {
			label = string([]rune(label)[:max(1, labelW-1)]) + "…"
		}
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)))
		b.WriteString(spaceStyle.Render(" "))
		b.WriteString(lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render(strings.Repeat("█", n)))
		b.WriteString(spaceStyle.Render(strings.Repeat(" ", barMax-n+1)))
		b.WriteString(textStyle.Render(fmt.Sprintf("%*s", textW, bar.Text)))
		if i < len(bars)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
