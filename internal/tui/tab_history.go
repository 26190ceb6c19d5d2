package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/greenlint/internal/cli"
	"github.com/theirongolddev/greenlint/internal/tui/components"
	"github.com/theirongolddev/greenlint/internal/tui/theme"
)

func (a App) renderHistoryTab(cw int) string {
	t := theme.Active
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)

	switch {
	case a.opts.History == nil:
		return components.ContentCard("History", mutedStyle.Render("History is disabled. Enable it in Settings or the config file."), cw)
	case a.histErr != nil:
		return components.ContentCard("History", warnStyle.Render("Could not read history: "+a.histErr.Error()), cw)
	case len(a.history) == 0:
		return components.ContentCard("History", mutedStyle.Render("No recorded scans for this root yet. Run `greenlint --record` to add one."), cw)
	}

	// Records arrive newest first; trends read left to right.
	n := len(a.history)
	carbon := make([]float64, n)
	scores := make([]float64, n)
	for i, rec := range a.history {
		carbon[n-1-i] = rec.Carbon
		scores[n-1-i] = float64(rec.Score)
	}

	passing := 0
	for _, rec := range a.history {
		if rec.Passed {
			passing++
		}
	}

	labelStyle := mutedStyle
	trend := labelStyle.Render("Carbon  ") + components.Sparkline(carbon, t.Green) + "\n" +
		labelStyle.Render("Score   ") + components.Sparkline(scores, t.Accent) + "\n" +
		labelStyle.Render(fmt.Sprintf("%d of last %d scans passed, %s points total",
			passing, n, cli.FormatNumber(int64(a.baseline.TotalPoints))))

	var b strings.Builder
	b.WriteString(components.ContentCard(fmt.Sprintf("Trend (%d scans)", n), trend, cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("Recorded Scans", a.renderHistoryTable(cw), cw))
	return b.String()
}

func (a App) renderHistoryTable(cw int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(cw)

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	carbonStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)

	// Date, Result, Carbon, Cost, E/W, Score, Badges
	fixed := 16 + 6 + 12 + 10 + 7 + 5 + 6
	badgeW := max(0, innerW-fixed)

	var body strings.Builder
	body.WriteString(headerStyle.Render(fmt.Sprintf("%-16s %-6s %12s %10s %7s %5s", "Date", "Result", "Carbon", "Cost", "E/W", "Score")))
	if badgeW > 8 {
		body.WriteString(headerStyle.Render(" Badges"))
	}
	body.WriteString("\n")
	body.WriteString(mutedStyle.Render(strings.Repeat("─", min(innerW, fixed+badgeW))))

	for _, rec := range a.history {
		verdict := "PASS"
		if !rec.Passed {
			verdict = "FAIL"
		}
		body.WriteString("\n")
		body.WriteString(mutedStyle.Render(fmt.Sprintf("%-16s ", rec.CreatedAt.Local().Format("2006-01-02 15:04"))))
		body.WriteString(lipgloss.NewStyle().Foreground(verdictColor(rec.Passed)).Background(t.Surface).Bold(true).Render(fmt.Sprintf("%-6s", verdict)))
		body.WriteString(carbonStyle.Render(fmt.Sprintf(" %12s", cli.FormatCarbon(rec.Carbon))))
		body.WriteString(rowStyle.Render(fmt.Sprintf(" %10s %7s", cli.FormatCost(rec.Cost), fmt.Sprintf("%d/%d", rec.Errors, rec.Warnings))))
		body.WriteString(lipgloss.NewStyle().Foreground(scoreColor(rec.Score)).Background(t.Surface).Render(fmt.Sprintf(" %5d", rec.Score)))
		if badgeW > 8 && len(rec.Badges) > 0 {
			labels := make([]string, len(rec.Badges))
			for i, id := range rec.Badges {
				labels[i] = cli.BadgeLabel(id)
			}
			body.WriteString(mutedStyle.Render(" " + truncStr(strings.Join(labels, ", "), badgeW-1)))
		}
	}
	return body.String()
}
