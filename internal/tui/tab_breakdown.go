package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/greenlint/internal/cli"
	"github.com/theirongolddev/greenlint/internal/model"
	"github.com/theirongolddev/greenlint/internal/tui/components"
	"github.com/theirongolddev/greenlint/internal/tui/theme"
)

func (a App) renderBreakdownTab(cw int) string {
	var b strings.Builder
	b.WriteString(components.ContentCard("Models", a.renderModelTable(a.result.Models, cw), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("Regions", a.renderRegionTable(a.result.Regions, cw), cw))
	return b.String()
}

func (a App) renderModelTable(models []model.UsageStats, cw int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(cw)

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	costStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)
	shareStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface)

	if len(models) == 0 {
		return mutedStyle.Render("No model references found.")
	}

	total := 0.0
	for _, m := range models {
		total += m.Carbon
	}

	var body strings.Builder
	if a.isCompactLayout() {
		// Model, Tier, Calls, Carbon, Share
		nameW := max(10, innerW-7-7-12-7-4)
		body.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %-7s %7s %12s %6s", nameW, "Model", "Tier", "Calls", "Carbon", "Share")))
		body.WriteString("\n")
		body.WriteString(mutedStyle.Render(strings.Repeat("─", nameW+7+7+12+6+4)))
		for _, m := range models {
			tierStyle := lipgloss.NewStyle().Foreground(t.ForTier(m.Tier)).Background(t.Surface)
			body.WriteString("\n")
			body.WriteString(rowStyle.Render(fmt.Sprintf("%-*s ", nameW, truncStr(m.Name, nameW))))
			body.WriteString(tierStyle.Render(fmt.Sprintf("%-7s", m.Tier)))
			body.WriteString(rowStyle.Render(fmt.Sprintf(" %7s", cli.FormatNumber(int64(m.Occurrences)))))
			body.WriteString(costStyle.Render(fmt.Sprintf(" %12s", cli.FormatCarbon(m.Carbon))))
			body.WriteString(shareStyle.Render(fmt.Sprintf(" %6s", share(m.Carbon, total))))
		}
		return body.String()
	}

	// Model, Tier, Calls, Files, Tokens, Cost, Carbon, Share
	fixed := 7 + 7 + 6 + 9 + 10 + 12 + 6
	nameW := max(14, innerW-fixed-7)
	body.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %-7s %7s %6s %9s %10s %12s %6s",
		nameW, "Model", "Tier", "Calls", "Files", "Tokens", "Cost", "Carbon", "Share")))
	body.WriteString("\n")
	body.WriteString(mutedStyle.Render(strings.Repeat("─", nameW+fixed+7)))
	for _, m := range models {
		tierStyle := lipgloss.NewStyle().Foreground(t.ForTier(m.Tier)).Background(t.Surface)
		body.WriteString("\n")
		body.WriteString(rowStyle.Render(fmt.Sprintf("%-*s ", nameW, truncStr(m.Name, nameW))))
		body.WriteString(tierStyle.Render(fmt.Sprintf("%-7s", m.Tier)))
		body.WriteString(rowStyle.Render(fmt.Sprintf(" %7s %6d %9s",
			cli.FormatNumber(int64(m.Occurrences)), m.Files, cli.FormatTokens(int64(m.Tokens)))))
		body.WriteString(costStyle.Render(fmt.Sprintf(" %10s %12s", cli.FormatCost(m.Cost), cli.FormatCarbon(m.Carbon))))
		body.WriteString(shareStyle.Render(fmt.Sprintf(" %6s", share(m.Carbon, total))))
	}
	return body.String()
}

func (a App) renderRegionTable(regions []model.UsageStats, cw int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(cw)

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	if len(regions) == 0 {
		return mutedStyle.Render("No cloud regions referenced.")
	}

	// Region, Tier, Refs, Files, Intensity, bar
	fixed := 9 + 6 + 6 + 14 + 4
	nameW := 22
	barW := max(0, innerW-nameW-fixed-1)

	peak := 0.0
	for _, r := range regions {
		peak = max(peak, r.Intensity)
	}

	var body strings.Builder
	body.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %-9s %6s %6s %14s", nameW, "Region", "Tier", "Refs", "Files", "Intensity")))
	body.WriteString("\n")
	body.WriteString(mutedStyle.Render(strings.Repeat("─", min(innerW, nameW+fixed+barW))))
	for _, r := range regions {
		tierColor := t.ForTier(r.Tier)
		tierStyle := lipgloss.NewStyle().Foreground(tierColor).Background(t.Surface)
		body.WriteString("\n")
		body.WriteString(rowStyle.Render(fmt.Sprintf("%-*s ", nameW, truncStr(r.Name, nameW))))
		body.WriteString(tierStyle.Render(fmt.Sprintf("%-9s", r.Tier)))
		body.WriteString(rowStyle.Render(fmt.Sprintf(" %6d %6d %14s", r.Occurrences, r.Files, cli.FormatIntensity(r.Intensity))))
		if barW > 4 && peak > 0 {
			n := max(1, int(r.Intensity/peak*float64(barW)))
			body.WriteString(rowStyle.Render("  "))
			body.WriteString(tierStyle.Render(strings.Repeat("█", n)))
		}
	}
	return body.String()
}

func share(v, total float64) string {
	if total <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", v/total*100)
}
