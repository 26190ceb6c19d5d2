package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/greenlint/internal/cli"
	"github.com/theirongolddev/greenlint/internal/tui/components"
	"github.com/theirongolddev/greenlint/internal/tui/theme"
)

const overviewTopN = 6

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	r := a.result
	var b strings.Builder

	// Row 1: headline numbers
	errs, warns, infos := r.Counts()
	carbonNote := "first recorded scan"
	if a.baseline.Scans > 0 {
		carbonNote = "prev " + cli.FormatCarbon(a.baseline.LastCarbon)
		if a.score.CarbonReduction != 0 {
			carbonNote += fmt.Sprintf(" (%+.0f%%)", -a.score.CarbonReduction)
		}
	}
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Carbon", Value: cli.FormatCarbon(r.TotalCarbon), Note: carbonNote, Color: t.ForUsage(r.Budget.CarbonUsed)},
		{Label: "Cost", Value: cli.FormatCost(r.TotalCost), Note: fmt.Sprintf("%s API calls", cli.FormatNumber(int64(r.APICalls)))},
		{Label: "Violations", Value: fmt.Sprintf("%d", len(r.Violations)), Note: fmt.Sprintf("%dE %dW %dI, %d tips", errs, warns, infos, len(r.Suggestions)), Color: verdictColor(r.Passed)},
		{Label: "Score", Value: fmt.Sprintf("%d/100", a.score.Score), Note: fmt.Sprintf("%s files", cli.FormatNumber(int64(r.FilesScanned))), Color: scoreColor(a.score.Score)},
	}, cw))
	b.WriteString("\n")

	// Row 2: budgets + sustainability
	if a.isCompactLayout() {
		b.WriteString(a.renderBudgetCard(cw) + "\n" + a.renderSustainabilityCard(cw) + "\n")
	} else {
		halves := components.LayoutRow(cw, 2)
		b.WriteString(components.CardRow([]string{
			a.renderBudgetCard(halves[0]),
			a.renderSustainabilityCard(halves[1]),
		}))
		b.WriteString("\n")
	}

	// Row 3: top models by carbon, regions by intensity
	modelBars := make([]components.Bar, 0, overviewTopN)
	for i, m := range r.Models {
		if i == overviewTopN {
			break
		}
		modelBars = append(modelBars, components.Bar{
			Label: m.Name, Value: m.Carbon, Text: cli.FormatCarbon(m.Carbon), Color: t.ForTier(m.Tier),
		})
	}
	regionBars := make([]components.Bar, 0, overviewTopN)
	for i, rg := range r.Regions {
		if i == overviewTopN {
			break
		}
		regionBars = append(regionBars, components.Bar{
			Label: rg.Name, Value: rg.Intensity, Text: cli.FormatIntensity(rg.Intensity), Color: t.ForTier(rg.Tier),
		})
	}
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	chartCard := func(title string, bars []components.Bar, empty string, w int) string {
		body := muted.Render(empty)
		if len(bars) > 0 {
			body = components.HBarChart(bars, components.CardInnerWidth(w))
		}
		return components.ContentCard(title, body, w)
	}

	if a.isCompactLayout() {
		b.WriteString(chartCard("Top Models by Carbon", modelBars, "No model references.", cw))
		b.WriteString("\n")
		b.WriteString(chartCard("Regions by Intensity", regionBars, "No regions referenced.", cw))
	} else {
		halves := components.LayoutRow(cw, 2)
		b.WriteString(components.CardRow([]string{
			chartCard("Top Models by Carbon", modelBars, "No model references.", halves[0]),
			chartCard("Regions by Intensity", regionBars, "No regions referenced.", halves[1]),
		}))
	}
	return b.String()
}

func (a App) renderBudgetCard(w int) string {
	t := theme.Active
	bs := a.result.Budget
	innerW := components.CardInnerWidth(w)

	const labelW = 8
	// label + space + bar + space + pct(4) + 2 + "used / ceiling"
	barW := max(8, innerW-labelW-2-4-2-24)

	rows := []string{
		components.BudgetBar("Carbon", bs.CarbonUsed, cli.FormatCarbon(a.result.TotalCarbon), cli.FormatCarbon(bs.CarbonCeiling), labelW, barW),
		components.BudgetBar("Cost", bs.CostUsed, cli.FormatCost(a.result.TotalCost), cli.FormatCost(bs.CostCeiling), labelW, barW),
	}
	if bs.DailyBudget > 0 {
		rows = append(rows, components.BudgetBar("Daily", bs.ProjectedDaily/bs.DailyBudget,
			cli.FormatCarbon(bs.ProjectedDaily), cli.FormatCarbon(bs.DailyBudget), labelW, barW))
	}
	if bs.MonthlyBudget > 0 {
		rows = append(rows, components.BudgetBar("Monthly", bs.ProjectedMonthly/bs.MonthlyBudget,
			cli.FormatCarbon(bs.ProjectedMonthly), cli.FormatCarbon(bs.MonthlyBudget), labelW, barW))
	}

	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	if bs.DailyUsers > 0 && bs.DailyBudget == 0 && bs.MonthlyBudget == 0 {
		rows = append(rows, muted.Render(fmt.Sprintf("%s users: %s/day, %s/month",
			cli.FormatNumber(int64(bs.DailyUsers)), cli.FormatCarbon(bs.ProjectedDaily), cli.FormatCarbon(bs.ProjectedMonthly))))
	}
	if bs.AlertAt > 0 {
		rows = append(rows, muted.Render(fmt.Sprintf("alert at %s of budget", cli.FormatPercent(bs.AlertAt))))
	}
	return components.ContentCard("Budgets", strings.Join(rows, "\n"), w)
}

func (a App) renderSustainabilityCard(w int) string {
	t := theme.Active
	s := a.score

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	badgeStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	intensity := "n/a"
	if s.Intensity > 0 {
		intensity = cli.FormatIntensity(s.Intensity)
	}

	var lines []string
	lines = append(lines, labelStyle.Render("Score      ")+
		lipgloss.NewStyle().Foreground(scoreColor(s.Score)).Background(t.Surface).Bold(true).Render(fmt.Sprintf("%d/100", s.Score)))
	lines = append(lines, labelStyle.Render("Points     ")+valueStyle.Render(fmt.Sprintf("+%d (total %s)", s.Points, cli.FormatNumber(int64(s.TotalPoints)))))
	lines = append(lines, labelStyle.Render("Intensity  ")+valueStyle.Render(intensity))
	if s.CarbonReduction != 0 {
		lines = append(lines, labelStyle.Render("Reduction  ")+valueStyle.Render(fmt.Sprintf("%.1f%% vs last scan", s.CarbonReduction)))
	}

	if len(s.Badges) == 0 {
		lines = append(lines, dimStyle.Render("No badges yet."))
	} else {
		names := make([]string, len(s.Badges))
		for i, id := range s.Badges {
			names[i] = "★ " + cli.BadgeLabel(id)
		}
		lines = append(lines, badgeStyle.Render(strings.Join(names, "  ")))
	}
	if a.opts.History == nil {
		lines = append(lines, dimStyle.Render("History disabled: no streaks or trends."))
	}
	return components.ContentCard("Sustainability", strings.Join(lines, "\n"), w)
}

func verdictColor(passed bool) lipgloss.Color {
	if passed {
		return theme.Active.Green
	}
	return theme.Active.Red
}

func scoreColor(score int) lipgloss.Color {
	t := theme.Active
	switch {
	case score >= 80:
		return t.GreenBright
	case score >= 50:
		return t.Yellow
	}
	return t.Red
}
