package cli

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/greenlint/internal/model"
)

// DefaultMaxViolations caps the report's violation list.
const DefaultMaxViolations = 20

// BarWidth is the width of the report's budget bars.
const BarWidth = 20

// Disclaimer labels every estimate surfaced to users.
const Disclaimer = "Estimates are approximate: tokens are inferred from nearby string literals and priced at per-tier rates. They are a relative signal, not a measurement."

// Report renders the markdown summary for a scan. The output depends only
// on r and limit, so rendering twice yields identical bytes.
func Report(r *model.ScanResult, limit int) string {
	if limit <= 0 {
		limit = DefaultMaxViolations
	}
	var b strings.Builder

	b.WriteString("# greenlint report\n\n")
	status := "✅ PASSED"
	if !r.Passed {
		status = "❌ FAILED"
	}
	if r.Strict {
		status += " (strict)"
	}
	fmt.Fprintf(&b, "**Status:** %s\n\n", status)

	errs, warns, infos := r.Counts()
	b.WriteString("| Metric | Estimate | Budget | Usage |\n")
	b.WriteString("|---|---|---|---|\n")
	fmt.Fprintf(&b, "| Carbon | %s | %s | `%s` %s |\n",
		FormatCarbon(r.TotalCarbon), FormatCarbon(r.Budget.CarbonCeiling),
		ProportionBar(r.Budget.CarbonUsed, BarWidth), FormatPercent(r.Budget.CarbonUsed))
	fmt.Fprintf(&b, "| Cost | %s | %s | `%s` %s |\n\n",
		FormatCost(r.TotalCost), FormatCost(r.Budget.CostCeiling),
		ProportionBar(r.Budget.CostUsed, BarWidth), FormatPercent(r.Budget.CostUsed))

	fmt.Fprintf(&b, "- Files scanned: %d\n", r.FilesScanned)
	fmt.Fprintf(&b, "- API calls found: %d\n", r.APICalls)
	fmt.Fprintf(&b, "- Violations: %d errors, %d warnings, %d info\n", errs, warns, infos)
	fmt.Fprintf(&b, "- Suggestions: %d\n\n", len(r.Suggestions))

	if bs := r.Budget; bs.DailyUsers > 0 {
		b.WriteString("## Team projection\n\n")
		fmt.Fprintf(&b, "- Daily users: %d\n", bs.DailyUsers)
		fmt.Fprintf(&b, "- Projected daily: %s", FormatCarbon(bs.ProjectedDaily))
		if bs.DailyBudget > 0 {
			fmt.Fprintf(&b, " of %s", FormatCarbon(bs.DailyBudget))
		}
		b.WriteString("\n")
		fmt.Fprintf(&b, "- Projected monthly: %s", FormatCarbon(bs.ProjectedMonthly))
		if bs.MonthlyBudget > 0 {
			fmt.Fprintf(&b, " of %s", FormatCarbon(bs.MonthlyBudget))
		}
		b.WriteString("\n\n")
	}

	if len(r.Models) > 0 {
		b.WriteString("## Models\n\n")
		b.WriteString("| Model | Tier | Uses | Files | Carbon | Cost |\n")
		b.WriteString("|---|---|---|---|---|---|\n")
		for _, m := range r.Models {
			fmt.Fprintf(&b, "| `%s` | %s | %d | %d | %s | %s |\n",
				m.Name, m.Tier, m.Occurrences, m.Files, FormatCarbon(m.Carbon), FormatCost(m.Cost))
		}
		b.WriteString("\n")
	}

	if len(r.Regions) > 0 {
		b.WriteString("## Regions\n\n")
		b.WriteString("| Region | Tier | Intensity | Uses |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, s := range r.Regions {
			fmt.Fprintf(&b, "| `%s` | %s | %s | %d |\n", s.Name, s.Tier, FormatIntensity(s.Intensity), s.Occurrences)
		}
		b.WriteString("\n")
	}

	writeViolations(&b, "Violations", r.Violations, limit)
	writeViolations(&b, "Suggestions", r.Suggestions, limit)

	fmt.Fprintf(&b, "_%s_\n", Disclaimer)
	return b.String()
}

func writeViolations(b *strings.Builder, title string, vs []model.Violation, limit int) {
	if len(vs) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s (%d)\n\n", title, len(vs))
	for i, v := range vs {
		if i == limit {
			fmt.Fprintf(b, "- … and %d more\n", len(vs)-limit)
			break
		}
		fmt.Fprintf(b, "- %s **%s** `%s` %s: %s\n",
			severityIcon(v.Severity), v.Severity, v.Rule, FormatLocation(v), escapeMarkdown(v.Message))
	}
	b.WriteString("\n")
}

func severityIcon(s model.Severity) string {
	switch s {
	case model.SeverityError:
		return "🔴"
	case model.SeverityWarning:
		return "🟡"
	}
	return "🔵"
}

var markdownEscaper = strings.NewReplacer("|", `\|`, "\n", " ")

func escapeMarkdown(s string) string { return markdownEscaper.Replace(s) }
