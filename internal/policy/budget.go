package policy

import (
	"fmt"

	"github.com/theirongolddev/greenlint/internal/config"
	"github.com/theirongolddev/greenlint/internal/model"
)

// daysPerMonth scales a daily projection to a month.
const daysPerMonth = 30

// Budget compares summed estimates against the policy ceilings. file is
// empty for scan-level evaluation.
func Budget(p *config.PolicyConfig, file string, carbon, cost float64) []model.Violation {
	if p == nil {
		def := config.DefaultPolicy()
		p = &def
	}
	var out []model.Violation
	var (
		at   model.Range
		line int
	)
	if file != "" {
		line = 1
		at = model.Range{Start: model.Position{Line: 1, Column: 1}, End: model.Position{Line: 1, Column: 1}}
	}

	carbonCeiling := p.CarbonCeiling()
	if carbon > carbonCeiling {
		out = append(out, model.Violation{
			File:      file,
			Line:      line,
			Range:     at,
			Rule:      model.RuleCarbonBudget,
			Severity:  model.SeverityError,
			Message:   fmt.Sprintf("Estimated carbon %s gCO2e exceeds the budget of %s gCO2e", model.FormatAmount(carbon), model.FormatAmount(carbonCeiling)),
			Carbon:    carbon,
			Threshold: carbonCeiling,
		})
	} else if t := p.AlertThreshold(); t > 0 && carbon >= carbonCeiling*t {
		out = append(out, model.Violation{
			File:      file,
			Line:      line,
			Range:     at,
			Rule:      model.RuleBudgetAlert,
			Severity:  model.SeverityInfo,
			Message:   fmt.Sprintf("Estimated carbon %s gCO2e has reached %.0f%% of the %s gCO2e budget", model.FormatAmount(carbon), carbon/carbonCeiling*100, model.FormatAmount(carbonCeiling)),
			Carbon:    carbon,
			Threshold: carbonCeiling * t,
		})
	}

	if costCeiling := p.CostCeiling(); cost > costCeiling {
		out = append(out, model.Violation{
			File:      file,
			Line:      line,
			Range:     at,
			Rule:      model.RuleCostBudget,
			Severity:  model.SeverityError,
			Message:   fmt.Sprintf("Estimated cost $%s exceeds the budget of $%s", model.FormatAmount(cost), model.FormatAmount(costCeiling)),
			Cost:      cost,
			Threshold: costCeiling,
		})
	}

	if file != "" {
		return out
	}
	b := Projection(p, carbon)
	if b.DailyBudget > 0 && b.ProjectedDaily > b.DailyBudget {
		out = append(out, model.Violation{
			Rule:      model.RuleDailyBudget,
			Severity:  model.SeverityWarning,
			Message:   fmt.Sprintf("Projected team carbon %s gCO2e/day exceeds the daily budget of %s gCO2e", model.FormatAmount(b.ProjectedDaily), model.FormatAmount(b.DailyBudget)),
			Carbon:    b.ProjectedDaily,
			Threshold: b.DailyBudget,
		})
	}
	if b.MonthlyBudget > 0 && b.ProjectedMonthly > b.MonthlyBudget {
		out = append(out, model.Violation{
			Rule:      model.RuleMonthlyBudget,
			Severity:  model.SeverityWarning,
			Message:   fmt.Sprintf("Projected team carbon %s gCO2e/month exceeds the monthly budget of %s gCO2e", model.FormatAmount(b.ProjectedMonthly), model.FormatAmount(b.MonthlyBudget)),
			Carbon:    b.ProjectedMonthly,
			Threshold: b.MonthlyBudget,
		})
	}
	return out
}

// Projection fills the team projection fields of BudgetStats. Figures are
// zero when team.dailyUsers is unset.
func Projection(p *config.PolicyConfig, carbon float64) model.BudgetStats {
	var b model.BudgetStats
	if p.CarbonBudget.Daily != nil {
		b.DailyBudget = *p.CarbonBudget.Daily
	}
	if p.CarbonBudget.Monthly != nil {
		b.MonthlyBudget = *p.CarbonBudget.Monthly
	}
	users := p.DailyUsers()
	if users == 0 {
		return b
	}
	b.DailyUsers = users
	b.ProjectedDaily = carbon * float64(users)
	b.ProjectedMonthly = b.ProjectedDaily * daysPerMonth
	return b
}
