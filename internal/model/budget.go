package model

// BudgetStats holds how far a scan's totals reach into the configured ceilings.
type BudgetStats struct {
	CarbonCeiling float64 `json:"carbonCeiling" yaml:"carbonCeiling"`
	CostCeiling   float64 `json:"costCeiling" yaml:"costCeiling"`
	CarbonUsed    float64 `json:"carbonUsed" yaml:"carbonUsed"` // fraction of CarbonCeiling, may exceed 1
	CostUsed      float64 `json:"costUsed" yaml:"costUsed"`
	AlertAt       float64 `json:"alertAt,omitempty" yaml:"alertAt,omitempty"` // 0 = off

	DailyUsers       int     `json:"dailyUsers,omitempty" yaml:"dailyUsers,omitempty"`
	ProjectedDaily   float64 `json:"projectedDaily,omitempty" yaml:"projectedDaily,omitempty"` // gCO2e per day across the team
	ProjectedMonthly float64 `json:"projectedMonthly,omitempty" yaml:"projectedMonthly,omitempty"`
	DailyBudget      float64 `json:"dailyBudget,omitempty" yaml:"dailyBudget,omitempty"`
	MonthlyBudget    float64 `json:"monthlyBudget,omitempty" yaml:"monthlyBudget,omitempty"`
}

// UnderCarbonBudget reports whether the scan stayed within a configured
// carbon ceiling.
func (b BudgetStats) UnderCarbonBudget() bool {
	return b.CarbonCeiling > 0 && b.CarbonUsed <= 1
}

// NewBudgetStats computes used fractions for the given totals.
func NewBudgetStats(carbon, cost, carbonCeiling, costCeiling float64) BudgetStats {
	b := BudgetStats{CarbonCeiling: carbonCeiling, CostCeiling: costCeiling}
	if carbonCeiling > 0 {
		b.CarbonUsed = carbon / carbonCeiling
	}
	if costCeiling > 0 {
		b.CostUsed = cost / costCeiling
	}
	return b
}
