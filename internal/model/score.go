package model

// Badge identifiers.
const (
	BadgeGreenStarter    = "green_starter"
	BadgeEcoDeveloper    = "eco_developer"
	BadgeCarbonChampion  = "carbon_champion"
	BadgeRegionOptimizer = "region_optimizer"
	BadgeBudgetKeeper    = "budget_keeper"
	BadgeSustainPioneer  = "sustainability_pioneer"
)

// Baseline summarizes earlier recorded scans of the same root.
type Baseline struct {
	Scans         int
	PassingScans  int
	UnderBudget   int // scans that stayed within the carbon ceiling
	GreenRegion   int // scans in green-tier regions
	LastCarbon    float64
	LastIntensity float64 // 0 when the last scan found no regions
	TotalPoints   int
}

// Sustainability is the gamified score for one scan.
type Sustainability struct {
	Score           int      `json:"score" yaml:"score"` // 0-100
	Points          int      `json:"points" yaml:"points"`
	TotalPoints     int      `json:"totalPoints" yaml:"totalPoints"`
	CarbonReduction float64  `json:"carbonReduction,omitempty" yaml:"carbonReduction,omitempty"` // percent vs the previous scan
	Intensity       float64  `json:"intensity" yaml:"intensity"`
	Badges          []string `json:"badges,omitempty" yaml:"badges,omitempty"`
}
