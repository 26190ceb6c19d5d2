package model

// Category identifies which matcher produced a Finding.
type Category string

const (
	CategoryModel  Category = "model"
	CategoryRegion Category = "region"
	CategoryAPI    Category = "api-call"
	CategoryLegacy Category = "legacy-model"
)

// Tier is the coarse cost/carbon class of an AI model.
type Tier string

const (
	TierHeavy   Tier = "heavy"
	TierMedium  Tier = "medium"
	TierLight   Tier = "light"
	TierUnknown Tier = "unknown"
)

// Rank orders tiers from light (1) to heavy (3). Unknown ranks 0.
func (t Tier) Rank() int {
	switch t {
	case TierLight:
		return 1
	case TierMedium:
		return 2
	case TierHeavy:
		return 3
	}
	return 0
}

// RegionTier is the carbon-intensity class of a cloud region.
type RegionTier string

const (
	RegionGreen    RegionTier = "green"
	RegionModerate RegionTier = "moderate"
	RegionDirty    RegionTier = "dirty"
)

// Position is a 1-indexed line/column location.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Range spans a match for inline highlighting. End is exclusive.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Finding is one located, categorized match in a file, prior to interpretation.
type Finding struct {
	Category Category
	File     string
	Offset   int // byte offset of the match start
	End      int // byte offset one past the match
	Range    Range
	Raw      string

	// ID is the canonical identifier used for dedup: the lower-cased model
	// name, the normalized region code, or the call expression.
	ID string

	// Prompt is the nearby quoted text for model findings, if any.
	Prompt string
	// Replacement is the suggested modern identifier for legacy findings.
	Replacement string
}

// Line returns the 1-indexed start line.
func (f Finding) Line() int { return f.Range.Start.Line }

// DedupKey identifies findings that collapse into one.
type DedupKey struct {
	Category Category
	ID       string
	Line     int
}

// Key returns the finding's dedup key.
func (f Finding) Key() DedupKey {
	return DedupKey{Category: f.Category, ID: f.ID, Line: f.Line()}
}

// EstimatedUsage is the approximate cost/carbon of one model finding.
type EstimatedUsage struct {
	Model       string
	Tier        Tier
	Known       bool // false when default rates were applied
	PromptChars int
	Tokens      int
	Cost        float64
	Carbon      float64 // gCO2e
	Complexity  int
}
