package model

import "strconv"

// Severity grades a Violation.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Rule identifiers.
const (
	RuleBannedModel     = "banned-model"
	RuleTierViolation   = "model-tier-violation"
	RuleRegionNotAllow  = "region-not-allowed"
	RuleHighCarbon      = "high-carbon-region"
	RuleLegacyModel     = "legacy-model"
	RuleCachingRequired = "caching-required"
	RuleCarbonBudget    = "carbon-budget-exceeded"
	RuleCostBudget      = "cost-budget-exceeded"
	RuleBudgetAlert     = "budget-alert"
	RuleMonthlyBudget   = "monthly-budget-exceeded"
	RuleDailyBudget     = "daily-budget-exceeded"

	RuleModelOverkill  = "model-overkill"
	RuleCacheDuplicate = "cache-duplicate"
	RuleCacheScaffold  = "cache-scaffold"
)

// Fix is a literal text replacement for one-click remediation. A Range
// whose start equals its end is an insertion.
type Fix struct {
	Title string `json:"title" yaml:"title"`
	Range Range  `json:"range" yaml:"range"`
	Text  string `json:"text" yaml:"text"`
}

// Violation is a policy-evaluated, severity-graded outcome. Suggestions
// share the shape but never count toward pass/fail.
type Violation struct {
	File         string   `json:"file" yaml:"file"`
	Line         int      `json:"line" yaml:"line"`
	Range        Range    `json:"range" yaml:"range"`
	Rule         string   `json:"rule" yaml:"rule"`
	Severity     Severity `json:"severity" yaml:"severity"`
	Message      string   `json:"message" yaml:"message"`
	Model        string   `json:"model,omitempty" yaml:"model,omitempty"`
	Region       string   `json:"region,omitempty" yaml:"region,omitempty"`
	Cost         float64  `json:"cost,omitempty" yaml:"cost,omitempty"`
	Carbon       float64  `json:"carbon,omitempty" yaml:"carbon,omitempty"`
	Threshold    float64  `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	Intensity    float64  `json:"intensity,omitempty" yaml:"intensity,omitempty"`
	Alternatives []string `json:"alternatives,omitempty" yaml:"alternatives,omitempty"`
	Count        int      `json:"count,omitempty" yaml:"count,omitempty"`
	Suggestion   bool     `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
	Fix          *Fix     `json:"fix,omitempty" yaml:"fix,omitempty"`
}

// ViolationKey identifies violations that collapse into one within a file.
type ViolationKey struct {
	Rule  string
	Ident string
	Line  int
}

// Key returns the (rule, identifier, line) dedup key.
func (v Violation) Key() ViolationKey {
	ident := v.Model
	if ident == "" {
		ident = v.Region
	}
	if ident == "" {
		ident = v.Message
	}
	return ViolationKey{Rule: v.Rule, Ident: ident, Line: v.Line}
}

// FormatAmount renders a carbon or cost magnitude without float noise:
// 5.2000000001 becomes "5.2".
func FormatAmount(v float64) string {
	return strconv.FormatFloat(Round4(v), 'f', -1, 64)
}

// Round4 rounds to four decimal places.
func Round4(v float64) float64 {
	s := strconv.FormatFloat(v, 'f', 4, 64)
	r, _ := strconv.ParseFloat(s, 64)
	return r
}
