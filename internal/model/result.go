package model

// FileResult is the independent partial result of analyzing one file.
type FileResult struct {
	Path        string
	Findings    []Finding
	Usages      []EstimatedUsage
	Violations  []Violation
	Suggestions []Violation
	APICalls    int
	Carbon      float64
	Cost        float64
}

// UsageStats aggregates findings for one model or region across a scan.
type UsageStats struct {
	Name        string  `json:"name" yaml:"name"`
	Tier        string  `json:"tier" yaml:"tier"`
	Occurrences int     `json:"occurrences" yaml:"occurrences"`
	Files       int     `json:"files" yaml:"files"`
	Tokens      int     `json:"tokens,omitempty" yaml:"tokens,omitempty"`
	Cost        float64 `json:"cost,omitempty" yaml:"cost,omitempty"`
	Carbon      float64 `json:"carbon,omitempty" yaml:"carbon,omitempty"`
	Intensity   float64 `json:"intensity,omitempty" yaml:"intensity,omitempty"`
}

// ScanResult is the immutable aggregate of one orchestrator run.
type ScanResult struct {
	Root         string       `json:"root" yaml:"root"`
	Passed       bool         `json:"passed" yaml:"passed"`
	Strict       bool         `json:"strict" yaml:"strict"`
	TotalCarbon  float64      `json:"totalCarbon" yaml:"totalCarbon"`
	TotalCost    float64      `json:"totalCost" yaml:"totalCost"`
	Violations   []Violation  `json:"violations" yaml:"violations"`
	Suggestions  []Violation  `json:"suggestions" yaml:"suggestions"`
	FilesScanned int          `json:"filesScanned" yaml:"filesScanned"`
	APICalls     int          `json:"apiCalls" yaml:"apiCalls"`
	Budget       BudgetStats  `json:"budget" yaml:"budget"`
	Models       []UsageStats `json:"models" yaml:"models"`
	Regions      []UsageStats `json:"regions" yaml:"regions"`
	Report       string       `json:"-" yaml:"-"`
}

// Counts returns the number of error, warning and info violations.
func (r *ScanResult) Counts() (errs, warns, infos int) {
	for _, v := range r.Violations {
		switch v.Severity {
		case SeverityError:
			errs++
		case SeverityWarning:
			warns++
		default:
			infos++
		}
	}
	return errs, warns, infos
}
