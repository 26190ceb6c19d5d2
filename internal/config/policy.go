package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/theirongolddev/greenlint/internal/model"
)

// PolicyFileName is looked up in the scan root when no path is given.
const PolicyFileName = ".greenlint.json"

// Documented policy defaults.
const (
	DefaultCarbonCeiling = 50.0 // gCO2e
	DefaultCostCeiling   = 1.00 // USD
)

// ErrPolicyInvalid wraps a policy document that could not be parsed.
var ErrPolicyInvalid = errors.New("invalid policy")

// PolicyConfig is the per-project policy document. Pointer fields are nil
// when the key is absent.
type PolicyConfig struct {
	CarbonBudget CarbonBudget `json:"carbonBudget"`
	Team         TeamConfig   `json:"team"`
	GreenPolicy  GreenPolicy  `json:"greenPolicy"`
	CI           CIConfig     `json:"ci"`
}

// CarbonBudget holds budget figures in gCO2e.
type CarbonBudget struct {
	Monthly        *float64 `json:"monthly,omitempty"`
	Daily          *float64 `json:"daily,omitempty"`
	PerCommit      *float64 `json:"perCommit,omitempty"`
	AlertThreshold *float64 `json:"alertThreshold,omitempty"`
}

// TeamConfig sizes the projection from a single scan to team usage.
type TeamConfig struct {
	DailyUsers *int `json:"dailyUsers,omitempty"`
}

// GreenPolicy constrains which models and regions may be used.
type GreenPolicy struct {
	MaxModelTier   model.Tier `json:"maxModelTier,omitempty"`
	BannedModels   []string   `json:"bannedModels,omitempty"`
	AllowedRegions []string   `json:"allowedRegions,omitempty"`
	RequireCaching bool       `json:"requireCaching,omitempty"`
}

// CIConfig controls batch-mode behavior.
type CIConfig struct {
	FailOnWarning  bool     `json:"failOnWarning,omitempty"`
	ExcludePaths   []string `json:"excludePaths,omitempty"`
	MaxCarbonPerPR *float64 `json:"maxCarbonPerPR,omitempty"`
	MaxCostPerPR   *float64 `json:"maxCostPerPR,omitempty"`
}

// DefaultPolicy returns the policy used when no document is present.
func DefaultPolicy() PolicyConfig {
	return PolicyConfig{}
}

// CarbonCeiling is ci.maxCarbonPerPR, else carbonBudget.perCommit, else 50.
func (p PolicyConfig) CarbonCeiling() float64 {
	if p.CI.MaxCarbonPerPR != nil {
		return *p.CI.MaxCarbonPerPR
	}
	if p.CarbonBudget.PerCommit != nil {
		return *p.CarbonBudget.PerCommit
	}
	return DefaultCarbonCeiling
}

// CostCeiling is ci.maxCostPerPR, else 1.00.
func (p PolicyConfig) CostCeiling() float64 {
	if p.CI.MaxCostPerPR != nil {
		return *p.CI.MaxCostPerPR
	}
	return DefaultCostCeiling
}

// Strict reports whether warnings fail a scan.
func (p PolicyConfig) Strict() bool { return p.CI.FailOnWarning }

// AlertThreshold returns the budget-alert fraction, 0 when unset or out of range.
func (p PolicyConfig) AlertThreshold() float64 {
	if p.CarbonBudget.AlertThreshold == nil {
		return 0
	}
	t := *p.CarbonBudget.AlertThreshold
	if t <= 0 || t > 1 {
		return 0
	}
	return t
}

// DailyUsers returns team.dailyUsers or 0.
func (p PolicyConfig) DailyUsers() int {
	if p.Team.DailyUsers == nil || *p.Team.DailyUsers < 0 {
		return 0
	}
	return *p.Team.DailyUsers
}

// Excluded reports whether a slash-separated path relative to the scan root
// falls under one of ci.excludePaths.
func (p PolicyConfig) Excluded(rel string) bool {
	rel = strings.TrimPrefix(filepath.ToSlash(rel), "./")
	for _, prefix := range p.CI.ExcludePaths {
		prefix = strings.TrimPrefix(filepath.ToSlash(strings.TrimSpace(prefix)), "./")
		if prefix != "" && strings.HasPrefix(rel, prefix) {
			return true
		}
	}
	return false
}

// ParsePolicy decodes a policy document.
func ParsePolicy(data []byte) (PolicyConfig, error) {
	p := DefaultPolicy()
	if err := json.Unmarshal(data, &p); err != nil {
		return DefaultPolicy(), fmt.Errorf("%w: %v", ErrPolicyInvalid, err)
	}
	switch p.GreenPolicy.MaxModelTier {
	case "", model.TierHeavy, model.TierMedium, model.TierLight:
	default:
		return DefaultPolicy(), fmt.Errorf("%w: maxModelTier %q is not heavy, medium or light",
			ErrPolicyInvalid, p.GreenPolicy.MaxModelTier)
	}
	return p, nil
}

// LoadPolicy reads the policy at path. A missing file yields defaults with
// found == false and no error.
func LoadPolicy(path string) (p PolicyConfig, found bool, err error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultPolicy(), false, nil
		}
		return DefaultPolicy(), false, fmt.Errorf("reading policy: %w", err)
	}
	p, err = ParsePolicy(data)
	if err != nil {
		return p, true, fmt.Errorf("parsing %s: %w", path, err)
	}
	return p, true, nil
}

// PolicyPath resolves the policy location: an explicit override, then
// GREENLINT_POLICY, then .greenlint.json in root.
func PolicyPath(root, override string) string {
	if override != "" {
		return override
	}
	if env := os.Getenv("GREENLINT_POLICY"); env != "" {
		return env
	}
	return filepath.Join(root, PolicyFileName)
}

// PolicyStore holds the current policy for long-lived sessions. Reload
// replaces the whole structure; readers never observe a partial update.
type PolicyStore struct {
	path    string
	mu      sync.Mutex // serializes Reload
	current atomic.Pointer[PolicyConfig]
	gen     atomic.Uint64
	lastErr atomic.Value // string
}

// NewPolicyStore loads the policy at path. Load failures fall back to
// defaults and are available from Err.
func NewPolicyStore(path string) *PolicyStore {
	s := &PolicyStore{path: path}
	_ = s.Reload()
	return s
}

// Path returns the watched policy file.
func (s *PolicyStore) Path() string { return s.path }

// Current returns the active policy. Callers must not mutate it.
func (s *PolicyStore) Current() *PolicyConfig {
	return s.current.Load()
}

// Generation increments on every Reload.
func (s *PolicyStore) Generation() uint64 { return s.gen.Load() }

// Err returns the message of the last failed load, or "".
func (s *PolicyStore) Err() string {
	v, _ := s.lastErr.Load().(string)
	return v
}

// Reload discards the current policy and rebuilds it from disk. A malformed
// document installs defaults and returns the parse error.
func (s *PolicyStore) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, _, err := LoadPolicy(s.path)
	if err != nil {
		p = DefaultPolicy()
		s.lastErr.Store(err.Error())
	} else {
		s.lastErr.Store("")
	}
	s.current.Store(&p)
	s.gen.Add(1)
	return err
}
