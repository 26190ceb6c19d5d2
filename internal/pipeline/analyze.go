// Package pipeline wires matchers, classifiers, the estimator and the policy
// evaluator into the per-file analysis and the batch scan.
package pipeline

import (
	"crypto/sha256"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/theirongolddev/greenlint/internal/config"
	"github.com/theirongolddev/greenlint/internal/detect"
	"github.com/theirongolddev/greenlint/internal/estimate"
	"github.com/theirongolddev/greenlint/internal/model"
	"github.com/theirongolddev/greenlint/internal/policy"
	"github.com/theirongolddev/greenlint/internal/source"
)

// AnalyzeFile runs the per-file pipeline: detect, classify, estimate and
// evaluate. Budget rules are not applied; the caller decides the unit they
// apply to. A nil policy means defaults, a nil estimator the documented
// constants.
func AnalyzeFile(p *config.PolicyConfig, est *estimate.Estimator, path, language, content string) model.FileResult {
	if est == nil {
		est = estimate.Default()
	}
	language = source.NormalizeLanguage(language)
	if language == "" {
		language = source.LanguageFor(path)
	}

	findings := detect.All(detect.NewSource(path, content))
	res := model.FileResult{Path: path}
	in := policy.Input{Path: path, Language: language, Content: content}

	for i := range findings {
		f := &findings[i]
		switch f.Category {
		case model.CategoryModel:
			u, prompt := est.Estimate(content, *f)
			f.Prompt = prompt
			res.Usages = append(res.Usages, u)
			res.Carbon += u.Carbon
			res.Cost += u.Cost
			in.Models = append(in.Models, policy.ModelUse{Finding: *f, Usage: u})
		case model.CategoryRegion:
			info, ok := config.ClassifyRegion(f.ID)
			if !ok {
				continue
			}
			in.Regions = append(in.Regions, policy.RegionUse{Finding: *f, Info: info})
		case model.CategoryAPI:
			res.APICalls++
			in.Calls = append(in.Calls, *f)
		case model.CategoryLegacy:
			in.Legacy = append(in.Legacy, *f)
		}
	}
	res.Findings = findings
	res.Violations, res.Suggestions = policy.Evaluate(p, in)
	return res
}

// Analyze is the interactive entry point: everything an editor host shows
// for one file, ordered by line. The file is its own budget unit.
func Analyze(p *config.PolicyConfig, est *estimate.Estimator, path, language, content string) []model.Violation {
	res := AnalyzeFile(p, est, path, language, content)
	out := make([]model.Violation, 0, len(res.Violations)+len(res.Suggestions)+2)
	out = append(out, res.Violations...)
	out = append(out, policy.Budget(p, path, res.Carbon, res.Cost)...)
	out = append(out, res.Suggestions...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Line < out[j].Line })
	return out
}

// DefaultCacheSize bounds the Analyzer cache.
const DefaultCacheSize = 1024

type cacheKey struct {
	path   string
	sum    [sha256.Size]byte
	policy *config.PolicyConfig
}

// Analyzer memoizes AnalyzeFile results keyed by path, content digest and
// policy identity. A reload replaces the policy pointer, so stale entries
// simply stop matching.
type Analyzer struct {
	est   *estimate.Estimator
	cache *lru.Cache[cacheKey, model.FileResult]
}

// NewAnalyzer creates an analyzer holding up to size results.
func NewAnalyzer(est *estimate.Estimator, size int) (*Analyzer, error) {
	if est == nil {
		est = estimate.Default()
	}
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[cacheKey, model.FileResult](size)
	if err != nil {
		return nil, err
	}
	return &Analyzer{est: est, cache: c}, nil
}

// Estimator returns the analyzer's estimator.
func (a *Analyzer) Estimator() *estimate.Estimator { return a.est }

// File returns the cached result for content, computing it on a miss.
func (a *Analyzer) File(p *config.PolicyConfig, path, language, content string) model.FileResult {
	key := cacheKey{path: path, sum: sha256.Sum256([]byte(content)), policy: p}
	if res, ok := a.cache.Get(key); ok {
		return res
	}
	res := AnalyzeFile(p, a.est, path, language, content)
	a.cache.Add(key, res)
	return res
}

// Len reports the number of cached results.
func (a *Analyzer) Len() int { return a.cache.Len() }

// Purge drops every cached result.
func (a *Analyzer) Purge() { a.cache.Purge() }
