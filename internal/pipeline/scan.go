package pipeline

import (
	"context"
	"fmt"
	"path"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/theirongolddev/greenlint/internal/cli"
	"github.com/theirongolddev/greenlint/internal/config"
	"github.com/theirongolddev/greenlint/internal/estimate"
	"github.com/theirongolddev/greenlint/internal/model"
	"github.com/theirongolddev/greenlint/internal/policy"
	"github.com/theirongolddev/greenlint/internal/source"
)

// ProgressFunc is called as files finish.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// Options configures a batch scan. Zero values mean defaults.
type Options struct {
	Policy        *config.PolicyConfig
	Analyzer      *Analyzer
	Estimator     config.EstimatorConfig
	Workers       int
	MaxViolations int
	Progress      ProgressFunc
}

func (o Options) analyzer() *Analyzer {
	if o.Analyzer != nil {
		return o.Analyzer
	}
	a, err := NewAnalyzer(estimate.New(o.Estimator), DefaultCacheSize)
	if err != nil {
		panic(err) // only fails for a non-positive size
	}
	return a
}

// defaultPolicy is shared so cached analyses survive across policy-less scans.
var defaultPolicy = config.DefaultPolicy()

// Scan walks root and analyzes every candidate file on a bounded worker
// pool. Unreadable files are skipped. If ctx is canceled the scan is
// abandoned and ctx.Err() returned; no partial result escapes.
func Scan(ctx context.Context, root string, opts Options) (*model.ScanResult, error) {
	p := opts.Policy
	if p == nil {
		p = &defaultPolicy
	}

	exclude := func(rel string) bool {
		return path.Base(rel) == config.PolicyFileName || p.Excluded(rel)
	}
	files, err := source.ScanDir(ctx, root, exclude)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}

	results, err := analyzeAll(ctx, files, p, opts)
	if err != nil {
		return nil, err
	}

	r := Finalize(root, p, results)
	r.Report = cli.Report(r, opts.MaxViolations)
	return r, nil
}

func analyzeAll(ctx context.Context, files []source.DiscoveredFile, p *config.PolicyConfig, opts Options) ([]model.FileResult, error) {
	if len(files) == 0 {
		return nil, ctx.Err()
	}
	an := opts.analyzer()

	numWorkers := opts.Workers
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	work := make(chan int, len(files))
	results := make([]model.FileResult, len(files))
	read := make([]bool, len(files))
	var wg sync.WaitGroup
	var processed atomic.Int64

	for i := range files {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				if ctx.Err() != nil {
					return
				}
				f := files[idx]
				data, err := source.ReadFile(f.Path)
				if err == nil {
					results[idx] = an.File(p, f.Rel, f.Language, string(data))
					read[idx] = true
				}
				n := processed.Add(1)
				if opts.Progress != nil {
					opts.Progress(int(n), len(files))
				}
			}
		}()
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := results[:0]
	for i, ok := range read {
		if ok {
			out = append(out, results[i])
		}
	}
	return out, nil
}

// Finalize merges per-file results in path order, applies the scan-level
// budget rules and computes the verdict. It does not render the report.
func Finalize(root string, p *config.PolicyConfig, results []model.FileResult) *model.ScanResult {
	if p == nil {
		p = &defaultPolicy
	}
	sorted := make([]model.FileResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	r := &model.ScanResult{
		Root:         root,
		Strict:       p.Strict(),
		FilesScanned: len(sorted),
		Violations:   []model.Violation{},
		Suggestions:  []model.Violation{},
	}
	for _, fr := range sorted {
		r.TotalCarbon += fr.Carbon
		r.TotalCost += fr.Cost
		r.APICalls += fr.APICalls
		r.Violations = append(r.Violations, fr.Violations...)
		r.Suggestions = append(r.Suggestions, fr.Suggestions...)
	}
	r.Violations = append(r.Violations, policy.Budget(p, "", r.TotalCarbon, r.TotalCost)...)

	errs, warns, _ := r.Counts()
	r.Passed = errs == 0 && (!r.Strict || warns == 0)

	b := policy.Projection(p, r.TotalCarbon)
	used := model.NewBudgetStats(r.TotalCarbon, r.TotalCost, p.CarbonCeiling(), p.CostCeiling())
	b.CarbonCeiling, b.CostCeiling = used.CarbonCeiling, used.CostCeiling
	b.CarbonUsed, b.CostUsed = used.CarbonUsed, used.CostUsed
	b.AlertAt = p.AlertThreshold()
	r.Budget = b

	r.Models = modelStats(sorted)
	r.Regions = regionStats(sorted)
	return r
}

func modelStats(results []model.FileResult) []model.UsageStats {
	byName := make(map[string]*model.UsageStats)
	seen := make(map[string]string)
	for _, fr := range results {
		for _, u := range fr.Usages {
			s, ok := byName[u.Model]
			if !ok {
				s = &model.UsageStats{Name: u.Model, Tier: string(u.Tier)}
				byName[u.Model] = s
			}
			s.Occurrences++
			s.Tokens += u.Tokens
			s.Cost += u.Cost
			s.Carbon += u.Carbon
			if seen[u.Model] != fr.Path {
				seen[u.Model] = fr.Path
				s.Files++
			}
		}
	}
	out := flatten(byName)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Carbon != out[j].Carbon {
			return out[i].Carbon > out[j].Carbon
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func regionStats(results []model.FileResult) []model.UsageStats {
	byName := make(map[string]*model.UsageStats)
	seen := make(map[string]string)
	for _, fr := range results {
		for _, f := range fr.Findings {
			if f.Category != model.CategoryRegion {
				continue
			}
			info, ok := config.ClassifyRegion(f.ID)
			if !ok {
				continue
			}
			s, ok := byName[info.Code]
			if !ok {
				s = &model.UsageStats{Name: info.Code, Tier: string(info.Tier), Intensity: info.Intensity}
				byName[info.Code] = s
			}
			s.Occurrences++
			if seen[info.Code] != fr.Path {
				seen[info.Code] = fr.Path
				s.Files++
			}
		}
	}
	out := flatten(byName)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Intensity != out[j].Intensity {
			return out[i].Intensity > out[j].Intensity
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func flatten(m map[string]*model.UsageStats) []model.UsageStats {
	out := make([]model.UsageStats, 0, len(m))
	for _, s := range m {
		out = append(out, *s)
	}
	return out
}
