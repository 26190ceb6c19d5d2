// Package policy applies a PolicyConfig to one file's findings and
// synthesizes severity-graded violations and advisory suggestions. It is a
// pure function of its inputs.
package policy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/theirongolddev/greenlint/internal/config"
	"github.com/theirongolddev/greenlint/internal/estimate"
	"github.com/theirongolddev/greenlint/internal/model"
)

// ModelUse is a model finding with its estimate.
type ModelUse struct {
	Finding model.Finding
	Usage   model.EstimatedUsage
}

// RegionUse is a region finding resolved against the region table.
type RegionUse struct {
	Finding model.Finding
	Info    config.RegionInfo
}

// Input is everything the evaluator needs for one file.
type Input struct {
	Path     string
	Language string
	Content  string
	Models   []ModelUse
	Regions  []RegionUse
	Calls    []model.Finding
	Legacy   []model.Finding
}

// Evaluate returns policy violations and advisory suggestions for one file.
// Budget rules are not applied here; see Budget.
func Evaluate(p *config.PolicyConfig, in Input) (violations, suggestions []model.Violation) {
	if p == nil {
		def := config.DefaultPolicy()
		p = &def
	}
	gp := p.GreenPolicy

	for _, mu := range in.Models {
		violations = append(violations, modelRules(gp, in.Path, mu)...)
		if s, ok := overkill(in.Path, mu); ok {
			suggestions = append(suggestions, s)
		}
	}
	for _, ru := range in.Regions {
		if v, ok := regionRule(gp, in.Path, ru); ok {
			violations = append(violations, v)
		}
	}
	for _, f := range in.Legacy {
		violations = append(violations, legacyRule(in.Path, f))
	}

	cached := HasCacheIndicator(in.Content)
	if gp.RequireCaching && len(in.Calls) > 0 && !cached {
		first := in.Calls[0]
		violations = append(violations, model.Violation{
			File:     in.Path,
			Line:     first.Line(),
			Range:    first.Range,
			Rule:     model.RuleCachingRequired,
			Severity: model.SeverityWarning,
			Message:  "API calls found but no caching detected; policy requires caching",
		})
	}
	if !cached {
		suggestions = append(suggestions, cacheSuggestions(in)...)
	}

	return Dedup(sortByLine(violations)), Dedup(sortByLine(suggestions))
}

func modelRules(gp config.GreenPolicy, path string, mu ModelUse) []model.Violation {
	f, u := mu.Finding, mu.Usage
	var out []model.Violation

	for _, banned := range gp.BannedModels {
		b := strings.ToLower(strings.TrimSpace(banned))
		if b == "" || !strings.Contains(f.ID, b) {
			continue
		}
		out = append(out, model.Violation{
			File:     path,
			Line:     f.Line(),
			Range:    f.Range,
			Rule:     model.RuleBannedModel,
			Severity: model.SeverityError,
			Message:  fmt.Sprintf("Model %q is banned by policy (matches %q)", f.ID, b),
			Model:    f.ID,
			Cost:     u.Cost,
			Carbon:   u.Carbon,
		})
		break
	}

	if ceiling := gp.MaxModelTier; ceiling != "" && u.Tier.Rank() > ceiling.Rank() {
		alt := config.AlternativeFor(f.ID)
		out = append(out, model.Violation{
			File:     path,
			Line:     f.Line(),
			Range:    f.Range,
			Rule:     model.RuleTierViolation,
			Severity: model.SeverityError,
			Message:  fmt.Sprintf("Model %q is %s tier; policy allows at most %s", f.ID, u.Tier, ceiling),
			Model:    f.ID,
			Cost:     u.Cost,
			Carbon:   u.Carbon,
			Fix:      &model.Fix{Title: "Switch to " + alt.Model, Range: f.Range, Text: alt.Model},
		})
	}
	return out
}

func regionRule(gp config.GreenPolicy, path string, ru RegionUse) (model.Violation, bool) {
	f, info := ru.Finding, ru.Info
	v := model.Violation{
		File:      path,
		Line:      f.Line(),
		Range:     f.Range,
		Region:    info.Code,
		Intensity: info.Intensity,
	}

	if len(gp.AllowedRegions) > 0 {
		if allowed(gp.AllowedRegions, info.Code) || info.Tier != model.RegionDirty {
			return model.Violation{}, false
		}
		v.Rule = model.RuleRegionNotAllow
		v.Severity = model.SeverityError
		v.Message = fmt.Sprintf("Region %s (%s, %s gCO2e/kWh) is not in the allowed regions",
			info.Code, info.Location, model.FormatAmount(info.Intensity))
		v.Alternatives = append([]string(nil), gp.AllowedRegions...)
		return v, true
	}

	if info.Intensity <= config.HighCarbonThreshold {
		return model.Violation{}, false
	}
	alts := config.GreenAlternatives(info.Provider, 3)
	labels := make([]string, 0, len(alts))
	for _, a := range alts {
		v.Alternatives = append(v.Alternatives, a.Code)
		labels = append(labels, fmt.Sprintf("%s (%s)", a.Code, model.FormatAmount(a.Intensity)))
	}
	v.Rule = model.RuleHighCarbon
	v.Severity = model.SeverityWarning
	v.Message = fmt.Sprintf("Region %s (%s) has high carbon intensity: %s gCO2e/kWh",
		info.Code, info.Location, model.FormatAmount(info.Intensity))
	if len(labels) > 0 {
		v.Message += fmt.Sprintf(". Greener %s regions: %s", info.Provider, strings.Join(labels, ", "))
		v.Fix = &model.Fix{Title: "Switch to " + alts[0].Code, Range: f.Range, Text: alts[0].Code}
	}
	return v, true
}

func allowed(list []string, code string) bool {
	for _, a := range list {
		if config.NormalizeRegion(a) == code {
			return true
		}
	}
	return false
}

func legacyRule(path string, f model.Finding) model.Violation {
	v := model.Violation{
		File:     path,
		Line:     f.Line(),
		Range:    f.Range,
		Rule:     model.RuleLegacyModel,
		Severity: model.SeverityWarning,
		Message:  fmt.Sprintf("Model %q is deprecated", f.ID),
		Model:    f.ID,
	}
	if f.Replacement != "" {
		v.Message += fmt.Sprintf("; use %q", f.Replacement)
		v.Fix = &model.Fix{Title: "Replace with " + f.Replacement, Range: f.Range, Text: f.Replacement}
	}
	return v
}

func overkill(path string, mu ModelUse) (model.Violation, bool) {
	f, u := mu.Finding, mu.Usage
	o, ok := estimate.AssessOverkill(u.Tier, u.Complexity, f.ID)
	if !ok {
		return model.Violation{}, false
	}
	alt := o.Alternative
	var msg string
	switch {
	case o.Critical:
		msg = fmt.Sprintf("%s is overkill for this task (complexity %d/10). Switch to %s: ~%d%% cheaper, ~%d%% less carbon",
			f.ID, u.Complexity, alt.Model, alt.SavingsPct, alt.CarbonReduction)
	case o.Severity == model.SeverityWarning:
		msg = fmt.Sprintf("Consider a lighter model than %s (complexity %d/10): %s is ~%d%% cheaper",
			f.ID, u.Complexity, alt.Model, alt.SavingsPct)
	default:
		msg = fmt.Sprintf("%s may be more than this task needs; %s could cut carbon by ~%d%%",
			f.ID, alt.Model, alt.CarbonReduction)
	}
	return model.Violation{
		File:       path,
		Line:       f.Line(),
		Range:      f.Range,
		Rule:       model.RuleModelOverkill,
		Severity:   o.Severity,
		Message:    msg,
		Model:      f.ID,
		Cost:       u.Cost,
		Carbon:     u.Carbon,
		Suggestion: true,
		Fix:        &model.Fix{Title: "Switch to " + alt.Model, Range: f.Range, Text: alt.Model},
	}, true
}

// Dedup keeps the first violation per (rule, identifier, line).
func Dedup(vs []model.Violation) []model.Violation {
	seen := make(map[model.ViolationKey]struct{}, len(vs))
	out := vs[:0:0]
	for _, v := range vs {
		k := v.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, v)
	}
	return out
}

func sortByLine(vs []model.Violation) []model.Violation {
	sort.SliceStable(vs, func(i, j int) bool { return vs[i].Line < vs[j].Line })
	return vs
}
