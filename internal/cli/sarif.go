package cli

import (
	"encoding/json"
	"sort"

	"github.com/theirongolddev/greenlint/internal/model"
)

// SARIF 2.1.0 subset for code-scanning upload.
type sarifDocument struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
	VCS     []sarifVCS    `json:"versionControlProvenance,omitempty"`
}

type sarifVCS struct {
	RepositoryURI string `json:"repositoryUri"`
	RevisionID    string `json:"revisionId,omitempty"`
	Branch        string `json:"branch,omitempty"`
}

// Provenance identifies the commit a scan ran against. RepositoryURI is
// required for it to be emitted.
type Provenance struct {
	RepositoryURI string
	RevisionID    string
	Branch        string
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version,omitempty"`
	InformationURI string      `json:"informationUri,omitempty"`
	Rules          []sarifRule `json:"rules,omitempty"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	ShortDescription sarifMessage `json:"shortDescription"`
}

type sarifResult struct {
	RuleID  string          `json:"ruleId"`
	Level   string          `json:"level"`
	Message sarifMessage    `json:"message"`
	Locs    []sarifLocation `json:"locations,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysical `json:"physicalLocation"`
}

type sarifPhysical struct {
	ArtifactLocation sarifArtifact `json:"artifactLocation"`
	Region           *sarifRegion  `json:"region,omitempty"`
}

type sarifArtifact struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn,omitempty"`
	EndLine     int `json:"endLine,omitempty"`
	EndColumn   int `json:"endColumn,omitempty"`
}

var ruleDescriptions = map[string]string{
	model.RuleBannedModel:     "Model is banned by policy",
	model.RuleTierViolation:   "Model tier exceeds the policy ceiling",
	model.RuleRegionNotAllow:  "Region is not in the allowed list",
	model.RuleHighCarbon:      "Region has high grid carbon intensity",
	model.RuleLegacyModel:     "Deprecated model identifier",
	model.RuleCachingRequired: "API calls without caching",
	model.RuleCarbonBudget:    "Estimated carbon exceeds the budget",
	model.RuleCostBudget:      "Estimated cost exceeds the budget",
	model.RuleBudgetAlert:     "Estimated carbon is near the budget",
	model.RuleMonthlyBudget:   "Projected monthly carbon exceeds the budget",
	model.RuleDailyBudget:     "Projected daily carbon exceeds the budget",
	model.RuleModelOverkill:   "Model is heavier than the task needs",
	model.RuleCacheDuplicate:  "Repeated identical API call",
	model.RuleCacheScaffold:   "Cache scaffold available",
}

func sarifLevel(s model.Severity) string {
	switch s {
	case model.SeverityError:
		return "error"
	case model.SeverityWarning:
		return "warning"
	}
	return "note"
}

// SARIF encodes the scan's violations and suggestions as a SARIF 2.1.0 log.
func SARIF(r *model.ScanResult, version string, prov Provenance) ([]byte, error) {
	all := make([]model.Violation, 0, len(r.Violations)+len(r.Suggestions))
	all = append(all, r.Violations...)
	all = append(all, r.Suggestions...)

	results := make([]sarifResult, 0, len(all))
	used := make(map[string]bool)
	for _, v := range all {
		used[v.Rule] = true
		res := sarifResult{
			RuleID:  v.Rule,
			Level:   sarifLevel(v.Severity),
			Message: sarifMessage{Text: v.Message},
		}
		if v.File != "" {
			loc := sarifLocation{PhysicalLocation: sarifPhysical{ArtifactLocation: sarifArtifact{URI: v.File}}}
			if v.Line > 0 {
				rg := v.Range
				loc.PhysicalLocation.Region = &sarifRegion{
					StartLine:   v.Line,
					StartColumn: rg.Start.Column,
					EndLine:     rg.End.Line,
					EndColumn:   rg.End.Column,
				}
			}
			res.Locs = []sarifLocation{loc}
		}
		results = append(results, res)
	}

	rules := make([]sarifRule, 0, len(used))
	for id := range used {
		rules = append(rules, sarifRule{ID: id, ShortDescription: sarifMessage{Text: ruleDescriptions[id]}})
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })

	doc := sarifDocument{
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json",
		Version: "2.1.0",
		Runs: []sarifRun{{
			Tool: sarifTool{Driver: sarifDriver{
				Name:           "greenlint",
				Version:        version,
				InformationURI: "https://github.com/theirongolddev/greenlint",
				Rules:          rules,
			}},
			Results: results,
		}},
	}
	if prov.RepositoryURI != "" {
		doc.Runs[0].VCS = []sarifVCS{{
			RepositoryURI: prov.RepositoryURI,
			RevisionID:    prov.RevisionID,
			Branch:        prov.Branch,
		}}
	}
	return json.MarshalIndent(doc, "", "  ")
}
