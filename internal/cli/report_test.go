package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/theirongolddev/greenlint/internal/model"
)

func sampleResult(n int) *model.ScanResult {
	r := &model.ScanResult{
		Root:         "/repo",
		TotalCarbon:  5.2,
		TotalCost:    0.0123,
		FilesScanned: 3,
		APICalls:     4,
		Budget:       model.NewBudgetStats(5.2, 0.0123, 1, 1),
		Models:       []model.UsageStats{{Name: "gpt-4", Tier: "heavy", Occurrences: 2, Files: 1, Carbon: 0.86, Cost: 0.006}},
		Regions:      []model.UsageStats{{Name: "ap-south-1", Tier: "dirty", Occurrences: 1, Files: 1, Intensity: 700}},
	}
	for i := 0; i < n; i++ {
		r.Violations = append(r.Violations, model.Violation{
			File:     fmt.Sprintf("f%02d.py", i),
			Line:     i + 1,
			Rule:     model.RuleLegacyModel,
			Severity: model.SeverityWarning,
			Message:  "Model \"claude-2\" is deprecated",
		})
	}
	r.Violations = append(r.Violations, model.Violation{
		Rule:     model.RuleCarbonBudget,
		Severity: model.SeverityError,
		Message:  "Estimated carbon 5.2 gCO2e exceeds the budget of 1 gCO2e",
	})
	return r
}

func TestReport_Deterministic(t *testing.T) {
	r := sampleResult(3)
	a, b := Report(r, 20), Report(r, 20)
	if a != b {
		t.Fatal("rendering the same result twice differed")
	}
}

func TestReport_Structure(t *testing.T) {
	out := Report(sampleResult(2), 20)
	for _, want := range []string{
		"**Status:** ❌ FAILED",
		"| Carbon | 5.2 gCO2e | 1 gCO2e | `████████████████████` 520.0% |",
		"- Files scanned: 3",
		"- API calls found: 4",
		"- Violations: 1 errors, 2 warnings, 0 info",
		"| `ap-south-1` | dirty | 700 gCO2e/kWh | 1 |",
		"`carbon-budget-exceeded` (scan): Estimated carbon 5.2 gCO2e",
		"`legacy-model` f00.py:1",
		Disclaimer,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "Team projection") {
		t.Error("projection rendered without daily users")
	}
}

func TestReport_OverflowCounter(t *testing.T) {
	out := Report(sampleResult(30), 20)
	if !strings.Contains(out, "- … and 11 more") {
		t.Errorf("missing overflow line:\n%s", out)
	}
	if strings.Contains(out, "f20.py") {
		t.Error("violation past the cap was listed")
	}
}

func TestReport_TeamProjection(t *testing.T) {
	r := sampleResult(0)
	r.Budget.DailyUsers = 10
	r.Budget.ProjectedDaily = 52
	r.Budget.ProjectedMonthly = 1560
	r.Budget.MonthlyBudget = 1000
	out := Report(r, 0)
	if !strings.Contains(out, "- Projected monthly: 1.56 kgCO2e of 1 kgCO2e") {
		t.Errorf("projection line missing:\n%s", out)
	}
}

func TestReport_EscapesPipes(t *testing.T) {
	r := sampleResult(0)
	r.Violations[0].Message = "a | b"
	if out := Report(r, 0); !strings.Contains(out, `a \| b`) {
		t.Error("pipe not escaped")
	}
}

func TestSARIF_LevelsAndLocations(t *testing.T) {
	r := sampleResult(1)
	r.Violations[0].Range = model.Range{Start: model.Position{Line: 1, Column: 5}, End: model.Position{Line: 1, Column: 13}}
	r.Suggestions = []model.Violation{{File: "a.py", Line: 2, Rule: model.RuleCacheDuplicate, Severity: model.SeverityInfo, Message: "dup", Suggestion: true}}

	data, err := SARIF(r, "test", Provenance{})
	if err != nil {
		t.Fatal(err)
	}
	var doc sarifDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	if doc.Version != "2.1.0" || len(doc.Runs) != 1 {
		t.Fatalf("bad envelope: %+v", doc)
	}
	res := doc.Runs[0].Results
	if len(res) != 3 {
		t.Fatalf("results = %d, want 3", len(res))
	}
	if res[0].Level != "warning" || res[1].Level != "error" || res[2].Level != "note" {
		t.Errorf("levels = %s %s %s", res[0].Level, res[1].Level, res[2].Level)
	}
	reg := res[0].Locs[0].PhysicalLocation.Region
	if reg == nil || reg.StartColumn != 5 || reg.EndColumn != 13 {
		t.Errorf("region = %+v", reg)
	}
	if len(res[1].Locs) != 0 {
		t.Error("scan-level violation should have no location")
	}
	if n := len(doc.Runs[0].Tool.Driver.Rules); n != 3 {
		t.Errorf("rules = %d, want 3", n)
	}
}

func TestEncode_YAMLUsesFieldTags(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, FormatYAML, sampleResult(0)); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "filesScanned: 3") || strings.Contains(out, "report:") {
		t.Errorf("unexpected yaml:\n%s", out)
	}
	if err := Encode(&buf, "xml", nil); err == nil {
		t.Error("unknown format accepted")
	}
}

func TestSARIF_VersionControlProvenance(t *testing.T) {
	r := sampleResult(1)

	data, err := SARIF(r, "test", Provenance{})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "versionControlProvenance") {
		t.Error("provenance emitted without a repository")
	}

	prov := Provenance{RepositoryURI: "https://github.com/acme/bot", RevisionID: "abc123", Branch: "refs/heads/main"}
	data, err = SARIF(r, "test", prov)
	if err != nil {
		t.Fatal(err)
	}
	var doc sarifDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	vcs := doc.Runs[0].VCS
	if len(vcs) != 1 || vcs[0].RepositoryURI != prov.RepositoryURI || vcs[0].RevisionID != "abc123" || vcs[0].Branch != "refs/heads/main" {
		t.Errorf("versionControlProvenance = %+v", vcs)
	}
}
