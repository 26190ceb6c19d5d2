package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/theirongolddev/greenlint/internal/model"
)

func testResult() *model.ScanResult {
	return &model.ScanResult{
		Root:   "/repo",
		Passed: false,
		Violations: []model.Violation{
			{File: "app.py", Line: 3, Rule: model.RuleBannedModel, Severity: model.SeverityError, Model: "gpt-4-32k", Message: "banned"},
			{File: "infra/main.tf", Line: 2, Rule: model.RuleHighCarbon, Severity: model.SeverityWarning, Region: "ap-south-1", Message: "dirty grid"},
			{File: "worker.py", Line: 9, Rule: model.RuleLegacyModel, Severity: model.SeverityInfo, Model: "text-davinci-003", Message: "legacy"},
		},
		Suggestions: []model.Violation{
			{File: "app.py", Line: 3, Rule: model.RuleModelOverkill, Severity: model.SeverityInfo, Suggestion: true, Model: "gpt-4o", Message: "try mini"},
		},
	}
}

func TestFilteredViolations(t *testing.T) {
	a := App{result: testResult()}

	tests := []struct {
		filter int
		query  string
		want   []string
	}{
		{filterAll, "", []string{model.RuleBannedModel, model.RuleHighCarbon, model.RuleLegacyModel, model.RuleModelOverkill}},
		{filterErrors, "", []string{model.RuleBannedModel}},
		{filterWarnings, "", []string{model.RuleHighCarbon}},
		{filterInfo, "", []string{model.RuleLegacyModel}},
		{filterSuggestions, "", []string{model.RuleModelOverkill}},
		{filterAll, "APP.PY", []string{model.RuleBannedModel, model.RuleModelOverkill}},
		{filterAll, "ap-south", []string{model.RuleHighCarbon}},
		{filterErrors, "davinci", nil},
	}
	for _, tt := range tests {
		a.viol.filter = tt.filter
		a.viol.searchQuery = tt.query
		got := a.filteredViolations()
		if len(got) != len(tt.want) {
			t.Fatalf("filter=%s query=%q: got %d violations, want %d", filterNames[tt.filter], tt.query, len(got), len(tt.want))
		}
		for i, v := range got {
			if v.Rule != tt.want[i] {
				t.Errorf("filter=%s query=%q [%d] = %s, want %s", filterNames[tt.filter], tt.query, i, v.Rule, tt.want[i])
			}
		}
	}
}

func TestViolationsKeysClampCursor(t *testing.T) {
	a := App{result: testResult(), loaded: true, activeTab: tabViolations, height: 40}

	press := func(key string) {
		t.Helper()
		m, _ := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)})
		a = m.(App)
	}

	press("G")
	if a.viol.cursor != 3 {
		t.Fatalf("G: cursor = %d, want 3", a.viol.cursor)
	}
	press("j")
	if a.viol.cursor != 3 {
		t.Fatalf("j past end: cursor = %d, want 3", a.viol.cursor)
	}
	press("f") // errors only
	if a.viol.filter != filterErrors || a.viol.cursor != 0 {
		t.Fatalf("f: filter=%d cursor=%d, want %d/0", a.viol.filter, a.viol.cursor, filterErrors)
	}
	press("k")
	if a.viol.cursor != 0 {
		t.Fatalf("k before start: cursor = %d, want 0", a.viol.cursor)
	}
}

func TestTabKeysSwitchTabs(t *testing.T) {
	a := App{result: testResult(), loaded: true}
	for key, want := range map[string]int{"v": tabViolations, "b": tabBreakdown, "h": tabHistory, "x": tabSettings, "o": tabOverview} {
		m, _ := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)})
		if got := m.(App).activeTab; got != want {
			t.Errorf("key %q: tab = %d, want %d", key, got, want)
		}
	}
}

func TestScanDoneClampsSelection(t *testing.T) {
	a := App{loaded: true, activeTab: tabViolations}
	a.viol.cursor = 10

	m, _ := a.Update(ScanDoneMsg{Result: testResult()})
	a = m.(App)
	if a.viol.cursor != 3 {
		t.Fatalf("cursor = %d, want 3", a.viol.cursor)
	}
	if a.result == nil || a.rescanning {
		t.Fatal("scan result not applied")
	}
}
