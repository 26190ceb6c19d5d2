package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/greenlint/internal/config"
	"github.com/theirongolddev/greenlint/internal/model"
)

func mustPolicy(t *testing.T, doc string) *config.PolicyConfig {
	t.Helper()
	p, err := config.ParsePolicy([]byte(doc))
	require.NoError(t, err)
	return &p
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, body := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	return root
}

func bySeverity(vs []model.Violation, s model.Severity) []model.Violation {
	var out []model.Violation
	for _, v := range vs {
		if v.Severity == s {
			out = append(out, v)
		}
	}
	return out
}

func byRule(vs []model.Violation, rule string) []model.Violation {
	var out []model.Violation
	for _, v := range vs {
		if v.Rule == rule {
			out = append(out, v)
		}
	}
	return out
}

func TestScenario_TierCeiling(t *testing.T) {
	p := mustPolicy(t, `{"greenPolicy":{"maxModelTier":"medium"}}`)
	content := "resp = openai.ChatCompletion.create(model=\"gpt-4-32k\", messages=msgs)\n"

	res := AnalyzeFile(p, nil, "app.py", "python", content)
	errs := bySeverity(res.Violations, model.SeverityError)
	require.Len(t, errs, 1)
	assert.Equal(t, model.RuleTierViolation, errs[0].Rule)
	assert.Equal(t, "gpt-4-32k", errs[0].Model)
	assert.Equal(t, 1, errs[0].Line)
	require.NotNil(t, errs[0].Fix)

	// The interactive entry point reports the same violation, located.
	var found []model.Violation
	for _, v := range Analyze(p, nil, "app.py", "python", content) {
		if !v.Suggestion && v.Severity == model.SeverityError {
			found = append(found, v)
		}
	}
	require.Len(t, found, 1)
	assert.Equal(t, errs[0].Range, found[0].Range)
	assert.Less(t, found[0].Range.Start.Column, found[0].Range.End.Column)
}

func TestScenario_HighCarbonRegion(t *testing.T) {
	res := AnalyzeFile(nil, nil, "main.tf", "", "region = \"ap-south-1\"\n")
	require.Len(t, res.Violations, 1)
	v := res.Violations[0]
	assert.Equal(t, model.RuleHighCarbon, v.Rule)
	assert.Equal(t, model.SeverityWarning, v.Severity)
	assert.Equal(t, 700.0, v.Intensity)
	assert.Contains(t, v.Message, "700")
	require.NotEmpty(t, v.Alternatives)
	assert.Equal(t, "ca-central-1", v.Alternatives[0])
	assert.Contains(t, v.Message, "ca-central-1 (20)")
}

func TestScenario_DuplicateCallsOneScaffold(t *testing.T) {
	content := strings.Join([]string{
		"import openai",
		"",
		"a = openai.chat.completions.create(...)",
		"b = openai.chat.completions.create(...)",
		"",
	}, "\n")

	res := AnalyzeFile(nil, nil, "bot.py", "python", content)
	dups := byRule(res.Suggestions, model.RuleCacheDuplicate)
	require.Len(t, dups, 1)
	assert.Equal(t, 2, dups[0].Count)
	assert.Equal(t, 3, dups[0].Line)

	scaffolds := byRule(res.Suggestions, model.RuleCacheScaffold)
	require.Len(t, scaffolds, 1)
	require.NotNil(t, scaffolds[0].Fix)
	assert.Equal(t, scaffolds[0].Fix.Range.Start, scaffolds[0].Fix.Range.End, "scaffold is an insertion")

	// Applying the scaffold silences both suggestions.
	res = AnalyzeFile(nil, nil, "bot.py", "python", scaffolds[0].Fix.Text+content)
	assert.Empty(t, byRule(res.Suggestions, model.RuleCacheScaffold))
	assert.Empty(t, byRule(res.Suggestions, model.RuleCacheDuplicate))
}

func TestAnalyze_ScaffoldForEditorLanguages(t *testing.T) {
	content := strings.Join([]string{
		"a = openai.chat.completions.create(...)",
		"b = openai.chat.completions.create(...)",
		"",
	}, "\n")

	tests := []struct {
		path, language string
	}{
		{"a.py", ""},
		{"a.tsx", "typescriptreact"},
		{"a.jsx", "javascriptreact"},
		{"a.php", ""},
		{"untitled", ""},
	}
	for _, tt := range tests {
		t.Run(tt.path+"/"+tt.language, func(t *testing.T) {
			vs := Analyze(nil, nil, tt.path, tt.language, content)
			assert.Len(t, byRule(vs, model.RuleCacheDuplicate), 1)
			scaffolds := byRule(vs, model.RuleCacheScaffold)
			require.Len(t, scaffolds, 1)
			require.NotNil(t, scaffolds[0].Fix)

			// The inserted scaffold silences both suggestions.
			vs = Analyze(nil, nil, tt.path, tt.language, scaffolds[0].Fix.Text+content)
			assert.Empty(t, byRule(vs, model.RuleCacheScaffold))
			assert.Empty(t, byRule(vs, model.RuleCacheDuplicate))
		})
	}
}

func TestScenario_ScanCarbonBudget(t *testing.T) {
	p := mustPolicy(t, `{"ci":{"maxCarbonPerPR":1}}`)
	r := Finalize(".", p, []model.FileResult{
		{Path: "b.py", Carbon: 2.2},
		{Path: "a.py", Carbon: 3},
	})
	assert.False(t, r.Passed)
	budget := byRule(r.Violations, model.RuleCarbonBudget)
	require.Len(t, budget, 1)
	assert.Equal(t, "5.2", model.FormatAmount(budget[0].Carbon))
	assert.Contains(t, budget[0].Message, "5.2 gCO2e")
	assert.Equal(t, 1.0, budget[0].Threshold)
}

func TestFinalize_StrictFailsOnWarnings(t *testing.T) {
	warn := model.Violation{File: "a.tf", Line: 1, Rule: model.RuleHighCarbon, Severity: model.SeverityWarning, Region: "ap-south-1"}
	results := []model.FileResult{{Path: "a.tf", Violations: []model.Violation{warn}}}

	assert.True(t, Finalize(".", nil, results).Passed)

	strict := mustPolicy(t, `{"ci":{"failOnWarning":true}}`)
	r := Finalize(".", strict, results)
	assert.True(t, r.Strict)
	assert.False(t, r.Passed)
}

func TestFinalize_SuggestionsNeverFail(t *testing.T) {
	s := model.Violation{Rule: model.RuleModelOverkill, Severity: model.SeverityError, Suggestion: true}
	r := Finalize(".", nil, []model.FileResult{{Path: "a.py", Suggestions: []model.Violation{s}}})
	assert.True(t, r.Passed)
	assert.Len(t, r.Suggestions, 1)
}

func TestFinalize_MergesInPathOrder(t *testing.T) {
	mk := func(path string) model.FileResult {
		return model.FileResult{Path: path, Violations: []model.Violation{{File: path, Rule: model.RuleLegacyModel, Severity: model.SeverityWarning}}}
	}
	r := Finalize(".", nil, []model.FileResult{mk("z.py"), mk("a.py"), mk("m/x.py")})
	var files []string
	for _, v := range r.Violations {
		files = append(files, v.File)
	}
	assert.Equal(t, []string{"a.py", "m/x.py", "z.py"}, files)
}

func TestFinalize_BudgetMonotonic(t *testing.T) {
	p := mustPolicy(t, `{"ci":{"maxCarbonPerPR":3,"maxCostPerPR":0.05}}`)
	var results []model.FileResult
	prevCarbon, prevCost := 0.0, 0.0
	wasFailing := false
	for i := 0; i < 60; i++ {
		results = append(results, model.FileResult{Path: "f" + string(rune('a'+i%26)) + ".py", Carbon: 0.11, Cost: 0.002})
		r := Finalize(".", p, results)
		require.GreaterOrEqual(t, r.TotalCarbon, prevCarbon)
		require.GreaterOrEqual(t, r.TotalCost, prevCost)
		if wasFailing {
			require.False(t, r.Passed, "step %d: adding usage made a failing scan pass", i)
		}
		wasFailing = !r.Passed
		prevCarbon, prevCost = r.TotalCarbon, r.TotalCost
	}
	assert.True(t, wasFailing)
}

func TestScan_EndToEnd(t *testing.T) {
	root := writeTree(t, map[string]string{
		"app/llm.py":        "client.chat.completions.create(model=\"gpt-4-32k\", messages=m)\n",
		"infra/main.tf":     "provider \"aws\" {\n  region = \"ap-south-1\"\n}\n",
		"node_modules/x.js": "const m = 'gpt-4'\n",
		"generated/a.py":    "m = 'gpt-4'\n",
		"README.md":         "gpt-4 is not scanned here\n",
		".greenlint.json":   `{"greenPolicy":{"maxModelTier":"medium","bannedModels":["claude-2"]},"ci":{"excludePaths":["generated/"]}}`,
	})
	p, found, err := config.LoadPolicy(config.PolicyPath(root, ""))
	require.NoError(t, err)
	require.True(t, found)

	var calls int
	r, err := Scan(context.Background(), root, Options{Policy: &p, Workers: 1, Progress: func(int, int) { calls++ }})
	require.NoError(t, err)

	assert.Equal(t, 2, r.FilesScanned)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, r.APICalls)
	assert.False(t, r.Passed)
	assert.Equal(t, []string{model.RuleTierViolation, model.RuleHighCarbon}, rulesOf(r.Violations))
	assert.Equal(t, "app/llm.py", r.Violations[0].File)

	require.Len(t, r.Models, 1)
	assert.Equal(t, "gpt-4-32k", r.Models[0].Name)
	require.Len(t, r.Regions, 1)
	assert.Equal(t, "ap-south-1", r.Regions[0].Name)

	assert.Contains(t, r.Report, "❌ FAILED")
	assert.Contains(t, r.Report, "Files scanned: 2")
}

func rulesOf(vs []model.Violation) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.Rule)
	}
	return out
}

func TestScan_SkipsUnreadableFiles(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root can read any file")
	}
	root := writeTree(t, map[string]string{
		"ok.py":     "m = 'gpt-4o-mini'\n",
		"locked.py": "m = 'gpt-4'\n",
	})
	require.NoError(t, os.Chmod(filepath.Join(root, "locked.py"), 0o000))

	r, err := Scan(context.Background(), root, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, r.FilesScanned)
}

func TestScan_CanceledDiscardsEverything(t *testing.T) {
	files := make(map[string]string)
	for i := 0; i < 50; i++ {
		files["f"+strings.Repeat("x", i)+".py"] = "m = 'gpt-4'\n"
	}
	root := writeTree(t, files)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r, err := Scan(ctx, root, Options{Workers: 2})
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, r)
}

func TestScan_CancelMidway(t *testing.T) {
	files := make(map[string]string)
	for i := 0; i < 40; i++ {
		files["f"+strings.Repeat("y", i)+".py"] = "m = 'gpt-4'\n"
	}
	root := writeTree(t, files)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r, err := Scan(ctx, root, Options{Workers: 1, Progress: func(cur, _ int) {
		if cur == 5 {
			cancel()
		}
	}})
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, r)
}

func TestAnalyzer_CachesByContentAndPolicy(t *testing.T) {
	an, err := NewAnalyzer(nil, 8)
	require.NoError(t, err)

	p1 := mustPolicy(t, `{}`)
	a := an.File(p1, "a.py", "python", "m = 'gpt-4'\n")
	b := an.File(p1, "a.py", "python", "m = 'gpt-4'\n")
	assert.Equal(t, a, b)
	assert.Equal(t, 1, an.Len())

	an.File(p1, "a.py", "python", "m = 'gpt-4o'\n")
	assert.Equal(t, 2, an.Len())

	// A reloaded policy is a new pointer and must not reuse old results.
	p2 := mustPolicy(t, `{"greenPolicy":{"bannedModels":["gpt-4"]}}`)
	c := an.File(p2, "a.py", "python", "m = 'gpt-4'\n")
	assert.Equal(t, 3, an.Len())
	assert.Len(t, byRule(c.Violations, model.RuleBannedModel), 1)
	assert.Empty(t, byRule(a.Violations, model.RuleBannedModel))

	an.Purge()
	assert.Zero(t, an.Len())
}

func TestAnalyze_PerFileBudget(t *testing.T) {
	p := mustPolicy(t, `{"ci":{"maxCarbonPerPR":0.1}}`)
	vs := Analyze(p, nil, "a.py", "python", "m = 'gpt-4'\n")
	budget := byRule(vs, model.RuleCarbonBudget)
	require.Len(t, budget, 1)
	assert.Equal(t, "a.py", budget[0].File)
	assert.Equal(t, 1, budget[0].Line)
}

func TestAnalyze_OrderedByLine(t *testing.T) {
	content := "x = 'text-davinci-003'\n\nregion = 'ap-south-1'\nm = 'gpt-4'\n"
	vs := Analyze(nil, nil, "a.py", "", content)
	require.NotEmpty(t, vs)
	for i := 1; i < len(vs); i++ {
		assert.LessOrEqual(t, vs[i-1].Line, vs[i].Line)
	}
}
