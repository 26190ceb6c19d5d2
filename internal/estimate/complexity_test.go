package estimate

import (
	"strings"
	"testing"

	"github.com/theirongolddev/greenlint/internal/model"
)

func TestComplexity(t *testing.T) {
	tests := []struct {
		name   string
		window string
		want   int
	}{
		{"empty", "", 0},
		{"simple task clamps at zero", `classify the sentiment, yes or no`, 0},
		{"length only", strings.Repeat("x", 600), 2},
		{"complex keywords capped", `analyze, prove, derive, refactor and debug this algorithm`, 3},
		{
			"multi-turn with code",
			`{"role": "system"}, {"role": "user"}, {"role": "assistant"}, def solve(x):`,
			2,
		},
		{"output directive", `max_tokens=4096`, 1},
		{"small output directive", `max_tokens=200`, 0},
	}
	for _, tt := range tests {
		if got := Complexity(tt.window); got != tt.want {
			t.Errorf("%s: Complexity = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestComplexity_ClampedToTen(t *testing.T) {
	var b strings.Builder
	b.WriteString(strings.Repeat("z", 2100))
	b.WriteString(" analyze prove derive algorithm ```code``` max_tokens: 8000 ")
	for i := 0; i < 6; i++ {
		b.WriteString(`"role": "user" `)
	}
	if got := Complexity(b.String()); got != 10 {
		t.Fatalf("Complexity = %d, want 10", got)
	}
}

func TestAssessOverkill(t *testing.T) {
	tests := []struct {
		tier  model.Tier
		score int
		sev   model.Severity
		ok    bool
	}{
		{model.TierHeavy, 2, model.SeverityError, true},
		{model.TierHeavy, 5, model.SeverityWarning, true},
		{model.TierHeavy, 8, "", false},
		{model.TierMedium, 1, model.SeverityInfo, true},
		{model.TierMedium, 4, "", false},
		{model.TierLight, 0, "", false},
		{model.TierUnknown, 0, "", false},
	}
	for _, tt := range tests {
		o, ok := AssessOverkill(tt.tier, tt.score, "gpt-4")
		if ok != tt.ok || o.Severity != tt.sev {
			t.Errorf("AssessOverkill(%s, %d) = %v/%v, want %v/%v", tt.tier, tt.score, o.Severity, ok, tt.sev, tt.ok)
		}
		if ok && o.Alternative.Model != "gpt-4o-mini" {
			t.Errorf("alternative = %q", o.Alternative.Model)
		}
	}
}
