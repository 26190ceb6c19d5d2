package config

import (
	"testing"

	"github.com/theirongolddev/greenlint/internal/model"
)

func TestClassifyModel_EveryTableEntryResolvesToItself(t *testing.T) {
	for _, e := range Models() {
		got, ok := ClassifyModel(e.ID)
		if !ok {
			t.Fatalf("ClassifyModel(%q) returned !ok", e.ID)
		}
		if got.ID != e.ID || got.Tier != e.Tier {
			t.Fatalf("ClassifyModel(%q) = %s/%s, want %s/%s", e.ID, got.ID, got.Tier, e.ID, e.Tier)
		}
	}
}

func TestClassifyModel_LongestSubstringWins(t *testing.T) {
	tests := []struct {
		id   string
		want string
		tier model.Tier
	}{
		{"gpt-4o-mini-2024-07-18", "gpt-4o-mini", model.TierLight},
		{"gpt-4o", "gpt-4o", model.TierMedium},
		{"gpt-4-32k", "gpt-4-32k", model.TierHeavy},
		{"GPT-4-0613", "gpt-4", model.TierHeavy},
		{"gpt-4.1-mini", "gpt-4.1-mini", model.TierLight},
		{"claude-3-5-haiku-20241022", "claude-3-5-haiku", model.TierLight},
		{"claude-opus-4-1", "claude-opus", model.TierHeavy},
		{"gemini-2.5-flash-lite", "gemini-2.5-flash", model.TierLight},
		{"o1-mini", "o1-mini", model.TierMedium},
	}
	for _, tt := range tests {
		got, ok := ClassifyModel(tt.id)
		if !ok {
			t.Fatalf("ClassifyModel(%q) returned !ok", tt.id)
		}
		if got.ID != tt.want || got.Tier != tt.tier {
			t.Fatalf("ClassifyModel(%q) = %s/%s, want %s/%s", tt.id, got.ID, got.Tier, tt.want, tt.tier)
		}
	}
}

// A table entry that contains another entry must never lose to it.
func TestClassifyModel_ContainedEntriesDoNotShadow(t *testing.T) {
	for _, outer := range Models() {
		for _, inner := range Models() {
			if outer.ID == inner.ID || len(inner.ID) >= len(outer.ID) {
				continue
			}
			if got, _ := ClassifyModel(outer.ID); got.ID == inner.ID {
				t.Fatalf("%q classified under shorter entry %q", outer.ID, inner.ID)
			}
		}
	}
}

func TestClassifyModel_Unknown(t *testing.T) {
	got, ok := ClassifyModel("my-inhouse-model")
	if ok {
		t.Fatalf("ClassifyModel returned ok for unknown model: %+v", got)
	}
	if got.Tier != model.TierUnknown {
		t.Fatalf("tier = %s, want unknown", got.Tier)
	}
}

func TestCalculateUsage_UnknownFallsBackToDefaults(t *testing.T) {
	cost, carbon, known := CalculateUsage("my-inhouse-model", 2000)
	if known {
		t.Fatal("known = true for unknown model")
	}
	if cost != 0.02 {
		t.Fatalf("cost = %v, want 0.02", cost)
	}
	if carbon != 1.0 {
		t.Fatalf("carbon = %v, want 1.0", carbon)
	}
}

func TestCalculateUsage_Known(t *testing.T) {
	cost, carbon, known := CalculateUsage("gpt-4", 1000)
	if !known {
		t.Fatal("known = false for gpt-4")
	}
	if cost != 0.03 {
		t.Fatalf("cost = %v, want 0.03", cost)
	}
	if carbon != 4.32 {
		t.Fatalf("carbon = %v, want 4.32", carbon)
	}
}

func TestAlternativeFor(t *testing.T) {
	tests := map[string]string{
		"gpt-4":         "gpt-4o-mini",
		"claude-3-opus": "claude-3-5-haiku",
		"gemini-ultra":  "gemini-2.5-flash",
		"unheard-of":    "gpt-4o-mini",
	}
	for id, want := range tests {
		if got := AlternativeFor(id).Model; got != want {
			t.Fatalf("AlternativeFor(%q) = %q, want %q", id, got, want)
		}
	}
}
