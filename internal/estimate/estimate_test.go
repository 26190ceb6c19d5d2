package estimate

import (
	"strings"
	"testing"

	"github.com/theirongolddev/greenlint/internal/config"
	"github.com/theirongolddev/greenlint/internal/detect"
	"github.com/theirongolddev/greenlint/internal/model"
)

func firstModel(t *testing.T, content string) model.Finding {
	t.Helper()
	fs := detect.Models(content, "a.py")
	if len(fs) == 0 {
		t.Fatalf("no model finding in %q", content)
	}
	return fs[0]
}

func TestEstimate_UsesNearestQuotedPrompt(t *testing.T) {
	prompt := strings.Repeat("a", 41)
	content := `client.create(model="gpt-4", prompt="` + prompt + `")`
	usage, got := Default().Estimate(content, firstModel(t, content))
	if got != prompt {
		t.Fatalf("prompt = %q, want the 41-char literal", got)
	}
	// ceil(41/4) = 11
	if usage.Tokens != 11 {
		t.Fatalf("Tokens = %d, want 11", usage.Tokens)
	}
	if !usage.Known || usage.Tier != model.TierHeavy {
		t.Fatalf("usage = %+v", usage)
	}
	wantCarbon := 11.0 / 1000 * 4.32
	if usage.Carbon != wantCarbon {
		t.Fatalf("Carbon = %v, want %v", usage.Carbon, wantCarbon)
	}
}

func TestEstimate_SkipsShortAndSelfLiterals(t *testing.T) {
	content := `call("gpt-4", "hi")`
	usage, got := Default().Estimate(content, firstModel(t, content))
	if got != "" {
		t.Fatalf("prompt = %q, want placeholder", got)
	}
	if usage.PromptChars != config.DefaultEstimator().DefaultPromptChars {
		t.Fatalf("PromptChars = %d, want default", usage.PromptChars)
	}
}

func TestEstimate_UnknownModelUsesDefaults(t *testing.T) {
	content := `m = "gpt-9-experimental"`
	usage, _ := Default().Estimate(content, firstModel(t, content))
	if usage.Known {
		t.Fatal("Known = true for unknown model")
	}
	if usage.Carbon <= 0 || usage.Cost <= 0 {
		t.Fatalf("unknown model estimated as zero: %+v", usage)
	}
	want := float64(usage.Tokens) / 1000 * config.UnknownCarbonPer1K
	if usage.Carbon != want {
		t.Fatalf("Carbon = %v, want %v", usage.Carbon, want)
	}
}

func TestTokens_MinimumOne(t *testing.T) {
	e := Default()
	if got := e.Tokens(0); got != 1 {
		t.Fatalf("Tokens(0) = %d, want 1", got)
	}
	if got := e.Tokens(9); got != 3 {
		t.Fatalf("Tokens(9) = %d, want 3", got)
	}
}

func TestNew_CustomCharsPerToken(t *testing.T) {
	e := New(config.EstimatorConfig{CharsPerToken: 2})
	if got := e.Tokens(9); got != 5 {
		t.Fatalf("Tokens(9) = %d, want 5", got)
	}
	if e.Config().ContextRadius != 500 {
		t.Fatalf("ContextRadius = %d, want default 500", e.Config().ContextRadius)
	}
}

func TestWindow_Radius(t *testing.T) {
	e := New(config.EstimatorConfig{ContextRadius: 3})
	w, rs, re := e.Window("0123456789", 5, 6)
	if w != "2345678" || rs != 3 || re != 4 {
		t.Fatalf("Window = %q %d %d", w, rs, re)
	}
}

func TestWindow_LengthBandsFollowRadius(t *testing.T) {
	content := strings.Repeat("x", 3000) + "gpt-4o" + strings.Repeat("x", 3000)
	start := strings.Index(content, "gpt-4o")
	end := start + len("gpt-4o")

	w, _, _ := Default().Window(content, start, end)
	if len(w) > 2000 {
		t.Fatalf("default window is %d chars, want at most 2000", len(w))
	}
	if got := Complexity(w); got != 2 {
		t.Errorf("Complexity at the default radius = %d, want 2", got)
	}

	w, _, _ = New(config.EstimatorConfig{ContextRadius: 1200}).Window(content, start, end)
	if got := Complexity(w); got != 3 {
		t.Errorf("Complexity at radius 1200 = %d, want 3", got)
	}
}
