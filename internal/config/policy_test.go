package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/theirongolddev/greenlint/internal/model"
)

func TestParsePolicy_Defaults(t *testing.T) {
	p, err := ParsePolicy([]byte(`{}`))
	if err != nil {
		t.Fatalf("ParsePolicy: %v", err)
	}
	if p.CarbonCeiling() != 50 {
		t.Fatalf("CarbonCeiling = %v, want 50", p.CarbonCeiling())
	}
	if p.CostCeiling() != 1.0 {
		t.Fatalf("CostCeiling = %v, want 1.0", p.CostCeiling())
	}
	if p.Strict() {
		t.Fatal("Strict = true by default")
	}
}

func TestParsePolicy_CeilingPrecedence(t *testing.T) {
	p, err := ParsePolicy([]byte(`{"carbonBudget":{"perCommit":12},"ci":{"maxCostPerPR":0.25}}`))
	if err != nil {
		t.Fatalf("ParsePolicy: %v", err)
	}
	if p.CarbonCeiling() != 12 {
		t.Fatalf("CarbonCeiling = %v, want perCommit 12", p.CarbonCeiling())
	}

	p, err = ParsePolicy([]byte(`{"carbonBudget":{"perCommit":12},"ci":{"maxCarbonPerPR":1}}`))
	if err != nil {
		t.Fatalf("ParsePolicy: %v", err)
	}
	if p.CarbonCeiling() != 1 {
		t.Fatalf("CarbonCeiling = %v, want maxCarbonPerPR 1", p.CarbonCeiling())
	}
}

func TestParsePolicy_Invalid(t *testing.T) {
	for _, doc := range []string{`{"greenPolicy":`, `{"greenPolicy":{"maxModelTier":"huge"}}`} {
		_, err := ParsePolicy([]byte(doc))
		if !errors.Is(err, ErrPolicyInvalid) {
			t.Fatalf("ParsePolicy(%s) error = %v, want ErrPolicyInvalid", doc, err)
		}
	}
}

func TestLoadPolicy_MissingIsNotAnError(t *testing.T) {
	p, found, err := LoadPolicy(filepath.Join(t.TempDir(), PolicyFileName))
	if err != nil {
		t.Fatalf("LoadPolicy: %v", err)
	}
	if found {
		t.Fatal("found = true for missing file")
	}
	if p.CarbonCeiling() != DefaultCarbonCeiling {
		t.Fatalf("CarbonCeiling = %v", p.CarbonCeiling())
	}
}

func TestExcluded(t *testing.T) {
	p := PolicyConfig{CI: CIConfig{ExcludePaths: []string{"vendor/", "./testdata"}}}
	if !p.Excluded("vendor/x/y.go") {
		t.Fatal("vendor/x/y.go not excluded")
	}
	if !p.Excluded("testdata/a.py") {
		t.Fatal("testdata/a.py not excluded")
	}
	if p.Excluded("src/main.py") {
		t.Fatal("src/main.py excluded")
	}
}

func TestPolicyStore_ReloadReplacesWholePolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), PolicyFileName)
	write := func(s string) {
		t.Helper()
		if err := os.WriteFile(path, []byte(s), 0o600); err != nil {
			t.Fatalf("write policy: %v", err)
		}
	}

	write(`{"greenPolicy":{"maxModelTier":"light","bannedModels":["gpt-4"]}}`)
	s := NewPolicyStore(path)
	first := s.Current()
	if first.GreenPolicy.MaxModelTier != model.TierLight {
		t.Fatalf("MaxModelTier = %q", first.GreenPolicy.MaxModelTier)
	}

	write(`{"ci":{"failOnWarning":true}}`)
	if err := s.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	second := s.Current()
	if second.GreenPolicy.MaxModelTier != "" || len(second.GreenPolicy.BannedModels) != 0 {
		t.Fatalf("stale fields survived reload: %+v", second.GreenPolicy)
	}
	if !second.Strict() {
		t.Fatal("Strict = false after reload")
	}
	if first.GreenPolicy.MaxModelTier != model.TierLight {
		t.Fatal("earlier snapshot was mutated by reload")
	}

	// Reloading an unchanged file is idempotent.
	if err := s.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if !reflect.DeepEqual(*s.Current(), *second) {
		t.Fatalf("second reload changed the policy: %+v vs %+v", *s.Current(), *second)
	}
}

func TestPolicyStore_MalformedFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), PolicyFileName)
	if err := os.WriteFile(path, []byte(`{not json`), 0o600); err != nil {
		t.Fatal(err)
	}
	s := NewPolicyStore(path)
	if s.Err() == "" {
		t.Fatal("Err() empty after malformed load")
	}
	if s.Current().CarbonCeiling() != DefaultCarbonCeiling {
		t.Fatalf("CarbonCeiling = %v, want default", s.Current().CarbonCeiling())
	}
}
