package config

import (
	"testing"

	"github.com/theirongolddev/greenlint/internal/model"
)

func TestRegionTierMatchesIntensityForEveryEntry(t *testing.T) {
	for _, r := range Regions() {
		got, ok := ClassifyRegion(r.Code)
		if !ok {
			t.Fatalf("ClassifyRegion(%q) returned !ok", r.Code)
		}
		var want model.RegionTier
		switch {
		case got.Intensity < 100:
			want = model.RegionGreen
		case got.Intensity < 350:
			want = model.RegionModerate
		default:
			want = model.RegionDirty
		}
		if got.Tier != want {
			t.Fatalf("%s: intensity %.0f has tier %s, want %s", r.Code, got.Intensity, got.Tier, want)
		}
	}
}

func TestClassifyRegion_Normalizes(t *testing.T) {
	for _, in := range []string{"AP-SOUTH-1", `"ap-south-1"`, "'ap-south-1'", " ap-south-1 "} {
		info, ok := ClassifyRegion(in)
		if !ok {
			t.Fatalf("ClassifyRegion(%q) returned !ok", in)
		}
		if info.Code != "ap-south-1" || info.Intensity != 700 {
			t.Fatalf("ClassifyRegion(%q) = %+v", in, info)
		}
	}
}

func TestClassifyRegion_NoPartialMatch(t *testing.T) {
	for _, in := range []string{"us-east", "east", "ap-south", "eu"} {
		if _, ok := ClassifyRegion(in); ok {
			t.Fatalf("ClassifyRegion(%q) matched a partial code", in)
		}
	}
}

func TestGreenAlternatives_AWSAscending(t *testing.T) {
	alts := GreenAlternatives("aws", 3)
	if len(alts) != 3 {
		t.Fatalf("len(alts) = %d, want 3", len(alts))
	}
	if alts[0].Code != "ca-central-1" || alts[0].Intensity != 20 {
		t.Fatalf("first alternative = %s (%.0f), want ca-central-1 (20)", alts[0].Code, alts[0].Intensity)
	}
	for i := 1; i < len(alts); i++ {
		if alts[i].Intensity < alts[i-1].Intensity {
			t.Fatalf("alternatives not ascending: %+v", alts)
		}
		if alts[i].Provider != "aws" || alts[i].Tier != model.RegionGreen {
			t.Fatalf("alternative %s is not a green aws region", alts[i].Code)
		}
	}
}
