package config

import (
	"sort"
	"strings"

	"github.com/theirongolddev/greenlint/internal/model"
)

// Region tier thresholds in gCO2e/kWh.
const (
	GreenBelow    = 100.0
	ModerateBelow = 350.0

	// HighCarbonThreshold triggers high-carbon-region when no allowlist is set.
	HighCarbonThreshold = 400.0
)

// RegionInfo describes one cloud region's grid carbon intensity.
type RegionInfo struct {
	Provider     string
	Code         string
	Location     string
	Intensity    float64 // gCO2e/kWh
	RenewablePct float64
	Tier         model.RegionTier
}

// RegionTierFor derives the tier from intensity.
func RegionTierFor(intensity float64) model.RegionTier {
	switch {
	case intensity < GreenBelow:
		return model.RegionGreen
	case intensity < ModerateBelow:
		return model.RegionModerate
	default:
		return model.RegionDirty
	}
}

type regionRow struct {
	provider, code, location string
	intensity, renewable     float64
}

var regionRows = []regionRow{
	{"aws", "us-east-1", "N. Virginia", 379, 40},
	{"aws", "us-east-2", "Ohio", 410, 25},
	{"aws", "us-west-1", "N. California", 210, 55},
	{"aws", "us-west-2", "Oregon", 90, 85},
	{"aws", "ca-central-1", "Montreal", 20, 98},
	{"aws", "eu-west-1", "Ireland", 296, 45},
	{"aws", "eu-west-2", "London", 228, 50},
	{"aws", "eu-west-3", "Paris", 56, 92},
	{"aws", "eu-central-1", "Frankfurt", 338, 45},
	{"aws", "eu-north-1", "Stockholm", 30, 98},
	{"aws", "eu-south-1", "Milan", 330, 40},
	{"aws", "ap-south-1", "Mumbai", 700, 15},
	{"aws", "ap-southeast-1", "Singapore", 431, 5},
	{"aws", "ap-southeast-2", "Sydney", 610, 30},
	{"aws", "ap-northeast-1", "Tokyo", 465, 20},
	{"aws", "ap-northeast-2", "Seoul", 415, 10},
	{"aws", "sa-east-1", "Sao Paulo", 61, 85},
	{"aws", "me-south-1", "Bahrain", 620, 2},
	{"aws", "af-south-1", "Cape Town", 790, 10},

	{"gcp", "us-central1", "Iowa", 440, 60},
	{"gcp", "us-east1", "South Carolina", 560, 25},
	{"gcp", "us-east4", "N. Virginia", 379, 40},
	{"gcp", "us-west1", "Oregon", 78, 88},
	{"gcp", "europe-west1", "Belgium", 80, 80},
	{"gcp", "europe-west4", "Netherlands", 330, 60},
	{"gcp", "europe-west9", "Paris", 56, 92},
	{"gcp", "europe-north1", "Finland", 8, 97},
	{"gcp", "northamerica-northeast1", "Montreal", 20, 98},
	{"gcp", "southamerica-east1", "Sao Paulo", 61, 85},
	{"gcp", "asia-east1", "Taiwan", 509, 15},
	{"gcp", "asia-south1", "Mumbai", 700, 15},
	{"gcp", "asia-northeast1", "Tokyo", 465, 20},
	{"gcp", "australia-southeast1", "Sydney", 610, 30},

	{"azure", "eastus", "Virginia", 379, 40},
	{"azure", "eastus2", "Virginia", 379, 40},
	{"azure", "westus", "California", 210, 55},
	{"azure", "westus2", "Washington", 90, 85},
	{"azure", "centralus", "Iowa", 440, 55},
	{"azure", "northeurope", "Ireland", 296, 45},
	{"azure", "westeurope", "Netherlands", 330, 60},
	{"azure", "uksouth", "London", 228, 50},
	{"azure", "swedencentral", "Gavle", 30, 98},
	{"azure", "norwayeast", "Oslo", 10, 98},
	{"azure", "francecentral", "Paris", 56, 92},
	{"azure", "canadacentral", "Toronto", 30, 90},
	{"azure", "brazilsouth", "Sao Paulo", 61, 85},
	{"azure", "centralindia", "Pune", 700, 15},
	{"azure", "southeastasia", "Singapore", 431, 5},
	{"azure", "japaneast", "Tokyo", 465, 20},
	{"azure", "australiaeast", "Sydney", 610, 30},
}

var (
	regionTable []RegionInfo
	regionIndex map[string]RegionInfo
)

func init() {
	regionTable = make([]RegionInfo, 0, len(regionRows))
	regionIndex = make(map[string]RegionInfo, len(regionRows))
	for _, r := range regionRows {
		info := RegionInfo{
			Provider:     r.provider,
			Code:         r.code,
			Location:     r.location,
			Intensity:    r.intensity,
			RenewablePct: r.renewable,
			Tier:         RegionTierFor(r.intensity),
		}
		regionTable = append(regionTable, info)
		regionIndex[r.code] = info
	}
}

// Regions returns a copy of the region table.
func Regions() []RegionInfo {
	return append([]RegionInfo(nil), regionTable...)
}

// NormalizeRegion lower-cases a region code and strips surrounding quotes.
func NormalizeRegion(code string) string {
	return strings.ToLower(strings.Trim(strings.TrimSpace(code), "\"'`"))
}

// ClassifyRegion looks up a region by exact normalized code.
func ClassifyRegion(code string) (RegionInfo, bool) {
	info, ok := regionIndex[NormalizeRegion(code)]
	return info, ok
}

// GreenAlternatives returns up to n green regions from the same provider,
// ascending by intensity.
func GreenAlternatives(provider string, n int) []RegionInfo {
	var out []RegionInfo
	for _, r := range regionTable {
		if r.Provider == provider && r.Tier == model.RegionGreen {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Intensity != out[j].Intensity {
			return out[i].Intensity < out[j].Intensity
		}
		return out[i].Code < out[j].Code
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
