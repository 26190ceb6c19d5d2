package pipeline

import (
	"math"

	"github.com/theirongolddev/greenlint/internal/config"
	"github.com/theirongolddev/greenlint/internal/model"
)

// unknownIntensity is assumed when a scan names no regions.
const unknownIntensity = 400.0

var badgeThresholds = []struct {
	id     string
	points int
}{
	{model.BadgeGreenStarter, 100},
	{model.BadgeEcoDeveloper, 500},
	{model.BadgeCarbonChampion, 1000},
	{model.BadgeSustainPioneer, 5000},
}

// Scan counts, including the current scan, that earn the history badges.
const (
	regionOptimizerScans = 5
	budgetKeeperScans    = 3
)

// RegionIntensity is the occurrence-weighted mean intensity of the regions a
// scan found, or 0 when it found none.
func RegionIntensity(r *model.ScanResult) float64 {
	var sum float64
	var n int
	for _, s := range r.Regions {
		sum += s.Intensity * float64(s.Occurrences)
		n += s.Occurrences
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Score computes the sustainability score, green points and badges for r
// against the earlier scans in base.
func Score(r *model.ScanResult, base model.Baseline) model.Sustainability {
	s := model.Sustainability{Score: 15, Points: 10}

	if base.Scans > 0 && base.LastCarbon > 0 && r.TotalCarbon < base.LastCarbon {
		pct := (base.LastCarbon - r.TotalCarbon) / base.LastCarbon * 100
		s.CarbonReduction = model.Round4(pct)
		s.Score += int(math.Min(60, pct*1.2))
		s.Points += int(pct * 5)
	}

	intensity := RegionIntensity(r)
	s.Intensity = intensity
	if intensity == 0 {
		intensity = unknownIntensity
	}
	var bonus int
	switch {
	case intensity <= 100:
		bonus = 25
	case intensity <= 250:
		bonus = 15
	case intensity <= unknownIntensity:
		bonus = 5
	}
	s.Score += bonus
	s.Points += bonus

	if base.LastIntensity > 0 && s.Intensity > 0 && s.Intensity < base.LastIntensity {
		s.Points += min(15, int((base.LastIntensity-s.Intensity)/20))
	}

	s.Score = min(100, s.Score)
	s.TotalPoints = base.TotalPoints + s.Points

	for _, b := range badgeThresholds {
		if s.TotalPoints >= b.points {
			s.Badges = append(s.Badges, b.id)
		}
	}
	green := base.GreenRegion
	if s.Intensity > 0 && s.Intensity < config.GreenBelow {
		green++
	}
	if green >= regionOptimizerScans {
		s.Badges = append(s.Badges, model.BadgeRegionOptimizer)
	}
	kept := base.UnderBudget
	if r.Budget.UnderCarbonBudget() {
		kept++
	}
	if kept >= budgetKeeperScans {
		s.Badges = append(s.Badges, model.BadgeBudgetKeeper)
	}
	return s
}
