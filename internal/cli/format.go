// Package cli provides formatting and rendering utilities for terminal output
// and scan reports.
package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/greenlint/internal/model"
)

// FormatTokens formats a token count with human-readable suffixes.
// e.g., 1234 -> "1.2K", 1234567 -> "1.2M"
func FormatTokens(n int64) string {
	abs := n
	if abs < 0 {
		abs = -abs
	}

	switch {
	case abs >= 1_000_000_000:
		return fmt.Sprintf("%.1fB", float64(n)/1_000_000_000)
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	default:
		return strconv.FormatInt(n, 10)
	}
}

// FormatCost formats an estimated USD cost. Per-call estimates are tiny, so
// small values keep four decimals.
func FormatCost(cost float64) string {
	switch {
	case cost >= 1000:
		return "$" + FormatNumber(int64(cost+0.5))
	case cost >= 10:
		return fmt.Sprintf("$%.2f", cost)
	case cost == 0:
		return "$0"
	}
	return "$" + model.FormatAmount(cost)
}

// FormatCarbon formats an estimated carbon mass in gCO2e, switching to kg
// above 1000 g.
func FormatCarbon(g float64) string {
	if g >= 1000 {
		return model.FormatAmount(g/1000) + " kgCO2e"
	}
	return model.FormatAmount(g) + " gCO2e"
}

// FormatIntensity formats a grid carbon intensity.
func FormatIntensity(v float64) string {
	return model.FormatAmount(v) + " gCO2e/kWh"
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatLocation renders file:line, or "(scan)" for scan-level violations.
func FormatLocation(v model.Violation) string {
	if v.File == "" {
		return "(scan)"
	}
	if v.Line == 0 {
		return v.File
	}
	return fmt.Sprintf("%s:%d", v.File, v.Line)
}

// ProportionBar renders a fixed-width bar for a used fraction. Fractions
// above 1 render full.
func ProportionBar(used float64, width int) string {
	if width <= 0 {
		return ""
	}
	if used < 0 {
		used = 0
	}
	filled := int(used * float64(width))
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

var badgeLabels = map[string]string{
	model.BadgeGreenStarter:    "Green Starter",
	model.BadgeEcoDeveloper:    "Eco Developer",
	model.BadgeCarbonChampion:  "Carbon Champion",
	model.BadgeRegionOptimizer: "Region Optimizer",
	model.BadgeBudgetKeeper:    "Budget Keeper",
	model.BadgeSustainPioneer:  "Sustainability Pioneer",
}

// BadgeLabel returns the display name of a badge ID.
func BadgeLabel(id string) string {
	if name, ok := badgeLabels[id]; ok {
		return name
	}
	return id
}
