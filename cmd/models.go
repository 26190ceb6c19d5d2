package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/theirongolddev/greenlint/internal/cli"
	"github.com/theirongolddev/greenlint/internal/config"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var flagModelsTier string

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List known models with tier, price and carbon rates",
	RunE:  runModels,
}

func init() {
	modelsCmd.Flags().StringVar(&flagModelsTier, "tier", "", "Only show this tier (light, medium, heavy)")
	rootCmd.AddCommand(modelsCmd)
}

func runModels(_ *cobra.Command, _ []string) error {
	entries := config.Models()
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Tier.Rank() != entries[j].Tier.Rank() {
			return entries[i].Tier.Rank() < entries[j].Tier.Rank()
		}
		return entries[i].ID < entries[j].ID
	})

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		if flagModelsTier != "" && !strings.EqualFold(string(e.Tier), flagModelsTier) {
			continue
		}
		rows = append(rows, []string{
			e.ID,
			e.Provider,
			tierCell(string(e.Tier)),
			fmt.Sprintf("$%.4f", e.InputPer1K),
			fmt.Sprintf("$%.4f", e.OutputPer1K),
			fmt.Sprintf("%.2fg", e.CarbonInPer1K),
			fmt.Sprintf("%.2fg", e.CarbonOutPer1K),
		})
	}
	if len(rows) == 0 {
		fmt.Printf("\n  No models in tier %q.\n", flagModelsTier)
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("MODELS  per 1K tokens"))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Model", "Provider", "Tier", "In", "Out", "CO2e In", "CO2e Out"},
		Rows:    rows,
	}))
	fmt.Println()
	fmt.Println("  Matching is by substring, longest identifier first.")
	return nil
}

// tierCell colors a tier name for table output.
func tierCell(tier string) string {
	return lipgloss.NewStyle().Foreground(cli.TierColor(tier)).Render(tier)
}
