package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/theirongolddev/greenlint/internal/cli"
	"github.com/theirongolddev/greenlint/internal/config"

	"github.com/spf13/cobra"
)

var (
	flagRegionsProvider string
	flagRegionsTier     string
)

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "List cloud regions by grid carbon intensity",
	RunE:  runRegions,
}

func init() {
	regionsCmd.Flags().StringVar(&flagRegionsProvider, "provider", "", "Only show this provider (aws, gcp, azure)")
	regionsCmd.Flags().StringVar(&flagRegionsTier, "tier", "", "Only show this tier (green, moderate, dirty)")
	rootCmd.AddCommand(regionsCmd)
}

func runRegions(_ *cobra.Command, _ []string) error {
	regions := config.Regions()
	sort.SliceStable(regions, func(i, j int) bool {
		if regions[i].Intensity != regions[j].Intensity {
			return regions[i].Intensity < regions[j].Intensity
		}
		return regions[i].Code < regions[j].Code
	})

	rows := make([][]string, 0, len(regions))
	for _, r := range regions {
		if flagRegionsProvider != "" && !strings.EqualFold(r.Provider, flagRegionsProvider) {
			continue
		}
		if flagRegionsTier != "" && !strings.EqualFold(string(r.Tier), flagRegionsTier) {
			continue
		}
		rows = append(rows, []string{
			r.Code,
			r.Provider,
			r.Location,
			cli.FormatIntensity(r.Intensity),
			fmt.Sprintf("%.0f%%", r.RenewablePct),
			tierCell(string(r.Tier)),
		})
	}
	if len(rows) == 0 {
		fmt.Println("\n  No regions match.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("REGIONS  by grid intensity"))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Region", "Provider", "Location", "Intensity", "Renewable", "Tier"},
		Rows:    rows,
	}))
	return nil
}
