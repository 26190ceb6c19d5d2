package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/theirongolddev/greenlint/internal/cli"

	"github.com/spf13/cobra"
)

var (
	flagHistoryLimit int
	flagHistoryAll   bool
)

var historyCmd = &cobra.Command{
	Use:   "history [root]",
	Short: "Show recorded scans, score trend and badges",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "Number of scans to show")
	historyCmd.Flags().BoolVar(&flagHistoryAll, "all", false, "Show scans of every root")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(_ *cobra.Command, args []string) error {
	cfg := loadConfig()

	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	filter := root
	if flagHistoryAll {
		filter = ""
	}

	h, err := openHistory(cfg)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer func() { _ = h.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	recs, err := h.Recent(ctx, filter, flagHistoryLimit)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Println("\n  No recorded scans. Run `greenlint --record` to start a history.")
		return nil
	}

	title := "HISTORY  " + root
	if flagHistoryAll {
		title = "HISTORY  all roots"
	}
	title += "  (" + h.Dialect() + ")"
	fmt.Println()
	fmt.Println(cli.RenderTitle(title))
	fmt.Println()

	// Newest first in the table, oldest first in the trend.
	trend := make([]float64, len(recs))
	rows := make([][]string, 0, len(recs))
	for i, r := range recs {
		trend[len(recs)-1-i] = r.Carbon
		verdict := "pass"
		if !r.Passed {
			verdict = "FAIL"
		}
		row := []string{
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			verdict,
			cli.FormatCarbon(r.Carbon),
			cli.FormatCost(r.Cost),
			fmt.Sprintf("%d/%d", r.Errors, r.Warnings),
			fmt.Sprintf("%d", r.Score),
			r.Hash[:min(12, len(r.Hash))],
		}
		if flagHistoryAll {
			row = append([]string{filepath.Base(r.Root)}, row...)
		}
		rows = append(rows, row)
	}
	headers := []string{"Date", "Result", "Carbon", "Cost", "E/W", "Score", "Hash"}
	if flagHistoryAll {
		headers = append([]string{"Root"}, headers...)
	}
	fmt.Print(cli.RenderTable(cli.Table{Headers: headers, Rows: rows}))
	fmt.Println()
	fmt.Printf("  Carbon trend  %s\n", cli.RenderSparkline(trend))

	if !flagHistoryAll {
		base, err := h.Baseline(ctx, root)
		if err != nil {
			return err
		}
		fmt.Printf("  %d scans, %d passed, %s green points\n",
			base.Scans, base.PassingScans, cli.FormatNumber(int64(base.TotalPoints)))
	}

	seen := make(map[string]bool)
	var badges []string
	for _, r := range recs {
		for _, b := range r.Badges {
			if !seen[b] {
				seen[b] = true
				badges = append(badges, "★ "+cli.BadgeLabel(b))
			}
		}
	}
	if len(badges) > 0 {
		fmt.Printf("  Badges  %s\n", strings.Join(badges, "  "))
	}
	return nil
}
