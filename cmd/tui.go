package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/theirongolddev/greenlint/internal/config"
	"github.com/theirongolddev/greenlint/internal/pipeline"
	"github.com/theirongolddev/greenlint/internal/store"
	"github.com/theirongolddev/greenlint/internal/tui"
	"github.com/theirongolddev/greenlint/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var flagTUIAutoRescan time.Duration

var tuiCmd = &cobra.Command{
	Use:   "tui [root]",
	Short: "Launch interactive TUI dashboard",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTUI,
}

func init() {
	tuiCmd.Flags().DurationVar(&flagTUIAutoRescan, "auto-rescan", 0, "Rescan on this interval (0 = manual, press r)")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, args []string) error {
	cfg := loadConfig()
	theme.SetActive(cfg.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return err
	}

	var h *store.History
	if cfg.History.Enabled {
		if h, err = openHistory(cfg); err != nil {
			warnf("history unavailable: %v", err)
			h = nil
		} else {
			defer func() { _ = h.Close() }()
		}
	}

	app := tui.NewApp(tui.Options{
		Root:       root,
		PolicyPath: config.PolicyPath(root, flagPolicy),
		Scan: pipeline.Options{
			Estimator:     cfg.Estimator,
			Workers:       cfg.General.Workers,
			MaxViolations: cfg.General.MaxViolations,
		},
		History:    h,
		AutoRescan: flagTUIAutoRescan,
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
