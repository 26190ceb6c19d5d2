package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/theirongolddev/greenlint/internal/config"
	"github.com/theirongolddev/greenlint/internal/source"
	"github.com/theirongolddev/greenlint/internal/tui"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup [root]",
	Short: "Interactive wizard for the theme and the project policy",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, args []string) error {
	cfg := loadConfig()

	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return err
	}

	path := config.PolicyPath(root, flagPolicy)
	var current *config.PolicyConfig
	if p, found, err := config.LoadPolicy(path); err != nil {
		warnf("%v (starting from defaults)", err)
	} else if found {
		current = &p
	}

	files, _ := source.ScanDir(context.Background(), root, nil)

	vals := tui.DefaultSetupValues(cfg, current)
	if err := tui.NewSetupForm(root, len(files), &vals).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("\n  Setup cancelled, nothing written.")
			return nil
		}
		return err
	}

	if vals.WritePolicy {
		p, err := vals.Policy()
		if err != nil {
			return err
		}
		if err := tui.WritePolicy(path, p); err != nil {
			return err
		}
		fmt.Printf("\n  Policy written to %s\n", path)
	}

	vals.Apply(&cfg)
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("  Config saved to %s\n", config.Path())
	fmt.Println("  Run `greenlint setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}
