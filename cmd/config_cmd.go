package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/theirongolddev/greenlint/internal/config"
	"github.com/theirongolddev/greenlint/internal/model"
	"github.com/theirongolddev/greenlint/internal/store"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config [root]",
	Short: "Show the effective tool config and project policy",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Report file:    %s\n", cfg.General.ReportFile)
	fmt.Printf("    Max violations: %d\n", cfg.General.MaxViolations)
	if cfg.General.Workers > 0 {
		fmt.Printf("    Workers:        %d\n", cfg.General.Workers)
	} else {
		fmt.Println("    Workers:        one per CPU")
	}
	fmt.Println()

	e := cfg.Estimator
	fmt.Println("  [Estimator]")
	fmt.Printf("    Chars per token: %g\n", e.CharsPerToken)
	fmt.Printf("    Context radius:  %d\n", e.ContextRadius)
	fmt.Printf("    Prompt chars:    %d-%d (default %d)\n", e.MinPromptChars, e.MaxPromptChars, e.DefaultPromptChars)
	fmt.Println()

	fmt.Println("  [History]")
	fmt.Printf("    Enabled: %v\n", cfg.History.Enabled)
	if cfg.History.DSN != "" {
		fmt.Printf("    Store:   postgres (%s)\n", maskDSN(cfg.History.DSN))
	} else {
		fmt.Printf("    Store:   sqlite (%s)\n", store.DefaultPath())
	}
	fmt.Println()

	a := cfg.Artifact
	fmt.Println("  [Artifact]")
	if a.Endpoint == "" || a.Bucket == "" {
		fmt.Println("    Publishing: not configured")
	} else {
		fmt.Printf("    Endpoint:   %s (ssl %v)\n", a.Endpoint, a.UseSSL)
		fmt.Printf("    Bucket:     %s\n", a.Bucket)
		if a.AccessKey != "" {
			fmt.Printf("    Access key: %s\n", maskSecret(a.AccessKey))
		}
	}
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:  %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Debounce: %dms\n", cfg.Daemon.DebounceMS)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	root, err = filepath.Abs(root)
	if err != nil {
		return err
	}
	path := config.PolicyPath(root, flagPolicy)
	p, found, err := config.LoadPolicy(path)

	fmt.Println("  [Policy]")
	switch {
	case err != nil:
		fmt.Printf("    File:   %s\n", path)
		fmt.Printf("    Status: invalid, %v\n", err)
	case !found:
		fmt.Printf("    File:   %s (not found, defaults)\n", path)
	default:
		fmt.Printf("    File:   %s\n", path)
	}
	fmt.Printf("    Carbon budget:   %s gCO2e\n", model.FormatAmount(p.CarbonCeiling()))
	fmt.Printf("    Cost budget:     $%s\n", model.FormatAmount(p.CostCeiling()))
	if t := p.AlertThreshold(); t > 0 {
		fmt.Printf("    Alert threshold: %.0f%%\n", t*100)
	}
	g := p.GreenPolicy
	if g.MaxModelTier != "" {
		fmt.Printf("    Max model tier:  %s\n", g.MaxModelTier)
	}
	if len(g.BannedModels) > 0 {
		fmt.Printf("    Banned models:   %s\n", strings.Join(g.BannedModels, ", "))
	}
	if len(g.AllowedRegions) > 0 {
		fmt.Printf("    Allowed regions: %s\n", strings.Join(g.AllowedRegions, ", "))
	}
	fmt.Printf("    Require caching: %v\n", g.RequireCaching)
	fmt.Printf("    Strict:          %v\n", p.Strict())
	if n := p.DailyUsers(); n > 0 {
		fmt.Printf("    Daily users:     %d\n", n)
	}
	if len(p.CI.ExcludePaths) > 0 {
		fmt.Printf("    Excluded:        %s\n", strings.Join(p.CI.ExcludePaths, ", "))
	}
	fmt.Println()

	fmt.Println("  Run `greenlint setup` to reconfigure.")
	return nil
}

func maskSecret(s string) string {
	if len(s) > 8 {
		return s[:4] + "..." + s[len(s)-4:]
	}
	return "****"
}

// maskDSN hides the password in a URL-style DSN.
func maskDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return dsn
	}
	creds := dsn[scheme+3 : at]
	if colon := strings.Index(creds, ":"); colon >= 0 {
		creds = creds[:colon] + ":****"
	}
	return dsn[:scheme+3] + creds + dsn[at:]
}
