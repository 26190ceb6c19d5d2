package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/theirongolddev/greenlint/internal/artifact"
	"github.com/theirongolddev/greenlint/internal/cli"
	"github.com/theirongolddev/greenlint/internal/config"
	"github.com/theirongolddev/greenlint/internal/model"
	"github.com/theirongolddev/greenlint/internal/pipeline"
	"github.com/theirongolddev/greenlint/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagFormat   string
	flagSARIF    string
	flagRecord   bool
	flagPublish  bool
	flagNoReport bool
)

func init() {
	rootCmd.Flags().StringVarP(&flagFormat, "format", "f", cli.FormatText, "Output format: text, json or yaml")
	rootCmd.Flags().StringVar(&flagSARIF, "sarif", "", "Also write a SARIF 2.1.0 log to this path")
	rootCmd.Flags().BoolVar(&flagRecord, "record", false, "Record the scan in history and print the sustainability score")
	rootCmd.Flags().BoolVar(&flagPublish, "publish", false, "Publish the report to the configured object store")
	rootCmd.Flags().BoolVar(&flagNoReport, "no-report", false, "Do not write the report file into the scanned root")
}

// scanOutput is the --format json/yaml document.
type scanOutput struct {
	model.ScanResult `yaml:",inline"`

	Hash           string                `json:"hash" yaml:"hash"`
	Sustainability *model.Sustainability `json:"sustainability,omitempty" yaml:"sustainability,omitempty"`
	Published      []string              `json:"published,omitempty" yaml:"published,omitempty"`
}

func runScan(_ *cobra.Command, args []string) error {
	switch flagFormat {
	case cli.FormatText, cli.FormatJSON, cli.FormatYAML:
	default:
		return fail(exitError, fmt.Errorf("unknown format %q (want text, json or yaml)", flagFormat))
	}

	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return fail(exitError, fmt.Errorf("resolving root: %w", err))
	}
	if info, err := os.Stat(root); err != nil {
		return fail(exitError, err)
	} else if !info.IsDir() {
		return fail(exitError, fmt.Errorf("%s is not a directory", root))
	}

	cfg := loadConfig()

	// A broken policy is operator error here: no best-effort scan.
	policyPath := config.PolicyPath(root, flagPolicy)
	policy, found, err := config.LoadPolicy(policyPath)
	if err != nil {
		return fail(exitError, err)
	}
	if found {
		progressf("Policy: %s\n", policyPath)
	} else {
		progressf("No policy at %s, using defaults\n", policyPath)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// No progress bar in CI logs.
	ci := config.DetectCI()

	progressf("Scanning %s...\n", root)
	start := time.Now()
	r, err := pipeline.Scan(ctx, root, pipeline.Options{
		Policy:        &policy,
		Estimator:     cfg.Estimator,
		Workers:       cfg.General.Workers,
		MaxViolations: cfg.General.MaxViolations,
		Progress: func(current, total int) {
			if flagQuiet || ci.Active() {
				return
			}
			if current%50 == 0 || current == total {
				fmt.Fprintf(os.Stderr, "\r  Analyzing %s", cli.RenderProgressBar(current, total, 30))
			}
		},
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return fail(exitError, errors.New("scan interrupted"))
		}
		return fail(exitError, err)
	}
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "\r  Analyzed %s files in %.1fs      \n", cli.FormatNumber(int64(r.FilesScanned)), time.Since(start).Seconds())
	}

	if err := writeReports(r, root, cfg, ci); err != nil {
		return fail(exitError, err)
	}

	hash, err := artifact.HashReport(r)
	if err != nil {
		return fail(exitError, fmt.Errorf("hashing report: %w", err))
	}
	out := scanOutput{ScanResult: *r, Hash: hash}

	if flagRecord {
		if !cfg.History.Enabled {
			warnf("history is disabled in %s; --record ignored", config.Path())
		} else if s, err := recordScan(ctx, r, hash, cfg); err != nil {
			warnf("recording history: %v", err)
		} else {
			out.Sustainability = &s
		}
	}

	if flagPublish {
		keys, err := publishReport(ctx, r, hash, cfg)
		if err != nil {
			return fail(exitError, fmt.Errorf("publishing report: %w", err))
		}
		out.Published = keys
	}

	if flagFormat == cli.FormatText {
		fmt.Print(cli.RenderSummary(r, cfg.General.MaxViolations))
		if out.Sustainability != nil {
			printSustainability(*out.Sustainability)
		}
		fmt.Printf("  Report hash: %s\n", hash)
		for _, k := range out.Published {
			fmt.Printf("  Published: %s\n", k)
		}
	} else if err := cli.Encode(os.Stdout, flagFormat, out); err != nil {
		return fail(exitError, err)
	}

	if !r.Passed {
		return fail(exitFailed, nil)
	}
	return nil
}

// writeReports writes the markdown report into the root, appends it to the
// CI step summary when one is available, and writes SARIF if asked.
func writeReports(r *model.ScanResult, root string, cfg config.Config, ci config.CIInfo) error {
	report := []byte(r.Report)

	if !flagNoReport {
		path := filepath.Join(root, cfg.General.ReportFile)
		if err := cli.WriteFileAtomic(path, report); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		progressf("Report: %s\n", path)
	}

	if ci.SummaryPath != "" {
		if err := cli.AppendFile(ci.SummaryPath, report); err != nil {
			return fmt.Errorf("writing %s step summary: %w", ci.Provider, err)
		}
	}

	if flagSARIF != "" {
		data, err := cli.SARIF(r, version, cli.Provenance{
			RepositoryURI: ci.Repository,
			RevisionID:    ci.SHA,
			Branch:        ci.Ref,
		})
		if err != nil {
			return fmt.Errorf("encoding sarif: %w", err)
		}
		if err := cli.WriteFileAtomic(flagSARIF, data); err != nil {
			return fmt.Errorf("writing sarif: %w", err)
		}
		progressf("SARIF: %s\n", flagSARIF)
	}
	return nil
}

// openHistory opens the configured history store.
func openHistory(cfg config.Config) (*store.History, error) {
	return store.OpenDSN(cfg.History.DSN)
}

func recordScan(ctx context.Context, r *model.ScanResult, hash string, cfg config.Config) (model.Sustainability, error) {
	h, err := openHistory(cfg)
	if err != nil {
		return model.Sustainability{}, err
	}
	defer func() { _ = h.Close() }()
	return saveScan(ctx, h, r, hash)
}

// saveScan scores r against the root's recorded baseline and stores it.
func saveScan(ctx context.Context, h *store.History, r *model.ScanResult, hash string) (model.Sustainability, error) {
	base, err := h.Baseline(ctx, r.Root)
	if err != nil {
		return model.Sustainability{}, err
	}
	s := pipeline.Score(r, base)
	if err := h.Save(ctx, store.NewRecord(r, hash, s, time.Now())); err != nil {
		return s, err
	}
	return s, nil
}

func publishReport(ctx context.Context, r *model.ScanResult, hash string, cfg config.Config) ([]string, error) {
	pub, err := artifact.NewPublisher(cfg.Artifact)
	if err != nil {
		return nil, err
	}
	doc, err := artifact.Canonical(r)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()
	return pub.Publish(ctx, hash,
		artifact.Object{Name: "result.json", ContentType: "application/json", Data: doc},
		artifact.Object{Name: "report.md", ContentType: "text/markdown; charset=utf-8", Data: []byte(r.Report)},
	)
}

func printSustainability(s model.Sustainability) {
	fmt.Printf("  Sustainability score: %d/100  (+%d points, %s total)\n",
		s.Score, s.Points, cli.FormatNumber(int64(s.TotalPoints)))
	if s.CarbonReduction > 0 {
		fmt.Printf("  Carbon down %.1f%% since the last recorded scan\n", s.CarbonReduction)
	}
	for _, b := range s.Badges {
		fmt.Printf("  ★ %s\n", cli.BadgeLabel(b))
	}
	fmt.Println()
}
