package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/theirongolddev/greenlint/internal/cli"
	"github.com/theirongolddev/greenlint/internal/config"
	"github.com/theirongolddev/greenlint/internal/estimate"
	"github.com/theirongolddev/greenlint/internal/model"
	"github.com/theirongolddev/greenlint/internal/pipeline"
	"github.com/theirongolddev/greenlint/internal/source"

	"github.com/spf13/cobra"
)

var (
	flagAnalyzeLang   string
	flagAnalyzeFormat string
	flagAnalyzePath   string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file|->",
	Short: "Analyze a single file and print its located violations",
	Long: "Analyze one file the way an editor integration would: violations and\n" +
		"suggestions ordered by line. Use - to read the content from stdin.",
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&flagAnalyzeLang, "language", "", "Language override (default: from the file extension)")
	analyzeCmd.Flags().StringVar(&flagAnalyzePath, "path", "", "Path to report for stdin content")
	analyzeCmd.Flags().StringVarP(&flagAnalyzeFormat, "format", "f", cli.FormatJSON, "Output format: json or yaml")
	rootCmd.AddCommand(analyzeCmd)
}

// analyzeOutput mirrors the daemon's /v1/analyze response.
type analyzeOutput struct {
	Path       string            `json:"path" yaml:"path"`
	Language   string            `json:"language" yaml:"language"`
	Violations []model.Violation `json:"violations" yaml:"violations"`
}

func runAnalyze(_ *cobra.Command, args []string) error {
	var (
		data []byte
		err  error
		path = args[0]
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
		path = flagAnalyzePath
		if path == "" {
			path = "stdin"
		}
	} else {
		data, err = source.ReadFile(path)
	}
	if err != nil {
		return fail(exitError, fmt.Errorf("reading %s: %w", path, err))
	}

	// Per-file analysis degrades to defaults on a broken policy.
	dir := "."
	if args[0] != "-" {
		dir = filepath.Dir(path)
	}
	policy, _, err := config.LoadPolicy(nearestPolicy(dir))
	if err != nil {
		warnf("%v (using defaults)", err)
	}

	lang := flagAnalyzeLang
	if lang == "" {
		lang = source.LanguageFor(path)
	}

	cfg := loadConfig()
	vs := pipeline.Analyze(&policy, estimate.New(cfg.Estimator), filepath.ToSlash(path), lang, string(data))
	if vs == nil {
		vs = []model.Violation{}
	}
	if err := cli.Encode(os.Stdout, flagAnalyzeFormat, analyzeOutput{Path: path, Language: lang, Violations: vs}); err != nil {
		return fail(exitError, err)
	}
	return nil
}

// nearestPolicy resolves the policy for a file in dir: an explicit path
// wins, otherwise the closest ancestor holding a policy file.
func nearestPolicy(dir string) string {
	if flagPolicy != "" || os.Getenv("GREENLINT_POLICY") != "" {
		return config.PolicyPath(dir, flagPolicy)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return config.PolicyPath(dir, "")
	}
	for d := abs; ; d = filepath.Dir(d) {
		candidate := filepath.Join(d, config.PolicyFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		if filepath.Dir(d) == d {
			return filepath.Join(abs, config.PolicyFileName)
		}
	}
}
