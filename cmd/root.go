// Package cmd implements the greenlint CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/greenlint/internal/config"
)

// version is stamped into SARIF output; overridden at build time with
// -ldflags "-X github.com/theirongolddev/greenlint/cmd.version=...".
var version = "dev"

// Exit codes of the batch scan.
const (
	exitPassed = 0
	exitFailed = 1
	exitError  = 2
)

var (
	flagPolicy string
	flagQuiet  bool
)

var rootCmd = &cobra.Command{
	Use:   "greenlint [root]",
	Short: "Carbon and cost linter for LLM and cloud code",
	Long: "Scan a source tree for AI model calls and cloud regions, estimate their\n" +
		"carbon and cost, and check them against the project's green policy.\n\n" +
		"Exit codes: 0 passed, 1 failed policy or budget checks, 2 configuration or I/O error.",
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runScan,
}

// codeError carries a process exit code through cobra's error return.
type codeError struct {
	code int
	err  error // nil for a clean verdict such as a failed scan
}

func (e *codeError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *codeError) Unwrap() error { return e.err }

// fail wraps err so Execute exits with code.
func fail(code int, err error) error { return &codeError{code: code, err: err} }

// Execute is the main entry point called from main.go.
func Execute() {
	// A missing .env is the normal case.
	_ = godotenv.Load()

	err := rootCmd.Execute()
	if err == nil {
		return
	}
	var ce *codeError
	if errors.As(err, &ce) {
		if ce.err != nil {
			fmt.Fprintf(os.Stderr, "  greenlint: %v\n", ce.err)
		}
		os.Exit(ce.code)
	}
	fmt.Fprintf(os.Stderr, "  greenlint: %v\n", err)
	os.Exit(exitError)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagPolicy, "policy", "", "Policy file (default: $GREENLINT_POLICY or <root>/"+config.PolicyFileName+")")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
}

// loadConfig loads the tool config; a broken file is reported and
// defaults are used.
func loadConfig() config.Config {
	cfg, err := config.Load()
	if err != nil {
		warnf("%v (using defaults)", err)
	}
	return cfg
}

// progressf writes a progress line to stderr unless --quiet.
func progressf(format string, args ...any) {
	if flagQuiet {
		return
	}
	fmt.Fprintf(os.Stderr, "  "+format, args...)
}

func warnf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "  warning: "+format+"\n", args...)
}
