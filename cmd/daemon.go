package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/theirongolddev/greenlint/internal/artifact"
	"github.com/theirongolddev/greenlint/internal/cli"
	"github.com/theirongolddev/greenlint/internal/config"
	"github.com/theirongolddev/greenlint/internal/daemon"
	"github.com/theirongolddev/greenlint/internal/model"
	"github.com/theirongolddev/greenlint/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagDaemonAddr         string
	flagDaemonDebounce     time.Duration
	flagDaemonDetach       bool
	flagDaemonPIDFile      string
	flagDaemonLogFile      string
	flagDaemonEventsBuffer int
	flagDaemonRecord       bool
	flagDaemonChild        bool
)

var daemonCmd = &cobra.Command{
	Use:   "daemon [root]",
	Short: "Watch a project and serve scan results over HTTP/SSE",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDaemon,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon process and API status",
	Args:  cobra.NoArgs,
	RunE:  runDaemonStatus,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running daemon",
	Args:  cobra.NoArgs,
	RunE:  runDaemonStop,
}

func init() {
	defaultPID := filepath.Join(store.DataDir(), "greenlintd.pid")
	defaultLog := filepath.Join(store.DataDir(), "greenlintd.log")

	daemonCmd.PersistentFlags().StringVar(&flagDaemonAddr, "addr", "", "HTTP listen address (default: daemon.addr from config)")
	daemonCmd.PersistentFlags().StringVar(&flagDaemonPIDFile, "pid-file", defaultPID, "PID file path")
	daemonCmd.PersistentFlags().StringVar(&flagDaemonLogFile, "log-file", defaultLog, "Log file path for detached mode")

	daemonCmd.Flags().DurationVar(&flagDaemonDebounce, "debounce", 0, "Quiet period before a rescan (default: daemon.debounce_ms from config)")
	daemonCmd.Flags().IntVar(&flagDaemonEventsBuffer, "events-buffer", 0, "Max in-memory events retained (default: daemon.events_buffer from config)")
	daemonCmd.Flags().BoolVar(&flagDaemonRecord, "record", false, "Record every scan in the history store")
	daemonCmd.Flags().BoolVar(&flagDaemonDetach, "detach", false, "Run daemon as a background process")
	daemonCmd.Flags().BoolVar(&flagDaemonChild, "child", false, "Internal: mark detached child process")
	_ = daemonCmd.Flags().MarkHidden("child")

	daemonCmd.AddCommand(daemonStatusCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	rootCmd.AddCommand(daemonCmd)
}

// daemonAddr resolves --addr against the tool config.
func daemonAddr(cfg config.Config) string {
	if flagDaemonAddr != "" {
		return flagDaemonAddr
	}
	return cfg.Daemon.Addr
}

func runDaemon(_ *cobra.Command, args []string) error {
	if flagDaemonDetach && flagDaemonChild {
		return errors.New("invalid daemon launch mode")
	}

	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return err
	}

	cfg := loadConfig()
	if flagDaemonDetach {
		return startDaemonDetached(daemonAddr(cfg))
	}

	return runDaemonForeground(root, cfg)
}

func startDaemonDetached(addr string) error {
	if err := daemonPID().ensureFree(); err != nil {
		return err
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	args := filterDetachArg(os.Args[1:])
	args = append(args, "--child")

	if err := os.MkdirAll(filepath.Dir(flagDaemonPIDFile), 0o750); err != nil {
		return fmt.Errorf("create daemon directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(flagDaemonLogFile), 0o750); err != nil {
		return fmt.Errorf("create daemon log directory: %w", err)
	}

	//nolint:gosec // daemon log path is configured by the local user
	logf, err := os.OpenFile(flagDaemonLogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open daemon log file: %w", err)
	}
	defer func() { _ = logf.Close() }()

	cmd := exec.Command(exe, args...) //nolint:gosec // exe/args come from current process invocation
	cmd.Stdout = logf
	cmd.Stderr = logf
	cmd.Stdin = nil
	cmd.Env = os.Environ()

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start detached daemon: %w", err)
	}

	fmt.Printf("  Started daemon (pid %d)\n", cmd.Process.Pid)
	fmt.Printf("  PID file: %s\n", flagDaemonPIDFile)
	fmt.Printf("  API: http://%s/v1/status\n", addr)
	fmt.Printf("  Log: %s\n", flagDaemonLogFile)
	return nil
}

func runDaemonForeground(root string, cfg config.Config) error {
	if err := daemonPID().ensureFree(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(flagDaemonPIDFile), 0o750); err != nil {
		return fmt.Errorf("create daemon directory: %w", err)
	}

	addr := daemonAddr(cfg)
	debounce := flagDaemonDebounce
	if debounce <= 0 {
		debounce = time.Duration(cfg.Daemon.DebounceMS) * time.Millisecond
	}
	eventsBuf := flagDaemonEventsBuffer
	if eventsBuf <= 0 {
		eventsBuf = cfg.Daemon.EventsBuf
	}

	dcfg := daemon.Config{
		Root:          root,
		PolicyPath:    config.PolicyPath(root, flagPolicy),
		Addr:          addr,
		Debounce:      debounce,
		EventsBuffer:  eventsBuf,
		Workers:       cfg.General.Workers,
		MaxViolations: cfg.General.MaxViolations,
		Estimator:     cfg.Estimator,
	}

	if flagDaemonRecord {
		h, err := openHistory(cfg)
		if err != nil {
			return fmt.Errorf("opening history: %w", err)
		}
		defer func() { _ = h.Close() }()
		dcfg.OnScan = func(r *model.ScanResult) { recordDaemonScan(h, r) }
	}

	svc, err := daemon.New(dcfg)
	if err != nil {
		return err
	}

	pf := daemonPID()
	if err := pf.claim(daemonRuntimeState{
		PID:       os.Getpid(),
		Addr:      addr,
		StartedAt: time.Now(),
		Root:      root,
	}); err != nil {
		return err
	}
	defer pf.remove()

	fmt.Printf("  greenlint daemon listening on http://%s\n", addr)
	fmt.Printf("  Watching %s (debounce %s)\n", root, debounce)
	fmt.Printf("  Stop with: greenlint daemon stop --pid-file %s\n", flagDaemonPIDFile)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// recordDaemonScan saves one watched scan. Failures are logged to stderr;
// the daemon keeps serving.
func recordDaemonScan(h *store.History, r *model.ScanResult) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	hash, err := artifact.HashReport(r)
	if err != nil {
		warnf("hashing scan: %v", err)
		return
	}
	if _, err := saveScan(ctx, h, r, hash); err != nil {
		warnf("recording scan: %v", err)
	}
}

func runDaemonStatus(_ *cobra.Command, _ []string) error {
	pf := daemonPID()
	pid, err := pf.read()
	if err != nil {
		fmt.Printf("  Daemon: not running (pid file not found)\n")
		return nil
	}

	if !processAlive(pid) {
		fmt.Printf("  Daemon: stale pid file (pid %d not alive)\n", pid)
		return nil
	}

	addr := daemonAddr(loadConfig())
	if st, err := pf.state(); err == nil && st.Addr != "" {
		addr = st.Addr
	}

	fmt.Printf("  Daemon PID: %d\n", pid)
	fmt.Printf("  Address: http://%s\n", addr)

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + addr + "/v1/status") //nolint:noctx // short status check
	if err != nil {
		fmt.Printf("  API status: unreachable (%v)\n", err)
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("  API status: HTTP %d\n", resp.StatusCode)
		return nil
	}

	var st daemon.Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		fmt.Printf("  API status: malformed response (%v)\n", err)
		return nil
	}

	fmt.Printf("  Root: %s\n", st.Root)
	fmt.Printf("  Policy: %s\n", st.PolicyPath)
	if st.PolicyError != "" {
		fmt.Printf("  Policy error: %s\n", st.PolicyError)
	}
	if st.LastScanAt.IsZero() {
		fmt.Printf("  Last scan: pending\n")
	} else {
		fmt.Printf("  Last scan: %s\n", st.LastScanAt.Local().Format(time.RFC3339))
	}
	fmt.Printf("  Scan count: %d\n", st.ScanCount)
	verdict := "pass"
	if !st.Summary.Passed {
		verdict = "FAIL"
	}
	fmt.Printf("  Result: %s\n", verdict)
	fmt.Printf("  Files: %d, API calls: %d\n", st.Summary.Files, st.Summary.APICalls)
	fmt.Printf("  Carbon: %s\n", cli.FormatCarbon(st.Summary.Carbon))
	fmt.Printf("  Cost: %s\n", cli.FormatCost(st.Summary.CostUSD))
	fmt.Printf("  Errors: %d, warnings: %d, suggestions: %d\n",
		st.Summary.Errors, st.Summary.Warnings, st.Summary.Suggestions)
	fmt.Printf("  Subscribers: %d\n", st.SubscriberCount)
	if st.LastError != "" {
		fmt.Printf("  Last error: %s\n", st.LastError)
	}
	return nil
}

func runDaemonStop(_ *cobra.Command, _ []string) error {
	pf := daemonPID()
	pid, err := pf.read()
	if err != nil {
		return errors.New("daemon is not running")
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("find daemon process: %w", err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal daemon process: %w", err)
	}

	deadline := time.Now().Add(8 * time.Second)
	for time.Now().Before(deadline) {
		if !processAlive(pid) {
			pf.remove()
			fmt.Printf("  Stopped daemon (pid %d)\n", pid)
			return nil
		}
		time.Sleep(150 * time.Millisecond)
	}

	return fmt.Errorf("daemon (pid %d) did not exit in time", pid)
}

func filterDetachArg(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if a == "--detach" || strings.HasPrefix(a, "--detach=") {
			continue
		}
		out = append(out, a)
	}
	return out
}
