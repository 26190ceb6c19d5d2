package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"
)

type daemonRuntimeState struct {
	PID       int       `json:"pid"`
	Addr      string    `json:"addr"`
	StartedAt time.Time `json:"started_at"`
	Root      string    `json:"root"`
}

// pidFile is the daemon's PID file plus a JSON sidecar holding the
// listen address and watched root.
type pidFile struct {
	path string
}

func daemonPID() pidFile { return pidFile{path: flagDaemonPIDFile} }

func (f pidFile) statePath() string { return f.path + ".json" }

func (f pidFile) read() (int, error) {
	//nolint:gosec // daemon pid path is configured by the local user
	data, err := os.ReadFile(f.path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid in %s", f.path)
	}
	return pid, nil
}

func (f pidFile) state() (daemonRuntimeState, error) {
	var st daemonRuntimeState
	//nolint:gosec // daemon state path is configured by the local user
	data, err := os.ReadFile(f.statePath())
	if err != nil {
		return st, err
	}
	err = json.Unmarshal(data, &st)
	return st, err
}

// ensureFree fails when a live daemon owns the file and clears a stale one.
func (f pidFile) ensureFree() error {
	pid, err := f.read()
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil
	case err != nil:
		return err
	case processAlive(pid):
		return fmt.Errorf("daemon already running (pid %d)", pid)
	}
	f.remove()
	return nil
}

// claim writes the PID and the state sidecar. A sidecar failure is ignored;
// status falls back to the configured address.
func (f pidFile) claim(st daemonRuntimeState) error {
	if err := os.WriteFile(f.path, []byte(strconv.Itoa(st.PID)+"\n"), 0o600); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	if data, err := json.MarshalIndent(st, "", "  "); err == nil {
		_ = os.WriteFile(f.statePath(), append(data, '\n'), 0o600)
	}
	return nil
}

func (f pidFile) remove() {
	_ = os.Remove(f.path)
	_ = os.Remove(f.statePath())
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}
