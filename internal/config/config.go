package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds all greenlint tool preferences. Project policy lives in
// PolicyConfig; this file is per-user.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Estimator  EstimatorConfig  `toml:"estimator"`
	History    HistoryConfig    `toml:"history"`
	Artifact   ArtifactConfig   `toml:"artifact"`
	Daemon     DaemonConfig     `toml:"daemon"`
	Appearance AppearanceConfig `toml:"appearance"`
}

// GeneralConfig holds scan preferences.
type GeneralConfig struct {
	ReportFile    string `toml:"report_file"`
	MaxViolations int    `toml:"max_violations"`
	Workers       int    `toml:"workers,omitempty"` // 0 = GOMAXPROCS
}

// EstimatorConfig tunes the token heuristic.
type EstimatorConfig struct {
	CharsPerToken      float64 `toml:"chars_per_token"`
	ContextRadius      int     `toml:"context_radius"`
	MinPromptChars     int     `toml:"min_prompt_chars"`
	MaxPromptChars     int     `toml:"max_prompt_chars"`
	DefaultPromptChars int     `toml:"default_prompt_chars"`
}

// HistoryConfig controls scan recording.
type HistoryConfig struct {
	Enabled bool   `toml:"enabled"`
	DSN     string `toml:"dsn,omitempty"` // postgres:// DSN; empty = local SQLite
}

// ArtifactConfig points at an S3-compatible bucket for published reports.
type ArtifactConfig struct {
	Endpoint  string `toml:"endpoint,omitempty"`
	Region    string `toml:"region,omitempty"`
	Bucket    string `toml:"bucket,omitempty"`
	AccessKey string `toml:"access_key,omitempty"`
	SecretKey string `toml:"secret_key,omitempty"`
	UseSSL    bool   `toml:"use_ssl"`
}

// DaemonConfig holds watch-daemon defaults.
type DaemonConfig struct {
	Addr       string `toml:"addr"`
	DebounceMS int    `toml:"debounce_ms"`
	EventsBuf  int    `toml:"events_buffer"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DefaultEstimator returns the documented estimator constants.
func DefaultEstimator() EstimatorConfig {
	return EstimatorConfig{
		CharsPerToken:      4,
		ContextRadius:      500, // the >2000-char complexity band needs about 1000
		MinPromptChars:     10,
		MaxPromptChars:     2000,
		DefaultPromptChars: 400,
	}
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			ReportFile:    "greenlint-report.md",
			MaxViolations: 20,
		},
		Estimator: DefaultEstimator(),
		History: HistoryConfig{
			Enabled: true,
		},
		Daemon: DaemonConfig{
			Addr:       "127.0.0.1:8787",
			DebounceMS: 300,
			EventsBuf:  200,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// Sanitize replaces out-of-range values with defaults.
func (c *Config) Sanitize() {
	d := DefaultConfig()
	if c.General.ReportFile == "" {
		c.General.ReportFile = d.General.ReportFile
	}
	if c.General.MaxViolations <= 0 {
		c.General.MaxViolations = d.General.MaxViolations
	}
	e := &c.Estimator
	if e.CharsPerToken <= 0 {
		e.CharsPerToken = d.Estimator.CharsPerToken
	}
	if e.ContextRadius <= 0 {
		e.ContextRadius = d.Estimator.ContextRadius
	}
	if e.MinPromptChars <= 0 {
		e.MinPromptChars = d.Estimator.MinPromptChars
	}
	if e.MaxPromptChars < e.MinPromptChars {
		e.MaxPromptChars = d.Estimator.MaxPromptChars
	}
	if e.DefaultPromptChars <= 0 {
		e.DefaultPromptChars = d.Estimator.DefaultPromptChars
	}
	if c.Daemon.Addr == "" {
		c.Daemon.Addr = d.Daemon.Addr
	}
	if c.Daemon.DebounceMS <= 0 {
		c.Daemon.DebounceMS = d.Daemon.DebounceMS
	}
	if c.Daemon.EventsBuf <= 0 {
		c.Daemon.EventsBuf = d.Daemon.EventsBuf
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "greenlint")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "greenlint")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(Path())
	if err != nil {
		if os.IsNotExist(err) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config: %w", err)
	}
	cfg.Sanitize()
	applyEnv(&cfg)

	return cfg, nil
}

// applyEnv lets GREENLINT_* variables override file settings.
func applyEnv(cfg *Config) {
	if dsn := strings.TrimSpace(os.Getenv("GREENLINT_HISTORY_DSN")); dsn != "" {
		cfg.History.DSN = dsn
	}
	a := &cfg.Artifact
	for env, dst := range map[string]*string{
		"GREENLINT_ARTIFACT_ENDPOINT":   &a.Endpoint,
		"GREENLINT_ARTIFACT_REGION":     &a.Region,
		"GREENLINT_ARTIFACT_BUCKET":     &a.Bucket,
		"GREENLINT_ARTIFACT_ACCESS_KEY": &a.AccessKey,
		"GREENLINT_ARTIFACT_SECRET_KEY": &a.SecretKey,
	} {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			*dst = v
		}
	}
	if os.Getenv("GREENLINT_ARTIFACT_USE_SSL") == "true" {
		a.UseSSL = true
	}
}

// Save writes the config to disk.
func Save(cfg Config) error {
	if err := os.MkdirAll(Dir(), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(Path(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}
