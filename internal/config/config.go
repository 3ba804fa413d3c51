package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Color modes for match highlighting
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Search modes
const (
	ModeParallel   = "parallel"
	ModeSequential = "sequential"
)

// Config represents stemfind configuration options.
// The search root is deliberately absent: stemfind always searches the
// current working directory.
type Config struct {
	// Mode selects parallel or sequential traversal
	Mode string `yaml:"mode"`

	// Workers bounds concurrent directory walkers in parallel mode (0 = number of CPUs)
	Workers int `yaml:"workers"`

	// LogLevel sets the diagnostic verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir enables a per-run log file in this directory when non-empty
	LogDir string `yaml:"log_dir"`

	// FollowSymlinks resolves symbolic links to files and directories
	FollowSymlinks bool `yaml:"follow_symlinks"`

	// Color controls match highlighting (auto, always, never)
	Color string `yaml:"color"`

	// Summary prints run counters to stderr after the search
	Summary bool `yaml:"summary"`

	// ReportPath writes a YAML run report when non-empty
	ReportPath string `yaml:"report_path"`

	// MetricsPath writes a Prometheus textfile when non-empty
	MetricsPath string `yaml:"metrics_path"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Mode:           ModeParallel,
		Workers:        0,
		LogLevel:       "info",
		LogDir:         "",
		FollowSymlinks: true,
		Color:          ColorAuto,
		Summary:        false,
	}
}

// DefaultConfigPath returns $HOME/.stemfind/config.yaml.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".stemfind", "config.yaml"), nil
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// A second decode into a map tells explicit false/zero apart from absent keys.
	var present map[string]interface{}
	if err := yaml.Unmarshal(data, &present); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	has := func(key string) bool {
		_, ok := present[key]
		return ok
	}

	if fileCfg.Mode != "" {
		cfg.Mode = fileCfg.Mode
	}
	if has("workers") {
		cfg.Workers = fileCfg.Workers
	}
	if fileCfg.LogLevel != "" {
		cfg.LogLevel = fileCfg.LogLevel
	}
	if fileCfg.LogDir != "" {
		cfg.LogDir = fileCfg.LogDir
	}
	if has("follow_symlinks") {
		cfg.FollowSymlinks = fileCfg.FollowSymlinks
	}
	if fileCfg.Color != "" {
		cfg.Color = fileCfg.Color
	}
	if has("summary") {
		cfg.Summary = fileCfg.Summary
	}
	if fileCfg.ReportPath != "" {
		cfg.ReportPath = fileCfg.ReportPath
	}
	if fileCfg.MetricsPath != "" {
		cfg.MetricsPath = fileCfg.MetricsPath
	}

	return cfg, nil
}

// Overrides carries CLI flag values; nil fields were not set on the command line.
type Overrides struct {
	Mode           *string
	Workers        *int
	LogLevel       *string
	LogDir         *string
	FollowSymlinks *bool
	Color          *string
	Summary        *bool
	ReportPath     *string
	MetricsPath    *string
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
func (c *Config) MergeWithFlags(o Overrides) {
	if o.Mode != nil {
		c.Mode = *o.Mode
	}
	if o.Workers != nil {
		c.Workers = *o.Workers
	}
	if o.LogLevel != nil {
		c.LogLevel = *o.LogLevel
	}
	if o.LogDir != nil {
		c.LogDir = *o.LogDir
	}
	if o.FollowSymlinks != nil {
		c.FollowSymlinks = *o.FollowSymlinks
	}
	if o.Color != nil {
		c.Color = *o.Color
	}
	if o.Summary != nil {
		c.Summary = *o.Summary
	}
	if o.ReportPath != nil {
		c.ReportPath = *o.ReportPath
	}
	if o.MetricsPath != nil {
		c.MetricsPath = *o.MetricsPath
	}
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeParallel, ModeSequential:
	default:
		return fmt.Errorf("invalid mode %q, must be one of: parallel, sequential", c.Mode)
	}

	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}

	switch c.LogLevel {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("invalid color %q, must be one of: auto, always, never", c.Color)
	}

	return nil
}
