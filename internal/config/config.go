// Package config loads reclaim settings from defaults, RECLAIM_* environment
// variables and an optional YAML file, in that order of increasing priority.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full reclaim configuration.
type Config struct {
	Profile   string         `yaml:"profile"`
	Root      string         `yaml:"root"`
	AppName   string         `yaml:"app_name"`
	Targets   []TargetConfig `yaml:"targets"`
	Processes []string       `yaml:"processes"`
	Session   SessionConfig  `yaml:"session"`
	Deferred  DeferredConfig `yaml:"deferred"`
	Logging   LogConfig      `yaml:"logging"`
	Metrics   MetricsConfig  `yaml:"metrics"`
}

// TargetConfig is one extra directory to reclaim.
type TargetConfig struct {
	Label   string   `yaml:"label"`
	Path    string   `yaml:"path"`
	Holders []string `yaml:"holders"`
}

// SessionConfig holds session behaviour.
type SessionConfig struct {
	Quiescence  time.Duration `yaml:"quiescence"`  // Settle delay after kills, default 2s
	Parallelism int           `yaml:"parallelism"` // Concurrent targets, default 1
	SweepStale  bool          `yaml:"sweep_stale"` // Remove old tombstones, default true
}

// DeferredConfig holds the detached removal task's budget.
type DeferredConfig struct {
	Delay    time.Duration `yaml:"delay"`    // Before first attempt, default 5s
	Retries  int           `yaml:"retries"`  // Rounds, default 5
	Interval time.Duration `yaml:"interval"` // Between rounds, default 2s
	LogFile  string        `yaml:"log_file"` // Empty means <tmp>/reclaim-deferred.log
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug / info / warn / error
	Format string `yaml:"format"` // console / json
}

// MetricsConfig holds metrics export settings.
type MetricsConfig struct {
	TextFile string `yaml:"textfile"` // Prometheus textfile path; empty disables export
}

// Load builds the configuration: defaults, then environment, then the YAML file at path.
// A missing or malformed file given explicitly is an error.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Profile:   envOr("RECLAIM_PROFILE", "custom"),
		Root:      envOr("RECLAIM_ROOT", ""),
		AppName:   envOr("RECLAIM_APP_NAME", ""),
		Processes: listOr("RECLAIM_PROCESSES", nil),
		Session: SessionConfig{
			Quiescence:  durationOr("RECLAIM_QUIESCENCE", 2*time.Second),
			Parallelism: intOr("RECLAIM_PARALLELISM", 1),
			SweepStale:  boolOr("RECLAIM_SWEEP_STALE", true),
		},
		Deferred: DeferredConfig{
			Delay:    durationOr("RECLAIM_DEFERRED_DELAY", 5*time.Second),
			Retries:  intOr("RECLAIM_DEFERRED_RETRIES", 5),
			Interval: durationOr("RECLAIM_DEFERRED_INTERVAL", 2*time.Second),
			LogFile:  envOr("RECLAIM_DEFERRED_LOG_FILE", ""),
		},
		Logging: LogConfig{
			Level:  envOr("RECLAIM_LOG_LEVEL", "info"),
			Format: envOr("RECLAIM_LOG_FORMAT", "console"),
		},
		Metrics: MetricsConfig{
			TextFile: envOr("RECLAIM_METRICS_FILE", ""),
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the session cannot run with.
func (c *Config) Validate() error {
	if c.Session.Quiescence < 0 {
		return fmt.Errorf("quiescence must not be negative: %s", c.Session.Quiescence)
	}
	if c.Session.Parallelism < 1 {
		return fmt.Errorf("parallelism must be at least 1: %d", c.Session.Parallelism)
	}
	if c.Deferred.Delay < 0 || c.Deferred.Interval < 0 {
		return fmt.Errorf("deferred delay and interval must not be negative")
	}
	if c.Deferred.Retries < 1 {
		return fmt.Errorf("deferred retries must be at least 1: %d", c.Deferred.Retries)
	}
	for i, t := range c.Targets {
		if t.Label == "" || t.Path == "" {
			return fmt.Errorf("target %d: label and path are required", i)
		}
	}
	return nil
}

// LogEffective returns the effective configuration as log fields.
func (c *Config) LogEffective(cfgPath string) map[string]interface{} {
	source := "env/defaults"
	if cfgPath != "" {
		source = "yaml: " + cfgPath
	}
	return map[string]interface{}{
		"config_source":     source,
		"profile":           c.Profile,
		"root":              c.Root,
		"app_name":          c.AppName,
		"targets":           len(c.Targets),
		"processes":         len(c.Processes),
		"quiescence":        c.Session.Quiescence.String(),
		"parallelism":       c.Session.Parallelism,
		"sweep_stale":       c.Session.SweepStale,
		"deferred_delay":    c.Deferred.Delay.String(),
		"deferred_retries":  c.Deferred.Retries,
		"deferred_interval": c.Deferred.Interval.String(),
		"log_level":         c.Logging.Level,
		"log_format":        c.Logging.Format,
		"metrics_textfile":  c.Metrics.TextFile,
	}
}

func envOr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func intOr(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func durationOr(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

func boolOr(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

// listOr splits a comma-separated variable, dropping blanks.
func listOr(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
