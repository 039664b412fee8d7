// Package config loads run configuration from YAML files and FLOWGATE_
// environment variables, via Viper.
//
// Resolution priority (highest to lowest):
//  1. Environment variables (FLOWGATE_ prefix, e.g. FLOWGATE_BASE_URL,
//     FLOWGATE_TIMEOUTS_CASE)
//  2. The config file (an explicit path, or flowgate.yaml in the
//     working directory)
//  3. DefaultConfig defaults
//
// The resolved Config is validated once in the CLI and passed
// explicitly into the browser, archive, and runner; nothing below the
// CLI reads the process environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/gustavo-meilus/flowgate/internal/archive"
	"github.com/gustavo-meilus/flowgate/internal/flows"
)

// Config is the root configuration.
type Config struct {
	// BaseURL is the application root the flows run against, without a
	// trailing slash.
	BaseURL string `mapstructure:"base_url"`

	// CasesDir is the directory holding test case suite files.
	CasesDir string `mapstructure:"cases_dir"`

	// Mode selects live, record, or replay traffic handling.
	Mode string `mapstructure:"mode"`

	// ArchivePath is the SQLite exchange archive. Required for record
	// and replay modes.
	ArchivePath string `mapstructure:"archive_path"`

	// Session names the archive session traffic is recorded into or
	// replayed from. Required for record and replay modes.
	Session string `mapstructure:"session"`

	// Headless runs the browser without a visible window.
	Headless bool `mapstructure:"headless"`

	// Workers is the number of cases running concurrently.
	Workers int `mapstructure:"workers"`

	// Timeouts groups every duration knob.
	Timeouts TimeoutConfig `mapstructure:"timeouts"`
}

// TimeoutConfig holds the run's timing profile. Values parse from Go
// duration strings ("90s", "2m").
type TimeoutConfig struct {
	// Case bounds one whole case, page setup included.
	Case time.Duration `mapstructure:"case"`

	// Navigation bounds each page load.
	Navigation time.Duration `mapstructure:"navigation"`

	// Action bounds each single interaction (click, fill, read).
	Action time.Duration `mapstructure:"action"`

	// Appear bounds element visibility waits in guards and landmarks.
	Appear time.Duration `mapstructure:"appear"`

	// ReadBack bounds the form value read-back after a fill.
	ReadBack time.Duration `mapstructure:"read_back"`

	// Outcome bounds the submit step's outcome race.
	Outcome time.Duration `mapstructure:"outcome"`

	// Settle bounds the best-effort waits ahead of verification.
	Settle time.Duration `mapstructure:"settle"`
}

// DefaultConfig returns the configuration used when no file or
// environment override is present. The defaults target the public
// practice site the built-in flows are written for.
func DefaultConfig() *Config {
	w := flows.DefaultWaits()
	return &Config{
		BaseURL:  "https://practice.expandtesting.com",
		CasesDir: "testdata/cases",
		Mode:     string(archive.ModeLive),
		Headless: true,
		Workers:  4,
		Timeouts: TimeoutConfig{
			Case:       90 * time.Second,
			Navigation: 30 * time.Second,
			Action:     10 * time.Second,
			Appear:     w.Appear,
			ReadBack:   w.ReadBack,
			Outcome:    w.Outcome,
			Settle:     w.Settle,
		},
	}
}

// Loader handles Viper-based configuration loading.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader with defaults and environment binding
// registered.
func NewLoader() *Loader {
	v := viper.New()

	v.SetEnvPrefix("FLOWGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	return &Loader{v: v}
}

// Defaults are registered per key so environment overrides resolve even
// when no config file exists.
func setDefaults(v *viper.Viper) {
	def := DefaultConfig()
	v.SetDefault("base_url", def.BaseURL)
	v.SetDefault("cases_dir", def.CasesDir)
	v.SetDefault("mode", def.Mode)
	v.SetDefault("archive_path", def.ArchivePath)
	v.SetDefault("session", def.Session)
	v.SetDefault("headless", def.Headless)
	v.SetDefault("workers", def.Workers)
	v.SetDefault("timeouts.case", def.Timeouts.Case)
	v.SetDefault("timeouts.navigation", def.Timeouts.Navigation)
	v.SetDefault("timeouts.action", def.Timeouts.Action)
	v.SetDefault("timeouts.appear", def.Timeouts.Appear)
	v.SetDefault("timeouts.read_back", def.Timeouts.ReadBack)
	v.SetDefault("timeouts.outcome", def.Timeouts.Outcome)
	v.SetDefault("timeouts.settle", def.Timeouts.Settle)
}

// Load resolves configuration from flowgate.yaml in the working
// directory, when present, plus environment overrides. A missing file
// is not an error; defaults carry the run.
func (l *Loader) Load() (*Config, error) {
	l.v.SetConfigName("flowgate")
	l.v.SetConfigType("yaml")
	l.v.AddConfigPath(".")

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return l.unmarshal()
}

// LoadFromFile resolves configuration from an explicit file plus
// environment overrides. The file must exist.
func (l *Loader) LoadFromFile(path string) (*Config, error) {
	l.v.SetConfigFile(path)
	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	return l.unmarshal()
}

func (l *Loader) unmarshal() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	return &cfg, nil
}

// Validate rejects configurations the run cannot honor.
//
// Every nested wait must stay strictly below the case budget, so a
// wedged page always reports as a step failure, never as a bare case
// timeout.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	mode, err := archive.ParseMode(c.Mode)
	if err != nil {
		return err
	}
	if mode != archive.ModeLive {
		if c.ArchivePath == "" {
			return fmt.Errorf("%s mode requires archive_path", mode)
		}
		if c.Session == "" {
			return fmt.Errorf("%s mode requires session", mode)
		}
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.Timeouts.Case <= 0 {
		return fmt.Errorf("timeouts.case must be positive, got %s", c.Timeouts.Case)
	}

	nested := []struct {
		name string
		d    time.Duration
	}{
		{"navigation", c.Timeouts.Navigation},
		{"action", c.Timeouts.Action},
		{"appear", c.Timeouts.Appear},
		{"read_back", c.Timeouts.ReadBack},
		{"outcome", c.Timeouts.Outcome},
		{"settle", c.Timeouts.Settle},
	}
	for _, t := range nested {
		if t.d <= 0 {
			return fmt.Errorf("timeouts.%s must be positive, got %s", t.name, t.d)
		}
		if t.d >= c.Timeouts.Case {
			return fmt.Errorf("timeouts.%s (%s) must be below timeouts.case (%s)",
				t.name, t.d, c.Timeouts.Case)
		}
	}
	return nil
}

// Waits maps the timeout profile onto the step wait profile.
func (c *Config) Waits() flows.Waits {
	return flows.Waits{
		Appear:   c.Timeouts.Appear,
		ReadBack: c.Timeouts.ReadBack,
		Outcome:  c.Timeouts.Outcome,
		Settle:   c.Timeouts.Settle,
	}
}
