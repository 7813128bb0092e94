// Package config loads sable.yaml. Values from the file can be overridden
// through SABLE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"github.com/xyproto/env/v2"
	"gopkg.in/yaml.v3"

	"github.com/sable-lang/sable/internal/diagnostic"
	"github.com/sable-lang/sable/internal/opt"
)

// FileName is the configuration file looked up next to the sources.
const FileName = "sable.yaml"

// Config is the tool configuration.
type Config struct {
	// Language is a semver constraint the running tool must satisfy,
	// such as ">= 0.4, < 1.0". Empty accepts any version.
	Language    string            `yaml:"language"`
	Verbose     bool              `yaml:"verbose"`
	Debug       bool              `yaml:"debug"`
	Optimize    OptimizeConfig    `yaml:"optimize"`
	Diagnostics DiagnosticsConfig `yaml:"diagnostics"`

	// Path is the file the configuration was read from, empty for defaults.
	Path string `yaml:"-"`
}

type OptimizeConfig struct {
	MaxIterations int      `yaml:"max_iterations"`
	Passes        []string `yaml:"passes"`
}

type DiagnosticsConfig struct {
	MaxErrors        int      `yaml:"max_errors"`
	WarningsAsErrors bool     `yaml:"warnings_as_errors"`
	Ignore           []string `yaml:"ignore"`
	ShowTrace        *bool    `yaml:"show_trace"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Optimize: OptimizeConfig{
			MaxIterations: 10,
			Passes:        []string{"constant-folding", "cse", "dce"},
		},
	}
}

// Load reads path, falling back to defaults when it does not exist, and
// applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		file, err := os.Open(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("config: open %s: %w", path, err)
		default:
			defer file.Close()
			if err := decode(file, cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
			cfg.Path = path
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Find looks for FileName in dir and its parents and loads the first one
// found. Without a file the defaults are returned.
func Find(dir string) (*Config, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", dir, err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return Load(candidate)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return Load("")
		}
		dir = parent
	}
}

func decode(r io.Reader, cfg *Config) error {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyEnv() {
	if env.Has("SABLE_VERBOSE") {
		c.Verbose = env.Bool("SABLE_VERBOSE")
	}
	if env.Has("SABLE_DEBUG") {
		c.Debug = env.Bool("SABLE_DEBUG")
	}
	c.Optimize.MaxIterations = env.Int("SABLE_OPT_ITERATIONS", c.Optimize.MaxIterations)
	c.Diagnostics.MaxErrors = env.Int("SABLE_MAX_ERRORS", c.Diagnostics.MaxErrors)
	if env.Has("SABLE_WARNINGS_AS_ERRORS") {
		c.Diagnostics.WarningsAsErrors = env.Bool("SABLE_WARNINGS_AS_ERRORS")
	}
}

// Validate checks field ranges, pass names and the language constraint
// syntax.
func (c *Config) Validate() error {
	if c.Optimize.MaxIterations < 0 {
		return fmt.Errorf("config: optimize.max_iterations must not be negative, got %d", c.Optimize.MaxIterations)
	}
	if c.Diagnostics.MaxErrors < 0 {
		return fmt.Errorf("config: diagnostics.max_errors must not be negative, got %d", c.Diagnostics.MaxErrors)
	}
	for _, name := range c.Optimize.Passes {
		if _, err := opt.PassByName(name); err != nil {
			return fmt.Errorf("config: optimize.passes: %w", err)
		}
	}
	if c.Language != "" {
		if _, err := semver.NewConstraint(c.Language); err != nil {
			return fmt.Errorf("config: language %q: %w", c.Language, err)
		}
	}
	return nil
}

// CheckLanguage reports an error when version does not satisfy the
// configured language constraint.
func (c *Config) CheckLanguage(version string) error {
	if c.Language == "" {
		return nil
	}
	constraint, err := semver.NewConstraint(c.Language)
	if err != nil {
		return fmt.Errorf("config: language %q: %w", c.Language, err)
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("config: tool version %q: %w", version, err)
	}
	if ok, reasons := constraint.Validate(v); !ok {
		msg := fmt.Sprintf("sable %s does not satisfy language %q", v, c.Language)
		for _, r := range reasons {
			msg += "; " + r.Error()
		}
		return errors.New(msg)
	}
	return nil
}

// DiagnosticConfig converts the diagnostics section for the engine.
func (c *Config) DiagnosticConfig() diagnostic.DiagnosticConfig {
	dc := diagnostic.DefaultConfig()
	dc.MaxErrors = c.Diagnostics.MaxErrors
	dc.WarningsAsErrors = c.Diagnostics.WarningsAsErrors
	dc.IgnoreCodes = append([]string(nil), c.Diagnostics.Ignore...)
	if c.Diagnostics.ShowTrace != nil {
		dc.ShowTrace = *c.Diagnostics.ShowTrace
	}
	return dc
}

// Pipeline builds the configured optimization passes in order.
func (c *Config) Pipeline() ([]opt.Pass, error) {
	passes := make([]opt.Pass, 0, len(c.Optimize.Passes))
	for _, name := range c.Optimize.Passes {
		p, err := opt.PassByName(name)
		if err != nil {
			return nil, err
		}
		passes = append(passes, p)
	}
	return passes, nil
}
