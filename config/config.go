// SPDX-License-Identifier: MIT

// Package config loads run settings for the rigmap command from YAML,
// with RIGMAP_* environment overrides applied on top.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/katalvlaran/rigmap/cache"
	"github.com/katalvlaran/rigmap/logger"
	"gopkg.in/yaml.v3"
)

var (
	// ErrBadLogLevel indicates a log level slog does not know.
	ErrBadLogLevel = errors.New("config: unknown log level")

	// ErrBadCacheSize indicates a non-positive cache size.
	ErrBadCacheSize = errors.New("config: cache size must be positive")

	// ErrEmptyStage indicates an empty stage path.
	ErrEmptyStage = errors.New("config: empty stage path")
)

// Environment variables overriding file values.
const (
	EnvLogLevel  = "RIGMAP_LOG_LEVEL"
	EnvCacheSize = "RIGMAP_CACHE_SIZE"
	EnvSkipUnset = "RIGMAP_SKIP_UNSET"
)

// Config describes one processing chain and how to run it.
type Config struct {
	// Stages are definition files, evaluated in order. Relative paths are
	// resolved against the directory of the config file.
	Stages []string `yaml:"stages"`

	// SkipUnset omits absent outputs from results instead of writing null.
	SkipUnset bool `yaml:"skip_unset"`

	// LogLevel is a slog level name: debug, info, warn or error.
	LogLevel string `yaml:"log_level"`

	// CacheSize bounds the number of built mappings kept in memory.
	CacheSize int `yaml:"cache_size"`

	// ValidateChain checks stage i inputs against stage i-1 outputs at load.
	ValidateChain bool `yaml:"validate_chain"`

	// Strict runs full definition validation before building each stage.
	Strict bool `yaml:"strict"`
}

// Default returns the settings used when no config file is given.
func Default() *Config {
	return &Config{
		LogLevel:      "warn",
		CacheSize:     cache.DefaultSize,
		ValidateChain: true,
	}
}

// Load reads the YAML file at path over Default and applies environment
// overrides. Unknown keys are rejected. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err = dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.resolveStages(filepath.Dir(path))
	if err = cfg.ApplyEnvironment(); err != nil {
		return nil, err
	}
	if err = cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// resolveStages makes relative stage paths relative to base.
func (c *Config) resolveStages(base string) {
	for i, s := range c.Stages {
		if s != "" && !filepath.IsAbs(s) {
			c.Stages[i] = filepath.Join(base, s)
		}
	}
}

// ApplyEnvironment overrides fields from RIGMAP_* variables. Set but
// malformed values are errors rather than silently ignored.
func (c *Config) ApplyEnvironment() error {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvCacheSize); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvCacheSize, err)
		}
		c.CacheSize = n
	}
	if v := os.Getenv(EnvSkipUnset); v != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvSkipUnset, err)
		}
		c.SkipUnset = b
	}

	return nil
}

// Validate checks field values. A config without stages is valid; the
// command may supply them from flags.
func (c *Config) Validate() error {
	var errs []error
	if _, ok := logger.ParseLevel(c.LogLevel); !ok {
		errs = append(errs, fmt.Errorf("%w: %q", ErrBadLogLevel, c.LogLevel))
	}
	if c.CacheSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: %d", ErrBadCacheSize, c.CacheSize))
	}
	for i, s := range c.Stages {
		if strings.TrimSpace(s) == "" {
			errs = append(errs, fmt.Errorf("%w: stage %d", ErrEmptyStage, i))
		}
	}

	return errors.Join(errs...)
}
