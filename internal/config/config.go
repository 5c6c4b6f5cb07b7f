// Package config loads run parameters from a JSON file with environment
// overrides.
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"

	"github.com/piwi3910/slicefloor/internal/engine"
)

// EnvPrefix prefixes every environment override, e.g. SLICEFLOOR_RUNS.
const EnvPrefix = "SLICEFLOOR"

// Config holds the problem generator and annealing parameters.
type Config struct {
	// Generator
	Width    int `json:"width" envconfig:"WIDTH"`
	Height   int `json:"height" envconfig:"HEIGHT"`
	Cuts     int `json:"cuts" envconfig:"CUTS"`
	Scramble int `json:"scramble" envconfig:"SCRAMBLE"`

	// Annealing
	Stages        int     `json:"stages" envconfig:"STAGES"`
	K             int     `json:"k" envconfig:"K"`
	StartTemp     float64 `json:"start_temp" envconfig:"START_TEMP"`
	TempEpsilon   float64 `json:"temp_epsilon" envconfig:"TEMP_EPSILON"`
	TempReduction float64 `json:"temp_reduction" envconfig:"TEMP_REDUCTION"`
	Runs          int     `json:"runs" envconfig:"RUNS"`
	Workers       int     `json:"workers" envconfig:"WORKERS"` // 0 means one per CPU
	Seed          int64   `json:"seed" envconfig:"SEED"`

	LogLevel string `json:"log_level" envconfig:"LOG_LEVEL"`
}

// DefaultConfig returns a 10000x10000 problem cut 49 times and scrambled
// with 1000 moves, solved with the default annealing schedule.
func DefaultConfig() Config {
	a := engine.DefaultAnnealConfig()
	return Config{
		Width:         10_000,
		Height:        10_000,
		Cuts:          49,
		Scramble:      1_000,
		Stages:        a.Stages,
		K:             a.K,
		StartTemp:     a.StartTemp,
		TempEpsilon:   a.TempEpsilon,
		TempReduction: a.TempReduction,
		Runs:          a.Runs,
		Workers:       a.Workers,
		Seed:          a.Seed,
		LogLevel:      "info",
	}
}

// DefaultConfigPath returns ~/.slicefloor/config.json.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".slicefloor", "config.json")
}

// Load reads the config at path and applies environment overrides.
// A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := json.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to apply environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes the config as indented JSON, creating parent directories.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}
	if err := cfg.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Encode writes the config as indented JSON.
func (c Config) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// Validate checks the generator parameters and the annealing schedule.
func (c Config) Validate() error {
	if c.Width < 1 || c.Height < 1 {
		return fmt.Errorf("problem size must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.Cuts < 0 || c.Scramble < 0 {
		return fmt.Errorf("cuts and scramble must not be negative")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if err := c.Anneal().Validate(); err != nil {
		return fmt.Errorf("invalid anneal config: %w", err)
	}
	return nil
}

// Anneal returns the annealing part of the config.
func (c Config) Anneal() engine.AnnealConfig {
	return engine.AnnealConfig{
		Stages:        c.Stages,
		K:             c.K,
		StartTemp:     c.StartTemp,
		TempEpsilon:   c.TempEpsilon,
		TempReduction: c.TempReduction,
		Runs:          c.Runs,
		Workers:       c.Workers,
		Seed:          c.Seed,
	}
}

// Level parses LogLevel ("debug", "info", "warn", "error").
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return l, nil
}
