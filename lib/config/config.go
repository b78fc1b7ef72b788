// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the config file when --config is absent.
const EnvironmentVariable = "CHUNKLEDGER_CONFIG"

// Output formats accepted by OutputConfig.Format.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCBOR = "cbor"
	FormatDiag = "diag"
)

// Color modes accepted by OutputConfig.Color.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config is the chunkledger CLI configuration.
type Config struct {
	// Output configures how replay results are rendered.
	Output OutputConfig `yaml:"output"`

	// Log configures the structured logger on stderr.
	Log LogConfig `yaml:"log"`

	// Scenarios configures where scenario files are found.
	Scenarios ScenariosConfig `yaml:"scenarios"`
}

// OutputConfig configures result rendering.
type OutputConfig struct {
	// Format is text, json, cbor, or diag (CBOR diagnostic
	// notation). Default: text.
	Format string `yaml:"format"`

	// Color is auto, always, or never. Auto styles text output only
	// when stdout is a terminal. Default: auto.
	Color string `yaml:"color"`

	// MissingSpans caps how many runs of missing chunk ids are shown
	// per scenario. Default: 8.
	MissingSpans int `yaml:"missing_spans"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is debug, info, warn, or error. Default: warn.
	Level string `yaml:"level"`
}

// ScenariosConfig configures scenario lookup.
type ScenariosConfig struct {
	// Directory is prepended to relative scenario paths given on the
	// command line. Supports ${VAR} and ${VAR:-default} expansion.
	// Empty means the working directory.
	Directory string `yaml:"directory"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			Format:       FormatText,
			Color:        ColorAuto,
			MissingSpans: 8,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Load reads the file named by CHUNKLEDGER_CONFIG. When the variable
// is unset, Load returns Default(): the CLI works without any config.
func Load() (*Config, error) {
	path := os.Getenv(EnvironmentVariable)
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads the YAML file at path over the defaults, expands
// variables, and validates the result. Unknown keys are errors.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	config := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(config); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	config.Scenarios.Directory = expandVariables(config.Scenarios.Directory)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return config, nil
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.Output.Format {
	case FormatText, FormatJSON, FormatCBOR, FormatDiag:
	default:
		errs = append(errs, fmt.Errorf("output.format must be text, json, cbor, or diag, got %q", c.Output.Format))
	}

	switch c.Output.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		errs = append(errs, fmt.Errorf("output.color must be auto, always, or never, got %q", c.Output.Color))
	}

	if c.Output.MissingSpans < 1 {
		errs = append(errs, fmt.Errorf("output.missing_spans must be positive, got %d", c.Output.MissingSpans))
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// ParseLevel converts a log.level value to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("log.level must be debug, info, warn, or error, got %q", name)
	}
	return level, nil
}

var variablePattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVariables replaces ${VAR} and ${VAR:-default} with values from
// the environment.
func expandVariables(s string) string {
	return variablePattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := variablePattern.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		return parts[2]
	})
}
