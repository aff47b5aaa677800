// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/stacklok/toolhive-cel/env"
	"github.com/stacklok/toolhive-cel/logging"
	"github.com/stacklok/toolhive-cel/validation/name"
)

// Environment variables that override file settings.
const (
	EnvContainer           = "TOOLHIVE_CEL_CONTAINER"
	EnvMaxExpressionLength = "TOOLHIVE_CEL_MAX_EXPRESSION_LENGTH"
	EnvLogLevel            = "TOOLHIVE_CEL_LOG_LEVEL"
)

const (
	appDir   = "toolhive-cel"
	fileName = "config.yaml"
)

// Config is the engine configuration file.
type Config struct {
	// Container is the namespace unqualified names are resolved against.
	Container string `yaml:"container,omitempty" json:"container,omitempty"`
	// Aliases maps simple names to the qualified names they expand to.
	Aliases map[string]string `yaml:"aliases,omitempty" json:"aliases,omitempty"`
	// MaxExpressionLength rejects longer expressions at compile time. Zero
	// keeps the engine default.
	MaxExpressionLength int `yaml:"maxExpressionLength,omitempty" json:"maxExpressionLength,omitempty"`
	// EnableOptionalSyntax toggles a.?b and friends. Unset means enabled.
	EnableOptionalSyntax *bool `yaml:"enableOptionalSyntax,omitempty" json:"enableOptionalSyntax,omitempty"`
	// MaxRecursionDepth bounds parser nesting. Zero keeps the parser default.
	MaxRecursionDepth int `yaml:"maxRecursionDepth,omitempty" json:"maxRecursionDepth,omitempty"`
	Log               Log `yaml:"log,omitempty" json:"log,omitzero"`
}

// Log configures engine diagnostics. Empty fields leave the default logger in
// place.
type Log struct {
	Format string `yaml:"format,omitempty" json:"format,omitempty"`
	Level  string `yaml:"level,omitempty" json:"level,omitempty"`
}

// OptionalSyntax reports whether optional syntax is enabled.
func (c *Config) OptionalSyntax() bool {
	return c.EnableOptionalSyntax == nil || *c.EnableOptionalSyntax
}

// DefaultPath returns the configuration file location using XDG base
// directory conventions.
func DefaultPath() string {
	return Path(xdg.ConfigHome)
}

// Path returns the configuration file location under configHome.
func Path(configHome string) string {
	return filepath.Join(configHome, appDir, fileName)
}

// Load reads the configuration at path, applies environment overrides from
// envReader and validates the result. A missing file yields an empty
// configuration.
func Load(path string, envReader env.Reader) (*Config, error) {
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		data = nil
	case err != nil:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	if err := cfg.ApplyEnv(envReader); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault loads the configuration at DefaultPath with overrides from the
// process environment.
func LoadDefault() (*Config, error) {
	return Load(DefaultPath(), &env.OSReader{})
}

// Parse decodes a YAML document and checks it against the configuration
// schema. It does not apply environment overrides.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if doc == nil {
		return cfg, nil
	}
	if err := validateDocument(doc); err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides settings with the TOOLHIVE_CEL_* variables that are set.
func (c *Config) ApplyEnv(envReader env.Reader) error {
	if v, ok := envReader.LookupEnv(EnvContainer); ok {
		c.Container = v
	}
	if v, ok := envReader.LookupEnv(EnvMaxExpressionLength); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvMaxExpressionLength, v, err)
		}
		c.MaxExpressionLength = n
	}
	if v, ok := envReader.LookupEnv(EnvLogLevel); ok {
		c.Log.Level = v
	}
	return nil
}

// Validate checks the settings that the schema cannot: name syntax and
// values that arrived through environment overrides.
func (c *Config) Validate() error {
	var msgs []string
	if c.Container != "" {
		if err := name.ValidateQualified(c.Container, false); err != nil {
			msgs = append(msgs, fmt.Sprintf("container: %v", err))
		}
	}
	for _, alias := range slices.Sorted(maps.Keys(c.Aliases)) {
		if err := name.ValidateIdent(alias); err != nil {
			msgs = append(msgs, fmt.Sprintf("alias %q: %v", alias, err))
		}
		if err := name.ValidateQualified(c.Aliases[alias], true); err != nil {
			msgs = append(msgs, fmt.Sprintf("alias %q target: %v", alias, err))
		}
	}
	if c.MaxExpressionLength < 0 {
		msgs = append(msgs, fmt.Sprintf("maxExpressionLength must not be negative, got %d", c.MaxExpressionLength))
	}
	if c.MaxRecursionDepth < 0 {
		msgs = append(msgs, fmt.Sprintf("maxRecursionDepth must not be negative, got %d", c.MaxRecursionDepth))
	}
	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		msgs = append(msgs, fmt.Sprintf("log.format: %v", err))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		msgs = append(msgs, fmt.Sprintf("log.level: %v", err))
	}
	return formatNumberedErrors("config validation failed", msgs)
}
