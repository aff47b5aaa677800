// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package cel

import (
	"fmt"

	"github.com/stacklok/toolhive-cel/config"
	"github.com/stacklok/toolhive-cel/logging"
)

// NewEngineFromConfig creates an engine from a loaded configuration. The
// options are applied after the configuration, so they take precedence.
func NewEngineFromConfig(cfg *config.Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var fromConfig []Option
	if cfg.Container != "" {
		fromConfig = append(fromConfig, WithContainer(cfg.Container))
	}
	for alias, qualified := range cfg.Aliases {
		fromConfig = append(fromConfig, WithAlias(alias, qualified))
	}
	fromConfig = append(fromConfig, WithOptionalSyntax(cfg.OptionalSyntax()))
	if cfg.MaxRecursionDepth > 0 {
		fromConfig = append(fromConfig, WithMaxRecursionDepth(cfg.MaxRecursionDepth))
	}
	if cfg.Log != (config.Log{}) {
		format, err := logging.ParseFormat(cfg.Log.Format)
		if err != nil {
			return nil, fmt.Errorf("invalid log configuration: %w", err)
		}
		level, err := logging.ParseLevel(cfg.Log.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log configuration: %w", err)
		}
		fromConfig = append(fromConfig, WithSlogLogger(logging.New(
			logging.WithFormat(format),
			logging.WithLevel(level),
		)))
	}

	e := NewEngine(append(fromConfig, opts...)...)
	if cfg.MaxExpressionLength > 0 {
		e.WithMaxExpressionLength(cfg.MaxExpressionLength)
	}
	return e, nil
}
