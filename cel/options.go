// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package cel

import (
	"log/slog"

	"github.com/go-logr/logr"
	"go.opentelemetry.io/otel/metric"

	"github.com/stacklok/toolhive-cel/functions"
	"github.com/stacklok/toolhive-cel/parser"
	"github.com/stacklok/toolhive-cel/types"
)

// Option configures an Engine.
type Option func(*Engine)

// WithFunctions registers host functions. They are consulted before the
// standard library, in the order given, so a host function may override a
// standard one of the same name.
func WithFunctions(dispatchers ...functions.Dispatcher) Option {
	return func(e *Engine) {
		e.dispatchers = append(e.dispatchers, dispatchers...)
	}
}

// WithTypeProvider sets the provider used to resolve message literals and
// type identifiers. The default knows only the well-known types.
func WithTypeProvider(provider types.TypeProvider) Option {
	return func(e *Engine) {
		e.provider = provider
	}
}

// WithAdapter sets the adapter that converts variables into values and
// results back into Go values. The default is native.DefaultAdapter.
func WithAdapter(adapter types.Adapter) Option {
	return func(e *Engine) {
		e.adapter = adapter
	}
}

// WithContainer sets the namespace that unqualified names are resolved
// against, e.g. "acme.policy".
func WithContainer(name string) Option {
	return func(e *Engine) {
		e.container = name
	}
}

// WithAlias makes the simple name alias expand to qualified.
func WithAlias(alias, qualified string) Option {
	return func(e *Engine) {
		if e.aliases == nil {
			e.aliases = map[string]string{}
		}
		e.aliases[alias] = qualified
	}
}

// WithLogger sets the logger for compile diagnostics.
func WithLogger(logger logr.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithSlogLogger sets a log/slog logger for compile diagnostics, such as one
// created by logging.New.
func WithSlogLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logr.FromSlogHandler(logger.Handler())
	}
}

// WithMeterProvider sets the provider engine metrics are recorded with.
// The default is the global provider.
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(e *Engine) {
		e.meterProvider = provider
	}
}

// WithOptionalSyntax enables or disables a.?b, a[?k], [?x] and {?k: v}.
// It is enabled by default.
func WithOptionalSyntax(enabled bool) Option {
	return func(e *Engine) {
		e.parserOptions = append(e.parserOptions, parser.WithOptionalSyntax(enabled))
	}
}

// WithMaxRecursionDepth bounds the nesting depth accepted by the parser.
func WithMaxRecursionDepth(depth int) Option {
	return func(e *Engine) {
		e.parserOptions = append(e.parserOptions, parser.WithMaxRecursionDepth(depth))
	}
}
