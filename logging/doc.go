// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package logging provides a pre-configured [log/slog.Logger] factory for hosts
embedding the expression engine.

# Basic Usage

	logger := logging.New(
		logging.WithFormat(logging.FormatText),
		logging.WithLevel(slog.LevelDebug),
	)
	engine := cel.NewEngine(cel.WithSlogLogger(logger))

# Configuration Values

ParseFormat and ParseLevel read the "log.format" and "log.level" keys of the
engine configuration:

	format, err := logging.ParseFormat(cfg.Log.Format) // "json" or "text"
	level, err := logging.ParseLevel(cfg.Log.Level)    // "debug", "info", ...

# Handler Access

Use [NewHandler] when you need to wrap the handler with middleware:

	base := logging.NewHandler(logging.WithLevel(slog.LevelDebug))
	logger := slog.New(&myMiddleware{Handler: base})

# Stability

This package is Alpha stability. The API may change without notice.
*/
package logging
