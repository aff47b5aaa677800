// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package recovery converts panics into errors.
//
// Host code plugged into the engine (function implementations, type
// providers, adapters) runs inside Do, so a panic in it surfaces as an error
// instead of crashing the caller.
//
// # Basic Usage
//
//	err := recovery.Do(func() error {
//	    return compile(expr)
//	})
//	if errors.Is(err, recovery.ErrPanic) {
//	    var pe *recovery.PanicError
//	    errors.As(err, &pe)
//	    log.Printf("panic: %v\n%s", pe.Value, pe.Stack)
//	}
//
// # Stability
//
// This package is Beta stability. The API may have minor changes before
// reaching stable status in v1.0.0.
package recovery
