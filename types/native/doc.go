// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package native adapts plain Go values to the CEL value model. It is the
// adapter used for activation bindings supplied as map[string]any.
package native
