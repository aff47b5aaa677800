// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package parser is the reference text front end. It runs the cel-go grammar
// without macros, converts the result through the cel.expr wire format and
// rebuilds it with expr.Builder, which performs macro expansion.
//
//	e, info, err := parser.Parse(`[1, 2, 3].exists(x, x > 2)`)
package parser
