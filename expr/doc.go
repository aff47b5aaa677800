// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package expr defines the parsed expression tree consumed by the planner.

Trees are built through a Builder, which numbers nodes in construction order,
records their source offsets and expands macros structurally:

	has(a.b)            presence test on the select a.b
	r.all(x, p)         fold with accumulator true, step __result__ && p
	r.exists(x, p)      fold with accumulator false, step __result__ || p
	r.exists_one(x, p)  fold counting matches, result __result__ == 1
	r.map(x, t)         fold appending [t]
	r.filter(x, p)      fold appending [x] when p holds

A macro is recognized only by call shape: a member call with two arguments
whose first argument is a bare identifier. A variable or field named map or
all is therefore never confused with the macro.

FromProto converts trees in the cel.expr wire format, including trees from a
parser running without macros.
*/
package expr
