// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package interpreter plans and evaluates expression trees.

A Planner turns an *expr.Expr into a tree of Interpretable nodes. Names are
resolved against a types.Namespace, calls are bound through a
functions.Dispatcher, and message literals are checked against a
types.TypeProvider, all once, while planning:

	planner := interpreter.NewPlanner(functions.NewStandardRegistry(), nil, nil, logr.Discard())
	plan, err := planner.Plan(tree)
	if err != nil {
		return err
	}
	result := plan.Eval(interpreter.NewActivation(map[string]any{"x": 41}, nil))

Identifiers and field selections are planned as attributes. The selection
a.b.c is a single attribute that tries the variables "a.b.c", "a.b" and "a",
in that order, and applies the remaining fields to the first one bound.
Index operators, optional selection (a.?b, a[?k]) and the conditional
operator extend attributes as well, so that only the branch that is taken is
ever resolved.

Evaluation results are types.Val values. Failures are *types.Err values
carrying the id of the node that failed, and inputs declared unknown with
NewPartialActivation surface as *types.Unknown. A plan is immutable and may
be evaluated concurrently.
*/
package interpreter
