// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package cel provides a CEL expression engine for compiling and evaluating
expressions against arbitrary data contexts.

The engine ties together the parser, the planner and the standard function
library. It provides a lazily-initialized, thread-safe compiler, structured
parse, plan and evaluation error reporting, boolean and generic value
evaluation helpers, and OpenTelemetry metrics.

# Basic Usage

Create an engine, compile an expression, and evaluate it:

	engine := cel.NewEngine()

	expr, err := engine.Compile(`claims["sub"] == "user123"`)
	if err != nil {
	    // handle compilation error
	}

	vars := map[string]any{"claims": map[string]any{"sub": "user123"}}
	result, err := expr.EvaluateBool(vars)
	// result == true

Variables may be maps, slices, primitives, time values or Go structs. Struct
fields are named by their `cel` tag, then their `json` tag, then the field
name. Use Eval with an interpreter.Activation for lazy or partial inputs.

# Names and Functions

WithContainer sets the namespace unqualified names are resolved in, and
WithAlias abbreviates qualified names. WithFunctions adds host functions,
which may use qualified names such as "acme.policy.allow":

	registry := functions.NewRegistry(nil)
	_ = registry.Add(functions.Unary("acme.policy.allow", nil, allow))
	engine := cel.NewEngine(
	    cel.WithContainer("acme.policy"),
	    cel.WithFunctions(registry),
	)
	expr, err := engine.Compile(`allow(request)`)

# Expression Validation

Use Check to validate an expression without keeping the plan. This is
useful for validating configuration at startup:

	err := engine.Check(`claims["sub"] == "user123"`)
	if err != nil {
	    // expression is invalid
	}

# Error Handling

Compilation errors are returned as structured types with location information:

	expr, err := engine.Compile(`claims["sub"`)
	var parseErr *cel.ParseError
	if errors.As(err, &parseErr) {
	    fmt.Println(parseErr.Source)  // the original expression
	    fmt.Println(parseErr.Errors) // line/column/message details
	}

	expr, err = engine.Compile(`acme.Missing{name: "x"}`)
	var planErr *cel.PlanError
	if errors.As(err, &planErr) {
	    fmt.Println(planErr.AsJSON()) // structured JSON error details
	}

Evaluation failures are values inside the engine. Evaluate reports them as an
*EvalError wrapping ErrEvaluation, with the location of every merged error.

# DoS Protection

Expressions longer than DefaultMaxExpressionLength are rejected. The limit
and the parser's nesting depth can be adjusted:

	engine := cel.NewEngine(cel.WithMaxRecursionDepth(64)).
	    WithMaxExpressionLength(5000) // reject overly long expressions

# Concurrency

The Engine and CompiledExpression types are safe for concurrent use. A compiled
expression can be evaluated from multiple goroutines simultaneously.
*/
package cel
