// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package cel

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/stacklok/toolhive-cel/expr"
	"github.com/stacklok/toolhive-cel/functions"
	"github.com/stacklok/toolhive-cel/interpreter"
	"github.com/stacklok/toolhive-cel/logger"
	"github.com/stacklok/toolhive-cel/parser"
	"github.com/stacklok/toolhive-cel/recovery"
	"github.com/stacklok/toolhive-cel/types"
	"github.com/stacklok/toolhive-cel/types/native"
)

const (
	// DefaultMaxExpressionLength is the maximum allowed length for a CEL expression.
	// This limit prevents DoS attacks via excessively long expressions.
	DefaultMaxExpressionLength = 10000
)

// Engine provides CEL expression compilation and evaluation capabilities.
// It is safe for concurrent use from multiple goroutines once configured.
type Engine struct {
	cache               *compilerCache
	maxExpressionLength int

	dispatchers   []functions.Dispatcher
	provider      types.TypeProvider
	adapter       types.Adapter
	container     string
	aliases       map[string]string
	logger        logr.Logger
	meterProvider metric.MeterProvider
	parserOptions []parser.Option
}

// compiler holds the parts shared by every expression an Engine compiles.
type compiler struct {
	parser  *parser.Parser
	planner *interpreter.Planner
	metrics *engineMetrics
}

// compilerCache holds a lazily-initialized compiler.
type compilerCache struct {
	once     sync.Once
	compiler *compiler
	err      error
}

// CompiledExpression represents a planned CEL expression ready for evaluation.
// It is immutable and may be evaluated concurrently.
type CompiledExpression struct {
	source  string
	plan    interpreter.Interpretable
	info    *expr.SourceInfo
	adapter types.Adapter
	metrics *engineMetrics
}

// Source returns the original expression source string.
func (ce *CompiledExpression) Source() string {
	return ce.source
}

// NewEngine creates a new CEL engine.
//
// The engine is created with a default limit for expression length to prevent
// denial-of-service attacks. Use WithMaxExpressionLength to customize it.
//
// Example usage:
//
//	engine := cel.NewEngine(
//	    cel.WithContainer("acme.policy"),
//	    cel.WithFunctions(registry),
//	)
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		cache:               &compilerCache{},
		maxExpressionLength: DefaultMaxExpressionLength,
		adapter:             native.DefaultAdapter,
		logger:              logger.NewLogr(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithMaxExpressionLength sets the maximum allowed length for CEL expressions.
// Expressions exceeding this length will be rejected during compilation.
func (e *Engine) WithMaxExpressionLength(maxLen int) *Engine {
	e.maxExpressionLength = maxLen
	return e
}

// getCompiler returns the compiler, creating it lazily on first access.
func (e *Engine) getCompiler() (*compiler, error) {
	e.cache.once.Do(func() {
		e.cache.compiler, e.cache.err = e.newCompiler()
	})
	return e.cache.compiler, e.cache.err
}

func (e *Engine) newCompiler() (*compiler, error) {
	p, err := parser.New(e.parserOptions...)
	if err != nil {
		return nil, err
	}

	ns := types.NewNamespace(e.container)
	for _, alias := range slices.Sorted(maps.Keys(e.aliases)) {
		ns = ns.WithAlias(alias, e.aliases[alias])
	}

	dispatchers := append(slices.Clone(e.dispatchers), functions.NewStandardRegistry())
	planner := interpreter.NewPlanner(
		functions.NewOrderedDispatcher(dispatchers...),
		e.provider,
		ns,
		e.logger,
	)

	mp := e.meterProvider
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	m, err := newEngineMetrics(mp)
	if err != nil {
		e.logger.Error(err, "failed to create engine metrics, recording disabled")
		m = noopMetrics()
	}

	return &compiler{parser: p, planner: planner, metrics: m}, nil
}

// Compile parses and plans a CEL expression, returning a CompiledExpression
// that can be evaluated multiple times against different inputs.
//
// Returns an error if the expression exceeds the maximum length, a ParseError
// if the expression has syntax errors, or a PlanError if the expression cannot
// be planned, e.g. when a message literal names an unknown type.
func (e *Engine) Compile(src string) (*CompiledExpression, error) {
	c, err := e.getCompiler()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL compiler: %w", err)
	}

	ce, stage, err := e.compile(c, src)
	c.metrics.recordCompile(context.Background(), stage, err)
	if err != nil {
		e.logger.V(1).Info("expression failed to compile", "stage", stage, "error", err.Error())
		return nil, err
	}
	return ce, nil
}

// Check verifies that a CEL expression is syntactically valid and can be
// planned, without keeping the result. This is useful for configuration
// validation.
func (e *Engine) Check(src string) error {
	_, err := e.Compile(src)
	return err
}

func (e *Engine) compile(c *compiler, src string) (*CompiledExpression, string, error) {
	// Check expression length to prevent DoS via excessively long expressions
	if len(src) > e.maxExpressionLength {
		return nil, "length", fmt.Errorf("%w: expression length %d exceeds maximum of %d",
			ErrExpressionCheck, len(src), e.maxExpressionLength)
	}

	tree, info, err := c.parser.Parse(src)
	if err != nil {
		return nil, "parse", newParseError(src, err)
	}

	var plan interpreter.Interpretable
	err = recovery.Do(func() error {
		var perr error
		plan, perr = c.planner.Plan(tree)
		return perr
	})
	if err != nil {
		if errors.Is(err, recovery.ErrPanic) {
			e.logger.Error(err, "recovered panic while planning expression", "source", src)
		}
		return nil, "plan", newPlanError(src, info, err)
	}

	return &CompiledExpression{
		source:  src,
		plan:    plan,
		info:    info,
		adapter: e.adapter,
		metrics: c.metrics,
	}, "", nil
}

// Eval evaluates the expression against vars and returns the raw result,
// which may be a *types.Err or a *types.Unknown. A nil vars evaluates
// against an empty activation.
func (ce *CompiledExpression) Eval(ctx context.Context, vars interpreter.Activation) types.Val {
	if vars == nil {
		vars = interpreter.EmptyActivation()
	}
	start := time.Now()
	out := ce.plan.Eval(vars)
	ce.metrics.recordEval(ctx, time.Since(start), out)
	return out
}

// Evaluate executes the compiled expression against the provided variables
// and returns the result as a Go value. Variables are converted with the
// engine's adapter.
//
// Example:
//
//	vars := map[string]any{"myVar": someValue}
func (ce *CompiledExpression) Evaluate(vars map[string]any) (any, error) {
	out := ce.Eval(context.Background(), interpreter.NewActivation(vars, ce.adapter))
	return ce.result(out)
}

// EvaluateBool executes the compiled expression and returns the result as a bool.
// Returns an error if the expression does not evaluate to a boolean.
func (ce *CompiledExpression) EvaluateBool(vars map[string]any) (bool, error) {
	result, err := ce.Evaluate(vars)
	if err != nil {
		return false, err
	}

	boolResult, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("%w: expected bool, got %T", ErrInvalidResult, result)
	}

	return boolResult, nil
}

// result converts an evaluation result into a Go value.
func (ce *CompiledExpression) result(out types.Val) (any, error) {
	switch v := out.(type) {
	case *types.Err:
		return nil, newEvalError(ce.source, ce.info, v)
	case *types.Unknown:
		return nil, fmt.Errorf("%w: result depends on %d unknown input(s)", ErrEvaluation, len(v.IDs))
	case nil:
		return nil, fmt.Errorf("%w: no result", ErrEvaluation)
	}
	return ce.adapter.FromCel(out), nil
}
