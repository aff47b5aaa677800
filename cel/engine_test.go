// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package cel_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gopkg.in/yaml.v3"

	"github.com/stacklok/toolhive-cel/cel"
	"github.com/stacklok/toolhive-cel/config"
	"github.com/stacklok/toolhive-cel/functions"
	"github.com/stacklok/toolhive-cel/interpreter"
	"github.com/stacklok/toolhive-cel/logging"
	"github.com/stacklok/toolhive-cel/recovery"
	"github.com/stacklok/toolhive-cel/types"
	"github.com/stacklok/toolhive-cel/types/mocks"
	"github.com/stacklok/toolhive-cel/types/native"
)

type fixture struct {
	Name      string         `yaml:"name"`
	Expr      string         `yaml:"expr"`
	Vars      map[string]any `yaml:"vars"`
	Want      any            `yaml:"want"`
	ErrorKind string         `yaml:"errorKind"`
}

func loadFixtures(t *testing.T, path string) []fixture {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var fixtures []fixture
	require.NoError(t, yaml.Unmarshal(data, &fixtures))
	require.NotEmpty(t, fixtures)
	return fixtures
}

func TestEngine_Fixtures(t *testing.T) {
	t.Parallel()

	engine := cel.NewEngine()

	for _, tc := range loadFixtures(t, "testdata/expressions.yaml") {
		t.Run(tc.Name, func(t *testing.T) {
			t.Parallel()

			compiled, err := engine.Compile(tc.Expr)
			require.NoError(t, err)

			got := compiled.Eval(context.Background(), interpreter.NewActivation(tc.Vars, nil))
			if tc.ErrorKind != "" {
				e, ok := got.(*types.Err)
				require.True(t, ok, "expected an error, got %s", types.Format(got))
				assert.Equal(t, types.ErrorKind(tc.ErrorKind), e.Kind, e.Error())
				return
			}
			want := native.DefaultAdapter.ToCel(tc.Want)
			assert.Equal(t, types.True, types.Equal(want, got),
				"want %s, got %s", types.Format(want), types.Format(got))
		})
	}
}

func TestEngine_Compile_ParseErrors(t *testing.T) {
	t.Parallel()

	engine := cel.NewEngine()

	tests := []struct {
		name string
		expr string
	}{
		{name: "unclosed bracket", expr: `claims["sub"`},
		{name: "dangling operator", expr: `1 +`},
		{name: "unterminated string", expr: `"abc`},
		{name: "second line", expr: "true &&\n)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			compiled, err := engine.Compile(tt.expr)
			require.Error(t, err)
			assert.Nil(t, compiled)
			assert.ErrorIs(t, err, cel.ErrExpressionCheck)

			var parseErr *cel.ParseError
			require.True(t, errors.As(err, &parseErr), "expected ParseError, got %T", err)
			assert.Equal(t, tt.expr, parseErr.Source)
			require.NotEmpty(t, parseErr.Errors)
			assert.Positive(t, parseErr.Errors[0].Line)
			assert.NotEmpty(t, parseErr.Errors[0].Msg)
			assert.Contains(t, parseErr.AsJSON(), `"errors"`)
			assert.Contains(t, err.Error(), "CEL parse error")

			assert.Error(t, engine.Check(tt.expr))
		})
	}
}

func TestEngine_MaxExpressionLength(t *testing.T) {
	t.Parallel()

	engine := cel.NewEngine().WithMaxExpressionLength(10)

	_, err := engine.Compile(`1 + 2`)
	require.NoError(t, err)

	_, err = engine.Compile(strings.Repeat("1 + ", 5) + "1")
	require.ErrorIs(t, err, cel.ErrExpressionCheck)
	assert.Contains(t, err.Error(), "exceeds maximum of 10")
}

func TestEngine_PlanErrors(t *testing.T) {
	t.Parallel()

	engine := cel.NewEngine()
	_, err := engine.Compile(`acme.Missing{name: "x"}`)
	require.ErrorIs(t, err, cel.ErrPlan)
	assert.ErrorIs(t, err, interpreter.ErrTypeNotFound)

	var planErr *cel.PlanError
	require.ErrorAs(t, err, &planErr)
	require.Len(t, planErr.Errors, 1)
	assert.Equal(t, 1, planErr.Errors[0].Line)
	assert.Contains(t, planErr.Errors[0].Msg, "acme.Missing")
}

func TestEngine_PlanRecoversFromProviderPanic(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	provider := mocks.NewMockTypeProvider(ctrl)
	provider.EXPECT().FindType("Pet").DoAndReturn(func(string) (*types.Type, bool) {
		panic("provider bug")
	})

	var buf bytes.Buffer
	engine := cel.NewEngine(
		cel.WithTypeProvider(provider),
		cel.WithSlogLogger(logging.New(logging.WithOutput(&buf))),
	)

	_, err := engine.Compile(`Pet{}`)
	require.ErrorIs(t, err, cel.ErrPlan)
	assert.ErrorIs(t, err, recovery.ErrPanic)
	assert.Contains(t, err.Error(), "provider bug")
	assert.Contains(t, buf.String(), "recovered panic while planning expression")
}

func TestEngine_Evaluate(t *testing.T) {
	t.Parallel()

	type claims struct {
		Sub    string   `json:"sub"`
		Groups []string `json:"groups"`
	}

	engine := cel.NewEngine()
	vars := map[string]any{
		"claims": claims{Sub: "user123", Groups: []string{"admins"}},
		"n":      41,
	}

	tests := []struct {
		name string
		expr string
		want any
	}{
		{name: "int", expr: `n + 1`, want: int64(42)},
		{name: "string", expr: `claims.sub`, want: "user123"},
		{name: "bool", expr: `"admins" in claims.groups`, want: true},
		{name: "list", expr: `[n, 1.5, "x"]`, want: []any{int64(41), 1.5, "x"}},
		{name: "map", expr: `{"a": n}`, want: map[string]any{"a": int64(41)}},
		{name: "null", expr: `null`, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			compiled, err := engine.Compile(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.expr, compiled.Source())

			got, err := compiled.Evaluate(vars)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEngine_EvaluateErrors(t *testing.T) {
	t.Parallel()

	engine := cel.NewEngine()

	compiled, err := engine.Compile(`[1 / 0, 2 % 0, x]`)
	require.NoError(t, err)

	_, err = compiled.Evaluate(map[string]any{"x": 1})
	require.ErrorIs(t, err, cel.ErrEvaluation)

	var evalErr *cel.EvalError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, types.ErrKindDivideByZero, evalErr.Cause.Kind)
	require.Len(t, evalErr.Errors, 2)
	for _, inst := range evalErr.Errors {
		assert.Equal(t, 1, inst.Line)
		assert.Equal(t, string(types.ErrKindDivideByZero), inst.Kind)
	}
	assert.Contains(t, err.Error(), "CEL eval error")

	compiled, err = engine.Compile(`x`)
	require.NoError(t, err)
	_, err = compiled.Evaluate(nil)
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, types.ErrKindUnboundReference, evalErr.Cause.Kind)
}

func TestEngine_EvaluateBool(t *testing.T) {
	t.Parallel()

	engine := cel.NewEngine()

	compiled, err := engine.Compile(`claims["sub"] == "user123"`)
	require.NoError(t, err)

	ok, err := compiled.EvaluateBool(map[string]any{"claims": map[string]any{"sub": "user123"}})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = compiled.EvaluateBool(map[string]any{"claims": map[string]any{"sub": "other"}})
	require.NoError(t, err)
	assert.False(t, ok)

	compiled, err = engine.Compile(`"not a bool"`)
	require.NoError(t, err)
	_, err = compiled.EvaluateBool(nil)
	require.ErrorIs(t, err, cel.ErrInvalidResult)
	assert.Contains(t, err.Error(), "expected bool, got string")
}

func TestEngine_PartialActivation(t *testing.T) {
	t.Parallel()

	engine := cel.NewEngine()
	compiled, err := engine.Compile(`claims.sub == "user123" && request.admin`)
	require.NoError(t, err)

	vars := interpreter.NewPartialActivation(
		interpreter.NewActivation(map[string]any{"claims": map[string]any{"sub": "user123"}}, nil),
		"request",
	)
	got := compiled.Eval(context.Background(), vars)
	_, ok := got.(*types.Unknown)
	assert.True(t, ok, "expected unknown, got %s", types.Format(got))

	vars = interpreter.NewPartialActivation(
		interpreter.NewActivation(map[string]any{"claims": map[string]any{"sub": "other"}}, nil),
		"request",
	)
	assert.Equal(t, types.False, compiled.Eval(context.Background(), vars))
}

func TestEngine_NamesAndFunctions(t *testing.T) {
	t.Parallel()

	registry := functions.NewRegistry(nil)
	require.NoError(t, registry.Add(functions.Unary("acme.policy.shout", nil, func(_ int64, arg types.Val) types.Val {
		s, ok := arg.(types.String)
		if !ok {
			return nil
		}
		return types.String(strings.ToUpper(string(s)) + "!")
	})))
	require.NoError(t, registry.Add(functions.Unary("size", nil, func(_ int64, _ types.Val) types.Val {
		return types.Int(-1)
	})))

	engine := cel.NewEngine(
		cel.WithContainer("acme.policy"),
		cel.WithAlias("cfg", "acme.settings"),
		cel.WithFunctions(registry),
	)

	tests := []struct {
		name string
		expr string
		want any
	}{
		{name: "container function", expr: `shout("hi")`, want: "HI!"},
		{name: "qualified function", expr: `acme.policy.shout("hi")`, want: "HI!"},
		{name: "host overrides standard", expr: `size("abc")`, want: int64(-1)},
		{name: "container variable", expr: `limit`, want: int64(3)},
		{name: "alias", expr: `cfg.mode`, want: "strict"},
	}

	vars := map[string]any{
		"acme.policy.limit":  3,
		"acme.settings.mode": "strict",
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			compiled, err := engine.Compile(tt.expr)
			require.NoError(t, err)
			got, err := compiled.Evaluate(vars)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEngine_OptionalSyntaxDisabled(t *testing.T) {
	t.Parallel()

	_, err := cel.NewEngine().Compile(`m.?a`)
	require.NoError(t, err)

	_, err = cel.NewEngine(cel.WithOptionalSyntax(false)).Compile(`m.?a`)
	assert.ErrorIs(t, err, cel.ErrExpressionCheck)
}

func TestEngine_LogsCompileFailures(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	engine := cel.NewEngine(cel.WithSlogLogger(logging.New(
		logging.WithOutput(&buf),
		logging.WithLevel(slog.LevelDebug),
	)))

	_, err := engine.Compile(`1 +`)
	require.Error(t, err)
	assert.Contains(t, buf.String(), "expression failed to compile")
	assert.Contains(t, buf.String(), `"stage":"parse"`)
}

func TestEngine_ConcurrentEvaluation(t *testing.T) {
	t.Parallel()

	engine := cel.NewEngine()
	compiled, err := engine.Compile(`[1, 2, 3].map(x, x * n).exists(y, y == n * 3)`)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]bool, 32)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := compiled.EvaluateBool(map[string]any{"n": i})
			results[i] = err == nil && ok
		}()
	}
	wg.Wait()

	for i, ok := range results {
		assert.True(t, ok, "goroutine %d", i)
	}
}

func TestNewEngineFromConfig(t *testing.T) {
	t.Parallel()

	disabled := false
	cfg := &config.Config{
		Container:            "acme.policy",
		Aliases:              map[string]string{"cfg": "acme.settings"},
		MaxExpressionLength:  20,
		EnableOptionalSyntax: &disabled,
		Log:                  config.Log{Format: "text", Level: "error"},
	}

	engine, err := cel.NewEngineFromConfig(cfg)
	require.NoError(t, err)

	compiled, err := engine.Compile(`limit + cfg.extra`)
	require.NoError(t, err)
	got, err := compiled.Evaluate(map[string]any{"acme.policy.limit": 1, "acme.settings.extra": 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), got)

	_, err = engine.Compile(`m.?a`)
	assert.ErrorIs(t, err, cel.ErrExpressionCheck)

	_, err = engine.Compile(strings.Repeat("1+", 10) + "1")
	assert.ErrorContains(t, err, "exceeds maximum of 20")

	_, err = cel.NewEngineFromConfig(&config.Config{Container: "bad..name"})
	assert.ErrorContains(t, err, "config validation failed")
}
