// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package interpreter_test

import (
	"sync"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/toolhive-cel/expr"
	"github.com/stacklok/toolhive-cel/functions"
	"github.com/stacklok/toolhive-cel/interpreter"
	"github.com/stacklok/toolhive-cel/parser"
	"github.com/stacklok/toolhive-cel/types"
	"github.com/stacklok/toolhive-cel/types/mocks"
	"github.com/stacklok/toolhive-cel/types/native"
)

var std = functions.NewStandardRegistry()

func newPlanner(ns *types.Namespace) *interpreter.Planner {
	return interpreter.NewPlanner(std, nil, ns, logr.Discard())
}

func plan(t *testing.T, p *interpreter.Planner, src string) interpreter.Interpretable {
	t.Helper()
	tree, _, err := parser.Parse(src)
	require.NoError(t, err)
	i, err := p.Plan(tree)
	require.NoError(t, err)
	return i
}

func eval(t *testing.T, src string, vars map[string]any) types.Val {
	t.Helper()
	return plan(t, newPlanner(nil), src).Eval(interpreter.NewActivation(vars, nil))
}

func ints(ns ...int64) *types.List {
	vals := make([]types.Val, len(ns))
	for i, n := range ns {
		vals[i] = types.Int(n)
	}
	return types.NewValList(vals, types.IntType)
}

func requireErr(t *testing.T, v types.Val, kind types.ErrorKind) *types.Err {
	t.Helper()
	err, ok := v.(*types.Err)
	require.True(t, ok, "expected an error, got %s", types.Format(v))
	assert.Equal(t, kind, err.Kind, err.Error())
	return err
}

type pet struct {
	Name  string `cel:"name"`
	Owner *owner `cel:"owner"`
	Tags  []string
}

type owner struct {
	Email string `json:"email"`
}

func TestEval_Values(t *testing.T) {
	t.Parallel()

	vars := map[string]any{
		"x":   int64(3),
		"s":   "hello",
		"m":   map[string]any{"a": 1, "b": "two"},
		"l":   []int{10, 20, 30},
		"pet": pet{Name: "rex", Owner: &owner{Email: "o@example.com"}},
		"n":   nil,
	}
	tests := []struct {
		name string
		src  string
		want types.Val
	}{
		{"literal", `1`, types.Int(1)},
		{"arithmetic", `x * 2 + 1`, types.Int(7)},
		{"string concat", `"ab" + "cd"`, types.String("abcd")},
		{"list concat", `[1, 2] + [3, 4]`, ints(1, 2, 3, 4)},
		{"in list", `"a" in ["a", "b", "c"]`, types.True},
		{"not in list", `"z" in ["a", "b", "c"]`, types.False},
		{"int key in map", `1 in {1: "x"}`, types.True},
		{"uint key in map", `1u in {1: "x"}`, types.True},
		{"large uint key stays distinct", `-1 in {18446744073709551615u: "x"}`, types.False},
		{"large uint key lookup", `{18446744073709551615u: "x", -1: "y"}[18446744073709551615u]`, types.String("x")},
		{"numeric equality", `1 == 1u && 1 == 1.0`, types.True},
		{"map field", `m.a`, types.Int(1)},
		{"map index", `m["b"]`, types.String("two")},
		{"list index", `l[1]`, types.Int(20)},
		{"list index uint", `l[2u]`, types.Int(30)},
		{"list index double", `l[0.0]`, types.Int(10)},
		{"computed index", `l[x - 2]`, types.Int(20)},
		{"struct field", `pet.name`, types.String("rex")},
		{"nested struct field", `pet.owner.email`, types.String("o@example.com")},
		{"untagged field", `size(pet.Tags)`, types.Int(0)},
		{"member call", `s.startsWith("he")`, types.True},
		{"size", `size(l) == 3`, types.True},
		{"conditional", `x > 2 ? "big" : "small"`, types.String("big")},
		{"conditional select", `(x > 5 ? m : {"a": 9}).a`, types.Int(9)},
		{"index on literal", `[1, 2, 3][2]`, types.Int(3)},
		{"select on call result", `{"k": m}.k.b`, types.String("two")},
		{"type identifier", `type(1) == int`, types.True},
		{"wrapper literal", `google.protobuf.Int64Value{value: 5}`, types.Int(5)},
		{"has set field", `has(m.a)`, types.True},
		{"has unset field", `has(m.z)`, types.False},
		{"has zero struct field", `has(pet.Tags)`, types.False},
		{"optional select hit", `m.?a`, types.Int(1)},
		{"optional select miss", `m.?z`, types.NullValue},
		{"optional index miss", `l[?7]`, types.NullValue},
		{"optional chain miss", `m.?z.y`, types.NullValue},
		{"optional list element", `size([?m.?z, 1])`, types.Int(1)},
		{"optional map entry", `size({?"k": m.?z, "j": 1})`, types.Int(1)},
		{"optional list element holding null", `[?n, 1]`, ints(1)},
		{"optional map entry holding null", `size({?"k": n})`, types.Int(0)},
		{"null outside optional entries", `[n, 1][0] == null`, types.True},
		{"and short-circuits errors", `false && 1 / 0 > 0`, types.False},
		{"or short-circuits errors", `1 / 0 > 0 || true`, types.True},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := eval(t, tt.src, vars)
			require.False(t, types.IsErrorOrUnknown(got), types.Format(got))
			assert.Equal(t, types.True, types.Equal(got, tt.want), "got %s", types.Format(got))
		})
	}
}

func TestEval_Errors(t *testing.T) {
	t.Parallel()

	vars := map[string]any{
		"m": map[string]any{"a": 1},
		"l": []int{1},
	}
	tests := []struct {
		name string
		src  string
		kind types.ErrorKind
	}{
		{"divide by zero", `1 / 0`, types.ErrKindDivideByZero},
		{"modulus by zero", `1 % 0`, types.ErrKindDivideByZero},
		{"overflow", `9223372036854775807 + 1`, types.ErrKindOverflow},
		{"undeclared", `y + 1`, types.ErrKindUnboundReference},
		{"has on undeclared", `has(missing.field)`, types.ErrKindUnboundReference},
		{"has without selection", `has(m)`, types.ErrKindInvalidArgument},
		{"has on scalar field", `has(m.a.b)`, types.ErrKindTypeMismatch},
		{"unbound function", `frobnicate(1)`, types.ErrKindUnboundReference},
		{"no overload", `"a" - 1`, types.ErrKindOverloadNotFound},
		{"missing map key", `m.z`, types.ErrKindNotFound},
		{"missing index key", `m["z"]`, types.ErrKindNotFound},
		{"index out of bounds", `l[5]`, types.ErrKindOutOfBounds},
		{"negative index", `l[-1]`, types.ErrKindOutOfBounds},
		{"string index on list", `l["0"]`, types.ErrKindTypeMismatch},
		{"bool index on list", `l[true]`, types.ErrKindUnsupportedKey},
		{"null index", `m[null]`, types.ErrKindUnsupportedKey},
		{"non-bool condition", `1 ? 2 : 3`, types.ErrKindOverloadNotFound},
		{"duplicate map key", `{1: 1, 1: 2}`, types.ErrKindKeyConflict},
		{"cross-numeric duplicate key", `{1: 1, 1u: 2}`, types.ErrKindKeyConflict},
		{"fractional map key", `{1.5: 1}`, types.ErrKindUnsupportedKey},
		{"fold over scalar", `true.exists(x, x)`, types.ErrKindTypeMismatch},
		{"bad wrapper literal", `google.protobuf.Int64Value{value: "x"}`, types.ErrKindTypeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			requireErr(t, eval(t, tt.src, vars), tt.kind)
		})
	}
}

func TestEval_UndeclaredReferenceNamesIdentifier(t *testing.T) {
	t.Parallel()

	p := newPlanner(types.NewNamespace("acme.v1"))
	got := plan(t, p, `missing.field == 1`).Eval(interpreter.EmptyActivation())

	err := requireErr(t, got, types.ErrKindUnboundReference)
	assert.Contains(t, err.Message, "'missing'")
	assert.Contains(t, err.Message, "acme.v1")
}

func TestEval_Comprehensions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want types.Val
	}{
		{"exists", `[1, 2, 3].exists(x, x > 2)`, types.True},
		{"all", `[1, 2, 3].all(x, x > 2)`, types.False},
		{"exists_one", `[1, 2, 3].exists_one(x, x > 2)`, types.True},
		{"exists_one many", `[1, 2, 3].exists_one(x, x > 1)`, types.False},
		{"map", `[1, 2, 3].map(x, x * 2)`, ints(2, 4, 6)},
		{"filter", `[1, 2, 3].filter(x, x % 2 == 0)`, ints(2)},
		{"empty range", `[].all(x, x > 0)`, types.True},
		{"map keys", `{"a": 1, "bb": 2}.all(k, size(k) < 3)`, types.True},
		{"nested", `[[1], [2, 3]].map(l, l.exists(x, x == 3))`, types.NewValList([]types.Val{types.False, types.True}, types.BoolType)},
		{"shadowing", `[1, 2].map(x, [10].map(x, x + 1))`, types.NewValList([]types.Val{ints(11), ints(11)}, types.ListType)},
		{"error masked by later true", `[0, 1].exists(x, 1 / x > 0)`, types.True},
		{"early exit skips error", `[1, 0].exists(x, x == 1 || 1 / x > 0)`, types.True},
		{"error masked by later false", `[0, 2].all(x, 10 / x > 1 && x > 5)`, types.False},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := eval(t, tt.src, nil)
			require.False(t, types.IsErrorOrUnknown(got), types.Format(got))
			assert.Equal(t, types.True, types.Equal(got, tt.want), "got %s", types.Format(got))
		})
	}

	requireErr(t, eval(t, `[0].exists(x, 1 / x > 0)`, nil), types.ErrKindDivideByZero)
}

func TestEval_NotStrictlyFalseWithManyFailures(t *testing.T) {
	t.Parallel()

	// Every step fails, so the loop condition keeps absorbing the error and
	// the last failure is the result.
	got := eval(t, `[0, 0, 0].exists(x, 1 / x > 0)`, nil)
	requireErr(t, got, types.ErrKindDivideByZero)

	got = eval(t, `[0, 0, 1].exists(x, 1 / x > 0)`, nil)
	assert.Equal(t, types.True, got)

	got = eval(t, `[0, 0, 1].all(x, 1 / x > 0)`, nil)
	requireErr(t, got, types.ErrKindDivideByZero)
}

func TestEval_MergedErrors(t *testing.T) {
	t.Parallel()

	got := eval(t, `{"a": 1 / 0, "b": 2 % 0}`, nil)
	err := requireErr(t, got, types.ErrKindDivideByZero)
	require.Len(t, err.Additional, 1)

	first := eval(t, `1 / 0`, nil).(*types.Err)
	second := eval(t, `2 % 0`, nil).(*types.Err)
	assert.Equal(t, []string{first.Message, second.Message}, err.Messages())

	got = eval(t, `[1 / 0, 2, 3 % 0]`, nil)
	err = requireErr(t, got, types.ErrKindDivideByZero)
	assert.Len(t, err.Additional, 1)

	got = eval(t, `{1: "a", 1: "b", 2.5: "c"}`, nil)
	err = requireErr(t, got, types.ErrKindKeyConflict)
	require.Len(t, err.Additional, 1)
	assert.Equal(t, types.ErrKindUnsupportedKey, err.Additional[0].Kind)
}

func TestEval_ListAndMapTypes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "list(int)", eval(t, `[1, 2]`, nil).Type().FullName())
	assert.Equal(t, "list(dyn)", eval(t, `[1, "a"]`, nil).Type().FullName())
	assert.Equal(t, "map(string, int)", eval(t, `{"a": 1}`, nil).Type().FullName())
	assert.Equal(t, "map(dyn, int)", eval(t, `{"a": 1, 2: 3}`, nil).Type().FullName())
}

func TestEval_QualifiedVariables(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ns   *types.Namespace
		vars map[string]any
		src  string
		want types.Val
	}{
		{
			name: "dotted variable",
			vars: map[string]any{"a.b": map[string]any{"c": 1}},
			src:  `a.b.c`,
			want: types.Int(1),
		},
		{
			name: "field path",
			vars: map[string]any{"a": map[string]any{"b": map[string]any{"c": 2}}},
			src:  `a.b.c`,
			want: types.Int(2),
		},
		{
			name: "most qualified wins",
			vars: map[string]any{
				"a":     map[string]any{"b": map[string]any{"c": 2}},
				"a.b.c": 3,
			},
			src:  `a.b.c`,
			want: types.Int(3),
		},
		{
			name: "namespace candidate",
			ns:   types.NewNamespace("acme.v1"),
			vars: map[string]any{"acme.x": 4, "x": 5},
			src:  `x`,
			want: types.Int(4),
		},
		{
			name: "absolute name skips namespace",
			ns:   types.NewNamespace("acme"),
			vars: map[string]any{"acme.x": 4, "x": 5},
			src:  `.x`,
			want: types.Int(5),
		},
		{
			name: "alias",
			ns:   types.NewNamespace("acme").WithAlias("cfg", "acme.config.v2"),
			vars: map[string]any{"acme.config.v2": map[string]any{"port": 8080}},
			src:  `cfg.port`,
			want: types.Int(8080),
		},
		{
			name: "comprehension variable beats namespaced binding",
			ns:   types.NewNamespace("acme"),
			vars: map[string]any{"acme.x": 100},
			src:  `[1].map(x, x + 1)[0]`,
			want: types.Int(2),
		},
		{
			name: "index then field",
			vars: map[string]any{"a": []any{map[string]any{"b": 6}}},
			src:  `a[0].b`,
			want: types.Int(6),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := plan(t, newPlanner(tt.ns), tt.src).Eval(interpreter.NewActivation(tt.vars, nil))
			assert.Equal(t, types.True, types.Equal(got, tt.want), "got %s", types.Format(got))
		})
	}
}

func TestEval_QualifiedFunction(t *testing.T) {
	t.Parallel()

	reg := functions.NewRegistry(std)
	require.NoError(t, reg.Add(functions.Unary("acme.twice", []string{"acme_twice_int"},
		func(_ int64, v types.Val) types.Val {
			if n, ok := v.(types.Int); ok {
				return n * 2
			}
			return nil
		})))
	require.ErrorIs(t, reg.Add(functions.Unary("acme.twice", nil, nil)), functions.ErrFunctionExists)

	p := interpreter.NewPlanner(reg, nil, nil, logr.Discard())
	assert.Equal(t, types.Int(8), plan(t, p, `acme.twice(4)`).Eval(interpreter.EmptyActivation()))
	assert.Equal(t, types.Int(3), plan(t, p, `1 + 2`).Eval(interpreter.EmptyActivation()))

	inNamespace := interpreter.NewPlanner(reg, nil, types.NewNamespace("acme"), logr.Discard())
	assert.Equal(t, types.Int(6), plan(t, inNamespace, `twice(3)`).Eval(interpreter.EmptyActivation()))

	got := plan(t, p, `acme.twice("x")`).Eval(interpreter.EmptyActivation())
	requireErr(t, got, types.ErrKindOverloadNotFound)
}

func TestEval_PartialActivation(t *testing.T) {
	t.Parallel()

	p := newPlanner(nil)
	vars := interpreter.NewPartialActivation(
		interpreter.NewActivation(map[string]any{"y": 2}, nil), "x")

	tree, _, err := parser.Parse(`x + y`)
	require.NoError(t, err)
	sum, err := p.Plan(tree)
	require.NoError(t, err)
	call, ok := tree.AsCall()
	require.True(t, ok)

	got := sum.Eval(vars)
	u, ok := got.(*types.Unknown)
	require.True(t, ok, types.Format(got))
	assert.Equal(t, []int64{call.Args[0].ID}, u.IDs)

	assert.Equal(t, types.True, plan(t, p, `x > 1 || y == 2`).Eval(vars))
	assert.Equal(t, types.False, plan(t, p, `x.f && y == 3`).Eval(vars))
	assert.True(t, types.IsUnknown(plan(t, p, `x.f.g`).Eval(vars)))
	assert.True(t, types.IsUnknown(plan(t, p, `has(x.f)`).Eval(vars)))
}

func TestEval_Activations(t *testing.T) {
	t.Parallel()

	p := newPlanner(nil)
	i := plan(t, p, `name + ":" + string(count)`)

	calls := 0
	lazy := interpreter.NewActivation(map[string]any{
		"name":  "n",
		"count": func() any { calls++; return 3 },
	}, nil)
	assert.Equal(t, types.String("n:3"), i.Eval(lazy))
	assert.Equal(t, 1, calls)

	parent := interpreter.NewActivation(map[string]any{"name": "p", "count": 1}, nil)
	child := interpreter.NewActivation(map[string]any{"name": "c"}, nil)
	assert.Equal(t, types.String("c:1"), i.Eval(interpreter.NewHierarchicalActivation(parent, child)))

	requireErr(t, i.Eval(interpreter.EmptyActivation()), types.ErrKindUnboundReference)
}

func TestEval_RecordActivation(t *testing.T) {
	t.Parallel()

	p := newPlanner(nil)
	rec := interpreter.NewRecordActivation(native.DefaultAdapter.ToCel(pet{
		Name:  "rex",
		Owner: &owner{Email: "o@example.com"},
	}))

	assert.Equal(t, types.String("rex"), plan(t, p, `name`).Eval(rec))
	assert.Equal(t, types.String("o@example.com"), plan(t, p, `owner.email`).Eval(rec))
	requireErr(t, plan(t, p, `age`).Eval(rec), types.ErrKindUnboundReference)
}

func TestPlan_IsIdempotentAndShareable(t *testing.T) {
	t.Parallel()

	const src = `items.filter(i, i.price > limit).map(i, i.name)`
	tree, _, err := parser.Parse(src)
	require.NoError(t, err)

	p := newPlanner(nil)
	first, err := p.Plan(tree)
	require.NoError(t, err)
	second, err := p.Plan(tree)
	require.NoError(t, err)

	vars := func(limit int) interpreter.Activation {
		return interpreter.NewActivation(map[string]any{
			"limit": limit,
			"items": []map[string]any{
				{"name": "a", "price": 1},
				{"name": "b", "price": 5},
				{"name": "c", "price": 9},
			},
		}, nil)
	}
	assert.Equal(t, types.True, types.Equal(first.Eval(vars(4)), second.Eval(vars(4))))

	var wg sync.WaitGroup
	results := make([]types.Val, 32)
	for n := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[n] = first.Eval(vars(n % 10))
		}()
	}
	wg.Wait()
	for n, got := range results {
		want := second.Eval(vars(n % 10))
		assert.Equal(t, types.True, types.Equal(got, want), "limit %d: %s", n%10, types.Format(got))
	}
}

func TestPlan_Errors(t *testing.T) {
	t.Parallel()

	p := newPlanner(types.NewNamespace("acme"))
	tree, _, err := parser.Parse(`Pet{name: "rex"}`)
	require.NoError(t, err)
	_, err = p.Plan(tree)
	require.ErrorIs(t, err, interpreter.ErrTypeNotFound)
	var planErr *interpreter.PlanError
	require.ErrorAs(t, err, &planErr)
	assert.Equal(t, tree.ID, planErr.ID)

	str := &expr.Expr{ID: 9, Kind: &expr.Const{Value: types.String("x")}}
	malformed := []struct {
		name string
		tree *expr.Expr
	}{
		{"nil", nil},
		{"empty kind", &expr.Expr{ID: 1}},
		{"incomplete comprehension", &expr.Expr{ID: 1, Kind: &expr.Comprehension{IterVar: "x", AccuVar: "a"}}},
		{"bad optional index", &expr.Expr{ID: 1, Kind: &expr.CreateList{
			Elements:        []*expr.Expr{str},
			OptionalIndices: []int32{3},
		}}},
		{"field key in map literal", &expr.Expr{ID: 1, Kind: &expr.CreateStruct{
			Entries: []*expr.Entry{{ID: 2, FieldKey: "f", Value: str}},
		}}},
		{"index arity", &expr.Expr{ID: 1, Kind: &expr.Call{Function: "_[_]", Args: []*expr.Expr{str}}}},
		{"optional select on computed field", &expr.Expr{ID: 1, Kind: &expr.Call{
			Function: "_?._",
			Args:     []*expr.Expr{str, {ID: 3, Kind: &expr.Ident{Name: "f"}}},
		}}},
	}
	for _, tt := range malformed {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := p.Plan(tt.tree)
			require.ErrorIs(t, err, interpreter.ErrMalformedExpr)
		})
	}
}

func TestPlan_MessageLiteral(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	provider := mocks.NewMockTypeProvider(ctrl)
	petType := types.NewObjectType("acme.v1.Pet")
	built := types.NewObject(types.DefaultAdapter, "rex", petType)

	gomock.InOrder(
		provider.EXPECT().FindType("acme.v1.Pet").Return(nil, false),
		provider.EXPECT().FindType("acme.Pet").Return(petType, true),
	)
	provider.EXPECT().
		NewValue(gomock.Any(), "acme.Pet", map[string]types.Val{"name": types.String("rex"), "age": types.Int(3)}).
		Return(built)

	p := interpreter.NewPlanner(std, provider, types.NewNamespace("acme.v1"), logr.Discard())
	i := plan(t, p, `Pet{name: "rex", age: 1 + 2, ?nick: {}.?nick}`)
	assert.Same(t, built, i.Eval(interpreter.EmptyActivation()))
}

func TestPlan_MessageLiteralErrors(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	provider := mocks.NewMockTypeProvider(ctrl)
	provider.EXPECT().FindType("Pet").Return(types.NewObjectType("Pet"), true).AnyTimes()

	p := interpreter.NewPlanner(std, provider, nil, logr.Discard())

	got := plan(t, p, `Pet{name: 1 / 0, age: 2 % 0}`).Eval(interpreter.EmptyActivation())
	err := requireErr(t, got, types.ErrKindDivideByZero)
	assert.Len(t, err.Additional, 1)

	provider.EXPECT().NewValue(gomock.Any(), "Pet", gomock.Any()).Return(nil)
	got = plan(t, p, `Pet{}`).Eval(interpreter.EmptyActivation())
	requireErr(t, got, types.ErrKindUnboundReference)
}
