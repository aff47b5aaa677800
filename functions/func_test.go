// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package functions_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/toolhive-cel/functions"
	"github.com/stacklok/toolhive-cel/functions/mocks"
	"github.com/stacklok/toolhive-cel/types"
)

func TestFunc_StrictDispatch(t *testing.T) {
	t.Parallel()

	called := false
	fn := functions.Unary("f", []string{"f_int"}, func(_ int64, x types.Val) types.Val {
		called = true
		return x
	})

	errArg := types.NewErr(3, types.ErrKindInvalidArgument, "boom")
	assert.Same(t, errArg, fn.Dispatch(1, []types.Val{errArg}))
	assert.False(t, called)

	unknown := types.NewUnknown(4)
	assert.Equal(t, unknown, fn.Dispatch(1, []types.Val{unknown}))
	assert.False(t, called)

	assert.Nil(t, fn.Dispatch(1, []types.Val{types.Int(1), types.Int(2)}))
	assert.Equal(t, types.Int(7), fn.Dispatch(1, []types.Val{types.Int(7)}))
	assert.True(t, called)
	assert.True(t, fn.Strict())
	assert.Equal(t, []string{"f_int"}, fn.Overloads())
}

func TestFunc_VarArgSeesRawResults(t *testing.T) {
	t.Parallel()

	var seen []types.Val
	fn := functions.NewVarArg("g", nil, func(_ int64, args []types.Val) types.Val {
		seen = args
		return types.True
	})
	errArg := types.NewErr(3, types.ErrKindInvalidArgument, "boom")

	assert.Equal(t, types.True, fn.Dispatch(1, []types.Val{errArg, types.Int(1)}))
	assert.Equal(t, []types.Val{errArg, types.Int(1)}, seen)
	assert.False(t, fn.Strict())
}

func TestFunc_Zero(t *testing.T) {
	t.Parallel()

	fn := functions.Zero("now", "now_zero", func(int64) types.Val { return types.Int(42) })
	assert.Equal(t, types.Int(42), fn.Dispatch(1, nil))
	assert.Nil(t, fn.Dispatch(1, []types.Val{types.Int(1)}))
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	parent := functions.NewRegistry(nil)
	double := functions.Unary("double", []string{"double_int"}, func(_ int64, x types.Val) types.Val {
		return x.(types.Int) * 2
	})
	require.NoError(t, parent.Add(double))

	child := functions.NewRegistry(parent)
	specific := functions.Unary("twice", []string{"twice_int"}, func(_ int64, x types.Val) types.Val { return x })
	require.NoError(t, child.Add(functions.Unary("twice", nil, func(_ int64, x types.Val) types.Val { return x }), specific))

	err := child.Add(functions.Unary("twice", nil, nil))
	require.ErrorIs(t, err, functions.ErrFunctionExists)
	assert.Contains(t, err.Error(), "twice")

	fn := child.Find("double")
	require.NotNil(t, fn)
	assert.Equal(t, types.Int(4), fn.Dispatch(1, []types.Val{types.Int(2)}))
	assert.Nil(t, child.Find("missing"))

	got, ok := child.FindOverload("twice_int")
	require.True(t, ok)
	assert.Same(t, specific, got)
	_, ok = child.FindOverload("double_int")
	assert.True(t, ok)
	assert.Equal(t, []string{"twice"}, child.Names())
}

func TestOrderedDispatcher(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	first := mocks.NewMockDispatcher(ctrl)
	second := mocks.NewMockDispatcher(ctrl)
	call := mocks.NewMockCallDispatch(ctrl)

	first.EXPECT().Find("f").Return(nil)
	second.EXPECT().Find("f").Return(call)
	call.EXPECT().Dispatch(int64(9), []types.Val{types.String("x")}).Return(types.True)

	d := functions.NewOrderedDispatcher(first)
	d.Add(second)

	fn := d.Find("f")
	require.NotNil(t, fn)
	assert.Equal(t, types.True, fn.Dispatch(9, []types.Val{types.String("x")}))

	first.EXPECT().Find("g").Return(nil)
	second.EXPECT().Find("g").Return(nil)
	assert.Nil(t, d.Find("g"))
}

func TestArgsMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []types.Val
		min  int
		want []*types.Type
		ok   bool
	}{
		{"exact", []types.Val{types.Int(1), types.String("a")}, 2, []*types.Type{types.IntType, types.StringType}, true},
		{"optional trailing", []types.Val{types.Int(1)}, 1, []*types.Type{types.IntType, types.StringType}, true},
		{"too few", []types.Val{}, 1, []*types.Type{types.IntType}, false},
		{"too many", []types.Val{types.Int(1), types.Int(2)}, 1, []*types.Type{types.IntType}, false},
		{"wrong type", []types.Val{types.Uint(1)}, 1, []*types.Type{types.IntType}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.ok, functions.ArgsMatch(tt.args, tt.min, tt.want...))
		})
	}
}
