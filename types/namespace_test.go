// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stacklok/toolhive-cel/types"
)

func TestNamespace_ResolveCandidateNames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		namespace *types.Namespace
		ident     string
		want      []string
	}{
		{
			name:      "root namespace",
			namespace: types.RootNamespace,
			ident:     "a.b",
			want:      []string{"a.b"},
		},
		{
			name:      "most specific first",
			namespace: types.NewNamespace("a.b.c"),
			ident:     "R.s",
			want:      []string{"a.b.c.R.s", "a.b.R.s", "a.R.s", "R.s"},
		},
		{
			name:      "leading dot is absolute",
			namespace: types.NewNamespace("a.b"),
			ident:     ".x.y",
			want:      []string{"x.y"},
		},
		{
			name:      "alias expands the first segment",
			namespace: types.NewNamespace("a.b").WithAlias("R", "my.pkg.R"),
			ident:     "R.s",
			want:      []string{"my.pkg.R.s"},
		},
		{
			name:      "alias applies to absolute names",
			namespace: types.NewNamespace("a").WithAlias("R", "my.pkg.R"),
			ident:     ".R",
			want:      []string{"my.pkg.R"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.namespace.ResolveCandidateNames(tt.ident))
		})
	}
}

func TestNamespace_WithAliasCopies(t *testing.T) {
	t.Parallel()

	base := types.NewNamespace("a")
	aliased := base.WithAlias("x", "y.z")

	assert.Empty(t, base.Aliases())
	assert.Equal(t, map[string]string{"x": "y.z"}, aliased.Aliases())
	assert.Equal(t, "a", aliased.Name())
}

func TestEmptyProvider(t *testing.T) {
	t.Parallel()

	p := types.EmptyProvider{}

	v, ok := p.FindIdent(1, "int")
	assert.True(t, ok)
	assert.Equal(t, types.IntType, v)

	_, ok = p.FindIdent(1, "x")
	assert.False(t, ok)

	typ, ok := p.FindType("google.protobuf.Int64Value")
	assert.True(t, ok)
	assert.Equal(t, types.IntWrapperType, typ)

	assert.Equal(t, types.Int(5), p.NewValue(1, "google.protobuf.Int32Value", map[string]types.Val{"value": types.Int(5)}))
	assert.Equal(t, types.Uint(0), p.NewValue(1, "google.protobuf.UInt64Value", map[string]types.Val{}))
	assert.Equal(t, types.Double(2), p.NewValue(1, "google.protobuf.DoubleValue", map[string]types.Val{"value": types.Int(2)}))
	assert.Equal(t, types.String("s"), p.NewValue(1, "google.protobuf.StringValue", map[string]types.Val{"value": types.String("s")}))
	assert.Nil(t, p.NewValue(1, "acme.Unknown", nil))

	err, ok := p.NewValue(1, "google.protobuf.UInt32Value", map[string]types.Val{"value": types.Int(-1)}).(*types.Err)
	assert.True(t, ok)
	assert.Equal(t, types.ErrKindOverflow, err.Kind)
}
