// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package pb_test

import (
	"testing"
	"time"

	exprpb "cel.dev/expr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/stacklok/toolhive-cel/types"
	"github.com/stacklok/toolhive-cel/types/pb"
)

func TestProvider_FindType(t *testing.T) {
	t.Parallel()

	p := pb.NewProvider(nil)

	typ, ok := p.FindType("google.protobuf.FieldDescriptorProto")
	require.True(t, ok)
	assert.Equal(t, "google.protobuf.FieldDescriptorProto", typ.Name())

	typ, ok = p.FindType("google.protobuf.Struct")
	require.True(t, ok)
	assert.Equal(t, types.JSONObjectType, typ)

	_, ok = p.FindType("acme.Missing")
	assert.False(t, ok)
}

func TestProvider_FindIdent(t *testing.T) {
	t.Parallel()

	p := pb.NewProvider(nil)

	v, ok := p.FindIdent(1, "google.protobuf.FieldDescriptorProto.Type.TYPE_STRING")
	require.True(t, ok)
	assert.Equal(t, types.Int(9), v)

	v, ok = p.FindIdent(1, "google.protobuf.NullValue.NULL_VALUE")
	require.True(t, ok)
	assert.Equal(t, types.Int(0), v)

	v, ok = p.FindIdent(1, "uint")
	require.True(t, ok)
	assert.Equal(t, types.UintType, v)

	_, ok = p.FindIdent(1, "google.protobuf.FieldDescriptorProto.Type.NOPE")
	assert.False(t, ok)
}

func TestProvider_NewValue(t *testing.T) {
	t.Parallel()

	p := pb.NewProvider(nil)

	obj, ok := p.NewValue(1, "google.protobuf.FieldDescriptorProto", map[string]types.Val{
		"name":   types.String("id"),
		"number": types.Int(3),
		"type":   types.Int(9),
	}).(*types.Object)
	require.True(t, ok)
	field, ok := obj.Value().(*descriptorpb.FieldDescriptorProto)
	require.True(t, ok)
	assert.True(t, proto.Equal(&descriptorpb.FieldDescriptorProto{
		Name:   proto.String("id"),
		Number: proto.Int32(3),
		Type:   descriptorpb.FieldDescriptorProto_TYPE_STRING.Enum(),
	}, field))

	assert.Equal(t, types.Int(7), p.NewValue(1, "google.protobuf.Int64Value", map[string]types.Val{"value": types.Int(7)}))
	assert.Equal(t, types.Timestamp{Time: time.Unix(10, 0).UTC()},
		p.NewValue(1, "google.protobuf.Timestamp", map[string]types.Val{"seconds": types.Int(10)}))
	assert.Nil(t, p.NewValue(1, "acme.Missing", nil))
}

func TestProvider_NewValueContainers(t *testing.T) {
	t.Parallel()

	p := pb.NewProvider(nil)
	positions := types.NewMap(types.DefaultAdapter, types.IntType, types.IntType)
	require.Nil(t, positions.Put(1, types.Int(4), types.Int(2)))

	obj, ok := p.NewValue(1, "cel.expr.SourceInfo", map[string]types.Val{
		"line_offsets": types.NewValList([]types.Val{types.Int(1), types.Int(5)}, types.IntType),
		"positions":    positions,
	}).(*types.Object)
	require.True(t, ok)

	info, ok := obj.Value().(*exprpb.SourceInfo)
	require.True(t, ok)
	assert.Equal(t, []int32{1, 5}, info.GetLineOffsets())
	assert.Equal(t, map[int64]int32{4: 2}, info.GetPositions())
}

func TestProvider_NewValueJSON(t *testing.T) {
	t.Parallel()

	p := pb.NewProvider(nil)
	fields := types.NewMap(types.DefaultAdapter, types.StringType, types.DynType)
	require.Nil(t, fields.Put(1, types.String("n"), types.Int(1)))

	got := p.NewValue(1, "google.protobuf.Struct", map[string]types.Val{
		"fields": fields,
	})
	m, ok := got.(*types.Map)
	require.True(t, ok, "got %v", got)
	v, ok := m.Get(types.String("n"))
	require.True(t, ok)
	assert.Equal(t, types.Double(1), v)
}

func TestProvider_NewValueErrors(t *testing.T) {
	t.Parallel()

	p := pb.NewProvider(nil)

	err, ok := p.NewValue(4, "google.protobuf.FieldDescriptorProto", map[string]types.Val{
		"bogus": types.Int(1),
	}).(*types.Err)
	require.True(t, ok)
	assert.Equal(t, "field not found: bogus", err.Message)

	err, ok = p.NewValue(4, "google.protobuf.FieldDescriptorProto", map[string]types.Val{
		"number": types.String("x"),
	}).(*types.Err)
	require.True(t, ok)
	assert.Equal(t, "type mismatch: int vs string", err.Message)

	err, ok = p.NewValue(4, "google.protobuf.FieldDescriptorProto", map[string]types.Val{
		"number": types.Int(1 << 40),
	}).(*types.Err)
	require.True(t, ok)
	assert.Equal(t, types.ErrKindOverflow, err.Kind)
}
