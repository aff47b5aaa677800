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
	"google.golang.org/protobuf/types/known/anypb"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/stacklok/toolhive-cel/types"
	"github.com/stacklok/toolhive-cel/types/pb"
)

func TestAdapter_WellKnownTypes(t *testing.T) {
	t.Parallel()

	a := pb.NewAdapter(nil)
	ts := time.Date(2024, 3, 1, 0, 0, 0, 5, time.UTC)
	packed, err := anypb.New(wrapperspb.String("inside"))
	require.NoError(t, err)

	tests := []struct {
		name string
		in   proto.Message
		want types.Val
	}{
		{name: "int32 wrapper", in: wrapperspb.Int32(5), want: types.Int(5)},
		{name: "uint32 wrapper", in: wrapperspb.UInt32(5), want: types.Uint(5)},
		{name: "float wrapper", in: wrapperspb.Float(1.5), want: types.Double(1.5)},
		{name: "bool wrapper", in: wrapperspb.Bool(true), want: types.True},
		{name: "bytes wrapper", in: wrapperspb.Bytes([]byte("b")), want: types.Bytes("b")},
		{name: "timestamp", in: timestamppb.New(ts), want: types.Timestamp{Time: ts}},
		{name: "duration", in: durationpb.New(90 * time.Second), want: types.Duration(90 * time.Second)},
		{name: "null value", in: structpb.NewNullValue(), want: types.NullValue},
		{name: "number value", in: structpb.NewNumberValue(2), want: types.Double(2)},
		{name: "any", in: packed, want: types.String("inside")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, a.ToCel(tt.in))
		})
	}
}

func TestAdapter_JSONTypes(t *testing.T) {
	t.Parallel()

	a := pb.NewAdapter(nil)
	s, err := structpb.NewStruct(map[string]any{
		"name": "x",
		"tags": []any{"a", 1.0},
	})
	require.NoError(t, err)

	m, ok := a.ToCel(s).(*types.Map)
	require.True(t, ok)
	assert.Equal(t, "map(string, dyn)", m.Type().FullName())

	name, ok := m.Get(types.String("name"))
	require.True(t, ok)
	assert.Equal(t, types.String("x"), name)

	tags, ok := m.Get(types.String("tags"))
	require.True(t, ok)
	list, ok := tags.(*types.List)
	require.True(t, ok)
	assert.Equal(t, []types.Val{types.String("a"), types.Double(1)}, list.Vals())
}

func TestAdapter_UnrecognizedAny(t *testing.T) {
	t.Parallel()

	a := pb.NewAdapter(nil)
	err, ok := a.ToCel(&anypb.Any{TypeUrl: "type.googleapis.com/acme.Missing"}).(*types.Err)
	require.True(t, ok)
	assert.Equal(t, "unrecognized any type: type.googleapis.com/acme.Missing", err.Message)
}

func TestAdapter_Messages(t *testing.T) {
	t.Parallel()

	a := pb.NewAdapter(nil)
	field := &descriptorpb.FieldDescriptorProto{
		Name:   proto.String("id"),
		Number: proto.Int32(3),
		Type:   descriptorpb.FieldDescriptorProto_TYPE_STRING.Enum(),
	}

	obj, ok := a.ToCel(field).(*types.Object)
	require.True(t, ok)
	assert.Equal(t, "google.protobuf.FieldDescriptorProto", obj.Type().Name())

	assert.Equal(t, types.String("id"), a.AccessByName(1, obj, "name"))
	assert.Equal(t, types.Int(3), a.AccessByName(1, obj, "number"))
	assert.Equal(t, types.Int(descriptorpb.FieldDescriptorProto_TYPE_STRING), a.AccessByName(1, obj, "type"))

	options, ok := a.AccessByName(1, obj, "options").(types.TypedNull)
	require.True(t, ok)
	assert.Equal(t, "google.protobuf.FieldOptions", options.TypeName)
	assert.Equal(t, types.True, types.Equal(options, types.NullValue))
	assert.Equal(t, types.False, types.DefaultAdapter.AccessByName(1, options, "packed"))

	err, ok := a.AccessByName(9, obj, "nope").(*types.Err)
	require.True(t, ok)
	assert.Equal(t, "field not found: nope", err.Message)

	assert.Equal(t, types.True, a.IsSetByName(1, obj, "name"))
	assert.Equal(t, types.False, a.IsSetByName(1, obj, "json_name"))
	assert.Equal(t, types.False, a.IsSetByName(1, obj, "options"))
	assert.Contains(t, a.FieldNames(obj), "json_name")

	clone, ok := a.ToCel(proto.Clone(field)).(*types.Object)
	require.True(t, ok)
	assert.Equal(t, types.True, types.Equal(obj, clone))
	assert.Same(t, field, a.FromCel(obj))
}

func TestAdapter_MapAndListFields(t *testing.T) {
	t.Parallel()

	a := pb.NewAdapter(nil)
	info := &exprpb.SourceInfo{
		LineOffsets: []int32{10, 20},
		Positions:   map[int64]int32{2: 5, 1: 0},
	}
	obj := a.ToCel(info)

	offsets, ok := a.AccessByName(1, obj, "line_offsets").(*types.List)
	require.True(t, ok)
	assert.Equal(t, "list(int)", offsets.Type().FullName())
	assert.Equal(t, []types.Val{types.Int(10), types.Int(20)}, offsets.Vals())

	positions, ok := a.AccessByName(1, obj, "positions").(*types.Map)
	require.True(t, ok)
	assert.Equal(t, []types.Val{types.Int(1), types.Int(2)}, positions.Keys())
	v, ok := positions.Get(types.Uint(2))
	require.True(t, ok)
	assert.Equal(t, types.Int(5), v)

	assert.Equal(t, types.False, a.IsSetByName(1, obj, "macro_calls"))
}

func TestAdapter_FromCel(t *testing.T) {
	t.Parallel()

	a := pb.NewAdapter(nil)
	ts := time.Unix(10, 0).UTC()

	got, ok := a.FromCel(types.Timestamp{Time: ts}).(*timestamppb.Timestamp)
	require.True(t, ok)
	assert.Equal(t, int64(10), got.GetSeconds())

	d, ok := a.FromCel(types.Duration(time.Second)).(*durationpb.Duration)
	require.True(t, ok)
	assert.Equal(t, int64(1), d.GetSeconds())

	assert.Equal(t, "x", a.FromCel(types.String("x")))
}
