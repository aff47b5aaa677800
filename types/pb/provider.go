// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package pb

import (
	"math"
	"strings"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/known/anypb"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/stacklok/toolhive-cel/types"
)

// Provider resolves message and enum names against a protobuf registry and
// builds messages from message literals.
type Provider struct {
	adapter  *Adapter
	registry *protoregistry.Types
}

// NewProvider creates a provider over registry. A nil registry means
// protoregistry.GlobalTypes.
func NewProvider(registry *protoregistry.Types) *Provider {
	if registry == nil {
		registry = protoregistry.GlobalTypes
	}
	return &Provider{adapter: NewAdapter(registry), registry: registry}
}

// Adapter implements types.TypeProvider.
func (p *Provider) Adapter() types.Adapter { return p.adapter }

// FindType implements types.TypeProvider.
func (p *Provider) FindType(name string) (*types.Type, bool) {
	if t, ok := types.WellKnownType(name); ok {
		return t, true
	}
	mt, err := p.registry.FindMessageByName(protoreflect.FullName(name))
	if err != nil {
		return nil, false
	}
	return p.adapter.messageInfo(mt.Descriptor()).typ, true
}

// FindIdent implements types.TypeProvider. Enum constants resolve to their
// number: "google.protobuf.NullValue.NULL_VALUE" is 0.
func (p *Provider) FindIdent(id int64, name string) (types.Val, bool) {
	if dot := strings.LastIndexByte(name, '.'); dot > 0 {
		et, err := p.registry.FindEnumByName(protoreflect.FullName(name[:dot]))
		if err == nil {
			if ev := et.Descriptor().Values().ByName(protoreflect.Name(name[dot+1:])); ev != nil {
				return types.Int(ev.Number()), true
			}
		}
	}
	return types.EmptyProvider{}.FindIdent(id, name)
}

// NewValue implements types.TypeProvider.
func (p *Provider) NewValue(id int64, typeName string, fields map[string]types.Val) types.Val {
	if v := (types.EmptyProvider{}).NewValue(id, typeName, fields); v != nil {
		return v
	}
	mt, err := p.registry.FindMessageByName(protoreflect.FullName(typeName))
	if err != nil {
		return nil
	}
	msg := mt.New()
	info := p.adapter.messageInfo(msg.Descriptor())
	for name, v := range fields {
		fd, ok := info.fields[name]
		if !ok {
			return types.FieldNotFound(id, name)
		}
		if err := p.setField(id, msg, fd, v); err != nil {
			return err
		}
	}
	return p.adapter.messageToCel(msg)
}

func (p *Provider) setField(id int64, msg protoreflect.Message, fd protoreflect.FieldDescriptor, v types.Val) *types.Err {
	switch t := v.(type) {
	case types.Null, types.TypedNull:
		return nil
	case *types.Err:
		return t
	}
	switch {
	case fd.IsList():
		list, ok := v.(*types.List)
		if !ok {
			return types.TypeMismatch(id, "list", v)
		}
		dst := msg.Mutable(fd).List()
		for i := range list.Len() {
			pv, err := p.toProto(id, fd, list.Get(i), dst.NewElement)
			if err != nil {
				return err
			}
			dst.Append(pv)
		}
	case fd.IsMap():
		m, ok := v.(*types.Map)
		if !ok {
			return types.TypeMismatch(id, "map", v)
		}
		dst := msg.Mutable(fd).Map()
		for _, k := range m.Keys() {
			pk, err := p.toProto(id, fd.MapKey(), k, nil)
			if err != nil {
				return err
			}
			elem, _ := m.Get(k)
			pv, err := p.toProto(id, fd.MapValue(), elem, dst.NewValue)
			if err != nil {
				return err
			}
			dst.Set(pk.MapKey(), pv)
		}
	default:
		pv, err := p.toProto(id, fd, v, func() protoreflect.Value { return msg.NewField(fd) })
		if err != nil {
			return err
		}
		msg.Set(fd, pv)
	}
	return nil
}

// toProto converts one element. newMessage allocates the destination for
// message-typed elements.
func (p *Provider) toProto(
	id int64, fd protoreflect.FieldDescriptor, v types.Val, newMessage func() protoreflect.Value,
) (protoreflect.Value, *types.Err) {
	mismatch := func(expected string) (protoreflect.Value, *types.Err) {
		return protoreflect.Value{}, types.TypeMismatch(id, expected, v)
	}
	switch fd.Kind() {
	case protoreflect.BoolKind:
		if b, ok := v.(types.Bool); ok {
			return protoreflect.ValueOfBool(bool(b)), nil
		}
		return mismatch("bool")
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		if i, ok := v.(types.Int); ok {
			if i < math.MinInt32 || i > math.MaxInt32 {
				return protoreflect.Value{}, types.Overflow(id, types.IntType, "conversion")
			}
			return protoreflect.ValueOfInt32(int32(i)), nil
		}
		return mismatch("int")
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		if i, ok := v.(types.Int); ok {
			return protoreflect.ValueOfInt64(int64(i)), nil
		}
		return mismatch("int")
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		if u, ok := v.(types.Uint); ok {
			if u > math.MaxUint32 {
				return protoreflect.Value{}, types.Overflow(id, types.UintType, "conversion")
			}
			return protoreflect.ValueOfUint32(uint32(u)), nil
		}
		return mismatch("uint")
	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		if u, ok := v.(types.Uint); ok {
			return protoreflect.ValueOfUint64(uint64(u)), nil
		}
		return mismatch("uint")
	case protoreflect.FloatKind:
		if d, ok := v.(types.Double); ok {
			return protoreflect.ValueOfFloat32(float32(d)), nil
		}
		return mismatch("double")
	case protoreflect.DoubleKind:
		if d, ok := v.(types.Double); ok {
			return protoreflect.ValueOfFloat64(float64(d)), nil
		}
		return mismatch("double")
	case protoreflect.StringKind:
		if s, ok := v.(types.String); ok {
			return protoreflect.ValueOfString(string(s)), nil
		}
		return mismatch("string")
	case protoreflect.BytesKind:
		if b, ok := v.(types.Bytes); ok {
			return protoreflect.ValueOfBytes([]byte(b)), nil
		}
		return mismatch("bytes")
	case protoreflect.EnumKind:
		if i, ok := v.(types.Int); ok {
			if i < math.MinInt32 || i > math.MaxInt32 {
				return protoreflect.Value{}, types.Overflow(id, types.IntType, "conversion")
			}
			return protoreflect.ValueOfEnum(protoreflect.EnumNumber(i)), nil
		}
		return mismatch("int")
	case protoreflect.MessageKind, protoreflect.GroupKind:
		dst := newMessage()
		if err := p.fillMessage(id, dst.Message(), v); err != nil {
			return protoreflect.Value{}, err
		}
		return dst, nil
	}
	return mismatch(fd.Kind().String())
}

// fillMessage populates dst, a freshly allocated message, from v.
func (p *Provider) fillMessage(id int64, dst protoreflect.Message, v types.Val) *types.Err {
	md := dst.Descriptor()
	fields := md.Fields()
	switch md.FullName() {
	case "google.protobuf.Timestamp":
		ts, ok := v.(types.Timestamp)
		if !ok {
			return types.TypeMismatch(id, "timestamp", v)
		}
		dst.Set(fields.ByName("seconds"), protoreflect.ValueOfInt64(ts.Unix()))
		dst.Set(fields.ByName("nanos"), protoreflect.ValueOfInt32(int32(ts.Nanosecond())))
		return nil
	case "google.protobuf.Duration":
		d, ok := v.(types.Duration)
		if !ok {
			return types.TypeMismatch(id, "duration", v)
		}
		n := int64(d)
		dst.Set(fields.ByName("seconds"), protoreflect.ValueOfInt64(n/1e9))
		dst.Set(fields.ByName("nanos"), protoreflect.ValueOfInt32(int32(n%1e9)))
		return nil
	case "google.protobuf.BoolValue",
		"google.protobuf.Int32Value", "google.protobuf.Int64Value",
		"google.protobuf.UInt32Value", "google.protobuf.UInt64Value",
		"google.protobuf.FloatValue", "google.protobuf.DoubleValue",
		"google.protobuf.StringValue", "google.protobuf.BytesValue":
		fd := fields.ByName("value")
		pv, err := p.toProto(id, fd, v, nil)
		if err != nil {
			return err
		}
		dst.Set(fd, pv)
		return nil
	case "google.protobuf.Value", "google.protobuf.Struct", "google.protobuf.ListValue":
		return p.fillJSON(id, dst, v)
	case "google.protobuf.Any":
		src, ok := p.adapter.owns(v)
		if !ok {
			return types.TypeMismatch(id, "message", v)
		}
		packed, err := anypb.New(src.Interface())
		if err != nil {
			return types.InvalidArgument(id, "google.protobuf.Any", err.Error())
		}
		dst.Set(fields.ByName("type_url"), protoreflect.ValueOfString(packed.GetTypeUrl()))
		dst.Set(fields.ByName("value"), protoreflect.ValueOfBytes(packed.GetValue()))
		return nil
	}
	src, ok := p.adapter.owns(v)
	if !ok || src.Descriptor().FullName() != md.FullName() {
		return types.TypeMismatch(id, string(md.FullName()), v)
	}
	proto.Merge(dst.Interface(), src.Interface())
	return nil
}

func (p *Provider) fillJSON(id int64, dst protoreflect.Message, v types.Val) *types.Err {
	var (
		src proto.Message
		err error
	)
	native := p.adapter.FromCel(v)
	switch dst.Descriptor().FullName() {
	case "google.protobuf.Struct":
		fields, ok := native.(map[string]any)
		if !ok {
			return types.TypeMismatch(id, "map(string, dyn)", v)
		}
		src, err = structpb.NewStruct(jsonNative(fields).(map[string]any))
	case "google.protobuf.ListValue":
		elems, ok := native.([]any)
		if !ok {
			return types.TypeMismatch(id, "list", v)
		}
		src, err = structpb.NewList(jsonNative(elems).([]any))
	default:
		src, err = structpb.NewValue(jsonNative(native))
	}
	if err != nil {
		return types.InvalidArgument(id, string(dst.Descriptor().FullName()), err.Error())
	}
	proto.Merge(dst.Interface(), src)
	return nil
}

// jsonNative rewrites values structpb cannot represent directly. Temporal
// values become their JSON strings.
func jsonNative(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = jsonNative(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = jsonNative(e)
		}
		return out
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	case time.Duration:
		return types.FormatDuration(types.Duration(t))
	case *timestamppb.Timestamp:
		return t.AsTime().Format(time.RFC3339Nano)
	case *durationpb.Duration:
		return types.FormatDuration(types.Duration(t.AsDuration()))
	}
	return v
}
