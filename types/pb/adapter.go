// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package pb

import (
	"slices"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/known/anypb"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/stacklok/toolhive-cel/types"
	"github.com/stacklok/toolhive-cel/types/native"
)

// Adapter converts protobuf messages. Well-known types map onto CEL values:
// wrappers become their primitive, Timestamp and Duration become temporal
// values, Struct, Value and ListValue become JSON-like maps and lists, and
// Any is unpacked through the registry. Other messages become Objects.
//
// Field tables are computed once per message type and cached. An Adapter is
// safe for concurrent use.
type Adapter struct {
	registry *protoregistry.Types
	messages cmap.ConcurrentMap[string, *messageInfo]
}

// NewAdapter creates an adapter that resolves Any payloads through registry.
// A nil registry means protoregistry.GlobalTypes.
func NewAdapter(registry *protoregistry.Types) *Adapter {
	if registry == nil {
		registry = protoregistry.GlobalTypes
	}
	return &Adapter{registry: registry, messages: cmap.New[*messageInfo]()}
}

type messageInfo struct {
	typ    *types.Type
	names  []string
	fields map[string]protoreflect.FieldDescriptor
}

func (a *Adapter) messageInfo(md protoreflect.MessageDescriptor) *messageInfo {
	name := string(md.FullName())
	if info, ok := a.messages.Get(name); ok {
		return info
	}
	fds := md.Fields()
	info := &messageInfo{
		typ:    types.NewObjectType(name),
		names:  make([]string, 0, fds.Len()),
		fields: make(map[string]protoreflect.FieldDescriptor, fds.Len()),
	}
	for i := range fds.Len() {
		fd := fds.Get(i)
		info.names = append(info.names, string(fd.Name()))
		info.fields[string(fd.Name())] = fd
	}
	a.messages.SetIfAbsent(name, info)
	return info
}

// fieldValue is the native element type of lists and maps read from
// messages.
type fieldValue struct {
	fd    protoreflect.FieldDescriptor
	value protoreflect.Value
}

// ToCel implements types.Adapter.
func (a *Adapter) ToCel(native any) types.Val {
	switch v := native.(type) {
	case nil:
		return types.NullValue
	case types.Val:
		return v
	case fieldValue:
		return a.scalarToCel(v.fd, v.value)
	case proto.Message:
		return a.messageToCel(v.ProtoReflect())
	case protoreflect.Message:
		return a.messageToCel(v)
	}
	return nativeAdapter.ToCel(native)
}

var nativeAdapter = native.DefaultAdapter

func (a *Adapter) messageToCel(m protoreflect.Message) types.Val {
	md := m.Descriptor()
	switch md.FullName() {
	case "google.protobuf.Timestamp":
		return types.NewTimestamp(0, getInt(m, "seconds"), getInt(m, "nanos"))
	case "google.protobuf.Duration":
		return types.NewDuration(0, getInt(m, "seconds"), getInt(m, "nanos"))
	case "google.protobuf.BoolValue",
		"google.protobuf.Int32Value", "google.protobuf.Int64Value",
		"google.protobuf.UInt32Value", "google.protobuf.UInt64Value",
		"google.protobuf.FloatValue", "google.protobuf.DoubleValue",
		"google.protobuf.StringValue", "google.protobuf.BytesValue":
		fd := md.Fields().ByName("value")
		return a.scalarToCel(fd, m.Get(fd))
	case "google.protobuf.Any":
		return a.unpackAny(m)
	case "google.protobuf.Value":
		return a.jsonValueToCel(m)
	case "google.protobuf.Struct":
		return a.fieldToCel(m, md.Fields().ByName("fields"))
	case "google.protobuf.ListValue":
		return a.fieldToCel(m, md.Fields().ByName("values"))
	}
	return types.NewObject(a, m.Interface(), a.messageInfo(md).typ)
}

func getInt(m protoreflect.Message, name protoreflect.Name) int64 {
	fd := m.Descriptor().Fields().ByName(name)
	return m.Get(fd).Int()
}

func (a *Adapter) unpackAny(m protoreflect.Message) types.Val {
	md := m.Descriptor()
	typeURL := m.Get(md.Fields().ByName("type_url")).String()
	packed := &anypb.Any{
		TypeUrl: typeURL,
		Value:   m.Get(md.Fields().ByName("value")).Bytes(),
	}
	msg, err := anypb.UnmarshalNew(packed, proto.UnmarshalOptions{Resolver: a.registry})
	if err != nil {
		return types.UnrecognizedAny(0, typeURL)
	}
	return a.messageToCel(msg.ProtoReflect())
}

func (a *Adapter) jsonValueToCel(m protoreflect.Message) types.Val {
	oneof := m.Descriptor().Oneofs().ByName("kind")
	fd := m.WhichOneof(oneof)
	if fd == nil {
		return types.NullValue
	}
	switch fd.Name() {
	case "null_value":
		return types.NullValue
	case "number_value":
		return types.Double(m.Get(fd).Float())
	case "string_value":
		return types.String(m.Get(fd).String())
	case "bool_value":
		return types.Bool(m.Get(fd).Bool())
	}
	return a.messageToCel(m.Get(fd).Message())
}

// fieldToCel reads a field of a message. Unset message fields read as a
// typed null carrying the default instance.
func (a *Adapter) fieldToCel(m protoreflect.Message, fd protoreflect.FieldDescriptor) types.Val {
	switch {
	case fd.IsList():
		list := m.Get(fd).List()
		elems := make([]any, list.Len())
		for i := range elems {
			elems[i] = fieldValue{fd: fd, value: list.Get(i)}
		}
		return types.NewList(a, elems, a.kindType(fd))
	case fd.IsMap():
		return a.mapToCel(m.Get(fd).Map(), fd)
	case fd.Message() != nil && !m.Has(fd):
		switch fd.Message().FullName() {
		case "google.protobuf.Value", "google.protobuf.Any":
			return types.NullValue
		}
		return types.TypedNull{
			TypeName: string(fd.Message().FullName()),
			Zero:     a.messageToCel(m.Get(fd).Message()),
		}
	}
	return a.scalarToCel(fd, m.Get(fd))
}

func (a *Adapter) mapToCel(pm protoreflect.Map, fd protoreflect.FieldDescriptor) types.Val {
	type entry struct {
		key   types.Val
		value protoreflect.Value
	}
	keyFd, valFd := fd.MapKey(), fd.MapValue()
	entries := make([]entry, 0, pm.Len())
	pm.Range(func(k protoreflect.MapKey, v protoreflect.Value) bool {
		entries = append(entries, entry{key: a.scalarToCel(keyFd, k.Value()), value: v})
		return true
	})
	slices.SortFunc(entries, func(x, y entry) int {
		c, _ := types.Compare(x.key, y.key).(types.Int)
		return int(c)
	})
	m := types.NewMap(a, a.kindType(keyFd), a.kindType(valFd))
	for _, e := range entries {
		if err := m.Put(0, e.key, fieldValue{fd: valFd, value: e.value}); err != nil {
			return err
		}
	}
	return m
}

func (a *Adapter) scalarToCel(fd protoreflect.FieldDescriptor, v protoreflect.Value) types.Val {
	switch fd.Kind() {
	case protoreflect.BoolKind:
		return types.Bool(v.Bool())
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind,
		protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		return types.Int(v.Int())
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind,
		protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		return types.Uint(v.Uint())
	case protoreflect.FloatKind, protoreflect.DoubleKind:
		return types.Double(v.Float())
	case protoreflect.StringKind:
		return types.String(v.String())
	case protoreflect.BytesKind:
		return types.Bytes(v.Bytes())
	case protoreflect.EnumKind:
		return types.Int(v.Enum())
	case protoreflect.MessageKind, protoreflect.GroupKind:
		return a.messageToCel(v.Message())
	}
	return types.NewErr(0, types.ErrKindTypeMismatch, "unsupported field kind %s", fd.Kind())
}

// kindType is the CEL type of a single element of fd.
func (a *Adapter) kindType(fd protoreflect.FieldDescriptor) *types.Type {
	switch fd.Kind() {
	case protoreflect.BoolKind:
		return types.BoolType
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind,
		protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind,
		protoreflect.EnumKind:
		return types.IntType
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind,
		protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		return types.UintType
	case protoreflect.FloatKind, protoreflect.DoubleKind:
		return types.DoubleType
	case protoreflect.StringKind:
		return types.StringType
	case protoreflect.BytesKind:
		return types.BytesType
	case protoreflect.MessageKind, protoreflect.GroupKind:
		name := string(fd.Message().FullName())
		if t, ok := types.WellKnownType(name); ok {
			return t
		}
		return a.messageInfo(fd.Message()).typ
	}
	return types.DynType
}

// FromCel implements types.Adapter. Records owned by this adapter return
// their proto.Message; timestamps and durations become their well-known
// messages; everything else converts like the native adapter.
func (a *Adapter) FromCel(v types.Val) any {
	switch t := v.(type) {
	case *types.Object:
		if t.Adapter() == types.Adapter(a) {
			return t.Value()
		}
	case types.Timestamp:
		return timestamppb.New(t.Time)
	case types.Duration:
		return durationpb.New(time.Duration(t))
	}
	return nativeAdapter.FromCel(v)
}

func (a *Adapter) owns(v types.Val) (protoreflect.Message, bool) {
	o, ok := v.(*types.Object)
	if !ok || o.Adapter() != types.Adapter(a) {
		return nil, false
	}
	pm, ok := o.Value().(proto.Message)
	if !ok {
		return nil, false
	}
	return pm.ProtoReflect(), true
}

// Equals implements types.Adapter.
func (a *Adapter) Equals(lhs, rhs types.Val) types.Val {
	lm, lok := a.owns(lhs)
	rm, rok := a.owns(rhs)
	if !lok || !rok {
		return types.DefaultAdapter.Equals(lhs, rhs)
	}
	return types.Bool(proto.Equal(lm.Interface(), rm.Interface()))
}

// Compare implements types.Adapter.
func (*Adapter) Compare(lhs, rhs types.Val) types.Val {
	return types.DefaultAdapter.Compare(lhs, rhs)
}

// AccessByName implements types.Adapter. Selecting a field the message does
// not declare is an error.
func (a *Adapter) AccessByName(id int64, v types.Val, name string) types.Val {
	m, ok := a.owns(v)
	if !ok {
		return types.DefaultAdapter.AccessByName(id, v, name)
	}
	fd, found := a.messageInfo(m.Descriptor()).fields[name]
	if !found {
		return types.FieldNotFound(id, name)
	}
	return a.fieldToCel(m, fd)
}

// AccessByIndex implements types.Adapter.
func (a *Adapter) AccessByIndex(id int64, v types.Val, index types.Val) types.Val {
	if _, ok := a.owns(v); ok {
		return nil
	}
	return types.DefaultAdapter.AccessByIndex(id, v, index)
}

// FieldNames implements types.Adapter.
func (a *Adapter) FieldNames(v types.Val) []string {
	m, ok := a.owns(v)
	if !ok {
		return types.DefaultAdapter.FieldNames(v)
	}
	return a.messageInfo(m.Descriptor()).names
}

// IsSetByName implements types.Adapter. Repeated and map fields are set when
// non-empty; other fields follow protobuf presence rules.
func (a *Adapter) IsSetByName(id int64, v types.Val, name string) types.Val {
	m, ok := a.owns(v)
	if !ok {
		return types.DefaultAdapter.IsSetByName(id, v, name)
	}
	fd, found := a.messageInfo(m.Descriptor()).fields[name]
	if !found {
		return types.FieldNotFound(id, name)
	}
	return types.Bool(m.Has(fd))
}
