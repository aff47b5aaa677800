// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package types

import "strings"

// Kind classifies a Type.
type Kind int

// Type kinds.
const (
	KindDyn Kind = iota
	KindNull
	KindBool
	KindInt
	KindUint
	KindDouble
	KindString
	KindBytes
	KindTimestamp
	KindDuration
	KindList
	KindMap
	KindType
	KindObject
	KindWrapper
	KindError
	KindUnknown
)

// Type is a CEL type tag. Types are values too.
//
// Two types are equal when their names match, and identical when their full
// names match: list(int) equals list(string) but is not identical to it.
type Type struct {
	kind     Kind
	name     string
	fullName string
	params   []*Type
}

// Predefined types.
var (
	DynType       = &Type{kind: KindDyn, name: "dyn"}
	NullType      = &Type{kind: KindNull, name: "null_type"}
	BoolType      = &Type{kind: KindBool, name: "bool"}
	IntType       = &Type{kind: KindInt, name: "int"}
	UintType      = &Type{kind: KindUint, name: "uint"}
	DoubleType    = &Type{kind: KindDouble, name: "double"}
	StringType    = &Type{kind: KindString, name: "string"}
	BytesType     = &Type{kind: KindBytes, name: "bytes"}
	TimestampType = &Type{kind: KindTimestamp, name: "google.protobuf.Timestamp"}
	DurationType  = &Type{kind: KindDuration, name: "google.protobuf.Duration"}
	TypeType      = &Type{kind: KindType, name: "type"}
	ErrorType     = &Type{kind: KindError, name: "error"}
	UnknownType   = &Type{kind: KindUnknown, name: "unknown"}

	ListType       = NewListType(DynType)
	MapType        = NewMapType(DynType, DynType)
	JSONObjectType = NewMapType(StringType, DynType)

	BoolWrapperType   = NewWrapperType(BoolType)
	IntWrapperType    = NewWrapperType(IntType)
	UintWrapperType   = NewWrapperType(UintType)
	DoubleWrapperType = NewWrapperType(DoubleType)
	StringWrapperType = NewWrapperType(StringType)
	BytesWrapperType  = NewWrapperType(BytesType)
)

// NewListType returns list(elem).
func NewListType(elem *Type) *Type {
	return &Type{
		kind:     KindList,
		name:     "list",
		fullName: "list(" + elem.FullName() + ")",
		params:   []*Type{elem},
	}
}

// NewMapType returns map(key, value).
func NewMapType(key, value *Type) *Type {
	return &Type{
		kind:     KindMap,
		name:     "map",
		fullName: "map(" + key.FullName() + ", " + value.FullName() + ")",
		params:   []*Type{key, value},
	}
}

// NewObjectType returns the type of a structured record with the given
// fully-qualified name.
func NewObjectType(name string) *Type {
	return &Type{kind: KindObject, name: name}
}

// NewWrapperType returns wrapper(inner) for a well-known wrapper message.
func NewWrapperType(inner *Type) *Type {
	return &Type{
		kind:     KindWrapper,
		name:     "wrapper(" + inner.name + ")",
		fullName: "wrapper(" + inner.FullName() + ")",
		params:   []*Type{inner},
	}
}

// NewTypeType returns type(t), the type of the type value t.
func NewTypeType(t *Type) *Type {
	return &Type{
		kind:     KindType,
		name:     "type",
		fullName: "type(" + t.FullName() + ")",
		params:   []*Type{t},
	}
}

// Kind returns the type kind.
func (t *Type) Kind() Kind { return t.kind }

// Name returns the unparameterized type name.
func (t *Type) Name() string { return t.name }

// FullName returns the name including type parameters.
func (t *Type) FullName() string {
	if t.fullName == "" {
		return t.name
	}
	return t.fullName
}

// ElemType returns the element type of a list, or dyn.
func (t *Type) ElemType() *Type {
	if t.kind == KindList && len(t.params) == 1 {
		return t.params[0]
	}
	return DynType
}

// KeyType returns the key type of a map, or dyn.
func (t *Type) KeyType() *Type {
	if t.kind == KindMap && len(t.params) == 2 {
		return t.params[0]
	}
	return DynType
}

// ValueType returns the value type of a map, or dyn.
func (t *Type) ValueType() *Type {
	if t.kind == KindMap && len(t.params) == 2 {
		return t.params[1]
	}
	return DynType
}

// Equal reports whether both types share a name.
func (t *Type) Equal(other *Type) bool {
	if t == other {
		return true
	}
	if other == nil {
		return false
	}
	return t.name == other.name
}

// Identical reports whether both types share a full name.
func (t *Type) Identical(other *Type) bool {
	if t == other {
		return true
	}
	if other == nil {
		return false
	}
	return t.name == other.name && t.FullName() == other.FullName()
}

// String implements fmt.Stringer.
func (t *Type) String() string { return t.FullName() }

// Type implements Val. The type of a type value t is type(t).
func (t *Type) Type() *Type { return NewTypeType(t) }

func (*Type) isVal() {}

func (t *Type) compare(other *Type) int {
	return strings.Compare(t.name, other.name)
}

// wellKnownTypes maps protobuf well-known message names to CEL types.
var wellKnownTypes = map[string]*Type{
	"google.protobuf.Value":       DynType,
	"google.protobuf.Struct":      JSONObjectType,
	"google.protobuf.ListValue":   ListType,
	"google.protobuf.NullValue":   NullType,
	"google.protobuf.BoolValue":   BoolWrapperType,
	"google.protobuf.UInt32Value": UintWrapperType,
	"google.protobuf.UInt64Value": UintWrapperType,
	"google.protobuf.Int32Value":  IntWrapperType,
	"google.protobuf.Int64Value":  IntWrapperType,
	"google.protobuf.FloatValue":  DoubleWrapperType,
	"google.protobuf.DoubleValue": DoubleWrapperType,
	"google.protobuf.StringValue": StringWrapperType,
	"google.protobuf.BytesValue":  BytesWrapperType,
	"google.protobuf.Timestamp":   TimestampType,
	"google.protobuf.Duration":    DurationType,
	"google.protobuf.Any":         DynType,
}

// WellKnownType returns the CEL type for a protobuf well-known message name.
func WellKnownType(name string) (*Type, bool) {
	t, ok := wellKnownTypes[name]
	return t, ok
}
