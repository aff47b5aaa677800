// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package types

//go:generate mockgen -copyright_file=../.github/license-header.txt -source=provider.go -destination=mocks/mock_provider.go -package=mocks TypeProvider

// TypeProvider resolves type names and declared identifiers, and constructs
// records from message literals.
type TypeProvider interface {
	// Adapter returns the adapter for values produced by this provider.
	Adapter() Adapter
	// FindType returns the type registered under a fully-qualified name.
	FindType(name string) (*Type, bool)
	// FindIdent returns the value of a declared identifier such as an enum
	// constant or a type name.
	FindIdent(id int64, name string) (Val, bool)
	// NewValue builds a record of typeName from literal field values. It
	// returns nil when typeName is not known to the provider.
	NewValue(id int64, typeName string, fields map[string]Val) Val
}

// EmptyProvider knows the built-in type identifiers and the well-known
// wrapper messages. Wrapper literals produce the wrapped primitive.
type EmptyProvider struct{}

var builtinIdents = map[string]Val{
	"int":       IntType,
	"uint":      UintType,
	"double":    DoubleType,
	"bool":      BoolType,
	"string":    StringType,
	"bytes":     BytesType,
	"list":      ListType,
	"map":       MapType,
	"null_type": NullType,
	"type":      TypeType,
}

// Adapter implements TypeProvider.
func (EmptyProvider) Adapter() Adapter { return DefaultAdapter }

// FindType implements TypeProvider.
func (EmptyProvider) FindType(name string) (*Type, bool) {
	return WellKnownType(name)
}

// FindIdent implements TypeProvider.
func (EmptyProvider) FindIdent(_ int64, name string) (Val, bool) {
	v, ok := builtinIdents[name]
	return v, ok
}

// NewValue implements TypeProvider.
func (EmptyProvider) NewValue(id int64, typeName string, fields map[string]Val) Val {
	value := fields["value"]
	if IsErrorOrUnknown(value) {
		return value
	}
	switch typeName {
	case "google.protobuf.BoolValue":
		switch v := value.(type) {
		case nil:
			return False
		case Bool:
			return v
		}
		return TypeMismatch(id, "bool", value)
	case "google.protobuf.Int32Value", "google.protobuf.Int64Value":
		return coerceToInt(id, value)
	case "google.protobuf.UInt32Value", "google.protobuf.UInt64Value":
		return coerceToUint(id, value)
	case "google.protobuf.FloatValue", "google.protobuf.DoubleValue":
		switch v := value.(type) {
		case nil:
			return Double(0)
		case Double:
			return v
		case Int:
			return Double(v)
		case Uint:
			return Double(v)
		}
		return TypeMismatch(id, "number", value)
	case "google.protobuf.StringValue":
		switch v := value.(type) {
		case nil:
			return String("")
		case String:
			return v
		}
		return TypeMismatch(id, "string", value)
	case "google.protobuf.BytesValue":
		switch v := value.(type) {
		case nil:
			return Bytes{}
		case Bytes:
			return v
		}
		return TypeMismatch(id, "bytes", value)
	}
	return nil
}

func coerceToInt(id int64, v Val) Val {
	switch n := v.(type) {
	case nil:
		return Int(0)
	case Int:
		return n
	case Uint:
		if uint64(n) > maxInt64AsUint {
			return Overflow(id, IntType, "conversion")
		}
		return Int(n)
	}
	return TypeMismatch(id, "integer", v)
}

func coerceToUint(id int64, v Val) Val {
	switch n := v.(type) {
	case nil:
		return Uint(0)
	case Uint:
		return n
	case Int:
		if n < 0 {
			return Overflow(id, UintType, "conversion")
		}
		return Uint(n)
	}
	return TypeMismatch(id, "integer", v)
}
