// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package types

// Adapter bridges a host representation of data and the Val union.
//
// Containers (List, Map, Object) keep a reference to the adapter that owns
// their elements, so values from different representations can be mixed in a
// single evaluation. Conversion between representations happens only through
// ToCel and FromCel.
//
// Implementations must be safe for concurrent use.
type Adapter interface {
	// ToCel converts a native value into a Val. Vals pass through unchanged.
	ToCel(native any) Val
	// FromCel converts a Val back into the adapter's native representation.
	FromCel(v Val) any
	// Equals reports CEL equality. It returns a Bool, or an *Err or *Unknown
	// raised while converting container elements.
	Equals(lhs, rhs Val) Val
	// Compare returns Int(-1), Int(0) or Int(1), or nil when the pair is not
	// ordered.
	Compare(lhs, rhs Val) Val
	// AccessByName selects a field or string map key. It returns nil when the
	// name is absent.
	AccessByName(id int64, v Val, name string) Val
	// AccessByIndex selects a list element or map entry. It returns nil when
	// the index or key is absent.
	AccessByIndex(id int64, v Val, index Val) Val
	// FieldNames enumerates the field names of a record or the string keys of
	// a map.
	FieldNames(v Val) []string
	// IsSetByName tests field presence. It returns a Bool, or an *Err.
	IsSetByName(id int64, v Val, name string) Val
}

// List is an ordered sequence of native elements owned by an adapter.
type List struct {
	adapter Adapter
	elems   []any
	typ     *Type
}

// NewList creates a list of native elements owned by adapter.
func NewList(adapter Adapter, elems []any, elemType *Type) *List {
	if elemType == nil {
		elemType = DynType
	}
	return &List{adapter: adapter, elems: elems, typ: NewListType(elemType)}
}

// NewValList creates a list whose elements are already Vals.
func NewValList(elems []Val, elemType *Type) *List {
	natives := make([]any, len(elems))
	for i, e := range elems {
		natives[i] = e
	}
	return NewList(DefaultAdapter, natives, elemType)
}

// EmptyList is the list literal [].
var EmptyList = NewList(DefaultAdapter, nil, DynType)

// Type implements Val.
func (l *List) Type() *Type { return l.typ }

func (*List) isVal() {}

// Adapter returns the adapter that owns the elements.
func (l *List) Adapter() Adapter { return l.adapter }

// Len returns the number of elements.
func (l *List) Len() int { return len(l.elems) }

// Get returns element i converted through the owning adapter.
func (l *List) Get(i int) Val { return l.adapter.ToCel(l.elems[i]) }

// Natives returns the native elements. The slice must not be modified.
func (l *List) Natives() []any { return l.elems }

// Vals converts every element through the owning adapter.
func (l *List) Vals() []Val {
	out := make([]Val, len(l.elems))
	for i := range l.elems {
		out[i] = l.Get(i)
	}
	return out
}

// Map is a key/value mapping whose keys are unique under CEL equality: 1,
// 1u and 1.0 address the same entry. Values are native to the owning adapter.
//
// A Map is populated with Put while it is being built and must not be
// modified once it has been handed to evaluation.
type Map struct {
	adapter Adapter
	typ     *Type
	keys    []Val
	values  []any
	index   map[mapKey]int
}

// NewMap creates an empty map owned by adapter.
func NewMap(adapter Adapter, keyType, valueType *Type) *Map {
	if keyType == nil {
		keyType = DynType
	}
	if valueType == nil {
		valueType = DynType
	}
	return &Map{
		adapter: adapter,
		typ:     NewMapType(keyType, valueType),
		index:   make(map[mapKey]int),
	}
}

// EmptyMap is the map literal {}.
var EmptyMap = NewMap(DefaultAdapter, DynType, DynType)

// Type implements Val.
func (m *Map) Type() *Type { return m.typ }

func (*Map) isVal() {}

// Adapter returns the adapter that owns the values.
func (m *Map) Adapter() Adapter { return m.adapter }

// Put adds an entry. It fails with an unsupported-key error for keys that are
// not bool, int, uint, string or integral double, and with a key conflict when
// an equal key is already present.
func (m *Map) Put(id int64, key Val, value any) *Err {
	k, ok := toMapKey(key)
	if !ok {
		return UnsupportedKeyType(id)
	}
	if _, dup := m.index[k]; dup {
		return MapKeyConflict(id, key)
	}
	m.index[k] = len(m.keys)
	m.keys = append(m.keys, key)
	m.values = append(m.values, value)
	return nil
}

// Len returns the number of entries.
func (m *Map) Len() int { return len(m.keys) }

// Keys returns the keys in insertion order. The slice must not be modified.
func (m *Map) Keys() []Val { return m.keys }

// Has reports whether key is present.
func (m *Map) Has(key Val) bool {
	k, ok := toMapKey(key)
	if !ok {
		return false
	}
	_, found := m.index[k]
	return found
}

// Get returns the value stored under key converted through the owning
// adapter.
func (m *Map) Get(key Val) (Val, bool) {
	k, ok := toMapKey(key)
	if !ok {
		return nil, false
	}
	i, found := m.index[k]
	if !found {
		return nil, false
	}
	return m.adapter.ToCel(m.values[i]), true
}

// Object is a host record owned by an adapter.
type Object struct {
	adapter Adapter
	value   any
	typ     *Type
}

// NewObject wraps a host record.
func NewObject(adapter Adapter, value any, typ *Type) *Object {
	return &Object{adapter: adapter, value: value, typ: typ}
}

// Type implements Val.
func (o *Object) Type() *Type { return o.typ }

func (*Object) isVal() {}

// Adapter returns the adapter that owns the record.
func (o *Object) Adapter() Adapter { return o.adapter }

// Value returns the host record.
func (o *Object) Value() any { return o.value }

type mapKeyKind uint8

const (
	keyNum mapKeyKind = iota
	keyLargeUint
	keyBool
	keyString
)

type mapKey struct {
	kind mapKeyKind
	n    uint64
	s    string
}

// toMapKey normalizes numeric keys onto one number line so that equal
// int, uint and double keys collide.
func toMapKey(v Val) (mapKey, bool) {
	switch k := v.(type) {
	case Int:
		return mapKey{kind: keyNum, n: uint64(k)}, true
	case Uint:
		if uint64(k) <= maxInt64AsUint {
			return mapKey{kind: keyNum, n: uint64(k)}, true
		}
		return mapKey{kind: keyLargeUint, n: uint64(k)}, true
	case Double:
		if i, ok := doubleToInt64Exact(float64(k)); ok {
			return mapKey{kind: keyNum, n: uint64(i)}, true
		}
		if u, ok := doubleToUint64Exact(float64(k)); ok {
			return mapKey{kind: keyLargeUint, n: u}, true
		}
		return mapKey{}, false
	case Bool:
		if k {
			return mapKey{kind: keyBool, n: 1}, true
		}
		return mapKey{kind: keyBool}, true
	case String:
		return mapKey{kind: keyString, s: string(k)}, true
	}
	return mapKey{}, false
}
