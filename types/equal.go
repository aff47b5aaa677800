// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"fmt"
	"strings"
)

// CelAdapter is the identity adapter: its native representation is Val
// itself. It implements CEL equality, ordering and access for every value
// kind and delegates to the owning adapter for Objects.
type CelAdapter struct{}

// DefaultAdapter is the shared identity adapter.
var DefaultAdapter Adapter = CelAdapter{}

// ToCel implements Adapter. A nil native value maps to null.
func (CelAdapter) ToCel(native any) Val {
	switch v := native.(type) {
	case Val:
		return v
	case nil:
		return NullValue
	}
	return NewErr(0, ErrKindTypeMismatch, "unsupported native value %T", native)
}

// FromCel implements Adapter.
func (CelAdapter) FromCel(v Val) any { return v }

// Equals implements Adapter.
func (a CelAdapter) Equals(lhs, rhs Val) Val {
	switch l := lhs.(type) {
	case Null:
		switch rhs.(type) {
		case Null, TypedNull:
			return True
		}
		return False
	case TypedNull:
		switch r := rhs.(type) {
		case Null:
			return True
		case TypedNull:
			return Bool(l.TypeName == r.TypeName)
		}
		return False
	case Int, Uint, Double:
		c, ok := compareNumbers(lhs, rhs)
		return Bool(ok && c == 0)
	case Bool:
		r, ok := rhs.(Bool)
		return Bool(ok && l == r)
	case String:
		r, ok := rhs.(String)
		return Bool(ok && l == r)
	case Bytes:
		r, ok := rhs.(Bytes)
		return Bool(ok && compareBytes(l, r) == 0)
	case Timestamp:
		r, ok := rhs.(Timestamp)
		return Bool(ok && l.Equal(r.Time))
	case Duration:
		r, ok := rhs.(Duration)
		return Bool(ok && l == r)
	case *Type:
		r, ok := rhs.(*Type)
		return Bool(ok && l.Equal(r))
	case *List:
		if r, ok := rhs.(*List); ok {
			return a.equalsList(l, r)
		}
		return False
	case *Map:
		if r, ok := rhs.(*Map); ok {
			return a.equalsMap(l, r)
		}
		return False
	case *Object:
		if r, ok := rhs.(*Object); ok {
			return a.equalsObject(l, r)
		}
		return False
	case *Err, *Unknown:
		return lhs
	}
	return False
}

func (a CelAdapter) equalsList(lhs, rhs *List) Val {
	if lhs == rhs {
		return True
	}
	if lhs.Len() != rhs.Len() {
		return False
	}
	for i := range lhs.Len() {
		eq := a.equalsElem(lhs.Get(i), rhs.Get(i))
		if eq != True {
			return eq
		}
	}
	return True
}

func (a CelAdapter) equalsMap(lhs, rhs *Map) Val {
	if lhs == rhs {
		return True
	}
	if lhs.Len() != rhs.Len() {
		return False
	}
	for _, k := range lhs.Keys() {
		rv, ok := rhs.Get(k)
		if !ok {
			return False
		}
		lv, _ := lhs.Get(k)
		eq := a.equalsElem(lv, rv)
		if eq != True {
			return eq
		}
	}
	return True
}

func (a CelAdapter) equalsObject(lhs, rhs *Object) Val {
	if !lhs.Type().Equal(rhs.Type()) {
		return False
	}
	if lhs.adapter == rhs.adapter {
		if _, self := lhs.adapter.(CelAdapter); !self {
			return lhs.adapter.Equals(lhs, rhs)
		}
	}
	for _, name := range lhs.adapter.FieldNames(lhs) {
		lv := lhs.adapter.AccessByName(0, lhs, name)
		rv := rhs.adapter.AccessByName(0, rhs, name)
		if lv == nil || rv == nil {
			if lv == nil && rv == nil {
				continue
			}
			return False
		}
		eq := a.equalsElem(lv, rv)
		if eq != True {
			return eq
		}
	}
	return True
}

// equalsElem propagates errors raised while converting container elements.
func (a CelAdapter) equalsElem(lhs, rhs Val) Val {
	if merged := MergeResults([]Val{lhs, rhs}); merged != nil {
		return merged
	}
	return a.Equals(lhs, rhs)
}

// Compare implements Adapter.
func (CelAdapter) Compare(lhs, rhs Val) Val {
	if IsNumber(lhs) {
		if c, ok := compareNumbers(lhs, rhs); ok {
			return Int(c)
		}
		return nil
	}
	switch l := lhs.(type) {
	case Bool:
		if r, ok := rhs.(Bool); ok {
			return Int(cmp3(!bool(l) && bool(r), bool(l) && !bool(r)))
		}
	case String:
		if r, ok := rhs.(String); ok {
			return Int(strings.Compare(string(l), string(r)))
		}
	case Bytes:
		if r, ok := rhs.(Bytes); ok {
			return Int(compareBytes(l, r))
		}
	case Timestamp:
		if r, ok := rhs.(Timestamp); ok {
			return Int(l.Compare(r.Time))
		}
	case Duration:
		if r, ok := rhs.(Duration); ok {
			return Int(cmp3(l < r, l > r))
		}
	case *Type:
		if r, ok := rhs.(*Type); ok {
			return Int(l.compare(r))
		}
	}
	return nil
}

// AccessByName implements Adapter.
func (a CelAdapter) AccessByName(id int64, v Val, name string) Val {
	switch t := v.(type) {
	case *Map:
		if r, ok := t.Get(String(name)); ok {
			return r
		}
		return nil
	case *Object:
		if _, self := t.adapter.(CelAdapter); self {
			return nil
		}
		return t.adapter.AccessByName(id, v, name)
	case TypedNull:
		if t.Zero == nil {
			return nil
		}
		return a.AccessByName(id, t.Zero, name)
	case *Err, *Unknown:
		return v
	}
	return NameAccessNotSupported(id, v)
}

// AccessByIndex implements Adapter.
func (a CelAdapter) AccessByIndex(id int64, v Val, index Val) Val {
	switch t := v.(type) {
	case *List:
		i, err := listIndex(id, index)
		if err != nil {
			return err
		}
		if i < 0 || i >= int64(t.Len()) {
			return nil
		}
		return t.Get(int(i))
	case *Map:
		if r, ok := t.Get(index); ok {
			return r
		}
		return nil
	case *Object:
		if _, self := t.adapter.(CelAdapter); self {
			return nil
		}
		return t.adapter.AccessByIndex(id, v, index)
	case TypedNull:
		if t.Zero == nil {
			return nil
		}
		return a.AccessByIndex(id, t.Zero, index)
	case *Err, *Unknown:
		return v
	}
	return IndexAccessNotSupported(id, v)
}

func listIndex(id int64, index Val) (int64, *Err) {
	switch i := index.(type) {
	case Int:
		return int64(i), nil
	case Uint:
		if uint64(i) > maxInt64AsUint {
			return -1, nil
		}
		return int64(i), nil
	case Double:
		if n, ok := doubleToInt64Exact(float64(i)); ok {
			return n, nil
		}
	}
	return 0, UnsupportedKeyType(id)
}

// FieldNames implements Adapter.
func (CelAdapter) FieldNames(v Val) []string {
	switch t := v.(type) {
	case *Map:
		var names []string
		for _, k := range t.Keys() {
			if s, ok := k.(String); ok {
				names = append(names, string(s))
			}
		}
		return names
	case *Object:
		if _, self := t.adapter.(CelAdapter); self {
			return nil
		}
		return t.adapter.FieldNames(v)
	}
	return nil
}

// IsSetByName implements Adapter.
func (a CelAdapter) IsSetByName(id int64, v Val, name string) Val {
	switch t := v.(type) {
	case *Map:
		return Bool(t.Has(String(name)))
	case *Object:
		if _, self := t.adapter.(CelAdapter); self {
			return False
		}
		return t.adapter.IsSetByName(id, v, name)
	case TypedNull:
		if t.Zero == nil {
			return False
		}
		return a.IsSetByName(id, t.Zero, name)
	case *Err, *Unknown:
		return v
	}
	return NameAccessNotSupported(id, v)
}

// Equal reports CEL equality of two values using the identity adapter.
func Equal(lhs, rhs Val) Val {
	return DefaultAdapter.Equals(lhs, rhs)
}

// Compare orders two values using the identity adapter. It returns nil for
// unordered pairs.
func Compare(lhs, rhs Val) Val {
	return DefaultAdapter.Compare(lhs, rhs)
}

// String implements fmt.Stringer for debugging.
func (l *List) String() string {
	parts := make([]string, l.Len())
	for i := range l.Len() {
		parts[i] = debugString(l.Get(i))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// String implements fmt.Stringer for debugging.
func (m *Map) String() string {
	parts := make([]string, 0, m.Len())
	for _, k := range m.Keys() {
		v, _ := m.Get(k)
		parts = append(parts, debugString(k)+": "+debugString(v))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func debugString(v Val) string {
	switch t := v.(type) {
	case String:
		return fmt.Sprintf("%q", string(t))
	case *List:
		return t.String()
	case *Map:
		return t.String()
	}
	return Format(v)
}
