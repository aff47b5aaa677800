// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package native

import (
	"hash/fnv"
	"reflect"
	"slices"
	"strings"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"

	"github.com/stacklok/toolhive-cel/types"
)

var (
	timeType     = reflect.TypeFor[time.Time]()
	durationType = reflect.TypeFor[time.Duration]()
	bytesType    = reflect.TypeFor[[]byte]()
)

// Adapter converts plain Go values: primitives, []byte, time.Time,
// time.Duration, slices, arrays, maps, structs and pointers to them. Structs
// become Objects whose fields are selected by their `cel` or `json` tag, or by
// the Go field name.
//
// Field tables are computed once per struct type and cached. An Adapter is
// safe for concurrent use.
type Adapter struct {
	structs cmap.ConcurrentMap[reflect.Type, *structInfo]
}

// DefaultAdapter is the shared native adapter.
var DefaultAdapter = New()

// New creates an adapter with an empty field cache.
func New() *Adapter {
	return &Adapter{
		structs: cmap.NewWithCustomShardingFunction[reflect.Type, *structInfo](func(t reflect.Type) uint32 {
			h := fnv.New32a()
			_, _ = h.Write([]byte(t.String()))
			return h.Sum32()
		}),
	}
}

type structInfo struct {
	typ    *types.Type
	names  []string
	fields map[string]int
}

func (a *Adapter) structInfo(t reflect.Type) *structInfo {
	if info, ok := a.structs.Get(t); ok {
		return info
	}
	info := &structInfo{typ: types.NewObjectType(structTypeName(t)), fields: map[string]int{}}
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := fieldName(f)
		if name == "" {
			continue
		}
		if _, dup := info.fields[name]; dup {
			continue
		}
		info.fields[name] = i
		info.names = append(info.names, name)
	}
	// Another goroutine may have won the race; both tables are identical.
	a.structs.SetIfAbsent(t, info)
	return info
}

func structTypeName(t reflect.Type) string {
	if t.Name() == "" {
		return "object"
	}
	return t.String()
}

func fieldName(f reflect.StructField) string {
	for _, key := range []string{"cel", "json"} {
		tag, ok := f.Tag.Lookup(key)
		if !ok {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

// ToCel implements types.Adapter.
func (a *Adapter) ToCel(native any) types.Val {
	switch v := native.(type) {
	case nil:
		return types.NullValue
	case types.Val:
		return v
	case bool:
		return types.Bool(v)
	case int:
		return types.Int(v)
	case int32:
		return types.Int(v)
	case int64:
		return types.Int(v)
	case uint:
		return types.Uint(v)
	case uint32:
		return types.Uint(v)
	case uint64:
		return types.Uint(v)
	case float32:
		return types.Double(v)
	case float64:
		return types.Double(v)
	case string:
		return types.String(v)
	case []byte:
		return types.Bytes(v)
	case time.Time:
		return types.TimestampOf(0, v)
	case time.Duration:
		return types.Duration(v)
	}
	return a.reflectToCel(reflect.ValueOf(native))
}

func (a *Adapter) reflectToCel(rv reflect.Value) types.Val {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return types.NullValue
		}
		return a.ToCel(rv.Elem().Interface())
	case reflect.Bool:
		return types.Bool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if rv.Type() == durationType {
			return types.Duration(rv.Int())
		}
		return types.Int(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return types.Uint(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return types.Double(rv.Float())
	case reflect.String:
		return types.String(rv.String())
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return types.Bytes(rv.Bytes())
		}
		return a.listOf(rv)
	case reflect.Array:
		return a.listOf(rv)
	case reflect.Map:
		return a.mapOf(rv)
	case reflect.Struct:
		if rv.Type() == timeType {
			return types.TimestampOf(0, rv.Interface().(time.Time))
		}
		return types.NewObject(a, rv.Interface(), a.structInfo(rv.Type()).typ)
	}
	return types.NewErr(0, types.ErrKindTypeMismatch, "unsupported native value %s", rv.Type())
}

func (a *Adapter) listOf(rv reflect.Value) types.Val {
	elems := make([]any, rv.Len())
	for i := range elems {
		elems[i] = rv.Index(i).Interface()
	}
	return types.NewList(a, elems, a.typeOf(rv.Type().Elem()))
}

func (a *Adapter) mapOf(rv reflect.Value) types.Val {
	type entry struct {
		key   types.Val
		value any
	}
	entries := make([]entry, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		key := a.ToCel(iter.Key().Interface())
		if types.IsErrorOrUnknown(key) {
			return key
		}
		entries = append(entries, entry{key: key, value: iter.Value().Interface()})
	}
	slices.SortFunc(entries, func(x, y entry) int { return compareKeys(x.key, y.key) })

	m := types.NewMap(a, a.typeOf(rv.Type().Key()), a.typeOf(rv.Type().Elem()))
	for _, e := range entries {
		if err := m.Put(0, e.key, e.value); err != nil {
			return err
		}
	}
	return m
}

// compareKeys gives map iteration a deterministic order.
func compareKeys(x, y types.Val) int {
	if c, ok := types.Compare(x, y).(types.Int); ok {
		return int(c)
	}
	return strings.Compare(x.Type().Name(), y.Type().Name())
}

func (a *Adapter) typeOf(t reflect.Type) *types.Type {
	switch t {
	case timeType:
		return types.TimestampType
	case durationType:
		return types.DurationType
	case bytesType:
		return types.BytesType
	}
	switch t.Kind() {
	case reflect.Bool:
		return types.BoolType
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return types.IntType
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return types.UintType
	case reflect.Float32, reflect.Float64:
		return types.DoubleType
	case reflect.String:
		return types.StringType
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 && t.Kind() == reflect.Slice {
			return types.BytesType
		}
		return types.NewListType(a.typeOf(t.Elem()))
	case reflect.Map:
		return types.NewMapType(a.typeOf(t.Key()), a.typeOf(t.Elem()))
	case reflect.Struct:
		return a.structInfo(t).typ
	case reflect.Pointer:
		return a.typeOf(t.Elem())
	}
	return types.DynType
}

// FromCel implements types.Adapter. Lists become []any, maps with only string
// keys become map[string]any and other maps map[any]any.
func (a *Adapter) FromCel(v types.Val) any {
	switch t := v.(type) {
	case types.Null, types.TypedNull:
		return nil
	case types.Bool:
		return bool(t)
	case types.Int:
		return int64(t)
	case types.Uint:
		return uint64(t)
	case types.Double:
		return float64(t)
	case types.String:
		return string(t)
	case types.Bytes:
		return []byte(t)
	case types.Timestamp:
		return t.Time
	case types.Duration:
		return time.Duration(t)
	case *types.List:
		out := make([]any, t.Len())
		for i := range t.Len() {
			out[i] = a.FromCel(t.Get(i))
		}
		return out
	case *types.Map:
		return a.mapFromCel(t)
	case *types.Object:
		if t.Adapter() == types.Adapter(a) {
			return t.Value()
		}
		return t.Adapter().FromCel(t)
	}
	return v
}

func (a *Adapter) mapFromCel(m *types.Map) any {
	allStrings := true
	for _, k := range m.Keys() {
		if _, ok := k.(types.String); !ok {
			allStrings = false
			break
		}
	}
	if allStrings {
		out := make(map[string]any, m.Len())
		for _, k := range m.Keys() {
			v, _ := m.Get(k)
			out[string(k.(types.String))] = a.FromCel(v)
		}
		return out
	}
	out := make(map[any]any, m.Len())
	for _, k := range m.Keys() {
		v, _ := m.Get(k)
		out[a.FromCel(k)] = a.FromCel(v)
	}
	return out
}

func (a *Adapter) owns(v types.Val) (*types.Object, bool) {
	o, ok := v.(*types.Object)
	if !ok || o.Adapter() != types.Adapter(a) {
		return nil, false
	}
	return o, true
}

// Equals implements types.Adapter. Structs are equal when their types match
// and every field is equal under CEL equality.
func (a *Adapter) Equals(lhs, rhs types.Val) types.Val {
	lo, lok := a.owns(lhs)
	ro, rok := a.owns(rhs)
	if !lok || !rok {
		return types.DefaultAdapter.Equals(lhs, rhs)
	}
	if !lo.Type().Equal(ro.Type()) {
		return types.False
	}
	for _, name := range a.FieldNames(lo) {
		l := a.AccessByName(0, lo, name)
		r := a.AccessByName(0, ro, name)
		if merged := types.MergeResults([]types.Val{l, r}); merged != nil {
			return merged
		}
		if eq := a.Equals(l, r); eq != types.True {
			return eq
		}
	}
	return types.True
}

// Compare implements types.Adapter.
func (*Adapter) Compare(lhs, rhs types.Val) types.Val {
	return types.DefaultAdapter.Compare(lhs, rhs)
}

// AccessByName implements types.Adapter.
func (a *Adapter) AccessByName(id int64, v types.Val, name string) types.Val {
	o, ok := a.owns(v)
	if !ok {
		return types.DefaultAdapter.AccessByName(id, v, name)
	}
	rv := reflect.ValueOf(o.Value())
	i, found := a.structInfo(rv.Type()).fields[name]
	if !found {
		return nil
	}
	return a.ToCel(rv.Field(i).Interface())
}

// AccessByIndex implements types.Adapter. Structs have no indexed elements.
func (a *Adapter) AccessByIndex(id int64, v types.Val, index types.Val) types.Val {
	if _, ok := a.owns(v); ok {
		return nil
	}
	return types.DefaultAdapter.AccessByIndex(id, v, index)
}

// FieldNames implements types.Adapter.
func (a *Adapter) FieldNames(v types.Val) []string {
	o, ok := a.owns(v)
	if !ok {
		return types.DefaultAdapter.FieldNames(v)
	}
	return a.structInfo(reflect.TypeOf(o.Value())).names
}

// IsSetByName implements types.Adapter. A struct field is set when it holds
// a non-zero value.
func (a *Adapter) IsSetByName(id int64, v types.Val, name string) types.Val {
	o, ok := a.owns(v)
	if !ok {
		return types.DefaultAdapter.IsSetByName(id, v, name)
	}
	rv := reflect.ValueOf(o.Value())
	i, found := a.structInfo(rv.Type()).fields[name]
	if !found {
		return types.FieldNotFound(id, name)
	}
	return types.Bool(!rv.Field(i).IsZero())
}
