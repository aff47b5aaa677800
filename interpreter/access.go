// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package interpreter

import (
	"github.com/stacklok/toolhive-cel/types"
)

// Access selects a field, key or element from a resolved value.
type Access interface {
	// ID returns the id of the node that performs the access.
	ID() int64
	// Optional reports whether a missing field or key is tolerated.
	Optional() bool
	// Access applies the access to obj. It returns nil when the field or key
	// is absent and the access is optional; a required access that misses
	// returns an *types.Err.
	Access(vars Activation, obj types.Val) types.Val
	// IsPresent reports whether the field or key is set on obj, as a Bool, or
	// returns an *types.Err or *types.Unknown.
	IsPresent(vars Activation, obj types.Val) types.Val
}

// newAccess builds the access for a constant key. String keys select fields
// or map entries by name, numeric and bool keys select list elements or map
// entries by value. Any other key fails when it is applied.
func newAccess(id int64, key types.Val, optional bool) Access {
	switch k := key.(type) {
	case types.String:
		return &stringAccess{id: id, name: string(k), optional: optional}
	case types.Int:
		return &intAccess{indexAccess{id: id, key: k, optional: optional}}
	case types.Uint:
		return &uintAccess{indexAccess{id: id, key: k, optional: optional}}
	case types.Double, types.Bool:
		return &numAccess{indexAccess{id: id, key: k, optional: optional}}
	case *types.Err, *types.Unknown:
		return &errorAccess{id: id, result: k, optional: optional}
	}
	return &errorAccess{id: id, result: types.UnsupportedKeyType(id), optional: optional}
}

type stringAccess struct {
	id       int64
	name     string
	optional bool
}

func (a *stringAccess) ID() int64      { return a.id }
func (a *stringAccess) Optional() bool { return a.optional }

func (a *stringAccess) Access(_ Activation, obj types.Val) types.Val {
	v := adapterOf(obj).AccessByName(a.id, obj, a.name)
	if v != nil {
		return v
	}
	if a.optional {
		return nil
	}
	if _, isMap := obj.(*types.Map); isMap {
		return types.NewErr(a.id, types.ErrKindNotFound, "no such key: %s", a.name)
	}
	return types.FieldNotFound(a.id, a.name)
}

func (a *stringAccess) IsPresent(_ Activation, obj types.Val) types.Val {
	return adapterOf(obj).IsSetByName(a.id, obj, a.name)
}

// indexAccess is the shared implementation of the numeric and bool key
// accesses.
type indexAccess struct {
	id       int64
	key      types.Val
	optional bool
}

func (a *indexAccess) ID() int64      { return a.id }
func (a *indexAccess) Optional() bool { return a.optional }

func (a *indexAccess) Access(_ Activation, obj types.Val) types.Val {
	v := adapterOf(obj).AccessByIndex(a.id, obj, a.key)
	if v != nil {
		return v
	}
	if a.optional {
		return nil
	}
	if l, isList := obj.(*types.List); isList {
		return types.IndexOutOfBounds(a.id, indexOf(a.key), l.Len())
	}
	return types.NewErr(a.id, types.ErrKindNotFound, "no such key: %s", types.Format(a.key))
}

func (a *indexAccess) IsPresent(_ Activation, obj types.Val) types.Val {
	v := adapterOf(obj).AccessByIndex(a.id, obj, a.key)
	switch v.(type) {
	case nil:
		return types.False
	case *types.Err, *types.Unknown:
		return v
	}
	return types.True
}

func indexOf(key types.Val) int64 {
	switch k := key.(type) {
	case types.Int:
		return int64(k)
	case types.Uint:
		return int64(k)
	case types.Double:
		return int64(k)
	}
	return -1
}

// intAccess indexes with an int key.
type intAccess struct{ indexAccess }

// uintAccess indexes with a uint key.
type uintAccess struct{ indexAccess }

// numAccess indexes with a double or bool key. Doubles must be integral to
// select a list element.
type numAccess struct{ indexAccess }

// evalAccess computes its key on every evaluation and delegates to the
// constant access for that key.
type evalAccess struct {
	id       int64
	key      Interpretable
	optional bool
}

func (a *evalAccess) ID() int64      { return a.id }
func (a *evalAccess) Optional() bool { return a.optional }

func (a *evalAccess) resolve(vars Activation) Access {
	return newAccess(a.id, a.key.Eval(vars), a.optional)
}

func (a *evalAccess) Access(vars Activation, obj types.Val) types.Val {
	return a.resolve(vars).Access(vars, obj)
}

func (a *evalAccess) IsPresent(vars Activation, obj types.Val) types.Val {
	return a.resolve(vars).IsPresent(vars, obj)
}

// errorAccess reports a key that cannot be used for access, or propagates
// the error or unknown the key evaluated to.
type errorAccess struct {
	id       int64
	result   types.Val
	optional bool
}

func (a *errorAccess) ID() int64      { return a.id }
func (a *errorAccess) Optional() bool { return a.optional }

func (a *errorAccess) Access(Activation, types.Val) types.Val    { return a.result }
func (a *errorAccess) IsPresent(Activation, types.Val) types.Val { return a.result }
