// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package interpreter

import (
	"slices"

	"github.com/stacklok/toolhive-cel/types"
	"github.com/stacklok/toolhive-cel/types/native"
)

// Activation binds variable names to values for one evaluation.
type Activation interface {
	// ResolveName returns the value bound to name and whether it is bound.
	ResolveName(name string) (types.Val, bool)
}

type emptyActivation struct{}

func (emptyActivation) ResolveName(string) (types.Val, bool) { return nil, false }

// EmptyActivation returns an activation with no bindings.
func EmptyActivation() Activation { return emptyActivation{} }

type mapActivation struct {
	bindings map[string]any
	adapter  types.Adapter
}

// NewActivation binds the entries of bindings. Values are converted with
// adapter when they are resolved; a nil adapter selects the native adapter.
//
// A binding of type func() any is called each time the name is resolved.
func NewActivation(bindings map[string]any, adapter types.Adapter) Activation {
	if adapter == nil {
		adapter = native.DefaultAdapter
	}
	return &mapActivation{bindings: bindings, adapter: adapter}
}

func (a *mapActivation) ResolveName(name string) (types.Val, bool) {
	v, ok := a.bindings[name]
	if !ok {
		return nil, false
	}
	if lazy, isFunc := v.(func() any); isFunc {
		v = lazy()
	}
	return a.adapter.ToCel(v), true
}

type recordActivation struct {
	record types.Val
}

// NewRecordActivation exposes the fields of a record, such as a message or a
// struct, as top-level variables.
func NewRecordActivation(record types.Val) Activation {
	return &recordActivation{record: record}
}

func (a *recordActivation) ResolveName(name string) (types.Val, bool) {
	v := adapterOf(a.record).AccessByName(0, a.record, name)
	if v == nil || types.IsError(v) {
		return nil, false
	}
	return v, true
}

type hierarchicalActivation struct {
	parent Activation
	child  Activation
}

// NewHierarchicalActivation resolves names in child first and then in parent.
func NewHierarchicalActivation(parent, child Activation) Activation {
	return &hierarchicalActivation{parent: parent, child: child}
}

func (a *hierarchicalActivation) ResolveName(name string) (types.Val, bool) {
	if v, ok := a.child.ResolveName(name); ok {
		return v, ok
	}
	return a.parent.ResolveName(name)
}

type partialActivation struct {
	Activation
	unknowns []string
}

// NewPartialActivation marks the given names as unknown. Attributes rooted at
// an unknown name evaluate to an *types.Unknown carrying the referencing node
// id, which lets a caller evaluate an expression before every input is
// available.
func NewPartialActivation(base Activation, unknowns ...string) Activation {
	return &partialActivation{Activation: base, unknowns: unknowns}
}

func (a *partialActivation) ResolveName(name string) (types.Val, bool) {
	if slices.Contains(a.unknowns, name) {
		return types.NewUnknown(), true
	}
	return a.Activation.ResolveName(name)
}

// varActivation binds a single comprehension variable. The value is rebound
// in place while folding, so a varActivation never outlives one evaluation.
type varActivation struct {
	parent Activation
	name   string
	value  types.Val
}

func (a *varActivation) ResolveName(name string) (types.Val, bool) {
	if name == a.name {
		return a.value, true
	}
	return a.parent.ResolveName(name)
}

func adapterOf(v types.Val) types.Adapter {
	switch t := v.(type) {
	case *types.List:
		return t.Adapter()
	case *types.Map:
		return t.Adapter()
	case *types.Object:
		return t.Adapter()
	}
	return types.DefaultAdapter
}
