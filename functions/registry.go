// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package functions

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// ErrFunctionExists is returned when a function name is registered twice in
// the same registry.
var ErrFunctionExists = errors.New("function already registered")

// Registry maps function names to their generic implementation and overload
// ids to the implementation specialised for them. Lookups that miss fall
// through to the parent registry.
//
// A Registry is populated before planning and is read-only afterwards.
type Registry struct {
	functions map[string]*Func
	overloads map[string]*Func
	parent    *Registry
}

// NewRegistry creates an empty registry. parent may be nil.
func NewRegistry(parent *Registry) *Registry {
	return &Registry{
		functions: make(map[string]*Func),
		overloads: make(map[string]*Func),
		parent:    parent,
	}
}

// Add registers fn under its name and each of its overload ids. The optional
// specialised funcs are registered under their overload ids only.
func (r *Registry) Add(fn *Func, specialised ...*Func) error {
	if _, exists := r.functions[fn.name]; exists {
		return fmt.Errorf("%w: %s", ErrFunctionExists, fn.name)
	}
	r.functions[fn.name] = fn
	for _, id := range fn.overloads {
		r.overloads[id] = fn
	}
	for _, s := range specialised {
		for _, id := range s.overloads {
			r.overloads[id] = s
		}
	}
	return nil
}

// Find implements Dispatcher.
func (r *Registry) Find(name string) CallDispatch {
	if fn, ok := r.lookup(name); ok {
		return fn
	}
	return nil
}

// lookup returns the generic implementation registered under name.
func (r *Registry) lookup(name string) (*Func, bool) {
	for reg := r; reg != nil; reg = reg.parent {
		if fn, ok := reg.functions[name]; ok {
			return fn, true
		}
	}
	return nil, false
}

// FindOverload returns the implementation of a single overload id such as
// "add_int64".
func (r *Registry) FindOverload(id string) (*Func, bool) {
	for reg := r; reg != nil; reg = reg.parent {
		if fn, ok := reg.overloads[id]; ok {
			return fn, true
		}
	}
	return nil, false
}

// Names returns the sorted function names registered directly in r.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.functions))
}

func (r *Registry) mustAdd(fn *Func, specialised ...*Func) {
	if err := r.Add(fn, specialised...); err != nil {
		panic(err)
	}
}
