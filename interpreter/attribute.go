// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package interpreter

import (
	"github.com/google/cel-go/common/operators"

	"github.com/stacklok/toolhive-cel/types"
)

// Attribute is a reference to a value location: a variable, or a field or
// element path under a variable or a computed value. Accesses are collected
// while planning; once a plan is returned its attributes are never modified.
type Attribute interface {
	// ID returns the id of the node that produced the attribute.
	ID() int64
	// Resolve returns the referenced value with every access applied.
	//
	// found is false when no variable or declared identifier matches the
	// root of the attribute. A nil value with found set means an optional
	// access missed.
	Resolve(vars Activation) (v types.Val, found bool)

	addAccess(a Access)
}

// NamespacedAttribute is an attribute rooted at a variable name. Its
// candidate names are the fully-qualified spellings of the name in the
// expression's namespace, most specific first.
type NamespacedAttribute interface {
	Attribute
	// CandidateNames returns the names tried during resolution.
	CandidateNames() []string
	// Accesses returns the accesses applied after the root resolves.
	Accesses() []Access
}

// applyAccesses walks accesses from obj. It stops at the first error,
// unknown or optional miss.
func applyAccesses(vars Activation, obj types.Val, accesses []Access) types.Val {
	for _, acc := range accesses {
		if types.IsErrorOrUnknown(obj) {
			return obj
		}
		obj = acc.Access(vars, obj)
		if obj == nil {
			return nil
		}
	}
	return obj
}

type absoluteAttribute struct {
	id         int64
	candidates []string
	accesses   []Access
	provider   types.TypeProvider
}

func (a *absoluteAttribute) ID() int64                { return a.id }
func (a *absoluteAttribute) CandidateNames() []string { return a.candidates }
func (a *absoluteAttribute) Accesses() []Access       { return a.accesses }
func (a *absoluteAttribute) addAccess(acc Access)     { a.accesses = append(a.accesses, acc) }

// Resolve tries each candidate against the activation. Declared identifiers
// from the type provider are only consulted for a bare name, since provider
// identifiers such as enum constants and type names have no fields.
func (a *absoluteAttribute) Resolve(vars Activation) (types.Val, bool) {
	for _, name := range a.candidates {
		v, ok := vars.ResolveName(name)
		if !ok {
			continue
		}
		if u, isUnknown := v.(*types.Unknown); isUnknown && len(u.IDs) == 0 {
			return types.NewUnknown(a.id), true
		}
		return applyAccesses(vars, v, a.accesses), true
	}
	if len(a.accesses) == 0 {
		for _, name := range a.candidates {
			if v, ok := a.provider.FindIdent(a.id, name); ok {
				return v, true
			}
		}
	}
	return nil, false
}

// maybeAttribute is an identifier whose meaning depends on what is bound:
// a.b.c may be the variable "a.b.c", the field c of the variable "a.b", or
// the path b.c under the variable "a". Each selected field adds a more
// qualified absolute interpretation ahead of the existing ones.
type maybeAttribute struct {
	id    int64
	attrs []*absoluteAttribute
}

func (a *maybeAttribute) ID() int64 { return a.id }

// CandidateNames returns the candidates of the least qualified
// interpretation, which is the variable the identifier names.
func (a *maybeAttribute) CandidateNames() []string {
	return a.attrs[len(a.attrs)-1].candidates
}

// Accesses returns the accesses of the least qualified interpretation.
func (a *maybeAttribute) Accesses() []Access {
	return a.attrs[len(a.attrs)-1].accesses
}

func (a *maybeAttribute) addAccess(acc Access) {
	s, isField := acc.(*stringAccess)
	var augmented []string
	if isField && !s.optional {
		for _, attr := range a.attrs {
			if len(attr.accesses) != 0 {
				continue
			}
			for _, name := range attr.candidates {
				augmented = append(augmented, name+"."+s.name)
			}
		}
	}
	for _, attr := range a.attrs {
		attr.addAccess(acc)
	}
	if len(augmented) > 0 {
		head := &absoluteAttribute{id: a.id, candidates: augmented, provider: a.attrs[0].provider}
		a.attrs = append([]*absoluteAttribute{head}, a.attrs...)
	}
}

func (a *maybeAttribute) Resolve(vars Activation) (types.Val, bool) {
	for _, attr := range a.attrs {
		if v, ok := attr.Resolve(vars); ok {
			return v, true
		}
	}
	return nil, false
}

// relativeAttribute applies accesses to a computed value.
type relativeAttribute struct {
	id       int64
	operand  Interpretable
	accesses []Access
}

func (a *relativeAttribute) ID() int64            { return a.id }
func (a *relativeAttribute) addAccess(acc Access) { a.accesses = append(a.accesses, acc) }

func (a *relativeAttribute) Resolve(vars Activation) (types.Val, bool) {
	v := a.operand.Eval(vars)
	return applyAccesses(vars, v, a.accesses), true
}

// conditionalAttribute is cond ? truthy : falsy. Accesses are added to both
// branches so that only the chosen branch is ever resolved.
type conditionalAttribute struct {
	id        int64
	cond      Interpretable
	truthy    Attribute
	falsy     Attribute
	container string
}

func (a *conditionalAttribute) ID() int64 { return a.id }

func (a *conditionalAttribute) addAccess(acc Access) {
	a.truthy.addAccess(acc)
	a.falsy.addAccess(acc)
}

func (a *conditionalAttribute) Resolve(vars Activation) (types.Val, bool) {
	switch c := a.cond.Eval(vars).(type) {
	case types.Bool:
		branch := a.falsy
		if c {
			branch = a.truthy
		}
		if v, found := branch.Resolve(vars); found {
			return v, true
		}
		return unresolved(branch, a.container), true
	case *types.Err, *types.Unknown:
		return c, true
	default:
		return types.OverloadNotFound(a.id, operators.Conditional, []types.Val{c}), true
	}
}

// attributeFactory creates attributes bound to one planner's namespace and
// type provider.
type attributeFactory struct {
	namespace *types.Namespace
	provider  types.TypeProvider
}

func (f *attributeFactory) absolute(id int64, names ...string) *absoluteAttribute {
	return &absoluteAttribute{id: id, candidates: names, provider: f.provider}
}

func (f *attributeFactory) maybe(id int64, name string) *maybeAttribute {
	root := f.absolute(id, f.namespace.ResolveCandidateNames(name)...)
	return &maybeAttribute{id: id, attrs: []*absoluteAttribute{root}}
}

func (f *attributeFactory) relative(id int64, operand Interpretable) *relativeAttribute {
	return &relativeAttribute{id: id, operand: operand}
}

func (f *attributeFactory) conditional(id int64, cond Interpretable, truthy, falsy Attribute) *conditionalAttribute {
	return &conditionalAttribute{
		id:        id,
		cond:      cond,
		truthy:    truthy,
		falsy:     falsy,
		container: f.namespace.Name(),
	}
}
