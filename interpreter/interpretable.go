// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package interpreter

import (
	"github.com/stacklok/toolhive-cel/functions"
	"github.com/stacklok/toolhive-cel/types"
)

// Interpretable is a node of an executable plan.
//
// Eval never returns nil and never panics on user data: failures are
// returned as *types.Err values and missing inputs as *types.Unknown. A plan
// holds no per-evaluation state, so one Interpretable may be evaluated by
// many goroutines at once, each with its own Activation.
type Interpretable interface {
	// ID returns the id of the expression node the Interpretable was planned
	// from.
	ID() int64
	// Eval evaluates the node against vars.
	Eval(vars Activation) types.Val
}

// EvalConst returns a literal.
type EvalConst struct {
	id    int64
	value types.Val
}

// ID implements Interpretable.
func (c *EvalConst) ID() int64 { return c.id }

// Eval implements Interpretable.
func (c *EvalConst) Eval(Activation) types.Val { return c.value }

// Value returns the literal.
func (c *EvalConst) Value() types.Val { return c.value }

// EvalAttr resolves an attribute. An attribute whose root matches nothing is
// an undeclared reference, and an optional access that misses yields null.
type EvalAttr struct {
	attr      Attribute
	container string
}

// ID implements Interpretable.
func (e *EvalAttr) ID() int64 { return e.attr.ID() }

// Attr returns the resolved attribute.
func (e *EvalAttr) Attr() Attribute { return e.attr }

// Eval implements Interpretable.
func (e *EvalAttr) Eval(vars Activation) types.Val {
	v, found := e.attr.Resolve(vars)
	if !found {
		return unresolved(e.attr, e.container)
	}
	if v == nil {
		return types.NullValue
	}
	return v
}

func unresolved(attr Attribute, container string) types.Val {
	if ns, ok := attr.(NamespacedAttribute); ok {
		if names := ns.CandidateNames(); len(names) > 0 {
			return types.UndeclaredReference(attr.ID(), names[len(names)-1], container)
		}
	}
	return types.UnresolvedAttribute(attr.ID())
}

// EvalHas is a presence test, has(operand.field).
type EvalHas struct {
	id        int64
	attr      Attribute
	access    Access
	container string
}

// ID implements Interpretable.
func (h *EvalHas) ID() int64 { return h.id }

// Eval implements Interpretable.
func (h *EvalHas) Eval(vars Activation) types.Val {
	v, found := h.attr.Resolve(vars)
	switch {
	case !found:
		return unresolved(h.attr, h.container)
	case v == nil:
		return types.False
	case types.IsErrorOrUnknown(v):
		return v
	}
	return h.access.IsPresent(vars, v)
}

// EvalCall evaluates its arguments in order and dispatches them to a
// function.
type EvalCall struct {
	id       int64
	function string
	call     functions.CallDispatch
	args     []Interpretable
}

// ID implements Interpretable.
func (c *EvalCall) ID() int64 { return c.id }

// Function returns the name the call dispatches to.
func (c *EvalCall) Function() string { return c.function }

// Args returns the planned arguments.
func (c *EvalCall) Args() []Interpretable { return c.args }

// Eval implements Interpretable.
func (c *EvalCall) Eval(vars Activation) types.Val {
	if c.call == nil {
		return types.UnboundFunction(c.id, c.function)
	}
	args := make([]types.Val, len(c.args))
	for i, arg := range c.args {
		args[i] = arg.Eval(vars)
	}
	if result := c.call.Dispatch(c.id, args); result != nil {
		return result
	}
	if merged := types.MergeResults(args); merged != nil {
		return merged
	}
	return types.OverloadNotFound(c.id, c.function, args)
}

// EvalList builds a list literal. Elements marked optional are dropped when
// they evaluate to null.
type EvalList struct {
	id        int64
	elems     []Interpretable
	optionals []bool
}

// ID implements Interpretable.
func (l *EvalList) ID() int64 { return l.id }

// Eval implements Interpretable.
func (l *EvalList) Eval(vars Activation) types.Val {
	if len(l.elems) == 0 {
		return types.EmptyList
	}
	vals := make([]types.Val, 0, len(l.elems))
	var failed []types.Val
	var elemType *types.Type
	for i, elem := range l.elems {
		v := elem.Eval(vars)
		if types.IsErrorOrUnknown(v) {
			failed = append(failed, v)
			continue
		}
		if l.optional(i) && v == types.NullValue {
			continue
		}
		elemType = joinType(elemType, v.Type())
		vals = append(vals, v)
	}
	if merged := types.MergeResults(failed); merged != nil {
		return merged
	}
	if elemType == nil {
		elemType = types.DynType
	}
	return types.NewValList(vals, elemType)
}

func (l *EvalList) optional(i int) bool {
	return l.optionals != nil && l.optionals[i]
}

// joinType keeps t while every value has the same type and degrades to dyn
// on the first mismatch.
func joinType(current, t *types.Type) *types.Type {
	switch {
	case current == nil:
		return t
	case current == types.DynType || !current.Identical(t):
		return types.DynType
	}
	return current
}

// EvalMap builds a map literal.
type EvalMap struct {
	id        int64
	keys      []Interpretable
	values    []Interpretable
	optionals []bool
}

// ID implements Interpretable.
func (m *EvalMap) ID() int64 { return m.id }

// Eval implements Interpretable.
func (m *EvalMap) Eval(vars Activation) types.Val {
	if len(m.keys) == 0 {
		return types.EmptyMap
	}
	keys := make([]types.Val, len(m.keys))
	vals := make([]types.Val, len(m.keys))
	var (
		failed             []types.Val
		keyType, valueType *types.Type
	)
	for i := range m.keys {
		keys[i] = m.keys[i].Eval(vars)
		vals[i] = m.values[i].Eval(vars)
		for _, v := range []types.Val{keys[i], vals[i]} {
			if types.IsErrorOrUnknown(v) {
				failed = append(failed, v)
			}
		}
	}
	if merged := types.MergeResults(failed); merged != nil {
		return merged
	}
	for i := range keys {
		if m.optionals != nil && m.optionals[i] && vals[i] == types.NullValue {
			continue
		}
		keyType = joinType(keyType, keys[i].Type())
		valueType = joinType(valueType, vals[i].Type())
	}
	if keyType == nil {
		keyType, valueType = types.DynType, types.DynType
	}
	out := types.NewMap(types.DefaultAdapter, keyType, valueType)
	var errs []*types.Err
	for i := range keys {
		if m.optionals != nil && m.optionals[i] && vals[i] == types.NullValue {
			continue
		}
		if err := out.Put(m.keys[i].ID(), keys[i], vals[i]); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return types.MergeErrors(errs...)
	}
	return out
}

// EvalObj builds a message literal through the type provider.
type EvalObj struct {
	id        int64
	typeName  string
	fields    []string
	fieldIDs  []int64
	values    []Interpretable
	optionals []bool
	provider  types.TypeProvider
}

// ID implements Interpretable.
func (o *EvalObj) ID() int64 { return o.id }

// TypeName returns the fully-qualified message name.
func (o *EvalObj) TypeName() string { return o.typeName }

// Eval implements Interpretable.
func (o *EvalObj) Eval(vars Activation) types.Val {
	fields := make(map[string]types.Val, len(o.fields))
	var failed []types.Val
	var errs []*types.Err
	for i, value := range o.values {
		v := value.Eval(vars)
		if types.IsErrorOrUnknown(v) {
			failed = append(failed, v)
			continue
		}
		if o.optionals != nil && o.optionals[i] && v == types.NullValue {
			continue
		}
		if _, dup := fields[o.fields[i]]; dup {
			errs = append(errs, types.MapKeyConflict(o.fieldIDs[i], types.String(o.fields[i])))
			continue
		}
		fields[o.fields[i]] = v
	}
	if merged := types.MergeResults(failed); merged != nil {
		if err, isErr := merged.(*types.Err); isErr && len(errs) > 0 {
			return types.MergeErrors(append([]*types.Err{err}, errs...)...)
		}
		return merged
	}
	if len(errs) > 0 {
		return types.MergeErrors(errs...)
	}
	if v := o.provider.NewValue(o.id, o.typeName, fields); v != nil {
		return v
	}
	return types.TypeNotFound(o.id, o.typeName)
}

// EvalFold runs a comprehension.
type EvalFold struct {
	id        int64
	iterVar   string
	accuVar   string
	iterRange Interpretable
	accuInit  Interpretable
	cond      Interpretable
	step      Interpretable
	result    Interpretable
}

// ID implements Interpretable.
func (f *EvalFold) ID() int64 { return f.id }

// Eval implements Interpretable.
//
// The range and the initial accumulator are evaluated once. The loop stops
// when the condition is not true; a condition that fails aborts the fold.
// Step results are bound as they are, errors included, so that a later
// iteration can still decide the outcome.
func (f *EvalFold) Eval(vars Activation) types.Val {
	foldRange := f.iterRange.Eval(vars)
	if types.IsErrorOrUnknown(foldRange) {
		return foldRange
	}
	items, err := iterate(f.id, foldRange)
	if err != nil {
		return err
	}
	accuInit := f.accuInit.Eval(vars)
	if types.IsErrorOrUnknown(accuInit) {
		return accuInit
	}
	accu := &varActivation{parent: vars, name: f.accuVar, value: accuInit}
	iter := &varActivation{parent: accu, name: f.iterVar}
	for _, item := range items {
		if types.IsErrorOrUnknown(item) {
			return item
		}
		iter.value = item
		cond := f.cond.Eval(iter)
		if types.IsErrorOrUnknown(cond) {
			return cond
		}
		if cond != types.True {
			break
		}
		accu.value = f.step.Eval(iter)
	}
	return f.result.Eval(accu)
}

// iterate lists the elements of a list, the keys of a map or the field
// names of a record.
func iterate(id int64, v types.Val) ([]types.Val, types.Val) {
	switch t := v.(type) {
	case *types.List:
		return t.Vals(), nil
	case *types.Map:
		return t.Keys(), nil
	case *types.Object:
		names := t.Adapter().FieldNames(t)
		items := make([]types.Val, len(names))
		for i, name := range names {
			items[i] = types.String(name)
		}
		return items, nil
	}
	return nil, types.TypeMismatch(id, "iterable", v)
}

// EvalError fails every evaluation with a fixed error.
type EvalError struct {
	id  int64
	err *types.Err
}

// ID implements Interpretable.
func (e *EvalError) ID() int64 { return e.id }

// Eval implements Interpretable.
func (e *EvalError) Eval(Activation) types.Val { return e.err }
