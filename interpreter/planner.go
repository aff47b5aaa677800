// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package interpreter

import (
	"fmt"
	"slices"

	"github.com/go-logr/logr"
	"github.com/google/cel-go/common/operators"

	"github.com/stacklok/toolhive-cel/expr"
	"github.com/stacklok/toolhive-cel/functions"
	"github.com/stacklok/toolhive-cel/types"
)

// Planner lowers expression trees into executable plans. Function names,
// message types and namespace candidates are resolved once, while planning.
//
// A Planner holds no state between calls to Plan and may be shared.
type Planner struct {
	dispatcher functions.Dispatcher
	provider   types.TypeProvider
	namespace  *types.Namespace
	logger     logr.Logger
}

// NewPlanner creates a planner. A nil provider selects types.EmptyProvider
// and a nil namespace the root namespace.
func NewPlanner(
	dispatcher functions.Dispatcher,
	provider types.TypeProvider,
	namespace *types.Namespace,
	logger logr.Logger,
) *Planner {
	if provider == nil {
		provider = types.EmptyProvider{}
	}
	if namespace == nil {
		namespace = types.RootNamespace
	}
	return &Planner{
		dispatcher: dispatcher,
		provider:   provider,
		namespace:  namespace,
		logger:     logger,
	}
}

// Plan lowers e. Planning fails with a *PlanError wrapping ErrTypeNotFound
// when a message literal names an unknown type, and wrapping
// ErrMalformedExpr when the tree is not well formed.
func (p *Planner) Plan(e *expr.Expr) (Interpretable, error) {
	b := &planBuilder{
		Planner: p,
		attrs:   &attributeFactory{namespace: p.namespace, provider: p.provider},
	}
	return b.plan(e)
}

// planBuilder holds the state of one Plan call.
type planBuilder struct {
	*Planner
	attrs *attributeFactory
	// locals are the comprehension variables in scope, innermost last.
	locals []string
}

func (b *planBuilder) plan(e *expr.Expr) (Interpretable, error) {
	if e == nil || e.Kind == nil {
		return nil, malformed(0, "missing expression")
	}
	switch k := e.Kind.(type) {
	case *expr.Const:
		if k.Value == nil {
			return nil, malformed(e.ID, "constant without a value")
		}
		return &EvalConst{id: e.ID, value: k.Value}, nil
	case *expr.Ident:
		if slices.Contains(b.locals, k.Name) {
			return b.attrExpr(b.attrs.absolute(e.ID, k.Name)), nil
		}
		return b.attrExpr(b.attrs.maybe(e.ID, k.Name)), nil
	case *expr.Select:
		return b.planSelect(e, k)
	case *expr.Call:
		return b.planCall(e, k)
	case *expr.CreateList:
		return b.planList(e, k)
	case *expr.CreateStruct:
		if k.MessageName == "" {
			return b.planMap(e, k)
		}
		return b.planObj(e, k)
	case *expr.Comprehension:
		return b.planFold(e, k)
	}
	return nil, malformed(e.ID, "unsupported expression kind %T", e.Kind)
}

func (b *planBuilder) attrExpr(attr Attribute) *EvalAttr {
	return &EvalAttr{attr: attr, container: b.namespace.Name()}
}

// toAttr returns the attribute behind an attribute node, or wraps any other
// node so that accesses can be applied to its result.
func (b *planBuilder) toAttr(i Interpretable) (*EvalAttr, Attribute) {
	if ea, ok := i.(*EvalAttr); ok {
		return ea, ea.attr
	}
	attr := b.attrs.relative(i.ID(), i)
	return b.attrExpr(attr), attr
}

func (b *planBuilder) planSelect(e *expr.Expr, sel *expr.Select) (Interpretable, error) {
	operand, err := b.plan(sel.Operand)
	if err != nil {
		return nil, err
	}
	access := newAccess(e.ID, types.String(sel.Field), false)
	ea, attr := b.toAttr(operand)
	if sel.TestOnly {
		return &EvalHas{id: e.ID, attr: attr, access: access, container: b.namespace.Name()}, nil
	}
	attr.addAccess(access)
	return ea, nil
}

func (b *planBuilder) planCall(e *expr.Expr, call *expr.Call) (Interpretable, error) {
	switch call.Function {
	case operators.Index:
		return b.planIndex(e, call, false)
	case operators.OptIndex:
		return b.planIndex(e, call, true)
	case operators.OptSelect:
		return b.planOptSelect(e, call)
	case operators.Conditional:
		return b.planConditional(e, call)
	case operators.Has:
		if call.Target == nil {
			return &EvalError{id: e.ID, err: types.InvalidArgument(e.ID, operators.Has, "argument must be a field selection")}, nil
		}
	}

	if call.Target != nil {
		if qualified, ok := call.Target.QualifiedName(); ok {
			if name, fn := b.findFunction(qualified + "." + call.Function); fn != nil {
				b.logger.V(1).Info("resolved qualified function", "function", name)
				args, err := b.planAll(call.Args)
				if err != nil {
					return nil, err
				}
				return &EvalCall{id: e.ID, function: name, call: fn, args: args}, nil
			}
		}
	}

	exprs := call.Args
	if call.Target != nil {
		exprs = append([]*expr.Expr{call.Target}, call.Args...)
	}
	args, err := b.planAll(exprs)
	if err != nil {
		return nil, err
	}
	var fn functions.CallDispatch
	name := call.Function
	if call.Target == nil {
		if resolved, found := b.findFunction(call.Function); found != nil {
			name, fn = resolved, found
		}
	} else {
		fn = b.dispatcher.Find(call.Function)
	}
	return &EvalCall{id: e.ID, function: name, call: fn, args: args}, nil
}

// findFunction searches the namespace candidates of name, most qualified
// first.
func (b *planBuilder) findFunction(name string) (string, functions.CallDispatch) {
	for _, candidate := range b.namespace.ResolveCandidateNames(name) {
		if fn := b.dispatcher.Find(candidate); fn != nil {
			return candidate, fn
		}
	}
	return "", nil
}

func (b *planBuilder) planAll(exprs []*expr.Expr) ([]Interpretable, error) {
	out := make([]Interpretable, len(exprs))
	for i, e := range exprs {
		planned, err := b.plan(e)
		if err != nil {
			return nil, err
		}
		out[i] = planned
	}
	return out, nil
}

func (b *planBuilder) planIndex(e *expr.Expr, call *expr.Call, optional bool) (Interpretable, error) {
	if len(call.Args) != 2 {
		return nil, malformed(e.ID, "%s takes 2 arguments, got %d", call.Function, len(call.Args))
	}
	operand, err := b.plan(call.Args[0])
	if err != nil {
		return nil, err
	}
	ea, attr := b.toAttr(operand)
	if call.Args[1] == nil {
		return nil, malformed(e.ID, "%s without an index", call.Function)
	}
	if c, ok := call.Args[1].Kind.(*expr.Const); ok && c.Value != nil {
		attr.addAccess(newAccess(e.ID, c.Value, optional))
		return ea, nil
	}
	key, err := b.plan(call.Args[1])
	if err != nil {
		return nil, err
	}
	attr.addAccess(&evalAccess{id: e.ID, key: key, optional: optional})
	return ea, nil
}

func (b *planBuilder) planOptSelect(e *expr.Expr, call *expr.Call) (Interpretable, error) {
	if len(call.Args) != 2 {
		return nil, malformed(e.ID, "%s takes 2 arguments, got %d", call.Function, len(call.Args))
	}
	if call.Args[1] == nil {
		return nil, malformed(e.ID, "%s without a field", call.Function)
	}
	field, ok := call.Args[1].Kind.(*expr.Const)
	if !ok {
		return nil, malformed(e.ID, "%s field must be a string literal", call.Function)
	}
	name, ok := field.Value.(types.String)
	if !ok {
		return nil, malformed(e.ID, "%s field must be a string literal", call.Function)
	}
	operand, err := b.plan(call.Args[0])
	if err != nil {
		return nil, err
	}
	ea, attr := b.toAttr(operand)
	attr.addAccess(newAccess(e.ID, name, true))
	return ea, nil
}

func (b *planBuilder) planConditional(e *expr.Expr, call *expr.Call) (Interpretable, error) {
	if len(call.Args) != 3 {
		return nil, malformed(e.ID, "%s takes 3 arguments, got %d", call.Function, len(call.Args))
	}
	planned, err := b.planAll(call.Args)
	if err != nil {
		return nil, err
	}
	_, truthy := b.toAttr(planned[1])
	_, falsy := b.toAttr(planned[2])
	return b.attrExpr(b.attrs.conditional(e.ID, planned[0], truthy, falsy)), nil
}

func (b *planBuilder) planList(e *expr.Expr, list *expr.CreateList) (Interpretable, error) {
	elems, err := b.planAll(list.Elements)
	if err != nil {
		return nil, err
	}
	var optionals []bool
	if len(list.OptionalIndices) > 0 {
		optionals = make([]bool, len(elems))
		for _, i := range list.OptionalIndices {
			if i < 0 || int(i) >= len(elems) {
				return nil, malformed(e.ID, "optional index %d out of range", i)
			}
			optionals[i] = true
		}
	}
	return &EvalList{id: e.ID, elems: elems, optionals: optionals}, nil
}

func (b *planBuilder) planMap(e *expr.Expr, m *expr.CreateStruct) (Interpretable, error) {
	keys := make([]Interpretable, len(m.Entries))
	values := make([]Interpretable, len(m.Entries))
	var optionals []bool
	for i, entry := range m.Entries {
		if entry == nil || entry.MapKey == nil || entry.Value == nil || entry.FieldKey != "" {
			return nil, malformed(e.ID, "map literal entry %d is not a key/value pair", i)
		}
		var err error
		if keys[i], err = b.plan(entry.MapKey); err != nil {
			return nil, err
		}
		if values[i], err = b.plan(entry.Value); err != nil {
			return nil, err
		}
		if entry.Optional {
			if optionals == nil {
				optionals = make([]bool, len(m.Entries))
			}
			optionals[i] = true
		}
	}
	return &EvalMap{id: e.ID, keys: keys, values: values, optionals: optionals}, nil
}

func (b *planBuilder) planObj(e *expr.Expr, obj *expr.CreateStruct) (Interpretable, error) {
	typeName, ok := b.resolveType(obj.MessageName)
	if !ok {
		return nil, &PlanError{ID: e.ID, Err: fmt.Errorf("%w: %s", ErrTypeNotFound, obj.MessageName)}
	}
	b.logger.V(1).Info("resolved message type", "name", obj.MessageName, "type", typeName)
	n := len(obj.Entries)
	o := &EvalObj{
		id:       e.ID,
		typeName: typeName,
		fields:   make([]string, n),
		fieldIDs: make([]int64, n),
		values:   make([]Interpretable, n),
		provider: b.provider,
	}
	for i, entry := range obj.Entries {
		if entry == nil || entry.FieldKey == "" || entry.MapKey != nil || entry.Value == nil {
			return nil, malformed(e.ID, "message literal entry %d is not a field initializer", i)
		}
		value, err := b.plan(entry.Value)
		if err != nil {
			return nil, err
		}
		o.fields[i], o.fieldIDs[i], o.values[i] = entry.FieldKey, entry.ID, value
		if entry.Optional {
			if o.optionals == nil {
				o.optionals = make([]bool, n)
			}
			o.optionals[i] = true
		}
	}
	return o, nil
}

func (b *planBuilder) resolveType(name string) (string, bool) {
	for _, candidate := range b.namespace.ResolveCandidateNames(name) {
		if _, ok := b.provider.FindType(candidate); ok {
			return candidate, true
		}
	}
	return "", false
}

func (b *planBuilder) planFold(e *expr.Expr, c *expr.Comprehension) (Interpretable, error) {
	parts := []*expr.Expr{c.IterRange, c.AccuInit, c.LoopCondition, c.LoopStep, c.Result}
	for _, part := range parts {
		if part == nil {
			return nil, malformed(e.ID, "incomplete comprehension")
		}
	}
	if c.IterVar == "" || c.AccuVar == "" {
		return nil, malformed(e.ID, "comprehension without variables")
	}
	iterRange, err := b.plan(c.IterRange)
	if err != nil {
		return nil, err
	}
	accuInit, err := b.plan(c.AccuInit)
	if err != nil {
		return nil, err
	}
	scope := len(b.locals)
	defer func() { b.locals = b.locals[:scope] }()

	b.locals = append(b.locals, c.AccuVar, c.IterVar)
	loop, err := b.planAll([]*expr.Expr{c.LoopCondition, c.LoopStep})
	if err != nil {
		return nil, err
	}
	b.locals = append(b.locals[:scope], c.AccuVar)
	result, err := b.plan(c.Result)
	if err != nil {
		return nil, err
	}
	return &EvalFold{
		id:        e.ID,
		iterVar:   c.IterVar,
		accuVar:   c.AccuVar,
		iterRange: iterRange,
		accuInit:  accuInit,
		cond:      loop[0],
		step:      loop[1],
		result:    result,
	}, nil
}
