// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package expr

import (
	"github.com/google/cel-go/common/operators"

	"github.com/stacklok/toolhive-cel/types"
)

// AccumulatorName is the accumulator variable of expanded macros. It is not
// a valid identifier, so it cannot shadow a user variable.
const AccumulatorName = "__result__"

// expandGlobalMacro rewrites has(a.b) into a presence test on the select.
// has applied to anything else stays a call, which the planner rejects.
func (*Builder) expandGlobalMacro(function string, args []*Expr) (*Expr, bool) {
	if function != operators.Has || len(args) != 1 {
		return nil, false
	}
	sel, ok := args[0].Kind.(*Select)
	if !ok {
		return nil, false
	}
	sel.TestOnly = true
	return args[0], true
}

// expandMemberMacro recognizes target.macro(x, body) where x is a bare
// identifier.
func (b *Builder) expandMemberMacro(offset int32, target *Expr, function string, args []*Expr) (*Expr, bool) {
	if target == nil || len(args) != 2 {
		return nil, false
	}
	iterVar, ok := args[0].AsIdent()
	if !ok {
		return nil, false
	}
	body := args[1]
	switch function {
	case operators.Exists:
		return b.expandExists(offset, target, iterVar, body), true
	case operators.All:
		return b.expandAll(offset, target, iterVar, body), true
	case operators.ExistsOne:
		return b.expandExistsOne(offset, target, iterVar, body), true
	case operators.Map:
		return b.expandMap(offset, target, iterVar, body), true
	case operators.Filter:
		return b.expandFilter(offset, target, iterVar, body), true
	}
	return nil, false
}

func (b *Builder) accu(offset int32) *Expr {
	return b.NewIdent(offset, AccumulatorName)
}

// expandExists: false, continue while !accu is not strictly false,
// accu || p.
func (b *Builder) expandExists(offset int32, target *Expr, x string, p *Expr) *Expr {
	init := b.NewConst(offset, types.False)
	cond := b.NewCall(offset, operators.NotStrictlyFalse,
		b.NewCall(offset, operators.LogicalNot, b.accu(offset)))
	step := b.NewCall(offset, operators.LogicalOr, b.accu(offset), p)
	return b.NewComprehension(offset, x, target, AccumulatorName, init, cond, step, b.accu(offset))
}

// expandAll: true, continue while accu is not strictly false, accu && p.
func (b *Builder) expandAll(offset int32, target *Expr, x string, p *Expr) *Expr {
	init := b.NewConst(offset, types.True)
	cond := b.NewCall(offset, operators.NotStrictlyFalse, b.accu(offset))
	step := b.NewCall(offset, operators.LogicalAnd, b.accu(offset), p)
	return b.NewComprehension(offset, x, target, AccumulatorName, init, cond, step, b.accu(offset))
}

// expandExistsOne counts matches and compares the count with one.
func (b *Builder) expandExistsOne(offset int32, target *Expr, x string, p *Expr) *Expr {
	init := b.NewConst(offset, types.Int(0))
	cond := b.NewConst(offset, types.True)
	step := b.NewCall(offset, operators.Conditional, p,
		b.NewCall(offset, operators.Add, b.accu(offset), b.NewConst(offset, types.Int(1))),
		b.accu(offset))
	result := b.NewCall(offset, operators.Equals, b.accu(offset), b.NewConst(offset, types.Int(1)))
	return b.NewComprehension(offset, x, target, AccumulatorName, init, cond, step, result)
}

// expandMap appends t to the accumulator for every element.
func (b *Builder) expandMap(offset int32, target *Expr, x string, t *Expr) *Expr {
	step := b.NewCall(offset, operators.Add, b.accu(offset), b.NewList(offset, []*Expr{t}))
	return b.listFold(offset, target, x, step)
}

// expandFilter appends x to the accumulator when p holds.
func (b *Builder) expandFilter(offset int32, target *Expr, x string, p *Expr) *Expr {
	step := b.NewCall(offset, operators.Conditional, p,
		b.NewCall(offset, operators.Add, b.accu(offset), b.NewList(offset, []*Expr{b.NewIdent(offset, x)})),
		b.accu(offset))
	return b.listFold(offset, target, x, step)
}

func (b *Builder) listFold(offset int32, target *Expr, x string, step *Expr) *Expr {
	init := b.NewList(offset, nil)
	cond := b.NewConst(offset, types.True)
	return b.NewComprehension(offset, x, target, AccumulatorName, init, cond, step, b.accu(offset))
}
