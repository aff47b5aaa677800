// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package functions

import (
	"github.com/google/cel-go/common/operators"
	"github.com/google/cel-go/common/overloads"

	"github.com/stacklok/toolhive-cel/types"
)

// notStrictlyFalseFunc treats errors and unknowns as true so that a comprehension
// keeps iterating and a later element can still decide the result.
var notStrictlyFalseFunc = NewVarArg(operators.NotStrictlyFalse, []string{overloads.NotStrictlyFalse},
	func(_ int64, args []types.Val) types.Val {
		if len(args) != 1 {
			return nil
		}
		if b, ok := args[0].(types.Bool); ok && !bool(b) {
			return types.False
		}
		return types.True
	})

var notFunc = Unary(operators.LogicalNot, []string{overloads.LogicalNot},
	func(_ int64, x types.Val) types.Val {
		if b, ok := x.(types.Bool); ok {
			return !b
		}
		return nil
	})

// logical implements && and || over any number of operands. A deciding
// operand wins regardless of position; otherwise unknowns take precedence
// over errors.
func logical(decider types.Bool) Op {
	return func(_ int64, args []types.Val) types.Val {
		allBools := true
		var pending []types.Val
		for _, arg := range args {
			if b, ok := arg.(types.Bool); ok {
				if b == decider {
					return decider
				}
				continue
			}
			allBools = false
			if types.IsErrorOrUnknown(arg) {
				pending = append(pending, arg)
			}
		}
		if allBools {
			return !decider
		}
		return types.MergeResults(pending)
	}
}

var (
	andFunc = NewVarArg(operators.LogicalAnd, []string{overloads.LogicalAnd}, logical(types.False))
	orFunc  = NewVarArg(operators.LogicalOr, []string{overloads.LogicalOr}, logical(types.True))
)

var eqFunc = Binary(operators.Equals, []string{overloads.Equals},
	func(_ int64, lhs, rhs types.Val) types.Val {
		return equal(lhs, rhs)
	})

var neFunc = Binary(operators.NotEquals, []string{overloads.NotEquals},
	func(_ int64, lhs, rhs types.Val) types.Val {
		eq := equal(lhs, rhs)
		if b, ok := eq.(types.Bool); ok {
			return !b
		}
		return eq
	})

func equal(lhs, rhs types.Val) types.Val {
	return types.Equal(lhs, rhs)
}

// relation builds an ordering operator. Pairs involving NaN are unordered but
// still comparable, so every relation on NaN is false.
func relation(name string, ids []string, test func(c types.Int) bool) *Func {
	return Binary(name, ids, func(_ int64, lhs, rhs types.Val) types.Val {
		if types.IsNumber(lhs) && types.IsNumber(rhs) && (types.IsNaN(lhs) || types.IsNaN(rhs)) {
			return types.False
		}
		c, ok := types.Compare(lhs, rhs).(types.Int)
		if !ok {
			return nil
		}
		return types.Bool(test(c))
	})
}

var (
	ltFunc = relation(operators.Less, []string{
		overloads.LessBool, overloads.LessBytes, overloads.LessDouble, overloads.LessDoubleInt64,
		overloads.LessDoubleUint64, overloads.LessDuration, overloads.LessInt64, overloads.LessInt64Double,
		overloads.LessInt64Uint64, overloads.LessString, overloads.LessTimestamp, overloads.LessUint64,
		overloads.LessUint64Double, overloads.LessUint64Int64,
	}, func(c types.Int) bool { return c < 0 })
	leFunc = relation(operators.LessEquals, []string{
		overloads.LessEqualsBool, overloads.LessEqualsBytes, overloads.LessEqualsDouble,
		overloads.LessEqualsDoubleInt64, overloads.LessEqualsDoubleUint64, overloads.LessEqualsDuration,
		overloads.LessEqualsInt64, overloads.LessEqualsInt64Double, overloads.LessEqualsInt64Uint64,
		overloads.LessEqualsString, overloads.LessEqualsTimestamp, overloads.LessEqualsUint64,
		overloads.LessEqualsUint64Double, overloads.LessEqualsUint64Int64,
	}, func(c types.Int) bool { return c <= 0 })
	gtFunc = relation(operators.Greater, []string{
		overloads.GreaterBool, overloads.GreaterBytes, overloads.GreaterDouble, overloads.GreaterDoubleInt64,
		overloads.GreaterDoubleUint64, overloads.GreaterDuration, overloads.GreaterInt64,
		overloads.GreaterInt64Double, overloads.GreaterInt64Uint64, overloads.GreaterString,
		overloads.GreaterTimestamp, overloads.GreaterUint64, overloads.GreaterUint64Double,
		overloads.GreaterUint64Int64,
	}, func(c types.Int) bool { return c > 0 })
	geFunc = relation(operators.GreaterEquals, []string{
		overloads.GreaterEqualsBool, overloads.GreaterEqualsBytes, overloads.GreaterEqualsDouble,
		overloads.GreaterEqualsDoubleInt64, overloads.GreaterEqualsDoubleUint64,
		overloads.GreaterEqualsDuration, overloads.GreaterEqualsInt64, overloads.GreaterEqualsInt64Double,
		overloads.GreaterEqualsInt64Uint64, overloads.GreaterEqualsString, overloads.GreaterEqualsTimestamp,
		overloads.GreaterEqualsUint64, overloads.GreaterEqualsUint64Double, overloads.GreaterEqualsUint64Int64,
	}, func(c types.Int) bool { return c >= 0 })
)

func inList(_ int64, x, y types.Val) types.Val {
	list, ok := y.(*types.List)
	if !ok {
		return nil
	}
	for i := range list.Len() {
		if equal(x, list.Get(i)) == types.True {
			return types.True
		}
	}
	return types.False
}

func inMap(_ int64, x, y types.Val) types.Val {
	m, ok := y.(*types.Map)
	if !ok {
		return nil
	}
	return types.Bool(m.Has(x))
}

var (
	inListFunc = Binary(operators.In, []string{overloads.InList}, inList)
	inMapFunc  = Binary(operators.In, []string{overloads.InMap}, inMap)
	inFunc     = Binary(operators.In, nil, func(id int64, x, y types.Val) types.Val {
		switch y.(type) {
		case *types.List:
			return inList(id, x, y)
		case *types.Map:
			return inMap(id, x, y)
		}
		return nil
	})
)

func addLogic(r *Registry) {
	r.mustAdd(notStrictlyFalseFunc)
	r.mustAdd(andFunc)
	r.mustAdd(orFunc)
	r.mustAdd(notFunc)
	r.mustAdd(eqFunc)
	r.mustAdd(neFunc)
	r.mustAdd(ltFunc)
	r.mustAdd(leFunc)
	r.mustAdd(gtFunc)
	r.mustAdd(geFunc)
	r.mustAdd(inFunc, inListFunc, inMapFunc)
}
