// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package functions

import (
	"time"

	"github.com/google/cel-go/common/operators"
	"github.com/google/cel-go/common/overloads"

	"github.com/stacklok/toolhive-cel/types"
)

func addInt(id int64, args []types.Val) types.Val {
	var sum int64
	for _, arg := range args {
		n, ok := arg.(types.Int)
		if !ok {
			return nil
		}
		if sum, ok = types.AddInt64(sum, int64(n)); !ok {
			return types.Overflow(id, types.IntType, operators.Add)
		}
	}
	return types.Int(sum)
}

func addUint(id int64, args []types.Val) types.Val {
	var sum uint64
	for _, arg := range args {
		n, ok := arg.(types.Uint)
		if !ok {
			return nil
		}
		if sum, ok = types.AddUint64(sum, uint64(n)); !ok {
			return types.Overflow(id, types.UintType, operators.Add)
		}
	}
	return types.Uint(sum)
}

func addDouble(_ int64, args []types.Val) types.Val {
	var sum float64
	for _, arg := range args {
		n, ok := arg.(types.Double)
		if !ok {
			return nil
		}
		sum += float64(n)
	}
	return types.Double(sum)
}

func addString(_ int64, args []types.Val) types.Val {
	var sum string
	for _, arg := range args {
		s, ok := arg.(types.String)
		if !ok {
			return nil
		}
		sum += string(s)
	}
	return types.String(sum)
}

func addBytes(_ int64, args []types.Val) types.Val {
	var sum []byte
	for _, arg := range args {
		b, ok := arg.(types.Bytes)
		if !ok {
			return nil
		}
		sum = append(sum, b...)
	}
	return types.Bytes(sum)
}

// addList concatenates lists into a list owned by the adapter of the first.
// Elements of lists owned by other adapters are converted at the boundary.
func addList(_ int64, args []types.Val) types.Val {
	first, ok := args[0].(*types.List)
	if !ok {
		return nil
	}
	adapter := first.Adapter()
	elemType := first.Type().ElemType()
	values := append([]any(nil), first.Natives()...)
	for _, arg := range args[1:] {
		list, ok := arg.(*types.List)
		if !ok {
			return nil
		}
		if elemType != types.DynType && !elemType.Identical(list.Type().ElemType()) {
			elemType = types.DynType
		}
		if list.Adapter() == adapter {
			values = append(values, list.Natives()...)
			continue
		}
		for i := range list.Len() {
			v := list.Get(i)
			if types.IsErrorOrUnknown(v) {
				return v
			}
			values = append(values, adapter.FromCel(v))
		}
	}
	return types.NewList(adapter, values, elemType)
}

// addTime sums durations, optionally onto a single timestamp.
func addTime(id int64, args []types.Val) types.Val {
	var (
		ts    *types.Timestamp
		total int64
	)
	for _, arg := range args {
		switch v := arg.(type) {
		case types.Timestamp:
			if ts != nil {
				return nil
			}
			ts = &v
		case types.Duration:
			var ok bool
			if total, ok = types.AddInt64(total, int64(v)); !ok {
				return types.Overflow(id, types.DurationType, operators.Add)
			}
		default:
			return nil
		}
	}
	if ts == nil {
		return types.Duration(total)
	}
	return shiftTimestamp(id, *ts, total, operators.Add)
}

// shiftTimestamp adds nanos to t and range-checks the result.
func shiftTimestamp(id int64, t types.Timestamp, nanos int64, op string) types.Val {
	secs := t.Unix() + nanos/int64(time.Second)
	frac := int64(t.Nanosecond()) + nanos%int64(time.Second)
	out := types.NewTimestamp(id, secs, frac)
	if types.IsError(out) {
		return types.Overflow(id, types.TimestampType, op)
	}
	return out
}

var addFunc = NewStrict(operators.Add, nil, func(id int64, args []types.Val) types.Val {
	if len(args) == 0 {
		return nil
	}
	switch args[0].(type) {
	case types.Int:
		return addInt(id, args)
	case types.Uint:
		return addUint(id, args)
	case types.Double:
		return addDouble(id, args)
	case types.String:
		return addString(id, args)
	case types.Bytes:
		return addBytes(id, args)
	case types.Timestamp, types.Duration:
		return addTime(id, args)
	case *types.List:
		return addList(id, args)
	}
	return nil
})

func subInt(id int64, lhs, rhs types.Val) types.Val {
	l, lok := lhs.(types.Int)
	r, rok := rhs.(types.Int)
	if !lok || !rok {
		return nil
	}
	diff, ok := types.SubInt64(int64(l), int64(r))
	if !ok {
		return types.Overflow(id, types.IntType, operators.Subtract)
	}
	return types.Int(diff)
}

func subUint(id int64, lhs, rhs types.Val) types.Val {
	l, lok := lhs.(types.Uint)
	r, rok := rhs.(types.Uint)
	if !lok || !rok {
		return nil
	}
	diff, ok := types.SubUint64(uint64(l), uint64(r))
	if !ok {
		return types.Overflow(id, types.UintType, operators.Subtract)
	}
	return types.Uint(diff)
}

func subDouble(_ int64, lhs, rhs types.Val) types.Val {
	l, lok := lhs.(types.Double)
	r, rok := rhs.(types.Double)
	if !lok || !rok {
		return nil
	}
	return l - r
}

func subTime(id int64, lhs, rhs types.Val) types.Val {
	switch l := lhs.(type) {
	case types.Timestamp:
		switch r := rhs.(type) {
		case types.Timestamp:
			d := types.NewDuration(id, l.Unix()-r.Unix(), int64(l.Nanosecond()-r.Nanosecond()))
			if types.IsError(d) {
				return types.Overflow(id, types.DurationType, operators.Subtract)
			}
			return d
		case types.Duration:
			if r == types.Duration(minInt64) {
				return types.Overflow(id, types.TimestampType, operators.Subtract)
			}
			return shiftTimestamp(id, l, -int64(r), operators.Subtract)
		}
	case types.Duration:
		if r, ok := rhs.(types.Duration); ok {
			diff, ok := types.SubInt64(int64(l), int64(r))
			if !ok {
				return types.Overflow(id, types.DurationType, operators.Subtract)
			}
			return types.Duration(diff)
		}
	}
	return nil
}

const minInt64 = -1 << 63

var subFunc = Binary(operators.Subtract, nil, func(id int64, lhs, rhs types.Val) types.Val {
	switch lhs.(type) {
	case types.Int:
		return subInt(id, lhs, rhs)
	case types.Uint:
		return subUint(id, lhs, rhs)
	case types.Double:
		return subDouble(id, lhs, rhs)
	case types.Timestamp, types.Duration:
		return subTime(id, lhs, rhs)
	}
	return nil
})

func mulInt(id int64, args []types.Val) types.Val {
	product := int64(1)
	for _, arg := range args {
		n, ok := arg.(types.Int)
		if !ok {
			return nil
		}
		if product, ok = types.MulInt64(product, int64(n)); !ok {
			return types.Overflow(id, types.IntType, operators.Multiply)
		}
	}
	return types.Int(product)
}

func mulUint(id int64, args []types.Val) types.Val {
	product := uint64(1)
	for _, arg := range args {
		n, ok := arg.(types.Uint)
		if !ok {
			return nil
		}
		if product, ok = types.MulUint64(product, uint64(n)); !ok {
			return types.Overflow(id, types.UintType, operators.Multiply)
		}
	}
	return types.Uint(product)
}

func mulDouble(_ int64, args []types.Val) types.Val {
	product := 1.0
	for _, arg := range args {
		n, ok := arg.(types.Double)
		if !ok {
			return nil
		}
		product *= float64(n)
	}
	return types.Double(product)
}

var mulFunc = NewStrict(operators.Multiply, nil, func(id int64, args []types.Val) types.Val {
	if len(args) == 0 {
		return nil
	}
	switch args[0].(type) {
	case types.Int:
		return mulInt(id, args)
	case types.Uint:
		return mulUint(id, args)
	case types.Double:
		return mulDouble(id, args)
	}
	return nil
})

func divInt(id int64, lhs, rhs types.Val) types.Val {
	l, lok := lhs.(types.Int)
	r, rok := rhs.(types.Int)
	if !lok || !rok {
		return nil
	}
	if r == 0 {
		return types.DivideByZero(id, types.IntType)
	}
	q, ok := types.DivInt64(int64(l), int64(r))
	if !ok {
		return types.Overflow(id, types.IntType, operators.Divide)
	}
	return types.Int(q)
}

func divUint(id int64, lhs, rhs types.Val) types.Val {
	l, lok := lhs.(types.Uint)
	r, rok := rhs.(types.Uint)
	if !lok || !rok {
		return nil
	}
	if r == 0 {
		return types.DivideByZero(id, types.UintType)
	}
	return l / r
}

func divDouble(_ int64, lhs, rhs types.Val) types.Val {
	l, lok := lhs.(types.Double)
	r, rok := rhs.(types.Double)
	if !lok || !rok {
		return nil
	}
	return l / r
}

var divFunc = Binary(operators.Divide, nil, func(id int64, lhs, rhs types.Val) types.Val {
	switch lhs.(type) {
	case types.Int:
		return divInt(id, lhs, rhs)
	case types.Uint:
		return divUint(id, lhs, rhs)
	case types.Double:
		return divDouble(id, lhs, rhs)
	}
	return nil
})

func modInt(id int64, lhs, rhs types.Val) types.Val {
	l, lok := lhs.(types.Int)
	r, rok := rhs.(types.Int)
	if !lok || !rok {
		return nil
	}
	if r == 0 {
		return types.ModulusByZero(id, types.IntType)
	}
	if r == -1 {
		return types.Int(0)
	}
	return l % r
}

func modUint(id int64, lhs, rhs types.Val) types.Val {
	l, lok := lhs.(types.Uint)
	r, rok := rhs.(types.Uint)
	if !lok || !rok {
		return nil
	}
	if r == 0 {
		return types.ModulusByZero(id, types.UintType)
	}
	return l % r
}

var modFunc = Binary(operators.Modulo, nil, func(id int64, lhs, rhs types.Val) types.Val {
	switch lhs.(type) {
	case types.Int:
		return modInt(id, lhs, rhs)
	case types.Uint:
		return modUint(id, lhs, rhs)
	}
	return nil
})

func negInt(id int64, x types.Val) types.Val {
	n, ok := x.(types.Int)
	if !ok {
		return nil
	}
	neg, ok := types.NegInt64(int64(n))
	if !ok {
		return types.Overflow(id, types.IntType, operators.Negate)
	}
	return types.Int(neg)
}

func negDouble(_ int64, x types.Val) types.Val {
	n, ok := x.(types.Double)
	if !ok {
		return nil
	}
	return -n
}

var negFunc = Unary(operators.Negate, nil, func(id int64, x types.Val) types.Val {
	switch x.(type) {
	case types.Int:
		return negInt(id, x)
	case types.Double:
		return negDouble(id, x)
	}
	return nil
})

func binaryOp(op func(int64, types.Val, types.Val) types.Val) Op {
	return func(id int64, args []types.Val) types.Val {
		if len(args) != 2 {
			return nil
		}
		return op(id, args[0], args[1])
	}
}

func addMath(r *Registry) {
	r.mustAdd(addFunc,
		NewStrict(operators.Add, []string{overloads.AddInt64}, addInt),
		NewStrict(operators.Add, []string{overloads.AddUint64}, addUint),
		NewStrict(operators.Add, []string{overloads.AddDouble}, addDouble),
		NewStrict(operators.Add, []string{overloads.AddString}, addString),
		NewStrict(operators.Add, []string{overloads.AddBytes}, addBytes),
		NewStrict(operators.Add, []string{overloads.AddList}, addList),
		NewStrict(operators.Add, []string{
			overloads.AddDurationDuration, overloads.AddTimestampDuration, overloads.AddDurationTimestamp,
		}, addTime),
	)
	r.mustAdd(subFunc,
		NewStrict(operators.Subtract, []string{overloads.SubtractInt64}, binaryOp(subInt)),
		NewStrict(operators.Subtract, []string{overloads.SubtractUint64}, binaryOp(subUint)),
		NewStrict(operators.Subtract, []string{overloads.SubtractDouble}, binaryOp(subDouble)),
		NewStrict(operators.Subtract, []string{
			overloads.SubtractTimestampTimestamp, overloads.SubtractDurationDuration,
			overloads.SubtractTimestampDuration,
		}, binaryOp(subTime)),
	)
	r.mustAdd(mulFunc,
		NewStrict(operators.Multiply, []string{overloads.MultiplyInt64}, mulInt),
		NewStrict(operators.Multiply, []string{overloads.MultiplyUint64}, mulUint),
		NewStrict(operators.Multiply, []string{overloads.MultiplyDouble}, mulDouble),
	)
	r.mustAdd(divFunc,
		Binary(operators.Divide, []string{overloads.DivideInt64}, divInt),
		Binary(operators.Divide, []string{overloads.DivideUint64}, divUint),
		Binary(operators.Divide, []string{overloads.DivideDouble}, divDouble),
	)
	r.mustAdd(modFunc,
		Binary(operators.Modulo, []string{overloads.ModuloInt64}, modInt),
		Binary(operators.Modulo, []string{overloads.ModuloUint64}, modUint),
	)
	r.mustAdd(negFunc,
		Unary(operators.Negate, []string{overloads.NegateInt64}, negInt),
		Unary(operators.Negate, []string{overloads.NegateDouble}, negDouble),
	)
}
