// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package functions

import (
	"github.com/stacklok/toolhive-cel/types"
)

//go:generate mockgen -copyright_file=../.github/license-header.txt -source=func.go -destination=mocks/mock_dispatcher.go -package=mocks Dispatcher CallDispatch

// Op is a native implementation of a function. It returns nil when the
// arguments are not accepted, which is reported to the caller as a missing
// overload rather than as an error.
type Op func(id int64, args []types.Val) types.Val

// CallDispatch invokes a function with already-evaluated arguments.
type CallDispatch interface {
	// Dispatch returns the call result, or nil when no overload applies.
	Dispatch(id int64, args []types.Val) types.Val
}

// Dispatcher looks functions up by name.
type Dispatcher interface {
	// Find returns the function registered under name, or nil.
	Find(name string) CallDispatch
}

// Func is a named function with the overload ids it implements.
//
// A strict Func never sees errors or unknowns: they are merged and returned
// before the Op runs. A non-strict Func receives the raw argument results,
// which is what the logical operators need to short-circuit.
type Func struct {
	name      string
	overloads []string
	strict    bool
	op        Op
}

// Name returns the function name.
func (f *Func) Name() string { return f.name }

// Overloads returns the overload ids implemented by f.
func (f *Func) Overloads() []string { return f.overloads }

// Strict reports whether errors and unknowns are absorbed before dispatch.
func (f *Func) Strict() bool { return f.strict }

// Dispatch implements CallDispatch.
func (f *Func) Dispatch(id int64, args []types.Val) types.Val {
	if f.strict {
		if merged := types.MergeResults(args); merged != nil {
			return merged
		}
	}
	return f.op(id, args)
}

// NewStrict creates a strict function over any number of arguments.
func NewStrict(name string, overloads []string, op Op) *Func {
	return &Func{name: name, overloads: overloads, strict: true, op: op}
}

// NewVarArg creates a non-strict function over any number of arguments.
func NewVarArg(name string, overloads []string, op Op) *Func {
	return &Func{name: name, overloads: overloads, op: op}
}

// Zero creates a function that takes no arguments.
func Zero(name, overload string, op func(id int64) types.Val) *Func {
	return NewVarArg(name, []string{overload}, func(id int64, args []types.Val) types.Val {
		if len(args) != 0 {
			return nil
		}
		return op(id)
	})
}

// Unary creates a strict function of one argument.
func Unary(name string, overloads []string, op func(id int64, arg types.Val) types.Val) *Func {
	return NewStrict(name, overloads, func(id int64, args []types.Val) types.Val {
		if len(args) != 1 {
			return nil
		}
		return op(id, args[0])
	})
}

// Binary creates a strict function of two arguments.
func Binary(name string, overloads []string, op func(id int64, lhs, rhs types.Val) types.Val) *Func {
	return NewStrict(name, overloads, func(id int64, args []types.Val) types.Val {
		if len(args) != 2 {
			return nil
		}
		return op(id, args[0], args[1])
	})
}

func identity(_ int64, arg types.Val) types.Val { return arg }

// ArgsMatch reports whether args has between min and len(want) elements and
// each argument's type equals the type at the same position in want.
func ArgsMatch(args []types.Val, minArgs int, want ...*types.Type) bool {
	if len(args) < minArgs || len(args) > len(want) {
		return false
	}
	for i, arg := range args {
		if arg == nil || !arg.Type().Equal(want[i]) {
			return false
		}
	}
	return true
}

// OrderedDispatcher consults a list of dispatchers in order and returns the
// first match.
type OrderedDispatcher struct {
	dispatchers []Dispatcher
}

// NewOrderedDispatcher creates a dispatcher over ds.
func NewOrderedDispatcher(ds ...Dispatcher) *OrderedDispatcher {
	return &OrderedDispatcher{dispatchers: ds}
}

// Add appends d with the lowest priority.
func (o *OrderedDispatcher) Add(d Dispatcher) {
	o.dispatchers = append(o.dispatchers, d)
}

// Find implements Dispatcher.
func (o *OrderedDispatcher) Find(name string) CallDispatch {
	for _, d := range o.dispatchers {
		if fn := d.Find(name); fn != nil {
			return fn
		}
	}
	return nil
}
