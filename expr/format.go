// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package expr

import (
	"slices"
	"strconv"
	"strings"

	"github.com/stacklok/toolhive-cel/types"
)

// Format renders e on one line for debugging and tests. Operators keep their
// internal names, presence tests are written as has(a.b) and comprehensions as
// __comprehension__(iterVar, range, accuVar, init, cond, step, result).
func Format(e *Expr) string {
	var b strings.Builder
	writeExpr(&b, e)
	return b.String()
}

func writeExpr(b *strings.Builder, e *Expr) {
	if e == nil {
		b.WriteString("<nil>")
		return
	}
	switch k := e.Kind.(type) {
	case *Const:
		b.WriteString(formatConst(k.Value))
	case *Ident:
		b.WriteString(k.Name)
	case *Select:
		if k.TestOnly {
			b.WriteString("has(")
		}
		writeExpr(b, k.Operand)
		b.WriteByte('.')
		b.WriteString(k.Field)
		if k.TestOnly {
			b.WriteByte(')')
		}
	case *Call:
		if k.Target != nil {
			writeExpr(b, k.Target)
			b.WriteByte('.')
		}
		b.WriteString(k.Function)
		writeArgs(b, k.Args)
	case *CreateList:
		b.WriteByte('[')
		for i, elem := range k.Elements {
			if i > 0 {
				b.WriteString(", ")
			}
			if slices.Contains(k.OptionalIndices, int32(i)) {
				b.WriteByte('?')
			}
			writeExpr(b, elem)
		}
		b.WriteByte(']')
	case *CreateStruct:
		b.WriteString(k.MessageName)
		b.WriteByte('{')
		for i, entry := range k.Entries {
			if i > 0 {
				b.WriteString(", ")
			}
			if entry.Optional {
				b.WriteByte('?')
			}
			if entry.MapKey != nil {
				writeExpr(b, entry.MapKey)
			} else {
				b.WriteString(entry.FieldKey)
			}
			b.WriteString(": ")
			writeExpr(b, entry.Value)
		}
		b.WriteByte('}')
	case *Comprehension:
		b.WriteString("__comprehension__(")
		b.WriteString(k.IterVar)
		b.WriteString(", ")
		writeExpr(b, k.IterRange)
		b.WriteString(", ")
		b.WriteString(k.AccuVar)
		for _, part := range []*Expr{k.AccuInit, k.LoopCondition, k.LoopStep, k.Result} {
			b.WriteString(", ")
			writeExpr(b, part)
		}
		b.WriteByte(')')
	default:
		b.WriteString("<unknown>")
	}
}

func writeArgs(b *strings.Builder, args []*Expr) {
	b.WriteByte('(')
	for i, arg := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		writeExpr(b, arg)
	}
	b.WriteByte(')')
}

func formatConst(v types.Val) string {
	switch c := v.(type) {
	case types.String:
		return strconv.Quote(string(c))
	case types.Bytes:
		return "b" + strconv.Quote(string(c))
	case types.Double:
		s := strconv.FormatFloat(float64(c), 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEnN") {
			s += ".0"
		}
		return s
	}
	return types.Format(v)
}
