// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package expr

import (
	"github.com/stacklok/toolhive-cel/types"
)

// Expr is a node of a parsed expression. ID is unique within one parse and
// keys the node's position in SourceInfo.
type Expr struct {
	ID   int64
	Kind ExprKind
}

// ExprKind is one of *Const, *Ident, *Call, *Select, *CreateList,
// *CreateStruct or *Comprehension.
type ExprKind interface {
	isExprKind()
}

// Const is a literal.
type Const struct {
	Value types.Val
}

// Ident is a possibly-qualified identifier reference such as "x" or
// ".pkg.x".
type Ident struct {
	Name string
}

// Call is a global call when Target is nil and a member call otherwise.
// Operators are calls too, named after cel-go's operators package.
type Call struct {
	Function string
	Target   *Expr
	Args     []*Expr
}

// Select is operand.field, or has(operand.field) when TestOnly is set.
type Select struct {
	Operand  *Expr
	Field    string
	TestOnly bool
}

// CreateList is a list literal. OptionalIndices lists the positions of
// elements written as ?elem, which are skipped when they evaluate to an empty
// optional.
type CreateList struct {
	Elements        []*Expr
	OptionalIndices []int32
}

// CreateStruct is a map literal when MessageName is empty and a message
// literal otherwise.
type CreateStruct struct {
	MessageName string
	Entries     []*Entry
}

// Entry is one key/value pair of a CreateStruct. Message literal entries use
// FieldKey, map literal entries use MapKey.
type Entry struct {
	ID       int64
	FieldKey string
	MapKey   *Expr
	Value    *Expr
	Optional bool
}

// Comprehension folds IterRange into an accumulator:
//
//	accu := AccuInit
//	for IterVar in IterRange {
//		if !LoopCondition { break }
//		accu = LoopStep
//	}
//	return Result
type Comprehension struct {
	IterVar       string
	IterRange     *Expr
	AccuVar       string
	AccuInit      *Expr
	LoopCondition *Expr
	LoopStep      *Expr
	Result        *Expr
}

func (*Const) isExprKind()         {}
func (*Ident) isExprKind()         {}
func (*Call) isExprKind()          {}
func (*Select) isExprKind()        {}
func (*CreateList) isExprKind()    {}
func (*CreateStruct) isExprKind()  {}
func (*Comprehension) isExprKind() {}

// AsIdent returns the identifier name when e is an *Ident.
func (e *Expr) AsIdent() (string, bool) {
	if e == nil {
		return "", false
	}
	if id, ok := e.Kind.(*Ident); ok {
		return id.Name, true
	}
	return "", false
}

// AsCall returns e's call node when e is a *Call.
func (e *Expr) AsCall() (*Call, bool) {
	if e == nil {
		return nil, false
	}
	c, ok := e.Kind.(*Call)
	return c, ok
}

// QualifiedName returns the dotted name spelled by a chain of non-test
// selects over an identifier, such as "a.b.c".
func (e *Expr) QualifiedName() (string, bool) {
	if e == nil {
		return "", false
	}
	switch k := e.Kind.(type) {
	case *Ident:
		return k.Name, true
	case *Select:
		if k.TestOnly {
			return "", false
		}
		if prefix, ok := k.Operand.QualifiedName(); ok {
			return prefix + "." + k.Field, true
		}
	}
	return "", false
}
