// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package expr

import (
	"github.com/stacklok/toolhive-cel/types"
)

// Builder creates expression nodes with fresh ids and records the offset of
// each node in its SourceInfo. Calls that have the shape of a macro are
// expanded as they are built, so every front end that constructs trees
// through a Builder produces the same canonical form.
//
// A Builder is not safe for concurrent use.
type Builder struct {
	prevID int64
	info   *SourceInfo
}

// NewBuilder creates a builder that records positions into info. A nil info
// starts an empty one.
func NewBuilder(info *SourceInfo) *Builder {
	if info == nil {
		info = &SourceInfo{}
	}
	if info.Positions == nil {
		info.Positions = map[int64]int32{}
	}
	return &Builder{info: info}
}

// SourceInfo returns the positions recorded so far.
func (b *Builder) SourceInfo() *SourceInfo { return b.info }

// LastID returns the most recently assigned id.
func (b *Builder) LastID() int64 { return b.prevID }

func (b *Builder) nextID(offset int32) int64 {
	b.prevID++
	b.info.Positions[b.prevID] = offset
	return b.prevID
}

func (b *Builder) newExpr(offset int32, kind ExprKind) *Expr {
	return &Expr{ID: b.nextID(offset), Kind: kind}
}

// NewConst creates a literal.
func (b *Builder) NewConst(offset int32, v types.Val) *Expr {
	return b.newExpr(offset, &Const{Value: v})
}

// NewIdent creates an identifier reference.
func (b *Builder) NewIdent(offset int32, name string) *Expr {
	return b.newExpr(offset, &Ident{Name: name})
}

// NewSelect creates a field selection.
func (b *Builder) NewSelect(offset int32, operand *Expr, field string) *Expr {
	return b.newExpr(offset, &Select{Operand: operand, Field: field})
}

// NewPresenceTest creates the expansion of has(operand.field).
func (b *Builder) NewPresenceTest(offset int32, operand *Expr, field string) *Expr {
	return b.newExpr(offset, &Select{Operand: operand, Field: field, TestOnly: true})
}

// NewCall creates a global call. has(a.b) is expanded into a presence test.
func (b *Builder) NewCall(offset int32, function string, args ...*Expr) *Expr {
	if expanded, ok := b.expandGlobalMacro(function, args); ok {
		return expanded
	}
	return b.newExpr(offset, &Call{Function: function, Args: args})
}

// NewMemberCall creates target.function(args). The comprehension macros
// all, exists, exists_one, map and filter are expanded.
func (b *Builder) NewMemberCall(offset int32, target *Expr, function string, args ...*Expr) *Expr {
	if expanded, ok := b.expandMemberMacro(offset, target, function, args); ok {
		return expanded
	}
	return b.newExpr(offset, &Call{Function: function, Target: target, Args: args})
}

// NewList creates a list literal. optionalIndices marks the ?elem entries.
func (b *Builder) NewList(offset int32, elements []*Expr, optionalIndices ...int32) *Expr {
	return b.newExpr(offset, &CreateList{Elements: elements, OptionalIndices: optionalIndices})
}

// NewMap creates a map literal.
func (b *Builder) NewMap(offset int32, entries ...*Entry) *Expr {
	return b.newExpr(offset, &CreateStruct{Entries: entries})
}

// NewStruct creates a message literal of the named type.
func (b *Builder) NewStruct(offset int32, messageName string, entries ...*Entry) *Expr {
	return b.newExpr(offset, &CreateStruct{MessageName: messageName, Entries: entries})
}

// NewMapEntry creates a key: value entry of a map literal.
func (b *Builder) NewMapEntry(offset int32, key, value *Expr, optional bool) *Entry {
	return &Entry{ID: b.nextID(offset), MapKey: key, Value: value, Optional: optional}
}

// NewFieldEntry creates a field: value entry of a message literal.
func (b *Builder) NewFieldEntry(offset int32, field string, value *Expr, optional bool) *Entry {
	return &Entry{ID: b.nextID(offset), FieldKey: field, Value: value, Optional: optional}
}

// NewComprehension creates a fold.
func (b *Builder) NewComprehension(offset int32, iterVar string, iterRange *Expr,
	accuVar string, accuInit, loopCondition, loopStep, result *Expr) *Expr {
	return b.newExpr(offset, &Comprehension{
		IterVar:       iterVar,
		IterRange:     iterRange,
		AccuVar:       accuVar,
		AccuInit:      accuInit,
		LoopCondition: loopCondition,
		LoopStep:      loopStep,
		Result:        result,
	})
}
