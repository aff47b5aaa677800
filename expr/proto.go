// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package expr

import (
	"errors"
	"fmt"

	exprpb "cel.dev/expr"

	"github.com/stacklok/toolhive-cel/types"
)

// ErrMalformedProto is returned by FromProto for trees that violate the
// shape of cel.expr.Expr.
var ErrMalformedProto = errors.New("malformed expression proto")

// FromProto converts a cel.expr parsed tree. Nodes are renumbered in
// construction order and keep the offsets recorded for their original ids.
// Unexpanded macro calls, as produced by a parser running without macros,
// are expanded.
func FromProto(e *exprpb.Expr, info *exprpb.SourceInfo) (*Expr, *SourceInfo, error) {
	c := &protoConverter{
		b: NewBuilder(&SourceInfo{
			Description: info.GetLocation(),
			LineOffsets: info.GetLineOffsets(),
		}),
		positions: info.GetPositions(),
	}
	out, err := c.expr(e)
	if err != nil {
		return nil, nil, err
	}
	return out, c.b.SourceInfo(), nil
}

// FromParsedExpr converts a cel.expr.ParsedExpr.
func FromParsedExpr(p *exprpb.ParsedExpr) (*Expr, *SourceInfo, error) {
	return FromProto(p.GetExpr(), p.GetSourceInfo())
}

type protoConverter struct {
	b         *Builder
	positions map[int64]int32
}

func (c *protoConverter) exprs(es []*exprpb.Expr) ([]*Expr, error) {
	out := make([]*Expr, len(es))
	for i, e := range es {
		var err error
		if out[i], err = c.expr(e); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (c *protoConverter) expr(e *exprpb.Expr) (*Expr, error) {
	if e == nil {
		return nil, fmt.Errorf("%w: missing expression", ErrMalformedProto)
	}
	offset := c.positions[e.GetId()]
	switch k := e.GetExprKind().(type) {
	case *exprpb.Expr_ConstExpr:
		v, err := constant(k.ConstExpr)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", e.GetId(), err)
		}
		return c.b.NewConst(offset, v), nil
	case *exprpb.Expr_IdentExpr:
		return c.b.NewIdent(offset, k.IdentExpr.GetName()), nil
	case *exprpb.Expr_SelectExpr:
		operand, err := c.expr(k.SelectExpr.GetOperand())
		if err != nil {
			return nil, err
		}
		if k.SelectExpr.GetTestOnly() {
			return c.b.NewPresenceTest(offset, operand, k.SelectExpr.GetField()), nil
		}
		return c.b.NewSelect(offset, operand, k.SelectExpr.GetField()), nil
	case *exprpb.Expr_CallExpr:
		return c.call(offset, e.GetId(), k.CallExpr)
	case *exprpb.Expr_ListExpr:
		elems, err := c.exprs(k.ListExpr.GetElements())
		if err != nil {
			return nil, err
		}
		return c.b.NewList(offset, elems, k.ListExpr.GetOptionalIndices()...), nil
	case *exprpb.Expr_StructExpr:
		return c.createStruct(offset, k.StructExpr)
	case *exprpb.Expr_ComprehensionExpr:
		return c.comprehension(offset, k.ComprehensionExpr)
	}
	return nil, fmt.Errorf("%w: node %d has no kind", ErrMalformedProto, e.GetId())
}

func (c *protoConverter) call(offset int32, id int64, call *exprpb.Expr_Call) (*Expr, error) {
	if call.GetFunction() == "" {
		return nil, fmt.Errorf("%w: node %d calls an unnamed function", ErrMalformedProto, id)
	}
	var target *Expr
	if call.GetTarget() != nil {
		var err error
		if target, err = c.expr(call.GetTarget()); err != nil {
			return nil, err
		}
	}
	args, err := c.exprs(call.GetArgs())
	if err != nil {
		return nil, err
	}
	if target == nil {
		return c.b.NewCall(offset, call.GetFunction(), args...), nil
	}
	return c.b.NewMemberCall(offset, target, call.GetFunction(), args...), nil
}

func (c *protoConverter) createStruct(offset int32, s *exprpb.Expr_CreateStruct) (*Expr, error) {
	entries := make([]*Entry, 0, len(s.GetEntries()))
	for _, entry := range s.GetEntries() {
		entryOffset := c.positions[entry.GetId()]
		value, err := c.expr(entry.GetValue())
		if err != nil {
			return nil, err
		}
		switch key := entry.GetKeyKind().(type) {
		case *exprpb.Expr_CreateStruct_Entry_FieldKey:
			entries = append(entries, c.b.NewFieldEntry(entryOffset, key.FieldKey, value, entry.GetOptionalEntry()))
		case *exprpb.Expr_CreateStruct_Entry_MapKey:
			k, err := c.expr(key.MapKey)
			if err != nil {
				return nil, err
			}
			entries = append(entries, c.b.NewMapEntry(entryOffset, k, value, entry.GetOptionalEntry()))
		default:
			return nil, fmt.Errorf("%w: entry %d has no key", ErrMalformedProto, entry.GetId())
		}
	}
	if s.GetMessageName() == "" {
		return c.b.NewMap(offset, entries...), nil
	}
	return c.b.NewStruct(offset, s.GetMessageName(), entries...), nil
}

func (c *protoConverter) comprehension(offset int32, comp *exprpb.Expr_Comprehension) (*Expr, error) {
	parts, err := c.exprs([]*exprpb.Expr{
		comp.GetIterRange(), comp.GetAccuInit(), comp.GetLoopCondition(), comp.GetLoopStep(), comp.GetResult(),
	})
	if err != nil {
		return nil, err
	}
	return c.b.NewComprehension(offset, comp.GetIterVar(), parts[0],
		comp.GetAccuVar(), parts[1], parts[2], parts[3], parts[4]), nil
}

func constant(c *exprpb.Constant) (types.Val, error) {
	switch k := c.GetConstantKind().(type) {
	case *exprpb.Constant_NullValue:
		return types.NullValue, nil
	case *exprpb.Constant_BoolValue:
		return types.Bool(k.BoolValue), nil
	case *exprpb.Constant_Int64Value:
		return types.Int(k.Int64Value), nil
	case *exprpb.Constant_Uint64Value:
		return types.Uint(k.Uint64Value), nil
	case *exprpb.Constant_DoubleValue:
		return types.Double(k.DoubleValue), nil
	case *exprpb.Constant_StringValue:
		return types.String(k.StringValue), nil
	case *exprpb.Constant_BytesValue:
		return types.Bytes(k.BytesValue), nil
	case *exprpb.Constant_DurationValue:
		return types.Duration(k.DurationValue.AsDuration()), nil
	case *exprpb.Constant_TimestampValue:
		return types.Timestamp{Time: k.TimestampValue.AsTime()}, nil
	}
	return nil, fmt.Errorf("%w: constant has no kind", ErrMalformedProto)
}
