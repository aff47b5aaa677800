// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package cel

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stacklok/toolhive-cel/expr"
	"github.com/stacklok/toolhive-cel/interpreter"
	"github.com/stacklok/toolhive-cel/parser"
	"github.com/stacklok/toolhive-cel/types"
)

// Sentinel errors for CEL operations.
var (
	// ErrExpressionCheck is returned when a CEL expression is too long or fails to parse.
	ErrExpressionCheck = errors.New("CEL expression check failed")

	// ErrPlan is returned when a parsed CEL expression cannot be planned.
	ErrPlan = errors.New("CEL expression planning failed")

	// ErrEvaluation is returned when CEL expression evaluation fails.
	ErrEvaluation = errors.New("CEL expression evaluation failed")

	// ErrInvalidResult is returned when the CEL expression returns an unexpected type.
	ErrInvalidResult = errors.New("CEL expression returned invalid result type")
)

// ErrKind is a string identifying the type of CEL error.
type ErrKind string

const (
	// ErrKindParse indicates a syntax error in the CEL expression.
	ErrKindParse ErrKind = "parse"
	// ErrKindPlan indicates the expression could not be planned.
	ErrKindPlan ErrKind = "plan"
	// ErrKindEval indicates the expression evaluated to an error.
	ErrKindEval ErrKind = "eval"
)

// ErrInstance represents one occurrence of an error in a CEL expression.
type ErrInstance struct {
	Line int    `json:"line,omitempty"`
	Col  int    `json:"col,omitempty"`
	Msg  string `json:"msg,omitempty"`
	Kind string `json:"kind,omitempty"`
}

// ErrDetails contains structured error information for CEL expressions.
type ErrDetails struct {
	Errors []ErrInstance `json:"errors,omitempty"`
	Source string        `json:"source,omitempty"`
}

// AsJSON returns the ErrDetails as a JSON string.
func (ed *ErrDetails) AsJSON() string {
	edBytes, err := json.Marshal(ed)
	if err != nil {
		return fmt.Sprintf(`{"error": "failed to marshal JSON: %s"}`, err)
	}
	return string(edBytes)
}

// errDetailsFromParser converts parser issues to ErrDetails.
func errDetailsFromParser(source string, err error) ErrDetails {
	ed := ErrDetails{Source: source}

	var perr *parser.Error
	if !errors.As(err, &perr) {
		ed.Errors = []ErrInstance{{Msg: err.Error()}}
		return ed
	}
	ed.Errors = make([]ErrInstance, 0, len(perr.Issues))
	for _, issue := range perr.Issues {
		ed.Errors = append(ed.Errors, ErrInstance{
			Line: issue.Line,
			Col:  issue.Col,
			Msg:  issue.Message,
		})
	}
	return ed
}

// errInstance locates an error at the node id, when the position is known.
func errInstance(info *expr.SourceInfo, id int64, msg, kind string) ErrInstance {
	inst := ErrInstance{Msg: msg, Kind: kind}
	if line, col, ok := info.Location(id); ok {
		inst.Line, inst.Col = line, col
	}
	return inst
}

// ParseError represents a CEL syntax error with location information.
type ParseError struct {
	ErrDetails
	original error
}

// Error implements the error interface for ParseError.
func (pe *ParseError) Error() string {
	return fmt.Sprintf("CEL %s error in expression %q: %s", ErrKindParse, pe.Source, pe.original)
}

// Unwrap returns the underlying error.
func (pe *ParseError) Unwrap() error {
	return pe.original
}

// PlanError represents an expression tree that could not be planned, such as
// a message literal of an unknown type.
type PlanError struct {
	ErrDetails
	original error
}

// Error implements the error interface for PlanError.
func (pe *PlanError) Error() string {
	return fmt.Sprintf("CEL %s error in expression %q: %s", ErrKindPlan, pe.Source, pe.original)
}

// Unwrap returns the underlying error.
func (pe *PlanError) Unwrap() error {
	return pe.original
}

// EvalError represents an evaluation that produced an error value. Cause is
// the error value itself, with any merged errors in Cause.Additional.
type EvalError struct {
	ErrDetails
	Cause    *types.Err
	original error
}

// Error implements the error interface for EvalError.
func (ee *EvalError) Error() string {
	return fmt.Sprintf("CEL %s error in expression %q: %s", ErrKindEval, ee.Source, ee.original)
}

// Unwrap returns the underlying error.
func (ee *EvalError) Unwrap() error {
	return ee.original
}

// newParseError creates a ParseError from a parser failure.
func newParseError(source string, err error) error {
	return &ParseError{
		ErrDetails: errDetailsFromParser(source, err),
		original:   fmt.Errorf("%w: %w", ErrExpressionCheck, err),
	}
}

// newPlanError creates a PlanError from a planner failure or a recovered panic.
func newPlanError(source string, info *expr.SourceInfo, err error) error {
	ed := ErrDetails{Source: source}
	var perr *interpreter.PlanError
	if errors.As(err, &perr) {
		ed.Errors = []ErrInstance{errInstance(info, perr.ID, perr.Err.Error(), "")}
	} else {
		ed.Errors = []ErrInstance{{Msg: err.Error()}}
	}
	return &PlanError{
		ErrDetails: ed,
		original:   fmt.Errorf("%w: %w", ErrPlan, err),
	}
}

// newEvalError creates an EvalError from an error value, listing the merged
// errors after the primary one.
func newEvalError(source string, info *expr.SourceInfo, cause *types.Err) error {
	ed := ErrDetails{Source: source}
	ed.Errors = append(ed.Errors, errInstance(info, cause.ID, cause.Message, string(cause.Kind)))
	for _, e := range cause.Additional {
		ed.Errors = append(ed.Errors, errInstance(info, e.ID, e.Message, string(e.Kind)))
	}
	return &EvalError{
		ErrDetails: ed,
		Cause:      cause,
		original:   fmt.Errorf("%w: %w", ErrEvaluation, cause),
	}
}
