// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package interpreter

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedExpr is returned when an expression tree violates a
	// construction rule, such as a comprehension without a loop step. It
	// points at a defect in the front end rather than in the expression.
	ErrMalformedExpr = errors.New("malformed expression")

	// ErrTypeNotFound is returned when a message literal names a type the
	// type provider does not know.
	ErrTypeNotFound = errors.New("type not found")
)

// PlanError is a planning failure attributed to an expression node.
type PlanError struct {
	// ID is the node the failure was detected at.
	ID  int64
	Err error
}

func (e *PlanError) Error() string {
	return e.Err.Error()
}

func (e *PlanError) Unwrap() error {
	return e.Err
}

func malformed(id int64, format string, args ...any) *PlanError {
	return &PlanError{ID: id, Err: fmt.Errorf("%w: %s", ErrMalformedExpr, fmt.Sprintf(format, args...))}
}
