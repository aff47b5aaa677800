// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"fmt"
	"slices"
	"strings"
)

// ErrorKind categorizes an evaluation error by cause.
type ErrorKind string

// Error kinds.
const (
	ErrKindUnboundReference ErrorKind = "unbound_reference"
	ErrKindOverloadNotFound ErrorKind = "overload_not_found"
	ErrKindOverflow         ErrorKind = "overflow"
	ErrKindDivideByZero     ErrorKind = "divide_by_zero"
	ErrKindNotFound         ErrorKind = "not_found"
	ErrKindOutOfBounds      ErrorKind = "out_of_bounds"
	ErrKindKeyConflict      ErrorKind = "key_conflict"
	ErrKindUnsupportedKey   ErrorKind = "unsupported_key"
	ErrKindMalformedLiteral ErrorKind = "malformed_literal"
	ErrKindTypeMismatch     ErrorKind = "type_mismatch"
	ErrKindInvalidArgument  ErrorKind = "invalid_argument"
	ErrKindPlanning         ErrorKind = "planning"
)

// Err is an evaluation error. It is a value: it flows through evaluation like
// any other result and is never raised as a Go panic.
//
// An Err returned from evaluation is immutable. Merging produces a new Err
// whose Additional list holds the other errors.
type Err struct {
	// ID is the expression node the error originated from.
	ID         int64
	Kind       ErrorKind
	Message    string
	Additional []*Err
}

// NewErr creates an error for the node id.
func NewErr(id int64, kind ErrorKind, format string, args ...any) *Err {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &Err{ID: id, Kind: kind, Message: msg}
}

// Type implements Val.
func (*Err) Type() *Type { return ErrorType }

func (*Err) isVal() {}

// Error implements error. Attached errors are appended after the primary
// message.
func (e *Err) Error() string {
	if len(e.Additional) == 0 {
		return e.Message
	}
	var b strings.Builder
	b.WriteString(e.Message)
	for _, a := range e.Additional {
		b.WriteString("; ")
		b.WriteString(a.Error())
	}
	return b.String()
}

// Messages returns the primary message followed by every attached message.
func (e *Err) Messages() []string {
	msgs := []string{e.Message}
	for _, a := range e.Additional {
		msgs = append(msgs, a.Messages()...)
	}
	return msgs
}

// MergeErrors collapses errs into a single carrier. The first error is the
// primary one and the rest become attachments.
func MergeErrors(errs ...*Err) *Err {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	}
	first := errs[0]
	merged := &Err{
		ID:         first.ID,
		Kind:       first.Kind,
		Message:    first.Message,
		Additional: slices.Clone(first.Additional),
	}
	merged.Additional = append(merged.Additional, errs[1:]...)
	return merged
}

// Unknown marks a result that depends on inputs that were not provided. It
// carries the ids of the nodes that could not be resolved.
type Unknown struct {
	IDs []int64
}

// NewUnknown creates an unknown for the given node ids.
func NewUnknown(ids ...int64) *Unknown {
	return &Unknown{IDs: ids}
}

// Type implements Val.
func (*Unknown) Type() *Type { return UnknownType }

func (*Unknown) isVal() {}

// MergeUnknowns concatenates the node ids of all unknowns.
func MergeUnknowns(unknowns ...*Unknown) *Unknown {
	if len(unknowns) == 1 {
		return unknowns[0]
	}
	var ids []int64
	for _, u := range unknowns {
		ids = append(ids, u.IDs...)
	}
	return &Unknown{IDs: ids}
}

// InvalidArgument reports a bad argument passed to a function.
func InvalidArgument(id int64, function, issue string) *Err {
	return NewErr(id, ErrKindInvalidArgument, "invalid argument to function %s: %s", function, issue)
}

// TypeMismatch reports a value of an unexpected type.
func TypeMismatch(id int64, expected string, actual Val) *Err {
	return NewErr(id, ErrKindTypeMismatch, "type mismatch: %s vs %s", expected, typeNameOf(actual))
}

// TypeNotFound reports an unknown type name.
func TypeNotFound(id int64, name string) *Err {
	return NewErr(id, ErrKindUnboundReference, "type not found: %s", name)
}

// UnresolvedAttribute reports an attribute that could not be resolved.
func UnresolvedAttribute(id int64) *Err {
	return NewErr(id, ErrKindUnboundReference, "unresolved attribute")
}

// UndeclaredReference reports an identifier bound neither in the activation
// nor in the type provider.
func UndeclaredReference(id int64, name, container string) *Err {
	return NewErr(id, ErrKindUnboundReference, "undeclared reference to '%s' (in container '%s')", name, container)
}

// UnboundFunction reports a call to a function that is not registered.
func UnboundFunction(id int64, name string) *Err {
	return NewErr(id, ErrKindUnboundReference, "unbound function: %s", name)
}

// OverloadNotFound reports that no overload of function accepts args.
func OverloadNotFound(id int64, function string, args []Val) *Err {
	names := make([]string, len(args))
	for i, a := range args {
		names[i] = typeNameOf(a)
	}
	return NewErr(id, ErrKindOverloadNotFound,
		"found no matching overload for '%s' applied to '(%s)'", function, strings.Join(names, ", "))
}

// IndexOutOfBounds reports a list index outside [0, length).
func IndexOutOfBounds(id int64, index int64, length int) *Err {
	return NewErr(id, ErrKindOutOfBounds, "index %d out of bounds [0, %d)", index, length)
}

// FieldNotFound reports a missing field or map key selected by name.
func FieldNotFound(id int64, name string) *Err {
	return NewErr(id, ErrKindNotFound, "field not found: %s", name)
}

// KeyNotFound reports a missing map key.
func KeyNotFound(id int64) *Err {
	return NewErr(id, ErrKindNotFound, "key not found")
}

// UnsupportedKeyType reports a value that cannot be used as a map key or
// index.
func UnsupportedKeyType(id int64) *Err {
	return NewErr(id, ErrKindUnsupportedKey, "unsupported key type")
}

// MapKeyConflict reports a duplicate key in a map or message literal.
func MapKeyConflict(id int64, key Val) *Err {
	return NewErr(id, ErrKindKeyConflict, "map key conflict: %s", Format(key))
}

// DivideByZero reports a division of an integral type by zero.
func DivideByZero(id int64, t *Type) *Err {
	return NewErr(id, ErrKindDivideByZero, "%s divide by zero", t.Name())
}

// ModulusByZero reports a modulus of an integral type by zero.
func ModulusByZero(id int64, t *Type) *Err {
	return NewErr(id, ErrKindDivideByZero, "%s modulus by zero", t.Name())
}

// Overflow reports an arithmetic result outside the range of t.
func Overflow(id int64, t *Type, op string) *Err {
	return NewErr(id, ErrKindOverflow, "%s return error for overflow during %s", t.Name(), op)
}

// BadTimestamp reports a timestamp outside the supported range.
func BadTimestamp(id int64) *Err {
	return NewErr(id, ErrKindOverflow, "timestamp out of range")
}

// BadDuration reports a duration that does not fit 64 bits of nanoseconds.
func BadDuration(id int64) *Err {
	return NewErr(id, ErrKindOverflow, "duration out of range")
}

// BadTimestampString reports a timestamp literal that failed to parse.
func BadTimestampString(id int64, issue string) *Err {
	return NewErr(id, ErrKindMalformedLiteral, "Failed to parse timestamp: %s", issue)
}

// BadDurationString reports a duration literal that failed to parse.
func BadDurationString(id int64, issue string) *Err {
	return NewErr(id, ErrKindMalformedLiteral, "Failed to parse duration: %s", issue)
}

// BadStringBytes reports bytes that are not valid UTF-8.
func BadStringBytes(id int64, issue string) *Err {
	return NewErr(id, ErrKindMalformedLiteral, "Failed to decode bytes as string: %s", issue)
}

// UnrecognizedAny reports a packed Any whose type is not registered.
func UnrecognizedAny(id int64, typeURL string) *Err {
	return NewErr(id, ErrKindUnboundReference, "unrecognized any type: %s", typeURL)
}

// BadTimezone reports an unparseable timezone argument.
func BadTimezone(id int64, tz string) *Err {
	return NewErr(id, ErrKindInvalidArgument, "invalid timezone: %s", tz)
}

// IndexAccessNotSupported reports an index operation on a value that has no
// elements.
func IndexAccessNotSupported(id int64, v Val) *Err {
	return NewErr(id, ErrKindTypeMismatch, "index access not supported for %s", v.Type().FullName())
}

// NameAccessNotSupported reports a field selection on a value that has no
// fields.
func NameAccessNotSupported(id int64, v Val) *Err {
	return NewErr(id, ErrKindTypeMismatch, "%s cannot be accessed by string", v.Type().FullName())
}

func typeNameOf(v Val) string {
	if v == nil {
		return "undefined"
	}
	return v.Type().Name()
}
