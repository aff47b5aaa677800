// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"bytes"
	"strconv"
	"time"
)

// Val is a CEL evaluation result: a concrete value, an *Err or an *Unknown.
// A nil Val means undefined, which is distinct from both an error and null.
//
// The set of implementations is closed; every dispatch site switches over the
// concrete types declared in this package.
type Val interface {
	// Type returns the runtime type tag of the value.
	Type() *Type

	isVal()
}

// Null is the CEL null value.
type Null struct{}

// NullValue is the singleton null.
var NullValue = Null{}

// Type implements Val.
func (Null) Type() *Type { return NullType }

func (Null) isVal() {}

// TypedNull is the value of an unset message-typed field. It equals null and
// other typed nulls of the same message type, and field selection on it reads
// from Zero, the default instance of the message.
type TypedNull struct {
	TypeName string
	Zero     Val
}

// Type implements Val.
func (n TypedNull) Type() *Type {
	if n.Zero == nil {
		return NullType
	}
	return n.Zero.Type()
}

func (TypedNull) isVal() {}

// Bool is a CEL bool.
type Bool bool

// Type implements Val.
func (Bool) Type() *Type { return BoolType }

func (Bool) isVal() {}

// Int is a CEL signed 64-bit integer.
type Int int64

// Type implements Val.
func (Int) Type() *Type { return IntType }

func (Int) isVal() {}

// Uint is a CEL unsigned 64-bit integer. It is not substitutable for Int.
type Uint uint64

// Type implements Val.
func (Uint) Type() *Type { return UintType }

func (Uint) isVal() {}

// Double is a CEL IEEE-754 double.
type Double float64

// Type implements Val.
func (Double) Type() *Type { return DoubleType }

func (Double) isVal() {}

// String is a CEL UTF-8 string.
type String string

// Type implements Val.
func (String) Type() *Type { return StringType }

func (String) isVal() {}

// Bytes is a CEL byte sequence.
type Bytes []byte

// Type implements Val.
func (Bytes) Type() *Type { return BytesType }

func (Bytes) isVal() {}

// Timestamp is a CEL timestamp, always normalized to UTC.
type Timestamp struct {
	time.Time
}

// Type implements Val.
func (Timestamp) Type() *Type { return TimestampType }

func (Timestamp) isVal() {}

// Duration is a CEL duration with nanosecond precision.
type Duration time.Duration

// Type implements Val.
func (Duration) Type() *Type { return DurationType }

func (Duration) isVal() {}

// True and False are the boolean singletons.
const (
	True  = Bool(true)
	False = Bool(false)
)

// IsError reports whether v is an *Err.
func IsError(v Val) bool {
	_, ok := v.(*Err)
	return ok
}

// IsUnknown reports whether v is an *Unknown.
func IsUnknown(v Val) bool {
	_, ok := v.(*Unknown)
	return ok
}

// IsErrorOrUnknown reports whether v is an *Err or an *Unknown.
func IsErrorOrUnknown(v Val) bool {
	switch v.(type) {
	case *Err, *Unknown:
		return true
	}
	return false
}

// MergeResults folds the errors and unknowns found in args into a single
// result. Unknowns take precedence over errors. It returns nil when every
// argument is a concrete value.
func MergeResults(args []Val) Val {
	var (
		unknowns []*Unknown
		errs     []*Err
	)
	for _, arg := range args {
		switch a := arg.(type) {
		case *Unknown:
			unknowns = append(unknowns, a)
		case *Err:
			errs = append(errs, a)
		}
	}
	if len(unknowns) > 0 {
		return MergeUnknowns(unknowns...)
	}
	if len(errs) > 0 {
		return MergeErrors(errs...)
	}
	return nil
}

// Format renders v for error messages.
func Format(v Val) string {
	switch t := v.(type) {
	case nil:
		return "undefined"
	case Null, TypedNull:
		return "null"
	case Bool:
		return strconv.FormatBool(bool(t))
	case Int:
		return strconv.FormatInt(int64(t), 10)
	case Uint:
		return strconv.FormatUint(uint64(t), 10) + "u"
	case Double:
		return strconv.FormatFloat(float64(t), 'g', -1, 64)
	case String:
		return string(t)
	case Bytes:
		return strconv.Quote(string(t))
	case Timestamp:
		return t.UTC().Format(time.RFC3339Nano)
	case Duration:
		return FormatDuration(t)
	case *Type:
		return t.FullName()
	case *Err:
		return t.Message
	case *Unknown:
		return "unknown"
	default:
		return v.Type().FullName()
	}
}

func compareBytes(lhs, rhs []byte) int {
	return bytes.Compare(lhs, rhs)
}
