// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package functions

import (
	"errors"
	"strconv"
	"unicode/utf8"

	"github.com/google/cel-go/common/overloads"

	"github.com/stacklok/toolhive-cel/types"
)

const conversion = "conversion"

// parseError maps a strconv failure onto an overflow or an invalid argument.
func parseError(id int64, fn string, t *types.Type, err error) *types.Err {
	if errors.Is(err, strconv.ErrRange) {
		return types.Overflow(id, t, conversion)
	}
	return types.InvalidArgument(id, fn, err.Error())
}

func uintToInt(id int64, x types.Val) types.Val {
	u, ok := x.(types.Uint)
	if !ok {
		return nil
	}
	if u > types.Uint(maxInt64) {
		return types.Overflow(id, types.IntType, conversion)
	}
	return types.Int(u)
}

const maxInt64 = 1<<63 - 1

func doubleToInt(id int64, x types.Val) types.Val {
	d, ok := x.(types.Double)
	if !ok {
		return nil
	}
	n, ok := types.DoubleToInt(float64(d))
	if !ok {
		return types.Overflow(id, types.IntType, conversion)
	}
	return types.Int(n)
}

func stringToInt(id int64, x types.Val) types.Val {
	s, ok := x.(types.String)
	if !ok {
		return nil
	}
	n, err := strconv.ParseInt(string(s), 10, 64)
	if err != nil {
		return parseError(id, overloads.TypeConvertInt, types.IntType, err)
	}
	return types.Int(n)
}

func timestampToInt(_ int64, x types.Val) types.Val {
	t, ok := x.(types.Timestamp)
	if !ok {
		return nil
	}
	return types.Int(t.Unix())
}

// durationToInt truncates to whole seconds.
func durationToInt(_ int64, x types.Val) types.Val {
	d, ok := x.(types.Duration)
	if !ok {
		return nil
	}
	return types.Int(int64(d) / 1e9)
}

var toIntFunc = Unary(overloads.TypeConvertInt, nil, func(id int64, x types.Val) types.Val {
	switch x.(type) {
	case types.Int:
		return x
	case types.Uint:
		return uintToInt(id, x)
	case types.Double:
		return doubleToInt(id, x)
	case types.String:
		return stringToInt(id, x)
	case types.Timestamp:
		return timestampToInt(id, x)
	case types.Duration:
		return durationToInt(id, x)
	}
	return nil
})

func intToUint(id int64, x types.Val) types.Val {
	n, ok := x.(types.Int)
	if !ok {
		return nil
	}
	if n < 0 {
		return types.Overflow(id, types.UintType, conversion)
	}
	return types.Uint(n)
}

func doubleToUint(id int64, x types.Val) types.Val {
	d, ok := x.(types.Double)
	if !ok {
		return nil
	}
	u, ok := types.DoubleToUint(float64(d))
	if !ok {
		return types.Overflow(id, types.UintType, conversion)
	}
	return types.Uint(u)
}

func stringToUint(id int64, x types.Val) types.Val {
	s, ok := x.(types.String)
	if !ok {
		return nil
	}
	u, err := strconv.ParseUint(string(s), 10, 64)
	if err != nil {
		return parseError(id, overloads.TypeConvertUint, types.UintType, err)
	}
	return types.Uint(u)
}

var toUintFunc = Unary(overloads.TypeConvertUint, nil, func(id int64, x types.Val) types.Val {
	switch x.(type) {
	case types.Uint:
		return x
	case types.Int:
		return intToUint(id, x)
	case types.Double:
		return doubleToUint(id, x)
	case types.String:
		return stringToUint(id, x)
	}
	return nil
})

func intToDouble(_ int64, x types.Val) types.Val {
	if n, ok := x.(types.Int); ok {
		return types.Double(n)
	}
	return nil
}

func uintToDouble(_ int64, x types.Val) types.Val {
	if u, ok := x.(types.Uint); ok {
		return types.Double(u)
	}
	return nil
}

func stringToDouble(id int64, x types.Val) types.Val {
	s, ok := x.(types.String)
	if !ok {
		return nil
	}
	d, err := strconv.ParseFloat(string(s), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return types.InvalidArgument(id, overloads.TypeConvertDouble, err.Error())
	}
	return types.Double(d)
}

var toDoubleFunc = Unary(overloads.TypeConvertDouble, nil, func(id int64, x types.Val) types.Val {
	switch x.(type) {
	case types.Double:
		return x
	case types.Int:
		return intToDouble(id, x)
	case types.Uint:
		return uintToDouble(id, x)
	case types.String:
		return stringToDouble(id, x)
	}
	return nil
})

func stringToBool(_ int64, x types.Val) types.Val {
	s, ok := x.(types.String)
	if !ok {
		return nil
	}
	switch s {
	case "true", "True", "TRUE", "t", "1":
		return types.True
	case "false", "False", "FALSE", "f", "0":
		return types.False
	}
	return nil
}

var toBoolFunc = Unary(overloads.TypeConvertBool, nil, func(id int64, x types.Val) types.Val {
	switch x.(type) {
	case types.Bool:
		return x
	case types.String:
		return stringToBool(id, x)
	}
	return nil
})

func stringToBytes(_ int64, x types.Val) types.Val {
	if s, ok := x.(types.String); ok {
		return types.Bytes(s)
	}
	return nil
}

var toBytesFunc = Unary(overloads.TypeConvertBytes, nil, func(id int64, x types.Val) types.Val {
	switch x.(type) {
	case types.Bytes:
		return x
	case types.String:
		return stringToBytes(id, x)
	}
	return nil
})

// toString renders scalars the way string() does. Uints carry no suffix.
func toString(id int64, x types.Val) types.Val {
	switch v := x.(type) {
	case types.String:
		return v
	case types.Bool:
		return types.String(strconv.FormatBool(bool(v)))
	case types.Int:
		return types.String(strconv.FormatInt(int64(v), 10))
	case types.Uint:
		return types.String(strconv.FormatUint(uint64(v), 10))
	case types.Double:
		return types.String(strconv.FormatFloat(float64(v), 'g', -1, 64))
	case types.Bytes:
		if !utf8.Valid(v) {
			return types.BadStringBytes(id, "invalid UTF-8")
		}
		return types.String(v)
	case types.Timestamp:
		return types.String(types.FormatTimestamp(v))
	case types.Duration:
		return types.String(types.FormatDuration(v))
	}
	return nil
}

// toStringOf restricts toString to values of kind.
func toStringOf(kind types.Kind) func(int64, types.Val) types.Val {
	return func(id int64, x types.Val) types.Val {
		if x.Type().Kind() != kind {
			return nil
		}
		return toString(id, x)
	}
}

func stringToTimestamp(id int64, x types.Val) types.Val {
	if s, ok := x.(types.String); ok {
		return types.ParseTimestamp(id, string(s))
	}
	return nil
}

// intToTimestamp reads seconds since the Unix epoch.
func intToTimestamp(id int64, x types.Val) types.Val {
	if n, ok := x.(types.Int); ok {
		return types.NewTimestamp(id, int64(n), 0)
	}
	return nil
}

var toTimestampFunc = Unary(overloads.TypeConvertTimestamp, nil, func(id int64, x types.Val) types.Val {
	switch x.(type) {
	case types.Timestamp:
		return x
	case types.String:
		return stringToTimestamp(id, x)
	case types.Int:
		return intToTimestamp(id, x)
	}
	return nil
})

func stringToDuration(id int64, x types.Val) types.Val {
	if s, ok := x.(types.String); ok {
		return types.ParseDuration(id, string(s))
	}
	return nil
}

// intToDuration reads whole seconds.
func intToDuration(id int64, x types.Val) types.Val {
	if n, ok := x.(types.Int); ok {
		return types.NewDuration(id, int64(n), 0)
	}
	return nil
}

var toDurationFunc = Unary(overloads.TypeConvertDuration, nil, func(id int64, x types.Val) types.Val {
	switch x.(type) {
	case types.Duration:
		return x
	case types.String:
		return stringToDuration(id, x)
	case types.Int:
		return intToDuration(id, x)
	}
	return nil
})

var typeFunc = Unary(overloads.TypeConvertType, nil, func(_ int64, x types.Val) types.Val {
	return x.Type()
})

func addCasts(r *Registry) {
	name := overloads.TypeConvertInt
	r.mustAdd(toIntFunc,
		Unary(name, []string{overloads.IntToInt}, identity),
		Unary(name, []string{overloads.UintToInt}, uintToInt),
		Unary(name, []string{overloads.DoubleToInt}, doubleToInt),
		Unary(name, []string{overloads.StringToInt}, stringToInt),
		Unary(name, []string{overloads.TimestampToInt}, timestampToInt),
		Unary(name, []string{overloads.DurationToInt}, durationToInt),
	)
	name = overloads.TypeConvertUint
	r.mustAdd(toUintFunc,
		Unary(name, []string{overloads.UintToUint}, identity),
		Unary(name, []string{overloads.IntToUint}, intToUint),
		Unary(name, []string{overloads.DoubleToUint}, doubleToUint),
		Unary(name, []string{overloads.StringToUint}, stringToUint),
	)
	name = overloads.TypeConvertDouble
	r.mustAdd(toDoubleFunc,
		Unary(name, []string{overloads.DoubleToDouble}, identity),
		Unary(name, []string{overloads.IntToDouble}, intToDouble),
		Unary(name, []string{overloads.UintToDouble}, uintToDouble),
		Unary(name, []string{overloads.StringToDouble}, stringToDouble),
	)
	name = overloads.TypeConvertBool
	r.mustAdd(toBoolFunc,
		Unary(name, []string{overloads.BoolToBool}, identity),
		Unary(name, []string{overloads.StringToBool}, stringToBool),
	)
	name = overloads.TypeConvertBytes
	r.mustAdd(toBytesFunc,
		Unary(name, []string{overloads.BytesToBytes}, identity),
		Unary(name, []string{overloads.StringToBytes}, stringToBytes),
	)
	name = overloads.TypeConvertString
	r.mustAdd(Unary(name, nil, toString),
		Unary(name, []string{overloads.StringToString}, identity),
		Unary(name, []string{overloads.BoolToString}, toStringOf(types.KindBool)),
		Unary(name, []string{overloads.IntToString}, toStringOf(types.KindInt)),
		Unary(name, []string{overloads.UintToString}, toStringOf(types.KindUint)),
		Unary(name, []string{overloads.DoubleToString}, toStringOf(types.KindDouble)),
		Unary(name, []string{overloads.BytesToString}, toStringOf(types.KindBytes)),
		Unary(name, []string{overloads.TimestampToString}, toStringOf(types.KindTimestamp)),
		Unary(name, []string{overloads.DurationToString}, toStringOf(types.KindDuration)),
	)
	name = overloads.TypeConvertTimestamp
	r.mustAdd(toTimestampFunc,
		Unary(name, []string{overloads.TimestampToTimestamp}, identity),
		Unary(name, []string{overloads.StringToTimestamp}, stringToTimestamp),
		Unary(name, []string{overloads.IntToTimestamp}, intToTimestamp),
	)
	name = overloads.TypeConvertDuration
	r.mustAdd(toDurationFunc,
		Unary(name, []string{overloads.DurationToDuration}, identity),
		Unary(name, []string{overloads.StringToDuration}, stringToDuration),
		Unary(name, []string{overloads.IntToDuration}, intToDuration),
	)
	r.mustAdd(typeFunc)
	r.mustAdd(Unary(overloads.TypeConvertDyn, []string{overloads.ToDyn}, identity))
}
