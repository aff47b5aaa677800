// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"math"
	"math/bits"
)

const (
	maxInt64AsUint = uint64(math.MaxInt64)
	// twoTo63 and twoTo64 are exactly representable as doubles.
	twoTo63 = 9223372036854775808.0
	twoTo64 = 18446744073709551616.0
)

// IsNumber reports whether v is an Int, Uint or Double.
func IsNumber(v Val) bool {
	switch v.(type) {
	case Int, Uint, Double:
		return true
	}
	return false
}

// IsNaN reports whether v is a Double NaN.
func IsNaN(v Val) bool {
	d, ok := v.(Double)
	return ok && math.IsNaN(float64(d))
}

// compareNumbers orders two numbers by mathematical value. It reports false
// when either side is not a number or is NaN.
func compareNumbers(lhs, rhs Val) (int, bool) {
	switch l := lhs.(type) {
	case Int:
		switch r := rhs.(type) {
		case Int:
			return cmp3(l < r, l > r), true
		case Uint:
			return compareIntUint(int64(l), uint64(r)), true
		case Double:
			return compareIntDouble(int64(l), float64(r))
		}
	case Uint:
		switch r := rhs.(type) {
		case Int:
			return -compareIntUint(int64(r), uint64(l)), true
		case Uint:
			return cmp3(l < r, l > r), true
		case Double:
			return compareUintDouble(uint64(l), float64(r))
		}
	case Double:
		if math.IsNaN(float64(l)) {
			return 0, false
		}
		switch r := rhs.(type) {
		case Int:
			c, ok := compareIntDouble(int64(r), float64(l))
			return -c, ok
		case Uint:
			c, ok := compareUintDouble(uint64(r), float64(l))
			return -c, ok
		case Double:
			if math.IsNaN(float64(r)) {
				return 0, false
			}
			return cmp3(l < r, l > r), true
		}
	}
	return 0, false
}

func cmp3(less, greater bool) int {
	switch {
	case less:
		return -1
	case greater:
		return 1
	}
	return 0
}

func compareIntUint(i int64, u uint64) int {
	if i < 0 {
		return -1
	}
	return cmp3(uint64(i) < u, uint64(i) > u)
}

func compareIntDouble(i int64, d float64) (int, bool) {
	switch {
	case math.IsNaN(d):
		return 0, false
	case d < -twoTo63:
		return 1, true
	case d >= twoTo63:
		return -1, true
	}
	t := math.Trunc(d)
	ti := int64(t)
	if i != ti {
		return cmp3(i < ti, i > ti), true
	}
	frac := d - t
	return cmp3(frac > 0, frac < 0), true
}

func compareUintDouble(u uint64, d float64) (int, bool) {
	switch {
	case math.IsNaN(d):
		return 0, false
	case d < 0:
		return 1, true
	case d >= twoTo64:
		return -1, true
	}
	t := math.Trunc(d)
	tu := uint64(t)
	if u != tu {
		return cmp3(u < tu, u > tu), true
	}
	return cmp3(d > t, false), true
}

func doubleToInt64Exact(d float64) (int64, bool) {
	if d != math.Trunc(d) || d < -twoTo63 || d >= twoTo63 {
		return 0, false
	}
	return int64(d), true
}

func doubleToUint64Exact(d float64) (uint64, bool) {
	if d != math.Trunc(d) || d < 0 || d >= twoTo64 {
		return 0, false
	}
	return uint64(d), true
}

// DoubleToInt truncates d toward zero. It reports false for NaN and for values
// outside (-2^63, 2^63).
func DoubleToInt(d float64) (int64, bool) {
	if math.IsNaN(d) || d <= -twoTo63 || d >= twoTo63 {
		return 0, false
	}
	return int64(d), true
}

// DoubleToUint truncates d toward zero. It reports false for NaN and for values
// outside [0, 2^64).
func DoubleToUint(d float64) (uint64, bool) {
	if math.IsNaN(d) || d < 0 || d >= twoTo64 {
		return 0, false
	}
	return uint64(d), true
}

// AddInt64 adds with overflow detection.
func AddInt64(a, b int64) (int64, bool) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, false
	}
	return a + b, true
}

// SubInt64 subtracts with overflow detection.
func SubInt64(a, b int64) (int64, bool) {
	if (b < 0 && a > math.MaxInt64+b) || (b > 0 && a < math.MinInt64+b) {
		return 0, false
	}
	return a - b, true
}

// MulInt64 multiplies with overflow detection.
func MulInt64(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	r := a * b
	if r/b != a {
		return 0, false
	}
	return r, true
}

// DivInt64 divides. The caller checks for a zero divisor.
func DivInt64(a, b int64) (int64, bool) {
	if a == math.MinInt64 && b == -1 {
		return 0, false
	}
	return a / b, true
}

// NegInt64 negates with overflow detection.
func NegInt64(a int64) (int64, bool) {
	if a == math.MinInt64 {
		return 0, false
	}
	return -a, true
}

// AddUint64 adds with overflow detection.
func AddUint64(a, b uint64) (uint64, bool) {
	sum, carry := bits.Add64(a, b, 0)
	return sum, carry == 0
}

// SubUint64 subtracts with underflow detection.
func SubUint64(a, b uint64) (uint64, bool) {
	diff, borrow := bits.Sub64(a, b, 0)
	return diff, borrow == 0
}

// MulUint64 multiplies with overflow detection.
func MulUint64(a, b uint64) (uint64, bool) {
	hi, lo := bits.Mul64(a, b)
	return lo, hi == 0
}
