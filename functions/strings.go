// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package functions

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/cel-go/common/overloads"
	cmap "github.com/orcaman/concurrent-map/v2"

	"github.com/stacklok/toolhive-cel/types"
)

// maxCachedPatterns bounds the compiled pattern cache.
const maxCachedPatterns = 256

var patterns = cmap.New[*regexp.Regexp]()

// compilePattern compiles an RE2 pattern, reusing earlier compilations.
func compilePattern(pattern string) (*regexp.Regexp, error) {
	if re, ok := patterns.Get(pattern); ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	if patterns.Count() < maxCachedPatterns {
		patterns.SetIfAbsent(pattern, re)
	}
	return re, nil
}

func stringOp(test func(s, arg string) bool) func(int64, types.Val, types.Val) types.Val {
	return func(_ int64, x, y types.Val) types.Val {
		s, ok := x.(types.String)
		if !ok {
			return nil
		}
		arg, ok := y.(types.String)
		if !ok {
			return nil
		}
		return types.Bool(test(string(s), string(arg)))
	}
}

var (
	containsOp   = stringOp(strings.Contains)
	startsWithOp = stringOp(strings.HasPrefix)
	endsWithOp   = stringOp(strings.HasSuffix)
)

func matchesOp(id int64, x, y types.Val) types.Val {
	s, ok := x.(types.String)
	if !ok {
		return nil
	}
	pattern, ok := y.(types.String)
	if !ok {
		return nil
	}
	re, err := compilePattern(string(pattern))
	if err != nil {
		return types.InvalidArgument(id, overloads.Matches, err.Error())
	}
	return types.Bool(re.MatchString(string(s)))
}

func sizeOp(_ int64, x types.Val) types.Val {
	switch v := x.(type) {
	case types.String:
		return types.Int(utf8.RuneCountInString(string(v)))
	case types.Bytes:
		return types.Int(len(v))
	case *types.List:
		return types.Int(v.Len())
	case *types.Map:
		return types.Int(v.Len())
	}
	return nil
}

// sizeOf restricts sizeOp to values of kind.
func sizeOf(kind types.Kind) func(int64, types.Val) types.Val {
	return func(id int64, x types.Val) types.Val {
		if x.Type().Kind() != kind {
			return nil
		}
		return sizeOp(id, x)
	}
}

func addStrings(r *Registry) {
	r.mustAdd(Binary(overloads.Contains, nil, containsOp),
		Binary(overloads.Contains, []string{overloads.ContainsString}, containsOp))
	r.mustAdd(Binary(overloads.StartsWith, nil, startsWithOp),
		Binary(overloads.StartsWith, []string{overloads.StartsWithString}, startsWithOp))
	r.mustAdd(Binary(overloads.EndsWith, nil, endsWithOp),
		Binary(overloads.EndsWith, []string{overloads.EndsWithString}, endsWithOp))
	r.mustAdd(Binary(overloads.Matches, nil, matchesOp),
		Binary(overloads.Matches, []string{overloads.MatchesString}, matchesOp))
	r.mustAdd(Unary(overloads.Size, nil, sizeOp),
		Unary(overloads.Size, []string{overloads.SizeString, overloads.SizeStringInst}, sizeOf(types.KindString)),
		Unary(overloads.Size, []string{overloads.SizeBytes, overloads.SizeBytesInst}, sizeOf(types.KindBytes)),
		Unary(overloads.Size, []string{overloads.SizeList, overloads.SizeListInst}, sizeOf(types.KindList)),
		Unary(overloads.Size, []string{overloads.SizeMap, overloads.SizeMapInst}, sizeOf(types.KindMap)),
	)
}
