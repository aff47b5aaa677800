// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package functions

// NewStandardRegistry creates a registry holding the standard library:
// logical and relational operators, arithmetic, membership, type
// conversions, string predicates and timestamp and duration accessors.
//
// Each call returns an independent registry, so callers may add their own
// functions to it or use it as the parent of a registry that does.
func NewStandardRegistry() *Registry {
	r := NewRegistry(nil)
	addLogic(r)
	addMath(r)
	addCasts(r)
	addStrings(r)
	addTimeAccessors(r)
	return r
}
