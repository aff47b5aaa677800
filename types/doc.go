// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package types defines the runtime value and type model of the CEL engine.

# Values

Every evaluation step produces a Val: one of Null, TypedNull, Bool, Int,
Uint, Double, String, Bytes, Timestamp, Duration, *List, *Map, *Object or
*Type, or one of the two non-value results *Err and *Unknown. A nil Val means
undefined ("no such variable or field"), which callers turn into an error or
into false for presence tests.

Int and Uint are distinct: 1 and 1u are equal under CEL equality but an
overload for int never accepts a uint.

# Errors and unknowns

Errors are values. Operations never panic on user data; they return an *Err
carrying the node id it originated from, a Kind and a message. When several
operands fail, MergeResults returns one carrier: unknowns win over errors,
and extra errors are attached to the first one.

	v := types.MergeResults([]types.Val{errA, errB})
	// v.(*types.Err).Additional == []*types.Err{errB}

# Adapters

An Adapter bridges a host representation and Val. Containers keep the
adapter that owns their elements, so lists built from Go values and lists
built from protobuf messages can be compared and concatenated; elements are
converted with ToCel at the boundary. CelAdapter is the identity adapter and
implements equality, ordering and access for every kind; host adapters
delegate to it for anything that is not one of their records.

# Providers and namespaces

A TypeProvider resolves type names and declared identifiers and builds
records from message literals. A Namespace expands a possibly-qualified name
into the list of fully-qualified candidates, most specific first.
*/
package types
