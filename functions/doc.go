// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package functions holds the native functions that expressions call and the
registry the planner binds calls against.

Every function is registered once under its name with a generic
implementation that switches on the runtime types of its arguments. The same
behaviour is also indexed by overload id ("add_int64", "size_string") for
callers that resolved overloads ahead of time.

An implementation returns nil when it does not accept its arguments. The
evaluator turns that into a "found no matching overload" error naming the
argument types:

	r := functions.NewStandardRegistry()
	sum := r.Find("_+_").Dispatch(1, []types.Val{types.Int(1), types.Int(2)})
	// sum == types.Int(3)

Host applications add functions with Registry.Add, or combine registries with
an OrderedDispatcher.
*/
package functions
