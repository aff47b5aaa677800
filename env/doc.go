// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package env provides an interface-based abstraction for environment variable
access, so that configuration overrides can be injected in tests.

# Basic Usage

Use OSReader to read the process environment:

	reader := &env.OSReader{}
	if v, ok := reader.LookupEnv("TOOLHIVE_CEL_CONTAINER"); ok {
		...
	}

MapReader serves a fixed set of variables, for hosts that keep their
settings elsewhere:

	reader := env.MapReader{"TOOLHIVE_CEL_LOG_LEVEL": "debug"}

# Testing

A generated mock is available in the mocks sub-package:

	ctrl := gomock.NewController(t)
	mock := mocks.NewMockReader(ctrl)
	mock.EXPECT().LookupEnv("TOOLHIVE_CEL_CONTAINER").Return("acme.policy", true)
*/
package env
