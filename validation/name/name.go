// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package name provides validation functions for qualified names.
package name

import (
	"fmt"
	"regexp"
	"strings"
)

var validIdentRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateIdent validates that name is a single identifier: a letter or
// underscore followed by letters, digits and underscores.
func ValidateIdent(name string) error {
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}

	// Check for null bytes explicitly
	if strings.Contains(name, "\x00") {
		return fmt.Errorf("name cannot contain null bytes")
	}

	if !validIdentRegex.MatchString(name) {
		return fmt.Errorf("name can only contain letters, digits and underscores and cannot start with a digit: %q", name)
	}

	return nil
}

// ValidateQualified validates a dot-separated name such as "acme.policy.v1".
// A single leading dot is allowed when allowAbsolute is set.
func ValidateQualified(name string, allowAbsolute bool) error {
	if name == "" {
		return fmt.Errorf("qualified name cannot be empty")
	}

	trimmed := name
	if allowAbsolute {
		trimmed = strings.TrimPrefix(name, ".")
	}

	for i, segment := range strings.Split(trimmed, ".") {
		if segment == "" {
			return fmt.Errorf("qualified name cannot contain empty segments: %q", name)
		}
		if err := ValidateIdent(segment); err != nil {
			return fmt.Errorf("invalid segment %d of %q: %w", i+1, name, err)
		}
	}

	return nil
}
