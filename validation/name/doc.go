// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package name provides validation functions for identifiers and qualified
names.

Containers and aliases in the engine configuration are checked with this
package before an engine is built from them.

# Name Validation

	if err := name.ValidateQualified("acme.policy", false); err != nil {
		// Handle invalid container
	}
	if err := name.ValidateIdent("pol"); err != nil {
		// Handle invalid alias
	}

Valid identifiers must:
  - Be non-empty
  - Start with a letter or underscore
  - Contain only letters, digits and underscores

Qualified names are identifiers joined by single dots.

# Examples

Valid names:

	"acme"
	"acme.policy.v1"
	"_internal.x"

Invalid names:

	""              // empty
	"acme..policy"  // empty segment
	"acme.1policy"  // segment starts with a digit
	"acme-policy"   // special characters
*/
package name
