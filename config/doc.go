// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package config loads engine configuration from a YAML file.

The file lives at $XDG_CONFIG_HOME/toolhive-cel/config.yaml:

	container: acme.policy
	aliases:
	  v1: acme.policy.v1
	maxExpressionLength: 5000
	enableOptionalSyntax: true
	maxRecursionDepth: 64
	log:
	  format: text
	  level: debug

Documents are checked against an embedded JSON schema, then the
TOOLHIVE_CEL_CONTAINER, TOOLHIVE_CEL_MAX_EXPRESSION_LENGTH and
TOOLHIVE_CEL_LOG_LEVEL environment variables override the file:

	cfg, err := config.LoadDefault()
	if err != nil {
		return err
	}
	engine, err := cel.NewEngineFromConfig(cfg)
*/
package config
