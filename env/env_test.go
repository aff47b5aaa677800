// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOSReader(t *testing.T) { //nolint:paralleltest // Modifies environment variables
	const testKey = "TOOLHIVE_CEL_TEST_ENV_VARIABLE"
	t.Setenv(testKey, "test_value_123")

	reader := &OSReader{}

	tests := []struct {
		name      string
		key       string
		want      string
		wantFound bool
	}{
		{name: "existing environment variable", key: testKey, want: "test_value_123", wantFound: true},
		{name: "non-existing environment variable", key: "TOOLHIVE_CEL_NONEXISTENT_12345"},
		{name: "empty key", key: ""},
	}

	for _, tt := range tests { //nolint:paralleltest // Parent test modifies environment variables
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, reader.Getenv(tt.key))
			got, found := reader.LookupEnv(tt.key)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantFound, found)
		})
	}
}

func TestOSReader_LookupEnvSetButEmpty(t *testing.T) { //nolint:paralleltest // Modifies environment variables
	const testKey = "TOOLHIVE_CEL_TEST_EMPTY_VARIABLE"
	t.Setenv(testKey, "")

	got, found := (&OSReader{}).LookupEnv(testKey)
	assert.True(t, found)
	assert.Empty(t, got)
}

func TestMapReader(t *testing.T) {
	t.Parallel()

	reader := MapReader{"A": "1", "EMPTY": ""}

	assert.Equal(t, "1", reader.Getenv("A"))
	assert.Empty(t, reader.Getenv("B"))

	v, ok := reader.LookupEnv("EMPTY")
	assert.True(t, ok)
	assert.Empty(t, v)

	_, ok = reader.LookupEnv("B")
	assert.False(t, ok)
}

// TestReader_InterfaceCompliance ensures the readers implement the Reader interface
func TestReader_InterfaceCompliance(t *testing.T) {
	t.Parallel()
	var _ Reader = &OSReader{}
	var _ Reader = MapReader{}
}
