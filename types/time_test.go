// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package types_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/toolhive-cel/types"
)

func TestNewTimestamp(t *testing.T) {
	t.Parallel()

	ts, ok := types.NewTimestamp(1, 10, 1_500_000_000).(types.Timestamp)
	require.True(t, ok)
	assert.Equal(t, int64(11), ts.Unix())
	assert.Equal(t, 500_000_000, ts.Nanosecond())

	ts, ok = types.NewTimestamp(1, 10, -1).(types.Timestamp)
	require.True(t, ok)
	assert.Equal(t, int64(9), ts.Unix())
	assert.Equal(t, 999_999_999, ts.Nanosecond())

	_, ok = types.NewTimestamp(1, types.MaxTimestampSeconds, 0).(types.Timestamp)
	assert.True(t, ok)

	err, ok := types.NewTimestamp(4, types.MaxTimestampSeconds+1, 0).(*types.Err)
	require.True(t, ok)
	assert.Equal(t, "timestamp out of range", err.Message)
	assert.Equal(t, int64(4), err.ID)

	_, ok = types.NewTimestamp(1, types.MinTimestampSeconds-1, 0).(*types.Err)
	assert.True(t, ok)
}

func TestNewDuration(t *testing.T) {
	t.Parallel()

	assert.Equal(t, types.Duration(1500*time.Millisecond), types.NewDuration(1, 1, 500_000_000))

	err, ok := types.NewDuration(1, 9_223_372_037, 0).(*types.Err)
	require.True(t, ok)
	assert.Equal(t, "duration out of range", err.Message)
}

func TestParseDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    types.Val
		wantErr string
	}{
		{in: "300ms", want: types.Duration(300 * time.Millisecond)},
		{in: "-1.5h", want: types.Duration(-90 * time.Minute)},
		{in: "2h45m", want: types.Duration(165 * time.Minute)},
		{in: "1us", want: types.Duration(time.Microsecond)},
		{in: "1µs", want: types.Duration(time.Microsecond)},
		{in: "10", wantErr: "Failed to parse duration: invalid syntax"},
		{in: "1d", wantErr: "Failed to parse duration: invalid syntax"},
		{in: "9999999999999h", wantErr: "duration out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got := types.ParseDuration(1, tt.in)
			if tt.wantErr != "" {
				err, ok := got.(*types.Err)
				require.True(t, ok, "got %v", got)
				assert.Equal(t, tt.wantErr, err.Message)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0s", types.FormatDuration(0))
	assert.Equal(t, "1.5s", types.FormatDuration(types.Duration(1500*time.Millisecond)))
	assert.Equal(t, "-0.25s", types.FormatDuration(types.Duration(-250*time.Millisecond)))
	assert.Equal(t, "3600s", types.FormatDuration(types.Duration(time.Hour)))
	assert.Equal(t, "0.000000001s", types.FormatDuration(types.Duration(1)))
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	ts, ok := types.ParseTimestamp(1, "2009-02-13T23:31:30.5+01:00").(types.Timestamp)
	require.True(t, ok)
	assert.Equal(t, "2009-02-13T22:31:30.5Z", types.FormatTimestamp(ts))

	err, ok := types.ParseTimestamp(1, "yesterday").(*types.Err)
	require.True(t, ok)
	assert.Contains(t, err.Message, "Failed to parse timestamp: ")
	assert.Equal(t, types.ErrKindMalformedLiteral, err.Kind)
}

func TestParseTimezone(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	loc, err := types.ParseTimezone(1, "+05:30")
	require.Nil(t, err)
	assert.Equal(t, 17, at.In(loc).Hour())

	loc, err = types.ParseTimezone(1, "-02:00")
	require.Nil(t, err)
	assert.Equal(t, 10, at.In(loc).Hour())

	loc, err = types.ParseTimezone(1, "02:00")
	require.Nil(t, err)
	assert.Equal(t, 14, at.In(loc).Hour())

	loc, err = types.ParseTimezone(1, "UTC")
	require.Nil(t, err)
	assert.Equal(t, 12, at.In(loc).Hour())

	_, err = types.ParseTimezone(1, "Mars/Olympus")
	require.NotNil(t, err)
	assert.Equal(t, "invalid timezone: Mars/Olympus", err.Message)
}
