// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	// Embedded zone database so IANA names resolve on hosts without one.
	_ "time/tzdata"
)

// Supported timestamp range: 0001-01-01T00:00:00Z to 9999-12-31T23:59:59Z.
const (
	MinTimestampSeconds int64 = -62135596800
	MaxTimestampSeconds int64 = 253402300799
)

var (
	fixedOffsetRe    = regexp.MustCompile(`^([+-]?)(\d\d):(\d\d)$`)
	durationSyntaxRe = regexp.MustCompile(`^[-+]?(0|((\d+(\.\d*)?|\.\d+)(ns|us|µs|μs|ms|s|m|h))+)$`)
)

// NewTimestamp builds a timestamp from seconds and nanoseconds since the Unix
// epoch. Nanoseconds outside [0, 1e9) are carried into seconds.
func NewTimestamp(id int64, seconds, nanos int64) Val {
	return TimestampOf(id, time.Unix(seconds, nanos))
}

// TimestampOf range-checks t and converts it to UTC.
func TimestampOf(id int64, t time.Time) Val {
	if s := t.Unix(); s < MinTimestampSeconds || s > MaxTimestampSeconds {
		return BadTimestamp(id)
	}
	return Timestamp{Time: t.UTC()}
}

// ParseTimestamp parses an RFC 3339 timestamp.
func ParseTimestamp(id int64, s string) Val {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return BadTimestampString(id, err.Error())
	}
	return TimestampOf(id, t)
}

// FormatTimestamp renders t in RFC 3339 form with trailing zero fractional
// digits removed.
func FormatTimestamp(t Timestamp) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// NewDuration builds a duration from seconds and nanoseconds. The total must
// fit 64 bits of nanoseconds.
func NewDuration(id int64, seconds, nanos int64) Val {
	total, ok := MulInt64(seconds, int64(time.Second))
	if !ok {
		return BadDuration(id)
	}
	if total, ok = AddInt64(total, nanos); !ok {
		return BadDuration(id)
	}
	return Duration(total)
}

// ParseDuration parses a possibly signed sequence of decimal numbers, each
// with an optional fraction and a unit suffix, such as "300ms", "-1.5h" or
// "2h45m". Valid units are "ns", "us" (or "µs"), "ms", "s", "m", "h".
func ParseDuration(id int64, s string) Val {
	if !durationSyntaxRe.MatchString(s) {
		return BadDurationString(id, "invalid syntax")
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return BadDuration(id)
	}
	return Duration(d)
}

// FormatDuration renders d in seconds with up to nine fractional digits, the
// form used by the JSON mapping of google.protobuf.Duration: "1.5s", "-0.25s".
func FormatDuration(d Duration) string {
	n := int64(d)
	sign := ""
	u := uint64(n)
	if n < 0 {
		sign = "-"
		u = uint64(-(n + 1)) + 1
	}
	secs := u / uint64(time.Second)
	frac := u % uint64(time.Second)
	out := sign + strconv.FormatUint(secs, 10)
	if frac != 0 {
		digits := strconv.FormatUint(frac+uint64(time.Second), 10)[1:]
		out += "." + strings.TrimRight(digits, "0")
	}
	return out + "s"
}

// ParseTimezone resolves a fixed "[+-]HH:MM" offset or an IANA zone name.
func ParseTimezone(id int64, tz string) (*time.Location, *Err) {
	if m := fixedOffsetRe.FindStringSubmatch(tz); m != nil {
		hours, _ := strconv.Atoi(m[2])
		minutes, _ := strconv.Atoi(m[3])
		offset := hours*3600 + minutes*60
		if m[1] == "-" {
			offset = -offset
		}
		return time.FixedZone(tz, offset), nil
	}
	if tz == "" {
		return nil, BadTimezone(id, tz)
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, BadTimezone(id, tz)
	}
	return loc, nil
}
