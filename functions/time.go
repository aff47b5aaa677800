// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package functions

import (
	"time"

	"github.com/google/cel-go/common/overloads"

	"github.com/stacklok/toolhive-cel/types"
)

// timestampOp reads a calendar field of a timestamp. An optional second
// argument names the timezone, either IANA ("America/New_York") or a fixed
// offset ("-08:00"); the default is UTC.
func timestampOp(field func(t time.Time) int) Op {
	return func(id int64, args []types.Val) types.Val {
		if len(args) < 1 || len(args) > 2 {
			return nil
		}
		ts, ok := args[0].(types.Timestamp)
		if !ok {
			return nil
		}
		t := ts.UTC()
		if len(args) == 2 {
			tz, ok := args[1].(types.String)
			if !ok {
				return nil
			}
			loc, err := types.ParseTimezone(id, string(tz))
			if err != nil {
				return err
			}
			t = t.In(loc)
		}
		return types.Int(field(t))
	}
}

// durationOp reads a duration as a whole number of unit.
func durationOp(unit time.Duration) func(int64, types.Val) types.Val {
	return func(_ int64, x types.Val) types.Val {
		d, ok := x.(types.Duration)
		if !ok {
			return nil
		}
		return types.Int(int64(d) / int64(unit))
	}
}

// timeFunc registers a timestamp accessor and, when unit is non-zero, the
// matching duration accessor under the same name.
func timeFunc(r *Registry, name string, tsIDs []string, field func(time.Time) int, durID string, unit time.Duration) {
	tsOp := timestampOp(field)
	if unit == 0 {
		r.mustAdd(NewStrict(name, tsIDs, tsOp))
		return
	}
	durOp := durationOp(unit)
	generic := NewStrict(name, nil, func(id int64, args []types.Val) types.Val {
		if len(args) == 1 {
			if _, ok := args[0].(types.Duration); ok {
				return durOp(id, args[0])
			}
		}
		return tsOp(id, args)
	})
	r.mustAdd(generic,
		NewStrict(name, tsIDs, tsOp),
		Unary(name, []string{durID}, durOp),
	)
}

func addTimeAccessors(r *Registry) {
	timeFunc(r, overloads.TimeGetFullYear,
		[]string{overloads.TimestampToYear, overloads.TimestampToYearWithTz},
		time.Time.Year, "", 0)
	timeFunc(r, overloads.TimeGetMonth,
		[]string{overloads.TimestampToMonth, overloads.TimestampToMonthWithTz},
		func(t time.Time) int { return int(t.Month()) - 1 }, "", 0)
	timeFunc(r, overloads.TimeGetDate,
		[]string{overloads.TimestampToDayOfMonthOneBased, overloads.TimestampToDayOfMonthOneBasedWithTz},
		time.Time.Day, "", 0)
	timeFunc(r, overloads.TimeGetDayOfMonth,
		[]string{overloads.TimestampToDayOfMonthZeroBased, overloads.TimestampToDayOfMonthZeroBasedWithTz},
		func(t time.Time) int { return t.Day() - 1 }, "", 0)
	timeFunc(r, overloads.TimeGetDayOfYear,
		[]string{overloads.TimestampToDayOfYear, overloads.TimestampToDayOfYearWithTz},
		func(t time.Time) int { return t.YearDay() - 1 }, "", 0)
	timeFunc(r, overloads.TimeGetDayOfWeek,
		[]string{overloads.TimestampToDayOfWeek, overloads.TimestampToDayOfWeekWithTz},
		func(t time.Time) int { return int(t.Weekday()) }, "", 0)
	timeFunc(r, overloads.TimeGetHours,
		[]string{overloads.TimestampToHours, overloads.TimestampToHoursWithTz},
		time.Time.Hour, overloads.DurationToHours, time.Hour)
	timeFunc(r, overloads.TimeGetMinutes,
		[]string{overloads.TimestampToMinutes, overloads.TimestampToMinutesWithTz},
		time.Time.Minute, overloads.DurationToMinutes, time.Minute)
	timeFunc(r, overloads.TimeGetSeconds,
		[]string{overloads.TimestampToSeconds, overloads.TimestampToSecondsWithTz},
		time.Time.Second, overloads.DurationToSeconds, time.Second)
	timeFunc(r, overloads.TimeGetMilliseconds,
		[]string{overloads.TimestampToMilliseconds, overloads.TimestampToMillisecondsWithTz},
		func(t time.Time) int { return t.Nanosecond() / int(time.Millisecond) },
		overloads.DurationToMilliseconds, time.Millisecond)
}
