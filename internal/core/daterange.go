package core

import (
	"errors"
	"time"
)

const (
	RangeAll    RangeSelector = "all"
	RangeToday  RangeSelector = "today"
	RangeWeek   RangeSelector = "week"
	RangeMonth  RangeSelector = "month"
	RangeYear   RangeSelector = "year"
	RangeCustom RangeSelector = "custom"
)

type (
	// RangeSelector names the calendar window of transactions to display.
	RangeSelector string

	// Interval is an inclusive [Start, End] calendar-day window. When
	// Unbounded is set the bounds are ignored and every date passes.
	Interval struct {
		Start     time.Time
		End       time.Time
		Unbounded bool
	}
)

// ErrInvalidRange reports a custom interval with a missing bound or
// start after end. Callers must keep the previously applied range; the
// resolver never swaps or clamps.
var ErrInvalidRange = errors.New("invalid date range")

func (s RangeSelector) IsValid() bool {
	switch s {
	case RangeAll, RangeToday, RangeWeek, RangeMonth, RangeYear, RangeCustom:
		return true
	default:
		return false
	}
}

// Unbounded is the interval that every transaction date falls into.
func Unbounded() Interval {
	return Interval{Unbounded: true}
}

// ResolveDateRange maps a selector plus a reference moment to a concrete
// inclusive day interval. customStart and customEnd are consulted only for
// RangeCustom; both must be non-zero and in order, otherwise ErrInvalidRange.
//
// Resolution depends on nothing but the arguments, so the same selector and
// reference moment always produce the same interval.
func ResolveDateRange(selector RangeSelector, customStart, customEnd, now time.Time) (Interval, error) {
	today := TruncateDay(now)
	switch selector {
	case RangeAll:
		return Unbounded(), nil
	case RangeToday:
		return Interval{Start: today, End: today}, nil
	case RangeWeek:
		return Interval{Start: TruncateDay(now.AddDate(0, 0, -7)), End: today}, nil
	case RangeMonth:
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return Interval{Start: first, End: today}, nil
	case RangeYear:
		first := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		return Interval{Start: first, End: today}, nil
	case RangeCustom:
		if customStart.IsZero() || customEnd.IsZero() {
			return Interval{}, ErrInvalidRange
		}
		if dayKey(customStart) > dayKey(customEnd) {
			return Interval{}, ErrInvalidRange
		}
		return Interval{Start: TruncateDay(customStart), End: TruncateDay(customEnd)}, nil
	default:
		return Interval{}, ErrInvalidRange
	}
}

// Contains reports whether the day-truncated t falls inside the interval.
// Time-of-day never decides membership; only the calendar day does.
func (iv Interval) Contains(t time.Time) bool {
	if iv.Unbounded {
		return true
	}
	k := dayKey(t)
	return k >= dayKey(iv.Start) && k <= dayKey(iv.End)
}

// TruncateDay drops the time-of-day component, keeping the location.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// dayKey orders calendar days without caring about location offsets within
// the day.
func dayKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}
