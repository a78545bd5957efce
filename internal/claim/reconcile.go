package claim

import (
	"errors"
	"time"
)

// Schedule describes a recurring weekly session template. Hour and Minute are
// UTC wall-clock values; Weekdays is the set of days the schedule occurs on.
type Schedule struct {
	ID            string
	SessionTypeID string
	Weekdays      []time.Weekday
	Hour          int
	Minute        int
}

// ErrWeekdayNotScheduled indicates the target date does not fall on one of the
// schedule's weekdays.
var ErrWeekdayNotScheduled = errors.New("claim: target date is not an occurrence of this schedule")

// ErrInvalidSchedule indicates the schedule definition itself is malformed.
var ErrInvalidSchedule = errors.New("claim: invalid schedule definition")

// ValidateSchedule checks the structural invariants of a schedule template:
// a non-empty weekday set, hour in [0,23] and minute in [0,59].
func ValidateSchedule(schedule Schedule) error {
	if len(schedule.Weekdays) == 0 {
		return ErrInvalidSchedule
	}
	for _, day := range schedule.Weekdays {
		if day < time.Sunday || day > time.Saturday {
			return ErrInvalidSchedule
		}
	}
	if schedule.Hour < 0 || schedule.Hour > 23 {
		return ErrInvalidSchedule
	}
	if schedule.Minute < 0 || schedule.Minute > 59 {
		return ErrInvalidSchedule
	}
	return nil
}

// CanonicalInstant resolves a schedule and a target calendar date into the
// single UTC instant that identifies the occurrence.
//
// The instant takes its year, month and day from the target date interpreted
// in UTC, and its hour and minute from the schedule template. Seconds and
// sub-second components are zeroed. The result is the natural dedup key for a
// session instance at minute granularity: repeated resolutions of the same
// (schedule, date) pair always yield the same instant.
func CanonicalInstant(schedule Schedule, target time.Time) (time.Time, error) {
	if err := ValidateSchedule(schedule); err != nil {
		return time.Time{}, err
	}

	utc := target.UTC()
	if !containsWeekday(schedule.Weekdays, utc.Weekday()) {
		return time.Time{}, ErrWeekdayNotScheduled
	}

	year, month, day := utc.Date()
	return time.Date(year, month, day, schedule.Hour, schedule.Minute, 0, 0, time.UTC), nil
}

func containsWeekday(weekdays []time.Weekday, day time.Weekday) bool {
	for _, candidate := range weekdays {
		if candidate == day {
			return true
		}
	}
	return false
}
