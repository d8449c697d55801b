package journey

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the layout used for origin and journey dates
	DateLayout = "2006-01-02"

	// TimeLayout is the layout used for scheduled end times
	TimeLayout = "15:04:05"

	// DefaultDurationDays is used when a train has no schedule row
	DefaultDurationDays = 1
)

// DefaultEndTime is used when a train has no scheduled end time
var DefaultEndTime = TimeOfDay{Hour: 23, Minute: 59, Second: 59}

// TimeOfDay is a wall-clock time without a date
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// ParseTimeOfDay parses a "HH:MM:SS" string
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, nil
}

// String formats the time as "HH:MM:SS"
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// sinceMidnight returns the offset of this time from midnight
func (t TimeOfDay) sinceMidnight() time.Duration {
	return time.Duration(t.Hour)*time.Hour + time.Duration(t.Minute)*time.Minute + time.Duration(t.Second)*time.Second
}

// Schedule holds the journey details of a train that matter for assignment windows
type Schedule struct {
	DurationDays int
	EndTime      TimeOfDay
}

// DefaultSchedule returns the schedule assumed for trains without schedule data
func DefaultSchedule() Schedule {
	return Schedule{DurationDays: DefaultDurationDays, EndTime: DefaultEndTime}
}

// ParseDate parses a "YYYY-MM-DD" string into a civil date at UTC midnight
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return d, nil
}

// CivilDate drops the time-of-day and location from t, keeping its calendar date
func CivilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Window returns the first and last calendar dates of a run that starts on origin
// and lasts durationDays. Durations below one are treated as a single-day run.
func Window(origin time.Time, durationDays int) (time.Time, time.Time) {
	if durationDays < 1 {
		durationDays = 1
	}
	first := CivilDate(origin)
	return first, first.AddDate(0, 0, durationDays-1)
}

// IsAssignedOnDate reports whether a staff member assigned to a run starting on
// origin is responsible on target.
//
// Every day of the run before the last one is covered. On the last day the
// assignment only holds while the validation instant is strictly before the
// train's scheduled end time, since responsibility ends when the train terminates.
func IsAssignedOnDate(origin time.Time, durationDays int, endTime TimeOfDay, target time.Time, validation time.Time) bool {
	first, last := Window(origin, durationDays)
	day := CivilDate(target)

	if day.Before(first) || day.After(last) {
		return false
	}

	if day.Before(last) {
		return true
	}

	// Final day: compare wall-clock time of the validation instant against the end time
	validationOffset := validation.Sub(time.Date(validation.Year(), validation.Month(), validation.Day(), 0, 0, 0, 0, validation.Location()))
	return validationOffset < endTime.sinceMidnight()
}

// IsAssignedOnDateStrings is the string-level form of IsAssignedOnDate used for
// loosely typed records.
//
// An unparseable origin or target date excludes the assignment. An unparseable
// end time only matters on the final day of the run, where it keeps the
// assignment.
func IsAssignedOnDateStrings(originDate string, durationDays int, endTime string, targetDate string, validation time.Time) bool {
	origin, err := ParseDate(originDate)
	if err != nil {
		return false
	}
	target, err := ParseDate(targetDate)
	if err != nil {
		return false
	}

	end, err := ParseTimeOfDay(endTime)
	if err != nil {
		_, last := Window(origin, durationDays)
		if target.Equal(last) {
			return true
		}
		// Off the final day the end time is never consulted
		end = DefaultEndTime
	}

	return IsAssignedOnDate(origin, durationDays, end, target, validation)
}
