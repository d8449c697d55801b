package routing

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/suvidhaen/railsathi-be/pkg/core/journey"
	"github.com/suvidhaen/railsathi-be/pkg/db"
)

// Run is the schedule of one run of a train. EndTime is kept as stored so the
// final-day fail-open policy of journey.IsAssignedOnDateStrings applies to it.
type Run struct {
	DurationDays int
	EndTime      string
}

// DefaultRun is assumed for trains without a schedule row
func DefaultRun() Run {
	return Run{DurationDays: journey.DefaultDurationDays, EndTime: journey.DefaultEndTime.String()}
}

// ScheduleOverride replaces a train's stored schedule for runs whose origin date
// is an occurrence of Rule
type ScheduleOverride struct {
	TrainNo string
	Rule    string
	Run     Run
}

// NewScheduleOverride validates the rule and end time of an override
func NewScheduleOverride(trainNo, rule string, durationDays int, endTime string) (ScheduleOverride, error) {
	if _, err := rrule.StrToROption(rule); err != nil {
		return ScheduleOverride{}, fmt.Errorf("invalid rrule %q: %w", rule, err)
	}
	if _, err := journey.ParseTimeOfDay(endTime); err != nil {
		return ScheduleOverride{}, err
	}
	if durationDays < 1 {
		return ScheduleOverride{}, fmt.Errorf("journey duration must be positive, got %d", durationDays)
	}
	return ScheduleOverride{
		TrainNo: StripLeadingZeros(trainNo),
		Rule:    rule,
		Run:     Run{DurationDays: durationDays, EndTime: endTime},
	}, nil
}

// AppliesTo reports whether origin is an occurrence of the override's rule.
// Rules without a DTSTART are anchored at the start of the origin's year.
func (o ScheduleOverride) AppliesTo(origin time.Time) bool {
	opt, err := rrule.StrToROption(o.Rule)
	if err != nil {
		return false
	}

	day := journey.CivilDate(origin)
	if opt.Dtstart.IsZero() {
		opt.Dtstart = time.Date(day.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	}

	// Each call builds its own rule so overrides are safe to share across goroutines
	rule, err := rrule.NewRRule(*opt)
	if err != nil {
		return false
	}
	return len(rule.Between(day, day.Add(24*time.Hour-time.Nanosecond), true)) > 0
}

// ScheduleBook answers schedule lookups for a batch, keyed by zero-stripped train number
type ScheduleBook struct {
	runs      map[string]Run
	overrides []ScheduleOverride
}

// NewScheduleBook builds a book from stored schedule rows and configured overrides.
// Null or non-positive durations and null end times take the defaults.
func NewScheduleBook(rows []db.TrainSchedule, overrides []ScheduleOverride, logger *zap.Logger) *ScheduleBook {
	book := &ScheduleBook{
		runs:      make(map[string]Run, len(rows)),
		overrides: overrides,
	}

	for _, row := range rows {
		run := DefaultRun()
		if row.JourneyDurationDays != nil && *row.JourneyDurationDays >= 1 {
			run.DurationDays = *row.JourneyDurationDays
		}
		if row.EndTime != nil && *row.EndTime != "" {
			run.EndTime = *row.EndTime
		}

		key := StripLeadingZeros(row.TrainNo)
		if _, exists := book.runs[key]; exists {
			logger.Debug("Duplicate schedule row, keeping first", zap.String("train_no", row.TrainNo))
			continue
		}
		book.runs[key] = run
	}

	return book
}

// Lookup returns the run schedule of train for a run starting on origin
func (b *ScheduleBook) Lookup(train string, origin time.Time) Run {
	key := StripLeadingZeros(train)

	for _, override := range b.overrides {
		if override.TrainNo == key && override.AppliesTo(origin) {
			return override.Run
		}
	}

	if run, ok := b.runs[key]; ok {
		return run
	}
	return DefaultRun()
}
