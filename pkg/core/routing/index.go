package routing

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/suvidhaen/railsathi-be/pkg/core/journey"
	"github.com/suvidhaen/railsathi-be/pkg/db"
)

// AssignmentStore is the subset of the database the index builder reads
type AssignmentStore interface {
	GetTrainSchedules(ctx context.Context, trainNos []string) ([]db.TrainSchedule, error)
	GetStaffWithTrainAccess(ctx context.Context) ([]db.StaffAccess, error)
}

// IndexCache stores built indexes between batches. Implementations must expire
// entries, since assignments and schedules change underneath them.
type IndexCache interface {
	GetIndex(ctx context.Context, key string) (*AssignmentIndex, bool, error)
	SetIndex(ctx context.Context, key string, index *AssignmentIndex) error
}

type coachKey struct {
	Train string
	Coach string
}

// EHKAssignment is the EHK currently covering a train
type EHKAssignment struct {
	Contact    string
	OriginDate time.Time
}

// AssignmentIndex holds the contacts responsible for a set of trains on one date
type AssignmentIndex struct {
	exact map[coachKey]string
	ehk   map[string]EHKAssignment
}

// NewAssignmentIndex returns an empty index
func NewAssignmentIndex() *AssignmentIndex {
	return &AssignmentIndex{
		exact: make(map[coachKey]string),
		ehk:   make(map[string]EHKAssignment),
	}
}

// ExactContact returns the contact assigned to coach on train
func (idx *AssignmentIndex) ExactContact(train, coach string) (string, bool) {
	contact, ok := idx.exact[coachKey{Train: strings.TrimSpace(train), Coach: NormalizeCoach(coach)}]
	return contact, ok
}

// EHKContact returns the contact of the EHK covering train
func (idx *AssignmentIndex) EHKContact(train string) (string, bool) {
	assignment, ok := idx.ehk[strings.TrimSpace(train)]
	return assignment.Contact, ok
}

// EHK returns the full EHK assignment covering train
func (idx *AssignmentIndex) EHK(train string) (EHKAssignment, bool) {
	assignment, ok := idx.ehk[strings.TrimSpace(train)]
	return assignment, ok
}

// Empty reports whether the index holds no assignments
func (idx *AssignmentIndex) Empty() bool {
	return len(idx.exact) == 0 && len(idx.ehk) == 0
}

// addExact records a per-coach assignment under the literal and zero-stripped
// train keys. Existing keys are never overwritten.
func (idx *AssignmentIndex) addExact(train, coach, contact string) {
	literal := strings.TrimSpace(train)
	for _, key := range []string{literal, StripLeadingZeros(literal)} {
		k := coachKey{Train: key, Coach: coach}
		if _, exists := idx.exact[k]; !exists {
			idx.exact[k] = contact
		}
	}
}

// addEHK records an EHK assignment under the literal and zero-stripped train keys,
// replacing an existing one only if this run started later
func (idx *AssignmentIndex) addEHK(train, contact string, origin time.Time) {
	literal := strings.TrimSpace(train)
	for _, key := range []string{literal, StripLeadingZeros(literal)} {
		if existing, exists := idx.ehk[key]; exists && !origin.After(existing.OriginDate) {
			continue
		}
		idx.ehk[key] = EHKAssignment{Contact: contact, OriginDate: origin}
	}
}

type exactEntryJSON struct {
	Train   string `json:"train"`
	Coach   string `json:"coach"`
	Contact string `json:"contact"`
}

type ehkEntryJSON struct {
	Contact    string `json:"contact"`
	OriginDate string `json:"origin_date"`
}

type indexJSON struct {
	Exact []exactEntryJSON        `json:"exact"`
	EHK   map[string]ehkEntryJSON `json:"ehk"`
}

// MarshalJSON encodes the index for caching
func (idx *AssignmentIndex) MarshalJSON() ([]byte, error) {
	out := indexJSON{
		Exact: make([]exactEntryJSON, 0, len(idx.exact)),
		EHK:   make(map[string]ehkEntryJSON, len(idx.ehk)),
	}
	for k, contact := range idx.exact {
		out.Exact = append(out.Exact, exactEntryJSON{Train: k.Train, Coach: k.Coach, Contact: contact})
	}
	sort.Slice(out.Exact, func(i, j int) bool {
		if out.Exact[i].Train != out.Exact[j].Train {
			return out.Exact[i].Train < out.Exact[j].Train
		}
		return out.Exact[i].Coach < out.Exact[j].Coach
	})
	for train, a := range idx.ehk {
		out.EHK[train] = ehkEntryJSON{Contact: a.Contact, OriginDate: a.OriginDate.Format(journey.DateLayout)}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes an index written by MarshalJSON
func (idx *AssignmentIndex) UnmarshalJSON(data []byte) error {
	var in indexJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	*idx = *NewAssignmentIndex()
	for _, e := range in.Exact {
		idx.exact[coachKey{Train: e.Train, Coach: e.Coach}] = e.Contact
	}
	for train, e := range in.EHK {
		origin, err := journey.ParseDate(e.OriginDate)
		if err != nil {
			return fmt.Errorf("failed to parse ehk origin date for train %s: %w", train, err)
		}
		idx.ehk[train] = EHKAssignment{Contact: e.Contact, OriginDate: origin}
	}
	return nil
}

// Builder builds assignment indexes from the staff access and schedule tables
type Builder struct {
	store     AssignmentStore
	overrides []ScheduleOverride
	cache     IndexCache
	logger    *zap.Logger
}

// NewBuilder creates a builder. overrides may be nil.
func NewBuilder(store AssignmentStore, overrides []ScheduleOverride, logger *zap.Logger) *Builder {
	return &Builder{store: store, overrides: overrides, logger: logger}
}

// WithCache returns a copy of the builder that reads and writes built indexes through cache
func (b *Builder) WithCache(cache IndexCache) *Builder {
	clone := *b
	clone.cache = cache
	return &clone
}

// Build builds the index of contacts responsible on queryDate for the given trains.
// validation is the instant compared against a run's end time on its final day.
//
// Malformed grants and dates are skipped. Only store errors are returned.
func (b *Builder) Build(ctx context.Context, queryDate time.Time, validation time.Time, trains []string) (*AssignmentIndex, error) {
	interest, spellings := trainsOfInterest(trains)
	if len(interest) == 0 {
		b.logger.Debug("No trains of interest, skipping index build")
		return NewAssignmentIndex(), nil
	}

	key := cacheKey(queryDate, validation, interest)
	if b.cache != nil {
		cached, found, err := b.cache.GetIndex(ctx, key)
		switch {
		case err != nil:
			b.logger.Warn("Failed to read assignment index cache", zap.String("key", key), zap.Error(err))
		case found:
			b.logger.Debug("Using cached assignment index", zap.String("key", key))
			return cached, nil
		}
	}

	b.logger.Debug("Building assignment index",
		zap.String("query_date", queryDate.Format(journey.DateLayout)),
		zap.Time("validation", validation),
		zap.Int("train_count", len(interest)))

	schedules, err := b.store.GetTrainSchedules(ctx, spellings)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch train schedules: %w", err)
	}
	book := NewScheduleBook(schedules, b.overrides, b.logger)

	staff, err := b.store.GetStaffWithTrainAccess(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch staff train access: %w", err)
	}

	// First writer wins in the exact index, so iteration order must be stable
	sort.SliceStable(staff, func(i, j int) bool { return staff[i].StaffID < staff[j].StaffID })

	index := NewAssignmentIndex()
	target := journey.CivilDate(queryDate).Format(journey.DateLayout)
	var skippedEntries int

	for _, member := range staff {
		contact := strings.TrimSpace(member.Phone)
		if contact == "" {
			continue
		}

		staffLogger := b.logger.With(zap.Int64("staff_id", member.StaffID))
		access := ParseTrainAccess(member.TrainAccess, staffLogger)

		for _, train := range access.TrainNumbers() {
			if !interest[StripLeadingZeros(train)] {
				continue
			}

			for _, entry := range access[train] {
				originDate := strings.TrimSpace(entry.OriginDate)
				origin, err := journey.ParseDate(originDate)
				if err != nil {
					skippedEntries++
					staffLogger.Debug("Skipping access entry with bad origin date",
						zap.String("train", train),
						zap.String("origin_date", entry.OriginDate))
					continue
				}

				run := book.Lookup(train, origin)
				if !journey.IsAssignedOnDateStrings(originDate, run.DurationDays, run.EndTime, target, validation) {
					continue
				}

				for _, coach := range entry.AssignedCoaches {
					if normalized := NormalizeCoach(coach); normalized != "" {
						index.addExact(train, normalized, contact)
					}
				}
				if entry.IsEHK() {
					index.addEHK(train, contact, origin)
				}
			}
		}
	}

	b.logger.Debug("Built assignment index",
		zap.Int("staff_count", len(staff)),
		zap.Int("exact_entries", len(index.exact)),
		zap.Int("ehk_entries", len(index.ehk)),
		zap.Int("skipped_entries", skippedEntries))

	if b.cache != nil {
		if err := b.cache.SetIndex(ctx, key, index); err != nil {
			b.logger.Warn("Failed to write assignment index cache", zap.String("key", key), zap.Error(err))
		}
	}

	return index, nil
}

// trainsOfInterest returns the zero-stripped train set used for membership checks
// and every spelling of those trains for the schedule query
func trainsOfInterest(trains []string) (map[string]bool, []string) {
	interest := make(map[string]bool)
	seen := make(map[string]bool)
	var spellings []string

	for _, train := range trains {
		if strings.TrimSpace(train) == "" {
			continue
		}
		interest[StripLeadingZeros(train)] = true
		for _, s := range TrainSpellings(train) {
			if !seen[s] {
				seen[s] = true
				spellings = append(spellings, s)
			}
		}
	}

	sort.Strings(spellings)
	return interest, spellings
}

// cacheKey identifies a build by date, validation second and train set
func cacheKey(queryDate, validation time.Time, interest map[string]bool) string {
	trains := make([]string, 0, len(interest))
	for train := range interest {
		trains = append(trains, train)
	}
	sort.Strings(trains)

	sum := sha256.Sum256([]byte(strings.Join(trains, ",")))
	return fmt.Sprintf("railsathi:index:%s:%d:%x",
		journey.CivilDate(queryDate).Format(journey.DateLayout), validation.Unix(), sum[:8])
}
