package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/suvidhaen/railsathi-be/pkg/core/journey"
	"github.com/suvidhaen/railsathi-be/pkg/core/routing"
	"github.com/suvidhaen/railsathi-be/pkg/db"
)

// MediaStore is the subset of the database needed to attach complaint media
type MediaStore interface {
	GetMediaForComplaints(ctx context.Context, complainIDs []int64) (map[int64][]db.ComplaintMedia, error)
}

// IndexBuilder builds assignment indexes. *routing.Builder implements it.
type IndexBuilder interface {
	Build(ctx context.Context, queryDate time.Time, validation time.Time, trains []string) (*routing.AssignmentIndex, error)
}

// EnrichedComplaint is a complaint with its support contact and media attached
type EnrichedComplaint struct {
	db.Complaint
	SupportContact string              `json:"support_contact"`
	Media          []db.ComplaintMedia `json:"rail_sathi_complain_media_files"`
}

// EnrichComplaints attaches the responsible support contact and media files to
// each complaint. queryDate selects the assignments in force and validation is
// the instant checked against a run's end time on its final day.
//
// The index build and the media fetch run concurrently. A failed index build
// fails the batch; a failed media fetch leaves every complaint with no media.
func EnrichComplaints(
	ctx context.Context,
	store MediaStore,
	builder IndexBuilder,
	logger *zap.Logger,
	complaints []db.Complaint,
	queryDate time.Time,
	validation time.Time,
) ([]EnrichedComplaint, error) {
	if len(complaints) == 0 {
		return []EnrichedComplaint{}, nil
	}

	pairs, trains := ExtractCoachPairs(complaints)
	ids := complaintIDs(complaints)

	logger.Debug("Enriching complaints",
		zap.Int("complaint_count", len(complaints)),
		zap.Int("pair_count", len(pairs)),
		zap.Int("train_count", len(trains)),
		zap.String("query_date", queryDate.Format(journey.DateLayout)))

	var index *routing.AssignmentIndex
	media := map[int64][]db.ComplaintMedia{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		index, err = builder.Build(gctx, queryDate, validation, trains)
		if err != nil {
			return fmt.Errorf("failed to build assignment index: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		fetched, err := store.GetMediaForComplaints(gctx, ids)
		if err != nil {
			logger.Error("Failed to fetch complaint media, continuing without media", zap.Error(err))
			return nil
		}
		media = fetched
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	contacts := routing.Resolve(index, pairs)

	enriched := make([]EnrichedComplaint, len(complaints))
	var matched int
	for i, c := range complaints {
		contact := routing.Lookup(contacts, c.TrainNumber, c.Coach)
		if contact != "" {
			matched++
		}

		files := media[c.ComplainID]
		if files == nil {
			files = []db.ComplaintMedia{}
		}

		enriched[i] = EnrichedComplaint{
			Complaint:      c,
			SupportContact: contact,
			Media:          files,
		}
	}

	logger.Debug("Enriched complaints",
		zap.Int("complaint_count", len(enriched)),
		zap.Int("with_support_contact", matched))

	return enriched, nil
}

// ExtractCoachPairs returns the distinct (train, coach) pairs of the complaints,
// including zero-stripped trains, and the distinct train numbers among them.
// Complaints missing a train or coach contribute nothing.
func ExtractCoachPairs(complaints []db.Complaint) ([]routing.Pair, []string) {
	seenPairs := make(map[routing.Pair]bool)
	seenTrains := make(map[string]bool)
	var pairs []routing.Pair
	var trains []string

	for _, c := range complaints {
		train := strings.TrimSpace(c.TrainNumber)
		coach := routing.NormalizeCoach(c.Coach)
		if train == "" || coach == "" {
			continue
		}

		for _, t := range []string{train, routing.StripLeadingZeros(train)} {
			pair := routing.Pair{Train: t, Coach: coach}
			if !seenPairs[pair] {
				seenPairs[pair] = true
				pairs = append(pairs, pair)
			}
			if !seenTrains[t] {
				seenTrains[t] = true
				trains = append(trains, t)
			}
		}
	}

	return pairs, trains
}

// ValidationInstant returns the instant used for final-day checks when listing
// complaints for queryDate: now if queryDate is today in loc, otherwise the
// start of queryDate in loc
func ValidationInstant(queryDate time.Time, now time.Time, loc *time.Location) time.Time {
	localNow := now.In(loc)
	y, m, d := queryDate.Date()
	if ny, nm, nd := localNow.Date(); ny == y && nm == m && nd == d {
		return localNow
	}
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func complaintIDs(complaints []db.Complaint) []int64 {
	ids := make([]int64, 0, len(complaints))
	seen := make(map[int64]bool, len(complaints))
	for _, c := range complaints {
		if !seen[c.ComplainID] {
			seen[c.ComplainID] = true
			ids = append(ids, c.ComplainID)
		}
	}
	return ids
}
