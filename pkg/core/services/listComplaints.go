package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/suvidhaen/railsathi-be/pkg/core/routing"
	"github.com/suvidhaen/railsathi-be/pkg/db"
)

// ListComplaintsStore is the subset of the database needed to list complaints
type ListComplaintsStore interface {
	MediaStore
	GetComplaintsByDate(ctx context.Context, createdOn time.Time, trainNumbers []string) ([]db.Complaint, error)
	GetUserDepots(ctx context.Context, mobile string) ([]string, error)
	GetDepotTrainNumbers(ctx context.Context, depots []string) ([]string, error)
}

// ListComplaints returns the enriched complaints created on date. When mobile is
// set, only complaints on trains of that user's depots are returned.
func ListComplaints(
	ctx context.Context,
	store ListComplaintsStore,
	builder IndexBuilder,
	logger *zap.Logger,
	date time.Time,
	mobile string,
	validation time.Time,
) ([]EnrichedComplaint, error) {
	var trainFilter []string

	if mobile != "" {
		logger.Debug("Scoping complaints to user depots", zap.String("mobile", mobile))

		depots, err := store.GetUserDepots(ctx, mobile)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch user depots: %w", err)
		}
		if len(depots) == 0 {
			logger.Info("No depots found for mobile number", zap.String("mobile", mobile))
			return []EnrichedComplaint{}, nil
		}

		trains, err := store.GetDepotTrainNumbers(ctx, depots)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch depot trains: %w", err)
		}
		if len(trains) == 0 {
			logger.Info("No trains found for depots", zap.Strings("depots", depots))
			return []EnrichedComplaint{}, nil
		}

		trainFilter = expandTrainSpellings(trains)
	}

	complaints, err := store.GetComplaintsByDate(ctx, date, trainFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch complaints: %w", err)
	}

	logger.Info("Fetched complaints", zap.Int("count", len(complaints)), zap.Time("date", date))

	return EnrichComplaints(ctx, store, builder, logger, complaints, date, validation)
}

// expandTrainSpellings returns every spelling of every train, without duplicates
func expandTrainSpellings(trains []string) []string {
	seen := make(map[string]bool)
	var expanded []string
	for _, train := range trains {
		for _, spelling := range routing.TrainSpellings(train) {
			if !seen[spelling] {
				seen[spelling] = true
				expanded = append(expanded, spelling)
			}
		}
	}
	return expanded
}
