package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/suvidhaen/railsathi-be/pkg/core/routing"
)

// ResolveSupportContact returns the support contact for a single train and coach,
// or "" when nobody is responsible
func ResolveSupportContact(
	ctx context.Context,
	builder IndexBuilder,
	logger *zap.Logger,
	train, coach string,
	queryDate time.Time,
	validation time.Time,
) (string, error) {
	train = strings.TrimSpace(train)
	if train == "" || routing.NormalizeCoach(coach) == "" {
		return "", nil
	}

	index, err := builder.Build(ctx, queryDate, validation, []string{train, routing.StripLeadingZeros(train)})
	if err != nil {
		return "", fmt.Errorf("failed to build assignment index: %w", err)
	}

	contact := routing.ResolveOne(index, train, coach)
	logger.Debug("Resolved support contact",
		zap.String("train", train),
		zap.String("coach", coach),
		zap.Bool("found", contact != ""))

	return contact, nil
}
