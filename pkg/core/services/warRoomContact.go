package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/suvidhaen/railsathi-be/pkg/core/routing"
)

// WarRoomStore is the subset of the database needed to find a depot's war room user
type WarRoomStore interface {
	GetTrainDepot(ctx context.Context, trainNos []string) (string, error)
	GetWarRoomPhone(ctx context.Context, depot string) (string, error)
}

// EmailSender sends plain text email. *gmailclient.Client implements it.
type EmailSender interface {
	SendEmail(to []string, subject, body string) error
}

// WarRoomOptions configures the war room lookup
type WarRoomOptions struct {
	Env             string
	DefaultContact  string
	AlertRecipients []string
}

// WarRoomRequest describes the complaint a war room contact is needed for
type WarRoomRequest struct {
	TrainNumber   string
	PNRNumber     string
	DateOfJourney string
	Coach         string
	BerthNo       string
}

// WarRoomContact is the result of a war room lookup
type WarRoomContact struct {
	Phone     string
	Depot     string
	IsDefault bool
	// AlertDone is closed once any missing war room user alert has been sent
	AlertDone <-chan struct{}
}

// ResolveWarRoomContact finds the phone of the war room user for the train's depot.
// Without one it returns the default contact and emails an alert in the background.
// Store failures are logged and also fall back to the default contact.
func ResolveWarRoomContact(
	ctx context.Context,
	store WarRoomStore,
	mailer EmailSender,
	opts WarRoomOptions,
	logger *zap.Logger,
	req WarRoomRequest,
) WarRoomContact {
	train := strings.TrimSpace(req.TrainNumber)
	result := WarRoomContact{AlertDone: closedChan()}

	if train != "" {
		depot, err := store.GetTrainDepot(ctx, routing.TrainSpellings(train))
		if err != nil {
			logger.Error("Failed to fetch train depot", zap.String("train", train), zap.Error(err))
		}
		result.Depot = depot

		if depot != "" {
			phone, err := store.GetWarRoomPhone(ctx, depot)
			if err != nil {
				logger.Error("Failed to fetch war room user", zap.String("depot", depot), zap.Error(err))
			}
			result.Phone = strings.TrimSpace(phone)
		}
	}

	if result.Phone != "" {
		logger.Debug("Found war room user", zap.String("train", train), zap.String("depot", result.Depot))
		return result
	}

	logger.Warn("No war room user found, using default contact",
		zap.String("train", train),
		zap.String("depot", result.Depot))
	result.Phone = opts.DefaultContact
	result.IsDefault = true

	if mailer == nil || len(opts.AlertRecipients) == 0 {
		logger.Debug("Missing war room user alert not configured")
		return result
	}

	subject, body := warRoomAlert(opts.Env, req, result.Depot)
	result.AlertDone = runDetached(ctx, logger, "war room alert", func(ctx context.Context) error {
		if err := mailer.SendEmail(opts.AlertRecipients, subject, body); err != nil {
			return fmt.Errorf("failed to send war room alert: %w", err)
		}
		logger.Info("War room alert sent", zap.String("train", train), zap.String("pnr", req.PNRNumber))
		return nil
	})

	return result
}

// warRoomAlert renders the missing war room user email
func warRoomAlert(env string, req WarRoomRequest, depot string) (string, string) {
	if depot == "" {
		depot = "(Not found in database)"
	}

	subject := envSubject(env, fmt.Sprintf("%s (%s) No War Room User RailSathi(WRUR) Found !", req.TrainNumber, depot))

	body := fmt.Sprintf(
		"No War Room User RailSathi (WRUR) exists for PNR Number: %s in Train Number: %s travelling on %s\n"+
			"in %s/%s\n"+
			"Train Depot: %s\n\n"+
			"Kindly verify the WRUR assignment to the given train depot.\n",
		req.PNRNumber, req.TrainNumber, req.DateOfJourney, req.Coach, req.BerthNo, depot)

	return subject, body
}

// envSubject marks email subjects sent from outside production
func envSubject(env, subject string) string {
	switch strings.ToUpper(strings.TrimSpace(env)) {
	case "PROD":
		return subject
	case "UAT":
		return "UAT | " + subject
	default:
		return "LOCAL | " + subject
	}
}
