package commands

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/suvidhaen/railsathi-be/internal/config"
	"github.com/suvidhaen/railsathi-be/pkg/core/journey"
	"github.com/suvidhaen/railsathi-be/pkg/core/routing"
	"github.com/suvidhaen/railsathi-be/pkg/core/services"
	"github.com/suvidhaen/railsathi-be/pkg/db"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Env       string
	Cfg       *config.Config
	Database  db.Database
	Builder   services.IndexBuilder
	Overrides []routing.ScheduleOverride
	Notifier  services.Notifier    // nil when notifications are disabled
	Mailer    services.EmailSender // nil when alert mail is not configured
	Logger    *zap.Logger
	Ctx       context.Context
	Now       func() time.Time
}

func (app *AppContext) location() *time.Location {
	if app.Cfg == nil {
		return time.UTC
	}
	return app.Cfg.Location()
}

// today returns the current civil date in the configured time zone
func (app *AppContext) today() time.Time {
	return journey.CivilDate(app.Now().In(app.location()))
}

// queryDate parses an optional "YYYY-MM-DD" argument, defaulting to today
func (app *AppContext) queryDate(args []string, i int) (time.Time, error) {
	if len(args) <= i || args[i] == "" || args[i] == "today" {
		return app.today(), nil
	}
	d, err := journey.ParseDate(args[i])
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be YYYY-MM-DD: %w", err)
	}
	return d, nil
}

// validationInstant is the instant used for final-day checks on queryDate
func (app *AppContext) validationInstant(queryDate time.Time) time.Time {
	return services.ValidationInstant(queryDate, app.Now(), app.location())
}
