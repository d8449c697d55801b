package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/suvidhaen/railsathi-be/pkg/core/journey"
)

const validationLayout = "2006-01-02 15:04:05"

// CheckAssignmentCmd creates the checkAssignment command
func CheckAssignmentCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "checkAssignment <origin_date> <duration_days> <end_time> <target_date> [validation_time]",
		Short: "Check whether a run starting on origin_date covers target_date",
		Long: `Check whether staff assigned to a run starting on origin_date are responsible on target_date.
validation_time is "YYYY-MM-DD HH:MM:SS" in the configured time zone and defaults to now.`,
		Args: cobra.RangeArgs(4, 5),
		RunE: func(cmd *cobra.Command, args []string) error {
			duration, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("duration_days must be a number: %w", err)
			}

			validation := app.Now().In(app.location())
			if len(args) > 4 {
				validation, err = time.ParseInLocation(validationLayout, args[4], app.location())
				if err != nil {
					return fmt.Errorf("validation_time must be YYYY-MM-DD HH:MM:SS: %w", err)
				}
			}

			assigned := journey.IsAssignedOnDateStrings(args[0], duration, args[2], args[3], validation)

			out := cmd.OutOrStdout()
			if origin, err := journey.ParseDate(args[0]); err == nil {
				first, last := journey.Window(origin, duration)
				fmt.Fprintf(out, "Run:        %s to %s (ends %s)\n", first.Format(journey.DateLayout), last.Format(journey.DateLayout), args[2])
			}
			fmt.Fprintf(out, "Validation: %s\n", validation.Format(validationLayout))
			if assigned {
				fmt.Fprintf(out, "✓ Assigned on %s\n", args[3])
			} else {
				fmt.Fprintf(out, "✗ Not assigned on %s\n", args[3])
			}
			return nil
		},
	}
}
