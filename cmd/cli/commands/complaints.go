package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/suvidhaen/railsathi-be/pkg/core/journey"
	"github.com/suvidhaen/railsathi-be/pkg/core/services"
)

// ComplaintsCmd creates the complaints command
func ComplaintsCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "complaints [date]",
		Short: "List complaints created on a date with their support contacts (defaults to today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mobile, _ := cmd.Flags().GetString("mobile")
			asJSON, _ := cmd.Flags().GetBool("json")

			complaints, err := listComplaints(app, args, mobile)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), complaints)
			}
			printComplaints(cmd.OutOrStdout(), complaints)
			return nil
		},
	}

	cmd.Flags().String("mobile", "", "Only show complaints on trains of this user's depots")
	cmd.Flags().Bool("json", false, "Print complaints as JSON")

	return cmd
}

func listComplaints(app *AppContext, args []string, mobile string) ([]services.EnrichedComplaint, error) {
	date, err := app.queryDate(args, 0)
	if err != nil {
		return nil, err
	}

	app.Logger.Info("Listing complaints",
		zap.String("date", date.Format(journey.DateLayout)),
		zap.String("mobile", mobile))

	return services.ListComplaints(app.Ctx, app.Database, app.Builder, app.Logger, date, mobile, app.validationInstant(date))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}

func printComplaints(w io.Writer, complaints []services.EnrichedComplaint) {
	if len(complaints) == 0 {
		fmt.Fprintln(w, "No complaints found.")
		return
	}

	fmt.Fprintf(w, "\nFound %d complaints:\n\n", len(complaints))
	for _, c := range complaints {
		fmt.Fprintf(w, "- #%d %s %s/%s [%s] %s - contact: %s\n",
			c.ComplainID,
			c.TrainNumber,
			c.Coach,
			c.BerthNo,
			c.ComplainStatus,
			c.ComplainType,
			contactOrNone(c.SupportContact),
		)
	}
	fmt.Fprintln(w)
}

func contactOrNone(contact string) string {
	if contact == "" {
		return "none"
	}
	return contact
}
