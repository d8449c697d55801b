package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/suvidhaen/railsathi-be/pkg/core/services"
)

// WarRoomContactCmd creates the warRoomContact command
func WarRoomContactCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "warRoomContact <train>",
		Short: "Find the war room user for a train's depot, alerting if there is none",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pnr, _ := cmd.Flags().GetString("pnr")
			coach, _ := cmd.Flags().GetString("coach")
			berth, _ := cmd.Flags().GetString("berth")
			doj, _ := cmd.Flags().GetString("doj")

			opts := services.WarRoomOptions{
				Env:             app.Env,
				DefaultContact:  app.Cfg.DefaultSupportContact,
				AlertRecipients: app.Cfg.Mail.AlertRecipients,
			}
			req := services.WarRoomRequest{
				TrainNumber:   args[0],
				PNRNumber:     pnr,
				DateOfJourney: doj,
				Coach:         coach,
				BerthNo:       berth,
			}

			contact := services.ResolveWarRoomContact(app.Ctx, app.Database, app.Mailer, opts, app.Logger, req)

			// The alert is sent in the background; wait so the process does not exit first
			<-contact.AlertDone

			out := cmd.OutOrStdout()
			if contact.IsDefault {
				fmt.Fprintf(out, "No war room user found for %s, default contact: %s\n", args[0], contact.Phone)
				return nil
			}
			fmt.Fprintf(out, "%s (%s): %s\n", args[0], contact.Depot, contact.Phone)
			return nil
		},
	}

	cmd.Flags().String("pnr", "", "PNR number for the alert email")
	cmd.Flags().String("coach", "", "Coach for the alert email")
	cmd.Flags().String("berth", "", "Berth for the alert email")
	cmd.Flags().String("doj", "", "Date of journey for the alert email")

	return cmd
}
