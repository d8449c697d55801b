package commands

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/suvidhaen/railsathi-be/pkg/core/services"
)

// NotifyComplaintCmd creates the notifyComplaint command
func NotifyComplaintCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notifyComplaint <complaint_id>",
		Short: "Send push, in-app and email notifications about a complaint to the responsible staff",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			priority, _ := cmd.Flags().GetString("priority")

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("complaint_id must be a number: %w", err)
			}
			if app.Notifier == nil {
				return errors.New("notifications are disabled in this environment")
			}

			complaint, err := app.Database.GetComplaintByID(app.Ctx, id)
			if err != nil {
				return fmt.Errorf("failed to fetch complaint: %w", err)
			}
			if complaint == nil {
				return fmt.Errorf("complaint %d not found", id)
			}

			notice := services.NoticeFromComplaint(*complaint, priority)
			dispatch := services.DispatchComplaintNotification(app.Ctx, app.Database, app.Notifier, app.Mailer, app.Env, app.Overrides, app.Logger, notice, app.Now)

			// Dispatch runs in the background; wait so the process does not exit first
			<-dispatch.Done

			app.Logger.Info("Complaint notification dispatched", zap.Int64("complain_id", id), zap.String("dispatch_id", dispatch.ID))
			fmt.Fprintf(cmd.OutOrStdout(), "\n✓ Notification dispatch %s finished for complaint %d (see log for delivery)\n\n", dispatch.ID, id)
			return nil
		},
	}

	cmd.Flags().String("priority", "", "Complaint priority (high and urgent mark action required)")

	return cmd
}
