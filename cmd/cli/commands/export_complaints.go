package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/suvidhaen/railsathi-be/pkg/report"
)

// ExportComplaintsCmd creates the exportComplaints command
func ExportComplaintsCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exportComplaints <date> <file.xlsx>",
		Short: "Export complaints created on a date with their support contacts to Excel",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mobile, _ := cmd.Flags().GetString("mobile")

			complaints, err := listComplaints(app, args[:1], mobile)
			if err != nil {
				return err
			}

			data, err := report.ComplaintsWorkbook(complaints)
			if err != nil {
				return fmt.Errorf("failed to build workbook: %w", err)
			}
			if err := os.WriteFile(args[1], data, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", args[1], err)
			}

			app.Logger.Info("Exported complaints", zap.Int("count", len(complaints)), zap.String("file", args[1]))
			fmt.Fprintf(cmd.OutOrStdout(), "\n✓ Exported %d complaints to %s\n\n", len(complaints), args[1])
			return nil
		},
	}

	cmd.Flags().String("mobile", "", "Only export complaints on trains of this user's depots")

	return cmd
}
