package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/suvidhaen/railsathi-be/pkg/core/services"
)

// SupportContactCmd creates the supportContact command
func SupportContactCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "supportContact <train> <coach> [date]",
		Short: "Find the staff member responsible for a coach (defaults to today)",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := app.queryDate(args, 2)
			if err != nil {
				return err
			}

			contact, err := services.ResolveSupportContact(app.Ctx, app.Builder, app.Logger, args[0], args[1], date, app.validationInstant(date))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s\n", args[0], args[1], contactOrNone(contact))
			return nil
		},
	}
}
