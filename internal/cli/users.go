package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tagboard/internal/service"
)

func newUsersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage backend accounts",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := app.client()
			ctx, err := app.session(cmd.Context(), client)
			if err != nil {
				return writeErr(cmd, err)
			}
			users, err := service.NewUserService(client, nil, app.log).List(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			if app.JSON {
				return writeJSON(cmd, users)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tROLE")
			for _, user := range users {
				fmt.Fprintf(w, "%s\t%s\t%s\n", user.ID, user.Name, user.Role)
			}
			return w.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete accounts in parallel",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := app.client()
			ctx, err := app.session(cmd.Context(), client)
			if err != nil {
				return writeErr(cmd, err)
			}
			listing := service.NewUserService(client, nil, app.log).DeleteSelected(ctx, args)
			if app.JSON {
				if err := writeJSON(cmd, map[string]any{"failed": listing.Failed, "users": listing.Users}); err != nil {
					return err
				}
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d, failed %d\n", len(args)-len(listing.Failed), len(listing.Failed))
			}
			if !listing.Result.IsOK() {
				return writeErr(cmd, fmt.Errorf("%s", listing.Result.Reason))
			}
			return nil
		},
	})
	return cmd
}
