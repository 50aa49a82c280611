package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newTagsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Inspect backend tags",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List tags in board order",
		RunE: func(cmd *cobra.Command, args []string) error {
			tags, err := app.client().ListTags(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			if app.JSON {
				return writeJSON(cmd, tags)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ORDER\tNAME\tCATEGORY")
			for _, tag := range tags {
				fmt.Fprintf(w, "%d\t%s\t%s\n", tag.Order, tag.Name, tag.CategoryID())
			}
			return w.Flush()
		},
	})
	return cmd
}
