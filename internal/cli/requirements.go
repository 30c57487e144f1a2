package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newRequirementsCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "requirements",
		Short: "Inspect nutritional requirement profiles",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List requirement profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tANIMAL\tSTAGE\tNUTRIENTS")
			for _, p := range rt.app.Requirements.Load(cmd.Context()) {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", p.ID, p.ProfileDisplayName, p.AnimalType, p.GrowthStageDescription, len(p.Nutrients))
			}
			return w.Flush()
		},
	}

	cmd.AddCommand(list)
	return cmd
}
