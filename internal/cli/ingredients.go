package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newIngredientsCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingredients",
		Short: "Export or import the ingredient library",
	}

	var output string
	export := &cobra.Command{
		Use:   "export",
		Short: "Write the ingredient library as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := rt.app.Ingredients.ExportCSV(cmd.Context())
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, out)
		},
	}
	export.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")

	importCmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Merge a CSV file into the ingredient library by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer f.Close()

			result, err := rt.app.Ingredients.ImportCSV(cmd.Context(), f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d ingredients imported, library now has %d\n", result.Imported, len(result.Library))
			return nil
		},
	}

	cmd.AddCommand(export, importCmd)
	return cmd
}
