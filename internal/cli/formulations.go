package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newFormulationsCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "formulations",
		Short: "Export, import or publish saved formulations",
	}

	var format, output string
	export := &cobra.Command{
		Use:   "export",
		Short: "Write the formulation library as CSV or JSON",
		Example: `  agribalance formulations export --format csv -o formulations.csv
  agribalance formulations export --format json > backup.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				out string
				err error
			)
			switch format {
			case "csv":
				out, err = rt.app.Formulations.ExportCSV(cmd.Context())
			case "json":
				out, err = rt.app.Formulations.ExportJSON(cmd.Context())
			default:
				return fmt.Errorf("unsupported format %q (use csv or json)", format)
			}
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, out)
		},
	}
	export.Flags().StringVarP(&format, "format", "f", "csv", "Output format: csv, json")
	export.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")

	importCmd := &cobra.Command{
		Use:   "import <file.json>",
		Short: "Merge a JSON export into the formulation library by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			result := rt.app.Formulations.ImportJSON(cmd.Context(), string(data))
			if !result.Success {
				return errors.New(result.Message)
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Message)
			return nil
		},
	}

	publish := &cobra.Command{
		Use:   "publish",
		Short: "Replace the configured Google Sheets range with the library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := rt.app.Publishing.Publish(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d formulations published\n", n)
			return nil
		},
	}

	cmd.AddCommand(export, importCmd, publish)
	return cmd
}
