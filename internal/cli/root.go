package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/agribalance/internal/app"
	"github.com/mamadbah2/agribalance/internal/config"
	"github.com/mamadbah2/agribalance/pkg/logger"
)

// Opener builds the application for one command run. The returned function
// releases it.
type Opener func(ctx context.Context, envFile string) (*app.App, func(), error)

type runtime struct {
	open    Opener
	envFile string
	app     *app.App
	close   func()
}

func (rt *runtime) release() {
	if rt.close != nil {
		rt.close()
		rt.close = nil
	}
}

// NewRootCommand builds the agribalance command tree.
func NewRootCommand(open Opener, out io.Writer) *cobra.Command {
	return newRootCommand(&runtime{open: open}, out)
}

func newRootCommand(rt *runtime, out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "agribalance",
		Short: "Manage AgriBalance feed libraries",
		Long: `agribalance works directly on the configured store: export and import the
ingredient and formulation libraries, list requirement profiles and publish
saved formulations to Google Sheets.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a, closeFn, err := rt.open(cmd.Context(), rt.envFile)
			if err != nil {
				return err
			}
			rt.app, rt.close = a, closeFn
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			rt.release()
		},
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&rt.envFile, "env-file", "", "Path to a .env file (default: ./.env when present)")

	root.AddCommand(newIngredientsCommand(rt))
	root.AddCommand(newFormulationsCommand(rt))
	root.AddCommand(newRequirementsCommand(rt))
	return root
}

// Execute runs the command line tool with the configured store.
func Execute() {
	rt := &runtime{open: openFromConfig}
	err := newRootCommand(rt, os.Stdout).ExecuteContext(context.Background())
	// PersistentPostRun is skipped when a command fails.
	rt.release()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openFromConfig(ctx context.Context, envFile string) (*app.App, func(), error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, err
	}

	// CLI output goes to stdout; keep logs quiet unless asked for.
	level := cfg.Log.Level
	if os.Getenv("LOG_LEVEL") == "" {
		level = "warn"
	}
	base, err := logger.New(level)
	if err != nil {
		return nil, nil, err
	}

	a, err := app.New(ctx, cfg, base)
	if err != nil {
		_ = base.Sync()
		return nil, nil, err
	}
	return a, func() {
		a.Close(context.Background())
		_ = base.Sync()
	}, nil
}

// writeOutput writes body to path, or to the command output when path is empty.
func writeOutput(cmd *cobra.Command, path, body string) error {
	if path == "" {
		_, err := io.WriteString(cmd.OutOrStdout(), body)
		return err
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "written to %s\n", path)
	return nil
}
