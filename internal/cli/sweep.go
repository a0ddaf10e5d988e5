package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-circulation/features/command/runsweep"
	"github.com/AntonStoeckl/library-circulation/sweep"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the circulation tables and indexes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, app *App, printer Printer) error {
				if err := app.Migrate(ctx); err != nil {
					return printer.Error(err)
				}

				return printer.Data(map[string]string{"store": app.Config.Store})
			})
		},
	}
}

// NewSweepCommand creates the sweep command.
func NewSweepCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Run one overdue sweep",
		Long: `Run one overdue sweep and print its counts.

A sweep that finds another sweep holding the lock is reported as skipped and exits with 0.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, app *App, printer Printer) error {
				var result sweep.Result

				command := runsweep.BuildCommand()
				handler := runsweep.NewCommandHandler(
					app.Engine,
					runsweep.WithResultReporter(func(_ context.Context, r sweep.Result) { result = r }),
					runsweep.WithRetryOptions(retryOptions(app.Observability, command)...),
				)

				// result is filled by the reporter before the printer marshals it
				return handleCommand[runsweep.Command](ctx, app, printer, handler, command, &result)
			})
		},
	}
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var runOnStart bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the sweep scheduler until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, app *App, printer Printer) error {
				options := []sweep.SchedulerOption{
					sweep.WithInterval(app.Config.SweepInterval),
					sweep.WithSchedulerLogger(app.Observability.Logger),
				}

				if runOnStart {
					options = append(options, sweep.WithRunOnStart())
				}

				scheduler, err := sweep.NewScheduler(app.Engine, options...)
				if err != nil {
					return printer.Error(err)
				}

				scheduler.Start(ctx)
				<-ctx.Done()
				scheduler.Stop()

				return printer.Data(map[string]string{"scheduler": "stopped"})
			})
		},
	}

	cmd.Flags().BoolVar(&runOnStart, "run-on-start", true, "sweep once right after start")

	return cmd
}
