package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-circulation/shell/config"
)

// RootOptions holds global flags for all commands. Flags that are set override the environment.
type RootOptions struct {
	Pretty     bool
	Verbose    bool
	Store      string
	Adapter    string
	SQLitePath string

	// LoadConfig reads the base configuration, config.LoadAppConfigFromEnv unless a test replaces it.
	LoadConfig func() (config.AppConfig, error)
}

// NewRootCommand creates the root command of the circulation CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{LoadConfig: config.LoadAppConfigFromEnv})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "circulation",
		Short: "Library circulation with overdue enforcement",
		Long: `Runs the overdue sweep of a library circulation store and the librarian actions around it.

The sweep marks past-due loans overdue, locks the patron accounts, writes one overdue
notification per patron and expires lapsed reservation holds. Configuration comes from
CIRCULATION_* environment variables; the global flags override them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVar(&opts.Pretty, "pretty", false, "indent the JSON output")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log at debug level")
	cmd.PersistentFlags().StringVar(&opts.Store, "store", "", "store engine (postgres|sqlite|memory)")
	cmd.PersistentFlags().StringVar(&opts.Adapter, "adapter", "", "database adapter (pgx|sql|sqlx)")
	cmd.PersistentFlags().StringVar(&opts.SQLitePath, "sqlite-path", "", "SQLite database file")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSweepCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewAddBookCommand(opts))
	cmd.AddCommand(NewUpdateBookCommand(opts))
	cmd.AddCommand(NewLendCommand(opts))
	cmd.AddCommand(NewReturnCommand(opts))
	cmd.AddCommand(NewReserveCommand(opts))
	cmd.AddCommand(NewCancelCommand(opts))
	cmd.AddCommand(NewUnlockCommand(opts))
	cmd.AddCommand(NewReadCommand(opts))
	cmd.AddCommand(NewLoansCommand(opts))
	cmd.AddCommand(NewNotificationsCommand(opts))
	cmd.AddCommand(NewReportCommand(opts))
	cmd.AddCommand(NewSearchCommand(opts))

	return cmd
}

func (o *RootOptions) appConfig() (config.AppConfig, error) {
	cfg, err := o.LoadConfig()
	if err != nil {
		return config.AppConfig{}, err
	}

	if o.Store != "" {
		cfg.Store = o.Store
	}

	if o.Adapter != "" {
		cfg.DBAdapter = o.Adapter
	}

	if o.SQLitePath != "" {
		cfg.SQLitePath = o.SQLitePath
	}

	if o.Verbose {
		cfg.LogLevel = slog.LevelDebug
	}

	return cfg, cfg.Validate()
}

// run opens the App for one command, migrates SQLite and memory stores and closes everything afterwards.
func (o *RootOptions) run(cmd *cobra.Command, fn func(ctx context.Context, app *App, printer Printer) error) (err error) {
	printer := newPrinter(cmd.OutOrStdout(), o.Pretty)

	cfg, err := o.appConfig()
	if err != nil {
		return printer.Error(WrapExitError(ExitCommandError, "invalid configuration", err))
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	app, err := NewApp(ctx, cfg, cmd.ErrOrStderr())
	if err != nil {
		return printer.Error(WrapExitError(ExitCommandError, "opening the store failed", err))
	}

	defer func() {
		if closeErr := app.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()

	if cfg.Store != config.StorePostgres {
		if err = app.Migrate(ctx); err != nil {
			return printer.Error(WrapExitError(ExitCommandError, "migrating the store failed", err))
		}
	}

	return fn(ctx, app, printer)
}

func parseID(flag, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, WrapExitError(ExitCommandError, fmt.Sprintf("invalid --%s", flag), err)
	}

	return id, nil
}

// parseIDOrNew parses value, or returns a new time ordered id when value is empty.
func parseIDOrNew(flag, value string) (uuid.UUID, error) {
	if value == "" {
		return uuid.NewV7()
	}

	return parseID(flag, value)
}

// parseAt parses an RFC 3339 timestamp, or returns the current time when value is empty.
func parseAt(value string) (time.Time, error) {
	if value == "" {
		return time.Now(), nil
	}

	at, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, WrapExitError(ExitCommandError, "invalid --at", err)
	}

	return at, nil
}
