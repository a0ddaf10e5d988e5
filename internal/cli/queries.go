package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-circulation/features/query/borrowedbooks"
	"github.com/AntonStoeckl/library-circulation/features/query/circulationreport"
	"github.com/AntonStoeckl/library-circulation/features/query/patronnotifications"
	"github.com/AntonStoeckl/library-circulation/features/query/searchbooks"
)

// NewLoansCommand creates the loans command.
func NewLoansCommand(rootOpts *RootOptions) *cobra.Command {
	var userID, at string

	cmd := &cobra.Command{
		Use:   "loans",
		Short: "List the books a patron currently holds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, app *App, printer Printer) error {
				user, err := parseID("user", userID)
				if err != nil {
					return printer.Error(err)
				}

				asOf, err := parseAt(at)
				if err != nil {
					return printer.Error(err)
				}

				return handleQuery[borrowedbooks.Query, borrowedbooks.BorrowedBooks](
					ctx, app, printer,
					borrowedbooks.NewQueryHandler(app.Store),
					borrowedbooks.BuildQuery(user, asOf),
				)
			})
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "patron id (required)")
	cmd.Flags().StringVar(&at, "at", "", "overdue reference time (RFC 3339), now when empty")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

// NewNotificationsCommand creates the notifications command.
func NewNotificationsCommand(rootOpts *RootOptions) *cobra.Command {
	var userID string
	var unreadOnly bool

	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "List the notifications of a patron",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, app *App, printer Printer) error {
				user, err := parseID("user", userID)
				if err != nil {
					return printer.Error(err)
				}

				return handleQuery[patronnotifications.Query, patronnotifications.PatronNotifications](
					ctx, app, printer,
					patronnotifications.NewQueryHandler(app.Store),
					patronnotifications.BuildQuery(user, unreadOnly),
				)
			})
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "patron id (required)")
	cmd.Flags().BoolVar(&unreadOnly, "unread", false, "only unread notifications")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

// NewReportCommand creates the report command.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize loans, accounts and copy stock",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, app *App, printer Printer) error {
				generatedAt, err := parseAt(at)
				if err != nil {
					return printer.Error(err)
				}

				return handleQuery[circulationreport.Query, circulationreport.Report](
					ctx, app, printer,
					circulationreport.NewQueryHandler(app.Store),
					circulationreport.BuildQuery(generatedAt),
				)
			})
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "report time (RFC 3339), now when empty")

	return cmd
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [term]",
		Short: "Search the catalog by title, author, ISBN or category",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, app *App, printer Printer) error {
				var term string
				if len(args) > 0 {
					term = args[0]
				}

				return handleQuery[searchbooks.Query, searchbooks.SearchResult](
					ctx, app, printer,
					searchbooks.NewQueryHandler(app.Store),
					searchbooks.BuildQuery(term),
				)
			})
		},
	}

	return cmd
}
