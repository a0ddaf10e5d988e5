package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-circulation/features/command/addbook"
	"github.com/AntonStoeckl/library-circulation/features/command/cancelreservation"
	"github.com/AntonStoeckl/library-circulation/features/command/lendbook"
	"github.com/AntonStoeckl/library-circulation/features/command/marknotificationread"
	"github.com/AntonStoeckl/library-circulation/features/command/placereservation"
	"github.com/AntonStoeckl/library-circulation/features/command/returnloan"
	"github.com/AntonStoeckl/library-circulation/features/command/unlockaccount"
	"github.com/AntonStoeckl/library-circulation/features/command/updatebook"
)

const day = 24 * time.Hour

// NewLendCommand creates the lend command.
func NewLendCommand(rootOpts *RootOptions) *cobra.Command {
	var bookID, userID, loanID, at string
	var days int

	cmd := &cobra.Command{
		Use:   "lend",
		Short: "Lend a copy of a book to a patron",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, app *App, printer Printer) error {
				book, err := parseID("book", bookID)
				if err != nil {
					return printer.Error(err)
				}

				user, err := parseID("user", userID)
				if err != nil {
					return printer.Error(err)
				}

				loan, err := parseIDOrNew("loan-id", loanID)
				if err != nil {
					return printer.Error(err)
				}

				borrowDate, err := parseAt(at)
				if err != nil {
					return printer.Error(err)
				}

				command := lendbook.BuildCommand(loan, book, user, borrowDate, time.Duration(days)*day)
				handler := lendbook.NewCommandHandler(app.Store, lendbook.WithRetryOptions(retryOptions(app.Observability, command)...))

				return handleCommand[lendbook.Command](ctx, app, printer, handler, command, command)
			})
		},
	}

	cmd.Flags().StringVar(&bookID, "book", "", "book id (required)")
	cmd.Flags().StringVar(&userID, "user", "", "patron id (required)")
	cmd.Flags().StringVar(&loanID, "loan-id", "", "loan id, generated when empty")
	cmd.Flags().StringVar(&at, "at", "", "borrow date (RFC 3339), now when empty")
	cmd.Flags().IntVar(&days, "days", int(lendbook.DefaultLoanPeriod/day), "loan period in days")
	_ = cmd.MarkFlagRequired("book")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

// NewReturnCommand creates the return command.
func NewReturnCommand(rootOpts *RootOptions) *cobra.Command {
	var loanID, at string

	cmd := &cobra.Command{
		Use:   "return",
		Short: "Return a loan and offer the copy to the next reservation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, app *App, printer Printer) error {
				loan, err := parseID("loan", loanID)
				if err != nil {
					return printer.Error(err)
				}

				returnDate, err := parseAt(at)
				if err != nil {
					return printer.Error(err)
				}

				command := returnloan.BuildCommand(loan, returnDate)
				handler := returnloan.NewCommandHandler(app.Store, returnloan.WithRetryOptions(retryOptions(app.Observability, command)...))

				return handleCommand[returnloan.Command](ctx, app, printer, handler, command, command)
			})
		},
	}

	cmd.Flags().StringVar(&loanID, "loan", "", "loan id (required)")
	cmd.Flags().StringVar(&at, "at", "", "return date (RFC 3339), now when empty")
	_ = cmd.MarkFlagRequired("loan")

	return cmd
}

// NewReserveCommand creates the reserve command.
func NewReserveCommand(rootOpts *RootOptions) *cobra.Command {
	var bookID, userID, reservationID, at string

	cmd := &cobra.Command{
		Use:   "reserve",
		Short: "Queue a patron for a book without an available copy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, app *App, printer Printer) error {
				book, err := parseID("book", bookID)
				if err != nil {
					return printer.Error(err)
				}

				user, err := parseID("user", userID)
				if err != nil {
					return printer.Error(err)
				}

				reservation, err := parseIDOrNew("reservation-id", reservationID)
				if err != nil {
					return printer.Error(err)
				}

				reservationDate, err := parseAt(at)
				if err != nil {
					return printer.Error(err)
				}

				command := placereservation.BuildCommand(reservation, book, user, reservationDate)
				handler := placereservation.NewCommandHandler(
					app.Store,
					placereservation.WithRetryOptions(retryOptions(app.Observability, command)...),
				)

				return handleCommand[placereservation.Command](ctx, app, printer, handler, command, command)
			})
		},
	}

	cmd.Flags().StringVar(&bookID, "book", "", "book id (required)")
	cmd.Flags().StringVar(&userID, "user", "", "patron id (required)")
	cmd.Flags().StringVar(&reservationID, "reservation-id", "", "reservation id, generated when empty")
	cmd.Flags().StringVar(&at, "at", "", "reservation date (RFC 3339), now when empty")
	_ = cmd.MarkFlagRequired("book")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

// NewCancelCommand creates the cancel command.
func NewCancelCommand(rootOpts *RootOptions) *cobra.Command {
	var reservationID, at string

	cmd := &cobra.Command{
		Use:   "cancel",
		Short: "Cancel a pending reservation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, app *App, printer Printer) error {
				reservation, err := parseID("reservation", reservationID)
				if err != nil {
					return printer.Error(err)
				}

				occurredAt, err := parseAt(at)
				if err != nil {
					return printer.Error(err)
				}

				command := cancelreservation.BuildCommand(reservation, occurredAt)
				handler := cancelreservation.NewCommandHandler(
					app.Store,
					cancelreservation.WithRetryOptions(retryOptions(app.Observability, command)...),
				)

				return handleCommand[cancelreservation.Command](ctx, app, printer, handler, command, command)
			})
		},
	}

	cmd.Flags().StringVar(&reservationID, "reservation", "", "reservation id (required)")
	cmd.Flags().StringVar(&at, "at", "", "cancellation time (RFC 3339), now when empty")
	_ = cmd.MarkFlagRequired("reservation")

	return cmd
}

// NewUnlockCommand creates the unlock command.
func NewUnlockCommand(rootOpts *RootOptions) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "unlock",
		Short: "Lift the block of a patron account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, app *App, printer Printer) error {
				user, err := parseID("user", userID)
				if err != nil {
					return printer.Error(err)
				}

				command := unlockaccount.BuildCommand(user)
				handler := unlockaccount.NewCommandHandler(
					app.Store,
					unlockaccount.WithRetryOptions(retryOptions(app.Observability, command)...),
				)

				return handleCommand[unlockaccount.Command](ctx, app, printer, handler, command, command)
			})
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "patron id (required)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

// NewReadCommand creates the read command.
func NewReadCommand(rootOpts *RootOptions) *cobra.Command {
	var notificationID string

	cmd := &cobra.Command{
		Use:   "read",
		Short: "Mark a notification as read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, app *App, printer Printer) error {
				notification, err := parseID("notification", notificationID)
				if err != nil {
					return printer.Error(err)
				}

				command := marknotificationread.BuildCommand(notification)
				handler := marknotificationread.NewCommandHandler(
					app.Store,
					marknotificationread.WithRetryOptions(retryOptions(app.Observability, command)...),
				)

				return handleCommand[marknotificationread.Command](ctx, app, printer, handler, command, command)
			})
		},
	}

	cmd.Flags().StringVar(&notificationID, "notification", "", "notification id (required)")
	_ = cmd.MarkFlagRequired("notification")

	return cmd
}

// NewAddBookCommand creates the addbook command.
func NewAddBookCommand(rootOpts *RootOptions) *cobra.Command {
	var bookID, isbn, title, author, category string
	var quantity int

	cmd := &cobra.Command{
		Use:   "addbook",
		Short: "Add a book to the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, app *App, printer Printer) error {
				book, err := parseIDOrNew("book-id", bookID)
				if err != nil {
					return printer.Error(err)
				}

				command := addbook.BuildCommand(book, isbn, title, author, category, quantity)
				handler := addbook.NewCommandHandler(app.Store, addbook.WithRetryOptions(retryOptions(app.Observability, command)...))

				return handleCommand[addbook.Command](ctx, app, printer, handler, command, command.Book)
			})
		},
	}

	cmd.Flags().StringVar(&bookID, "book-id", "", "book id, generated when empty")
	cmd.Flags().StringVar(&isbn, "isbn", "", "ISBN")
	cmd.Flags().StringVar(&title, "title", "", "title (required)")
	cmd.Flags().StringVar(&author, "author", "", "author")
	cmd.Flags().StringVar(&category, "category", "", "category")
	cmd.Flags().IntVar(&quantity, "quantity", 1, "number of copies")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

// NewUpdateBookCommand creates the updatebook command.
func NewUpdateBookCommand(rootOpts *RootOptions) *cobra.Command {
	var bookID, isbn, title, author, category, at string
	var quantity int

	cmd := &cobra.Command{
		Use:   "updatebook",
		Short: "Edit a catalog entry and offer added copies to waiting patrons",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, app *App, printer Printer) error {
				book, err := parseID("book", bookID)
				if err != nil {
					return printer.Error(err)
				}

				updatedAt, err := parseAt(at)
				if err != nil {
					return printer.Error(err)
				}

				command := updatebook.BuildCommand(book, isbn, title, author, category, quantity, updatedAt)
				handler := updatebook.NewCommandHandler(
					app.Store,
					updatebook.WithRetryOptions(retryOptions(app.Observability, command)...),
				)

				return handleCommand[updatebook.Command](ctx, app, printer, handler, command, command)
			})
		},
	}

	cmd.Flags().StringVar(&bookID, "book", "", "book id (required)")
	cmd.Flags().StringVar(&isbn, "isbn", "", "new ISBN, unchanged when empty")
	cmd.Flags().StringVar(&title, "title", "", "new title, unchanged when empty")
	cmd.Flags().StringVar(&author, "author", "", "new author, unchanged when empty")
	cmd.Flags().StringVar(&category, "category", "", "new category, unchanged when empty")
	cmd.Flags().IntVar(&quantity, "quantity", 0, "number of copies (required)")
	cmd.Flags().StringVar(&at, "at", "", "update time (RFC 3339), now when empty")
	_ = cmd.MarkFlagRequired("book")
	_ = cmd.MarkFlagRequired("quantity")

	return cmd
}
