package cli

import (
	"context"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-circulation/circulation"
)

// SeedBook is one title with all its copies on the shelf.
type SeedBook struct {
	ID       uuid.UUID `json:"id"`
	ISBN     string    `json:"isbn"`
	Title    string    `json:"title"`
	Author   string    `json:"author"`
	Category string    `json:"category"`
	Quantity int       `json:"quantity"`
}

// SeedAccount is one patron account in good standing.
type SeedAccount struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	FullName string    `json:"fullName"`
}

// SeedFile is the JSON document the seed command loads.
type SeedFile struct {
	Books    []SeedBook    `json:"books"`
	Accounts []SeedAccount `json:"accounts"`
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load books and patron accounts from a JSON file",
		Long: `Load books and patron accounts from a JSON file in one unit of work.

The file has the form {"books": [{"id", "isbn", "title", "author", "category", "quantity"}],
"accounts": [{"id", "username", "fullName"}]}. Every copy of a seeded book is on the shelf.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, app *App, printer Printer) error {
				seed, err := readSeedFile(path)
				if err != nil {
					return printer.Error(err)
				}

				err = app.Store.WithinTx(ctx, func(ctx context.Context, uow circulation.UnitOfWork) error {
					for _, b := range seed.Books {
						book := circulation.BuildBook(b.ID, b.ISBN, b.Title, b.Author, b.Category, b.Quantity)
						if createErr := uow.CreateBook(ctx, book); createErr != nil {
							return createErr
						}
					}

					for _, a := range seed.Accounts {
						if createErr := uow.CreateAccount(ctx, circulation.BuildAccount(a.ID, a.Username, a.FullName)); createErr != nil {
							return createErr
						}
					}

					return nil
				})
				if err != nil {
					return printer.Error(err)
				}

				return printer.Data(map[string]int{"books": len(seed.Books), "accounts": len(seed.Accounts)})
			})
		},
	}

	cmd.Flags().StringVarP(&path, "file", "f", "", "seed file (required)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func readSeedFile(path string) (SeedFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return SeedFile{}, WrapExitError(ExitCommandError, "reading the seed file failed", err)
	}

	var seed SeedFile
	if err = json.Unmarshal(raw, &seed); err != nil {
		return SeedFile{}, WrapExitError(ExitCommandError, "decoding the seed file failed", err)
	}

	return seed, nil
}
