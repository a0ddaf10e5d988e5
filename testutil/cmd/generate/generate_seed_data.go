package main

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/library-circulation/internal/cli"
)

const (
	thousand = 1000

	// NumBooks - Number of titles to be created - adapt as needed
	NumBooks = 5 * thousand

	// NumAccounts - Number of patron accounts to be created - adapt as needed
	NumAccounts = 20 * thousand

	// MaxCopiesPerBook is the upper bound of copies per title, the lower bound is 1.
	MaxCopiesPerBook = 5

	OutputDir  = "testutil/fixtures" // The directory to put the seed file into - should be fine as is.
	OutputFile = "seed.json"         // The seed file, load it with "circulation seed -f".
)

var categories = []string{
	"Computer Science", "Fiction", "History", "Mathematics", "Philosophy", "Science", "Travel",
}

var authors = []string{
	"Ada Lovelace", "Alan Turing", "Barbara Liskov", "Donald Knuth", "Edsger Dijkstra",
	"Grace Hopper", "Leslie Lamport", "Margaret Hamilton", "Niklaus Wirth", "Tony Hoare",
}

func main() {
	if err := GenerateSeedData(); err != nil {
		panic(fmt.Sprintf("Error generating seed data: %v\n", err))
	}
}

func GenerateSeedData() error {
	projectRoot, err := findProjectRoot()
	if err != nil {
		return fmt.Errorf("failed to find project root: %w", err)
	}

	outputDir := filepath.Join(projectRoot, OutputDir)
	if err = os.MkdirAll(outputDir, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	seed := cli.SeedFile{
		Books:    generateBooks(NumBooks),
		Accounts: generateAccounts(NumAccounts),
	}

	file, err := os.Create(filepath.Join(outputDir, OutputFile))
	if err != nil {
		return fmt.Errorf("failed to create seed file: %w", err)
	}
	defer func() { _ = file.Close() }()

	encoder := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(file)
	if err = encoder.Encode(seed); err != nil {
		return fmt.Errorf("failed to write seed file: %w", err)
	}

	fmt.Printf("Generated %d books and %d accounts into %s\n", len(seed.Books), len(seed.Accounts), file.Name())

	return nil
}

func generateBooks(numBooks int) []cli.SeedBook {
	books := make([]cli.SeedBook, 0, numBooks)

	for i := range numBooks {
		books = append(books, cli.SeedBook{
			ID:       uuid.New(),
			ISBN:     fmt.Sprintf("978-%010d", i),
			Title:    fmt.Sprintf("Volume %d", i+1),
			Author:   authors[rand.IntN(len(authors))],
			Category: categories[rand.IntN(len(categories))],
			Quantity: rand.IntN(MaxCopiesPerBook) + 1,
		})
	}

	return books
}

func generateAccounts(numAccounts int) []cli.SeedAccount {
	accounts := make([]cli.SeedAccount, 0, numAccounts)

	for i := range numAccounts {
		accounts = append(accounts, cli.SeedAccount{
			ID:       uuid.New(),
			Username: fmt.Sprintf("patron%06d", i),
			FullName: fmt.Sprintf("Patron %d", i),
		})
	}

	return accounts
}

func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	// Walk up the directory tree looking for go.mod
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("could not find project root (no go.mod found)")
}
