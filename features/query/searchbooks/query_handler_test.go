package searchbooks_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation/circulation"
	"github.com/AntonStoeckl/library-circulation/circulation/memoryengine"
	"github.com/AntonStoeckl/library-circulation/features/query/searchbooks"
	. "github.com/AntonStoeckl/library-circulation/testutil/helper" //nolint:revive
)

func Test_QueryHandler_Handle_MatchesTitleAuthorISBNAndCategory(t *testing.T) {
	// setup
	ctx := context.Background()
	store, err := memoryengine.NewStore()
	require.NoError(t, err)
	handler := searchbooks.NewQueryHandler(store)

	// arrange
	dune := givenCataloged(t, ctx, store, "978-0-441-17271-9", "Dune", "Frank Herbert", "Science Fiction")
	foundation := givenCataloged(t, ctx, store, "978-0-553-29335-7", "Foundation", "Isaac Asimov", "Science Fiction")
	givenCataloged(t, ctx, store, "978-0-14-143951-8", "Pride and Prejudice", "Jane Austen", "Classics")

	// act
	byCategory, err := handler.Handle(ctx, searchbooks.BuildQuery("  science "))
	require.NoError(t, err)
	byAuthor, err := handler.Handle(ctx, searchbooks.BuildQuery("HERBERT"))
	require.NoError(t, err)
	byISBN, err := handler.Handle(ctx, searchbooks.BuildQuery("553-29335"))
	require.NoError(t, err)
	nothing, err := handler.Handle(ctx, searchbooks.BuildQuery("tolkien"))
	require.NoError(t, err)

	// assert
	assert.Equal(t, "science", byCategory.Term)
	require.Equal(t, 2, byCategory.Count)
	assert.Equal(t, dune.ID, byCategory.Books[0].BookID, "ordered by title")
	assert.Equal(t, foundation.ID, byCategory.Books[1].BookID)

	require.Len(t, byAuthor.Books, 1)
	assert.Equal(t, dune.ID, byAuthor.Books[0].BookID)
	assert.Equal(t, 2, byAuthor.Books[0].AvailableQuantity)

	require.Len(t, byISBN.Books, 1)
	assert.Equal(t, foundation.ID, byISBN.Books[0].BookID)

	assert.Zero(t, nothing.Count)
	assert.NotNil(t, nothing.Books)
}

func Test_QueryHandler_Handle_EmptyTermListsTheCatalog(t *testing.T) {
	// setup
	ctx := context.Background()
	store, err := memoryengine.NewStore()
	require.NoError(t, err)
	handler := searchbooks.NewQueryHandler(store)

	// arrange
	GivenBookWasAdded(t, ctx, store, 1)
	GivenBookWasAdded(t, ctx, store, 3)

	// act
	result, err := handler.Handle(ctx, searchbooks.BuildQuery(""))

	// assert
	require.NoError(t, err)
	assert.Equal(t, 2, result.Count)
}

func givenCataloged(t *testing.T, ctx context.Context, store circulation.Store, isbn, title, author, category string) circulation.Book {
	t.Helper()

	book := circulation.BuildBook(GivenUniqueID(t), isbn, title, author, category, 2)
	require.NoError(t, store.WithinTx(ctx, func(ctx context.Context, uow circulation.UnitOfWork) error {
		return uow.CreateBook(ctx, book)
	}))

	return book
}
