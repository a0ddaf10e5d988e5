package addbook_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation/circulation"
	"github.com/AntonStoeckl/library-circulation/circulation/memoryengine"
	"github.com/AntonStoeckl/library-circulation/features/command/addbook"
	. "github.com/AntonStoeckl/library-circulation/testutil/helper" //nolint:revive
)

func Test_CommandHandler_Handle(t *testing.T) {
	// setup
	ctx := context.Background()
	store, err := memoryengine.NewStore()
	require.NoError(t, err)
	handler := addbook.NewCommandHandler(store)

	// arrange
	bookID := GivenUniqueID(t)
	command := addbook.BuildCommand(bookID, "978-0-13-468599-1", "The Go Programming Language", "Donovan", "Programming", 3)

	// act
	result, err := handler.Handle(ctx, command)

	// assert
	require.NoError(t, err)
	assert.False(t, result.Idempotent)

	book := store.Snapshot().Books[bookID]
	assert.Equal(t, "The Go Programming Language", book.Title)
	assert.Equal(t, 3, book.Quantity)
	assert.Equal(t, 3, book.AvailableQuantity)
}

func Test_CommandHandler_Handle_AddingTheSameBookTwiceKeepsTheStoredEntry(t *testing.T) {
	// setup
	ctx := context.Background()
	store, err := memoryengine.NewStore()
	require.NoError(t, err)
	handler := addbook.NewCommandHandler(store)

	// arrange
	book := GivenBookWasAdded(t, ctx, store, 2)

	// act
	result, err := handler.Handle(ctx, addbook.BuildCommand(book.ID, "other", "Other Title", "Other", "Other", 9))

	// assert
	require.NoError(t, err)
	assert.True(t, result.Idempotent)
	assert.Equal(t, book, store.Snapshot().Books[book.ID])
}

func Test_CommandHandler_Handle_RejectsANegativeQuantity(t *testing.T) {
	// setup
	ctx := context.Background()
	store, err := memoryengine.NewStore()
	require.NoError(t, err)
	handler := addbook.NewCommandHandler(store)

	// arrange
	bookID := GivenUniqueID(t)

	// act
	_, err = handler.Handle(ctx, addbook.BuildCommand(bookID, "isbn", "Title", "Author", "Category", -1))

	// assert
	assert.ErrorIs(t, err, circulation.ErrInvalidQuantity)
	assert.NotContains(t, store.Snapshot().Books, bookID)
}
