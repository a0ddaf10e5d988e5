package unlockaccount_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation/circulation"
	"github.com/AntonStoeckl/library-circulation/circulation/memoryengine"
	"github.com/AntonStoeckl/library-circulation/features/command/unlockaccount"
	. "github.com/AntonStoeckl/library-circulation/testutil/helper" //nolint:revive
)

func Test_CommandHandler_Handle(t *testing.T) {
	// setup
	ctx := context.Background()
	store, err := memoryengine.NewStore()
	require.NoError(t, err)
	handler := unlockaccount.NewCommandHandler(store)

	// arrange
	reader := GivenAccountWasOpened(t, ctx, store)
	GivenAccountWasLocked(t, ctx, store, reader.ID, "overdue loan")

	// act
	result, err := handler.Handle(ctx, unlockaccount.BuildCommand(reader.ID))
	require.NoError(t, err)
	again, againErr := handler.Handle(ctx, unlockaccount.BuildCommand(reader.ID))
	_, missingErr := handler.Handle(ctx, unlockaccount.BuildCommand(GivenUniqueID(t)))

	// assert
	assert.False(t, result.Idempotent)
	require.NoError(t, againErr)
	assert.True(t, again.Idempotent)
	assert.ErrorIs(t, missingErr, circulation.ErrAccountNotFound)

	account := store.Snapshot().Accounts[reader.ID]
	assert.False(t, account.IsBlocked)
	assert.Empty(t, account.BlockReason)
}
