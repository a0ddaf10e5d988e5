package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation/circulation"
	"github.com/AntonStoeckl/library-circulation/features/query/borrowedbooks"
	"github.com/AntonStoeckl/library-circulation/features/query/patronnotifications"
	"github.com/AntonStoeckl/library-circulation/features/query/searchbooks"
	"github.com/AntonStoeckl/library-circulation/shell/config"
	"github.com/AntonStoeckl/library-circulation/sweep"
)

type typedResponse[T any] struct {
	Status string         `json:"status"`
	Data   T              `json:"data"`
	Result *CommandResult `json:"result"`
	Error  *ResponseError `json:"error"`
}

func execute(t *testing.T, dbPath string, args ...string) ([]byte, error) {
	t.Helper()

	cmd := newRootCommand(&RootOptions{
		LoadConfig: func() (config.AppConfig, error) { return config.DefaultAppConfig(), nil },
	})

	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--store", config.StoreSQLite, "--sqlite-path", dbPath}, args...))

	err := cmd.ExecuteContext(context.Background())

	return out.Bytes(), err
}

func decode[T any](t *testing.T, out []byte) typedResponse[T] {
	t.Helper()

	var response typedResponse[T]
	require.NoError(t, json.Unmarshal(out, &response), string(out))

	return response
}

func writeSeedFile(t *testing.T, bookID, userID uuid.UUID) string {
	t.Helper()

	seed := map[string]any{
		"books": []map[string]any{{
			"id": bookID, "isbn": "9780262033848", "title": "Introduction to Algorithms",
			"author": "Cormen", "category": "Computer Science", "quantity": 1,
		}},
		"accounts": []map[string]any{{"id": userID, "username": "ada", "fullName": "Ada Lovelace"}},
	}

	encoded, err := json.Marshal(seed)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, encoded, 0o600))

	return path
}

func Test_CLI_OverdueLoanIsSweptAndReported(t *testing.T) {
	// setup
	dbPath := filepath.Join(t.TempDir(), "circulation.db")
	bookID := uuid.New()
	userID := uuid.New()
	borrowedAt := time.Now().AddDate(0, 0, -30).UTC().Format(time.RFC3339)

	// arrange
	_, err := execute(t, dbPath, "seed", "--file", writeSeedFile(t, bookID, userID))
	require.NoError(t, err)

	out, err := execute(t, dbPath, "lend", "--book", bookID.String(), "--user", userID.String(), "--at", borrowedAt)
	require.NoError(t, err, string(out))

	// act
	out, err = execute(t, dbPath, "sweep")

	// assert
	require.NoError(t, err, string(out))
	swept := decode[sweep.Result](t, out)
	assert.Equal(t, statusOK, swept.Status)
	assert.Equal(t, 1, swept.Data.NewlyOverdue)
	assert.Equal(t, 1, swept.Data.AccountsLocked)
	assert.Equal(t, 1, swept.Data.NotificationsCreated)
	require.NotNil(t, swept.Result)
	assert.False(t, swept.Result.Idempotent)

	out, err = execute(t, dbPath, "loans", "--user", userID.String())
	require.NoError(t, err, string(out))
	loans := decode[borrowedbooks.BorrowedBooks](t, out)
	assert.True(t, loans.Data.IsBlocked)
	assert.Equal(t, 1, loans.Data.OverdueCount)
	require.Len(t, loans.Data.Books, 1)
	assert.Equal(t, circulation.LoanOverdue, loans.Data.Books[0].Status)
	assert.Equal(t, 16, loans.Data.Books[0].DaysOverdue)

	out, err = execute(t, dbPath, "notifications", "--user", userID.String(), "--unread")
	require.NoError(t, err, string(out))
	notifications := decode[patronnotifications.PatronNotifications](t, out)
	require.Len(t, notifications.Data.Items, 1)
	assert.Equal(t, circulation.NotificationOverdue, notifications.Data.Items[0].Type)

	out, err = execute(t, dbPath, "sweep")
	require.NoError(t, err, string(out))
	assert.True(t, decode[sweep.Result](t, out).Result.Idempotent, "nothing left to do on the second sweep")
}

func Test_CLI_CatalogedBookCanBeFoundAndRestocked(t *testing.T) {
	// setup
	dbPath := filepath.Join(t.TempDir(), "circulation.db")
	bookID := uuid.New()

	// arrange
	out, err := execute(t, dbPath, "addbook", "--book-id", bookID.String(), "--isbn", "9781617291784",
		"--title", "Go in Action", "--author", "William Kennedy", "--category", "Programming")
	require.NoError(t, err, string(out))

	// act
	out, err = execute(t, dbPath, "updatebook", "--book", bookID.String(), "--quantity", "3")
	require.NoError(t, err, string(out))
	out, err = execute(t, dbPath, "search", "kennedy")

	// assert
	require.NoError(t, err, string(out))
	found := decode[searchbooks.SearchResult](t, out)
	require.Equal(t, 1, found.Data.Count)
	assert.Equal(t, bookID, found.Data.Books[0].BookID)
	assert.Equal(t, "Go in Action", found.Data.Books[0].Title)
	assert.Equal(t, 3, found.Data.Books[0].Quantity)
	assert.Equal(t, 3, found.Data.Books[0].AvailableQuantity)

	out, err = execute(t, dbPath, "search", "tolkien")
	require.NoError(t, err, string(out))
	assert.Zero(t, decode[searchbooks.SearchResult](t, out).Data.Count)
}

func Test_CLI_BlockedPatronCannotBorrowUntilUnlocked(t *testing.T) {
	// setup
	dbPath := filepath.Join(t.TempDir(), "circulation.db")
	bookID := uuid.New()
	userID := uuid.New()
	borrowedAt := time.Now().AddDate(0, 0, -30).UTC().Format(time.RFC3339)

	// arrange
	_, err := execute(t, dbPath, "seed", "--file", writeSeedFile(t, bookID, userID))
	require.NoError(t, err)

	loanID := uuid.New()
	_, err = execute(t, dbPath, "lend", "--book", bookID.String(), "--user", userID.String(),
		"--loan-id", loanID.String(), "--at", borrowedAt)
	require.NoError(t, err)

	_, err = execute(t, dbPath, "sweep")
	require.NoError(t, err)

	_, err = execute(t, dbPath, "return", "--loan", loanID.String())
	require.NoError(t, err)

	// act
	out, err := execute(t, dbPath, "lend", "--book", bookID.String(), "--user", userID.String())

	// assert
	require.Error(t, err)
	assert.Equal(t, ExitRejected, GetExitCode(err))
	rejected := decode[any](t, out)
	assert.Equal(t, statusError, rejected.Status)
	require.NotNil(t, rejected.Error)
	assert.Equal(t, kindInvalidState, rejected.Error.Kind)

	_, err = execute(t, dbPath, "unlock", "--user", userID.String())
	require.NoError(t, err)

	out, err = execute(t, dbPath, "lend", "--book", bookID.String(), "--user", userID.String())
	require.NoError(t, err, string(out))
}

func Test_CLI_InvalidFlagValueIsAUsageError(t *testing.T) {
	// setup
	dbPath := filepath.Join(t.TempDir(), "circulation.db")

	// act
	out, err := execute(t, dbPath, "loans", "--user", "not-a-uuid")

	// assert
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, kindUsage, decode[any](t, out).Error.Kind)
}
