package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_RootCommand_HasAllSubcommands(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{
		"migrate", "sweep", "serve", "seed", "addbook", "updatebook", "lend", "return", "reserve",
		"cancel", "unlock", "read", "loans", "notifications", "report", "search",
	}

	for _, name := range commands {
		t.Run(name, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, subCmd.Name())
		})
	}
}

func Test_RootCommand_GlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"pretty", "verbose", "store", "adapter", "sqlite-path"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}

	assert.Equal(t, "v", cmd.PersistentFlags().Lookup("verbose").Shorthand)
}

func Test_LendCommand_Defaults(t *testing.T) {
	cmd := NewRootCommand()
	lend, _, err := cmd.Find([]string{"lend"})
	require.NoError(t, err)

	assert.Equal(t, "14", lend.Flags().Lookup("days").DefValue)
}
