package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandRegistration(t *testing.T) {
	names := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}

	for _, want := range []string{"graph", "queue", "containers", "init", "completion", "version"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}

func TestRootPersistentFlags(t *testing.T) {
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("no-color"))
}

func TestQueueFlags(t *testing.T) {
	all := queueCmd.Flags().Lookup("all")
	require.NotNil(t, all)
	assert.Equal(t, "a", all.Shorthand)

	interval := queueCmd.Flags().Lookup("interval")
	require.NotNil(t, interval)
	assert.Equal(t, "i", interval.Shorthand)
}

func TestCompletionRejectsUnknownShell(t *testing.T) {
	err := completionCmd.Args(completionCmd, []string{"tcsh"})
	assert.Error(t, err)

	err = completionCmd.Args(completionCmd, []string{"zsh"})
	assert.NoError(t, err)
}
