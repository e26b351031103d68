package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()

	assert.Equal(t, "floodlink", cmd.Use)
	assert.Equal(t, Version, cmd.Version)

	for _, flag := range []string{"config", "engine", "state", "log-level", "verbose"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "flag %q should exist", flag)
	}

	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"run", "info", "validate", "runs", "version"} {
		assert.True(t, names[want], "subcommand %q should be registered", want)
	}
}
