package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTUICmd_Use(t *testing.T) {
	assert.Equal(t, "tui", tuiCmd.Use)
	assert.Equal(t, "Launch the interactive terminal UI", tuiCmd.Short)
	assert.Contains(t, tuiCmd.Long, "q, Ctrl+C")
}

func TestTUICmd_Flags(t *testing.T) {
	window := tuiCmd.Flags().Lookup("window")
	require.NotNil(t, window)
	assert.Equal(t, "0", window.DefValue)

	xenc := tuiCmd.Flags().Lookup("cross-encoder")
	require.NotNil(t, xenc)
	assert.Equal(t, "false", xenc.DefValue)
}

func TestTUICmd_NotConfigured(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	SetServices(&Services{})

	_, err := execute(t, "", "tui")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "search service not configured")
}
