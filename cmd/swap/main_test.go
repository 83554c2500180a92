package main

import (
	"bytes"
	"testing"

	"github.com/aretw0/swap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "swap "+swap.Version)
	assert.Contains(t, out.String(), "platform: ")
}

func TestVersionCommand_Short(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version", "--short"})
	defer rootCmd.SetArgs(nil)
	defer func() { _ = versionCmd.Flags().Set("short", "false") }()

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, swap.Version+"\n", out.String())
}

func TestConfigCommand(t *testing.T) {
	t.Setenv("SWAP_TERMINAL_ID", "env-terminal")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"config"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "id: env-terminal")
	assert.Contains(t, out.String(), "accepted_pin:")
}

func TestGraphCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"graph", "--current", "awaiting_pin"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "graph TD")
	assert.Contains(t, out.String(), "class awaiting_pin current;")
}

func TestGraphCommand_UnknownStep(t *testing.T) {
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"graph", "--current", "nowhere"})
	defer rootCmd.SetArgs(nil)

	assert.Error(t, rootCmd.Execute())
}
