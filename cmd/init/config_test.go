package init

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfigWritesStarterFile(t *testing.T) {
	t.Chdir(t.TempDir())

	require.NoError(t, NewConfigCmd().Execute())

	data, err := os.ReadFile("config.ini")
	require.NoError(t, err)
	assert.Contains(t, string(data), "[api]")
	assert.Contains(t, string(data), "[smtp]")
	assert.Contains(t, string(data), "[redis]")
}

func TestInitConfigRefusesOverwrite(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile("config.ini", []byte("existing"), 0o600))

	err := NewConfigCmd().Execute()
	assert.ErrorContains(t, err, "already exists")

	cmd := NewConfigCmd()
	cmd.SetArgs([]string{"--force"})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile("config.ini")
	require.NoError(t, err)
	assert.Contains(t, string(data), "[api]")
}
