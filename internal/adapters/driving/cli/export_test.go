package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportCmd_WritesCSV(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	csvPath := filepath.Join(t.TempDir(), "conversations.csv")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"export", csvPath})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Exported 2 conversations to")

	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "conv-terraform")
	assert.Contains(t, string(data), "conv-docker")
}

func TestExportCmd_QueryFilter(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	csvPath := filepath.Join(t.TempDir(), "docker.csv")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"export", "--query", "bridge", csvPath})
	defer func() {
		rootCmd.SetArgs(nil)
		exportQuery = ""
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Exported 1 conversations to")
}

func TestHistoryCmd_Empty(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"history"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "No saved results.")
}

func TestHistoryCmd_AfterSave(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"extract-code", "--save", "terraform"})
	require.NoError(t, rootCmd.Execute())
	codeSave = false

	buf.Reset()
	rootCmd.SetArgs([]string{"history"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "terraform")
}
