package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractCodeCmd_Use(t *testing.T) {
	assert.Equal(t, "extract-code [query]", extractCodeCmd.Use)
}

func TestExtractCodeCmd_Output(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"extract-code", "terraform"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "func lock() {}")
	assert.Contains(t, buf.String(), "Terraform state locking")
	assert.Contains(t, buf.String(), "1 code blocks.")
}

func TestExtractCodeCmd_LanguageFilter(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"extract-code", "--language", "python", "terraform"})
	defer func() {
		rootCmd.SetArgs(nil)
		codeLanguage = ""
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "No code blocks found.")
}

func TestExtractCodeCmd_Save(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"extract-code", "--save", "terraform"})
	defer func() {
		rootCmd.SetArgs(nil)
		codeSave = false
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Saved 1 code blocks to")
	assert.Contains(t, buf.String(), filepath.Join("outputs", "queries", "terraform"))
}
