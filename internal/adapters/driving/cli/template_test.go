package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateCmd_TechStack(t *testing.T) {
	out := filepath.Join(t.TempDir(), "rust.json")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"template", "tech-stack", "--name", "Rust", "--output", out})
	defer func() {
		rootCmd.SetArgs(nil)
		templateName = ""
		templateOutput = "template.json"
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Template saved to")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Rust_research")
	assert.Contains(t, string(data), "Rust best practice pattern architecture")
}

func TestTemplateCmd_Migration(t *testing.T) {
	out := filepath.Join(t.TempDir(), "migration.json")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"template", "migration",
		"--from-tech", "Flask", "--to-tech", "Gin", "--output", out})
	defer func() {
		rootCmd.SetArgs(nil)
		templateFromTech = ""
		templateToTech = ""
		templateOutput = "template.json"
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "migrate_Flask_to_Gin")
}

func TestTemplateCmd_MissingFlags(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"template", "debug"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "--keywords required for debug")
}

func TestTemplateCmd_UnknownType(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"template", "sprint-retro"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown template type")
}
