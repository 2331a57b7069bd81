package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatsCmd_Output(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"stats"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "\"total_conversations\": 2")
	assert.Contains(t, buf.String(), "\"total_messages\": 4")
	assert.Contains(t, buf.String(), "\"by_source\"")
}

func TestTimelineCmd_Output(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"timeline"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "2024-03:")
	assert.Contains(t, buf.String(), "2024-04:")
	assert.Contains(t, buf.String(), "1 conversations, 2 messages")
}

func TestTimelineCmd_InvalidGranularity(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"timeline", "--granularity", "hour"})
	defer func() {
		rootCmd.SetArgs(nil)
		timelineGranularity = "month"
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
}

func TestPatternsCmd_Output(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"patterns"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "\"question_ratio\"")
	assert.Contains(t, buf.String(), "\"duration_distribution\"")
}

func TestLanguagesCmd_Output(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"languages"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Programming Languages:")
	assert.Contains(t, buf.String(), "go")
}

func TestReportCmd_WritesFiles(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	basePath := filepath.Join(t.TempDir(), "report")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"report", "--output", basePath})
	defer func() {
		rootCmd.SetArgs(nil)
		reportOutput = "analytics_report"
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Report written to")

	_, err = os.Stat(basePath + ".json")
	assert.NoError(t, err)
	_, err = os.Stat(basePath + ".md")
	assert.NoError(t, err)
}
