package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openhwy/chatidx/internal/adapters/driven/storage/sqlite"
	"github.com/openhwy/chatidx/internal/core/domain"
)

func newTestBatch(t *testing.T, store *sqlite.Store) (*BatchService, string) {
	t.Helper()
	resultsRoot := filepath.Join(t.TempDir(), "batch_results")
	query := newTestQuery(t, store)
	return NewBatchService(query, resultsRoot), resultsRoot
}

func testProject() *domain.BatchProject {
	return &domain.BatchProject{
		ProjectName: "infra_research",
		Queries: []domain.BatchQuery{
			{
				Name:            "terraform_mentions",
				Search:          "terraform",
				IncludeMessages: true,
			},
			{
				Name:        "code_blocks",
				Search:      "terraform",
				ExtractCode: true,
			},
			{
				Name:    "broken_dates",
				Search:  "terraform",
				Filters: domain.BatchFilters{StartDate: "not-a-date"},
			},
		},
	}
}

// ==================== Process Tests ====================

func TestBatchService_Process_FailureIsolation(t *testing.T) {
	store := newTestStore(t)
	seedQueryFixtures(t, store)
	svc, resultsRoot := newTestBatch(t, store)

	summary, err := svc.Process(context.Background(), testProject())

	require.NoError(t, err)
	assert.Equal(t, "infra_research", summary.ProjectName)
	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, 3, summary.TotalQueries)
	assert.Equal(t, 2, summary.Successful)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Results, 3)

	// The failing query is recorded, the later outcome order preserved
	first := summary.Results[0]
	assert.Equal(t, domain.BatchStatusSuccess, first.Status)
	assert.Equal(t, 2, first.ResultCount)
	_, statErr := os.Stat(first.ResultFile)
	require.NoError(t, statErr)

	broken := summary.Results[2]
	assert.Equal(t, domain.BatchStatusError, broken.Status)
	assert.Contains(t, broken.Error, "start_date")
	assert.Empty(t, broken.ResultFile)

	// Summary files land in the project directory
	matches, err := filepath.Glob(filepath.Join(resultsRoot, "infra_research", "*_batch_summary.json"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	mdMatches, err := filepath.Glob(filepath.Join(resultsRoot, "infra_research", "*_batch_summary.md"))
	require.NoError(t, err)
	require.Len(t, mdMatches, 1)

	md, err := os.ReadFile(mdMatches[0])
	require.NoError(t, err)
	assert.Contains(t, string(md), "# Batch Query Summary: infra_research")
	assert.Contains(t, string(md), "**Failed**: 1")
}

func TestBatchService_Process_EmptyProjectName(t *testing.T) {
	store := newTestStore(t)
	svc, _ := newTestBatch(t, store)

	_, err := svc.Process(context.Background(), &domain.BatchProject{})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ==================== ProcessFile Tests ====================

func TestBatchService_ProcessFile(t *testing.T) {
	store := newTestStore(t)
	seedQueryFixtures(t, store)
	svc, _ := newTestBatch(t, store)

	specPath := filepath.Join(t.TempDir(), "spec.json")
	spec := `{
  "project_name": "from_file",
  "queries": [
    {"name": "docker_mentions", "search": "docker", "filters": {"source": "openai"}}
  ]
}`
	require.NoError(t, os.WriteFile(specPath, []byte(spec), 0644))

	summary, err := svc.ProcessFile(context.Background(), specPath)

	require.NoError(t, err)
	assert.Equal(t, "from_file", summary.ProjectName)
	require.Len(t, summary.Results, 1)
	assert.Equal(t, 1, summary.Results[0].ResultCount)
}

func TestBatchService_ProcessFile_MissingFile(t *testing.T) {
	store := newTestStore(t)
	svc, _ := newTestBatch(t, store)

	_, err := svc.ProcessFile(context.Background(), filepath.Join(t.TempDir(), "nope.json"))

	assert.Error(t, err)
}

func TestBatchService_ProcessFile_MalformedSpec(t *testing.T) {
	store := newTestStore(t)
	svc, _ := newTestBatch(t, store)

	specPath := filepath.Join(t.TempDir(), "spec.json")
	require.NoError(t, os.WriteFile(specPath, []byte("{not json"), 0644))

	_, err := svc.ProcessFile(context.Background(), specPath)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ==================== ProjectIndex Tests ====================

func TestBatchService_ProjectIndex(t *testing.T) {
	store := newTestStore(t)
	seedQueryFixtures(t, store)
	svc, resultsRoot := newTestBatch(t, store)
	ctx := context.Background()

	_, err := svc.Process(ctx, testProject())
	require.NoError(t, err)

	index, err := svc.ProjectIndex("infra_research")

	require.NoError(t, err)
	assert.Equal(t, "infra_research", index.ProjectName)
	require.Contains(t, index.Queries, "terraform_mentions")
	require.Contains(t, index.Queries, "code_blocks")
	// The failed query never wrote a result file
	assert.NotContains(t, index.Queries, "broken_dates")

	records := index.Queries["terraform_mentions"]
	require.Len(t, records, 1)
	assert.Equal(t, 2, records[0].ResultCount)
	assert.Equal(t, "terraform", records[0].Search)

	_, statErr := os.Stat(filepath.Join(resultsRoot, "infra_research", "project_index.json"))
	require.NoError(t, statErr)
}

func TestBatchService_ProjectIndex_UnknownProject(t *testing.T) {
	store := newTestStore(t)
	svc, _ := newTestBatch(t, store)

	_, err := svc.ProjectIndex("never_ran")

	assert.Error(t, err)
}

// ==================== Merge Tests ====================

func TestBatchService_Merge(t *testing.T) {
	store := newTestStore(t)
	seedQueryFixtures(t, store)
	svc, _ := newTestBatch(t, store)
	ctx := context.Background()

	_, err := svc.Process(ctx, testProject())
	require.NoError(t, err)

	count, path, err := svc.Merge("infra_research", []string{"terraform_mentions", "missing_query"}, "combined")

	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Contains(t, filepath.Base(path), "combined_")
	assert.Contains(t, filepath.Base(path), "_merged.json")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "conv-terraform")
}

func TestBatchService_Merge_InvalidInput(t *testing.T) {
	store := newTestStore(t)
	svc, _ := newTestBatch(t, store)

	_, _, err := svc.Merge("", nil, "out")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
