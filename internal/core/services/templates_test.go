package services

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openhwy/chatidx/internal/core/domain"
)

func TestProjectKickoffTemplate(t *testing.T) {
	project := ProjectKickoffTemplate("freight", []string{"trucking", "dispatch"})

	assert.Equal(t, "freight", project.ProjectName)
	require.Len(t, project.Queries, 4)
	assert.Equal(t, "all_mentions", project.Queries[0].Name)
	assert.Equal(t, "trucking dispatch", project.Queries[0].Search)
	assert.Equal(t, 3, project.Queries[0].Filters.MinMessages)
	assert.Equal(t, 100, project.Queries[0].Filters.Limit)
	assert.True(t, project.Queries[3].ExtractCode)
}

func TestTechStackTemplate(t *testing.T) {
	project := TechStackTemplate("Rust")

	assert.Equal(t, "Rust_research", project.ProjectName)
	require.Len(t, project.Queries, 4)
	assert.Equal(t, "rust", project.Queries[1].CodeLanguage)
	assert.True(t, project.Queries[1].ExtractCode)
}

func TestLanguageDeepDiveTemplate(t *testing.T) {
	project := LanguageDeepDiveTemplate("Python")

	assert.Equal(t, "Python_knowledge", project.ProjectName)
	require.Len(t, project.Queries, 4)
	assert.Equal(t, "python", project.Queries[0].CodeLanguage)
}

func TestDebuggingTemplate(t *testing.T) {
	project := DebuggingTemplate([]string{"segfault", "goroutine"})

	assert.Equal(t, "debugging", project.ProjectName)
	require.Len(t, project.Queries, 3)
	assert.Equal(t, "segfault goroutine error bug issue problem", project.Queries[0].Search)
}

func TestTimelineAnalysisTemplate(t *testing.T) {
	project := TimelineAnalysisTemplate([]string{"billing"}, "2024-01-01", "2024-06-30")

	require.Len(t, project.Queries, 3)
	for _, q := range project.Queries {
		assert.Equal(t, "2024-01-01", q.Filters.StartDate)
		assert.Equal(t, "2024-06-30", q.Filters.EndDate)
	}
}

func TestMigrationTemplate(t *testing.T) {
	project := MigrationTemplate("Flask", "Gin")

	assert.Equal(t, "migrate_Flask_to_Gin", project.ProjectName)
	require.Len(t, project.Queries, 4)
	assert.Equal(t, "flask", project.Queries[0].CodeLanguage)
	assert.Equal(t, "gin", project.Queries[1].CodeLanguage)
}

func TestArchitectureReviewTemplate(t *testing.T) {
	project := ArchitectureReviewTemplate([]string{"fleet", "tracking"})

	require.Len(t, project.Queries, 5)
	assert.Equal(t, "security", project.Queries[4].Name)
}

func TestDomainExpertiseTemplate(t *testing.T) {
	project := DomainExpertiseTemplate("logistics")

	assert.Equal(t, "logistics_domain", project.ProjectName)
	require.Len(t, project.Queries, 4)
	assert.Equal(t, 200, project.Queries[0].Filters.Limit)
}

func TestWriteTemplate(t *testing.T) {
	project := TechStackTemplate("Go")
	path := filepath.Join(t.TempDir(), "template.json")

	require.NoError(t, WriteTemplate(project, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var loaded domain.BatchProject
	require.NoError(t, json.Unmarshal(data, &loaded))
	assert.Equal(t, project.ProjectName, loaded.ProjectName)
	assert.Len(t, loaded.Queries, 4)
}
