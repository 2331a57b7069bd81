package cli

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openhwy/chatidx/internal/adapters/driven/config/file"
	"github.com/openhwy/chatidx/internal/adapters/driven/export"
	"github.com/openhwy/chatidx/internal/adapters/driven/export/claude"
	"github.com/openhwy/chatidx/internal/adapters/driven/export/openai"
	"github.com/openhwy/chatidx/internal/adapters/driven/storage/sqlite"
	"github.com/openhwy/chatidx/internal/core/domain"
	"github.com/openhwy/chatidx/internal/core/services"
)

// setupTestServices wires the commands to a seeded temp-dir store and
// returns a cleanup restoring the package state.
func setupTestServices(t *testing.T) func() {
	t.Helper()

	dir := t.TempDir()
	s, err := sqlite.NewStore(filepath.Join(dir, "conversations.db"))
	require.NoError(t, err)

	seedTestConversations(t, s)

	oldSettings := settings
	settings = file.Settings{
		ExportsDir:   filepath.Join(dir, "ai-exports"),
		OutputDir:    filepath.Join(dir, "outputs"),
		DatabaseName: "conversations.db",
		ArtifactsDir: "extracted_artifacts",
	}

	scanner := export.NewScanner(false, settings.ArtifactsPath())
	indexerService = services.NewIndexerService(
		s.ConversationStore(),
		s.ArtifactStore(),
		scanner,
		claude.NewAdapter(),
		openai.NewAdapter(),
	)
	queryService = services.NewQueryService(s.ConversationStore(), s.TopicStore(), settings.QueriesPath())
	analyticsService = services.NewAnalyticsService(s.AnalyticsStore(), s.ConversationStore())
	artifactService = services.NewArtifactService(s.ArtifactStore())
	batchService = services.NewBatchService(queryService, settings.BatchResultsPath())

	return func() {
		indexerService = nil
		queryService = nil
		analyticsService = nil
		artifactService = nil
		batchService = nil
		settings = oldSettings
		_ = s.Close()
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}

// seedTestConversations inserts two conversations sharing the
// "terraform" keyword, plus one indexed artifact.
func seedTestConversations(t *testing.T, s *sqlite.Store) {
	t.Helper()

	ctx := context.Background()
	conversations := s.ConversationStore()

	seed := []struct {
		id, title, text string
		source          domain.Source
		created         time.Time
	}{
		{
			id:      "conv-terraform",
			title:   "Terraform state locking",
			text:    "Terraform stores state remotely.\n```go\nfunc lock() {}\n```\n",
			source:  domain.SourceClaude,
			created: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			id:      "conv-docker",
			title:   "Docker bridge networking",
			text:    "Bridge networks isolate containers. Terraform can provision docker hosts.",
			source:  domain.SourceOpenAI,
			created: time.Date(2024, 4, 2, 9, 0, 0, 0, time.UTC),
		},
	}

	for _, c := range seed {
		conv := &domain.Conversation{
			ID:           c.id,
			Source:       c.source,
			Title:        c.title,
			CreatedAt:    timePtr(c.created),
			MessageCount: 2,
			ExportFile:   "seed.zip",
		}
		require.NoError(t, conversations.UpsertConversation(ctx, conv))

		msgs := []domain.Message{
			{
				ID:             c.id + "-m1",
				ConversationID: c.id,
				Sender:         domain.SenderHuman,
				Text:           "How does " + c.title + " work?",
				CreatedAt:      timePtr(c.created),
			},
			{
				ID:             c.id + "-m2",
				ConversationID: c.id,
				Sender:         domain.SenderAssistant,
				Text:           c.text,
				CreatedAt:      timePtr(c.created.Add(2 * time.Minute)),
			},
		}
		for i := range msgs {
			require.NoError(t, conversations.UpsertMessage(ctx, &msgs[i]))
		}

		searchable := c.title + " " + msgs[0].Text + " " + msgs[1].Text
		require.NoError(t, conversations.UpsertSearchText(ctx, c.id, searchable))
	}

	artifact := &domain.Artifact{
		ID:            "seed_files_photo.png",
		FileName:      "photo.png",
		FilePath:      "files/photo.png",
		FileType:      domain.ArtifactImage,
		FileExtension: ".png",
		FileSize:      2048,
		ExportFile:    "seed.zip",
	}
	require.NoError(t, s.ArtifactStore().UpsertArtifact(ctx, artifact))
}

// writeTestArchive builds a zip file from name to content entries.
func writeTestArchive(t *testing.T, dir, name string, entries map[string]string) string {
	t.Helper()

	require.NoError(t, os.MkdirAll(dir, 0755))
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for entryName, content := range entries {
		entry, err := w.Create(entryName)
		require.NoError(t, err)
		_, err = entry.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	return path
}
