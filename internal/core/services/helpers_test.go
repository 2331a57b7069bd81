package services

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openhwy/chatidx/internal/adapters/driven/storage/sqlite"
	"github.com/openhwy/chatidx/internal/core/domain"
)

// newTestStore creates a store backed by a temp-dir database.
func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	store, err := sqlite.NewStore(filepath.Join(t.TempDir(), "conversations.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func timePtr(t time.Time) *time.Time {
	return &t
}

// seedConversation inserts a conversation with its searchable text and
// two messages.
func seedConversation(t *testing.T, store *sqlite.Store, id string, source domain.Source, title, text string, created time.Time) {
	t.Helper()

	ctx := context.Background()
	conversations := store.ConversationStore()

	conv := &domain.Conversation{
		ID:           id,
		Source:       source,
		Title:        title,
		CreatedAt:    timePtr(created),
		MessageCount: 2,
		ExportFile:   "seed.zip",
	}
	require.NoError(t, conversations.UpsertConversation(ctx, conv))

	msgs := []domain.Message{
		{
			ID:             id + "-m1",
			ConversationID: id,
			Sender:         domain.SenderHuman,
			Text:           "How does " + title + " work?",
			CreatedAt:      timePtr(created),
		},
		{
			ID:             id + "-m2",
			ConversationID: id,
			Sender:         domain.SenderAssistant,
			Text:           text,
			CreatedAt:      timePtr(created.Add(2 * time.Minute)),
		},
	}
	for i := range msgs {
		require.NoError(t, conversations.UpsertMessage(ctx, &msgs[i]))
	}

	searchable := title + " " + msgs[0].Text + " " + msgs[1].Text
	require.NoError(t, conversations.UpsertSearchText(ctx, id, searchable))
}

// writeArchive builds a zip file from name to content entries.
func writeArchive(t *testing.T, dir, name string, entries map[string]string) string {
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
