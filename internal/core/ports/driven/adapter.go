package driven

import (
	"context"

	"github.com/openhwy/chatidx/internal/core/domain"
)

// ParsedConversation is the normalised output of an export adapter
// for one conversation: the record, its messages in ingestion order,
// and the fully regenerated searchable text.
type ParsedConversation struct {
	Conversation domain.Conversation
	Messages     []domain.Message
	SearchText   string
}

// ExportAdapter parses one vendor's export archive into normalised
// records. Adding a vendor means adding an adapter, not branching
// inside shared code.
type ExportAdapter interface {
	// Source identifies the vendor this adapter handles.
	Source() domain.Source

	// Parse reads the archive at path and returns every conversation
	// it contains. A missing or unreadable conversations.json manifest
	// yields an error wrapping domain.ErrMalformedArchive; individual
	// records missing their identifier are skipped, not errors.
	Parse(ctx context.Context, path string) ([]ParsedConversation, error)
}

// ArtifactScanner walks an export archive and indexes its non-manifest
// files, optionally materialising them to disk.
type ArtifactScanner interface {
	// Scan returns artifact rows for every non-directory, non-manifest
	// entry in the archive. Individual extraction failures are
	// swallowed; the row is still returned with ExtractedTo empty.
	Scan(ctx context.Context, path string) ([]domain.Artifact, error)
}
