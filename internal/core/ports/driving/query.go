package driving

import (
	"context"

	"github.com/openhwy/chatidx/internal/core/domain"
)

// QueryService exposes the read-only query surface over the index.
type QueryService interface {
	// Search applies the conjunctive filter and returns conversations
	// ordered by created_at descending.
	Search(ctx context.Context, filter domain.SearchFilter) ([]domain.Conversation, error)

	// Get retrieves a conversation by full or partial ID, optionally
	// inlining its messages ordered by created_at ascending.
	Get(ctx context.Context, id string, includeMessages bool) (*domain.Conversation, error)

	// Topics tokenises conversation titles and returns the topN most
	// frequent keywords after stop-word and length filtering.
	Topics(ctx context.Context, topN, minWordLength int) ([]domain.TopicCount, error)

	// Related finds conversations topically overlapping the given one
	// via the keyword-regex heuristic.
	Related(ctx context.Context, id string, limit int) ([]domain.SimilarityHit, error)

	// ExtractCode returns fenced code blocks from matching
	// conversations, optionally filtered by declared language.
	ExtractCode(ctx context.Context, query, language string) ([]domain.CodeBlock, error)

	// Categorise maps conversations to categories by keyword lists and
	// records the assignments as topics.
	Categorise(ctx context.Context, keywordMap map[string][]string) (map[string][]domain.Conversation, error)

	// ExportCSV writes the conversations CSV export, optionally
	// filtered by a searchable-text substring.
	ExportCSV(ctx context.Context, path, query string) (int, error)

	// ChunkConversation splits a hydrated conversation into chunks
	// fitting within maxTokens (estimated at four characters per
	// token).
	ChunkConversation(conv *domain.Conversation, maxTokens int) []domain.ConversationChunk

	// SaveResult persists a query result under the output root with a
	// metadata sidecar, returning the result file path.
	SaveResult(result any, queryName string, metadata map[string]any) (string, error)

	// History lists past saved query metadata, newest first.
	History(queryName string) ([]map[string]any, error)
}
