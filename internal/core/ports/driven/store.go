package driven

import (
	"context"
	"time"

	"github.com/openhwy/chatidx/internal/core/domain"
)

// ConversationStore persists and retrieves conversations, messages,
// and the searchable text index. All writes are full-record upserts
// keyed by primary key; partial updates are not supported.
type ConversationStore interface {
	// UpsertConversation inserts or replaces a conversation by ID.
	UpsertConversation(ctx context.Context, conv *domain.Conversation) error

	// UpsertMessage inserts or replaces a message by ID.
	UpsertMessage(ctx context.Context, msg *domain.Message) error

	// UpsertSearchText replaces the searchable text of a conversation.
	// The text is always regenerated fully, never partially updated.
	UpsertSearchText(ctx context.Context, conversationID, text string) error

	// Get retrieves a conversation by full or partial ID (substring
	// match). Returns domain.ErrNotFound when nothing matches.
	Get(ctx context.Context, id string) (*domain.Conversation, error)

	// Messages returns all messages of a conversation ordered by
	// created_at ascending.
	Messages(ctx context.Context, conversationID string) ([]domain.Message, error)

	// Search applies the conjunctive filter and returns conversations
	// ordered by created_at descending.
	Search(ctx context.Context, filter domain.SearchFilter) ([]domain.Conversation, error)

	// Titles returns all non-empty conversation titles.
	Titles(ctx context.Context) ([]string, error)

	// SearchableText returns the indexed text of one conversation.
	// Returns domain.ErrNotFound when the conversation has no index row.
	SearchableText(ctx context.Context, conversationID string) (string, error)

	// MatchCounts finds conversations other than excludeID whose
	// searchable text matches the case-insensitive regular expression
	// pattern, ranked by number of matching index rows.
	MatchCounts(ctx context.Context, pattern, excludeID string, limit int) ([]domain.SimilarityHit, error)

	// ExportRows returns the CSV export projection, optionally
	// filtered by a searchable-text substring.
	ExportRows(ctx context.Context, query string) ([]domain.ExportRow, error)
}

// TopicStore persists conversation topics. Populated only by the
// categorise operation, never by the core indexer.
type TopicStore interface {
	UpsertTopic(ctx context.Context, topic domain.Topic) error
	TopicsFor(ctx context.Context, conversationID string) ([]domain.Topic, error)
}

// ArtifactStore persists and queries export archive artifacts.
type ArtifactStore interface {
	// UpsertArtifact inserts or replaces an artifact by ID.
	UpsertArtifact(ctx context.Context, artifact *domain.Artifact) error

	// TypeSummary aggregates artifacts by type, most frequent first.
	TypeSummary(ctx context.Context) ([]domain.ArtifactTypeSummary, error)

	// ListByType returns artifacts of one type, largest first.
	ListByType(ctx context.Context, fileType domain.ArtifactType) ([]domain.Artifact, error)

	// FindByName returns artifacts whose file name contains the
	// pattern (case-insensitive), largest first.
	FindByName(ctx context.Context, pattern string) ([]domain.Artifact, error)

	// Largest returns the n largest artifacts.
	Largest(ctx context.Context, n int) ([]domain.Artifact, error)

	// ImagesByConversation lists image artifacts of one conversation
	// (partial ID match), ordered by file name.
	ImagesByConversation(ctx context.Context, conversationID string) ([]domain.Artifact, error)

	// ImageConversations aggregates image artifacts per conversation,
	// most images first.
	ImageConversations(ctx context.Context) ([]domain.ConversationImages, error)

	// ExtensionSummary returns the top n extensions by artifact count.
	ExtensionSummary(ctx context.Context, n int) ([]domain.ExtensionCount, error)

	// Totals returns the overall artifact count and byte size.
	Totals(ctx context.Context) (count int, size int64, err error)

	// ExtractedByType returns artifacts of one type that were
	// materialised during indexing (extracted_to set).
	ExtractedByType(ctx context.Context, fileType domain.ArtifactType) ([]domain.Artifact, error)

	// ExportRows returns the artifacts CSV projection, optionally
	// restricted to one type.
	ExportRows(ctx context.Context, fileType domain.ArtifactType) ([]domain.ArtifactExportRow, error)
}

// AnalyticsStore exposes the aggregate queries the analytics engine
// is built on.
type AnalyticsStore interface {
	// Counts returns total conversations and messages.
	Counts(ctx context.Context) (conversations, messages int, err error)

	// SourceBreakdown aggregates conversations and messages per source.
	SourceBreakdown(ctx context.Context) ([]domain.SourceStats, error)

	// DateRange returns the earliest and latest conversation
	// timestamps, nil when no conversation carries one.
	DateRange(ctx context.Context) (earliest, latest *time.Time, err error)

	// MessageLengths summarises message text lengths.
	MessageLengths(ctx context.Context) (domain.MessageLengthStats, error)

	// LengthHistogram buckets conversations by message count.
	LengthHistogram(ctx context.Context) (map[string]int, error)

	// Timeline buckets conversation activity by period and source,
	// most recent period first.
	Timeline(ctx context.Context, granularity domain.TimelineGranularity) ([]domain.TimelineBucket, error)

	// HumanMessageCounts returns the number of human messages
	// containing a question mark and the total number of human
	// messages.
	HumanMessageCounts(ctx context.Context) (questions, total int, err error)

	// ConversationSpans returns first/last message times for
	// conversations with at least two timestamped messages.
	ConversationSpans(ctx context.Context) ([]domain.ConversationSpan, error)

	// CodeMessageTexts returns the text of every message containing a
	// fenced code block marker.
	CodeMessageTexts(ctx context.Context) ([]string, error)

	// CodeMessageCount counts messages containing a fenced code block
	// marker.
	CodeMessageCount(ctx context.Context) (int, error)
}
