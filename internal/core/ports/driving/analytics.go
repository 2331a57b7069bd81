package driving

import (
	"context"

	"github.com/openhwy/chatidx/internal/core/domain"
)

// AnalyticsService aggregates statistics over the index.
type AnalyticsService interface {
	// Stats returns the overall statistics block.
	Stats(ctx context.Context) (*domain.Stats, error)

	// Timeline buckets conversation activity by period and source.
	Timeline(ctx context.Context, granularity domain.TimelineGranularity) ([]domain.TimelineBucket, error)

	// Patterns analyses question ratio, durations, and code frequency.
	Patterns(ctx context.Context) (*domain.Patterns, error)

	// Languages returns the fenced-code-block language histogram.
	Languages(ctx context.Context) ([]domain.LanguageCount, error)

	// Cooccurrence counts conversations containing each pair of
	// keywords, keeping pairs at or above minCount.
	Cooccurrence(ctx context.Context, keywords []string, minCount int) (map[string]map[string]int, error)

	// Report generates the full analytics report and writes it to
	// basePath.json and basePath.md.
	Report(ctx context.Context, basePath string) (*domain.Report, error)
}

// ArtifactService exposes the artifact query surface.
type ArtifactService interface {
	TypeSummary(ctx context.Context) ([]domain.ArtifactTypeSummary, error)
	ListByType(ctx context.Context, fileType domain.ArtifactType) ([]domain.Artifact, error)
	FindByName(ctx context.Context, pattern string) ([]domain.Artifact, error)
	Largest(ctx context.Context, n int) ([]domain.Artifact, error)
	ImagesByConversation(ctx context.Context, conversationID string) ([]domain.Artifact, error)
	ImageConversations(ctx context.Context) ([]domain.ConversationImages, error)

	// Stats returns type and extension summaries plus overall totals.
	Stats(ctx context.Context) ([]domain.ArtifactTypeSummary, []domain.ExtensionCount, int, int64, error)

	// ExportCSV writes the artifacts CSV export, optionally restricted
	// to one type.
	ExportCSV(ctx context.Context, path string, fileType domain.ArtifactType) (int, error)

	// CopyExtracted copies already-materialised artifacts of one type
	// into outputDir, returning how many were copied.
	CopyExtracted(ctx context.Context, fileType domain.ArtifactType, outputDir string) (int, error)
}
