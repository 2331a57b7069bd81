package driving

import (
	"context"

	"github.com/openhwy/chatidx/internal/core/domain"
)

// IndexerService ingests export archives into the schema store.
type IndexerService interface {
	// IndexArchive ingests one archive: artifacts first, then the
	// matching format adapter's conversations and messages.
	IndexArchive(ctx context.Context, path string, source domain.Source) (*domain.ArchiveReport, error)

	// IndexAll walks the exports directory (claude-ai/*.zip, then
	// openai-ai/*.zip) sequentially. A failed archive is recorded in
	// the report and never silently swallowed; remaining archives
	// still process.
	IndexAll(ctx context.Context, exportsDir string) (*domain.RunReport, error)
}
