package driving

import (
	"context"

	"github.com/openhwy/chatidx/internal/core/domain"
)

// BatchService executes declarative batch query projects and manages
// their persisted results.
type BatchService interface {
	// ProcessFile loads a JSON batch spec and runs every query in
	// order. A single query's failure is recorded in the summary,
	// never aborting the remaining queries.
	ProcessFile(ctx context.Context, path string) (*domain.BatchSummary, error)

	// Process runs an in-memory batch project.
	Process(ctx context.Context, project *domain.BatchProject) (*domain.BatchSummary, error)

	// ProjectIndex builds an index of all past query result files of a
	// project and writes it to the project directory.
	ProjectIndex(project string) (*domain.ProjectIndex, error)

	// Merge combines the latest results of the named queries into one
	// file, returning the merged element count and output path.
	Merge(project string, queries []string, outputName string) (int, string, error)
}
