package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/openhwy/chatidx/internal/core/domain"
	"github.com/openhwy/chatidx/internal/core/ports/driven"
	"github.com/openhwy/chatidx/internal/core/ports/driving"
	"github.com/openhwy/chatidx/internal/logger"
)

// Ensure IndexerService implements the interface.
var _ driving.IndexerService = (*IndexerService)(nil)

// sourceDirs maps export subdirectories to their source, in the order
// IndexAll processes them.
var sourceDirs = []struct {
	dir    string
	source domain.Source
}{
	{"claude-ai", domain.SourceClaude},
	{"openai-ai", domain.SourceOpenAI},
}

// IndexerService ingests export archives into the schema store.
type IndexerService struct {
	conversations driven.ConversationStore
	artifacts     driven.ArtifactStore
	scanner       driven.ArtifactScanner
	adapters      map[domain.Source]driven.ExportAdapter
}

// NewIndexerService creates a new indexer service. One adapter per
// source; a source without an adapter cannot be indexed.
func NewIndexerService(
	conversations driven.ConversationStore,
	artifacts driven.ArtifactStore,
	scanner driven.ArtifactScanner,
	adapters ...driven.ExportAdapter,
) *IndexerService {
	bySource := make(map[domain.Source]driven.ExportAdapter, len(adapters))
	for _, a := range adapters {
		bySource[a.Source()] = a
	}

	return &IndexerService{
		conversations: conversations,
		artifacts:     artifacts,
		scanner:       scanner,
		adapters:      bySource,
	}
}

// IndexArchive ingests one archive: artifacts first, then the matching
// adapter's conversations and messages.
func (s *IndexerService) IndexArchive(
	ctx context.Context, path string, source domain.Source,
) (*domain.ArchiveReport, error) {
	adapter, ok := s.adapters[source]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedSource, source)
	}

	logger.Section("Index Archive")
	logger.Info("Archive: %s (%s)", path, source)

	report := &domain.ArchiveReport{
		ExportFile: filepath.Base(path),
		Source:     source,
	}

	// Artifacts are indexed regardless of whether conversation parsing
	// succeeds for individual records.
	found, err := s.scanner.Scan(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("scan artifacts: %w", err)
	}
	for i := range found {
		if err := s.artifacts.UpsertArtifact(ctx, &found[i]); err != nil {
			return nil, fmt.Errorf("upsert artifact %s: %w", found[i].ID, err)
		}
	}
	report.Artifacts = len(found)
	logger.Debug("Indexed %d artifacts", len(found))

	parsed, err := adapter.Parse(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("parse archive: %w", err)
	}

	for i := range parsed {
		p := &parsed[i]
		if err := s.conversations.UpsertConversation(ctx, &p.Conversation); err != nil {
			return nil, fmt.Errorf("upsert conversation %s: %w", p.Conversation.ID, err)
		}

		for j := range p.Messages {
			if err := s.conversations.UpsertMessage(ctx, &p.Messages[j]); err != nil {
				return nil, fmt.Errorf("upsert message %s: %w", p.Messages[j].ID, err)
			}
		}

		if p.SearchText != "" {
			if err := s.conversations.UpsertSearchText(ctx, p.Conversation.ID, p.SearchText); err != nil {
				return nil, fmt.Errorf("upsert search text %s: %w", p.Conversation.ID, err)
			}
		}

		report.Conversations++
		report.Messages += len(p.Messages)
	}

	logger.Info("Indexed %d conversations, %d messages", report.Conversations, report.Messages)
	return report, nil
}

// IndexAll walks the exports directory sequentially: claude-ai/*.zip,
// then openai-ai/*.zip. A failed archive is recorded and the run
// continues with the remaining archives.
func (s *IndexerService) IndexAll(ctx context.Context, exportsDir string) (*domain.RunReport, error) {
	logger.Section("Index Run")
	logger.Info("Exports directory: %s", exportsDir)

	run := &domain.RunReport{}

	for _, sd := range sourceDirs {
		archives, err := filepath.Glob(filepath.Join(exportsDir, sd.dir, "*.zip"))
		if err != nil {
			return nil, fmt.Errorf("list %s archives: %w", sd.source, err)
		}
		sort.Strings(archives)

		if len(archives) == 0 {
			logger.Debug("No %s archives found", sd.source)
			continue
		}

		for _, archive := range archives {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			report, err := s.IndexArchive(ctx, archive, sd.source)
			if err != nil {
				logger.Error("Archive %s failed: %v", archive, err)
				run.Failures = append(run.Failures, domain.ArchiveFailure{
					ExportFile: filepath.Base(archive),
					Err:        err,
				})
				continue
			}
			run.Archives = append(run.Archives, *report)
		}
	}

	logger.Info("Run complete: %d archives, %d failures, %d conversations, %d messages",
		len(run.Archives), len(run.Failures), run.TotalConversations(), run.TotalMessages())
	return run, nil
}
