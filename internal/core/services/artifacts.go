package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/openhwy/chatidx/internal/core/domain"
	"github.com/openhwy/chatidx/internal/core/ports/driven"
	"github.com/openhwy/chatidx/internal/core/ports/driving"
	"github.com/openhwy/chatidx/internal/logger"
)

// Ensure ArtifactService implements the interface.
var _ driving.ArtifactService = (*ArtifactService)(nil)

// extensionSummarySize caps the extension listing in Stats.
const extensionSummarySize = 10

// ArtifactService exposes the artifact query surface.
type ArtifactService struct {
	artifacts driven.ArtifactStore
}

// NewArtifactService creates a new artifact service.
func NewArtifactService(artifacts driven.ArtifactStore) *ArtifactService {
	return &ArtifactService{artifacts: artifacts}
}

// TypeSummary aggregates artifacts by type, most frequent first.
func (s *ArtifactService) TypeSummary(ctx context.Context) ([]domain.ArtifactTypeSummary, error) {
	return s.artifacts.TypeSummary(ctx)
}

// ListByType returns artifacts of one type, largest first.
func (s *ArtifactService) ListByType(ctx context.Context, fileType domain.ArtifactType) ([]domain.Artifact, error) {
	return s.artifacts.ListByType(ctx, fileType)
}

// FindByName returns artifacts whose file name contains the pattern.
func (s *ArtifactService) FindByName(ctx context.Context, pattern string) ([]domain.Artifact, error) {
	return s.artifacts.FindByName(ctx, pattern)
}

// Largest returns the n largest artifacts.
func (s *ArtifactService) Largest(ctx context.Context, n int) ([]domain.Artifact, error) {
	if n <= 0 {
		n = 10
	}
	return s.artifacts.Largest(ctx, n)
}

// ImagesByConversation lists image artifacts of one conversation.
func (s *ArtifactService) ImagesByConversation(
	ctx context.Context, conversationID string,
) ([]domain.Artifact, error) {
	return s.artifacts.ImagesByConversation(ctx, conversationID)
}

// ImageConversations aggregates image artifacts per conversation.
func (s *ArtifactService) ImageConversations(ctx context.Context) ([]domain.ConversationImages, error) {
	return s.artifacts.ImageConversations(ctx)
}

// Stats returns type and extension summaries plus overall totals.
func (s *ArtifactService) Stats(
	ctx context.Context,
) ([]domain.ArtifactTypeSummary, []domain.ExtensionCount, int, int64, error) {
	types, err := s.artifacts.TypeSummary(ctx)
	if err != nil {
		return nil, nil, 0, 0, fmt.Errorf("type summary: %w", err)
	}

	extensions, err := s.artifacts.ExtensionSummary(ctx, extensionSummarySize)
	if err != nil {
		return nil, nil, 0, 0, fmt.Errorf("extension summary: %w", err)
	}

	count, size, err := s.artifacts.Totals(ctx)
	if err != nil {
		return nil, nil, 0, 0, fmt.Errorf("totals: %w", err)
	}

	return types, extensions, count, size, nil
}

// ExportCSV writes the artifacts CSV export, optionally restricted to
// one type, returning the row count.
func (s *ArtifactService) ExportCSV(
	ctx context.Context, path string, fileType domain.ArtifactType,
) (int, error) {
	rows, err := s.artifacts.ExportRows(ctx, fileType)
	if err != nil {
		return 0, fmt.Errorf("export rows: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 0, fmt.Errorf("create export directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"file_name", "file_type", "file_extension", "file_size",
		"file_path", "extracted_to", "conversation_title", "conversation_date",
	}
	if err := w.Write(header); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	for _, row := range rows {
		date := ""
		if row.ConversationDate != nil {
			date = row.ConversationDate.Format(time.RFC3339)
		}
		record := []string{
			row.FileName,
			string(row.FileType),
			row.FileExtension,
			strconv.FormatInt(row.FileSize, 10),
			row.FilePath,
			row.ExtractedTo,
			row.ConversationTitle,
			date,
		}
		if err := w.Write(record); err != nil {
			return 0, fmt.Errorf("write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return 0, fmt.Errorf("flush export: %w", err)
	}

	logger.Info("Exported %d artifacts to %s", len(rows), path)
	return len(rows), nil
}

// CopyExtracted copies already-materialised artifacts of one type into
// outputDir. A single unreadable artifact is skipped, not fatal.
func (s *ArtifactService) CopyExtracted(
	ctx context.Context, fileType domain.ArtifactType, outputDir string,
) (int, error) {
	artifacts, err := s.artifacts.ExtractedByType(ctx, fileType)
	if err != nil {
		return 0, fmt.Errorf("extracted artifacts: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return 0, fmt.Errorf("create output directory: %w", err)
	}

	copied := 0
	for i := range artifacts {
		if err := copyFile(artifacts[i].ExtractedTo, filepath.Join(outputDir, artifacts[i].FileName)); err != nil {
			logger.Warn("Skipping %s: %v", artifacts[i].ExtractedTo, err)
			continue
		}
		copied++
	}

	logger.Info("Copied %d of %d %s artifacts to %s", copied, len(artifacts), fileType, outputDir)
	return copied, nil
}

// copyFile copies src to dst, truncating any existing file.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
