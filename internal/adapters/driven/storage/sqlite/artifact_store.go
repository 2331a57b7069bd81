package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/openhwy/chatidx/internal/core/domain"
	"github.com/openhwy/chatidx/internal/core/ports/driven"
)

// artifactStore implements driven.ArtifactStore.
type artifactStore struct {
	store *Store
}

var _ driven.ArtifactStore = (*artifactStore)(nil)

// UpsertArtifact inserts or replaces an artifact by ID.
func (s *artifactStore) UpsertArtifact(ctx context.Context, artifact *domain.Artifact) error {
	if artifact.ID == "" {
		return domain.ErrInvalidInput
	}

	var conversationID any
	if artifact.ConversationID != "" {
		conversationID = artifact.ConversationID
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO artifacts
			(id, conversation_id, file_name, file_path, file_type,
			 file_extension, file_size, extracted_to, export_file, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			conversation_id = excluded.conversation_id,
			file_name = excluded.file_name,
			file_path = excluded.file_path,
			file_type = excluded.file_type,
			file_extension = excluded.file_extension,
			file_size = excluded.file_size,
			extracted_to = excluded.extracted_to,
			export_file = excluded.export_file,
			created_at = excluded.created_at
	`, artifact.ID, conversationID, artifact.FileName, artifact.FilePath,
		string(artifact.FileType), artifact.FileExtension, artifact.FileSize,
		artifact.ExtractedTo, artifact.ExportFile, artifact.CreatedAt)

	if err != nil {
		return fmt.Errorf("saving artifact: %w", err)
	}
	return nil
}

// TypeSummary aggregates artifacts by type, most frequent first.
func (s *artifactStore) TypeSummary(ctx context.Context) ([]domain.ArtifactTypeSummary, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT file_type, COUNT(*), COALESCE(SUM(file_size), 0)
		FROM artifacts
		GROUP BY file_type
		ORDER BY COUNT(*) DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying artifact type summary: %w", err)
	}
	defer rows.Close()

	var summaries []domain.ArtifactTypeSummary //nolint:prealloc // size unknown from query
	for rows.Next() {
		var sum domain.ArtifactTypeSummary
		var fileType string
		if err := rows.Scan(&fileType, &sum.Count, &sum.TotalSize); err != nil {
			return nil, fmt.Errorf("scanning type summary: %w", err)
		}
		sum.FileType = domain.ArtifactType(fileType)
		summaries = append(summaries, sum)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating type summaries: %w", err)
	}

	return summaries, nil
}

// ListByType returns artifacts of one type, largest first.
func (s *artifactStore) ListByType(ctx context.Context, fileType domain.ArtifactType) ([]domain.Artifact, error) {
	return s.queryArtifacts(ctx, `
		SELECT id, conversation_id, file_name, file_path, file_type,
		       file_extension, file_size, extracted_to, export_file
		FROM artifacts
		WHERE file_type = ?
		ORDER BY file_size DESC
	`, string(fileType))
}

// FindByName matches file names case-insensitively, largest first.
func (s *artifactStore) FindByName(ctx context.Context, pattern string) ([]domain.Artifact, error) {
	return s.queryArtifacts(ctx, `
		SELECT id, conversation_id, file_name, file_path, file_type,
		       file_extension, file_size, extracted_to, export_file
		FROM artifacts
		WHERE lower(file_name) LIKE '%' || lower(?) || '%'
		ORDER BY file_size DESC
	`, pattern)
}

// Largest returns the n largest artifacts.
func (s *artifactStore) Largest(ctx context.Context, n int) ([]domain.Artifact, error) {
	return s.queryArtifacts(ctx, `
		SELECT id, conversation_id, file_name, file_path, file_type,
		       file_extension, file_size, extracted_to, export_file
		FROM artifacts
		ORDER BY file_size DESC
		LIMIT ?
	`, n)
}

// ImagesByConversation lists image artifacts of one conversation.
func (s *artifactStore) ImagesByConversation(ctx context.Context, conversationID string) ([]domain.Artifact, error) {
	return s.queryArtifacts(ctx, `
		SELECT id, conversation_id, file_name, file_path, file_type,
		       file_extension, file_size, extracted_to, export_file
		FROM artifacts
		WHERE file_type = 'image'
		  AND conversation_id LIKE '%' || ? || '%'
		ORDER BY file_name
	`, conversationID)
}

// ImageConversations aggregates image artifacts per conversation.
func (s *artifactStore) ImageConversations(ctx context.Context) ([]domain.ConversationImages, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT a.conversation_id, COALESCE(c.title, ''),
		       COUNT(*), COALESCE(SUM(a.file_size), 0)
		FROM artifacts a
		LEFT JOIN conversations c ON a.conversation_id = c.id
		WHERE a.file_type = 'image' AND a.conversation_id IS NOT NULL
		GROUP BY a.conversation_id, c.title
		ORDER BY COUNT(*) DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying image conversations: %w", err)
	}
	defer rows.Close()

	var result []domain.ConversationImages //nolint:prealloc // size unknown from query
	for rows.Next() {
		var ci domain.ConversationImages
		if err := rows.Scan(&ci.ConversationID, &ci.Title, &ci.ImageCount, &ci.TotalSize); err != nil {
			return nil, fmt.Errorf("scanning image conversation: %w", err)
		}
		result = append(result, ci)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating image conversations: %w", err)
	}

	return result, nil
}

// ExtensionSummary returns the top n extensions by artifact count.
func (s *artifactStore) ExtensionSummary(ctx context.Context, n int) ([]domain.ExtensionCount, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT COALESCE(file_extension, ''), COUNT(*)
		FROM artifacts
		GROUP BY file_extension
		ORDER BY COUNT(*) DESC
		LIMIT ?
	`, n)
	if err != nil {
		return nil, fmt.Errorf("querying extension summary: %w", err)
	}
	defer rows.Close()

	var result []domain.ExtensionCount //nolint:prealloc // size unknown from query
	for rows.Next() {
		var ec domain.ExtensionCount
		if err := rows.Scan(&ec.Extension, &ec.Count); err != nil {
			return nil, fmt.Errorf("scanning extension count: %w", err)
		}
		result = append(result, ec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating extension counts: %w", err)
	}

	return result, nil
}

// Totals returns the overall artifact count and byte size.
func (s *artifactStore) Totals(ctx context.Context) (int, int64, error) {
	var count int
	var size int64
	err := s.store.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(file_size), 0) FROM artifacts
	`).Scan(&count, &size)
	if err != nil {
		return 0, 0, fmt.Errorf("querying artifact totals: %w", err)
	}
	return count, size, nil
}

// ExtractedByType returns extracted artifacts of one type.
func (s *artifactStore) ExtractedByType(ctx context.Context, fileType domain.ArtifactType) ([]domain.Artifact, error) {
	return s.queryArtifacts(ctx, `
		SELECT id, conversation_id, file_name, file_path, file_type,
		       file_extension, file_size, extracted_to, export_file
		FROM artifacts
		WHERE file_type = ?
		  AND extracted_to IS NOT NULL AND extracted_to != ''
		ORDER BY file_name
	`, string(fileType))
}

// ExportRows returns the artifacts CSV projection.
func (s *artifactStore) ExportRows(ctx context.Context, fileType domain.ArtifactType) ([]domain.ArtifactExportRow, error) {
	where := "1=1"
	var params []any
	if fileType != "" {
		where = "a.file_type = ?"
		params = append(params, string(fileType))
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT a.file_name, a.file_type, COALESCE(a.file_extension, ''),
		       a.file_size, a.file_path, COALESCE(a.extracted_to, ''),
		       COALESCE(c.title, ''), c.created_at
		FROM artifacts a
		LEFT JOIN conversations c ON a.conversation_id = c.id
		WHERE `+where+`
		ORDER BY a.file_size DESC
	`, params...)
	if err != nil {
		return nil, fmt.Errorf("querying artifact export rows: %w", err)
	}
	defer rows.Close()

	var result []domain.ArtifactExportRow //nolint:prealloc // size unknown from query
	for rows.Next() {
		var r domain.ArtifactExportRow
		var ft string
		var convDate sql.NullTime
		if err := rows.Scan(&r.FileName, &ft, &r.FileExtension,
			&r.FileSize, &r.FilePath, &r.ExtractedTo,
			&r.ConversationTitle, &convDate); err != nil {
			return nil, fmt.Errorf("scanning artifact export row: %w", err)
		}
		r.FileType = domain.ArtifactType(ft)
		if convDate.Valid {
			t := convDate.Time
			r.ConversationDate = &t
		}
		result = append(result, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating artifact export rows: %w", err)
	}

	return result, nil
}

func (s *artifactStore) queryArtifacts(ctx context.Context, query string, params ...any) ([]domain.Artifact, error) {
	rows, err := s.store.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("querying artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []domain.Artifact //nolint:prealloc // size unknown from query
	for rows.Next() {
		var a domain.Artifact
		var conversationID, extension, extractedTo sql.NullString
		var fileType string
		if err := rows.Scan(&a.ID, &conversationID, &a.FileName, &a.FilePath,
			&fileType, &extension, &a.FileSize, &extractedTo, &a.ExportFile); err != nil {
			return nil, fmt.Errorf("scanning artifact: %w", err)
		}
		a.ConversationID = conversationID.String
		a.FileType = domain.ArtifactType(fileType)
		a.FileExtension = extension.String
		a.ExtractedTo = extractedTo.String
		artifacts = append(artifacts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating artifacts: %w", err)
	}

	return artifacts, nil
}
