package domain

import "time"

// SearchFilter is the conjunctive filter applied to conversation
// searches. Zero values mean unconstrained.
type SearchFilter struct {
	// Query is matched case-insensitively as a substring of the
	// conversation's searchable text.
	Query string

	// Source restricts results to one vendor.
	Source Source

	// StartDate / EndDate bound created_at inclusively.
	StartDate *time.Time
	EndDate   *time.Time

	// MinMessages / MaxMessages bound message_count. Zero disables.
	MinMessages int
	MaxMessages int

	// Limit caps the number of results. Zero means the default.
	Limit int

	// IncludeMessages hydrates each result's Messages slice.
	IncludeMessages bool
}

// SimilarityHit is one ranked result of the keyword-overlap
// similarity search. Score is the number of matching index rows, a
// crude proxy for topical overlap rather than a real similarity
// metric.
type SimilarityHit struct {
	ID        string
	Title     string
	Source    Source
	CreatedAt *time.Time
	Score     int
}

// CodeBlock is one fenced code block extracted from a message, with
// its conversation and message provenance.
type CodeBlock struct {
	ConversationID    string     `json:"conversation_id"`
	ConversationTitle string     `json:"conversation_title"`
	MessageID         string     `json:"message_id"`
	Sender            string     `json:"sender"`
	Language          string     `json:"language"`
	Code              string     `json:"code"`
	CreatedAt         *time.Time `json:"created_at"`
}

// ExportRow is one row of the conversations CSV export.
type ExportRow struct {
	ID           string
	Source       Source
	Title        string
	CreatedAt    *time.Time
	MessageCount int
	Summary      string
}

// ArtifactExportRow is one row of the artifacts CSV export.
type ArtifactExportRow struct {
	FileName          string
	FileType          ArtifactType
	FileExtension     string
	FileSize          int64
	FilePath          string
	ExtractedTo       string
	ConversationTitle string
	ConversationDate  *time.Time
}
