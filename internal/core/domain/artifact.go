package domain

import "time"

// ArtifactType classifies an artifact by file extension.
type ArtifactType string

// Artifact classifications.
const (
	ArtifactImage    ArtifactType = "image"
	ArtifactAudio    ArtifactType = "audio"
	ArtifactVideo    ArtifactType = "video"
	ArtifactDocument ArtifactType = "document"
	ArtifactArchive  ArtifactType = "archive"
	ArtifactData     ArtifactType = "data"
	ArtifactCode     ArtifactType = "code"
	ArtifactOther    ArtifactType = "other"
)

// Artifact is a non-manifest file found inside an export archive.
// Artifacts are indexed even when extraction is disabled; ExtractedTo
// is the only field affected by that setting.
type Artifact struct {
	// ID is deterministic: the export file stem joined with the
	// in-archive path (slashes replaced by underscores). Stable
	// across re-runs.
	ID string

	// ConversationID is empty for artifacts that cannot be attributed
	// to a specific conversation from the archive layout alone.
	ConversationID string

	// FileName is the base name; FilePath the full path within the
	// archive.
	FileName string
	FilePath string

	FileType      ArtifactType
	FileExtension string
	FileSize      int64

	// ExtractedTo is the filesystem path the artifact was copied to,
	// empty when extraction is disabled or failed for this entry.
	ExtractedTo string

	// ExportFile is the base name of the source archive.
	ExportFile string

	// CreatedAt is nil; zip archives carry no reliable per-file
	// timestamps.
	CreatedAt *time.Time
}

// ArtifactTypeSummary aggregates artifacts of one type.
type ArtifactTypeSummary struct {
	FileType  ArtifactType
	Count     int
	TotalSize int64
}

// ExtensionCount aggregates artifacts by file extension.
type ExtensionCount struct {
	Extension string
	Count     int
}

// ConversationImages summarises image artifacts attributed to one
// conversation.
type ConversationImages struct {
	ConversationID string
	Title          string
	ImageCount     int
	TotalSize      int64
}
