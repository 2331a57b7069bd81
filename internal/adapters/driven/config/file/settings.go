package file

import (
	"path/filepath"

	"github.com/openhwy/chatidx/internal/core/ports/driven"
)

// Default configuration values, applied when a key is absent.
const (
	DefaultExportsDir   = "ai-exports"
	DefaultOutputDir    = "outputs"
	DefaultDatabaseName = "conversations.db"
	DefaultArtifactsDir = "extracted_artifacts"
)

// Settings is the resolved, typed view of the configuration keys the
// indexer and query layer depend on.
type Settings struct {
	// ExportsDir holds the claude-ai/ and openai-ai/ export
	// subdirectories.
	ExportsDir string

	// OutputDir receives the database and derived outputs.
	OutputDir string

	// DatabaseName is the database file name within OutputDir.
	DatabaseName string

	// ExtractArtifacts enables copying archive artifacts to disk
	// during indexing.
	ExtractArtifacts bool

	// ArtifactsDir is the extraction root within OutputDir.
	ArtifactsDir string
}

// ResolveSettings reads the known configuration keys from store,
// falling back to defaults for absent keys.
func ResolveSettings(store driven.ConfigStore) Settings {
	s := Settings{
		ExportsDir:       store.GetString("paths.exports_dir"),
		OutputDir:        store.GetString("paths.output_dir"),
		DatabaseName:     store.GetString("paths.database_name"),
		ExtractArtifacts: store.GetBool("indexing.extract_artifacts"),
		ArtifactsDir:     store.GetString("indexing.artifacts_dir"),
	}

	if s.ExportsDir == "" {
		s.ExportsDir = DefaultExportsDir
	}
	if s.OutputDir == "" {
		s.OutputDir = DefaultOutputDir
	}
	if s.DatabaseName == "" {
		s.DatabaseName = DefaultDatabaseName
	}
	if s.ArtifactsDir == "" {
		s.ArtifactsDir = DefaultArtifactsDir
	}

	return s
}

// DatabasePath returns the database location under OutputDir.
func (s Settings) DatabasePath() string {
	return filepath.Join(s.OutputDir, s.DatabaseName)
}

// ArtifactsPath returns the artifact extraction root under OutputDir.
func (s Settings) ArtifactsPath() string {
	return filepath.Join(s.OutputDir, s.ArtifactsDir)
}

// QueriesPath returns the saved-results tree under OutputDir.
func (s Settings) QueriesPath() string {
	return filepath.Join(s.OutputDir, "queries")
}

// BatchResultsPath returns the batch output root, nested inside the
// queries tree.
func (s Settings) BatchResultsPath() string {
	return filepath.Join(s.OutputDir, "queries", "batch_results")
}
