package export

import (
	"archive/zip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/openhwy/chatidx/internal/core/domain"
	"github.com/openhwy/chatidx/internal/core/ports/driven"
	"github.com/openhwy/chatidx/internal/logger"
)

// manifestFiles are vendor metadata files, never indexed as artifacts.
var manifestFiles = map[string]bool{
	"conversations.json":        true,
	"user.json":                 true,
	"users.json":                true,
	"projects.json":             true,
	"message_feedback.json":     true,
	"group_chats.json":          true,
	"shared_conversations.json": true,
	"sora.json":                 true,
	"shopping.json":             true,
	"chat.html":                 true,
}

// extension sets for artifact classification
var (
	imageExts    = extSet("jpg", "jpeg", "png", "gif", "bmp", "webp", "svg")
	audioExts    = extSet("mp3", "wav", "ogg", "flac", "m4a", "aac")
	videoExts    = extSet("mp4", "avi", "mov", "mkv", "webm")
	documentExts = extSet("pdf", "doc", "docx", "txt", "md", "rtf")
	archiveExts  = extSet("zip", "tar", "gz", "rar", "7z")
	dataExts     = extSet("json", "xml", "csv", "yaml", "yml")
	codeExts     = extSet("py", "js", "java", "cpp", "c", "go", "rs", "html", "css")
)

func extSet(exts ...string) map[string]bool {
	m := make(map[string]bool, len(exts))
	for _, e := range exts {
		m[e] = true
	}
	return m
}

// Classify maps a file name to an artifact type by its extension.
// Matching is case-insensitive.
func Classify(filename string) domain.ArtifactType {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	switch {
	case imageExts[ext]:
		return domain.ArtifactImage
	case audioExts[ext]:
		return domain.ArtifactAudio
	case videoExts[ext]:
		return domain.ArtifactVideo
	case documentExts[ext]:
		return domain.ArtifactDocument
	case archiveExts[ext]:
		return domain.ArtifactArchive
	case dataExts[ext]:
		return domain.ArtifactData
	case codeExts[ext]:
		return domain.ArtifactCode
	default:
		return domain.ArtifactOther
	}
}

// ArchiveStem returns the archive base name without its extension,
// used as the artifact ID prefix and extraction subdirectory.
func ArchiveStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ReadManifest reads and decodes the conversations.json manifest from
// the archive at path into v. A missing or undecodable manifest wraps
// domain.ErrMalformedArchive.
func ReadManifest(path string, v any) error {
	r, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("%w: opening %s: %v", domain.ErrMalformedArchive, filepath.Base(path), err)
	}
	defer r.Close()

	f, err := r.Open("conversations.json")
	if err != nil {
		return fmt.Errorf("%w: %s has no conversations.json", domain.ErrMalformedArchive, filepath.Base(path))
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(v); err != nil {
		return fmt.Errorf("%w: decoding conversations.json in %s: %v",
			domain.ErrMalformedArchive, filepath.Base(path), err)
	}
	return nil
}

// Scanner indexes the non-manifest files of an export archive and
// optionally extracts them to disk.
type Scanner struct {
	extract      bool
	artifactsDir string
}

var _ driven.ArtifactScanner = (*Scanner)(nil)

// NewScanner builds a Scanner. When extract is true, artifacts are
// materialised under artifactsDir/<archive stem>/.
func NewScanner(extract bool, artifactsDir string) *Scanner {
	return &Scanner{extract: extract, artifactsDir: artifactsDir}
}

// Scan returns one artifact per non-directory, non-manifest entry.
// Extraction is flat: nested archive paths collapse to base names,
// and failures leave ExtractedTo empty without failing the scan.
func (s *Scanner) Scan(ctx context.Context, path string) ([]domain.Artifact, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", domain.ErrMalformedArchive, filepath.Base(path), err)
	}
	defer r.Close()

	exportFile := filepath.Base(path)
	stem := ArchiveStem(path)

	var extractDir string
	if s.extract {
		extractDir = filepath.Join(s.artifactsDir, stem)
		if err := os.MkdirAll(extractDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating artifacts directory: %w", err)
		}
	}

	var artifacts []domain.Artifact //nolint:prealloc // entries are filtered
	for _, f := range r.File {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := f.Name
		if strings.HasSuffix(name, "/") || manifestFiles[name] {
			continue
		}

		artifact := domain.Artifact{
			ID:            stem + "_" + strings.ReplaceAll(name, "/", "_"),
			FileName:      filepath.Base(name),
			FilePath:      name,
			FileType:      Classify(name),
			FileExtension: strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")),
			FileSize:      int64(f.UncompressedSize64),
			ExportFile:    exportFile,
		}

		if s.extract {
			dest := filepath.Join(extractDir, filepath.Base(name))
			if err := extractFile(f, dest); err != nil {
				logger.Warn("Skipping extraction of %s: %v", name, err)
			} else {
				artifact.ExtractedTo = dest
			}
		}

		artifacts = append(artifacts, artifact)
	}

	return artifacts, nil
}

func extractFile(f *zip.File, dest string) error {
	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return err
	}
	return out.Close()
}
