package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"course-folder-api/models"

	"github.com/google/uuid"
)

// ErrComposerUnavailable is returned when no report composer is configured.
var ErrComposerUnavailable = errors.New("report composer is not configured")

// ReportComposer renders folder review reports. The implementation is an
// external collaborator; the workflow treats every call as best-effort and
// records a FAILED generation status instead of failing the transition.
type ReportComposer interface {
	// ComposeAuditorReport renders a single auditor's report from their
	// structured decision, ratings and remarks.
	ComposeAuditorReport(folder *models.CourseFolder, assignment *models.AuditAssignment) ([]byte, error)
	// ComposeCover renders the consolidated report's cover sheet from the
	// audit summary.
	ComposeCover(folder *models.CourseFolder, summary AuditSummary) ([]byte, error)
	// MergeReports concatenates the cover and per-auditor reports into the
	// consolidated artifact.
	MergeReports(parts [][]byte) ([]byte, error)
}

// ArtifactStore writes generated and uploaded artifacts to the upload
// directory under per-kind subdirectories.
type ArtifactStore struct {
	baseDir string
}

func NewArtifactStore() *ArtifactStore {
	base := os.Getenv("UPLOAD_PATH")
	if base == "" {
		base = "./uploads"
	}
	return &ArtifactStore{baseDir: base}
}

// Save stores data under kind/ with a unique name and returns the stored path.
func (s *ArtifactStore) Save(kind, extension string, data []byte) (string, error) {
	dir := filepath.Join(s.baseDir, kind)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create artifact directory: %w", err)
	}
	name := fmt.Sprintf("%s%s", uuid.NewString(), extension)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}
	return path, nil
}

// Read loads a previously stored artifact.
func (s *ArtifactStore) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}
