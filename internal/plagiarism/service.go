package plagiarism

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"acadflow-back/internal/models"
	"acadflow-back/internal/storage"
)

const (
	submissionsPrefix = "submissions"
	reportsPrefix     = "reports"
)

// Actor is the authenticated caller as the lifecycle rules see it: a stable
// user id plus the global role on the user record.
type Actor struct {
	UserID uint
	Role   models.Role
}

type Service struct {
	store    *Store
	files    storage.Storage
	projects ProjectDirectory
}

func NewService(store *Store, files storage.Storage, projects ProjectDirectory) *Service {
	return &Service{store: store, files: files, projects: projects}
}

func submissionExtAllowed(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf", ".docx":
		return true
	}
	return false
}

func contentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	return "application/octet-stream"
}

// artifactPath builds "{namespace}/{token}_{filename}". The uuid token makes
// paths collision-free across concurrent uploads and unguessable.
func artifactPath(namespace, filename string) string {
	return path.Join(namespace, uuid.New().String()+"_"+filepath.Base(filename))
}

// Submit validates and stores a submission file, then creates a queued job.
// Only the project's owner may submit; an accepted membership is not enough.
// The file is written before the job row so a failed write never leaves a
// job pointing at nothing.
func (s *Service) Submit(ctx context.Context, actor Actor, projectID uint, filename string, file io.Reader, size int64) (*Job, error) {
	ownerID, found, err := s.projects.ProjectOwner(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !found || ownerID != actor.UserID {
		return nil, fmt.Errorf("%w: only the project owner can upload", ErrForbidden)
	}

	if !submissionExtAllowed(filename) {
		return nil, fmt.Errorf("%w: only PDF or DOCX allowed", ErrUnsupportedFileType)
	}

	filePath := artifactPath(submissionsPrefix, filename)
	if err := s.files.Save(ctx, filePath, file, size, contentTypeFor(filename)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageWriteFailure, err)
	}

	job := &Job{
		UserID:    actor.UserID,
		ProjectID: projectID,
		FilePath:  filePath,
		Status:    StatusQueued,
	}
	if err := s.store.Create(ctx, job); err != nil {
		// The stored file is orphaned but harmless; the path is unique.
		return nil, err
	}
	return job, nil
}

// ListJobs returns every job in the system. Faculty only.
func (s *Service) ListJobs(ctx context.Context, actor Actor) ([]Job, error) {
	if actor.Role != models.RoleFaculty {
		return nil, fmt.Errorf("%w: admin access only", ErrForbidden)
	}
	return s.store.List(ctx)
}

// AttachReport stores an admin-supplied report and completes the job. Any
// faculty user may complete any job; no extension check is applied to
// reports. Completing a job that is no longer queued fails with
// ErrInvalidTransition.
func (s *Service) AttachReport(ctx context.Context, actor Actor, jobID uint, filename string, file io.Reader, size int64) (*Job, error) {
	if actor.Role != models.RoleFaculty {
		return nil, fmt.Errorf("%w: admin access only", ErrForbidden)
	}

	if _, err := s.store.Get(ctx, jobID); err != nil {
		return nil, err
	}

	reportPath := artifactPath(reportsPrefix, filename)
	if err := s.files.Save(ctx, reportPath, file, size, contentTypeFor(filename)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageWriteFailure, err)
	}

	if err := s.store.AttachReport(ctx, jobID, reportPath, time.Now().UTC()); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, jobID)
}

// Status returns the job for its owner; anyone else gets ErrNotFound, which
// does not reveal whether the job exists.
func (s *Service) Status(ctx context.Context, actor Actor, jobID uint) (*Job, error) {
	return s.store.GetForOwner(ctx, jobID, actor.UserID)
}

// OpenReport streams the stored report of the caller's completed job. A
// completed job whose backing file has gone missing is a storage
// inconsistency, not a missing job.
func (s *Service) OpenReport(ctx context.Context, actor Actor, jobID uint) (io.ReadCloser, string, error) {
	job, err := s.store.GetForOwner(ctx, jobID, actor.UserID)
	if err != nil {
		return nil, "", err
	}
	if !job.Completed() || job.ReportPath == "" {
		return nil, "", fmt.Errorf("%w: report not available yet", ErrNotFound)
	}

	exists, err := s.files.Exists(ctx, job.ReportPath)
	if err != nil {
		return nil, "", err
	}
	if !exists {
		return nil, "", ErrStorageInconsistency
	}

	rc, err := s.files.Open(ctx, job.ReportPath)
	if err != nil {
		return nil, "", ErrStorageInconsistency
	}
	return rc, path.Base(job.ReportPath), nil
}
