package plagiarism

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"acadflow-back/internal/models"
	"acadflow-back/internal/storage"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.ResearchProject{}, &models.ProjectMember{}, &Job{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

type testEnv struct {
	db        *gorm.DB
	svc       *Service
	uploadDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := openTestDB(t)

	dir := t.TempDir()
	files, err := storage.NewLocal(dir)
	if err != nil {
		t.Fatalf("local storage: %v", err)
	}

	svc := NewService(NewStore(db), files, NewProjectDirectory(db))
	return &testEnv{db: db, svc: svc, uploadDir: dir}
}

func (e *testEnv) createUser(t *testing.T, email string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{Name: "Test", Email: email, HashedPassword: "x", Role: role}
	if err := e.db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func (e *testEnv) createProject(t *testing.T, owner *models.User) *models.ResearchProject {
	t.Helper()
	p := &models.ResearchProject{
		Title:    "Graph Sparsification",
		Abstract: "abstract",
		Domain:   "cs",
		OwnerID:  owner.ID,
	}
	if err := e.db.Create(p).Error; err != nil {
		t.Fatalf("create project: %v", err)
	}
	return p
}

func actorOf(u *models.User) Actor {
	return Actor{UserID: u.ID, Role: u.Role}
}

func (e *testEnv) storedFiles(t *testing.T, namespace string) []string {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(e.uploadDir, namespace))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		t.Fatalf("read dir: %v", err)
	}
	names := make([]string, 0, len(entries))
	for _, ent := range entries {
		names = append(names, ent.Name())
	}
	return names
}

func TestSubmitCreatesQueuedJob(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@uni.edu", models.RoleStudent)
	project := env.createProject(t, owner)

	job, err := env.svc.Submit(context.Background(), actorOf(owner), project.ID, "x.docx", strings.NewReader("doc bytes"), 9)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if job.Status != StatusQueued {
		t.Fatalf("expected queued, got %q", job.Status)
	}
	if job.UserID != owner.ID || job.ProjectID != project.ID {
		t.Fatalf("job owner/project mismatch: %+v", job)
	}
	if !strings.HasPrefix(job.FilePath, "submissions/") || !strings.HasSuffix(job.FilePath, "_x.docx") {
		t.Fatalf("unexpected file path %q", job.FilePath)
	}
	if job.ReportPath != "" || job.CompletedAt != nil {
		t.Fatalf("new job must not carry report fields: %+v", job)
	}

	if got := env.storedFiles(t, "submissions"); len(got) != 1 {
		t.Fatalf("expected 1 stored submission, got %v", got)
	}
}

func TestSubmitRejectsUnsupportedExtension(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@uni.edu", models.RoleStudent)
	project := env.createProject(t, owner)

	_, err := env.svc.Submit(context.Background(), actorOf(owner), project.ID, "paper.txt", strings.NewReader("text"), 4)
	if !errors.Is(err, ErrUnsupportedFileType) {
		t.Fatalf("expected ErrUnsupportedFileType, got %v", err)
	}

	var count int64
	env.db.Model(&Job{}).Count(&count)
	if count != 0 {
		t.Fatalf("rejected upload must not create a job, found %d", count)
	}
	if got := env.storedFiles(t, "submissions"); len(got) != 0 {
		t.Fatalf("rejected upload must not persist a file, found %v", got)
	}
}

func TestSubmitExtensionCheckIsCaseInsensitive(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@uni.edu", models.RoleStudent)
	project := env.createProject(t, owner)

	job, err := env.svc.Submit(context.Background(), actorOf(owner), project.ID, "thesis.PDF", strings.NewReader("%PDF"), 4)
	if err != nil {
		t.Fatalf("mixed-case extension should be accepted: %v", err)
	}
	if job.Status != StatusQueued {
		t.Fatalf("expected queued, got %q", job.Status)
	}
}

func TestSubmitRequiresProjectOwnership(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@uni.edu", models.RoleStudent)
	member := env.createUser(t, "member@uni.edu", models.RoleStudent)
	project := env.createProject(t, owner)

	// Accepted membership is not enough; only the owner may submit.
	env.db.Create(&models.ProjectMember{ProjectID: project.ID, UserID: member.ID, IsAccepted: true})

	_, err := env.svc.Submit(context.Background(), actorOf(member), project.ID, "x.pdf", strings.NewReader("%PDF"), 4)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	var count int64
	env.db.Model(&Job{}).Count(&count)
	if count != 0 {
		t.Fatalf("forbidden upload must not create a job, found %d", count)
	}
}

func TestSubmitMissingProjectForbidden(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "user@uni.edu", models.RoleStudent)

	_, err := env.svc.Submit(context.Background(), actorOf(user), 999, "x.pdf", strings.NewReader("%PDF"), 4)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestAttachReportRequiresFaculty(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@uni.edu", models.RoleStudent)
	project := env.createProject(t, owner)

	job, err := env.svc.Submit(context.Background(), actorOf(owner), project.ID, "x.pdf", strings.NewReader("%PDF"), 4)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	_, err = env.svc.AttachReport(context.Background(), actorOf(owner), job.ID, "report.pdf", strings.NewReader("%PDF"), 4)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	got, err := env.svc.Status(context.Background(), actorOf(owner), job.ID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if got.Status != StatusQueued {
		t.Fatalf("job must stay queued after forbidden completion, got %q", got.Status)
	}
}

func TestAttachReportCompletesJob(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@uni.edu", models.RoleStudent)
	faculty := env.createUser(t, "prof@uni.edu", models.RoleFaculty)
	project := env.createProject(t, owner)

	job, err := env.svc.Submit(context.Background(), actorOf(owner), project.ID, "x.docx", strings.NewReader("doc"), 3)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	completed, err := env.svc.AttachReport(context.Background(), actorOf(faculty), job.ID, "report.pdf", strings.NewReader("%PDF report"), 11)
	if err != nil {
		t.Fatalf("attach report: %v", err)
	}

	// completed <=> report path and completion time both present
	if completed.Status != StatusCompleted {
		t.Fatalf("expected completed, got %q", completed.Status)
	}
	if completed.ReportPath == "" || completed.CompletedAt == nil {
		t.Fatalf("completed job must carry report path and completion time: %+v", completed)
	}
	if completed.CompletedAt.Before(completed.CreatedAt) {
		t.Fatalf("completed_at %v before created_at %v", completed.CompletedAt, completed.CreatedAt)
	}
	if !strings.HasPrefix(completed.ReportPath, "reports/") || !strings.HasSuffix(completed.ReportPath, "_report.pdf") {
		t.Fatalf("unexpected report path %q", completed.ReportPath)
	}
}

func TestAttachReportMissingJob(t *testing.T) {
	env := newTestEnv(t)
	faculty := env.createUser(t, "prof@uni.edu", models.RoleFaculty)

	_, err := env.svc.AttachReport(context.Background(), actorOf(faculty), 42, "report.pdf", strings.NewReader("%PDF"), 4)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAttachReportOnCompletedJobFails(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@uni.edu", models.RoleStudent)
	faculty := env.createUser(t, "prof@uni.edu", models.RoleFaculty)
	project := env.createProject(t, owner)

	job, err := env.svc.Submit(context.Background(), actorOf(owner), project.ID, "x.pdf", strings.NewReader("%PDF"), 4)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	first, err := env.svc.AttachReport(context.Background(), actorOf(faculty), job.ID, "report.pdf", strings.NewReader("first"), 5)
	if err != nil {
		t.Fatalf("attach report: %v", err)
	}

	// The queued -> completed transition is one-shot: a second completion
	// loses and must not disturb the first result.
	_, err = env.svc.AttachReport(context.Background(), actorOf(faculty), job.ID, "report2.pdf", strings.NewReader("second"), 6)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	got, err := env.svc.Status(context.Background(), actorOf(owner), job.ID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if got.ReportPath != first.ReportPath {
		t.Fatalf("report path changed: %q -> %q", first.ReportPath, got.ReportPath)
	}
	if !got.CompletedAt.Equal(*first.CompletedAt) {
		t.Fatalf("completed_at changed: %v -> %v", first.CompletedAt, got.CompletedAt)
	}
}

func TestStatusMasksForeignJobs(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@uni.edu", models.RoleStudent)
	other := env.createUser(t, "other@uni.edu", models.RoleStudent)
	project := env.createProject(t, owner)

	job, err := env.svc.Submit(context.Background(), actorOf(owner), project.ID, "x.pdf", strings.NewReader("%PDF"), 4)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	// The job exists but a non-owner must not learn that.
	_, err = env.svc.Status(context.Background(), actorOf(other), job.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign job, got %v", err)
	}
}

func TestOpenReportQueuedJobNotFound(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@uni.edu", models.RoleStudent)
	project := env.createProject(t, owner)

	job, err := env.svc.Submit(context.Background(), actorOf(owner), project.ID, "x.pdf", strings.NewReader("%PDF"), 4)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	_, _, err = env.svc.OpenReport(context.Background(), actorOf(owner), job.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound before completion, got %v", err)
	}
}

func TestOpenReportMissingFileIsStorageInconsistency(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@uni.edu", models.RoleStudent)
	faculty := env.createUser(t, "prof@uni.edu", models.RoleFaculty)
	project := env.createProject(t, owner)

	job, err := env.svc.Submit(context.Background(), actorOf(owner), project.ID, "x.pdf", strings.NewReader("%PDF"), 4)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	completed, err := env.svc.AttachReport(context.Background(), actorOf(faculty), job.ID, "report.pdf", strings.NewReader("%PDF"), 4)
	if err != nil {
		t.Fatalf("attach report: %v", err)
	}

	if err := os.Remove(filepath.Join(env.uploadDir, filepath.FromSlash(completed.ReportPath))); err != nil {
		t.Fatalf("remove report file: %v", err)
	}

	_, _, err = env.svc.OpenReport(context.Background(), actorOf(owner), job.ID)
	if !errors.Is(err, ErrStorageInconsistency) {
		t.Fatalf("expected ErrStorageInconsistency, got %v", err)
	}
}

func TestEndToEndReportRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "a@uni.edu", models.RoleStudent)
	faculty := env.createUser(t, "f@uni.edu", models.RoleFaculty)
	project := env.createProject(t, owner)

	job, err := env.svc.Submit(context.Background(), actorOf(owner), project.ID, "x.docx", strings.NewReader("submission"), 10)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if job.Status != StatusQueued {
		t.Fatalf("expected queued, got %q", job.Status)
	}

	reportBytes := []byte("%PDF-1.4 similarity report")
	if _, err := env.svc.AttachReport(context.Background(), actorOf(faculty), job.ID, "report.pdf", bytes.NewReader(reportBytes), int64(len(reportBytes))); err != nil {
		t.Fatalf("attach report: %v", err)
	}

	rc, filename, err := env.svc.OpenReport(context.Background(), actorOf(owner), job.ID)
	if err != nil {
		t.Fatalf("open report: %v", err)
	}
	defer rc.Close()

	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !bytes.Equal(got, reportBytes) {
		t.Fatalf("report bytes mismatch: got %q", got)
	}
	if !strings.HasSuffix(filename, "_report.pdf") {
		t.Fatalf("unexpected download name %q", filename)
	}
}

func TestListJobsFacultyOnly(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@uni.edu", models.RoleStudent)
	faculty := env.createUser(t, "prof@uni.edu", models.RoleFaculty)
	project := env.createProject(t, owner)

	if _, err := env.svc.Submit(context.Background(), actorOf(owner), project.ID, "a.pdf", strings.NewReader("%PDF"), 4); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := env.svc.Submit(context.Background(), actorOf(owner), project.ID, "b.pdf", strings.NewReader("%PDF"), 4); err != nil {
		t.Fatalf("submit: %v", err)
	}

	_, err := env.svc.ListJobs(context.Background(), actorOf(owner))
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-faculty, got %v", err)
	}

	jobs, err := env.svc.ListJobs(context.Background(), actorOf(faculty))
	if err != nil {
		t.Fatalf("list jobs: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
}
