package plagiarism

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"acadflow-back/internal/models"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, job *Job) error {
	return s.db.WithContext(ctx).Create(job).Error
}

func (s *Store) Get(ctx context.Context, id uint) (*Job, error) {
	var j Job
	if err := s.db.WithContext(ctx).First(&j, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &j, nil
}

// GetForOwner returns the job only if it belongs to userID; a foreign job is
// reported as not found, same as an absent one.
func (s *Store) GetForOwner(ctx context.Context, id, userID uint) (*Job, error) {
	var j Job
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&j).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &j, nil
}

func (s *Store) List(ctx context.Context) ([]Job, error) {
	var jobs []Job
	if err := s.db.WithContext(ctx).Order("id").Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

func (s *Store) ListForOwner(ctx context.Context, userID uint) ([]Job, error) {
	var jobs []Job
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id").
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// AttachReport completes a queued job, setting report path, status and
// completion time in a single status-guarded update. The guard makes the
// queued -> completed transition one-shot: racing completions resolve to one
// winner, the loser sees ErrInvalidTransition.
func (s *Store) AttachReport(ctx context.Context, id uint, reportPath string, completedAt time.Time) error {
	res := s.db.WithContext(ctx).Model(&Job{}).
		Where("id = ? AND status = ?", id, StatusQueued).
		Updates(map[string]any{
			"status":       StatusCompleted,
			"report_path":  reportPath,
			"completed_at": completedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var j Job
		if err := s.db.WithContext(ctx).First(&j, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		return ErrInvalidTransition
	}
	return nil
}

// ProjectDirectory answers project-ownership questions for the lifecycle
// rules; the projects themselves are owned elsewhere.
type ProjectDirectory interface {
	ProjectOwner(ctx context.Context, projectID uint) (ownerID uint, found bool, err error)
}

type gormProjectDirectory struct {
	db *gorm.DB
}

func NewProjectDirectory(db *gorm.DB) ProjectDirectory {
	return &gormProjectDirectory{db: db}
}

func (d *gormProjectDirectory) ProjectOwner(ctx context.Context, projectID uint) (uint, bool, error) {
	var p models.ResearchProject
	err := d.db.WithContext(ctx).Select("id", "owner_id").First(&p, projectID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return p.OwnerID, true, nil
}
