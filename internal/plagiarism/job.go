package plagiarism

import "time"

type Status string

const (
	StatusQueued    Status = "queued"
	StatusCompleted Status = "completed"

	// Reserved in the schema for future automation; nothing produces them.
	StatusProcessing Status = "processing"
	StatusFailed     Status = "failed"
)

// Job ties one submitted file to one eventual report. Only two states are
// reachable: a job is created queued and an admin-uploaded report moves it to
// completed. Status, ReportPath and CompletedAt change together or not at all.
type Job struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	UserID      uint       `gorm:"not null;index" json:"user_id"`
	ProjectID   uint       `gorm:"not null;index" json:"project_id"`
	FilePath    string     `gorm:"not null" json:"file_path"`
	ReportPath  string     `json:"report_path,omitempty"`
	Status      Status     `gorm:"type:varchar(16);default:'queued';index" json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

func (Job) TableName() string { return "plagiarism_jobs" }

func (j *Job) Completed() bool { return j.Status == StatusCompleted }
