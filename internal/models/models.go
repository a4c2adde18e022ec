package models

import (
	"time"
)

type Role string

const (
	RoleStudent  Role = "student"
	RoleReviewer Role = "reviewer"
	RoleFaculty  Role = "faculty"
)

func ValidRole(r string) bool {
	switch Role(r) {
	case RoleStudent, RoleReviewer, RoleFaculty:
		return true
	}
	return false
}

type User struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	Name           string    `gorm:"not null" json:"name"`
	Email          string    `gorm:"unique;not null" json:"email"`
	HashedPassword string    `gorm:"not null" json:"-"`
	Role           Role      `gorm:"type:varchar(16);default:'student'" json:"role"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type ResearchProject struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	Title      string    `gorm:"not null" json:"title"`
	Abstract   string    `gorm:"type:text;not null" json:"abstract"`
	Domain     string    `gorm:"not null" json:"domain"`
	Visibility string    `gorm:"default:'private'" json:"visibility"` // public, private
	OwnerID    uint      `gorm:"not null;index" json:"owner_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Owner User `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
}

type ProjectMember struct {
	ID         uint   `gorm:"primarykey" json:"id"`
	ProjectID  uint   `gorm:"not null;index" json:"project_id"`
	UserID     uint   `gorm:"not null;index" json:"user_id"`
	Role       string `gorm:"default:'co-author'" json:"role"` // owner, co-author
	IsAccepted bool   `gorm:"default:false" json:"is_accepted"`

	User    User            `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Project ResearchProject `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
}

type PaperDraft struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	ProjectID uint      `gorm:"not null;index" json:"project_id"`
	CreatedBy uint      `gorm:"not null" json:"created_by"`
	Version   int       `gorm:"not null" json:"version"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type Review struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	ProjectID  uint      `gorm:"not null;index" json:"project_id"`
	ReviewerID uint      `gorm:"not null" json:"reviewer_id"`
	Score      int       `gorm:"not null" json:"score"`
	Comments   string    `gorm:"type:text;not null" json:"comments"`
	CreatedAt  time.Time `json:"created_at"`
}

type ReviewAssignment struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	ProjectID  uint      `gorm:"not null;index" json:"project_id"`
	ReviewerID uint      `gorm:"not null" json:"reviewer_id"`
	AssignedBy uint      `gorm:"not null" json:"assigned_by"`
	AssignedAt time.Time `gorm:"autoCreateTime" json:"assigned_at"`
}
