package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"acadflow-back/internal/models"
)

type CreateDraftRequest struct {
	ProjectID uint   `json:"project_id" binding:"required"`
	Content   string `json:"content" binding:"required"`
}

func CreateDraft(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c, db)
		if !ok {
			return
		}

		var req CreateDraftRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var project models.ResearchProject
		if err := db.First(&project, req.ProjectID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
			return
		}

		var membership models.ProjectMember
		err := db.Where("project_id = ? AND user_id = ? AND is_accepted = ?", project.ID, user.ID, true).
			First(&membership).Error
		if err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not a project member"})
			return
		}

		// Versions are per-project and monotonically increasing.
		var lastVersion int
		db.Model(&models.PaperDraft{}).
			Where("project_id = ?", project.ID).
			Select("COALESCE(MAX(version), 0)").
			Scan(&lastVersion)

		draft := models.PaperDraft{
			ProjectID: project.ID,
			CreatedBy: user.ID,
			Version:   lastVersion + 1,
			Content:   req.Content,
		}
		if err := db.Create(&draft).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create draft"})
			return
		}

		c.JSON(http.StatusOK, draft)
	}
}

func GetProjectDrafts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c, db)
		if !ok {
			return
		}

		projectID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project id"})
			return
		}

		var membership models.ProjectMember
		err = db.Where("project_id = ? AND user_id = ? AND is_accepted = ?", projectID, user.ID, true).
			First(&membership).Error
		if err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}

		var drafts []models.PaperDraft
		err = db.Where("project_id = ?", projectID).
			Order("version").
			Find(&drafts).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch drafts"})
			return
		}

		c.JSON(http.StatusOK, drafts)
	}
}
