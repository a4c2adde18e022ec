package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"acadflow-back/internal/models"
)

type CreateReviewRequest struct {
	ProjectID uint   `json:"project_id" binding:"required"`
	Score     int    `json:"score" binding:"required,min=1,max=10"`
	Comments  string `json:"comments" binding:"required"`
}

type AssignReviewerRequest struct {
	ProjectID     uint   `json:"project_id" binding:"required"`
	ReviewerEmail string `json:"reviewer_email" binding:"required,email"`
}

func SubmitReview(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c, db)
		if !ok {
			return
		}
		if user.Role != models.RoleReviewer && user.Role != models.RoleFaculty {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only reviewers or faculty can submit reviews"})
			return
		}

		var req CreateReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		// Only public projects are open for review.
		var project models.ResearchProject
		err := db.Where("id = ? AND visibility = ?", req.ProjectID, "public").
			First(&project).Error
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found or not open for review"})
			return
		}

		var existing models.Review
		err = db.Where("project_id = ? AND reviewer_id = ?", project.ID, user.ID).
			First(&existing).Error
		if err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "You have already reviewed this project"})
			return
		}

		review := models.Review{
			ProjectID:  project.ID,
			ReviewerID: user.ID,
			Score:      req.Score,
			Comments:   req.Comments,
		}
		if err := db.Create(&review).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create review"})
			return
		}

		c.JSON(http.StatusOK, review)
	}
}

func GetProjectReviews(db *gorm.DB) gin.HandlerFunc {
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

		var project models.ResearchProject
		if err := db.First(&project, projectID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
			return
		}

		if project.OwnerID != user.ID && user.Role != models.RoleFaculty {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}

		var reviews []models.Review
		if err := db.Where("project_id = ?", project.ID).Find(&reviews).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reviews"})
			return
		}

		c.JSON(http.StatusOK, reviews)
	}
}

func AssignReviewer(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		editor, ok := currentUser(c, db)
		if !ok {
			return
		}
		if editor.Role != models.RoleFaculty {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only faculty can assign reviewers"})
			return
		}

		var req AssignReviewerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var reviewer models.User
		err := db.Where("email = ?", req.ReviewerEmail).First(&reviewer).Error
		if err != nil || reviewer.Role != models.RoleReviewer {
			c.JSON(http.StatusNotFound, gin.H{"error": "Reviewer not found or not a reviewer"})
			return
		}

		var project models.ResearchProject
		if err := db.First(&project, req.ProjectID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
			return
		}

		var existing models.ReviewAssignment
		err = db.Where("project_id = ? AND reviewer_id = ?", project.ID, reviewer.ID).
			First(&existing).Error
		if err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Reviewer already assigned"})
			return
		}

		assignment := models.ReviewAssignment{
			ProjectID:  project.ID,
			ReviewerID: reviewer.ID,
			AssignedBy: editor.ID,
		}
		if err := db.Create(&assignment).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create assignment"})
			return
		}

		c.JSON(http.StatusOK, assignment)
	}
}
