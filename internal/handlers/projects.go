package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"acadflow-back/internal/models"
)

type CreateProjectRequest struct {
	Title      string `json:"title" binding:"required"`
	Abstract   string `json:"abstract" binding:"required"`
	Domain     string `json:"domain" binding:"required"`
	Visibility string `json:"visibility"`
}

type InviteMemberRequest struct {
	ProjectID uint   `json:"project_id" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
}

type RespondInviteRequest struct {
	ProjectID uint  `json:"project_id" binding:"required"`
	Accept    *bool `json:"accept" binding:"required"`
}

type ProjectMemberResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func CreateProject(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c, db)
		if !ok {
			return
		}

		var req CreateProjectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.Visibility == "" {
			req.Visibility = "private"
		}

		project := models.ResearchProject{
			Title:      req.Title,
			Abstract:   req.Abstract,
			Domain:     req.Domain,
			Visibility: req.Visibility,
			OwnerID:    user.ID,
		}
		if err := db.Create(&project).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
			return
		}

		// The owner joins their own project as an accepted member.
		owner := models.ProjectMember{
			ProjectID:  project.ID,
			UserID:     user.ID,
			Role:       "owner",
			IsAccepted: true,
		}
		if err := db.Create(&owner).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add owner as member"})
			return
		}

		c.JSON(http.StatusOK, project)
	}
}

func GetMyProjects(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c, db)
		if !ok {
			return
		}

		var projects []models.ResearchProject
		if err := db.Where("owner_id = ?", user.ID).Find(&projects).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch projects"})
			return
		}
		c.JSON(http.StatusOK, projects)
	}
}

func GetPublicProjects(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var projects []models.ResearchProject
		if err := db.Where("visibility = ?", "public").Find(&projects).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch projects"})
			return
		}
		c.JSON(http.StatusOK, projects)
	}
}

func InviteMember(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c, db)
		if !ok {
			return
		}

		var req InviteMemberRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var project models.ResearchProject
		if err := db.First(&project, req.ProjectID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
			return
		}
		if project.OwnerID != user.ID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only owner can invite"})
			return
		}

		var invitee models.User
		if err := db.Where("email = ?", req.Email).First(&invitee).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		var existing models.ProjectMember
		err := db.Where("project_id = ? AND user_id = ?", project.ID, invitee.ID).
			First(&existing).Error
		if err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "User already invited or member"})
			return
		}

		invitation := models.ProjectMember{
			ProjectID:  project.ID,
			UserID:     invitee.ID,
			Role:       "co-author",
			IsAccepted: false,
		}
		if err := db.Create(&invitation).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create invitation"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Invitation sent"})
	}
}

func RespondInvite(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c, db)
		if !ok {
			return
		}

		var req RespondInviteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var membership models.ProjectMember
		err := db.Where("project_id = ? AND user_id = ?", req.ProjectID, user.ID).
			First(&membership).Error
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Invitation not found"})
			return
		}

		if *req.Accept {
			membership.IsAccepted = true
			if err := db.Save(&membership).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to accept invitation"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"message": "Invitation accepted"})
			return
		}

		if err := db.Delete(&membership).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reject invitation"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Invitation rejected"})
	}
}

func GetProjectMembers(db *gorm.DB) gin.HandlerFunc {
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

		// Only accepted members can view the member list.
		var membership models.ProjectMember
		err = db.Where("project_id = ? AND user_id = ? AND is_accepted = ?", project.ID, user.ID, true).
			First(&membership).Error
		if err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}

		var members []models.ProjectMember
		err = db.Preload("User").
			Where("project_id = ? AND is_accepted = ?", project.ID, true).
			Find(&members).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch members"})
			return
		}

		resp := make([]ProjectMemberResponse, 0, len(members))
		for _, m := range members {
			resp = append(resp, ProjectMemberResponse{
				ID:    m.User.ID,
				Name:  m.User.Name,
				Email: m.User.Email,
				Role:  m.Role,
			})
		}
		c.JSON(http.StatusOK, resp)
	}
}

type UpdateVisibilityRequest struct {
	Visibility string `json:"visibility" binding:"required"`
}

func UpdateProjectVisibility(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c, db)
		if !ok {
			return
		}

		var req UpdateVisibilityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.Visibility != "public" && req.Visibility != "private" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid visibility"})
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
		if project.OwnerID != user.ID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only owner can change visibility"})
			return
		}

		project.Visibility = req.Visibility
		if err := db.Save(&project).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update visibility"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Project set to " + req.Visibility})
	}
}
