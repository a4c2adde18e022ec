package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"acadflow-back/internal/plagiarism"
)

func actorFor(c *gin.Context, db *gorm.DB) (plagiarism.Actor, bool) {
	user, ok := currentUser(c, db)
	if !ok {
		return plagiarism.Actor{}, false
	}
	return plagiarism.Actor{UserID: user.ID, Role: user.Role}, true
}

// plagiarismError maps the lifecycle error taxonomy onto HTTP statuses.
func plagiarismError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, plagiarism.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, plagiarism.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, plagiarism.ErrUnsupportedFileType):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, plagiarism.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, plagiarism.ErrStorageWriteFailure):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
	case errors.Is(err, plagiarism.ErrStorageInconsistency):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Report file missing"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}

// UploadSubmission creates a queued plagiarism job from an uploaded file.
// POST /plagiarism/upload (multipart: project_id, file)
func UploadSubmission(db *gorm.DB, svc *plagiarism.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFor(c, db)
		if !ok {
			return
		}

		projectIDStr := c.PostForm("project_id")
		if projectIDStr == "" {
			projectIDStr = c.Query("project_id")
		}
		projectID, err := strconv.ParseUint(projectIDStr, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project id"})
			return
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload"})
			return
		}
		defer file.Close()

		job, err := svc.Submit(c.Request.Context(), actor, uint(projectID), fileHeader.Filename, file, fileHeader.Size)
		if err != nil {
			plagiarismError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"job_id":  job.ID,
			"status":  job.Status,
			"eta":     "6 hours",
			"message": "File uploaded successfully",
		})
	}
}

// ListPlagiarismJobs lists every job. Faculty only.
// GET /admin/plagiarism/jobs
func ListPlagiarismJobs(db *gorm.DB, svc *plagiarism.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFor(c, db)
		if !ok {
			return
		}

		jobs, err := svc.ListJobs(c.Request.Context(), actor)
		if err != nil {
			plagiarismError(c, err)
			return
		}
		c.JSON(http.StatusOK, jobs)
	}
}

// UploadReport attaches a report to a queued job and completes it.
// POST /admin/plagiarism/:job_id/upload-report (multipart: report)
func UploadReport(db *gorm.DB, svc *plagiarism.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFor(c, db)
		if !ok {
			return
		}

		jobID, err := strconv.ParseUint(c.Param("job_id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid job id"})
			return
		}

		fileHeader, err := c.FormFile("report")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No report provided"})
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload"})
			return
		}
		defer file.Close()

		_, err = svc.AttachReport(c.Request.Context(), actor, uint(jobID), fileHeader.Filename, file, fileHeader.Size)
		if err != nil {
			plagiarismError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Report uploaded successfully"})
	}
}

// PlagiarismStatus reports job status to the job's owner.
// GET /plagiarism/:job_id/status
func PlagiarismStatus(db *gorm.DB, svc *plagiarism.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFor(c, db)
		if !ok {
			return
		}

		jobID, err := strconv.ParseUint(c.Param("job_id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid job id"})
			return
		}

		job, err := svc.Status(c.Request.Context(), actor, uint(jobID))
		if err != nil {
			plagiarismError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"job_id":       job.ID,
			"status":       job.Status,
			"completed_at": job.CompletedAt,
		})
	}
}

// DownloadReport streams the completed job's report to its owner.
// GET /plagiarism/:job_id/report
func DownloadReport(db *gorm.DB, svc *plagiarism.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFor(c, db)
		if !ok {
			return
		}

		jobID, err := strconv.ParseUint(c.Param("job_id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid job id"})
			return
		}

		rc, filename, err := svc.OpenReport(c.Request.Context(), actor, uint(jobID))
		if err != nil {
			plagiarismError(c, err)
			return
		}
		defer rc.Close()

		c.Header("Content-Disposition", "attachment; filename="+strconv.Quote(filename))
		c.DataFromReader(http.StatusOK, -1, "application/pdf", rc, nil)
	}
}
