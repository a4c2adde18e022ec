package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"acadflow-back/internal/config"
	"acadflow-back/internal/database"
	"acadflow-back/internal/handlers"
	"acadflow-back/internal/middleware"
	"acadflow-back/internal/plagiarism"
	"acadflow-back/internal/storage"
)

func newStorage(cfg config.Config) (storage.Storage, error) {
	if cfg.StorageBackend == "minio" {
		return storage.NewMinIO(cfg)
	}
	return storage.NewLocal(cfg.UploadDir)
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := database.MigrateDB(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	files, err := newStorage(cfg)
	if err != nil {
		log.Fatal("Failed to initialize storage:", err)
	}

	plagiarismSvc := plagiarism.NewService(
		plagiarism.NewStore(db),
		files,
		plagiarism.NewProjectDirectory(db),
	)

	r := gin.Default()
	r.Use(middleware.CORSMiddleware())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "AcadFlow backend running"})
	})

	// Public routes
	r.POST("/signup", handlers.Signup(db))
	r.POST("/login", handlers.Login(db, cfg))
	r.GET("/projects/public", handlers.GetPublicProjects(db))

	// Protected routes
	protected := r.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		protected.GET("/me", handlers.Me(db))
		protected.PUT("/users/:id/role", handlers.UpdateUserRole(db))

		protected.POST("/projects", handlers.CreateProject(db))
		protected.GET("/projects", handlers.GetMyProjects(db))
		protected.POST("/projects/invite", handlers.InviteMember(db))
		protected.POST("/projects/respond", handlers.RespondInvite(db))
		protected.GET("/projects/:id/members", handlers.GetProjectMembers(db))
		protected.PUT("/projects/:id/visibility", handlers.UpdateProjectVisibility(db))
		protected.GET("/projects/:id/drafts", handlers.GetProjectDrafts(db))
		protected.GET("/projects/:id/reviews", handlers.GetProjectReviews(db))

		protected.POST("/drafts", handlers.CreateDraft(db))
		protected.POST("/reviews", handlers.SubmitReview(db))
		protected.POST("/assign-reviewer", handlers.AssignReviewer(db))

		protected.POST("/plagiarism/upload", handlers.UploadSubmission(db, plagiarismSvc))
		protected.GET("/plagiarism/:job_id/status", handlers.PlagiarismStatus(db, plagiarismSvc))
		protected.GET("/plagiarism/:job_id/report", handlers.DownloadReport(db, plagiarismSvc))

		protected.GET("/admin/plagiarism/jobs", handlers.ListPlagiarismJobs(db, plagiarismSvc))
		protected.POST("/admin/plagiarism/:job_id/upload-report", handlers.UploadReport(db, plagiarismSvc))
	}

	log.Printf("Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
