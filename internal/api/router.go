package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/go-logr/logr"

	"lecture-sync/internal/jobs"
	"lecture-sync/internal/storage"
	"lecture-sync/internal/tracking"
	"lecture-sync/internal/upload"
	"lecture-sync/internal/validation"
)

// Dependencies regroupe les composants exposés par le moniteur
type Dependencies struct {
	Service   jobs.Service
	Aggregate *tracking.Aggregate
	Registry  *tracking.Registry
	// Sources est optionnel : sans storage, seuls les uploads multipart sont acceptés
	Sources   *storage.SourceService
	Validator *validation.APIValidator
	// OnSubmitted remplace le rafraîchissement direct de l'Aggregate après une
	// soumission (publication sur le bus d'événements)
	OnSubmitted    func(ctx context.Context, s upload.Submission)
	Logger         logr.Logger
	Environment    string
	MaxUploadBytes int64
}

func SetupRouter(deps Dependencies) *gin.Engine {
	if deps.Validator == nil {
		deps.Validator = validation.NewAPIValidator(nil)
	}
	if deps.Logger.GetSink() == nil {
		deps.Logger = logr.Discard()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(deps.Logger))
	r.Use(ValidationErrorLogger())
	r.Use(SecurityHeadersMiddleware())
	r.Use(CORS(deps.Environment))
	r.Use(validation.Middleware(deps.Validator))

	handlers := NewHandlers(deps)
	uploads := NewUploadHandlers(deps)
	folders := NewFolderHandlers(deps.Service)

	r.GET("/health", handlers.Health)

	if deps.Environment == "development" || deps.Environment == "test" {
		SetupSwagger(r, deps.Environment)
	}

	uploadLimit := deps.MaxUploadBytes
	if uploadLimit <= 0 {
		uploadLimit = deps.Validator.Service().Config().MaxFileSize
	}

	jobID := validation.ValidateRequest(validation.ValidateJobIDParam("id"))

	api := r.Group("/api/v1")
	{
		api.GET("/jobs", validation.ValidateRequest(validation.ValidateOptionalFolderIDQuery("folder_id")), handlers.ListJobs)
		api.GET("/jobs/search", validation.ValidateRequest(validation.ValidateSearchQuery("q")), handlers.SearchJobs)
		api.POST("/jobs/refresh", handlers.RefreshJobs)
		api.GET("/jobs/:id", jobID, handlers.GetJob)
		api.DELETE("/jobs/:id", jobID, handlers.DeleteJob)
		api.DELETE("/jobs/:id/watch", jobID, handlers.UnwatchJob)
		api.GET("/stats", validation.ValidateRequest(validation.ValidateOptionalFolderIDQuery("folder_id")), handlers.Stats)
		api.GET("/trackers", handlers.ListTrackers)

		// Marge de 1MB pour l'enveloppe multipart
		api.POST("/uploads", RateLimitMiddleware(30), BodyLimit(uploadLimit+1<<20), uploads.Upload)
		if deps.Sources != nil {
			api.GET("/sources", uploads.ListSources)
		}

		folderID := validation.ValidateRequest(validation.ValidateFolderIDParam("id"))
		api.GET("/folders", folders.ListFolders)
		api.POST("/folders", folders.CreateFolder)
		api.GET("/folders/:id", folderID, folders.GetFolder)
		api.PUT("/folders/:id", folderID, folders.UpdateFolder)
		api.DELETE("/folders/:id", folderID, folders.DeleteFolder)
	}

	return r
}
