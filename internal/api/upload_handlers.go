package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"lecture-sync/internal/jobs"
	"lecture-sync/internal/storage"
	"lecture-sync/internal/tracking"
	"lecture-sync/internal/upload"
	"lecture-sync/internal/validation"
	"lecture-sync/pkg/models"
)

type UploadHandlers struct {
	service     jobs.JobService
	aggregate   *tracking.Aggregate
	sources     *storage.SourceService
	validator   *validation.APIValidator
	onSubmitted func(ctx context.Context, s upload.Submission)
	logger      logr.Logger
}

func NewUploadHandlers(deps Dependencies) *UploadHandlers {
	return &UploadHandlers{
		service:     deps.Service,
		aggregate:   deps.Aggregate,
		sources:     deps.Sources,
		validator:   deps.Validator,
		onSubmitted: deps.OnSubmitted,
		logger:      deps.Logger,
	}
}

// Upload godoc
// @Summary Soumettre un fichier média
// @Description Multipart (file, folder_id, title, description) ou JSON référençant un
// @Description fichier du storage configuré. Le fichier doit être audio/* ou video/mp4.
// @Tags Uploads
// @Accept multipart/form-data
// @Accept json
// @Produce json
// @Param file formData file false "Fichier média"
// @Param folder_id formData string false "Dossier de destination"
// @Param request body models.UploadRequest false "Soumission depuis le storage"
// @Success 201 {object} models.UploadResponse
// @Failure 400 {object} models.ErrorResponse "Erreur de validation"
// @Failure 404 {object} models.ErrorResponse "Dossier ou fichier source introuvable"
// @Failure 502 {object} models.ErrorResponse "Backend indisponible"
// @Router /uploads [post]
func (h *UploadHandlers) Upload(c *gin.Context) {
	var (
		file   upload.File
		form   models.UploadRequest
		staged string
		err    error
	)

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		file, form, staged, err = h.fromMultipart(c)
	} else {
		file, form, err = h.fromStorage(c)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	pipeline := upload.NewPipeline(h.service,
		upload.WithLogger(h.logger),
		upload.WithValidator(h.validator.Service()),
	)

	var submission upload.Submission
	pipeline.OnSuccess(func(ctx context.Context, s upload.Submission) {
		submission = s
	})
	pipeline.OnSuccess(h.notify)

	if err := pipeline.SelectFile(file); err != nil {
		respondError(c, err)
		return
	}
	pipeline.SetFolder(form.FolderID)
	pipeline.SetTitle(form.Title)
	pipeline.SetDescription(form.Description)

	job, err := pipeline.Submit(c.Request.Context())
	if err != nil {
		if staged != "" {
			err = fmt.Errorf("%w (file kept at %s)", err, staged)
		}
		respondError(c, err)
		return
	}

	if staged != "" {
		if err := h.sources.RemoveStaged(c.Request.Context(), staged); err != nil {
			h.logger.Error(err, "UploadHandlers.Upload: failed to remove staged copy", "path", staged)
		}
	}

	c.JSON(http.StatusCreated, models.UploadResponse{
		Message:   "job submitted successfully",
		RequestID: submission.RequestID,
		Job:       job,
	})
}

// notify déclenche le rafraîchissement de la collection après une soumission
func (h *UploadHandlers) notify(ctx context.Context, s upload.Submission) {
	if h.onSubmitted != nil {
		h.onSubmitted(ctx, s)
		return
	}
	if err := h.aggregate.Refresh(ctx); err != nil && !errors.Is(err, tracking.ErrNotActive) {
		h.logger.Error(err, "UploadHandlers: refresh after submission failed", "job_id", s.Job.ID)
	}
}

// fromMultipart lit le fichier du formulaire ; avec un storage configuré, une
// copie est déposée sous uploads/ et sert de source à la soumission.
func (h *UploadHandlers) fromMultipart(c *gin.Context) (upload.File, models.UploadRequest, string, error) {
	form := models.UploadRequest{
		FolderID:    c.PostForm("folder_id"),
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
	}

	header, err := c.FormFile("file")
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return upload.File{}, form, "", err
		}
		result := validation.NewResult()
		result.AddError("file", "", "a media file is required", "REQUIRED")
		return upload.File{}, form, "", result.Err()
	}

	name := h.validator.SanitizeFilename(header.Filename)
	contentType := header.Header.Get("Content-Type")

	if h.sources == nil {
		return upload.NewFile(name, contentType, header.Size, func() (io.ReadCloser, error) {
			return header.Open()
		}), form, "", nil
	}

	src, err := header.Open()
	if err != nil {
		return upload.File{}, form, "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	ctx := c.Request.Context()
	staged, err := h.sources.StageUpload(ctx, uuid.New(), name, src)
	if err != nil {
		return upload.File{}, form, "", err
	}

	file, err := h.sources.OpenSource(ctx, staged)
	if err != nil {
		return upload.File{}, form, "", err
	}
	// Le type déclaré par le client prime sur celui déduit de l'extension
	if contentType != "" {
		file.ContentType = contentType
	}
	return file, form, staged, nil
}

// fromStorage résout un models.UploadRequest vers un fichier du storage configuré
func (h *UploadHandlers) fromStorage(c *gin.Context) (upload.File, models.UploadRequest, error) {
	var req models.UploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		result := validation.NewResult()
		result.AddError("body", "", "invalid JSON body: "+err.Error(), "INVALID_JSON")
		return upload.File{}, req, result.Err()
	}

	if err := h.validator.ValidateUploadRequest(&req).Err(); err != nil {
		return upload.File{}, req, err
	}

	if h.sources == nil {
		result := validation.NewResult()
		result.AddError("source_path", req.SourcePath, "no storage source is configured", "NO_SOURCE")
		return upload.File{}, req, result.Err()
	}

	file, err := h.sources.OpenSource(c.Request.Context(), req.SourcePath)
	if err != nil {
		return upload.File{}, req, err
	}
	return file, req, nil
}

// ListSources godoc
// @Summary Lister les fichiers du storage source
// @Tags Uploads
// @Produce json
// @Param prefix query string false "Préfixe"
// @Success 200 {array} storage.ObjectInfo
// @Router /sources [get]
func (h *UploadHandlers) ListSources(c *gin.Context) {
	prefix := c.Query("prefix")
	if prefix != "" {
		if err := storage.ValidatePath(prefix); err != nil {
			result := validation.NewResult()
			result.AddError("prefix", prefix, err.Error(), "INVALID_PATH")
			respondError(c, result.Err())
			return
		}
	}

	infos, err := h.sources.ListSources(c.Request.Context(), prefix)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sources": infos, "count": len(infos)})
}
