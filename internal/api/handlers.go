package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-logr/logr"

	"lecture-sync/internal/client"
	"lecture-sync/internal/jobs"
	"lecture-sync/internal/tracking"
	"lecture-sync/internal/validation"
	"lecture-sync/pkg/models"
)

const serviceVersion = "1.0.0"

type Handlers struct {
	service     jobs.Service
	aggregate   *tracking.Aggregate
	registry    *tracking.Registry
	validator   *validation.APIValidator
	logger      logr.Logger
	environment string
	startedAt   time.Time
}

func NewHandlers(deps Dependencies) *Handlers {
	return &Handlers{
		service:     deps.Service,
		aggregate:   deps.Aggregate,
		registry:    deps.Registry,
		validator:   deps.Validator,
		logger:      deps.Logger,
		environment: deps.Environment,
		startedAt:   time.Now(),
	}
}

// Health godoc
// @Summary Health check
// @Description Statut du moniteur et de la synchronisation agrégée
// @Tags Health
// @Produce json
// @Success 200 {object} models.HealthResponse
// @Router /health [get]
func (h *Handlers) Health(c *gin.Context) {
	snap := h.aggregate.Snapshot()

	status := "healthy"
	switch {
	case !snap.Active:
		status = "unhealthy"
	case snap.LastError != "":
		status = "degraded"
	}

	c.JSON(http.StatusOK, models.HealthResponse{
		Status:      status,
		Service:     "lecture-sync",
		Version:     serviceVersion,
		Timestamp:   time.Now().UTC(),
		Uptime:      time.Since(h.startedAt).Round(time.Second).String(),
		Environment: h.environment,
		Polling:     snap.Polling,
	})
}

// ListJobs godoc
// @Summary Lister les jobs
// @Description Vue de la collection synchronisée, filtrée localement par dossier
// @Tags Jobs
// @Produce json
// @Param folder_id query string false "Dossier"
// @Success 200 {object} models.JobListResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /jobs [get]
func (h *Handlers) ListJobs(c *gin.Context) {
	var snap tracking.AggregateSnapshot
	if folderID := c.Query("folder_id"); folderID != "" {
		snap = h.aggregate.View(folderID)
	} else {
		snap = h.aggregate.Snapshot()
	}

	if snap.LastError != "" {
		c.Header("X-Sync-Error", snap.LastError)
	}
	c.JSON(http.StatusOK, models.JobListResponse{
		Jobs:  snap.Jobs,
		Count: len(snap.Jobs),
		Stats: &snap.Stats,
	})
}

// SearchJobs godoc
// @Summary Rechercher des jobs
// @Description Chaque terme doit apparaître dans le titre, la transcription ou les notes
// @Tags Jobs
// @Produce json
// @Param q query string false "Termes recherchés"
// @Success 200 {object} models.JobListResponse
// @Router /jobs/search [get]
func (h *Handlers) SearchJobs(c *gin.Context) {
	found := h.aggregate.Search(c.Query("q"))
	c.JSON(http.StatusOK, models.JobListResponse{Jobs: found, Count: len(found)})
}

// Stats godoc
// @Summary Statistiques
// @Tags Jobs
// @Produce json
// @Param folder_id query string false "Dossier"
// @Success 200 {object} models.JobStats
// @Router /stats [get]
func (h *Handlers) Stats(c *gin.Context) {
	var snap tracking.AggregateSnapshot
	if folderID := c.Query("folder_id"); folderID != "" {
		snap = h.aggregate.View(folderID)
	} else {
		snap = h.aggregate.Snapshot()
	}

	c.JSON(http.StatusOK, gin.H{
		"folder_id":          snap.FolderID,
		"stats":              snap.Stats,
		"total_duration_fmt": models.FormatDuration(snap.Stats.TotalDuration),
		"average_length_fmt": models.FormatDuration(float64(snap.Stats.AverageDuration)),
		"last_refresh":       snap.LastRefresh,
		"polling":            snap.Polling,
	})
}

// RefreshJobs godoc
// @Summary Rafraîchir la collection
// @Tags Jobs
// @Produce json
// @Success 200 {object} models.JobListResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /jobs/refresh [post]
func (h *Handlers) RefreshJobs(c *gin.Context) {
	if err := h.aggregate.Refresh(c.Request.Context()); err != nil {
		h.logger.Error(err, "Handlers.RefreshJobs: refresh failed")
		respondError(c, err)
		return
	}

	snap := h.aggregate.Snapshot()
	c.JSON(http.StatusOK, models.JobListResponse{Jobs: snap.Jobs, Count: len(snap.Jobs), Stats: &snap.Stats})
}

// GetJob godoc
// @Summary Suivre un job
// @Description Ouvre (ou réutilise) un suivi individuel et retourne le dernier état connu
// @Tags Jobs
// @Produce json
// @Param id path string true "ID du job"
// @Success 200 {object} models.TrackerResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /jobs/{id} [get]
func (h *Handlers) GetJob(c *gin.Context) {
	id := c.MustGet("validated_job_id").(models.JobID)

	initial, _ := h.aggregate.Job(id)
	tracker, err := h.registry.Open(c.Request.Context(), id, initial)
	snap := tracker.Snapshot()

	switch {
	case snap.Gone:
		if snap.Err == nil {
			snap.Err = &client.NotFoundError{Resource: "job", ID: id.String()}
		}
		respondError(c, snap.Err)
		return
	case snap.Job == nil:
		if err == nil {
			err = tracking.ErrNotActive
		}
		respondError(c, err)
		return
	}

	resp := models.TrackerResponse{
		Job:       snap.Job,
		Polling:   snap.Polling,
		Error:     snap.LastError,
		UpdatedAt: snap.UpdatedAt,
	}
	c.JSON(http.StatusOK, resp)
}

// UnwatchJob godoc
// @Summary Arrêter le suivi d'un job
// @Tags Jobs
// @Param id path string true "ID du job"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /jobs/{id}/watch [delete]
func (h *Handlers) UnwatchJob(c *gin.Context) {
	id := c.MustGet("validated_job_id").(models.JobID)

	if !h.registry.Close(id) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:     "Not found",
			Message:   "job is not being watched",
			Timestamp: time.Now().UTC(),
			Path:      c.Request.URL.Path,
			RequestID: requestID(c),
		})
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteJob godoc
// @Summary Supprimer un job
// @Tags Jobs
// @Param id path string true "ID du job"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /jobs/{id} [delete]
func (h *Handlers) DeleteJob(c *gin.Context) {
	id := c.MustGet("validated_job_id").(models.JobID)

	if err := h.service.DeleteJob(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	h.registry.Close(id)
	if err := h.aggregate.Refresh(c.Request.Context()); err != nil {
		h.logger.Error(err, "Handlers.DeleteJob: refresh after delete failed", "id", id)
	}
	c.Status(http.StatusNoContent)
}

// ListTrackers godoc
// @Summary Lister les suivis individuels ouverts
// @Tags Jobs
// @Produce json
// @Router /trackers [get]
func (h *Handlers) ListTrackers(c *gin.Context) {
	snaps := h.registry.Snapshots()
	c.JSON(http.StatusOK, gin.H{"trackers": snaps, "count": len(snaps)})
}
