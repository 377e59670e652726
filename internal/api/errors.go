package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"lecture-sync/internal/client"
	"lecture-sync/internal/tracking"
	"lecture-sync/internal/upload"
	"lecture-sync/internal/validation"
	"lecture-sync/pkg/models"
	"lecture-sync/pkg/storage"
)

// statusFor classe une erreur en code HTTP pour le client du moniteur
func statusFor(err error) int {
	var vr *validation.ValidationResult
	var se *client.ServerError
	var mbe *http.MaxBytesError

	switch {
	case errors.As(err, &vr), validation.IsValidationError(err):
		return http.StatusBadRequest
	case errors.As(err, &mbe):
		return http.StatusRequestEntityTooLarge
	case client.IsNotFound(err), errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, upload.ErrSubmitInProgress):
		return http.StatusConflict
	case errors.Is(err, tracking.ErrNotActive):
		return http.StatusServiceUnavailable
	case client.IsTransport(err):
		return http.StatusBadGateway
	case errors.As(err, &se):
		// Les 4xx du backend (hors 404) restent des erreurs du demandeur
		if se.StatusCode >= 400 && se.StatusCode < 500 {
			return se.StatusCode
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func errorLabel(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "Validation failed"
	case http.StatusNotFound:
		return "Not found"
	case http.StatusConflict:
		return "Conflict"
	case http.StatusBadGateway:
		return "Backend unavailable"
	case http.StatusServiceUnavailable:
		return "Sync not active"
	default:
		return http.StatusText(status)
	}
}

// respondError écrit une models.ErrorResponse à partir d'une erreur classée
func respondError(c *gin.Context, err error) {
	status := statusFor(err)

	resp := models.ErrorResponse{
		Error:     errorLabel(status),
		Message:   err.Error(),
		Timestamp: time.Now().UTC(),
		Path:      c.Request.URL.Path,
		RequestID: requestID(c),
	}

	var vr *validation.ValidationResult
	if errors.As(err, &vr) {
		for _, ve := range vr.Errors {
			resp.ValidationErrors = append(resp.ValidationErrors, models.ValidationError{
				Field:   ve.Field,
				Value:   ve.Value,
				Message: ve.Message,
				Code:    ve.Code,
			})
		}
	}

	c.JSON(status, resp)
}
