// pkg/models/swagger.go
package models

import (
	"time"
)

// ErrorResponse représente une réponse d'erreur standard
// @Description Réponse d'erreur standard de l'API
type ErrorResponse struct {
	Error            string            `json:"error" example:"Validation failed"`
	Message          string            `json:"message,omitempty" example:"Detailed error message"`
	ValidationErrors []ValidationError `json:"validation_errors,omitempty"`
	Timestamp        time.Time         `json:"timestamp" example:"2025-01-17T10:30:00Z"`
	Path             string            `json:"path,omitempty" example:"/api/v1/uploads"`
	RequestID        string            `json:"request_id,omitempty" example:"req-123456"`
} // @name ErrorResponse

// ValidationError représente une erreur de validation spécifique
// @Description Détail d'une erreur de validation
type ValidationError struct {
	Field   string `json:"field" example:"folder_id"`
	Value   string `json:"value" example:""`
	Message string `json:"message" example:"destination folder is required"`
	Code    string `json:"code" example:"REQUIRED"`
} // @name ValidationError

// HealthResponse représente la réponse du health check
// @Description Statut de santé du service
type HealthResponse struct {
	Status      string    `json:"status" example:"healthy" enums:"healthy,degraded,unhealthy"`
	Service     string    `json:"service" example:"lecture-sync"`
	Version     string    `json:"version" example:"1.0.0"`
	Timestamp   time.Time `json:"timestamp" example:"2025-01-17T10:30:00Z"`
	Uptime      string    `json:"uptime,omitempty" example:"24h30m15s"`
	Environment string    `json:"environment,omitempty" example:"development"`
	Polling     bool      `json:"polling" example:"true"`
} // @name HealthResponse

// UploadRequest soumet un fichier déjà présent dans la source de stockage configurée
// @Description Soumission d'un fichier depuis le stockage (filesystem, garage, minio)
type UploadRequest struct {
	SourcePath  string `json:"source_path" binding:"required" example:"lectures/week1/intro.mp3"`
	FolderID    string `json:"folder_id" example:"b1d0c6a2-4f59-4d7e-9d0b-0c5e3c1b2a99"`
	Title       string `json:"title,omitempty" example:"Week 1 intro"`
	Description string `json:"description,omitempty"`
} // @name UploadRequest

// UploadResponse représente la réponse après soumission
// @Description Job créé par la soumission
type UploadResponse struct {
	Message   string `json:"message" example:"job submitted successfully"`
	RequestID string `json:"request_id" example:"550e8400-e29b-41d4-a716-446655440001"`
	Job       *Job   `json:"job"`
} // @name UploadResponse

// TrackerResponse représente l'état d'un suivi individuel
// @Description Suivi d'un job unique
type TrackerResponse struct {
	Job       *Job      `json:"job"`
	Polling   bool      `json:"polling" example:"true"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
} // @name TrackerResponse
