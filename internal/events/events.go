// Package events transporte les événements du client entre composants
// (soumission réussie, transition de statut) via watermill.
package events

import (
	"time"

	"lecture-sync/pkg/models"
)

const (
	TopicJobSubmitted  = "jobs.submitted"
	TopicStatusChanged = "jobs.status_changed"
)

// JobSubmitted est publié après chaque soumission acceptée par le backend
type JobSubmitted struct {
	RequestID   string     `json:"request_id"`
	Job         models.Job `json:"job"`
	SubmittedAt time.Time  `json:"submitted_at"`
}

// StatusChanged décrit une transition observée entre deux rafraîchissements
type StatusChanged struct {
	JobID      models.JobID     `json:"job_id"`
	Title      string           `json:"title"`
	FolderID   string           `json:"folder_id"`
	From       models.JobStatus `json:"from"`
	To         models.JobStatus `json:"to"`
	Source     string           `json:"source"`
	ObservedAt time.Time        `json:"observed_at"`
}
