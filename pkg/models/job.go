package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type JobStatus string

const (
	StatusPending         JobStatus = "pending"
	StatusTranscribing    JobStatus = "transcribing"
	StatusGeneratingNotes JobStatus = "generating_notes"
	StatusCompleted       JobStatus = "completed"
	StatusFailed          JobStatus = "failed"
)

// KnownStatuses liste les statuts dans l'ordre du pipeline
var KnownStatuses = []JobStatus{
	StatusPending,
	StatusTranscribing,
	StatusGeneratingNotes,
	StatusCompleted,
	StatusFailed,
}

// IsTerminal retourne true si le statut est final (completed ou failed).
// Un statut inconnu n'est jamais terminal : on continue de poller.
func (s JobStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// IsKnown retourne true si le statut fait partie des cinq valeurs du contrat
func (s JobStatus) IsKnown() bool {
	for _, known := range KnownStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsProcessing retourne true si le backend travaille activement sur le job
func (s JobStatus) IsProcessing() bool {
	return s == StatusTranscribing || s == StatusGeneratingNotes
}

// Rank donne la position du statut le long de la chaîne
// pending → transcribing → generating_notes → completed. failed et les statuts
// inconnus retournent -1.
func (s JobStatus) Rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusTranscribing:
		return 1
	case StatusGeneratingNotes:
		return 2
	case StatusCompleted:
		return 3
	default:
		return -1
	}
}

// CanAdvanceTo indique si next peut succéder à s : un statut terminal ne
// change plus et la chaîne pending → completed ne recule pas. Les statuts
// inconnus sont acceptés.
func (s JobStatus) CanAdvanceTo(next JobStatus) bool {
	switch {
	case s == next:
		return true
	case s.IsTerminal():
		return false
	case !s.IsKnown() || !next.IsKnown():
		return true
	case next == StatusFailed:
		return true
	default:
		return next.Rank() > s.Rank()
	}
}

// JobID est l'identifiant opaque d'un job. Le backend l'émet sous forme de
// chaîne (uuid) mais certains clients l'ont typé en nombre : les deux sont acceptés.
type JobID string

func (id *JobID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = JobID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("cannot decode job id %s: %w", string(data), err)
	}
	*id = JobID(n.String())
	return nil
}

func (id JobID) String() string {
	return string(id)
}

// timestampLayouts couvre les formats renvoyés par le backend (datetime Python
// sans fuseau, avec ou sans microsecondes) en plus de RFC3339.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
}

// Timestamp est un time.Time tolérant aux formats ISO-8601 naïfs
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unsupported timestamp format: %q", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

// Job est un fichier média soumis au pipeline de traitement (une "lecture")
// @Description Job de transcription et de génération de notes
type Job struct {
	ID          JobID     `json:"id" swaggertype:"string" example:"3f6c1c8e-8a4b-4c0e-9a51-2d7f0b1e4a10"`
	Title       string    `json:"title" example:"Lecture 1 intro"`
	Description string    `json:"description,omitempty"`
	Status      JobStatus `json:"status" example:"transcribing" enums:"pending,transcribing,generating_notes,completed,failed"`
	CreatedAt   Timestamp `json:"created_at" swaggertype:"string" example:"2025-01-17T10:30:00Z"`
	Duration    float64   `json:"duration" example:"3540.5"`
	Transcript  *string   `json:"transcript,omitempty"`
	Notes       *string   `json:"notes,omitempty"`
	FolderID    string    `json:"folder_id" example:"b1d0c6a2-4f59-4d7e-9d0b-0c5e3c1b2a99"`
} // @name Job

// IsTerminal retourne true si le job est dans un état final
func (j *Job) IsTerminal() bool {
	return j.Status.IsTerminal()
}

// HasTranscript indique si la référence de transcription est renseignée
func (j *Job) HasTranscript() bool {
	return j.Transcript != nil && *j.Transcript != ""
}

// HasNotes indique si la référence de notes est renseignée
func (j *Job) HasNotes() bool {
	return j.Notes != nil && *j.Notes != ""
}

// Clone retourne une copie profonde du job
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	c := *j
	if j.Transcript != nil {
		t := *j.Transcript
		c.Transcript = &t
	}
	if j.Notes != nil {
		n := *j.Notes
		c.Notes = &n
	}
	return &c
}

// JobListResponse représente une liste de jobs avec ses statistiques
// @Description Vue agrégée des jobs
type JobListResponse struct {
	Jobs  []Job     `json:"jobs"`
	Count int       `json:"count" example:"25"`
	Stats *JobStats `json:"stats,omitempty"`
} // @name JobListResponse

// JobStats regroupe les statistiques dérivées d'une collection de jobs
// @Description Statistiques dérivées de la collection de jobs
type JobStats struct {
	Total           int               `json:"total" example:"12"`
	ByStatus        map[JobStatus]int `json:"by_status"`
	Pending         int               `json:"pending" example:"1"`
	Processing      int               `json:"processing" example:"2"`
	Completed       int               `json:"completed" example:"8"`
	Failed          int               `json:"failed" example:"1"`
	Unknown         int               `json:"unknown" example:"0"`
	HasNonTerminal  bool              `json:"has_non_terminal" example:"true"`
	TotalDuration   float64           `json:"total_duration" example:"18000"`
	AverageDuration int               `json:"average_duration" example:"1500"`
	Recent          []Job             `json:"recent"`
} // @name JobStats
