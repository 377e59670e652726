package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobStatusTerminal(t *testing.T) {
	tests := []struct {
		status   JobStatus
		terminal bool
		known    bool
	}{
		{StatusPending, false, true},
		{StatusTranscribing, false, true},
		{StatusGeneratingNotes, false, true},
		{StatusCompleted, true, true},
		{StatusFailed, true, true},
		{JobStatus("queued_for_review"), false, false},
		{JobStatus(""), false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.terminal, tt.status.IsTerminal())
			assert.Equal(t, tt.known, tt.status.IsKnown())
		})
	}
}

func TestJobStatusRank(t *testing.T) {
	assert.Less(t, StatusPending.Rank(), StatusTranscribing.Rank())
	assert.Less(t, StatusTranscribing.Rank(), StatusGeneratingNotes.Rank())
	assert.Less(t, StatusGeneratingNotes.Rank(), StatusCompleted.Rank())
	assert.Equal(t, -1, StatusFailed.Rank())
	assert.Equal(t, -1, JobStatus("other").Rank())
}

func TestJobStatusCanAdvanceTo(t *testing.T) {
	tests := []struct {
		from, to JobStatus
		want     bool
	}{
		{StatusPending, StatusTranscribing, true},
		{StatusPending, StatusCompleted, true},
		{StatusTranscribing, StatusFailed, true},
		{StatusGeneratingNotes, StatusPending, false},
		{StatusCompleted, StatusPending, false},
		{StatusCompleted, StatusFailed, false},
		{StatusFailed, StatusTranscribing, false},
		{StatusCompleted, StatusCompleted, true},
		{StatusTranscribing, JobStatus("queued_for_review"), true},
		{JobStatus("queued_for_review"), StatusPending, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanAdvanceTo(tt.to))
		})
	}
}

func TestJobDecodeBackendPayload(t *testing.T) {
	payload := `{
		"id": "3f6c1c8e-8a4b-4c0e-9a51-2d7f0b1e4a10",
		"title": "Intro",
		"description": null,
		"audio_url": "/data/x/audio.mp3",
		"transcript": "/data/x/transcript.txt",
		"notes": null,
		"status": "generating_notes",
		"created_at": "2025-01-17T10:30:00.123456",
		"updated_at": "2025-01-17T10:31:00.123456",
		"duration": null,
		"user_id": "default_user",
		"folder_id": "f1"
	}`

	var job Job
	require.NoError(t, json.Unmarshal([]byte(payload), &job))

	assert.Equal(t, JobID("3f6c1c8e-8a4b-4c0e-9a51-2d7f0b1e4a10"), job.ID)
	assert.Equal(t, StatusGeneratingNotes, job.Status)
	assert.Equal(t, 0.0, job.Duration)
	assert.Equal(t, "", job.Description)
	assert.True(t, job.HasTranscript())
	assert.False(t, job.HasNotes())
	assert.Equal(t, "f1", job.FolderID)
	assert.Equal(t, 2025, job.CreatedAt.Year())
	assert.Equal(t, 30, job.CreatedAt.Minute())
}

func TestJobIDAcceptsNumbers(t *testing.T) {
	var job Job
	require.NoError(t, json.Unmarshal([]byte(`{"id": 42, "status": "pending"}`), &job))
	assert.Equal(t, JobID("42"), job.ID)
}

func TestTimestampRejectsGarbage(t *testing.T) {
	var ts Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
	assert.Error(t, json.Unmarshal([]byte(`12`), &ts))
	require.NoError(t, json.Unmarshal([]byte(`"2025-01-17T10:30:00Z"`), &ts))
	assert.Equal(t, time.UTC, ts.Location())
}

func TestJobClone(t *testing.T) {
	notes := "notes.html"
	job := &Job{ID: "1", Status: StatusCompleted, Notes: &notes}

	clone := job.Clone()
	*clone.Notes = "changed"

	assert.Equal(t, "notes.html", *job.Notes)
	assert.Nil(t, (*Job)(nil).Clone())
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0m", FormatDuration(0))
	assert.Equal(t, "12m", FormatDuration(12*60+30))
	assert.Equal(t, "1h 5m", FormatDuration(3900))
	assert.Equal(t, "0m", FormatDuration(-3))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "Jan 17, 2025", FormatDate(time.Date(2025, 1, 17, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, "-", FormatDate(time.Time{}))
}
