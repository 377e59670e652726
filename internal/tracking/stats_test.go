package tracking

import (
	"testing"
	"time"

	"lecture-sync/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string {
	return &s
}

func jobAt(id string, status models.JobStatus, folder string, created time.Time, duration float64) models.Job {
	return models.Job{
		ID:        models.JobID(id),
		Title:     "Lecture " + id,
		Status:    status,
		FolderID:  folder,
		CreatedAt: models.NewTimestamp(created),
		Duration:  duration,
	}
}

func TestComputeStats(t *testing.T) {
	base := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	jobs := []models.Job{
		jobAt("1", models.StatusCompleted, "f1", base, 100),
		jobAt("2", models.StatusTranscribing, "f1", base.Add(1*time.Hour), 0),
		jobAt("3", models.StatusGeneratingNotes, "f2", base.Add(2*time.Hour), 51),
		jobAt("4", models.StatusFailed, "f2", base.Add(3*time.Hour), 0),
		jobAt("5", models.StatusPending, "f1", base.Add(4*time.Hour), 0),
		jobAt("6", "archived", "f1", base.Add(5*time.Hour), 0),
	}

	stats := ComputeStats(jobs)

	assert.Equal(t, 6, stats.Total)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, 2, stats.Processing)
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Unknown)
	assert.True(t, stats.HasNonTerminal)
	assert.Equal(t, 151.0, stats.TotalDuration)
	assert.Equal(t, 25, stats.AverageDuration) // 151 / 6 = 25.17
	assert.Equal(t, 1, stats.ByStatus["archived"])

	require.Len(t, stats.Recent, RecentLimit)
	assert.Equal(t, models.JobID("6"), stats.Recent[0].ID)
	assert.Equal(t, models.JobID("2"), stats.Recent[4].ID)
}

func TestComputeStatsEmpty(t *testing.T) {
	stats := ComputeStats(nil)
	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, 0, stats.AverageDuration)
	assert.False(t, stats.HasNonTerminal)
	assert.NotNil(t, stats.Recent)
}

func TestComputeStatsAllTerminal(t *testing.T) {
	now := time.Now()
	stats := ComputeStats([]models.Job{
		jobAt("a", models.StatusCompleted, "f1", now, 61),
		jobAt("b", models.StatusFailed, "f1", now, 0),
	})
	assert.False(t, stats.HasNonTerminal)
	assert.Equal(t, 31, stats.AverageDuration) // 30.5 arrondi
}

func TestFilterByFolder(t *testing.T) {
	now := time.Now()
	jobs := []models.Job{
		jobAt("A", models.StatusPending, "1", now, 0),
		jobAt("B", models.StatusPending, "2", now, 0),
	}

	scoped := FilterByFolder(jobs, "1")
	require.Len(t, scoped, 1)
	assert.Equal(t, models.JobID("A"), scoped[0].ID)

	assert.Len(t, FilterByFolder(jobs, ""), 2)
	assert.Empty(t, FilterByFolder(jobs, "3"))
}

func TestSearch(t *testing.T) {
	jobs := []models.Job{
		{ID: "1", Title: "Graph Algorithms part 1"},
		{ID: "2", Title: "Databases", Transcript: strPtr("today we cover B-tree indexes and graph databases")},
		{ID: "3", Title: "Networks", Notes: strPtr("## TCP\nCongestion control")},
		{ID: "4", Title: "Operating systems", Transcript: strPtr("")},
	}

	tests := []struct {
		name  string
		query string
		want  []models.JobID
	}{
		{"title single term", "graph", []models.JobID{"1", "2"}},
		{"all terms in the same field", "graph databases", []models.JobID{"2"}},
		{"terms split across fields do not match", "networks congestion", nil},
		{"notes", "TCP congestion", []models.JobID{"3"}},
		{"case insensitive", "OPERATING", []models.JobID{"4"}},
		{"empty query matches everything", "  ", []models.JobID{"1", "2", "3", "4"}},
		{"no match", "quantum", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []models.JobID
			for _, j := range Search(jobs, tt.query) {
				got = append(got, j.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDiffStatuses(t *testing.T) {
	prev := []models.Job{{ID: "a", Status: models.StatusPending}, {ID: "b", Status: models.StatusCompleted}}
	next := []models.Job{{ID: "a", Status: models.StatusTranscribing}, {ID: "b", Status: models.StatusCompleted}, {ID: "c", Status: models.StatusPending}}

	changes := diffStatuses(prev, next)
	require.Len(t, changes, 1)
	assert.Equal(t, models.JobID("a"), changes[0].job.ID)
	assert.Equal(t, models.StatusPending, changes[0].from)
}

func TestHoldMonotonic(t *testing.T) {
	prev := []models.Job{
		{ID: "a", Title: "done", Status: models.StatusCompleted, Notes: strPtr("n")},
		{ID: "b", Status: models.StatusGeneratingNotes},
		{ID: "c", Status: models.StatusPending},
	}
	next := []models.Job{
		{ID: "a", Title: "stale", Status: models.StatusPending},
		{ID: "b", Status: models.StatusTranscribing},
		{ID: "c", Status: models.StatusFailed},
		{ID: "d", Status: models.StatusPending},
	}

	merged := holdMonotonic(prev, next)
	require.Len(t, merged, 4)
	assert.Equal(t, "done", merged[0].Title, "terminal record is kept whole")
	assert.Equal(t, models.StatusCompleted, merged[0].Status)
	assert.Equal(t, models.StatusGeneratingNotes, merged[1].Status)
	assert.Equal(t, models.StatusFailed, merged[2].Status)
	assert.Equal(t, models.JobID("d"), merged[3].ID)
	assert.Empty(t, diffStatuses(prev[:2], merged[:2]))
}
