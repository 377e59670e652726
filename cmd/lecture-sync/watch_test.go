package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"lecture-sync/internal/tracking"
	"lecture-sync/pkg/models"
)

func TestWatchPrinterReportsOnlyTransitions(t *testing.T) {
	var out bytes.Buffer
	p := &watchPrinter{out: &out}

	jobs := []models.Job{
		{ID: "a", Title: "Intro", Status: models.StatusPending},
		{ID: "b", Title: "Graphs", Status: models.StatusCompleted},
	}
	p.print(tracking.AggregateSnapshot{Jobs: jobs, Stats: tracking.ComputeStats(jobs)})
	assert.Contains(t, out.String(), "Intro")
	assert.Contains(t, out.String(), "total 2")

	out.Reset()
	p.print(tracking.AggregateSnapshot{Jobs: jobs, Stats: tracking.ComputeStats(jobs)})
	assert.Empty(t, out.String(), "nothing changed")

	jobs[0].Status = models.StatusTranscribing
	p.print(tracking.AggregateSnapshot{Jobs: jobs, Stats: tracking.ComputeStats(jobs)})
	assert.Contains(t, out.String(), "~ a  pending -> transcribing  Intro")

	out.Reset()
	p.print(tracking.AggregateSnapshot{Jobs: jobs, LastError: "backend unavailable"})
	assert.Contains(t, out.String(), "sync error: backend unavailable")
}
