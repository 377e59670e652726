package upload

import (
	"context"
	"sync"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lecture-sync/internal/cache"
	"lecture-sync/internal/jobs"
	"lecture-sync/internal/jobs/jobstest"
	"lecture-sync/internal/validation"
)

func TestBatchSubmitsEveryFile(t *testing.T) {
	backend := jobstest.NewBackend()
	service := jobs.NewJobServiceImpl(backend, cache.NewMemoryCache(0), logr.Discard())

	var mu sync.Mutex
	var seen []int
	batch := NewBatch(service, &BatchConfig{
		Workers: 3,
		Prepare: func(p *Pipeline) { p.SetFolder("f1") },
		OnResult: func(r BatchResult) {
			mu.Lock()
			seen = append(seen, r.Index)
			mu.Unlock()
		},
	})

	files := []File{
		FileFromBytes("week_1.mp3", "audio/mpeg", mp3Bytes),
		FileFromBytes("week_2.mp3", "audio/mpeg", mp3Bytes),
		FileFromBytes("notes.txt", "text/plain", []byte("not media")),
		FileFromBytes("week_3.mp3", "audio/mpeg", mp3Bytes),
	}

	results, stats := batch.Run(context.Background(), files)
	require.Len(t, results, 4)
	assert.Equal(t, 4, stats.Total)
	assert.EqualValues(t, 3, stats.Succeeded)
	assert.EqualValues(t, 1, stats.Failed)
	assert.Len(t, seen, 4)

	for i, r := range results {
		assert.Equal(t, i, r.Index)
		assert.Equal(t, files[i].Name, r.File.Name)
	}
	assert.True(t, validation.IsValidationError(results[2].Err))
	assert.Nil(t, results[2].Job)
	require.NotNil(t, results[3].Job)

	_, _, creates := backend.Calls()
	assert.Equal(t, 3, creates)
}

func TestBatchSkipsAfterCancel(t *testing.T) {
	backend := jobstest.NewBackend()
	service := jobs.NewJobServiceImpl(backend, nil, logr.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	batch := NewBatch(service, &BatchConfig{Workers: 2, Prepare: func(p *Pipeline) { p.SetFolder("f1") }})
	results, stats := batch.Run(ctx, []File{
		FileFromBytes("a.mp3", "audio/mpeg", mp3Bytes),
		FileFromBytes("b.mp3", "audio/mpeg", mp3Bytes),
	})

	assert.EqualValues(t, 2, stats.Skipped)
	for _, r := range results {
		assert.True(t, r.Skipped)
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
	_, _, creates := backend.Calls()
	assert.Zero(t, creates)
}

func TestBatchDefaults(t *testing.T) {
	b := NewBatch(nil, &BatchConfig{Workers: 0})
	assert.Equal(t, 1, b.config.Workers)

	results, stats := NewBatch(nil, nil).Run(context.Background(), nil)
	assert.Empty(t, results)
	assert.Zero(t, stats.Total)
}
