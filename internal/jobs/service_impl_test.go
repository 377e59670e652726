package jobs

import (
	"context"
	"errors"
	"strings"
	"testing"

	"lecture-sync/internal/cache"
	"lecture-sync/internal/client"
	"lecture-sync/internal/jobs/jobstest"
	"lecture-sync/pkg/models"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (Service, *jobstest.Backend, *cache.MemoryCache) {
	t.Helper()
	backend := jobstest.NewBackend()
	c := cache.NewMemoryCache(0)
	return NewJobServiceImpl(backend, c, logr.Discard()), backend, c
}

func TestJobServiceCacheWriteThrough(t *testing.T) {
	svc, backend, c := newTestService(t)
	ctx := context.Background()

	backend.Put(
		models.Job{ID: "a", Status: models.StatusTranscribing, FolderID: "1"},
		models.Job{ID: "b", Status: models.StatusCompleted, FolderID: "2"},
	)

	_, ok := svc.CachedJob(ctx, "a")
	assert.False(t, ok)

	jobs, err := svc.ListJobs(ctx, "")
	require.NoError(t, err)
	assert.Len(t, jobs, 2)
	assert.Equal(t, 2, c.Len())

	cached, ok := svc.CachedJob(ctx, "a")
	require.True(t, ok)
	assert.Equal(t, models.StatusTranscribing, cached.Status)

	backend.Put(models.Job{ID: "a", Status: models.StatusGeneratingNotes, FolderID: "1"})
	_, err = svc.GetJob(ctx, "a")
	require.NoError(t, err)
	cached, _ = svc.CachedJob(ctx, "a")
	assert.Equal(t, models.StatusGeneratingNotes, cached.Status)
}

func TestJobServiceNotFoundEvictsCache(t *testing.T) {
	svc, backend, _ := newTestService(t)
	ctx := context.Background()

	backend.Put(models.Job{ID: "gone", Status: models.StatusPending, FolderID: "1"})
	_, err := svc.GetJob(ctx, "gone")
	require.NoError(t, err)

	backend.Remove("gone")
	_, err = svc.GetJob(ctx, "gone")
	require.Error(t, err)
	assert.True(t, client.IsNotFound(err), "wrapped error must stay classifiable")

	_, ok := svc.CachedJob(ctx, "gone")
	assert.False(t, ok)
}

func TestJobServiceCreateAndDelete(t *testing.T) {
	svc, backend, _ := newTestService(t)
	ctx := context.Background()

	job, err := svc.CreateJob(ctx, &client.CreateJobRequest{
		FileName: "intro.mp3",
		File:     strings.NewReader("audio"),
		FolderID: "f1",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, job.Status)

	cached, ok := svc.CachedJob(ctx, job.ID)
	require.True(t, ok)
	assert.Equal(t, job.ID, cached.ID)

	require.NoError(t, svc.DeleteJob(ctx, job.ID))
	_, ok = svc.CachedJob(ctx, job.ID)
	assert.False(t, ok)

	_, _, creates := backend.Calls()
	assert.Equal(t, 1, creates)
}

func TestJobServiceErrorsAreWrapped(t *testing.T) {
	svc, backend, _ := newTestService(t)
	ctx := context.Background()

	transport := &client.TransportError{Op: "ListJobs", Err: errors.New("connection refused")}
	backend.SetErr(transport)

	_, err := svc.ListJobs(ctx, "")
	require.Error(t, err)
	assert.True(t, client.IsTransport(err))
	assert.Contains(t, err.Error(), "failed to list jobs")
}

func TestJobServiceWithoutCache(t *testing.T) {
	backend := jobstest.NewBackend()
	svc := NewJobServiceImpl(backend, nil, logr.Discard())
	ctx := context.Background()

	backend.Put(models.Job{ID: "a", Status: models.StatusPending, FolderID: "1"})
	_, err := svc.GetJob(ctx, "a")
	require.NoError(t, err)

	_, ok := svc.CachedJob(ctx, "a")
	assert.False(t, ok)
}

func TestFolderService(t *testing.T) {
	svc, backend, _ := newTestService(t)
	ctx := context.Background()

	backend.PutFolder(models.Folder{ID: "f1", Name: "Algorithms"})

	created, err := svc.CreateFolder(ctx, "Databases", nil)
	require.NoError(t, err)

	folders, err := svc.ListFolders(ctx)
	require.NoError(t, err)
	assert.Len(t, folders, 2)

	name := "Systems"
	updated, err := svc.UpdateFolder(ctx, created.ID, models.FolderUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Systems", updated.Name)

	require.NoError(t, svc.DeleteFolder(ctx, created.ID))
	_, err = svc.GetFolder(ctx, created.ID)
	assert.True(t, client.IsNotFound(err))
}
