package upload

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lecture-sync/internal/cache"
	"lecture-sync/internal/client"
	"lecture-sync/internal/jobs"
	"lecture-sync/internal/jobs/jobstest"
	"lecture-sync/internal/validation"
	"lecture-sync/pkg/models"
)

var mp3Bytes = append([]byte("ID3\x03\x00\x00\x00\x00\x00\x00"), make([]byte, 128)...)

func newPipeline(backend *jobstest.Backend) *Pipeline {
	service := jobs.NewJobServiceImpl(backend, cache.NewMemoryCache(0), logr.Discard())
	return NewPipeline(service)
}

func TestDefaultTitle(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"lecture_01-intro.mp3", "lecture 01 intro"},
		{"week.1.final.wav", "week.1.final"},
		{"noext", "noext"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultTitle(tt.filename))
		})
	}
}

func TestSubmitWithoutFolderMakesNoNetworkCall(t *testing.T) {
	backend := jobstest.NewBackend()
	p := newPipeline(backend)

	require.NoError(t, p.SelectFile(FileFromBytes("intro.mp3", "audio/mpeg", mp3Bytes)))

	job, err := p.Submit(context.Background())
	require.Error(t, err)
	assert.Nil(t, job)

	var ve *validation.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "folder_id", ve.Field)

	_, _, creates := backend.Calls()
	assert.Zero(t, creates)
	form := p.Form()
	assert.Equal(t, StateFileSelected, form.State, "a failure returns to file_selected")
	assert.NotNil(t, form.File, "file is kept after a failure")
	assert.Error(t, form.LastError)
}

func TestSubmitWithoutFileIsRejected(t *testing.T) {
	backend := jobstest.NewBackend()
	p := newPipeline(backend)
	p.SetFolder("f1")

	_, err := p.Submit(context.Background())
	require.Error(t, err)
	assert.True(t, validation.IsValidationError(err))
	assert.Equal(t, StateError, p.State(), "no file to return to")

	_, _, creates := backend.Calls()
	assert.Zero(t, creates)
}

func TestSelectFileRejectsQuickTime(t *testing.T) {
	backend := jobstest.NewBackend()
	p := newPipeline(backend)
	p.SetFolder("f1")

	err := p.SelectFile(FileFromBytes("clip.mov", "video/quicktime", []byte("....ftypqt  ")))
	require.Error(t, err)
	assert.True(t, validation.IsValidationError(err))
	assert.Equal(t, StateIdle, p.State())
	assert.Nil(t, p.Form().File)

	_, err = p.Submit(context.Background())
	require.Error(t, err)

	_, _, creates := backend.Calls()
	assert.Zero(t, creates)
}

func TestSelectFileKeepsPreviousSelectionOnReject(t *testing.T) {
	p := newPipeline(jobstest.NewBackend())

	require.NoError(t, p.SelectFile(FileFromBytes("a.mp3", "audio/mpeg", mp3Bytes)))
	require.Error(t, p.SelectFile(FileFromBytes("b.txt", "text/plain", []byte("hello"))))

	form := p.Form()
	require.NotNil(t, form.File)
	assert.Equal(t, "a.mp3", form.File.Name)
	assert.Equal(t, StateFileSelected, form.State)
	assert.Error(t, form.LastError)
}

func TestSelectFileSniffsMissingContentType(t *testing.T) {
	p := newPipeline(jobstest.NewBackend())

	require.NoError(t, p.SelectFile(FileFromBytes("recording", "", mp3Bytes)))
	assert.Equal(t, "audio/mpeg", p.Form().MediaType)

	err := p.SelectFile(FileFromBytes("notes", "application/octet-stream", []byte("%PDF-1.4\n")))
	assert.True(t, validation.IsValidationError(err))
}

func TestTitleRules(t *testing.T) {
	p := newPipeline(jobstest.NewBackend())

	require.NoError(t, p.SelectFile(FileFromBytes("graph_theory-1.mp3", "audio/mpeg", mp3Bytes)))
	assert.Equal(t, "graph theory 1", p.Title())

	p.SetTitle("My title")
	require.NoError(t, p.SelectFile(FileFromBytes("other.mp3", "audio/mpeg", mp3Bytes)))
	assert.Equal(t, "My title", p.Title(), "user title survives re-selection")

	p.SetTitle("")
	assert.Equal(t, "other", p.Title())
}

func TestSubmitSendsOnlyMeaningfulFields(t *testing.T) {
	backend := jobstest.NewBackend()
	p := newPipeline(backend)

	require.NoError(t, p.SelectFile(FileFromBytes("intro_lecture.mp3", "audio/mpeg", mp3Bytes)))
	p.SetFolder("f1")
	p.SetTitle("intro lecture")

	job, err := p.Submit(context.Background())
	require.NoError(t, err)
	require.NotNil(t, job)

	require.Len(t, backend.Created, 1)
	req := backend.Created[0]
	assert.Equal(t, "intro_lecture.mp3", req.FileName)
	assert.Equal(t, "audio/mpeg", req.ContentType)
	assert.Equal(t, "f1", req.FolderID)
	assert.Empty(t, req.Title, "title equal to the default is not sent")
	assert.Empty(t, req.Description)
	assert.Equal(t, mp3Bytes, backend.Uploaded[job.ID.String()])

	require.NoError(t, p.SelectFile(FileFromBytes("intro_lecture.mp3", "audio/mpeg", mp3Bytes)))
	p.SetTitle("Week 1")
	p.SetDescription("first week")
	_, err = p.Submit(context.Background())
	require.NoError(t, err)

	require.Len(t, backend.Created, 2)
	assert.Equal(t, "Week 1", backend.Created[1].Title)
	assert.Equal(t, "first week", backend.Created[1].Description)
}

func TestSubmitSuccessClearsFormAndNotifies(t *testing.T) {
	backend := jobstest.NewBackend()
	p := newPipeline(backend)

	var got []Submission
	p.OnSuccess(func(ctx context.Context, s Submission) {
		got = append(got, s)
	})

	require.NoError(t, p.SelectFile(FileFromBytes("a.mp3", "audio/mpeg", mp3Bytes)))
	p.SetFolder("f1")
	p.SetTitle("A")
	p.SetDescription("desc")

	job, err := p.Submit(context.Background())
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, job.ID, got[0].Job.ID)
	assert.NotEmpty(t, got[0].RequestID)

	form := p.Form()
	assert.Equal(t, StateSuccess, form.State)
	assert.Nil(t, form.File)
	assert.Empty(t, form.Title)
	assert.False(t, form.TitleSet)
	assert.Empty(t, form.Description)
	assert.Equal(t, "f1", form.FolderID, "destination folder is kept")
}

func TestSubmitFailureKeepsFileAndRetryCreatesNewJob(t *testing.T) {
	backend := jobstest.NewBackend()
	p := newPipeline(backend)

	require.NoError(t, p.SelectFile(FileFromBytes("a.mp3", "audio/mpeg", mp3Bytes)))
	p.SetFolder("f1")

	backend.SetErr(&client.ServerError{Op: "CreateJob", StatusCode: 500, Detail: "boom"})
	_, err := p.Submit(context.Background())
	require.Error(t, err)

	var se *client.ServerError
	require.True(t, errors.As(err, &se))
	form := p.Form()
	assert.Equal(t, StateFileSelected, form.State)
	require.NotNil(t, form.File)
	assert.ErrorAs(t, form.LastError, &se)

	backend.SetErr(nil)
	first, err := p.Submit(context.Background())
	require.NoError(t, err)

	require.NoError(t, p.SelectFile(FileFromBytes("a.mp3", "audio/mpeg", mp3Bytes)))
	second, err := p.Submit(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestSubmitUnknownFolder(t *testing.T) {
	backend := jobstest.NewBackend()
	backend.PutFolder(models.Folder{ID: "f1", Name: "Algorithms"})
	p := newPipeline(backend)

	require.NoError(t, p.SelectFile(FileFromBytes("a.mp3", "audio/mpeg", mp3Bytes)))
	p.SetFolder("missing")

	_, err := p.Submit(context.Background())
	require.Error(t, err)
	assert.True(t, client.IsNotFound(err))
}

func TestConcurrentSubmitIsRejected(t *testing.T) {
	backend := jobstest.NewBackend()
	p := newPipeline(backend)

	opened := make(chan struct{})
	release := make(chan struct{})
	file := NewFile("a.mp3", "audio/mpeg", int64(len(mp3Bytes)), func() (io.ReadCloser, error) {
		close(opened)
		<-release
		return io.NopCloser(bytes.NewReader(mp3Bytes)), nil
	})
	require.NoError(t, p.SelectFile(file))
	p.SetFolder("f1")

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		_, firstErr = p.Submit(context.Background())
	}()

	select {
	case <-opened:
	case <-time.After(time.Second):
		t.Fatal("submission never started")
	}
	assert.Equal(t, StateSubmitting, p.State())

	_, err := p.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSubmitInProgress)

	close(release)
	wg.Wait()
	require.NoError(t, firstErr)

	_, _, creates := backend.Calls()
	assert.Equal(t, 1, creates)
}

func TestFileFromPath(t *testing.T) {
	path := t.TempDir() + "/talk_1.mp3"
	require.NoError(t, os.WriteFile(path, mp3Bytes, 0644))

	f, err := FileFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "talk_1.mp3", f.Name)
	assert.Equal(t, "audio/mpeg", f.ContentType)
	assert.Equal(t, int64(len(mp3Bytes)), f.Size)

	_, err = FileFromPath(t.TempDir())
	assert.Error(t, err)
}
