package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lecture-sync/internal/storage/filesystem"
	"lecture-sync/pkg/storage"
)

func newSourceService(t *testing.T) *SourceService {
	fs, err := filesystem.NewFilesystemStorage(t.TempDir())
	require.NoError(t, err)
	return NewSourceService(fs)
}

func TestSourceServiceStageAndOpen(t *testing.T) {
	svc := newSourceService(t)
	ctx := context.Background()
	requestID := uuid.New()

	path, err := svc.StageUpload(ctx, requestID, "intro.mp3", strings.NewReader("ID3 audio"))
	require.NoError(t, err)
	assert.Equal(t, "uploads/"+requestID.String()+"/intro.mp3", path)

	file, err := svc.OpenSource(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "intro.mp3", file.Name)
	assert.Equal(t, "audio/mpeg", file.ContentType)
	assert.Equal(t, int64(len("ID3 audio")), file.Size)

	rc, err := file.Open()
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "ID3 audio", string(data))

	require.NoError(t, svc.RemoveStaged(ctx, path))
	_, err = svc.OpenSource(ctx, path)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestSourceServiceRejectsTraversal(t *testing.T) {
	svc := newSourceService(t)
	ctx := context.Background()

	_, err := svc.StageUpload(ctx, uuid.New(), "../evil.mp3", strings.NewReader("x"))
	assert.Error(t, err)

	_, err = svc.OpenSource(ctx, "../../etc/passwd")
	assert.Error(t, err)

	assert.Error(t, svc.RemoveStaged(ctx, "lectures/keep.mp3"))
}

func TestSourceServiceListSources(t *testing.T) {
	svc := newSourceService(t)
	ctx := context.Background()

	fs := svc.storage
	require.NoError(t, fs.Upload(ctx, "lectures/b.wav", strings.NewReader("bb")))
	require.NoError(t, fs.Upload(ctx, "lectures/a.mp3", strings.NewReader("a")))
	require.NoError(t, fs.Upload(ctx, "other/c.mp3", strings.NewReader("c")))

	infos, err := svc.ListSources(ctx, "lectures/")
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "lectures/a.mp3", infos[0].Path)
	assert.Equal(t, "lectures/b.wav", infos[1].Path)
	assert.Equal(t, int64(2), infos[1].Size)
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		path    string
		wantErr bool
	}{
		{"lectures/week1/intro.mp3", false},
		{"intro.mp3", false},
		{"", true},
		{"../intro.mp3", true},
		{"week1/../../intro.mp3", true},
		{"week1/part1..final.mp3", false},
		{"a/b/c/d/e/f/g/h/i/j/k.mp3", true},
		{"bad:name.mp3", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			err := ValidatePath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
