package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lecture-sync/pkg/models"
)

func TestValidateFilename(t *testing.T) {
	vs := NewValidationService(nil)

	tests := []struct {
		name     string
		filename string
		code     string
	}{
		{"valid", "lecture 1.mp3", ""},
		{"empty", "", "REQUIRED"},
		{"too long", strings.Repeat("a", 300) + ".mp3", "TOO_LONG"},
		{"traversal", "../evil.mp3", "FORBIDDEN_CHAR"},
		{"parent dir", "..", "FORBIDDEN_CHAR"},
		{"double dot inside name", "part1..final.mp3", ""},
		{"separator", `dir\file.wav`, "FORBIDDEN_CHAR"},
		{"control char", "bad\x01.wav", "FORBIDDEN_CHAR"},
		{"invalid utf8", "bad\xff.wav", "INVALID_ENCODING"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := vs.ValidateFilename(tt.filename)
			if tt.code == "" {
				assert.True(t, result.Valid)
				assert.Empty(t, result.Errors)
				return
			}
			require.False(t, result.Valid)
			assert.Equal(t, tt.code, result.Errors[0].Code)
		})
	}
}

func TestDetectMediaType(t *testing.T) {
	mp3 := append([]byte("ID3\x03\x00\x00\x00\x00\x00\x00"), make([]byte, 64)...)
	wav := append([]byte("RIFF\x24\x00\x00\x00WAVEfmt "), make([]byte, 64)...)

	tests := []struct {
		name     string
		declared string
		head     []byte
		want     string
	}{
		{"declared wins", "audio/mpeg", wav, "audio/mpeg"},
		{"declared with params", "Audio/MPEG; charset=binary", nil, "audio/mpeg"},
		{"sniff mp3", "", mp3, "audio/mpeg"},
		{"sniff wav behind octet-stream", "application/octet-stream", wav, "audio/wav"},
		{"nothing to sniff", "", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectMediaType(tt.declared, tt.head))
		})
	}
}

func TestMediaTypeFromExtension(t *testing.T) {
	assert.Equal(t, "audio/mpeg", MediaTypeFromExtension("a.MP3"))
	assert.Equal(t, "video/quicktime", MediaTypeFromExtension("clip.mov"))
	assert.Equal(t, "video/mp4", MediaTypeFromExtension("talk.mp4"))
	assert.Equal(t, "", MediaTypeFromExtension("noext"))
}

func TestValidateMediaType(t *testing.T) {
	vs := NewValidationService(nil)

	assert.True(t, vs.ValidateMediaType("audio/mpeg").Valid)
	assert.True(t, vs.ValidateMediaType("audio/x-m4a").Valid)
	assert.True(t, vs.ValidateMediaType("video/mp4").Valid)

	result := vs.ValidateMediaType("video/quicktime")
	require.False(t, result.Valid)
	assert.Equal(t, "FORBIDDEN_MEDIA_TYPE", result.Errors[0].Code)

	result = vs.ValidateMediaType("")
	require.False(t, result.Valid)
	assert.Equal(t, "UNKNOWN_MEDIA_TYPE", result.Errors[0].Code)
}

func TestValidateFileSize(t *testing.T) {
	vs := NewValidationService(&ValidationConfig{MaxFileSize: 10})

	assert.True(t, vs.ValidateFileSize(-1).Valid, "unknown size is accepted")
	assert.True(t, vs.ValidateFileSize(10).Valid)
	assert.Equal(t, "EMPTY_FILE", vs.ValidateFileSize(0).Errors[0].Code)
	assert.Equal(t, "FILE_TOO_LARGE", vs.ValidateFileSize(11).Errors[0].Code)
}

func TestValidateFolderID(t *testing.T) {
	vs := NewValidationService(nil)

	assert.True(t, vs.ValidateFolderID("b1d0c6a2").Valid)
	assert.Equal(t, "REQUIRED", vs.ValidateFolderID("  ").Errors[0].Code)
	assert.Equal(t, "INVALID_ID", vs.ValidateFolderID("a/b").Errors[0].Code)
}

func TestValidationResultErr(t *testing.T) {
	result := NewResult()
	assert.NoError(t, result.Err())

	result.AddError("folder_id", "", "a destination folder is required", "REQUIRED")
	err := result.Err()
	require.Error(t, err)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "folder_id", ve.Field)
	assert.True(t, IsValidationError(err))
	assert.Contains(t, err.Error(), "folder_id")

	wrapped := errors.Join(errors.New("submit"), err)
	assert.True(t, IsValidationError(wrapped))
}

func TestValidationResultMerge(t *testing.T) {
	a := NewResult()
	a.Merge(nil)
	a.Merge(NewResult())
	assert.True(t, a.Valid)

	b := NewResult()
	b.AddError("title", "x", "too long", "TOO_LONG")
	a.Merge(b)
	assert.False(t, a.Valid)
	assert.Len(t, a.Errors, 1)
}

func TestAPIValidator(t *testing.T) {
	av := NewAPIValidator(nil)

	t.Run("job id", func(t *testing.T) {
		id, result := av.ValidateJobIDParam("3f6c1c8e-8a4b")
		assert.True(t, result.Valid)
		assert.Equal(t, models.JobID("3f6c1c8e-8a4b"), id)

		_, result = av.ValidateJobIDParam("")
		assert.False(t, result.Valid)

		_, result = av.ValidateJobIDParam("a b")
		assert.False(t, result.Valid)
	})

	t.Run("optional folder", func(t *testing.T) {
		assert.True(t, av.ValidateFolderIDParam("", false).Valid)
		assert.False(t, av.ValidateFolderIDParam("", true).Valid)
	})

	t.Run("search query", func(t *testing.T) {
		assert.True(t, av.ValidateSearchQuery("graph theory").Valid)
		assert.False(t, av.ValidateSearchQuery(strings.Repeat("x", 201)).Valid)
	})

	t.Run("upload request", func(t *testing.T) {
		result := av.ValidateUploadRequest(&models.UploadRequest{SourcePath: "week1/intro.mp3", FolderID: "f1"})
		assert.True(t, result.Valid)

		result = av.ValidateUploadRequest(&models.UploadRequest{SourcePath: "../secret.mp3"})
		require.False(t, result.Valid)
		codes := make([]string, 0, len(result.Errors))
		for _, e := range result.Errors {
			codes = append(codes, e.Code)
		}
		assert.Contains(t, codes, "PATH_TRAVERSAL")
		assert.Contains(t, codes, "REQUIRED")

		result = av.ValidateUploadRequest(&models.UploadRequest{SourcePath: `week1\..\secret.mp3`, FolderID: "f1"})
		assert.False(t, result.Valid)

		result = av.ValidateUploadRequest(&models.UploadRequest{SourcePath: "week1/part1..final.mp3", FolderID: "f1"})
		assert.True(t, result.Valid)
	})
}

func TestSanitizeFilename(t *testing.T) {
	av := NewAPIValidator(nil)

	tests := []struct {
		input string
		want  string
	}{
		{"lecture.mp3", "lecture.mp3"},
		{"My Lecture.MP3", "My Lecture.mp3"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\me\talk.wav`, "talk.wav"},
		{"a<b>.wav", "a_b.wav"},
		{"", "upload"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, av.SanitizeFilename(tt.input))
		})
	}
}
