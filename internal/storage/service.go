package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"lecture-sync/internal/upload"
	"lecture-sync/pkg/storage"
)

const stagingPrefix = "uploads"

// SourceService expose le storage configuré comme source de fichiers média à soumettre
type SourceService struct {
	storage storage.Storage
}

func NewSourceService(storage storage.Storage) *SourceService {
	return &SourceService{
		storage: storage,
	}
}

// StagingPath construit le chemin uploads/{request_id}/{filename}
func StagingPath(requestID uuid.UUID, filename string) string {
	return fmt.Sprintf("%s/%s/%s", stagingPrefix, requestID.String(), filename)
}

// StageUpload copie un fichier reçu dans le storage et retourne son chemin
func (s *SourceService) StageUpload(ctx context.Context, requestID uuid.UUID, filename string, content io.Reader) (string, error) {
	if err := ValidatePath(filename); err != nil {
		return "", err
	}

	path := StagingPath(requestID, filename)
	if err := s.storage.Upload(ctx, path, content); err != nil {
		return "", fmt.Errorf("failed to stage file %s: %w", filename, err)
	}
	return path, nil
}

// OpenSource prépare un upload.File adossé au storage ; le contenu n'est lu
// qu'à la détection du type et à l'envoi.
func (s *SourceService) OpenSource(ctx context.Context, path string) (upload.File, error) {
	if err := ValidatePath(path); err != nil {
		return upload.File{}, err
	}

	info, err := s.storage.Stat(ctx, path)
	if err != nil {
		return upload.File{}, fmt.Errorf("failed to stat source %s: %w", path, err)
	}

	return upload.NewFile(filepath.Base(path), info.ContentType, info.Size, func() (io.ReadCloser, error) {
		return s.storage.Open(ctx, path)
	}), nil
}

// ListSources liste les fichiers sous un préfixe, triés par chemin
func (s *SourceService) ListSources(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	paths, err := s.storage.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	infos := make([]storage.ObjectInfo, 0, len(paths))
	for _, path := range paths {
		info, err := s.storage.Stat(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat source %s: %w", path, err)
		}
		infos = append(infos, *info)
	}
	return infos, nil
}

// RemoveStaged supprime une copie déposée par StageUpload
func (s *SourceService) RemoveStaged(ctx context.Context, path string) error {
	if !strings.HasPrefix(path, stagingPrefix+"/") {
		return fmt.Errorf("%s is not a staged upload", path)
	}
	return s.storage.Delete(ctx, path)
}

// ValidatePath valide un chemin relatif dans le storage
func ValidatePath(filePath string) error {
	normalizedPath := filepath.ToSlash(filePath)

	if normalizedPath == "" {
		return fmt.Errorf("empty path")
	}

	segments := strings.Split(strings.Trim(normalizedPath, "/"), "/")

	// Vérifier les path traversal
	for _, seg := range segments {
		if seg == ".." {
			return fmt.Errorf("path traversal not allowed: %s", filePath)
		}
	}

	// Vérifier la profondeur
	if len(segments) > 10 {
		return fmt.Errorf("path too deep (max 10 levels): %s", filePath)
	}

	for _, segment := range segments {
		// Vérifier les caractères interdits dans les noms de dossiers/fichiers
		if strings.ContainsAny(segment, ":*?\"<>|") {
			return fmt.Errorf("invalid characters in path segment: %s", segment)
		}
	}

	return nil
}
