package upload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"lecture-sync/internal/validation"
)

// sniffLen correspond à la fenêtre lue par mimetype pour la détection
const sniffLen = 3072

// File est un fichier média candidat à la soumission. Size vaut -1 si inconnue.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

func NewFile(name, contentType string, size int64, open func() (io.ReadCloser, error)) File {
	return File{Name: name, ContentType: contentType, Size: size, Open: open}
}

// FileFromBytes construit un fichier en mémoire
func FileFromBytes(name, contentType string, data []byte) File {
	return NewFile(name, contentType, int64(len(data)), func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	})
}

// FileFromPath ouvre un fichier local ; le type déclaré dérive de l'extension
func FileFromPath(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("%s is a directory", path)
	}

	return NewFile(filepath.Base(path), validation.MediaTypeFromExtension(path), info.Size(),
		func() (io.ReadCloser, error) {
			return os.Open(path)
		}), nil
}

// head lit les premiers octets du contenu pour la détection du type
func (f File) head() ([]byte, error) {
	if f.Open == nil {
		return nil, errors.New("file has no content")
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	defer rc.Close()

	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(rc, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read %s: %w", f.Name, err)
	}
	return buf[:n], nil
}

// mediaType donne le type déclaré ou, à défaut, le type détecté
func (f File) mediaType() (string, error) {
	if declared := validation.DetectMediaType(f.ContentType, nil); declared != "" && declared != "application/octet-stream" {
		return declared, nil
	}
	head, err := f.head()
	if err != nil {
		return "", err
	}
	return validation.DetectMediaType(f.ContentType, head), nil
}
