package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/myaicommunity/agenthub/errs"
)

const projectUploadDir = "projects"

// LocalStore writes uploads to a directory on disk. Files are served back
// under the urlPrefix by the API's static file route.
type LocalStore struct {
	baseDir   string
	urlPrefix string
}

func NewLocalStore(baseDir, urlPrefix string) (*LocalStore, error) {
	if err := os.MkdirAll(filepath.Join(baseDir, projectUploadDir), 0o755); err != nil {
		return nil, err
	}
	return &LocalStore{baseDir: baseDir, urlPrefix: urlPrefix}, nil
}

// BaseDir returns the directory uploads are written under, for wiring the
// static file route.
func (s *LocalStore) BaseDir() string {
	return s.baseDir
}

func (s *LocalStore) Save(ctx context.Context, r io.Reader, originalName, mimeType string, size int64) (SavedFile, error) {
	name := uniqueName(originalName)
	relPath := filepath.Join(projectUploadDir, name)

	dst, err := os.Create(filepath.Join(s.baseDir, relPath))
	if err != nil {
		return SavedFile{}, errs.NewFileWriteError(originalName, err)
	}

	written, err := io.Copy(dst, r)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(filepath.Join(s.baseDir, relPath))
		return SavedFile{}, errs.NewFileWriteError(originalName, err)
	}

	return SavedFile{
		Filename:     name,
		OriginalName: originalName,
		MimeType:     mimeType,
		Size:         written,
		Path:         relPath,
		URL:          s.urlPrefix + "/" + projectUploadDir + "/" + name,
	}, nil
}

func (s *LocalStore) Delete(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(filepath.Join(s.baseDir, path)); err != nil && !os.IsNotExist(err) {
		return errs.NewFileDeleteError(path, err)
	}
	return nil
}
