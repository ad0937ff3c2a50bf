package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// SavedFile describes a stored upload. Path is the backend-relative
// location used for later deletion, URL the public-facing one.
type SavedFile struct {
	Filename     string
	OriginalName string
	MimeType     string
	Size         int64
	Path         string
	URL          string
}

// FileStore abstracts where uploaded project images live, so the record
// write and the file write stay swappable independently of each other.
type FileStore interface {
	Save(ctx context.Context, r io.Reader, originalName, mimeType string, size int64) (SavedFile, error)
	Delete(ctx context.Context, path string) error
}

// uniqueName generates a collision-free stored filename, preserving the
// original extension.
func uniqueName(originalName string) string {
	ext := filepath.Ext(originalName)
	return fmt.Sprintf("project-%d-%s%s", time.Now().UnixMilli(), uuid.NewString()[:8], ext)
}
