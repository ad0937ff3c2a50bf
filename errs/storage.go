package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// File storage errors
var (
	ErrFileWrite    = errors.New("failed to store uploaded file")
	ErrFileDelete   = errors.New("failed to delete stored file")
	ErrNotAnImage   = errors.New("Only image files are allowed")
	ErrFileTooLarge = errors.New("uploaded file exceeds the size limit")
)

func NewFileWriteError(name string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrFileWrite,
		Details:    fmt.Sprintf("Failed to store file %s", name),
		Cause:      cause,
	}
}

func NewFileDeleteError(path string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrFileDelete,
		Details:    fmt.Sprintf("Failed to delete file %s", path),
		Cause:      cause,
	}
}

func NewNotAnImageError(mimeType string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrNotAnImage,
		Details:    fmt.Sprintf("Unsupported content type: %s", mimeType),
		Field:      "backgroundImage",
	}
}

func NewFileTooLargeError(maxBytes int64) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusRequestEntityTooLarge,
		err:        ErrFileTooLarge,
		Details:    fmt.Sprintf("Maximum allowed file size is %d bytes", maxBytes),
		Field:      "backgroundImage",
	}
}
