package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrDatabaseQuery      = errors.New("database query failed")
	ErrDatabaseConnection = errors.New("database connection failed")
)

func NewAlreadyExists(field string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        fmt.Errorf("%s %w", field, ErrAlreadyExists),
		Field:      field,
	}
}

func NewNotFound(entity string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusNotFound,
		err:        fmt.Errorf("%s %w", entity, ErrNotFound),
	}
}

// NewDatabaseError creates a new database error with details about the operation
func NewDatabaseError(operation, entity string, cause error) *ApiErr {
	details := fmt.Sprintf("Failed to %s %s", operation, entity)

	// Check for common database errors and provide more specific messages
	if cause != nil {
		errStr := cause.Error()
		switch {
		case strings.Contains(errStr, "duplicate key") || strings.Contains(errStr, "UNIQUE constraint"):
			// Duplicate unique-field conflicts report which field collided.
			return &ApiErr{
				StatusCode: http.StatusBadRequest,
				err:        fmt.Errorf("%s %w", duplicateField(errStr, entity), ErrAlreadyExists),
				Details:    details,
				Cause:      cause,
			}
		case strings.Contains(errStr, "record not found"):
			return &ApiErr{
				StatusCode: http.StatusNotFound,
				err:        fmt.Errorf("%s %w", entity, ErrNotFound),
				Details:    details,
				Cause:      cause,
			}
		case strings.Contains(errStr, "foreign key constraint"):
			return &ApiErr{
				StatusCode: http.StatusBadRequest,
				err:        fmt.Errorf("invalid reference in %s", entity),
				Details:    "The referenced resource does not exist or cannot be linked",
				Cause:      cause,
			}
		case strings.Contains(errStr, "connection"):
			return &ApiErr{
				StatusCode: http.StatusServiceUnavailable,
				err:        ErrDatabaseConnection,
				Details:    "Unable to connect to database",
				Cause:      cause,
			}
		}
	}

	// Generic database error
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrDatabaseQuery,
		Details:    details,
		Cause:      cause,
	}
}

// duplicateField extracts the colliding column from a unique-violation
// message, falling back to the entity name when the driver message carries
// no recognizable column reference.
func duplicateField(errStr, entity string) string {
	// postgres: duplicate key value violates unique constraint "idx_users_email"
	// sqlite:   UNIQUE constraint failed: users.email (2067)
	if i := strings.LastIndex(errStr, "."); i >= 0 && i < len(errStr)-1 {
		candidate := strings.TrimSpace(errStr[i+1:])
		// Drop a trailing driver error code or anything past the column name.
		if j := strings.IndexAny(candidate, " ("); j >= 0 {
			candidate = candidate[:j]
		}
		if candidate != "" && !strings.Contains(candidate, "\"") {
			return candidate
		}
	}
	if i := strings.Index(errStr, "idx_"); i >= 0 {
		rest := errStr[i+len("idx_"):]
		if j := strings.IndexAny(rest, "\" "); j > 0 {
			rest = rest[:j]
		}
		if k := strings.Index(rest, "_"); k >= 0 && k < len(rest)-1 {
			return rest[k+1:]
		}
	}
	return entity
}
