package errs

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDatabaseErrorDuplicateKey(t *testing.T) {
	tests := []struct {
		name  string
		cause error
	}{
		{
			name:  "postgres",
			cause: errors.New(`duplicate key value violates unique constraint "idx_users_email"`),
		},
		{
			name:  "sqlite",
			cause: errors.New("UNIQUE constraint failed: users.email"),
		},
		{
			name:  "sqlite with error code",
			cause: errors.New("UNIQUE constraint failed: users.email (2067)"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := NewDatabaseError("create", "user", tt.cause)
			assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
			assert.Equal(t, "email already exists", apiErr.Message())
			assert.ErrorIs(t, apiErr, ErrAlreadyExists)
		})
	}
}

func TestNewDatabaseErrorDuplicateKeyUnknownColumn(t *testing.T) {
	apiErr := NewDatabaseError("create", "user", errors.New("duplicate key value"))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "user already exists", apiErr.Message())
}

func TestNewDatabaseErrorNotFound(t *testing.T) {
	apiErr := NewDatabaseError("find", "project", errors.New("record not found"))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.ErrorIs(t, apiErr, ErrNotFound)
}

func TestNewDatabaseErrorConnection(t *testing.T) {
	apiErr := NewDatabaseError("find", "project", errors.New("connection refused"))
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
}

func TestNewDatabaseErrorGeneric(t *testing.T) {
	cause := errors.New("syntax error at or near SELECT")
	apiErr := NewDatabaseError("find", "project", cause)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, cause, apiErr.Cause)
	assert.Contains(t, apiErr.GetFullError(), "syntax error")
}

func TestValidationErrorCarriesFieldMessages(t *testing.T) {
	apiErr := NewValidationError("name is required", "rating must be between 0 and 5")
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, []string{"name is required", "rating must be between 0 and 5"}, apiErr.Errors)
}
