package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/myaicommunity/agenthub/errs"
)

type Responder struct {
	logger zerolog.Logger
}

func NewResponder(logger zerolog.Logger) Responder {
	return Responder{logger}
}

// successEnvelope is the shape every non-error response carries.
type successEnvelope struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

func (r Responder) writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	// Marshal first so an encoding failure never produces a half-written
	// 200 response.
	jsonData, err := json.Marshal(body)
	if err != nil {
		r.logger.Error().Err(err).Msg("error marshaling response data")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(statusCode)
	if _, err := w.Write(jsonData); err != nil {
		r.logger.Error().Err(err).Msg("error writing response")
	}
}

// WriteData writes a success envelope carrying data.
func (r Responder) WriteData(w http.ResponseWriter, statusCode int, message string, data any) {
	r.writeJSON(w, statusCode, successEnvelope{Success: true, Message: message, Data: data})
}

// WritePage writes a success envelope carrying one page of data plus its
// pagination summary.
func (r Responder) WritePage(w http.ResponseWriter, data any, pagination Pagination) {
	r.writeJSON(w, http.StatusOK, successEnvelope{Success: true, Data: data, Pagination: &pagination})
}

// WriteMessage writes a success envelope with no data payload.
func (r Responder) WriteMessage(w http.ResponseWriter, message string) {
	r.writeJSON(w, http.StatusOK, successEnvelope{Success: true, Message: message})
}

// WriteError translates any error into the failure envelope. This is the
// single point mapping internal failures to the HTTP taxonomy.
func (r Responder) WriteError(w http.ResponseWriter, err error) {
	var apiErr *errs.ApiErr

	// For unexpected errors, log and echo the underlying message as a 500.
	if !errors.As(err, &apiErr) {
		r.logger.Error().Msg(err.Error())
		r.writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Success: false,
			Message: err.Error(),
		})
		return
	}

	if apiErr.StatusCode >= http.StatusInternalServerError {
		r.logger.Error().Msg(apiErr.GetFullError())
	}

	r.writeJSON(w, apiErr.StatusCode, ErrorResponse{
		Success: false,
		Message: apiErr.Message(),
		Errors:  apiErr.Errors,
	})
}

// wrapDatabaseError wraps a database error with context information
func wrapDatabaseError(operation, entity string, cause error) error {
	return errs.NewDatabaseError(operation, entity, cause)
}
