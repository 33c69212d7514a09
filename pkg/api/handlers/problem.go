// Package handlers implements the HTTP API endpoints.
//
// Error responses follow RFC 7807 (application/problem+json). Success
// responses are plain JSON written through the WriteJSON helpers.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/snapfile/snapfile/internal/logger"
)

// ContentTypeProblemJSON is the media type for RFC 7807 problem details.
const ContentTypeProblemJSON = "application/problem+json"

// Problem is an RFC 7807 problem details response body.
type Problem struct {
	// Type is a URI reference identifying the problem type.
	// Defaults to "about:blank" when no specific type applies.
	Type string `json:"type"`

	// Title is a short, human-readable summary of the problem.
	Title string `json:"title"`

	// Status is the HTTP status code.
	Status int `json:"status"`

	// Detail is a human-readable explanation specific to this occurrence.
	Detail string `json:"detail,omitempty"`
}

// WriteProblem writes an RFC 7807 problem details response.
func WriteProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", ContentTypeProblemJSON)
	w.WriteHeader(status)

	problem := Problem{
		Type:   "about:blank",
		Title:  title,
		Status: status,
		Detail: detail,
	}

	if err := json.NewEncoder(w).Encode(problem); err != nil {
		logger.Error("failed to encode problem response", logger.Err(err))
	}
}

// BadRequest writes a 400 problem response.
func BadRequest(w http.ResponseWriter, detail string) {
	WriteProblem(w, http.StatusBadRequest, "Bad Request", detail)
}

// Unauthorized writes a 401 problem response.
func Unauthorized(w http.ResponseWriter, detail string) {
	WriteProblem(w, http.StatusUnauthorized, "Unauthorized", detail)
}

// Forbidden writes a 403 problem response.
func Forbidden(w http.ResponseWriter, detail string) {
	WriteProblem(w, http.StatusForbidden, "Forbidden", detail)
}

// NotFound writes a 404 problem response.
func NotFound(w http.ResponseWriter, detail string) {
	WriteProblem(w, http.StatusNotFound, "Not Found", detail)
}

// Conflict writes a 409 problem response.
func Conflict(w http.ResponseWriter, detail string) {
	WriteProblem(w, http.StatusConflict, "Conflict", detail)
}

// TooManyRequests writes a 429 problem response.
func TooManyRequests(w http.ResponseWriter, detail string) {
	WriteProblem(w, http.StatusTooManyRequests, "Too Many Requests", detail)
}

// InternalServerError writes a 500 problem response.
// The detail is intentionally generic so internals never leak to clients.
func InternalServerError(w http.ResponseWriter) {
	WriteProblem(w, http.StatusInternalServerError, "Internal Server Error", "an unexpected error occurred")
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode JSON response", logger.Err(err))
	}
}

// WriteJSONOK writes a 200 JSON response.
func WriteJSONOK(w http.ResponseWriter, v any) {
	WriteJSON(w, http.StatusOK, v)
}

// WriteJSONCreated writes a 201 JSON response.
func WriteJSONCreated(w http.ResponseWriter, v any) {
	WriteJSON(w, http.StatusCreated, v)
}

// WriteNoContent writes a 204 response with no body.
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
