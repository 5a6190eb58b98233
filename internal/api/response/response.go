package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Rrens/article-hub/internal/domain"
	"github.com/rs/zerolog/log"
)

// Stable error codes carried in every error body
const (
	CodeConflict       = "conflict"
	CodeAuthentication = "authentication_failed"
	CodeForbidden      = "forbidden"
	CodeNotFound       = "not_found"
	CodeValidation     = "validation_failed"
	CodeBadRequest     = "bad_request"
	CodeRateLimited    = "rate_limited"
	CodeInternal       = "internal_error"
)

// Response represents a standard API response
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// ErrorBody is the error part of a failed response
type ErrorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// JSON sends a JSON response
func JSON(w http.ResponseWriter, status int, data any) {
	write(w, status, Response{
		Success: status >= 200 && status < 300,
		Data:    data,
	})
}

// Error sends an error response
func Error(w http.ResponseWriter, status int, code, message string) {
	write(w, status, Response{
		Error: &ErrorBody{Code: code, Message: message},
	})
}

// ValidationError sends a 422 response listing the offending fields
func ValidationError(w http.ResponseWriter, fields map[string]string) {
	write(w, http.StatusUnprocessableEntity, Response{
		Error: &ErrorBody{
			Code:    CodeValidation,
			Message: "Request validation failed",
			Fields:  fields,
		},
	})
}

// FromError maps a service error to its status code and body. Errors
// without a known kind are logged and reported as a generic 500.
func FromError(w http.ResponseWriter, r *http.Request, err error) {
	message := err.Error()
	var tagged *domain.Error
	if errors.As(err, &tagged) {
		message = tagged.Message
	}

	switch {
	case errors.Is(err, domain.ErrConflict):
		Error(w, http.StatusBadRequest, CodeConflict, message)
	case errors.Is(err, domain.ErrAuthentication):
		Unauthorized(w, message)
	case errors.Is(err, domain.ErrForbidden):
		Forbidden(w, message)
	case errors.Is(err, domain.ErrNotFound):
		NotFound(w, message)
	default:
		log.Ctx(r.Context()).Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("Request failed")
		InternalError(w)
	}
}

// NoContent sends a 204 No Content response
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Created sends a 201 Created response with data
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, data)
}

// OK sends a 200 OK response with data
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// Accepted sends a 202 Accepted response with data
func Accepted(w http.ResponseWriter, data any) {
	JSON(w, http.StatusAccepted, data)
}

// BadRequest sends a 400 Bad Request response
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, CodeBadRequest, message)
}

// Unauthorized sends a 401 response with a bearer challenge
func Unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	Error(w, http.StatusUnauthorized, CodeAuthentication, message)
}

// Forbidden sends a 403 Forbidden response
func Forbidden(w http.ResponseWriter, message string) {
	Error(w, http.StatusForbidden, CodeForbidden, message)
}

// NotFound sends a 404 Not Found response
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, CodeNotFound, message)
}

// TooManyRequests sends a 429 response
func TooManyRequests(w http.ResponseWriter) {
	Error(w, http.StatusTooManyRequests, CodeRateLimited, "Rate limit exceeded")
}

// InternalError sends a 500 response without details
func InternalError(w http.ResponseWriter) {
	Error(w, http.StatusInternalServerError, CodeInternal, "Internal server error")
}

func write(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}
