package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/km-arc/go-services/framework/container"
)

// ── Errors ───────────────────────────────────────────────────────────────────

// Error is returned by service methods to answer with a specific status.
//
//	return nil, gohttp.Errorf(http.StatusNotFound, "no user %q", id)
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

// Errorf builds an *Error.
func Errorf(status int, format string, args ...any) *Error {
	return &Error{Status: status, Message: fmt.Sprintf(format, args...)}
}

// ── Response ─────────────────────────────────────────────────────────────────

// Response writes JSON envelopes: {"data": ...} or {"message": ...}.
type Response struct {
	w http.ResponseWriter
}

// NewResponse wraps a ResponseWriter.
func NewResponse(w http.ResponseWriter) *Response {
	return &Response{w: w}
}

// JSON sends a JSON response.
func (res *Response) JSON(status int, data any) {
	res.w.Header().Set("Content-Type", "application/json")
	res.w.WriteHeader(status)
	_ = json.NewEncoder(res.w).Encode(data)
}

// Success sends 200 JSON: {"data": v}
func (res *Response) Success(v any) {
	res.JSON(http.StatusOK, envelope{"data": v})
}

// NoContent sends 204 with no body.
func (res *Response) NoContent() {
	res.w.WriteHeader(http.StatusNoContent)
}

// Error sends a JSON error response.
func (res *Response) Error(status int, message string) {
	res.JSON(status, envelope{"message": message})
}

// Failure maps a call error to a response: *Error keeps its status, a
// stopped container answers 503, anything else 500.
func (res *Response) Failure(err error) {
	var httpErr *Error
	switch {
	case errors.As(err, &httpErr):
		res.Error(httpErr.Status, httpErr.Message)
	case errors.Is(err, container.ErrNotRunning):
		res.Error(http.StatusServiceUnavailable, "Service unavailable.")
	default:
		res.Error(http.StatusInternalServerError, "Server Error.")
	}
}

type envelope map[string]any
