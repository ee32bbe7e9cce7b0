package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/systemshift/minddump/internal/server/core"
)

// ErrorBody is the payload of every failed request.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes one failure.
type ErrorDetail struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details"`
	Timestamp string         `json:"timestamp"`
}

func statusFor(kind core.Kind) int {
	switch kind {
	case core.KindNotFound:
		return http.StatusNotFound
	case core.KindConflict:
		return http.StatusConflict
	case core.KindValidation:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// writeError maps domain errors to their status code. Anything else is a 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	detail := ErrorDetail{Details: map[string]any{}, Timestamp: formatTime(s.now())}
	status := http.StatusInternalServerError

	var derr *core.Error
	if errors.As(err, &derr) {
		status = statusFor(derr.Kind)
		detail.Code = derr.Code
		detail.Message = derr.Message
		if derr.Details != nil {
			detail.Details = derr.Details
		}
	} else {
		detail.Code = "INTERNAL_ERROR"
		detail.Message = "Internal server error"
		s.log.Error().Err(err).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("unhandled error")
	}

	writeJSON(w, status, ErrorBody{Error: detail})
}

// recoverer turns handler panics into a logged INTERNAL_ERROR response.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			s.log.Error().
				Str("request_id", middleware.GetReqID(r.Context())).
				Bytes("stack", debug.Stack()).
				Msgf("panic: %v", rec)
			s.writeError(w, r, fmt.Errorf("panic: %v", rec))
		}()
		next.ServeHTTP(w, r)
	})
}

func invalidRequest(message string, details map[string]any) *core.Error {
	if details == nil {
		details = map[string]any{}
	}
	return core.Validation("INVALID_REQUEST", message, details)
}

// decodeJSON reads a request body into v. Unknown fields are ignored.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return invalidRequest("Request body is required", nil)
		}
		return invalidRequest(fmt.Sprintf("Invalid JSON body: %v", err), nil)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) routeNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, r, core.NotFound("ROUTE_NOT_FOUND",
		fmt.Sprintf("No route for %s %s", r.Method, r.URL.Path),
		map[string]any{"path": r.URL.Path}))
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, ErrorBody{Error: ErrorDetail{
		Code:      "METHOD_NOT_ALLOWED",
		Message:   fmt.Sprintf("Method %s not allowed on %s", r.Method, r.URL.Path),
		Details:   map[string]any{"method": r.Method},
		Timestamp: formatTime(s.now()),
	}})
}
