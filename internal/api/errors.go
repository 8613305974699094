package api

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"

	"example.com/runtracker/internal/logging"
	"example.com/runtracker/internal/validation"
)

const (
	unexpectedMessage = "An unexpected error occurred."
	validationMessage = "Some validation errors occurred."
)

// ErrorResponse is the body of 400 and 500 responses.
type ErrorResponse struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// endpoint is an HTTP handler that reports failures instead of writing them.
type endpoint func(w http.ResponseWriter, r *http.Request) error

// Validation answers *validation.Error with 400 and the failure map. Other
// errors pass through.
func Validation(next endpoint) endpoint {
	return func(w http.ResponseWriter, r *http.Request) error {
		err := next(w, r)
		if err == nil {
			return nil
		}
		var verr *validation.Error
		if !errors.As(err, &verr) {
			return err
		}
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Message: validationMessage,
			Errors:  verr.Failures,
		})
		return nil
	}
}

// Unexpected is the outermost stage: any error or panic that reaches it is
// logged and answered with a generic 500.
func Unexpected(log *logging.Logger, next endpoint) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			log.Error("panic while handling request",
				"method", r.Method,
				"path", r.URL.Path,
				"request_id", middleware.GetReqID(r.Context()),
				"panic", rec,
				"stack", string(debug.Stack()),
			)
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Message: unexpectedMessage})
		}()

		if err := next(w, r); err != nil {
			log.Error("unhandled error while handling request",
				"method", r.Method,
				"path", r.URL.Path,
				"request_id", middleware.GetReqID(r.Context()),
				"error", err,
			)
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Message: unexpectedMessage})
		}
	}
}
