// Package api exposes the activity and workout endpoints over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"example.com/runtracker/internal/activities"
	"example.com/runtracker/internal/logging"
	"example.com/runtracker/internal/mediator"
	"example.com/runtracker/internal/validation"
	"example.com/runtracker/internal/workouts"
)

// Handler translates HTTP requests into commands and queries.
type Handler struct {
	log            *logging.Logger
	createActivity mediator.Sender[activities.CreateActivity, activities.Created]
	getActivity    mediator.Sender[activities.GetActivity, *activities.Details]
	createWorkout  mediator.Sender[workouts.CreateWorkout, workouts.Created]
	getWorkout     mediator.Sender[workouts.GetWorkout, *workouts.Details]
}

// NewHandler binds every request the API sends. It fails when a handler is
// missing from m.
func NewHandler(m *mediator.Mediator, log *logging.Logger) (*Handler, error) {
	h := &Handler{log: log}
	var errs []error
	var err error

	if h.createActivity, err = mediator.Bind[activities.CreateActivity, activities.Created](m); err != nil {
		errs = append(errs, err)
	}
	if h.getActivity, err = mediator.Bind[activities.GetActivity, *activities.Details](m); err != nil {
		errs = append(errs, err)
	}
	if h.createWorkout, err = mediator.Bind[workouts.CreateWorkout, workouts.Created](m); err != nil {
		errs = append(errs, err)
	}
	if h.getWorkout, err = mediator.Bind[workouts.GetWorkout, *workouts.Details](m); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("api: bind handlers: %w", errors.Join(errs...))
	}
	return h, nil
}

// RegisterRoutes wires endpoints to the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", healthz)
	r.Post("/activities", h.wrap(h.postActivity))
	r.Get("/activities/{activityId}", h.wrap(h.fetchActivity))
	r.Post("/workouts", h.wrap(h.postWorkout))
	r.Get("/workouts/{workoutId}", h.wrap(h.fetchWorkout))
}

func (h *Handler) wrap(e endpoint) http.HandlerFunc {
	return Unexpected(h.log, Validation(e))
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) postActivity(w http.ResponseWriter, r *http.Request) error {
	var cmd activities.CreateActivity
	if err := decodeBody(r, &cmd); err != nil {
		return err
	}
	created, err := h.createActivity(r.Context(), cmd)
	if err != nil {
		return err
	}
	w.Header().Set("Location", fmt.Sprintf("/activities/%d", created.ActivityID))
	writeJSON(w, http.StatusCreated, created)
	return nil
}

func (h *Handler) fetchActivity(w http.ResponseWriter, r *http.Request) error {
	id, ok := pathID(r, "activityId")
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return nil
	}
	details, err := h.getActivity(r.Context(), activities.GetActivity{ActivityID: id})
	if err != nil {
		return err
	}
	if details == nil {
		w.WriteHeader(http.StatusNotFound)
		return nil
	}
	writeJSON(w, http.StatusOK, details)
	return nil
}

func (h *Handler) postWorkout(w http.ResponseWriter, r *http.Request) error {
	var cmd workouts.CreateWorkout
	if err := decodeBody(r, &cmd); err != nil {
		return err
	}
	created, err := h.createWorkout(r.Context(), cmd)
	if err != nil {
		return err
	}
	w.Header().Set("Location", fmt.Sprintf("/workouts/%d", created.WorkoutID))
	writeJSON(w, http.StatusCreated, created)
	return nil
}

func (h *Handler) fetchWorkout(w http.ResponseWriter, r *http.Request) error {
	id, ok := pathID(r, "workoutId")
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return nil
	}
	details, err := h.getWorkout(r.Context(), workouts.GetWorkout{WorkoutID: id})
	if err != nil {
		return err
	}
	if details == nil {
		w.WriteHeader(http.StatusNotFound)
		return nil
	}
	writeJSON(w, http.StatusOK, details)
	return nil
}

// pathID parses an integer route parameter. Anything else does not match
// the route, so callers answer 404.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil
}

// decodeBody reads a JSON body into dst. Malformed input is reported as a
// validation failure keyed by the offending field, or "body" when no field
// can be blamed.
func decodeBody(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return validation.NewError(typeErr.Field, fmt.Sprintf("'%s' has an invalid value.", typeErr.Field))
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF), errors.As(err, &syntaxErr):
		return validation.NewError("body", "The request body is not valid JSON.")
	default:
		return validation.NewError("body", "The request body could not be read.")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
