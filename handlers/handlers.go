package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"eventx/metrics"
	"eventx/models"
)

// Store is the persistence the handlers need. *db.DB implements it.
type Store interface {
	ListEvents(ctx context.Context, f models.EventFilter) ([]models.Event, error)
	FindEvent(ctx context.Context, id int64) (*models.Event, error)
	UserExists(ctx context.Context, id int64) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
	CreateRegistration(ctx context.Context, r *models.Registration) error
	Health(ctx context.Context) error
}

type Handlers struct {
	Store   Store
	Metrics *metrics.Metrics

	// HashCost is the bcrypt cost for new passwords; zero means bcrypt.DefaultCost.
	HashCost int
}

// Result is a successful outcome. Status defaults to 200.
type Result struct {
	Status  int
	Message string
	Data    any
}

// Error is a failed outcome carrying the status and the message the client
// sees. Err is the underlying cause, logged but never serialised.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func fail(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

func failWith(status int, message string, err error) *Error {
	return &Error{Status: status, Message: message, Err: err}
}

// HandlerFunc is an endpoint that returns its outcome instead of writing it.
// ServeHTTP is the one place outcomes become envelopes.
type HandlerFunc func(r *http.Request) (Result, error)

func (fn HandlerFunc) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	res, err := fn(r)
	if err != nil {
		var apiErr *Error
		if !errors.As(err, &apiErr) {
			apiErr = failWith(http.StatusInternalServerError, "Internal server error.", err)
		}
		if apiErr.Status >= http.StatusInternalServerError {
			slog.Error("request failed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", apiErr.Status,
				"error", err,
			)
		}
		SendJSON(w, apiErr.Status, models.Envelope{Success: false, Message: apiErr.Message})
		return
	}

	status := res.Status
	if status == 0 {
		status = http.StatusOK
	}
	SendJSON(w, status, models.Envelope{Success: true, Message: res.Message, Data: res.Data})
}

// SendJSON is a helper for sending JSON responses
func SendJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// NotFound answers unknown routes with a failure envelope.
func NotFound(w http.ResponseWriter, r *http.Request) {
	SendJSON(w, http.StatusNotFound, models.Envelope{Message: "Endpoint not found."})
}

// MethodNotAllowed answers a known route hit with the wrong verb.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	SendJSON(w, http.StatusMethodNotAllowed, models.Envelope{Message: "Invalid request method."})
}

const maxBodyBytes = 1 << 20

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
}

// Health handles GET /health
func (h *Handlers) Health(r *http.Request) (Result, error) {
	if err := h.Store.Health(r.Context()); err != nil {
		return Result{}, failWith(http.StatusServiceUnavailable, "Database unavailable.", err)
	}
	return Result{Message: "OK", Data: map[string]string{"status": "healthy"}}, nil
}
