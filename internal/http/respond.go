package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"worklog/internal/core"
	"worklog/internal/services"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeServiceError maps domain and service errors onto HTTP statuses.
// Unmapped errors become an opaque 500; details stay in the log.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, services.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, services.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, services.ErrPasswordTooShort),
		errors.Is(err, core.ErrEmailTaken),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrEmptyUserID),
		errors.Is(err, core.ErrEmptyDescription),
		errors.Is(err, core.ErrInvalidClockTime),
		errors.Is(err, core.ErrEndNotAfterStart),
		errors.Is(err, core.ErrHoursMismatch),
		errors.Is(err, core.ErrEmptyEmail),
		errors.Is(err, core.ErrInvalidEmail),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrInvalidRole),
		errors.Is(err, core.ErrUnknownCategory),
		errors.Is(err, core.ErrUnknownSubcategory):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Unhandled service error",
			"error", err, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON reads the request body into v, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
