package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/jubilee25/celebration-api/internal/app/registrations"
)

type messageError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type plainError struct {
	Error string `json:"error"`
}

type detailedError struct {
	Error   string `json:"error"`
	Details any    `json:"details"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusUnauthorized, messageError{Error: "Unauthorized", Message: message})
}

func writeForbidden(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusForbidden, messageError{Error: "Forbidden", Message: message})
}

// writeAppError maps an app-layer failure to its envelope. *registrations.Error carries
// its own status; anything else is a data-layer transport failure and becomes a 500
// with the cause in details.
func writeAppError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, fallback string, err error) {
	var ae *registrations.Error
	if errors.As(err, &ae) {
		switch {
		case ae.Status == http.StatusUnprocessableEntity:
			writeJSON(w, ae.Status, detailedError{Error: ae.Message, Details: ae.Details})
		case ae.Status >= 400 && ae.Status < 500:
			writeJSON(w, ae.Status, plainError{Error: ae.Message})
		default:
			writeJSON(w, http.StatusInternalServerError, detailedError{Error: fallback, Details: ae.Message})
		}
		return
	}

	logger.ErrorContext(r.Context(), fallback,
		"error", err,
		"request_id", middleware.GetReqID(r.Context()),
		"path", r.URL.Path,
	)
	writeJSON(w, http.StatusInternalServerError, detailedError{Error: fallback, Details: err.Error()})
}
