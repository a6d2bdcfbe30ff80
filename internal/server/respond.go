package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/liftlog/liftlog/internal/genai"
	"github.com/liftlog/liftlog/internal/planner"
	"github.com/liftlog/liftlog/internal/storage"
	"github.com/liftlog/liftlog/internal/workoutlog"
)

// envelope is the uniform response shape for every API endpoint.
type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    any               `json:"data,omitempty"`
	Meta    any               `json:"meta,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondOK(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: message, Data: data})
}

func respondCreated(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusCreated, envelope{Success: true, Message: message, Data: data})
}

func respondMeta(w http.ResponseWriter, message string, data, meta any) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: message, Data: data, Meta: meta})
}

func respondError(w http.ResponseWriter, status int, message string, fields map[string]string) {
	writeJSON(w, status, envelope{Success: false, Message: message, Errors: fields})
}

// respondFailure maps domain errors to HTTP status codes. Anything not
// recognized is a 500 and gets logged; recognized errors carry their own
// user-facing message.
func (s *Server) respondFailure(w http.ResponseWriter, err error) {
	var vErr *workoutlog.ValidationError
	switch {
	case errors.As(err, &vErr):
		respondError(w, http.StatusUnprocessableEntity, vErr.Msg, vErr.Fields)
	case errors.Is(err, workoutlog.ErrSetNotFound), errors.Is(err, storage.ErrNotFound):
		respondError(w, http.StatusNotFound, "Not found.", nil)
	case errors.Is(err, planner.ErrInvalid):
		respondError(w, http.StatusUnprocessableEntity, err.Error(), nil)
	case errors.Is(err, genai.ErrUnavailable):
		respondError(w, http.StatusBadGateway, "Analysis is temporarily unavailable. Please try again later.", nil)
	default:
		s.log.Error("request failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Something went wrong.", nil)
	}
}
