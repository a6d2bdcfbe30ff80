package server

import (
	"encoding/json"
	"net/http"

	"github.com/liftlog/liftlog/internal/session"
)

func (s *Server) sessionKey(r *http.Request) (session.Key, error) {
	userID, _ := UserID(r.Context())
	setID, err := paramID(r, "id")
	if err != nil {
		return session.Key{}, err
	}
	return session.Key{UserID: userID, WorkoutSetID: setID}, nil
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	key, err := s.sessionKey(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	sess, err := s.tracker.Session(key)
	if err != nil {
		s.respondFailure(w, err)
		return
	}
	respondOK(w, "OK", sess)
}

type sessionRecordRequest struct {
	ExerciseID  int64    `json:"exercise_id"`
	InstanceID  int64    `json:"instance_id"`
	IsCompleted *bool    `json:"is_completed"`
	Weight      *float64 `json:"weight"`
	Reps        *int     `json:"reps"`
}

// handleRecordSession merges a partial progress update into the tracked
// session. Absent fields keep their previously recorded values.
func (s *Server) handleRecordSession(w http.ResponseWriter, r *http.Request) {
	key, err := s.sessionKey(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	var req sessionRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body.", nil)
		return
	}
	if req.ExerciseID <= 0 || req.InstanceID <= 0 {
		respondError(w, http.StatusUnprocessableEntity, "Validation failed.",
			map[string]string{"instance_id": "Exercise and instance ids are required."})
		return
	}

	sess, err := s.tracker.Record(key, req.ExerciseID, req.InstanceID, session.Update{
		Completed: req.IsCompleted,
		Weight:    req.Weight,
		Reps:      req.Reps,
	})
	if err != nil {
		s.respondFailure(w, err)
		return
	}
	respondOK(w, "Progress recorded.", sess)
}

func (s *Server) handleClearSession(w http.ResponseWriter, r *http.Request) {
	key, err := s.sessionKey(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	if err := s.tracker.Clear(key); err != nil {
		s.respondFailure(w, err)
		return
	}
	respondOK(w, "Session cleared.", nil)
}
