package server

import (
	"encoding/json"
	"net/http"

	"github.com/liftlog/liftlog/internal/planner"
)

// handleGeneratePlan runs the questionnaire through the plan generator. Plan
// generation calls the language model and can take a while; the client is
// expected to wait.
func (s *Server) handleGeneratePlan(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	var q planner.Questionnaire
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body.", nil)
		return
	}

	sets, err := s.planner.Generate(r.Context(), userID, q)
	if err != nil {
		s.respondFailure(w, err)
		return
	}
	respondCreated(w, "Workout plan generated.", sets)
}
