package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/liftlog/liftlog/internal/models"
)

func paramID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s parameter", name)
	}
	return id, nil
}

func (s *Server) handleListWorkoutSets(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())
	sets, err := s.store.ListWorkoutSets(r.Context(), userID)
	if err != nil {
		s.respondFailure(w, err)
		return
	}
	respondOK(w, "OK", sets)
}

func (s *Server) handleGetWorkoutSet(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())
	id, err := paramID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	set, err := s.store.GetWorkoutSet(r.Context(), id, userID)
	if err != nil {
		s.respondFailure(w, err)
		return
	}
	respondOK(w, "OK", set)
}

type workoutSetRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) handleCreateWorkoutSet(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())
	var req workoutSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body.", nil)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusUnprocessableEntity, "Validation failed.",
			map[string]string{"name": "Name is required."})
		return
	}

	set, err := s.store.CreateWorkoutSet(r.Context(), userID, req.Name, req.Description)
	if err != nil {
		s.respondFailure(w, err)
		return
	}
	respondCreated(w, "Workout set created.", set)
}

func (s *Server) handleUpdateWorkoutSet(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())
	id, err := paramID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	var req workoutSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body.", nil)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusUnprocessableEntity, "Validation failed.",
			map[string]string{"name": "Name is required."})
		return
	}

	set, err := s.store.UpdateWorkoutSet(r.Context(), id, userID, req.Name, req.Description)
	if err != nil {
		s.respondFailure(w, err)
		return
	}
	respondOK(w, "Workout set updated.", set)
}

func (s *Server) handleDeleteWorkoutSet(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())
	id, err := paramID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	if err := s.store.DeleteWorkoutSet(r.Context(), id, userID); err != nil {
		s.respondFailure(w, err)
		return
	}
	respondOK(w, "Workout set deleted.", nil)
}

type exerciseRequest struct {
	Name         string `json:"name"`
	TargetArea   string `json:"target_area"`
	IsBodyweight bool   `json:"is_bodyweight"`
	Description  string `json:"description"`
	RestTime     *int   `json:"rest_time"`
}

func (s *Server) handleCreateExercise(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())
	setID, err := paramID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	var req exerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body.", nil)
		return
	}

	fields := map[string]string{}
	if strings.TrimSpace(req.Name) == "" {
		fields["name"] = "Name is required."
	}
	area := models.TargetArea(req.TargetArea)
	if !area.Valid() {
		fields["target_area"] = "Unknown target area."
	}
	if len(fields) > 0 {
		respondError(w, http.StatusUnprocessableEntity, "Validation failed.", fields)
		return
	}

	ex := &models.Exercise{
		WorkoutSetID: setID,
		Name:         req.Name,
		TargetArea:   area,
		IsBodyweight: req.IsBodyweight,
		Description:  req.Description,
	}
	if req.RestTime != nil && *req.RestTime >= 0 {
		ex.RestTime = *req.RestTime
	} else {
		ex.RestTime = 120
	}

	created, err := s.store.CreateExercise(r.Context(), userID, ex)
	if err != nil {
		s.respondFailure(w, err)
		return
	}
	respondCreated(w, "Exercise created.", created)
}

func (s *Server) handleDeleteExercise(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())
	id, err := paramID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	if err := s.store.DeleteExercise(r.Context(), id, userID); err != nil {
		s.respondFailure(w, err)
		return
	}
	respondOK(w, "Exercise deleted.", nil)
}

func (s *Server) handleUpdateRestTime(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())
	id, err := paramID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	var req struct {
		RestTime *int `json:"rest_time"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body.", nil)
		return
	}
	if req.RestTime == nil || *req.RestTime < 0 {
		respondError(w, http.StatusUnprocessableEntity, "Validation failed.",
			map[string]string{"rest_time": "Rest time must be zero or more seconds."})
		return
	}

	if err := s.store.UpdateExerciseRestTime(r.Context(), id, userID, *req.RestTime); err != nil {
		s.respondFailure(w, err)
		return
	}
	respondOK(w, "Rest time updated.", map[string]int{"rest_time": *req.RestTime})
}

func (s *Server) handleUpdateMemo(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())
	id, err := paramID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	var req struct {
		Memo string `json:"memo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body.", nil)
		return
	}

	ex, err := s.store.UpdateExerciseMemo(r.Context(), id, userID, req.Memo)
	if err != nil {
		s.respondFailure(w, err)
		return
	}
	respondOK(w, "Memo updated.", ex)
}

func (s *Server) handleAppendInstance(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())
	exerciseID, err := paramID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	inst, err := s.store.AppendInstance(r.Context(), exerciseID, userID)
	if err != nil {
		s.respondFailure(w, err)
		return
	}
	respondCreated(w, "Set added.", inst)
}

func (s *Server) handleRemoveLatestInstance(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())
	exerciseID, err := paramID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	if err := s.store.RemoveLatestInstance(r.Context(), exerciseID, userID); err != nil {
		s.respondFailure(w, err)
		return
	}
	respondOK(w, "Set removed.", nil)
}

type instanceUpdateRequest struct {
	Action string   `json:"action"`
	Weight *float64 `json:"weight"`
	Reps   *int     `json:"reps"`
}

// handleUpdateInstance dispatches on the action field: "weight" updates the
// stored weight (nil clears it), "reps" updates the rep count.
func (s *Server) handleUpdateInstance(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())
	id, err := paramID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	var req instanceUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body.", nil)
		return
	}

	var inst *models.ExerciseInstance
	switch req.Action {
	case "weight":
		if req.Weight != nil && *req.Weight < 0 {
			respondError(w, http.StatusUnprocessableEntity, "Validation failed.",
				map[string]string{"weight": "Weight must be zero or more."})
			return
		}
		inst, err = s.store.UpdateInstanceWeight(r.Context(), id, userID, req.Weight)
	case "reps":
		if req.Reps != nil && *req.Reps < 0 {
			respondError(w, http.StatusUnprocessableEntity, "Validation failed.",
				map[string]string{"reps": "Reps must be zero or more."})
			return
		}
		inst, err = s.store.UpdateInstanceReps(r.Context(), id, userID, req.Reps)
	default:
		respondError(w, http.StatusUnprocessableEntity, "Validation failed.",
			map[string]string{"action": "Action must be weight or reps."})
		return
	}
	if err != nil {
		s.respondFailure(w, err)
		return
	}
	respondOK(w, "Set updated.", inst)
}
