package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/liftlog/liftlog/internal/models"
	"github.com/liftlog/liftlog/internal/session"
	"github.com/liftlog/liftlog/internal/workoutlog"
)

type finishRequest struct {
	WorkoutSetID int64                                       `json:"workout_set_id"`
	SessionID    string                                      `json:"session_id"`
	Exercises    map[int64]map[int64]models.InstanceProgress `json:"exercises"`
}

// handleFinishWorkout flushes a completed workout through the aggregation
// pipeline. The client may submit its own progress payload; when it sends
// none, the server-side tracked session is used. The tracked session is
// cleared only after the batch is confirmed written (or known duplicate).
func (s *Server) handleFinishWorkout(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	var req finishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body.", nil)
		return
	}
	if req.WorkoutSetID <= 0 {
		respondError(w, http.StatusUnprocessableEntity, "Validation failed.",
			map[string]string{"workout_set_id": "Workout set id is required."})
		return
	}

	key := session.Key{UserID: userID, WorkoutSetID: req.WorkoutSetID}
	sess := &models.WorkoutSession{
		WorkoutSetID: req.WorkoutSetID,
		UserID:       userID,
		SessionID:    req.SessionID,
		Exercises:    req.Exercises,
	}
	if len(sess.Exercises) == 0 {
		tracked, err := s.tracker.Session(key)
		if err != nil {
			s.respondFailure(w, err)
			return
		}
		sess = tracked
	}

	result, err := s.pipeline.Finish(r.Context(), userID, sess)
	if err != nil {
		if errors.Is(err, workoutlog.ErrAlreadyLogged) {
			if clearErr := s.tracker.Clear(key); clearErr != nil {
				s.log.Warn("clearing session after duplicate batch", "error", clearErr)
			}
			respondOK(w, "Workout already logged.", nil)
			return
		}
		s.respondFailure(w, err)
		return
	}

	if clearErr := s.tracker.Clear(key); clearErr != nil {
		s.log.Warn("clearing session after flush", "error", clearErr)
	}
	respondOK(w, result.Message, map[string]int{"rows_written": result.RowsWritten})
}

func (s *Server) handleRecentLogs(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			respondError(w, http.StatusBadRequest, "invalid limit parameter", nil)
			return
		}
		limit = n
	}

	logs, err := s.store.RecentWorkoutLogs(r.Context(), userID, limit)
	if err != nil {
		s.respondFailure(w, err)
		return
	}
	respondOK(w, "OK", logs)
}

// monthParams reads optional year/month query parameters, defaulting to the
// current month.
func monthParams(r *http.Request, now time.Time) (year, month int, err error) {
	year, month = now.Year(), int(now.Month())
	if v := r.URL.Query().Get("year"); v != "" {
		year, err = strconv.Atoi(v)
		if err != nil || year < 1 {
			return 0, 0, fmt.Errorf("invalid year parameter")
		}
	}
	if v := r.URL.Query().Get("month"); v != "" {
		month, err = strconv.Atoi(v)
		if err != nil || month < 1 || month > 12 {
			return 0, 0, fmt.Errorf("invalid month parameter")
		}
	}
	return year, month, nil
}

func (s *Server) handleVolumeOverTime(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())
	year, month, err := monthParams(r, time.Now())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	series, err := s.store.VolumeOverTime(r.Context(), userID, year, month)
	if err != nil {
		s.respondFailure(w, err)
		return
	}
	respondMeta(w, "OK", series, map[string]int{"year": year, "month": month})
}

func (s *Server) handleVolumeByMuscle(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())
	year, month, err := monthParams(r, time.Now())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	rows, err := s.store.VolumeByMuscle(r.Context(), userID, year, month)
	if err != nil {
		s.respondFailure(w, err)
		return
	}
	respondMeta(w, "OK", rows, map[string]int{"year": year, "month": month})
}

type analysisRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// handleAnalysis turns the month's volume series into a narrative summary
// from the language model.
func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	var req analysisRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid JSON body.", nil)
			return
		}
	}
	now := time.Now()
	year, month := req.Year, req.Month
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = int(now.Month())
	}
	if month < 1 || month > 12 {
		respondError(w, http.StatusUnprocessableEntity, "Validation failed.",
			map[string]string{"month": "Month must be between 1 and 12."})
		return
	}

	series, err := s.store.VolumeOverTime(r.Context(), userID, year, month)
	if err != nil {
		s.respondFailure(w, err)
		return
	}
	if len(series) == 0 {
		respondOK(w, "No training volume recorded for this period.", nil)
		return
	}

	text, err := s.ai.Chat(r.Context(), analysisPrompt(series, year, month), nil)
	if err != nil {
		s.respondFailure(w, err)
		return
	}
	respondOK(w, "Analysis generated.", map[string]string{"analysis": text})
}

func analysisPrompt(series []models.DailyVolume, year, month int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a personal trainer reviewing a client's training log for %d-%02d.\n", year, month)
	b.WriteString("Daily total training volume (sets x reps x weight):\n")
	for _, d := range series {
		fmt.Fprintf(&b, "- %s: %.0f\n", d.PerformedOn, d.TotalVolume)
	}
	b.WriteString("\nIn a short paragraph, summarize the training consistency and volume trend, ")
	b.WriteString("and give one concrete suggestion for next month. Plain text only.")
	return b.String()
}
