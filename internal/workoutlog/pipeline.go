// Package workoutlog turns a finished workout session into immutable
// aggregate log rows. Client-submitted weights and reps are never persisted:
// only the completion flags and instance identities are trusted, and the
// authoritative instance rows are re-read from storage before aggregating.
package workoutlog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/liftlog/liftlog/internal/models"
	"github.com/liftlog/liftlog/internal/storage"
)

// Store is the slice of the storage layer the pipeline needs. *storage.DB
// satisfies it; tests use a fake.
type Store interface {
	GetWorkoutSet(ctx context.Context, id, userID int64) (*models.WorkoutSet, error)
	GetExercise(ctx context.Context, id, userID int64) (*models.Exercise, error)
	GetInstancesByIDs(ctx context.Context, exerciseID int64, ids []int64) ([]models.ExerciseInstance, error)
	InsertWorkoutLogs(ctx context.Context, batchID uuid.UUID, userID, workoutSetID int64, logs []models.WorkoutLog) error
}

var _ Store = (*storage.DB)(nil)

// Result reports what a successful flush wrote, echoed back to the caller so
// the client knows to clear its session and not re-submit.
type Result struct {
	RowsWritten int
	Message     string
}

// Pipeline aggregates finished sessions into workout_logs rows.
type Pipeline struct {
	store Store
	log   *slog.Logger
	now   func() time.Time
}

// New creates a Pipeline. now is the clock used to stamp performed_on; pass
// nil for time.Now. A nil log falls back to slog.Default.
func New(store Store, log *slog.Logger, now func() time.Time) *Pipeline {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{store: store, log: log, now: now}
}

// Finish validates the session, re-reads the completed instances from
// storage, buckets them by stored weight per exercise, and writes one log row
// per bucket in a single transactional batch.
//
// Error taxonomy: *ValidationError (no set id, nothing completed),
// ErrSetNotFound (set absent or not owned), ErrAlreadyLogged (duplicate batch
// token), anything else is an internal failure with no rows written.
func (p *Pipeline) Finish(ctx context.Context, userID int64, session *models.WorkoutSession) (*Result, error) {
	if session == nil || session.WorkoutSetID == 0 {
		return nil, validationErr("workout_set_id is required", map[string]string{"workout_set_id": "required"})
	}
	if _, err := p.store.GetWorkoutSet(ctx, session.WorkoutSetID, userID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrSetNotFound
		}
		return nil, fmt.Errorf("resolving workout set: %w", err)
	}

	if len(session.Exercises) == 0 {
		return nil, validationErr("No exercises provided.", nil)
	}

	completed := session.CompletedByExercise()
	if len(completed) == 0 {
		return nil, validationErr("Complete at least one set.", nil)
	}

	// Sorted iteration: the emitted row order must not depend on map order.
	exerciseIDs := make([]int64, 0, len(completed))
	for id := range completed {
		exerciseIDs = append(exerciseIDs, id)
	}
	sort.Slice(exerciseIDs, func(i, j int) bool { return exerciseIDs[i] < exerciseIDs[j] })

	y, m, d := p.now().Date()
	performedOn := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	var logs []models.WorkoutLog

	for _, exerciseID := range exerciseIDs {
		exercise, err := p.store.GetExercise(ctx, exerciseID, userID)
		if errors.Is(err, storage.ErrNotFound) {
			// Stale client reference — skip this exercise, keep the batch.
			p.log.Warn("skipping unknown exercise", "exercise_id", exerciseID)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("resolving exercise %d: %w", exerciseID, err)
		}

		instanceIDs := completed[exerciseID]
		sort.Slice(instanceIDs, func(i, j int) bool { return instanceIDs[i] < instanceIDs[j] })

		instances, err := p.store.GetInstancesByIDs(ctx, exerciseID, instanceIDs)
		if err != nil {
			return nil, fmt.Errorf("fetching instances for exercise %d: %w", exerciseID, err)
		}
		if len(instances) == 0 {
			continue
		}

		logs = append(logs, bucketByWeight(userID, exercise, instances, performedOn)...)
	}

	if len(logs) == 0 {
		return nil, validationErr("Complete at least one set.", nil)
	}

	batchID, err := batchToken(session.SessionID)
	if err != nil {
		return nil, validationErr("session_id must be a UUID", map[string]string{"session_id": "invalid"})
	}

	if err := p.store.InsertWorkoutLogs(ctx, batchID, userID, session.WorkoutSetID, logs); err != nil {
		if errors.Is(err, storage.ErrDuplicateBatch) {
			return nil, ErrAlreadyLogged
		}
		return nil, fmt.Errorf("writing workout logs: %w", err)
	}

	p.log.Info("workout logged",
		"user_id", userID,
		"workout_set_id", session.WorkoutSetID,
		"rows", len(logs),
		"batch_id", batchID,
	)
	return &Result{
		RowsWritten: len(logs),
		Message:     "Workout logged successfully.",
	}, nil
}

// bucketByWeight groups one exercise's completed instances by their stored
// weight and emits one log row per bucket. A NULL weight counts as 0
// (bodyweight sets contribute their reps but no tonnage).
func bucketByWeight(userID int64, exercise *models.Exercise, instances []models.ExerciseInstance, performedOn time.Time) []models.WorkoutLog {
	buckets := make(map[float64][]models.ExerciseInstance)
	for _, inst := range instances {
		w := 0.0
		if inst.Weight != nil {
			w = *inst.Weight
		}
		buckets[w] = append(buckets[w], inst)
	}

	weights := make([]float64, 0, len(buckets))
	for w := range buckets {
		weights = append(weights, w)
	}
	sort.Float64s(weights)

	logs := make([]models.WorkoutLog, 0, len(buckets))
	for _, w := range weights {
		group := buckets[w]
		sets := len(group)
		totalReps := 0
		for _, inst := range group {
			if inst.Reps != nil {
				totalReps += *inst.Reps
			}
		}
		logs = append(logs, models.WorkoutLog{
			UserID:      userID,
			TargetArea:  exercise.TargetArea.String(),
			Weight:      w,
			Sets:        sets,
			TotalReps:   totalReps,
			Volume:      float64(sets) * float64(totalReps) * w,
			RestTime:    exercise.RestTime,
			PerformedOn: performedOn,
		})
	}
	return logs
}

// batchToken returns the client-supplied session UUID, or a fresh one when
// the client sent none (older clients — those get no cross-request
// idempotency, matching their previous behavior).
func batchToken(sessionID string) (uuid.UUID, error) {
	if sessionID == "" {
		return uuid.New(), nil
	}
	return uuid.Parse(sessionID)
}
