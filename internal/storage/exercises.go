package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/liftlog/liftlog/internal/models"
)

// GetExercise returns one exercise without instances. Ownership is checked
// through the owning workout set.
func (db *DB) GetExercise(ctx context.Context, id, userID int64) (*models.Exercise, error) {
	ex := &models.Exercise{}
	err := db.Pool.QueryRow(ctx, `
		SELECT e.id, e.workout_set_id, e.name, COALESCE(e.target_area, ''), e.is_bodyweight,
		       COALESCE(e.description, ''), COALESCE(e.memo, ''), e.rest_time, e.created_at, e.updated_at
		FROM exercises e
		JOIN workout_sets ws ON ws.id = e.workout_set_id
		WHERE e.id = $1 AND ws.user_id = $2
	`, id, userID).Scan(&ex.ID, &ex.WorkoutSetID, &ex.Name, &ex.TargetArea, &ex.IsBodyweight,
		&ex.Description, &ex.Memo, &ex.RestTime, &ex.CreatedAt, &ex.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying exercise: %w", err)
	}
	return ex, nil
}

// CreateExercise adds an exercise to a workout set the user owns.
func (db *DB) CreateExercise(ctx context.Context, userID int64, ex *models.Exercise) (*models.Exercise, error) {
	// Ownership check on the parent set; FK alone would accept another
	// user's set id.
	if _, err := db.GetWorkoutSet(ctx, ex.WorkoutSetID, userID); err != nil {
		return nil, err
	}

	err := db.Pool.QueryRow(ctx, `
		INSERT INTO exercises (workout_set_id, name, target_area, is_bodyweight, description, memo, rest_time)
		VALUES ($1, $2, NULLIF($3, ''), $4, NULLIF($5, ''), NULLIF($6, ''), $7)
		RETURNING id, created_at, updated_at
	`, ex.WorkoutSetID, ex.Name, string(ex.TargetArea), ex.IsBodyweight,
		ex.Description, ex.Memo, ex.RestTime).Scan(&ex.ID, &ex.CreatedAt, &ex.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting exercise: %w", err)
	}
	return ex, nil
}

// DeleteExercise removes an exercise the user owns; instances cascade.
func (db *DB) DeleteExercise(ctx context.Context, id, userID int64) error {
	tag, err := db.Pool.Exec(ctx, `
		DELETE FROM exercises e
		USING workout_sets ws
		WHERE e.id = $1 AND ws.id = e.workout_set_id AND ws.user_id = $2
	`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting exercise: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateExerciseRestTime sets the rest timer (seconds) on an exercise.
func (db *DB) UpdateExerciseRestTime(ctx context.Context, id, userID int64, restTime int) error {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE exercises e
		SET rest_time = $3, updated_at = NOW()
		FROM workout_sets ws
		WHERE e.id = $1 AND ws.id = e.workout_set_id AND ws.user_id = $2
	`, id, userID, restTime)
	if err != nil {
		return fmt.Errorf("updating rest time: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateExerciseMemo replaces the free-text memo on an exercise. An empty
// memo clears it.
func (db *DB) UpdateExerciseMemo(ctx context.Context, id, userID int64, memo string) (*models.Exercise, error) {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE exercises e
		SET memo = NULLIF($3, ''), updated_at = NOW()
		FROM workout_sets ws
		WHERE e.id = $1 AND ws.id = e.workout_set_id AND ws.user_id = $2
	`, id, userID, memo)
	if err != nil {
		return nil, fmt.Errorf("updating memo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	ex, err := db.GetExercise(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	ex.Instances, err = db.instancesForExercise(ctx, id)
	if err != nil {
		return nil, err
	}
	return ex, nil
}
