package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/liftlog/liftlog/internal/models"
)

// AppendInstance adds one instance to an exercise, cloning the last
// instance's weight, unit and reps so the new set starts from where the
// previous one left off. Falls back to defaults on an empty exercise.
func (db *DB) AppendInstance(ctx context.Context, exerciseID, userID int64) (*models.ExerciseInstance, error) {
	if _, err := db.GetExercise(ctx, exerciseID, userID); err != nil {
		return nil, err
	}

	inst := &models.ExerciseInstance{ExerciseID: exerciseID}
	last := &models.ExerciseInstance{}
	err := db.Pool.QueryRow(ctx, `
		SELECT weight, weight_unit, reps, sets
		FROM exercise_instances
		WHERE exercise_id = $1
		ORDER BY id DESC
		LIMIT 1
	`, exerciseID).Scan(&last.Weight, &last.WeightUnit, &last.Reps, &last.Sets)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		one := 1
		zero := 0
		inst.WeightUnit = "lbs"
		inst.Reps = &zero
		inst.Sets = &one
	case err != nil:
		return nil, fmt.Errorf("querying last instance: %w", err)
	default:
		inst.Weight = last.Weight
		inst.WeightUnit = last.WeightUnit
		inst.Reps = last.Reps
		inst.Sets = last.Sets
	}

	err = db.Pool.QueryRow(ctx, `
		INSERT INTO exercise_instances (exercise_id, weight, weight_unit, reps, sets)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, exerciseID, inst.Weight, inst.WeightUnit, inst.Reps, inst.Sets).Scan(&inst.ID)
	if err != nil {
		return nil, fmt.Errorf("inserting instance: %w", err)
	}
	return inst, nil
}

// RemoveLatestInstance deletes the most recently added instance of an
// exercise. Returns ErrNotFound when the exercise has no instances.
func (db *DB) RemoveLatestInstance(ctx context.Context, exerciseID, userID int64) error {
	if _, err := db.GetExercise(ctx, exerciseID, userID); err != nil {
		return err
	}

	tag, err := db.Pool.Exec(ctx, `
		DELETE FROM exercise_instances
		WHERE id = (
			SELECT id FROM exercise_instances
			WHERE exercise_id = $1
			ORDER BY id DESC
			LIMIT 1
		)
	`, exerciseID)
	if err != nil {
		return fmt.Errorf("deleting latest instance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateInstanceWeight sets the weight on one instance. A nil weight stores
// NULL (weight not yet entered).
func (db *DB) UpdateInstanceWeight(ctx context.Context, id, userID int64, weight *float64) (*models.ExerciseInstance, error) {
	return db.updateInstance(ctx, id, userID,
		`UPDATE exercise_instances i
		 SET weight = $3, updated_at = NOW()
		 FROM exercises e, workout_sets ws
		 WHERE i.id = $1 AND e.id = i.exercise_id AND ws.id = e.workout_set_id AND ws.user_id = $2
		 RETURNING i.id, i.exercise_id, i.weight, i.weight_unit, i.reps, i.sets`, weight)
}

// UpdateInstanceReps sets the rep count on one instance.
func (db *DB) UpdateInstanceReps(ctx context.Context, id, userID int64, reps *int) (*models.ExerciseInstance, error) {
	return db.updateInstance(ctx, id, userID,
		`UPDATE exercise_instances i
		 SET reps = $3, updated_at = NOW()
		 FROM exercises e, workout_sets ws
		 WHERE i.id = $1 AND e.id = i.exercise_id AND ws.id = e.workout_set_id AND ws.user_id = $2
		 RETURNING i.id, i.exercise_id, i.weight, i.weight_unit, i.reps, i.sets`, reps)
}

func (db *DB) updateInstance(ctx context.Context, id, userID int64, query string, value any) (*models.ExerciseInstance, error) {
	inst := &models.ExerciseInstance{}
	err := db.Pool.QueryRow(ctx, query, id, userID, value).Scan(
		&inst.ID, &inst.ExerciseID, &inst.Weight, &inst.WeightUnit, &inst.Reps, &inst.Sets)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updating instance: %w", err)
	}
	return inst, nil
}

// GetInstancesByIDs fetches specific instances of one exercise. Ids not
// belonging to that exercise are silently absent from the result — the
// aggregation pipeline treats stale client references as skippable.
func (db *DB) GetInstancesByIDs(ctx context.Context, exerciseID int64, ids []int64) ([]models.ExerciseInstance, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := db.Pool.Query(ctx, `
		SELECT id, exercise_id, weight, weight_unit, reps, sets
		FROM exercise_instances
		WHERE exercise_id = $1 AND id = ANY($2)
		ORDER BY id
	`, exerciseID, ids)
	if err != nil {
		return nil, fmt.Errorf("querying instances: %w", err)
	}
	defer rows.Close()

	var out []models.ExerciseInstance
	for rows.Next() {
		var inst models.ExerciseInstance
		if err := rows.Scan(&inst.ID, &inst.ExerciseID, &inst.Weight,
			&inst.WeightUnit, &inst.Reps, &inst.Sets); err != nil {
			return nil, fmt.Errorf("scanning instance: %w", err)
		}
		out = append(out, inst)
	}
	return out, rows.Err()
}

func (db *DB) instancesForExercise(ctx context.Context, exerciseID int64) ([]models.ExerciseInstance, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, exercise_id, weight, weight_unit, reps, sets
		FROM exercise_instances
		WHERE exercise_id = $1
		ORDER BY id
	`, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("querying instances: %w", err)
	}
	defer rows.Close()

	var out []models.ExerciseInstance
	for rows.Next() {
		var inst models.ExerciseInstance
		if err := rows.Scan(&inst.ID, &inst.ExerciseID, &inst.Weight,
			&inst.WeightUnit, &inst.Reps, &inst.Sets); err != nil {
			return nil, fmt.Errorf("scanning instance: %w", err)
		}
		out = append(out, inst)
	}
	return out, rows.Err()
}
