package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/liftlog/liftlog/internal/models"
)

// ListWorkoutSets returns all of a user's workout sets with their exercises
// and instances attached, newest set first.
func (db *DB) ListWorkoutSets(ctx context.Context, userID int64) ([]models.WorkoutSet, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, user_id, name, COALESCE(description, ''), created_at, updated_at
		FROM workout_sets
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying workout sets: %w", err)
	}
	defer rows.Close()

	var sets []models.WorkoutSet
	index := make(map[int64]int)
	for rows.Next() {
		var s models.WorkoutSet
		if err := rows.Scan(&s.ID, &s.UserID, &s.Name, &s.Description, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning workout set: %w", err)
		}
		index[s.ID] = len(sets)
		sets = append(sets, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(sets) == 0 {
		return []models.WorkoutSet{}, nil
	}

	setIDs := make([]int64, len(sets))
	for i, s := range sets {
		setIDs[i] = s.ID
	}
	exercises, err := db.exercisesForSets(ctx, setIDs)
	if err != nil {
		return nil, err
	}
	for _, ex := range exercises {
		i := index[ex.WorkoutSetID]
		sets[i].Exercises = append(sets[i].Exercises, ex)
	}
	return sets, nil
}

// GetWorkoutSet returns one workout set with exercises and instances.
// Returns ErrNotFound when the set does not exist or belongs to another user.
func (db *DB) GetWorkoutSet(ctx context.Context, id, userID int64) (*models.WorkoutSet, error) {
	s := &models.WorkoutSet{}
	err := db.Pool.QueryRow(ctx, `
		SELECT id, user_id, name, COALESCE(description, ''), created_at, updated_at
		FROM workout_sets
		WHERE id = $1 AND user_id = $2
	`, id, userID).Scan(&s.ID, &s.UserID, &s.Name, &s.Description, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying workout set: %w", err)
	}

	s.Exercises, err = db.exercisesForSets(ctx, []int64{s.ID})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// CreateWorkoutSet inserts a new workout set for the user.
func (db *DB) CreateWorkoutSet(ctx context.Context, userID int64, name, description string) (*models.WorkoutSet, error) {
	s := &models.WorkoutSet{UserID: userID, Name: name, Description: description}
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO workout_sets (user_id, name, description)
		VALUES ($1, $2, NULLIF($3, ''))
		RETURNING id, created_at, updated_at
	`, userID, name, description).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting workout set: %w", err)
	}
	return s, nil
}

// UpdateWorkoutSet renames or re-describes a set the user owns.
func (db *DB) UpdateWorkoutSet(ctx context.Context, id, userID int64, name, description string) (*models.WorkoutSet, error) {
	s := &models.WorkoutSet{ID: id, UserID: userID, Name: name, Description: description}
	err := db.Pool.QueryRow(ctx, `
		UPDATE workout_sets
		SET name = $3, description = NULLIF($4, ''), updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING created_at, updated_at
	`, id, userID, name, description).Scan(&s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updating workout set: %w", err)
	}
	return s, nil
}

// DeleteWorkoutSet removes a set; exercises and instances cascade.
func (db *DB) DeleteWorkoutSet(ctx context.Context, id, userID int64) error {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM workout_sets WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting workout set: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// exercisesForSets loads exercises (with instances) for the given set ids,
// in creation order.
func (db *DB) exercisesForSets(ctx context.Context, setIDs []int64) ([]models.Exercise, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, workout_set_id, name, COALESCE(target_area, ''), is_bodyweight,
		       COALESCE(description, ''), COALESCE(memo, ''), rest_time, created_at, updated_at
		FROM exercises
		WHERE workout_set_id = ANY($1)
		ORDER BY id
	`, setIDs)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	var exercises []models.Exercise
	index := make(map[int64]int)
	for rows.Next() {
		var ex models.Exercise
		if err := rows.Scan(&ex.ID, &ex.WorkoutSetID, &ex.Name, &ex.TargetArea, &ex.IsBodyweight,
			&ex.Description, &ex.Memo, &ex.RestTime, &ex.CreatedAt, &ex.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		index[ex.ID] = len(exercises)
		exercises = append(exercises, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(exercises) == 0 {
		return nil, nil
	}

	exIDs := make([]int64, len(exercises))
	for i, ex := range exercises {
		exIDs[i] = ex.ID
	}
	instRows, err := db.Pool.Query(ctx, `
		SELECT id, exercise_id, weight, weight_unit, reps, sets
		FROM exercise_instances
		WHERE exercise_id = ANY($1)
		ORDER BY id
	`, exIDs)
	if err != nil {
		return nil, fmt.Errorf("querying exercise instances: %w", err)
	}
	defer instRows.Close()

	for instRows.Next() {
		var inst models.ExerciseInstance
		if err := instRows.Scan(&inst.ID, &inst.ExerciseID, &inst.Weight,
			&inst.WeightUnit, &inst.Reps, &inst.Sets); err != nil {
			return nil, fmt.Errorf("scanning exercise instance: %w", err)
		}
		i := index[inst.ExerciseID]
		exercises[i].Instances = append(exercises[i].Instances, inst)
	}
	return exercises, instRows.Err()
}
