package storage

import (
	"context"
	"fmt"

	"github.com/liftlog/liftlog/internal/models"
)

// CreateWorkoutSets inserts several workout sets with their exercises and
// instances in one transaction, then returns the stored sets fully loaded.
// Used by the AI plan generator: either the whole plan lands or none of it.
func (db *DB) CreateWorkoutSets(ctx context.Context, userID int64, sets []models.WorkoutSet) ([]models.WorkoutSet, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	ids := make([]int64, 0, len(sets))
	for _, s := range sets {
		var setID int64
		err := tx.QueryRow(ctx, `
			INSERT INTO workout_sets (user_id, name, description)
			VALUES ($1, $2, NULLIF($3, ''))
			RETURNING id
		`, userID, s.Name, s.Description).Scan(&setID)
		if err != nil {
			return nil, fmt.Errorf("inserting generated set: %w", err)
		}
		ids = append(ids, setID)

		for _, ex := range s.Exercises {
			var exID int64
			err := tx.QueryRow(ctx, `
				INSERT INTO exercises (workout_set_id, name, target_area, is_bodyweight, description, rest_time)
				VALUES ($1, $2, NULLIF($3, ''), $4, NULLIF($5, ''), $6)
				RETURNING id
			`, setID, ex.Name, string(ex.TargetArea), ex.IsBodyweight,
				ex.Description, ex.RestTime).Scan(&exID)
			if err != nil {
				return nil, fmt.Errorf("inserting generated exercise: %w", err)
			}

			for _, inst := range ex.Instances {
				_, err := tx.Exec(ctx, `
					INSERT INTO exercise_instances (exercise_id, weight, weight_unit, reps, sets)
					VALUES ($1, $2, $3, $4, $5)
				`, exID, inst.Weight, inst.WeightUnit, inst.Reps, inst.Sets)
				if err != nil {
					return nil, fmt.Errorf("inserting generated instance: %w", err)
				}
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing generated plan: %w", err)
	}

	created := make([]models.WorkoutSet, 0, len(ids))
	for _, id := range ids {
		s, err := db.GetWorkoutSet(ctx, id, userID)
		if err != nil {
			return nil, err
		}
		created = append(created, *s)
	}
	return created, nil
}
