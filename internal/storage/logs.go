package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/liftlog/liftlog/internal/models"
)

// InsertWorkoutLogs writes one finished-workout batch: the batch token row
// and all aggregate log rows, in a single transaction. A duplicate batch id
// means the same session was already flushed — nothing is written and
// ErrDuplicateBatch is returned, so a re-submitted "finish" cannot
// double-count volume.
func (db *DB) InsertWorkoutLogs(ctx context.Context, batchID uuid.UUID, userID, workoutSetID int64, logs []models.WorkoutLog) error {
	if len(logs) == 0 {
		return nil
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO workout_log_batches (batch_id, user_id, workout_set_id)
		VALUES ($1, $2, $3)
	`, batchID, userID, workoutSetID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateBatch
		}
		return fmt.Errorf("inserting log batch: %w", err)
	}

	query := `INSERT INTO workout_logs (user_id, batch_id, target_area, weight,
		sets, total_reps, volume, rest_time, performed_on) VALUES `
	args := make([]any, 0, len(logs)*9)
	valueStrings := make([]string, 0, len(logs))

	for i, l := range logs {
		base := i * 9
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9,
		))
		args = append(args, l.UserID, batchID, l.TargetArea, l.Weight,
			l.Sets, l.TotalReps, l.Volume, l.RestTime, l.PerformedOn)
	}
	query += strings.Join(valueStrings, ",")

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting workout logs: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing workout logs: %w", err)
	}
	return nil
}

// RecentWorkoutLogs returns a user's latest log rows, newest first.
func (db *DB) RecentWorkoutLogs(ctx context.Context, userID int64, limit int) ([]models.WorkoutLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Pool.Query(ctx, `
		SELECT id, user_id, batch_id, COALESCE(target_area, ''), COALESCE(weight, 0),
		       sets, COALESCE(total_reps, 0), COALESCE(volume, 0), COALESCE(rest_time, 0),
		       performed_on, created_at
		FROM workout_logs
		WHERE user_id = $1
		ORDER BY performed_on DESC, id DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying workout logs: %w", err)
	}
	defer rows.Close()

	var out []models.WorkoutLog
	for rows.Next() {
		var l models.WorkoutLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.BatchID, &l.TargetArea, &l.Weight,
			&l.Sets, &l.TotalReps, &l.Volume, &l.RestTime, &l.PerformedOn, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning workout log: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
