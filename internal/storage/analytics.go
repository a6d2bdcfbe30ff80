package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/liftlog/liftlog/internal/models"
)

// MonthWindow returns the [start, end) date range of a calendar month.
// Zero year or month defaults to the current one.
func MonthWindow(year, month int, now time.Time) (time.Time, time.Time) {
	if year == 0 {
		year = now.Year()
	}
	if month < 1 || month > 12 {
		month = int(now.Month())
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// VolumeOverTime returns the user's total daily volume for one calendar
// month, ascending by date. A month with no rows yields an empty slice.
func (db *DB) VolumeOverTime(ctx context.Context, userID int64, year, month int) ([]models.DailyVolume, error) {
	start, end := MonthWindow(year, month, time.Now())

	rows, err := db.Pool.Query(ctx, `
		SELECT performed_on, SUM(COALESCE(volume, 0))
		FROM workout_logs
		WHERE user_id = $1 AND performed_on >= $2 AND performed_on < $3
		GROUP BY performed_on
		ORDER BY performed_on
	`, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying volume over time: %w", err)
	}
	defer rows.Close()

	result := []models.DailyVolume{}
	for rows.Next() {
		var day time.Time
		var v models.DailyVolume
		if err := rows.Scan(&day, &v.TotalVolume); err != nil {
			return nil, fmt.Errorf("scanning daily volume: %w", err)
		}
		v.PerformedOn = day.Format("2006-01-02")
		result = append(result, v)
	}
	return result, rows.Err()
}

// VolumeByMuscle returns the user's total volume per target area for one
// calendar month. Order is unspecified; consumers sort for display.
func (db *DB) VolumeByMuscle(ctx context.Context, userID int64, year, month int) ([]models.MuscleVolume, error) {
	start, end := MonthWindow(year, month, time.Now())

	rows, err := db.Pool.Query(ctx, `
		SELECT COALESCE(target_area, ''), SUM(COALESCE(volume, 0))
		FROM workout_logs
		WHERE user_id = $1 AND performed_on >= $2 AND performed_on < $3
		GROUP BY target_area
	`, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying volume by muscle: %w", err)
	}
	defer rows.Close()

	result := []models.MuscleVolume{}
	for rows.Next() {
		var v models.MuscleVolume
		if err := rows.Scan(&v.TargetArea, &v.TotalVolume); err != nil {
			return nil, fmt.Errorf("scanning muscle volume: %w", err)
		}
		result = append(result, v)
	}
	return result, rows.Err()
}
