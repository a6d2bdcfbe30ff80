package mcp

import (
	"context"

	"github.com/liftlog/liftlog/internal/models"
	"github.com/liftlog/liftlog/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. Both *storage.DB (local)
// and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	VolumeOverTime(ctx context.Context, userID int64, year, month int) ([]models.DailyVolume, error)
	VolumeByMuscle(ctx context.Context, userID int64, year, month int) ([]models.MuscleVolume, error)
	ListWorkoutSets(ctx context.Context, userID int64) ([]models.WorkoutSet, error)
	GetWorkoutSet(ctx context.Context, id, userID int64) (*models.WorkoutSet, error)
	RecentWorkoutLogs(ctx context.Context, userID int64, limit int) ([]models.WorkoutLog, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
