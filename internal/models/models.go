package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account. PasswordHash is never serialized.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// WorkoutSet is a named, user-owned collection of exercises (one "day" of a
// program). Deleting a set cascades to its exercises and their instances.
type WorkoutSet struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Exercises   []Exercise `json:"exercises,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Exercise is a movement within a workout set, tagged with a target muscle
// area. RestTime is seconds between sets.
type Exercise struct {
	ID           int64              `json:"id"`
	WorkoutSetID int64              `json:"workout_set_id"`
	Name         string             `json:"name"`
	TargetArea   TargetArea         `json:"target_area,omitempty"`
	IsBodyweight bool               `json:"is_bodyweight"`
	Description  string             `json:"description,omitempty"`
	Memo         string             `json:"memo,omitempty"`
	RestTime     int                `json:"rest_time"`
	Instances    []ExerciseInstance `json:"instances,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// ExerciseInstance is one performed (or planned) set of an exercise.
// Weight is nil until the user enters one; bodyweight exercises store 0.
type ExerciseInstance struct {
	ID         int64    `json:"id"`
	ExerciseID int64    `json:"exercise_id"`
	Weight     *float64 `json:"weight"`
	WeightUnit string   `json:"weight_unit"`
	Reps       *int     `json:"reps"`
	Sets       *int     `json:"sets"`
}

// WorkoutLog is one immutable aggregate row produced when a workout is
// finished: all completed instances of one exercise sharing the same stored
// weight collapse into one row. Volume = sets * total_reps * weight, computed
// at write time and never recomputed.
type WorkoutLog struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	BatchID     uuid.UUID `json:"batch_id"`
	TargetArea  string    `json:"target_area"`
	Weight      float64   `json:"weight"`
	Sets        int       `json:"sets"`
	TotalReps   int       `json:"total_reps"`
	Volume      float64   `json:"volume"`
	RestTime    int       `json:"rest_time"`
	PerformedOn time.Time `json:"performed_on"`
	CreatedAt   time.Time `json:"created_at"`
}

// DailyVolume is one point of the volume-over-time report.
type DailyVolume struct {
	PerformedOn string  `json:"performed_on"`
	TotalVolume float64 `json:"total_volume"`
}

// MuscleVolume is one row of the volume-by-muscle report.
type MuscleVolume struct {
	TargetArea  string  `json:"target_area"`
	TotalVolume float64 `json:"total_volume"`
}
