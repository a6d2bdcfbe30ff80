// Package planner generates a personalized workout program by asking the
// inference endpoint for a structured plan and persisting it as ordinary
// workout sets.
package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/liftlog/liftlog/internal/models"
	"github.com/liftlog/liftlog/internal/storage"
)

// ErrInvalid marks a questionnaire the user can correct.
var ErrInvalid = errors.New("invalid questionnaire")

// Chatter is the inference call the planner needs; *genai.Client satisfies it.
type Chatter interface {
	Chat(ctx context.Context, prompt string, format json.RawMessage) (string, error)
}

// Store persists the generated plan; *storage.DB satisfies it.
type Store interface {
	CreateWorkoutSets(ctx context.Context, userID int64, sets []models.WorkoutSet) ([]models.WorkoutSet, error)
}

var _ Store = (*storage.DB)(nil)

// Questionnaire is the user's answers driving plan generation.
type Questionnaire struct {
	Experience string  `json:"experience"`
	Goal       string  `json:"goal"`
	Weight     float64 `json:"weight"`
	Height     float64 `json:"height"`
	MaxEffort  bool    `json:"max_effort"`
}

// Validate checks the questionnaire's enums and ranges.
func (q *Questionnaire) Validate() error {
	switch q.Experience {
	case "beginner", "intermediate", "pro":
	default:
		return fmt.Errorf("%w: experience must be beginner, intermediate or pro", ErrInvalid)
	}
	switch q.Goal {
	case "fitness", "build muscle", "build strength":
	default:
		return fmt.Errorf("%w: goal must be fitness, build muscle or build strength", ErrInvalid)
	}
	if q.Weight <= 0 {
		return fmt.Errorf("%w: weight must be positive", ErrInvalid)
	}
	if q.Height <= 0 {
		return fmt.Errorf("%w: height must be positive", ErrInvalid)
	}
	return nil
}

// setsAndRest returns sets-per-exercise and rest seconds for a goal.
func (q *Questionnaire) setsAndRest() (int, int) {
	switch q.Goal {
	case "build muscle":
		return 4, 90
	case "build strength":
		return 5, 180
	default: // fitness
		return 3, 60
	}
}

// Planner turns questionnaires into persisted workout sets.
type Planner struct {
	ai    Chatter
	store Store
	log   *slog.Logger
}

// New creates a Planner.
func New(ai Chatter, store Store, log *slog.Logger) *Planner {
	return &Planner{ai: ai, store: store, log: log}
}

// generatedPlan is the structured output shape requested from the model.
type generatedPlan struct {
	WorkoutSets []struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Exercises   []struct {
			Name         string  `json:"name"`
			TargetArea   string  `json:"target_area"`
			IsBodyweight bool    `json:"is_bodyweight_exercise"`
			Description  string  `json:"description"`
			RestTime     int     `json:"rest_time"`
			Instances    []struct {
				Weight     float64 `json:"weight"`
				WeightUnit string  `json:"weight_unit"`
				Reps       int     `json:"reps"`
				Sets       int     `json:"sets"`
			} `json:"instances"`
		} `json:"exercises"`
	} `json:"workout_sets"`
}

// Generate asks the model for a plan matching the questionnaire and stores
// it. The model's output is untrusted: unparseable or empty plans surface as
// genai.ErrUnavailable-equivalent failures from the Chatter, or ErrInvalid
// when the payload parses but contains nothing usable.
func (p *Planner) Generate(ctx context.Context, userID int64, q Questionnaire) ([]models.WorkoutSet, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	reply, err := p.ai.Chat(ctx, buildPrompt(q), planSchema)
	if err != nil {
		return nil, err
	}

	var plan generatedPlan
	if err := json.Unmarshal([]byte(reply), &plan); err != nil {
		p.log.Warn("generated plan unparseable", "error", err)
		return nil, fmt.Errorf("parsing generated plan: %w", err)
	}
	if len(plan.WorkoutSets) == 0 {
		return nil, fmt.Errorf("%w: model returned no workout sets", ErrInvalid)
	}

	sets := make([]models.WorkoutSet, 0, len(plan.WorkoutSets))
	for _, gs := range plan.WorkoutSets {
		set := models.WorkoutSet{Name: gs.Name, Description: gs.Description}
		for _, ge := range gs.Exercises {
			area := models.TargetArea(ge.TargetArea)
			if !area.Valid() {
				area = ""
			}
			ex := models.Exercise{
				Name:         ge.Name,
				TargetArea:   area,
				IsBodyweight: ge.IsBodyweight,
				Description:  ge.Description,
				RestTime:     ge.RestTime,
			}
			if ex.RestTime < 0 {
				ex.RestTime = 0
			}
			for _, gi := range ge.Instances {
				weight := gi.Weight
				if ge.IsBodyweight {
					weight = 0
				}
				reps := gi.Reps
				count := gi.Sets
				if count <= 0 {
					count = 1
				}
				unit := gi.WeightUnit
				if unit == "" {
					unit = "kg"
				}
				ex.Instances = append(ex.Instances, models.ExerciseInstance{
					Weight:     &weight,
					WeightUnit: unit,
					Reps:       &reps,
					Sets:       &count,
				})
			}
			set.Exercises = append(set.Exercises, ex)
		}
		sets = append(sets, set)
	}

	created, err := p.store.CreateWorkoutSets(ctx, userID, sets)
	if err != nil {
		return nil, fmt.Errorf("storing generated plan: %w", err)
	}
	p.log.Info("workout plan generated", "user_id", userID, "sets", len(created))
	return created, nil
}
