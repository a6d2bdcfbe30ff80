package planner

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/liftlog/liftlog/internal/genai"
	"github.com/liftlog/liftlog/internal/models"
)

type fakeChatter struct {
	prompt string
	format json.RawMessage
	reply  string
	err    error
}

func (f *fakeChatter) Chat(_ context.Context, prompt string, format json.RawMessage) (string, error) {
	f.prompt = prompt
	f.format = format
	return f.reply, f.err
}

type fakePlanStore struct {
	saved []models.WorkoutSet
}

func (f *fakePlanStore) CreateWorkoutSets(_ context.Context, userID int64, sets []models.WorkoutSet) ([]models.WorkoutSet, error) {
	f.saved = sets
	out := make([]models.WorkoutSet, len(sets))
	for i, s := range sets {
		s.ID = int64(i + 1)
		s.UserID = userID
		out[i] = s
	}
	return out, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const validPlan = `{
	"workout_sets": [{
		"name": "Monday Push Day",
		"description": "Chest and triceps",
		"exercises": [{
			"name": "Bench Press",
			"target_area": "middle_chest",
			"is_bodyweight_exercise": false,
			"description": "Barbell bench press",
			"rest_time": 90,
			"instances": [
				{"weight": 60, "weight_unit": "kg", "reps": 10, "sets": 1},
				{"weight": 65, "weight_unit": "kg", "reps": 8, "sets": 1}
			]
		}, {
			"name": "Push-ups",
			"target_area": "middle_chest",
			"is_bodyweight_exercise": true,
			"description": "Standard push-ups",
			"rest_time": 60,
			"instances": [
				{"weight": 25, "weight_unit": "kg", "reps": 15, "sets": 1}
			]
		}]
	}]
}`

// TestGenerate verifies a valid structured reply is parsed and persisted.
func TestGenerate(t *testing.T) {
	ai := &fakeChatter{reply: validPlan}
	store := &fakePlanStore{}
	p := New(ai, store, testLogger())

	q := Questionnaire{Experience: "intermediate", Goal: "build muscle", Weight: 80, Height: 180}
	created, err := p.Generate(context.Background(), 1, q)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("created sets = %d, want 1", len(created))
	}
	if created[0].UserID != 1 {
		t.Errorf("user_id = %d, want 1", created[0].UserID)
	}

	ex := store.saved[0].Exercises[0]
	if ex.TargetArea != models.MiddleChest {
		t.Errorf("target_area = %q, want middle_chest", ex.TargetArea)
	}
	if len(ex.Instances) != 2 {
		t.Fatalf("instances = %d, want 2", len(ex.Instances))
	}
	if *ex.Instances[0].Weight != 60 || *ex.Instances[0].Reps != 10 {
		t.Errorf("first instance = %+v", ex.Instances[0])
	}

	// Bodyweight exercise: weight forced to 0 regardless of model output.
	bw := store.saved[0].Exercises[1]
	if !bw.IsBodyweight {
		t.Error("is_bodyweight = false")
	}
	if *bw.Instances[0].Weight != 0 {
		t.Errorf("bodyweight instance weight = %v, want 0", *bw.Instances[0].Weight)
	}
}

// TestGeneratePromptContent verifies the prompt carries the questionnaire and
// the goal-derived set count, and that a structured-output schema is sent.
func TestGeneratePromptContent(t *testing.T) {
	ai := &fakeChatter{reply: validPlan}
	p := New(ai, &fakePlanStore{}, testLogger())

	q := Questionnaire{Experience: "pro", Goal: "build strength", Weight: 90, Height: 185, MaxEffort: true}
	if _, err := p.Generate(context.Background(), 1, q); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	for _, want := range []string{"pro", "build strength", "90kg", "185cm", "maximum effort", "exactly 5 entries"} {
		if !strings.Contains(ai.prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if ai.format == nil {
		t.Error("no structured-output schema sent")
	}
	if !json.Valid(ai.format) {
		t.Error("schema is not valid JSON")
	}
}

// TestGenerateValidation verifies questionnaire enums are enforced before any
// model call.
func TestGenerateValidation(t *testing.T) {
	tests := []struct {
		name string
		q    Questionnaire
	}{
		{"bad experience", Questionnaire{Experience: "expert", Goal: "fitness", Weight: 80, Height: 180}},
		{"bad goal", Questionnaire{Experience: "beginner", Goal: "get ripped", Weight: 80, Height: 180}},
		{"zero weight", Questionnaire{Experience: "beginner", Goal: "fitness", Height: 180}},
		{"zero height", Questionnaire{Experience: "beginner", Goal: "fitness", Weight: 80}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ai := &fakeChatter{reply: validPlan}
			p := New(ai, &fakePlanStore{}, testLogger())
			_, err := p.Generate(context.Background(), 1, tt.q)
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("error = %v, want ErrInvalid", err)
			}
			if ai.prompt != "" {
				t.Error("model was called despite invalid questionnaire")
			}
		})
	}
}

// TestGenerateModelDown verifies inference failures pass through unchanged so
// the handler can map them to the unavailable response.
func TestGenerateModelDown(t *testing.T) {
	ai := &fakeChatter{err: genai.ErrUnavailable}
	p := New(ai, &fakePlanStore{}, testLogger())

	q := Questionnaire{Experience: "beginner", Goal: "fitness", Weight: 70, Height: 170}
	_, err := p.Generate(context.Background(), 1, q)
	if !errors.Is(err, genai.ErrUnavailable) {
		t.Fatalf("error = %v, want ErrUnavailable", err)
	}
}

// TestGenerateGarbageReply verifies an unparseable model reply fails without
// persisting anything.
func TestGenerateGarbageReply(t *testing.T) {
	ai := &fakeChatter{reply: "I think you should do some squats"}
	store := &fakePlanStore{}
	p := New(ai, store, testLogger())

	q := Questionnaire{Experience: "beginner", Goal: "fitness", Weight: 70, Height: 170}
	if _, err := p.Generate(context.Background(), 1, q); err == nil {
		t.Fatal("expected error")
	}
	if store.saved != nil {
		t.Error("garbage plan was persisted")
	}
}

// TestGenerateUnknownTargetArea verifies an off-enum target area degrades to
// untagged rather than failing the plan.
func TestGenerateUnknownTargetArea(t *testing.T) {
	reply := strings.Replace(validPlan, `"middle_chest"`, `"pecs"`, 1)
	store := &fakePlanStore{}
	p := New(&fakeChatter{reply: reply}, store, testLogger())

	q := Questionnaire{Experience: "beginner", Goal: "fitness", Weight: 70, Height: 170}
	if _, err := p.Generate(context.Background(), 1, q); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if got := store.saved[0].Exercises[0].TargetArea; got != "" {
		t.Errorf("target_area = %q, want empty", got)
	}
}
