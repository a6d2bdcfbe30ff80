package planner

import (
	"encoding/json"
	"fmt"
	"strings"
)

// buildPrompt renders the trainer prompt for one questionnaire. The only
// strict structural rule — exactly N instances per exercise, one per set —
// is spelled out twice with a counterexample because small local models
// reliably get it wrong otherwise.
func buildPrompt(q Questionnaire) string {
	sets, rest := q.setsAndRest()

	effort := "moderate effort"
	if q.MaxEffort {
		effort = "maximum effort"
	}

	var b strings.Builder
	fmt.Fprintf(&b, `You are an experienced personal trainer. Create a smart, personalized workout plan for this person.

Person details:
- Experience: %s
- Goal: %s
- Body weight: %.0fkg
- Height: %.0fcm
- Effort: %s

You have full freedom to choose the best exercises, reps, and weights that suit this person's goal and experience. Choose weights that are realistic and challenging for someone at the %s level.

Guidelines:
- reps should never be 0. Choose reps that make sense for the goal.
- rest_time is in seconds; around %d seconds suits this goal.
- weight_unit is always kg.
- target_area must be one of the provided muscle tags and should name the primary muscle the exercise trains.

BODYWEIGHT EXERCISES:
Push-ups, pull-ups, dips, bodyweight squats, lunges, planks, burpees and similar movements use no added weight. For these set is_bodyweight_exercise to true and weight to 0 in every instance. For barbell, dumbbell, cable, or machine exercises set is_bodyweight_exercise to false and choose a realistic weight in kg.

THE ONLY STRICT RULE: each exercise must have exactly %d entries in its instances array. Each instance is one performed set, so %d instances = %d sets total.

Wrong (one instance claiming several sets — never do this):
instances: [{ "weight": 25, "weight_unit": "kg", "reps": 10, "sets": 3 }]

Right:
instances: [
{ "weight": 25, "weight_unit": "kg", "reps": 10, "sets": 1 },
{ "weight": 25, "weight_unit": "kg", "reps": 10, "sets": 1 },
{ "weight": 25, "weight_unit": "kg", "reps": 10, "sets": 1 }
]

Create exactly 4 workout days with exactly 4 exercises each.
Day names: Monday Push Day, Wednesday Pull Day, Friday Leg Day, Sunday Full Body Day.
Remember: %d instances per exercise, every time, no exceptions.`,
		q.Experience, q.Goal, q.Weight, q.Height, effort,
		q.Experience, rest, sets, sets, sets, sets)
	return b.String()
}

// planSchema is the Ollama structured-output schema for generatedPlan.
var planSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"workout_sets": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"name": {"type": "string"},
					"description": {"type": "string"},
					"exercises": {
						"type": "array",
						"items": {
							"type": "object",
							"properties": {
								"name": {"type": "string"},
								"target_area": {
									"type": "string",
									"enum": ["upper_chest", "middle_chest", "lower_chest",
										"front_deltoid", "side_deltoid", "rear_deltoid",
										"upper_back", "mid_back", "lower_back", "lats",
										"biceps", "triceps", "forearms",
										"quadriceps", "hamstrings", "glutes", "calves"]
								},
								"is_bodyweight_exercise": {"type": "boolean"},
								"description": {"type": "string"},
								"rest_time": {"type": "integer"},
								"instances": {
									"type": "array",
									"items": {
										"type": "object",
										"properties": {
											"weight": {"type": "number"},
											"weight_unit": {"type": "string"},
											"reps": {"type": "integer"},
											"sets": {"type": "integer"}
										},
										"required": ["weight", "weight_unit", "reps", "sets"]
									}
								}
							},
							"required": ["name", "target_area", "is_bodyweight_exercise", "description", "rest_time", "instances"]
						}
					}
				},
				"required": ["name", "description", "exercises"]
			}
		}
	},
	"required": ["workout_sets"]
}`)
