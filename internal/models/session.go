package models

// InstanceProgress is the per-set completion state tracked during an active
// workout. Weight and reps here are what the client observed while training;
// they are advisory only — the aggregation pipeline re-reads the stored
// instance rows and trusts nothing from this struct except the completion
// flag and the instance identity.
type InstanceProgress struct {
	InstanceID  int64    `json:"instance_id"`
	IsCompleted bool     `json:"is_completed"`
	Weight      *float64 `json:"weight"`
	Reps        *int     `json:"reps"`
}

// WorkoutSession is the ephemeral accumulated state of one active workout,
// keyed by exercise id then instance id. JSON object keys are decimal id
// strings, matching the shape clients submit:
//
//	{"workout_set_id": 7, "exercises": {"532": {"1397": {...}}}}
type WorkoutSession struct {
	WorkoutSetID int64                                `json:"workout_set_id"`
	UserID       int64                                `json:"user_id"`
	SessionID    string                               `json:"session_id,omitempty"`
	Exercises    map[int64]map[int64]InstanceProgress `json:"exercises"`
}

// CompletedByExercise returns, per exercise id, the instance ids flagged
// complete. Exercises with no completed instance are omitted.
func (s *WorkoutSession) CompletedByExercise() map[int64][]int64 {
	out := make(map[int64][]int64)
	for exerciseID, instances := range s.Exercises {
		for instanceID, p := range instances {
			if p.IsCompleted {
				out[exerciseID] = append(out[exerciseID], instanceID)
			}
		}
	}
	return out
}
