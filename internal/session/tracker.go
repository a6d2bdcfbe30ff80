package session

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/liftlog/liftlog/internal/models"
)

// Update is a partial edit to one instance's tracked progress. Nil fields are
// left untouched in the stored entry.
type Update struct {
	Completed *bool    `json:"is_completed"`
	Weight    *float64 `json:"weight"`
	Reps      *int     `json:"reps"`
}

// Tracker is the session accumulator: it merges per-set edits into a stored
// session blob and hands the assembled session to the finish pipeline.
type Tracker struct {
	store Store
}

// NewTracker creates a Tracker on the given store.
func NewTracker(store Store) *Tracker {
	return &Tracker{store: store}
}

// Session loads the stored session for the key. A missing blob, a corrupt
// blob, or a blob whose embedded identity does not match the key all yield a
// fresh empty session — never an error the caller has to branch on.
func (t *Tracker) Session(key Key) (*models.WorkoutSession, error) {
	fresh := &models.WorkoutSession{
		WorkoutSetID: key.WorkoutSetID,
		UserID:       key.UserID,
		SessionID:    uuid.NewString(),
		Exercises:    map[int64]map[int64]models.InstanceProgress{},
	}

	data, err := t.store.Load(key)
	if errors.Is(err, ErrNoSession) {
		return fresh, nil
	}
	if err != nil {
		return nil, err
	}

	var stored models.WorkoutSession
	if err := json.Unmarshal(data, &stored); err != nil {
		return fresh, nil
	}
	if stored.WorkoutSetID != key.WorkoutSetID || stored.UserID != key.UserID {
		return fresh, nil
	}
	if stored.Exercises == nil {
		stored.Exercises = map[int64]map[int64]models.InstanceProgress{}
	}
	if stored.SessionID == "" {
		stored.SessionID = uuid.NewString()
	}
	return &stored, nil
}

// Record merges a partial update into the tracked entry for one instance,
// creating the entry if absent, and persists the session. Fields absent from
// the update keep their stored values.
func (t *Tracker) Record(key Key, exerciseID, instanceID int64, u Update) (*models.WorkoutSession, error) {
	sess, err := t.Session(key)
	if err != nil {
		return nil, err
	}

	instances := sess.Exercises[exerciseID]
	if instances == nil {
		instances = map[int64]models.InstanceProgress{}
		sess.Exercises[exerciseID] = instances
	}

	entry := instances[instanceID]
	entry.InstanceID = instanceID
	if u.Completed != nil {
		entry.IsCompleted = *u.Completed
	}
	if u.Weight != nil {
		entry.Weight = u.Weight
	}
	if u.Reps != nil {
		entry.Reps = u.Reps
	}
	instances[instanceID] = entry

	data, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("serializing session: %w", err)
	}
	if err := t.store.Save(key, data); err != nil {
		return nil, err
	}
	return sess, nil
}

// Get returns the tracked progress for one instance. The second return is
// false when the instance is not tracked in this session.
func (t *Tracker) Get(key Key, exerciseID, instanceID int64) (models.InstanceProgress, bool, error) {
	sess, err := t.Session(key)
	if err != nil {
		return models.InstanceProgress{}, false, err
	}
	entry, ok := sess.Exercises[exerciseID][instanceID]
	return entry, ok, nil
}

// Clear discards the session. Callers invoke it only after the finish
// pipeline confirms the flush, so an aborted finish keeps the user's
// progress.
func (t *Tracker) Clear(key Key) error {
	return t.store.Delete(key)
}
