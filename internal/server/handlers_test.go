package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/liftlog/liftlog/internal/config"
	"github.com/liftlog/liftlog/internal/genai"
	"github.com/liftlog/liftlog/internal/models"
	"github.com/liftlog/liftlog/internal/planner"
	"github.com/liftlog/liftlog/internal/session"
	"github.com/liftlog/liftlog/internal/storage"
	"github.com/liftlog/liftlog/internal/workoutlog"
)

type fakeStore struct {
	users     map[string]*models.User
	nextUser  int64
	sets      map[int64]*models.WorkoutSet
	volume    []models.DailyVolume
	muscle    []models.MuscleVolume
	volumeErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:  map[string]*models.User{},
		sets:   map[int64]*models.WorkoutSet{},
		volume: []models.DailyVolume{},
		muscle: []models.MuscleVolume{},
	}
}

func (f *fakeStore) CreateUser(ctx context.Context, name, email, passwordHash string) (*models.User, error) {
	if _, ok := f.users[email]; ok {
		return nil, storage.ErrEmailTaken
	}
	f.nextUser++
	u := &models.User{ID: f.nextUser, Name: name, Email: email, PasswordHash: passwordHash}
	f.users[email] = u
	return u, nil
}

func (f *fakeStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u, ok := f.users[email]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return u, nil
}

func (f *fakeStore) GetUser(ctx context.Context, id int64) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (f *fakeStore) ListWorkoutSets(ctx context.Context, userID int64) ([]models.WorkoutSet, error) {
	out := []models.WorkoutSet{}
	for _, set := range f.sets {
		if set.UserID == userID {
			out = append(out, *set)
		}
	}
	return out, nil
}

func (f *fakeStore) GetWorkoutSet(ctx context.Context, id, userID int64) (*models.WorkoutSet, error) {
	set, ok := f.sets[id]
	if !ok || set.UserID != userID {
		return nil, storage.ErrNotFound
	}
	return set, nil
}

func (f *fakeStore) CreateWorkoutSet(ctx context.Context, userID int64, name, description string) (*models.WorkoutSet, error) {
	id := int64(len(f.sets) + 1)
	set := &models.WorkoutSet{ID: id, UserID: userID, Name: name, Description: description}
	f.sets[id] = set
	return set, nil
}

func (f *fakeStore) UpdateWorkoutSet(ctx context.Context, id, userID int64, name, description string) (*models.WorkoutSet, error) {
	set, err := f.GetWorkoutSet(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	set.Name, set.Description = name, description
	return set, nil
}

func (f *fakeStore) DeleteWorkoutSet(ctx context.Context, id, userID int64) error {
	if _, err := f.GetWorkoutSet(ctx, id, userID); err != nil {
		return err
	}
	delete(f.sets, id)
	return nil
}

func (f *fakeStore) CreateExercise(ctx context.Context, userID int64, ex *models.Exercise) (*models.Exercise, error) {
	if _, err := f.GetWorkoutSet(ctx, ex.WorkoutSetID, userID); err != nil {
		return nil, err
	}
	ex.ID = 1
	return ex, nil
}

func (f *fakeStore) DeleteExercise(ctx context.Context, id, userID int64) error { return nil }

func (f *fakeStore) UpdateExerciseRestTime(ctx context.Context, id, userID int64, restTime int) error {
	return nil
}

func (f *fakeStore) UpdateExerciseMemo(ctx context.Context, id, userID int64, memo string) (*models.Exercise, error) {
	return &models.Exercise{ID: id, Memo: memo}, nil
}

func (f *fakeStore) AppendInstance(ctx context.Context, exerciseID, userID int64) (*models.ExerciseInstance, error) {
	return &models.ExerciseInstance{ID: 1, ExerciseID: exerciseID}, nil
}

func (f *fakeStore) RemoveLatestInstance(ctx context.Context, exerciseID, userID int64) error {
	return nil
}

func (f *fakeStore) UpdateInstanceWeight(ctx context.Context, id, userID int64, weight *float64) (*models.ExerciseInstance, error) {
	return &models.ExerciseInstance{ID: id, Weight: weight}, nil
}

func (f *fakeStore) UpdateInstanceReps(ctx context.Context, id, userID int64, reps *int) (*models.ExerciseInstance, error) {
	return &models.ExerciseInstance{ID: id, Reps: reps}, nil
}

func (f *fakeStore) VolumeOverTime(ctx context.Context, userID int64, year, month int) ([]models.DailyVolume, error) {
	return f.volume, f.volumeErr
}

func (f *fakeStore) VolumeByMuscle(ctx context.Context, userID int64, year, month int) ([]models.MuscleVolume, error) {
	return f.muscle, nil
}

func (f *fakeStore) RecentWorkoutLogs(ctx context.Context, userID int64, limit int) ([]models.WorkoutLog, error) {
	return []models.WorkoutLog{}, nil
}

type fakePipeline struct {
	got    *models.WorkoutSession
	result *workoutlog.Result
	err    error
}

func (f *fakePipeline) Finish(ctx context.Context, userID int64, sess *models.WorkoutSession) (*workoutlog.Result, error) {
	f.got = sess
	return f.result, f.err
}

type fakeGenerator struct {
	sets []models.WorkoutSet
	err  error
}

func (f *fakeGenerator) Generate(ctx context.Context, userID int64, q planner.Questionnaire) ([]models.WorkoutSet, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return f.sets, f.err
}

type fakeChatter struct {
	reply string
	err   error
	calls int
}

func (f *fakeChatter) Chat(ctx context.Context, prompt string, format json.RawMessage) (string, error) {
	f.calls++
	return f.reply, f.err
}

type testEnv struct {
	server   *Server
	store    *fakeStore
	pipeline *fakePipeline
	chat     *fakeChatter
	tracker  *session.Tracker
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := newFakeStore()
	pipe := &fakePipeline{result: &workoutlog.Result{RowsWritten: 2, Message: "Workout logged successfully."}}
	chat := &fakeChatter{reply: "Solid month of training."}
	tracker := session.NewTracker(session.NewMemoryStore())
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := New(store, pipe, &fakeGenerator{}, chat, tracker,
		config.AuthConfig{JWTSecret: testSecret, TokenTTLHrs: 1}, log)
	return &testEnv{server: srv, store: store, pipeline: pipe, chat: chat, tracker: tracker}
}

func (e *testEnv) do(t *testing.T, method, path, body string, userID int64) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if userID != 0 {
		req.Header.Set("Authorization", "Bearer "+signTestToken(t, testSecret, userID, time.Hour))
	}
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return env
}

// TestRegisterValidation verifies missing fields produce per-field errors.
func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/register", `{"email":"a@b.c","password":"short"}`, 0)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if resp.Success {
		t.Error("success = true, want false")
	}
	if resp.Errors["name"] == "" || resp.Errors["password"] == "" {
		t.Errorf("errors = %v, want name and password entries", resp.Errors)
	}
}

// TestRegisterAndLogin walks the happy path: register, then log in with the
// same credentials and get a token back.
func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	body := `{"name":"Ada","email":"ada@example.com","password":"correcthorse","password_confirmation":"correcthorse"}`

	rec := env.do(t, http.MethodPost, "/api/register", body, 0)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodPost, "/api/login", `{"email":"ada@example.com","password":"correcthorse"}`, 0)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, want 200", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	data, ok := resp.Data.(map[string]any)
	if !ok || data["token"] == "" {
		t.Errorf("login response missing token: %v", resp.Data)
	}
}

// TestLoginWrongPassword verifies a bad password is a 401, not a 404.
func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/register",
		`{"name":"Ada","email":"ada@example.com","password":"correcthorse","password_confirmation":"correcthorse"}`, 0)

	rec := env.do(t, http.MethodPost, "/api/login", `{"email":"ada@example.com","password":"wrong-pass"}`, 0)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

// TestRegisterDuplicateEmail verifies a second registration on the same email
// fails with a field error.
func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	body := `{"name":"Ada","email":"ada@example.com","password":"correcthorse","password_confirmation":"correcthorse"}`

	env.do(t, http.MethodPost, "/api/register", body, 0)
	rec := env.do(t, http.MethodPost, "/api/register", body, 0)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if resp.Errors["email"] == "" {
		t.Errorf("errors = %v, want email entry", resp.Errors)
	}
}

// TestGetWorkoutSetNotFound verifies an unknown or unowned set id is a 404
// with the uniform envelope.
func TestGetWorkoutSetNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/workout-sets/99", "", 1)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if resp.Success {
		t.Error("success = true, want false")
	}
}

// TestWorkoutSetOwnership verifies one user cannot read another user's set.
func TestWorkoutSetOwnership(t *testing.T) {
	env := newTestEnv(t)
	env.store.sets[5] = &models.WorkoutSet{ID: 5, UserID: 1, Name: "Push Day"}

	if rec := env.do(t, http.MethodGet, "/api/workout-sets/5", "", 1); rec.Code != http.StatusOK {
		t.Fatalf("owner status = %d, want 200", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/api/workout-sets/5", "", 2); rec.Code != http.StatusNotFound {
		t.Fatalf("other user status = %d, want 404", rec.Code)
	}
}

// TestUpdateInstanceBadAction verifies the action dispatcher rejects unknown
// actions.
func TestUpdateInstanceBadAction(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPut, "/api/instances/3", `{"action":"color"}`, 1)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

// TestFinishWorkoutInlinePayload verifies a client-submitted progress map
// reaches the pipeline with integer keys intact.
func TestFinishWorkoutInlinePayload(t *testing.T) {
	env := newTestEnv(t)
	body := `{"workout_set_id":7,"exercises":{"532":{"10":{"instance_id":10,"is_completed":true}}}}`

	rec := env.do(t, http.MethodPost, "/api/workout-logs", body, 1)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	got := env.pipeline.got
	if got == nil {
		t.Fatal("pipeline never called")
	}
	if _, ok := got.Exercises[532][10]; !ok {
		t.Errorf("exercises = %v, want entry [532][10]", got.Exercises)
	}
}

// TestFinishWorkoutUsesTrackedSession verifies that when the client submits no
// progress map, the server-side session is flushed and then cleared.
func TestFinishWorkoutUsesTrackedSession(t *testing.T) {
	env := newTestEnv(t)
	key := session.Key{UserID: 1, WorkoutSetID: 7}
	done := true
	if _, err := env.tracker.Record(key, 532, 10, session.Update{Completed: &done}); err != nil {
		t.Fatal(err)
	}

	rec := env.do(t, http.MethodPost, "/api/workout-logs", `{"workout_set_id":7}`, 1)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if env.pipeline.got == nil || len(env.pipeline.got.Exercises) != 1 {
		t.Fatalf("pipeline session = %+v, want tracked session", env.pipeline.got)
	}
	after, err := env.tracker.Session(key)
	if err != nil {
		t.Fatal(err)
	}
	if len(after.Exercises) != 0 {
		t.Errorf("session not cleared after flush: %v", after.Exercises)
	}
}

// TestFinishWorkoutDuplicate verifies a resubmitted batch reports success
// without claiming new rows.
func TestFinishWorkoutDuplicate(t *testing.T) {
	env := newTestEnv(t)
	env.pipeline.err = workoutlog.ErrAlreadyLogged

	rec := env.do(t, http.MethodPost, "/api/workout-logs",
		`{"workout_set_id":7,"exercises":{"532":{"10":{"instance_id":10,"is_completed":true}}}}`, 1)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if !resp.Success || resp.Message != "Workout already logged." {
		t.Errorf("envelope = %+v, want already-logged success", resp)
	}
}

// TestFinishWorkoutValidationError verifies pipeline validation surfaces as a
// 422 with the pipeline's message.
func TestFinishWorkoutValidationError(t *testing.T) {
	env := newTestEnv(t)
	env.pipeline.err = &workoutlog.ValidationError{Msg: "Complete at least one set."}

	rec := env.do(t, http.MethodPost, "/api/workout-logs",
		`{"workout_set_id":7,"exercises":{"532":{"10":{"instance_id":10}}}}`, 1)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	if resp := decodeEnvelope(t, rec); resp.Message != "Complete at least one set." {
		t.Errorf("message = %q", resp.Message)
	}
}

// TestVolumeEmptyMonth verifies an empty month serializes as data: [] rather
// than null.
func TestVolumeEmptyMonth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/workout-logs/volume?year=2026&month=2", "", 1)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, `"data":[]`) {
		t.Errorf("body = %s, want data:[]", body)
	}
}

// TestVolumeBadMonth verifies out-of-range month parameters are rejected.
func TestVolumeBadMonth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/workout-logs/volume?month=13", "", 1)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

// TestVolumeRequiresAuth verifies analytics endpoints sit behind the token
// check.
func TestVolumeRequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/workout-logs/volume", "", 0)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

// TestAnalysisNoData verifies the model is not consulted when the month has
// no volume rows.
func TestAnalysisNoData(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/workout-logs/analysis", `{"year":2026,"month":2}`, 1)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if env.chat.calls != 0 {
		t.Errorf("chat calls = %d, want 0", env.chat.calls)
	}
}

// TestAnalysisModelDown verifies inference failures map to a 502 without
// leaking transport detail.
func TestAnalysisModelDown(t *testing.T) {
	env := newTestEnv(t)
	env.store.volume = []models.DailyVolume{{PerformedOn: "2026-02-03", TotalVolume: 900}}
	env.chat.err = genai.ErrUnavailable

	rec := env.do(t, http.MethodPost, "/api/workout-logs/analysis", `{"year":2026,"month":2}`, 1)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}

// TestAnalysisSuccess verifies the narrative comes back in the data payload.
func TestAnalysisSuccess(t *testing.T) {
	env := newTestEnv(t)
	env.store.volume = []models.DailyVolume{{PerformedOn: "2026-02-03", TotalVolume: 900}}

	rec := env.do(t, http.MethodPost, "/api/workout-logs/analysis", `{"year":2026,"month":2}`, 1)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	data, _ := resp.Data.(map[string]any)
	if data["analysis"] != "Solid month of training." {
		t.Errorf("analysis = %v", data["analysis"])
	}
}

// TestGeneratePlanInvalidQuestionnaire verifies questionnaire validation
// failures come back as a 422.
func TestGeneratePlanInvalidQuestionnaire(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/workout-sets/generate",
		`{"experience":"wizard","goal":"fitness","weight":80,"height":180}`, 1)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

// TestSessionRoundTrip verifies record and fetch through the HTTP surface.
func TestSessionRoundTrip(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/workout-sets/7/session",
		`{"exercise_id":532,"instance_id":10,"is_completed":true,"weight":52.5}`, 1)
	if rec.Code != http.StatusOK {
		t.Fatalf("record status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, "/api/workout-sets/7/session", "", 1)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d, want 200", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, `"is_completed":true`) {
		t.Errorf("body = %s, want recorded completion", body)
	}
}
