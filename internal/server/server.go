package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/liftlog/liftlog/internal/config"
	"github.com/liftlog/liftlog/internal/models"
	"github.com/liftlog/liftlog/internal/planner"
	"github.com/liftlog/liftlog/internal/session"
	"github.com/liftlog/liftlog/internal/storage"
	"github.com/liftlog/liftlog/internal/workoutlog"
)

// Store is the storage surface the HTTP handlers need. Every call takes the
// authenticated user id so ownership checks live in one place.
type Store interface {
	CreateUser(ctx context.Context, name, email, passwordHash string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)

	ListWorkoutSets(ctx context.Context, userID int64) ([]models.WorkoutSet, error)
	GetWorkoutSet(ctx context.Context, id, userID int64) (*models.WorkoutSet, error)
	CreateWorkoutSet(ctx context.Context, userID int64, name, description string) (*models.WorkoutSet, error)
	UpdateWorkoutSet(ctx context.Context, id, userID int64, name, description string) (*models.WorkoutSet, error)
	DeleteWorkoutSet(ctx context.Context, id, userID int64) error

	CreateExercise(ctx context.Context, userID int64, ex *models.Exercise) (*models.Exercise, error)
	DeleteExercise(ctx context.Context, id, userID int64) error
	UpdateExerciseRestTime(ctx context.Context, id, userID int64, restTime int) error
	UpdateExerciseMemo(ctx context.Context, id, userID int64, memo string) (*models.Exercise, error)

	AppendInstance(ctx context.Context, exerciseID, userID int64) (*models.ExerciseInstance, error)
	RemoveLatestInstance(ctx context.Context, exerciseID, userID int64) error
	UpdateInstanceWeight(ctx context.Context, id, userID int64, weight *float64) (*models.ExerciseInstance, error)
	UpdateInstanceReps(ctx context.Context, id, userID int64, reps *int) (*models.ExerciseInstance, error)

	VolumeOverTime(ctx context.Context, userID int64, year, month int) ([]models.DailyVolume, error)
	VolumeByMuscle(ctx context.Context, userID int64, year, month int) ([]models.MuscleVolume, error)
	RecentWorkoutLogs(ctx context.Context, userID int64, limit int) ([]models.WorkoutLog, error)
}

var _ Store = (*storage.DB)(nil)

// Finisher flushes a workout session into persistent log rows.
type Finisher interface {
	Finish(ctx context.Context, userID int64, sess *models.WorkoutSession) (*workoutlog.Result, error)
}

var _ Finisher = (*workoutlog.Pipeline)(nil)

// Generator produces workout plans from a questionnaire.
type Generator interface {
	Generate(ctx context.Context, userID int64, q planner.Questionnaire) ([]models.WorkoutSet, error)
}

var _ Generator = (*planner.Planner)(nil)

// Chatter sends a prompt to the language model.
type Chatter interface {
	Chat(ctx context.Context, prompt string, format json.RawMessage) (string, error)
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store    Store
	pipeline Finisher
	planner  Generator
	ai       Chatter
	tracker  *session.Tracker
	auth     config.AuthConfig
	log      *slog.Logger
	router   chi.Router
}

// New creates a new Server with all routes configured.
func New(store Store, pipeline Finisher, gen Generator, ai Chatter, tracker *session.Tracker, auth config.AuthConfig, log *slog.Logger) *Server {
	s := &Server{
		store:    store,
		pipeline: pipeline,
		planner:  gen,
		ai:       ai,
		tracker:  tracker,
		auth:     auth,
		log:      log,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Post("/api/register", s.handleRegister)
	s.router.Post("/api/login", s.handleLogin)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(JWTAuth(s.auth.JWTSecret))

		r.Post("/logout", s.handleLogout)
		r.Get("/user", s.handleUser)

		r.Get("/workout-sets", s.handleListWorkoutSets)
		r.Post("/workout-sets", s.handleCreateWorkoutSet)
		r.Post("/workout-sets/generate", s.handleGeneratePlan)
		r.Get("/workout-sets/{id}", s.handleGetWorkoutSet)
		r.Put("/workout-sets/{id}", s.handleUpdateWorkoutSet)
		r.Delete("/workout-sets/{id}", s.handleDeleteWorkoutSet)
		r.Post("/workout-sets/{id}/exercises", s.handleCreateExercise)

		r.Get("/workout-sets/{id}/session", s.handleGetSession)
		r.Post("/workout-sets/{id}/session", s.handleRecordSession)
		r.Delete("/workout-sets/{id}/session", s.handleClearSession)

		r.Delete("/exercises/{id}", s.handleDeleteExercise)
		r.Put("/exercises/{id}/rest-time", s.handleUpdateRestTime)
		r.Put("/exercises/{id}/memo", s.handleUpdateMemo)
		r.Post("/exercises/{id}/instances", s.handleAppendInstance)
		r.Delete("/exercises/{id}/instances/latest", s.handleRemoveLatestInstance)
		r.Put("/instances/{id}", s.handleUpdateInstance)

		r.Post("/workout-logs", s.handleFinishWorkout)
		r.Get("/workout-logs/recent", s.handleRecentLogs)
		r.Get("/workout-logs/volume", s.handleVolumeOverTime)
		r.Get("/workout-logs/muscle", s.handleVolumeByMuscle)
		r.Post("/workout-logs/analysis", s.handleAnalysis)
	})
}
