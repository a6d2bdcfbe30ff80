package session

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists session blobs in a local SQLite file so in-progress
// workouts survive a server restart. One row per (user, workout set).
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (or creates) the session database at dir/sessions.db.
func OpenSQLiteStore(dir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating session dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "sessions.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening session db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS workout_sessions (
		user_id        INTEGER NOT NULL,
		workout_set_id INTEGER NOT NULL,
		data           TEXT NOT NULL,
		updated_at     TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (user_id, workout_set_id)
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating session table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(key Key) ([]byte, error) {
	var data []byte
	err := s.db.QueryRow(
		`SELECT data FROM workout_sessions WHERE user_id = ? AND workout_set_id = ?`,
		key.UserID, key.WorkoutSetID,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	return data, nil
}

func (s *SQLiteStore) Save(key Key, data []byte) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO workout_sessions (user_id, workout_set_id, data) VALUES (?, ?, ?)`,
		key.UserID, key.WorkoutSetID, data,
	)
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Delete(key Key) error {
	_, err := s.db.Exec(
		`DELETE FROM workout_sessions WHERE user_id = ? AND workout_set_id = ?`,
		key.UserID, key.WorkoutSetID,
	)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// Close closes the session database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
