// Package storage provides SQLite-based persistence for best times,
// attempt history and player preferences.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/tui-skybattle/internal/level"
)

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// BestTimeEntry is the fastest winning time recorded for a level.
type BestTimeEntry struct {
	LevelID   string    `json:"level"`
	Seconds   float64   `json:"seconds"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Attempt is one finished run of a level.
type Attempt struct {
	ID        int64     `json:"id"`
	LevelID   string    `json:"level"`
	Won       bool      `json:"won"`
	Elapsed   float64   `json:"elapsed"`
	Kills     int       `json:"kills"`
	Ticks     uint64    `json:"ticks"`
	CreatedAt time.Time `json:"created_at"`
}

// LevelStats contains aggregated statistics for a level.
type LevelStats struct {
	LevelID    string    `json:"level"`
	Attempts   int       `json:"attempts"`
	Wins       int       `json:"wins"`
	TotalKills int64     `json:"total_kills"`
	LastPlayed time.Time `json:"last_played"`
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS best_times (
			level_id TEXT PRIMARY KEY,
			seconds REAL NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS attempts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			level_id TEXT NOT NULL,
			won INTEGER NOT NULL,
			elapsed REAL NOT NULL,
			kills INTEGER NOT NULL DEFAULT 0,
			ticks INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_attempts_level_id ON attempts(level_id);

		CREATE TABLE IF NOT EXISTS preferences (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// BestTime returns the best time for a level. ok is false when the level
// has never been won.
func (s *Store) BestTime(levelID string) (float64, bool, error) {
	var secs float64
	err := s.db.QueryRow(
		"SELECT seconds FROM best_times WHERE level_id = ?",
		levelID,
	).Scan(&secs)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("storage: cannot query best time: %w", err)
	}
	return secs, true, nil
}

// SetBestTime stores seconds as the best time of a level, replacing any
// previous record. Callers decide whether the time is an improvement.
func (s *Store) SetBestTime(levelID string, seconds float64) error {
	_, err := s.db.Exec(
		`INSERT INTO best_times (level_id, seconds, updated_at)
		 VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(level_id) DO UPDATE SET seconds = excluded.seconds, updated_at = excluded.updated_at`,
		levelID, seconds,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save best time: %w", err)
	}
	return nil
}

var _ level.BestTimeStore = (*Store)(nil)

// BestTimes returns every recorded best time ordered by level ID.
func (s *Store) BestTimes() ([]BestTimeEntry, error) {
	rows, err := s.db.Query(
		`SELECT level_id, seconds, updated_at FROM best_times ORDER BY level_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query best times: %w", err)
	}
	defer rows.Close()

	var entries []BestTimeEntry
	for rows.Next() {
		var e BestTimeEntry
		var updatedAt any
		if err := rows.Scan(&e.LevelID, &e.Seconds, &updatedAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.UpdatedAt = parseTime(updatedAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return entries, nil
}

// ClearBestTime deletes the record of a level.
func (s *Store) ClearBestTime(levelID string) error {
	_, err := s.db.Exec("DELETE FROM best_times WHERE level_id = ?", levelID)
	if err != nil {
		return fmt.Errorf("storage: cannot clear best time: %w", err)
	}
	return nil
}

// RecordAttempt stores the outcome of a finished attempt.
// Returns the ID of the inserted record.
func (s *Store) RecordAttempt(r level.Result) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO attempts (level_id, won, elapsed, kills, ticks) VALUES (?, ?, ?, ?, ?)`,
		r.Level, r.Won, r.Elapsed, r.Kills, int64(r.Ticks),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save attempt: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}
	return id, nil
}

// RecentAttempts returns the latest attempts at a level, newest first.
func (s *Store) RecentAttempts(levelID string, limit int) ([]Attempt, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, level_id, won, elapsed, kills, ticks, created_at
		 FROM attempts
		 WHERE level_id = ?
		 ORDER BY id DESC
		 LIMIT ?`,
		levelID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query attempts: %w", err)
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		var a Attempt
		var ticks int64
		var createdAt any
		if err := rows.Scan(&a.ID, &a.LevelID, &a.Won, &a.Elapsed, &a.Kills, &ticks, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		a.Ticks = uint64(ticks)
		a.CreatedAt = parseTime(createdAt)
		attempts = append(attempts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return attempts, nil
}

// GetLevelStats retrieves aggregated statistics for a level.
func (s *Store) GetLevelStats(levelID string) (*LevelStats, error) {
	stats := &LevelStats{LevelID: levelID}

	var lastPlayed any
	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(won), 0), COALESCE(SUM(kills), 0), MAX(created_at)
		 FROM attempts WHERE level_id = ?`,
		levelID,
	).Scan(&stats.Attempts, &stats.Wins, &stats.TotalKills, &lastPlayed)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get level stats: %w", err)
	}
	stats.LastPlayed = parseTime(lastPlayed)

	return stats, nil
}

// Preference returns a stored preference. ok is false when unset.
func (s *Store) Preference(key string) (string, bool, error) {
	var v string
	err := s.db.QueryRow("SELECT value FROM preferences WHERE key = ?", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage: cannot query preference: %w", err)
	}
	return v, true, nil
}

// SetPreference stores a preference, replacing the previous value.
func (s *Store) SetPreference(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO preferences (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save preference: %w", err)
	}
	return nil
}

// AttemptRecorder returns an observer that stores every finished attempt.
// Failures are logged and never reach the game loop.
func (s *Store) AttemptRecorder(logger *log.Logger) level.Observer {
	return attemptRecorder{store: s, logger: logger}
}

type attemptRecorder struct {
	store  *Store
	logger *log.Logger
}

func (attemptRecorder) OnTick(level.Snapshot, level.TickStats) {}

func (r attemptRecorder) OnFinish(res level.Result) {
	if _, err := r.store.RecordAttempt(res); err != nil && r.logger != nil {
		r.logger.Warn("attempt not recorded", "level", res.Level, "err", err)
	}
}

// parseTime handles both time.Time and string datetimes returned by the driver.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
