// Package storage provides SQLite-based persistence for loop sessions.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/tickloop/internal/config"
)

// Session modes.
const (
	ModeLocal = "local"
	ModeSSH   = "ssh"
	ModeBench = "bench"
)

// Store manages the SQLite database connection for session persistence.
type Store struct {
	db *sql.DB
}

// Session is the record of one completed loop run.
type Session struct {
	ID        string
	SimID     string
	Mode      string
	Preset    string
	ExitCode  int
	Ticks     uint64
	Frames    uint64
	SimTime   time.Duration // Accumulated tick time
	WallTime  time.Duration // Loop clock at exit
	Score     int
	CreatedAt time.Time
}

// SimSummary contains aggregated statistics for one sim.
type SimSummary struct {
	SimID      string
	Sessions   int
	Ticks      uint64
	Frames     uint64
	SimTime    time.Duration
	WallTime   time.Duration
	BestScore  int
	LastPlayed time.Time
}

// AverageTickRate returns ticks per second of wall time over all sessions.
func (s SimSummary) AverageTickRate() float64 {
	if s.WallTime <= 0 {
		return 0
	}
	return float64(s.Ticks) / s.WallTime.Seconds()
}

// AverageFrameRate returns frames per second of wall time over all sessions.
func (s SimSummary) AverageFrameRate() float64 {
	if s.WallTime <= 0 {
		return 0
	}
	return float64(s.Frames) / s.WallTime.Seconds()
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	dbPath = config.ExpandPath(dbPath)

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
		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			sim_id TEXT NOT NULL,
			mode TEXT NOT NULL,
			preset TEXT NOT NULL DEFAULT '',
			exit_code INTEGER NOT NULL DEFAULT 0,
			ticks INTEGER NOT NULL DEFAULT 0,
			frames INTEGER NOT NULL DEFAULT 0,
			sim_time_ms INTEGER NOT NULL DEFAULT 0,
			wall_time_ms INTEGER NOT NULL DEFAULT 0,
			score INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_sim_id ON sessions(sim_id);
		CREATE INDEX IF NOT EXISTS idx_sessions_created ON sessions(created_at DESC);
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

// SaveSession records a finished session. A random id is assigned when
// sess.ID is empty. Returns the id of the stored record.
func (s *Store) SaveSession(sess Session) (string, error) {
	if sess.SimID == "" {
		return "", errors.New("storage: session has no sim id")
	}
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	if sess.Mode == "" {
		sess.Mode = ModeLocal
	}

	_, err := s.db.Exec(
		`INSERT INTO sessions
		 (id, sim_id, mode, preset, exit_code, ticks, frames, sim_time_ms, wall_time_ms, score)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID,
		sess.SimID,
		sess.Mode,
		sess.Preset,
		sess.ExitCode,
		int64(sess.Ticks),
		int64(sess.Frames),
		sess.SimTime.Milliseconds(),
		sess.WallTime.Milliseconds(),
		sess.Score,
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot save session: %w", err)
	}

	return sess.ID, nil
}

const sessionColumns = `id, sim_id, mode, preset, exit_code, ticks, frames,
		sim_time_ms, wall_time_ms, score, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (Session, error) {
	var (
		sess          Session
		ticks, frames int64
		simMS, wallMS int64
		createdAt     any
	)
	err := row.Scan(
		&sess.ID,
		&sess.SimID,
		&sess.Mode,
		&sess.Preset,
		&sess.ExitCode,
		&ticks,
		&frames,
		&simMS,
		&wallMS,
		&sess.Score,
		&createdAt,
	)
	if err != nil {
		return sess, err
	}
	sess.Ticks = uint64(ticks)
	sess.Frames = uint64(frames)
	sess.SimTime = time.Duration(simMS) * time.Millisecond
	sess.WallTime = time.Duration(wallMS) * time.Millisecond
	sess.CreatedAt = parseTime(createdAt)
	return sess, nil
}

// parseTime handles both time.Time and string datetime values.
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

// SessionByID retrieves a session by its id. Returns nil if not found.
func (s *Store) SessionByID(id string) (*Session, error) {
	row := s.db.QueryRow(`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query session: %w", err)
	}
	return &sess, nil
}

// RecentSessions retrieves the most recent sessions, newest first.
// An empty simID matches every sim.
func (s *Store) RecentSessions(simID string, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT `+sessionColumns+`
		 FROM sessions
		 WHERE ? = '' OR sim_id = ?
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ?`,
		simID, simID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return sessions, nil
}

// Summary retrieves aggregated statistics for one sim.
func (s *Store) Summary(simID string) (*SimSummary, error) {
	summaries, err := s.summaries(`WHERE sim_id = ?`, simID)
	if err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return &SimSummary{SimID: simID}, nil
	}
	return &summaries[0], nil
}

// Summaries retrieves statistics for every sim that has sessions,
// ordered by sim id.
func (s *Store) Summaries() ([]SimSummary, error) {
	return s.summaries("")
}

func (s *Store) summaries(where string, args ...any) ([]SimSummary, error) {
	rows, err := s.db.Query(
		`SELECT sim_id, COUNT(*), SUM(ticks), SUM(frames), SUM(sim_time_ms),
		        SUM(wall_time_ms), MAX(score), MAX(created_at)
		 FROM sessions `+where+`
		 GROUP BY sim_id
		 ORDER BY sim_id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query summaries: %w", err)
	}
	defer rows.Close()

	var summaries []SimSummary
	for rows.Next() {
		var (
			sum           SimSummary
			ticks, frames int64
			simMS, wallMS int64
			lastPlayed    any
		)
		if err := rows.Scan(&sum.SimID, &sum.Sessions, &ticks, &frames, &simMS, &wallMS, &sum.BestScore, &lastPlayed); err != nil {
			return nil, fmt.Errorf("storage: cannot scan summary row: %w", err)
		}
		sum.Ticks = uint64(ticks)
		sum.Frames = uint64(frames)
		sum.SimTime = time.Duration(simMS) * time.Millisecond
		sum.WallTime = time.Duration(wallMS) * time.Millisecond
		sum.LastPlayed = parseTime(lastPlayed)
		summaries = append(summaries, sum)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return summaries, nil
}

// ClearSessions deletes all sessions for the given sim.
// An empty simID deletes every session.
func (s *Store) ClearSessions(simID string) error {
	_, err := s.db.Exec("DELETE FROM sessions WHERE ? = '' OR sim_id = ?", simID, simID)
	if err != nil {
		return fmt.Errorf("storage: cannot clear sessions: %w", err)
	}
	return nil
}
