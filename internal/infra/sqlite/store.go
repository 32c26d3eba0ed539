package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"exam-session-service/internal/domain"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS exam_results (
    session_id  TEXT NOT NULL,
    user_id     TEXT NOT NULL DEFAULT '',
    name        TEXT NOT NULL DEFAULT '',
    quiz_id     TEXT NOT NULL,
    quiz_name   TEXT NOT NULL DEFAULT '',
    score       REAL NOT NULL,
    total       INTEGER NOT NULL,
    duration_ms INTEGER NOT NULL,
    finished_at TEXT NOT NULL,
    difficulty  TEXT NOT NULL,
    league      TEXT NOT NULL,
    questions   TEXT NOT NULL,
    answers     TEXT NOT NULL,
    PRIMARY KEY (session_id, finished_at)
);
CREATE TABLE IF NOT EXISTS league_unlocks (
    user_id TEXT NOT NULL,
    league  TEXT NOT NULL,
    PRIMARY KEY (user_id, league)
);`

// Store is a single-file result and unlock store for deployments without
// Postgres.
type Store struct {
	db *sql.DB
}

// Open connects to the SQLite database at dsn and creates the tables.
func Open(dsn string) (*Store, error) {
	if dsn != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// one connection keeps :memory: databases shared and writes serialized
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) SaveResult(ctx context.Context, res domain.ResultSubmission) error {
	questions, err := json.Marshal(res.Questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}
	answers, err := json.Marshal(res.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO exam_results
			(session_id, user_id, name, quiz_id, quiz_name, score, total, duration_ms,
			 finished_at, difficulty, league, questions, answers)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.SessionID, res.UserID, res.Name, res.QuizID, res.QuizName,
		res.Score, res.Total, res.Duration.Milliseconds(),
		res.Timestamp.UTC().Format("2006-01-02T15:04:05.000000000Z"),
		string(res.Difficulty), res.League.String(),
		string(questions), string(answers))
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

// CountResults reports how many results are stored for a session.
func (s *Store) CountResults(ctx context.Context, sessionID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM exam_results WHERE session_id = ?`, sessionID).Scan(&n)
	return n, err
}

func (s *Store) Unlocked(ctx context.Context, userID string) ([]domain.LeagueTier, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT league FROM league_unlocks WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("load unlocks: %w", err)
	}
	defer rows.Close()

	var tiers []domain.LeagueTier
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tier, err := domain.ParseLeague(name)
		if err != nil {
			return nil, err
		}
		tiers = append(tiers, tier)
	}
	return tiers, rows.Err()
}

func (s *Store) Unlock(ctx context.Context, userID string, tier domain.LeagueTier) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO league_unlocks (user_id, league) VALUES (?, ?)`,
		userID, tier.String())
	if err != nil {
		return fmt.Errorf("record unlock: %w", err)
	}
	return nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}
