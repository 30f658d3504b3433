// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/typeduelz/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for progression data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS progression (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			skill_level INTEGER NOT NULL,
			duel_points INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS attempts (
			seq INTEGER PRIMARY KEY,
			id TEXT NOT NULL UNIQUE,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			base_difficulty TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			mode TEXT NOT NULL,
			character TEXT NOT NULL,
			sentence TEXT NOT NULL,
			wpm INTEGER NOT NULL,
			accuracy INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_ended_at ON attempts(ended_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return s.addColumn("progression", "duel_points", "INTEGER NOT NULL DEFAULT 0")
}

// addColumn adds a column to tables created by older versions.
func (s *Store) addColumn(table, column, decl string) error {
	var exists int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`, table, column,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to inspect %s: %w", table, err)
	}
	if exists > 0 {
		return nil
	}
	if _, err := s.db.Exec(fmt.Sprintf(`ALTER TABLE %s ADD COLUMN %s %s`, table, column, decl)); err != nil {
		return fmt.Errorf("failed to add %s.%s: %w", table, column, err)
	}
	return nil
}

// Load reads the counters and the full speed history, oldest first.
func (s *Store) Load(ctx context.Context) (model.ProgressionCounters, error) {
	counters, err := s.Counters(ctx)
	if err != nil {
		return model.ProgressionCounters{}, err
	}
	history, err := s.ListAttempts(ctx, model.StatsConfig{})
	if err != nil {
		return model.ProgressionCounters{}, err
	}
	counters.SpeedHistory = history
	return counters, nil
}

// Counters reads the skill level and duel points without the speed history.
func (s *Store) Counters(ctx context.Context) (model.ProgressionCounters, error) {
	var counters model.ProgressionCounters
	err := s.db.QueryRowContext(ctx,
		`SELECT skill_level, duel_points FROM progression WHERE id = 1`,
	).Scan(&counters.SkillLevel, &counters.DuelPoints)
	if err != nil && err != sql.ErrNoRows {
		return model.ProgressionCounters{}, fmt.Errorf("failed to read progression: %w", err)
	}
	return counters, nil
}

// Save records one finished attempt and adds its gains to the stored counters.
// Counters are incremented in place, so several processes sharing the database
// all keep their attempts. Saving the same attempt twice is a no-op.
func (s *Store) Save(ctx context.Context, update model.ProgressUpdate) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	inserted, err := insertAttempt(ctx, tx, update.Attempt)
	if err != nil {
		return err
	}
	if !inserted {
		return tx.Commit()
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO progression (id, skill_level, duel_points) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			skill_level = skill_level + excluded.skill_level,
			duel_points = duel_points + excluded.duel_points`,
		update.SkillGained,
		update.DuelPointsGained,
	); err != nil {
		return fmt.Errorf("failed to save progression: %w", err)
	}
	return tx.Commit()
}

func insertAttempt(ctx context.Context, tx *sql.Tx, r model.AttemptRecord) (bool, error) {
	res, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO attempts (id, started_at, ended_at, base_difficulty, difficulty, mode, character, sentence, wpm, accuracy, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID,
		r.StartedAt.Format(time.RFC3339Nano),
		r.EndedAt.Format(time.RFC3339Nano),
		string(r.BaseDifficulty),
		string(r.Difficulty),
		string(r.Mode),
		string(r.Character),
		r.Sentence,
		r.WPM,
		r.Accuracy,
		r.DurationMs,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert attempt %s: %w", r.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check attempt insert: %w", err)
	}
	return n > 0, nil
}

// ListAttempts returns attempts filtered by stats config, oldest first.
func (s *Store) ListAttempts(ctx context.Context, cfg model.StatsConfig) ([]model.AttemptRecord, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Difficulty != "" {
		clauses = append(clauses, "base_difficulty = ?")
		args = append(args, string(cfg.Difficulty))
	}
	if cfg.Mode != "" {
		clauses = append(clauses, "mode = ?")
		args = append(args, string(cfg.Mode))
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, started_at, ended_at, base_difficulty, difficulty, mode, character, sentence, wpm, accuracy, duration_ms
		FROM attempts
		WHERE %s
		ORDER BY seq ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var attempts []model.AttemptRecord
	for rows.Next() {
		var r model.AttemptRecord
		var startedAt, endedAt, base, diff, mode, character string
		if err := rows.Scan(&r.ID, &startedAt, &endedAt, &base, &diff, &mode, &character, &r.Sentence, &r.WPM, &r.Accuracy, &r.DurationMs); err != nil {
			return nil, err
		}
		if r.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, err
		}
		if r.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt); err != nil {
			return nil, err
		}
		r.BaseDifficulty = model.Difficulty(base)
		r.Difficulty = model.Difficulty(diff)
		r.Mode = model.Mode(mode)
		r.Character = model.Character(character)
		attempts = append(attempts, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if cfg.Last > 0 && len(attempts) > cfg.Last {
		attempts = attempts[len(attempts)-cfg.Last:]
	}
	return attempts, nil
}

// Reset deletes all progression data.
func (s *Store) Reset(ctx context.Context) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()
	for _, stmt := range []string{`DELETE FROM attempts`, `DELETE FROM progression`} {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to reset progression: %w", err)
		}
	}
	return tx.Commit()
}
