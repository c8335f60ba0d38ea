// apps/go-server/internal/store/sqlite.go
//
// SQLite implementation of the game.Store interface.
//
// Schema lives in assets/sql (see Migrate). Team and sequence are stored as
// JSON arrays. Append is a single json_insert UPDATE plus a re-read inside
// one transaction, so concurrent appends to one session never lose writes.
// Finish updates the status column the same way.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/robalobadob/pokesimon/apps/go-server/internal/game"
)

// SQLite persists sessions in a *sql.DB opened with the sqlite3 driver.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

var _ game.Store = (*SQLite)(nil)

// NewSQLiteStore wraps an already migrated database.
func NewSQLiteStore(db *sql.DB) *SQLite {
	return &SQLite{db: db, now: utcNow}
}

// Create inserts a new session row.
func (s *SQLite) Create(ctx context.Context, sess *game.Session) error {
	stamp(sess, s.now())
	team, err := json.Marshal(sess.InitialTeam)
	if err != nil {
		return fmt.Errorf("%w: encode team: %w", game.ErrPersistence, err)
	}
	seq, err := json.Marshal(sess.Sequence)
	if err != nil {
		return fmt.Errorf("%w: encode sequence: %w", game.ErrPersistence, err)
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO sessions (id, initial_team, sequence, status, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?)`,
		sess.ID, string(team), string(seq), string(sess.Status), formatTime(sess.CreatedAt), formatTime(sess.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("%w: insert session: %w", game.ErrPersistence, err)
	}
	return nil
}

// Get loads a session row.
func (s *SQLite) Get(ctx context.Context, id string) (*game.Session, error) {
	return scanSession(s.db.QueryRowContext(ctx, selectSession, id))
}

// Append adds pick to the stored sequence and returns the updated session.
func (s *SQLite) Append(ctx context.Context, id string, pick int) (*game.Session, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: begin: %w", game.ErrPersistence, err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
        UPDATE sessions
        SET sequence = json_insert(sequence, '$[#]', ?), updated_at = ?
        WHERE id = ?`, pick, formatTime(s.now()), id)
	if err != nil {
		return nil, fmt.Errorf("%w: append: %w", game.ErrPersistence, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("%w: append: %w", game.ErrPersistence, err)
	}
	if n == 0 {
		return nil, game.ErrNotFound
	}

	sess, err := scanSession(tx.QueryRowContext(ctx, selectSession, id))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: commit: %w", game.ErrPersistence, err)
	}
	return sess, nil
}

// Finish records a terminal outcome and returns the updated session.
func (s *SQLite) Finish(ctx context.Context, id string, out game.Outcome) (*game.Session, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: begin: %w", game.ErrPersistence, err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `UPDATE sessions SET status = ?, updated_at = ? WHERE id = ?`,
		string(out), formatTime(s.now()), id)
	if err != nil {
		return nil, fmt.Errorf("%w: finish: %w", game.ErrPersistence, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("%w: finish: %w", game.ErrPersistence, err)
	}
	if n == 0 {
		return nil, game.ErrNotFound
	}

	sess, err := scanSession(tx.QueryRowContext(ctx, selectSession, id))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: commit: %w", game.ErrPersistence, err)
	}
	return sess, nil
}

const selectSession = `
    SELECT id, initial_team, sequence, status, created_at, updated_at
    FROM sessions WHERE id = ?`

// scanSession converts a row into a Session, mapping sql.ErrNoRows to game.ErrNotFound.
func scanSession(row *sql.Row) (*game.Session, error) {
	var (
		sess             game.Session
		team, seq, status string
		created, updated  string
	)
	if err := row.Scan(&sess.ID, &team, &seq, &status, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, game.ErrNotFound
		}
		return nil, fmt.Errorf("%w: scan session: %w", game.ErrPersistence, err)
	}
	if err := json.Unmarshal([]byte(team), &sess.InitialTeam); err != nil {
		return nil, fmt.Errorf("%w: decode team: %w", game.ErrPersistence, err)
	}
	if err := json.Unmarshal([]byte(seq), &sess.Sequence); err != nil {
		return nil, fmt.Errorf("%w: decode sequence: %w", game.ErrPersistence, err)
	}
	if sess.Sequence == nil {
		sess.Sequence = []int{}
	}
	sess.Status = game.Outcome(status)
	sess.CreatedAt = parseTime(created)
	sess.UpdatedAt = parseTime(updated)
	return &sess, nil
}

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

// parseTime parses RFC3339 timestamps; on error returns zero time.
func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
