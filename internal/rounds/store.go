// Package rounds keeps a log of won rounds per session in SQLite.
//
// The default DSN is a shared in-memory database, so the log lives exactly
// as long as the process.
package rounds

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"
)

// Migrations holds the schema files, applied in lexical order.
//
//go:embed sql/*.sql
var Migrations embed.FS

const defaultLimit = 20

// ErrInvalidResult rejects rows without a session or with no attempts.
var ErrInvalidResult = errors.New("invalid round result")

// Result is one won round.
type Result struct {
	SessionID  string    `json:"sessionId"`
	Round      int       `json:"round"`
	Attempts   int       `json:"attempts"`
	FinishedAt time.Time `json:"finishedAt"`
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Record inserts a won round. A duplicate (session, round) pair is ignored.
func (s *Store) Record(ctx context.Context, r Result) error {
	if r.SessionID == "" || r.Attempts <= 0 {
		return fmt.Errorf("record round %+v: %w", r, ErrInvalidResult)
	}
	if r.FinishedAt.IsZero() {
		r.FinishedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT OR IGNORE INTO rounds (session_id, round, attempts, finished_at)
        VALUES (?, ?, ?, ?)`,
		r.SessionID, r.Round, r.Attempts, r.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// List returns a session's won rounds, newest first.
// A non-positive limit falls back to 20.
func (s *Store) List(ctx context.Context, sessionID string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT session_id, round, attempts, finished_at
        FROM rounds
        WHERE session_id=?
        ORDER BY round DESC
        LIMIT ?`, sessionID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Result, 0, limit)
	for rows.Next() {
		var r Result
		var finished string
		if err := rows.Scan(&r.SessionID, &r.Round, &r.Attempts, &finished); err != nil {
			return nil, err
		}
		r.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Best returns the fewest attempts over the session's won rounds.
// ok is false when the session has no recorded wins.
func (s *Store) Best(ctx context.Context, sessionID string) (best int, ok bool, err error) {
	var v sql.NullInt64
	err = s.db.QueryRowContext(ctx,
		`SELECT MIN(attempts) FROM rounds WHERE session_id=?`, sessionID,
	).Scan(&v)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, false, err
	}
	return int(v.Int64), v.Valid, nil
}

// DeleteSession drops every row for a session.
func (s *Store) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM rounds WHERE session_id=?`, sessionID)
	return err
}
