package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sandevgo/rizza/internal/core"
	"github.com/sandevgo/rizza/pkg/log"
)

type SessionsRepo struct {
	db *sql.DB
}

func NewSessionsRepo(db *sql.DB) *SessionsRepo {
	return &SessionsRepo{db: db}
}

func (r *SessionsRepo) ActiveSession(ctx context.Context) (core.Session, error) {
	query := `SELECT id, created_at, updated_at FROM sessions ORDER BY updated_at DESC, created_at DESC LIMIT 1`

	var s core.Session
	err := r.db.QueryRowContext(ctx, query).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Session{}, core.ErrNoActiveSession
	}
	if err != nil {
		return core.Session{}, fmt.Errorf("failed to query active session: %w", err)
	}
	return s, nil
}

func (r *SessionsRepo) CreateSession(ctx context.Context) (core.Session, error) {
	now := time.Now().UTC()
	s := core.Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	query := `INSERT INTO sessions (id, created_at, updated_at) VALUES (?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, s.ID, s.CreatedAt, s.UpdatedAt); err != nil {
		return core.Session{}, fmt.Errorf("failed to insert session: %w", err)
	}

	log.FromCtx(ctx).Debug().Str("session_id", s.ID).Msg("created session")
	return s, nil
}

func (r *SessionsRepo) AppendTurn(ctx context.Context, turn core.Turn) error {
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}
	return insertTurn(ctx, r.db, turn)
}

// SaveExchange writes both sides of a completed turn and bumps the session's
// updated_at as one transaction, so a half-written exchange never survives.
func (r *SessionsRepo) SaveExchange(ctx context.Context, sessionID string, userTurn, assistantTurn core.Turn) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	userTurn.SessionID = sessionID
	userTurn.CreatedAt = now
	if err := insertTurn(ctx, tx, userTurn); err != nil {
		return err
	}

	assistantTurn.SessionID = sessionID
	// Strictly after the user turn so retrieval order is stable.
	assistantTurn.CreatedAt = now.Add(time.Millisecond)
	if err := insertTurn(ctx, tx, assistantTurn); err != nil {
		return err
	}

	query := `UPDATE sessions SET updated_at = ? WHERE id = ?`
	if _, err := tx.ExecContext(ctx, query, now, sessionID); err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}

	return tx.Commit()
}

func (r *SessionsRepo) TouchSession(ctx context.Context, sessionID string) error {
	query := `UPDATE sessions SET updated_at = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, time.Now().UTC(), sessionID); err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	return nil
}

func (r *SessionsRepo) TurnsForSession(ctx context.Context, sessionID string) ([]core.Turn, error) {
	query := `SELECT id, session_id, role, content, image_attached, is_voice, created_at
		FROM messages WHERE session_id = ? ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer rows.Close()

	var turns []core.Turn
	for rows.Next() {
		var t core.Turn
		if err := rows.Scan(&t.ID, &t.SessionID, &t.Role, &t.Content, &t.ImageAttached, &t.IsVoice, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	log.FromCtx(ctx).Debug().Int("count", len(turns)).Msg("loaded session turns")
	return turns, nil
}

func (r *SessionsRepo) ClearAll(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages`); err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}

	return tx.Commit()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertTurn(ctx context.Context, db execer, turn core.Turn) error {
	query := `INSERT INTO messages (session_id, role, content, image_attached, is_voice, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := db.ExecContext(ctx, query,
		turn.SessionID, turn.Role, turn.Content, turn.ImageAttached, turn.IsVoice, turn.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert turn: %w", err)
	}
	return nil
}
