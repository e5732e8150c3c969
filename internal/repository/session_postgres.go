package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/docuchat/chat-backend/internal/entity"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionRepository defines the interface for chat session persistence.
// Sessions are keyed by (user_id, session_id); lookups for a session owned
// by a different user behave exactly like lookups for a missing session.
type SessionRepository interface {
	Upsert(ctx context.Context, userID, sessionID string, messages []entity.Message) (*entity.ChatSession, error)
	GetByID(ctx context.Context, userID, sessionID string) (*entity.ChatSession, error)
	ListByUser(ctx context.Context, userID string) ([]*entity.ChatSession, error)
}

var _ SessionRepository = &SessionPostgres{}

// SessionPostgres implements SessionRepository using PostgreSQL
type SessionPostgres struct {
	db *pgxpool.Pool
}

func NewSessionPostgres(db *pgxpool.Pool) *SessionPostgres {
	return &SessionPostgres{
		db: db,
	}
}

const uniqueViolationCode = "23505"

// Upsert creates the session on first save and replaces its message list
// wholesale on every subsequent save, refreshing updated_at each time.
func (r *SessionPostgres) Upsert(ctx context.Context, userID, sessionID string, messages []entity.Message) (*entity.ChatSession, error) {
	payload, err := json.Marshal(messages)
	if err != nil {
		return nil, fmt.Errorf("marshal messages: %w", err)
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO chat_sessions (user_id, session_id, messages, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		ON CONFLICT (user_id, session_id)
		DO UPDATE SET messages = EXCLUDED.messages, updated_at = now()
		RETURNING user_id, session_id, messages, created_at, updated_at`,
		userID, sessionID, payload,
	)

	session, err := scanSession(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, fmt.Errorf("%w: %s", entity.ErrSessionConflict, sessionID)
		}
		return nil, fmt.Errorf("upsert session: %w", err)
	}

	return session, nil
}

func (r *SessionPostgres) GetByID(ctx context.Context, userID, sessionID string) (*entity.ChatSession, error) {
	row := r.db.QueryRow(ctx, `
		SELECT user_id, session_id, messages, created_at, updated_at
		FROM chat_sessions
		WHERE user_id = $1 AND session_id = $2`,
		userID, sessionID,
	)

	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	return session, nil
}

func (r *SessionPostgres) ListByUser(ctx context.Context, userID string) ([]*entity.ChatSession, error) {
	rows, err := r.db.Query(ctx, `
		SELECT user_id, session_id, messages, created_at, updated_at
		FROM chat_sessions
		WHERE user_id = $1
		ORDER BY updated_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*entity.ChatSession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	return sessions, nil
}

func scanSession(row pgx.Row) (*entity.ChatSession, error) {
	var (
		session entity.ChatSession
		payload []byte
	)

	if err := row.Scan(&session.UserID, &session.SessionID, &payload, &session.CreatedAt, &session.UpdatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(payload, &session.Messages); err != nil {
		return nil, fmt.Errorf("unmarshal messages: %w", err)
	}

	return &session, nil
}
