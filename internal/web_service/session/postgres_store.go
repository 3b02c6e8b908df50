package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of *pgxpool.Pool the store needs.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const createSessionsTable = `CREATE TABLE IF NOT EXISTS web_sessions (
	id         TEXT PRIMARY KEY,
	user_id    BIGINT NOT NULL,
	email      TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL
)`

// PostgresStore keeps sessions in the web_sessions table.
type PostgresStore struct {
	db     DBTX
	now    func() time.Time
	logger *slog.Logger
}

func NewPostgresStore(db DBTX, logger *slog.Logger) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now, logger: logger.With("component", "session_store_pg")}
}

// EnsureSchema creates the sessions table if it is missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createSessionsTable); err != nil {
		return fmt.Errorf("creating web_sessions table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, id string, data Data) error {
	query := `INSERT INTO web_sessions (id, user_id, email, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET user_id = EXCLUDED.user_id, email = EXCLUDED.email, expires_at = EXCLUDED.expires_at`
	if _, err := s.db.Exec(ctx, query, id, data.UserID, data.Email, data.CreatedAt, data.ExpiresAt); err != nil {
		s.logger.ErrorContext(ctx, "Error saving session", "error", err)
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, id string) (*Data, error) {
	query := `SELECT user_id, email, created_at, expires_at FROM web_sessions WHERE id = $1 AND expires_at > $2`
	var data Data
	err := s.db.QueryRow(ctx, query, id, s.now()).Scan(&data.UserID, &data.Email, &data.CreatedAt, &data.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoSession
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Error loading session", "error", err)
		return nil, fmt.Errorf("loading session: %w", err)
	}
	return &data, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM web_sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// DeleteExpired removes sessions that expired before now and returns how many.
func (s *PostgresStore) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM web_sessions WHERE expires_at <= $1`, s.now())
	if err != nil {
		return 0, fmt.Errorf("deleting expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
