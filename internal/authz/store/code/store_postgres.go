package code

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"authd/internal/authz/models"
	"authd/pkg/platform/sentinel"
)

// PostgresStore persists authorization codes in PostgreSQL.
//
// Schema:
//
//	CREATE TABLE authorization_codes (
//	    code       TEXT PRIMARY KEY,
//	    client_id  UUID NOT NULL,
//	    user_id    TEXT NOT NULL,
//	    expires_at TIMESTAMPTZ NOT NULL,
//	    used       BOOLEAN NOT NULL DEFAULT FALSE,
//	    created_at TIMESTAMPTZ NOT NULL
//	);
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed code store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create inserts a fresh code. The primary key makes a generator collision a
// retryable ErrConflict instead of a silent overwrite.
func (s *PostgresStore) Create(ctx context.Context, record *models.AuthorizationCodeRecord) error {
	query := `
		INSERT INTO authorization_codes (code, client_id, user_id, expires_at, used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		record.Code, record.ClientID, record.UserID, record.ExpiresAt, record.Used, record.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("authorization code collision: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("create code: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByCode(ctx context.Context, code string) (*models.AuthorizationCodeRecord, error) {
	query := `
		SELECT code, client_id, user_id, expires_at, used, created_at
		FROM authorization_codes
		WHERE code = $1
	`
	var record models.AuthorizationCodeRecord
	err := s.db.QueryRowContext(ctx, query, code).Scan(
		&record.Code, &record.ClientID, &record.UserID, &record.ExpiresAt, &record.Used, &record.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("authorization code not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find code: %w", err)
	}
	return &record, nil
}

// Consume flips used atomically; the conditional UPDATE is what makes two
// concurrent redemptions resolve to exactly one winner.
func (s *PostgresStore) Consume(ctx context.Context, code string, now time.Time) (*models.AuthorizationCodeRecord, error) {
	query := `
		UPDATE authorization_codes
		SET used = TRUE
		WHERE code = $1 AND used = FALSE AND expires_at >= $2
		RETURNING code, client_id, user_id, expires_at, used, created_at
	`
	var record models.AuthorizationCodeRecord
	err := s.db.QueryRowContext(ctx, query, code, now).Scan(
		&record.Code, &record.ClientID, &record.UserID, &record.ExpiresAt, &record.Used, &record.CreatedAt)
	if err == nil {
		return &record, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("consume code: %w", err)
	}

	// The guarded update matched nothing; look the row up to say why.
	existing, findErr := s.FindByCode(ctx, code)
	if findErr != nil {
		return nil, findErr
	}
	return existing, existing.ValidateForConsume(now)
}

// DeleteExpired purges codes past their expiry as of the given time.
func (s *PostgresStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM authorization_codes WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired codes: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired codes: %w", err)
	}
	return int(affected), nil
}
