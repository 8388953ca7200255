package client

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"authd/internal/authz/models"
	"authd/pkg/platform/sentinel"
)

// PostgresStore persists client registrations in PostgreSQL.
//
// Schema:
//
//	CREATE TABLE clients (
//	    id               UUID PRIMARY KEY,
//	    name             TEXT NOT NULL,
//	    oauth_client_id  TEXT NOT NULL UNIQUE,
//	    redirect_uri     TEXT NOT NULL,
//	    allow_subdomains BOOLEAN NOT NULL DEFAULT FALSE,
//	    created_at       TIMESTAMPTZ NOT NULL,
//	    updated_at       TIMESTAMPTZ NOT NULL
//	);
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed client registry.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create registers a client. A duplicate oauth_client_id maps to ErrConflict.
func (s *PostgresStore) Create(ctx context.Context, c *models.Client) error {
	query := `
		INSERT INTO clients (id, name, oauth_client_id, redirect_uri, allow_subdomains, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		c.ID, c.Name, c.OAuthClientID, c.RedirectURI, c.AllowSubdomains, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("client_id %q already registered: %w", c.OAuthClientID, sentinel.ErrConflict)
		}
		return fmt.Errorf("create client: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByOAuthClientID(ctx context.Context, oauthClientID string) (*models.Client, error) {
	query := `
		SELECT id, name, oauth_client_id, redirect_uri, allow_subdomains, created_at, updated_at
		FROM clients
		WHERE oauth_client_id = $1
	`
	var c models.Client
	err := s.db.QueryRowContext(ctx, query, oauthClientID).Scan(
		&c.ID, &c.Name, &c.OAuthClientID, &c.RedirectURI, &c.AllowSubdomains, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("client not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find client: %w", err)
	}
	return &c, nil
}
