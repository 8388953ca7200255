// Package store defines the persistence boundaries of the authorization
// flow. Implementations live in subpackages (memory for tests/dev, postgres
// and redis for deployments).
package store

//go:generate mockgen -destination=mocks/mocks.go -package=mocks authd/internal/authz/store ClientRegistry,CodeStore

import (
	"context"
	"time"

	"authd/internal/authz/models"
)

// ClientRegistry looks up registered clients by their public identifier.
// Client lifecycle is managed elsewhere; this core only reads.
type ClientRegistry interface {
	FindByOAuthClientID(ctx context.Context, oauthClientID string) (*models.Client, error)
}

// CodeStore persists authorization codes. Create is the only operation the
// issuing flow uses; Consume and DeleteExpired are the contract the token
// endpoint and the sweeper rely on.
//
// Error contract: stores return sentinel.ErrNotFound for missing codes,
// sentinel.ErrConflict for duplicate inserts, and wrap ErrExpired or
// ErrAlreadyUsed out of Consume.
type CodeStore interface {
	Create(ctx context.Context, record *models.AuthorizationCodeRecord) error
	FindByCode(ctx context.Context, code string) (*models.AuthorizationCodeRecord, error)
	Consume(ctx context.Context, code string, now time.Time) (*models.AuthorizationCodeRecord, error)
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}
