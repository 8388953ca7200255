package models

import (
	"time"

	"github.com/google/uuid"
)

// Client is an OAuth 2.0 client registration as this core sees it: created
// and updated elsewhere, read-only here.
//
// Invariants:
//   - Name is non-empty and at most 128 characters
//   - OAuthClientID is non-empty and unique across all clients
//   - RedirectURI is non-empty (the authoritative base for matching)
type Client struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	OAuthClientID   string    `json:"client_id"`
	RedirectURI     string    `json:"redirect_uri"`
	AllowSubdomains bool      `json:"allow_subdomains"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewClient constructs a Client, enforcing registration invariants.
func NewClient(id uuid.UUID, name, oauthClientID, redirectURI string, allowSubdomains bool, now time.Time) (*Client, error) {
	if name == "" {
		return nil, invariant("client name cannot be empty")
	}
	if len(name) > 128 {
		return nil, invariant("client name must be 128 characters or less")
	}
	if oauthClientID == "" {
		return nil, invariant("client_id cannot be empty")
	}
	if redirectURI == "" {
		return nil, invariant("redirect_uri cannot be empty")
	}
	return &Client{
		ID:              id,
		Name:            name,
		OAuthClientID:   oauthClientID,
		RedirectURI:     redirectURI,
		AllowSubdomains: allowSubdomains,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func invariant(msg string) error {
	return &InvariantError{Msg: msg}
}

// InvariantError reports a violated registration invariant.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string { return e.Msg }
