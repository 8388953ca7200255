package client

import (
	"context"
	"fmt"
	"sync"

	"authd/internal/authz/models"
	"authd/pkg/platform/sentinel"
)

// InMemory keeps client registrations in a map for tests and dev bootstrap.
type InMemory struct {
	mu      sync.RWMutex
	byOAuth map[string]*models.Client
}

// NewInMemory constructs an empty in-memory client registry.
func NewInMemory() *InMemory {
	return &InMemory{byOAuth: make(map[string]*models.Client)}
}

// Create registers a client, enforcing OAuth client ID uniqueness.
func (s *InMemory) Create(_ context.Context, c *models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byOAuth[c.OAuthClientID]; exists {
		return fmt.Errorf("client_id %q already registered: %w", c.OAuthClientID, sentinel.ErrConflict)
	}
	s.byOAuth[c.OAuthClientID] = c
	return nil
}

func (s *InMemory) FindByOAuthClientID(_ context.Context, oauthClientID string) (*models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.byOAuth[oauthClientID]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("client not found: %w", sentinel.ErrNotFound)
}
