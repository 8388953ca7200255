package client

import (
	"context"
	"time"

	"github.com/google/uuid"

	"authd/internal/authz/models"
)

// SeedDevClient registers a default client so the flow is exercisable out of
// the box in dev setups. Production registrations come from the client
// management process, not from here.
func SeedDevClient(s *InMemory) *models.Client {
	now := time.Now()
	c := &models.Client{
		ID:              uuid.New(),
		Name:            "Local Test Client",
		OAuthClientID:   "test-client",
		RedirectURI:     "http://localhost:3000/callback",
		AllowSubdomains: false,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	_ = s.Create(context.Background(), c)
	return c
}
