package code

import (
	"context"
	"fmt"
	"sync"
	"time"

	"authd/internal/authz/models"
	"authd/pkg/platform/sentinel"
)

// InMemory stores authorization codes in memory for tests/dev.
type InMemory struct {
	mu    sync.RWMutex
	codes map[string]*models.AuthorizationCodeRecord
}

// NewInMemory constructs an empty in-memory code store.
func NewInMemory() *InMemory {
	return &InMemory{codes: make(map[string]*models.AuthorizationCodeRecord)}
}

// Create persists a fresh code. Code values are unique by construction; an
// insert colliding with a live code reports ErrConflict.
func (s *InMemory) Create(_ context.Context, record *models.AuthorizationCodeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.codes[record.Code]; exists {
		return fmt.Errorf("authorization code collision: %w", sentinel.ErrConflict)
	}
	s.codes[record.Code] = record
	return nil
}

func (s *InMemory) FindByCode(_ context.Context, code string) (*models.AuthorizationCodeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if record, ok := s.codes[code]; ok {
		return record, nil
	}
	return nil, fmt.Errorf("authorization code not found: %w", sentinel.ErrNotFound)
}

// Consume marks the code used if it is fresh and unexpired. The record is
// returned even on already-used failures so callers can detect replays.
func (s *InMemory) Consume(_ context.Context, code string, now time.Time) (*models.AuthorizationCodeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.codes[code]
	if !ok {
		return nil, fmt.Errorf("authorization code not found: %w", sentinel.ErrNotFound)
	}
	if err := record.ValidateForConsume(now); err != nil {
		return record, err
	}
	record.MarkUsed()
	return record, nil
}

// DeleteExpired removes all codes that have expired as of the given time.
// The time parameter is injected for testability.
func (s *InMemory) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for code, record := range s.codes {
		if record.Expired(now) {
			delete(s.codes, code)
			deleted++
		}
	}
	return deleted, nil
}
