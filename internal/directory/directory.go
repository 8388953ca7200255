// Package directory resolves user ids to display identities for the
// switch-user page. The authoritative user database lives elsewhere.
package directory

import (
	"context"
	"fmt"
	"sync"

	"authd/pkg/platform/sentinel"
)

// DisplayIdentity is what the consent and switch-user pages show for a user.
type DisplayIdentity struct {
	UserID      string
	DisplayName string
}

// Directory looks up display identities by user id.
type Directory interface {
	Resolve(ctx context.Context, userID string) (*DisplayIdentity, error)
}

// InMemory is a map-backed directory for tests and dev.
type InMemory struct {
	mu    sync.RWMutex
	users map[string]DisplayIdentity
}

// NewInMemory constructs an empty in-memory directory.
func NewInMemory() *InMemory {
	return &InMemory{users: make(map[string]DisplayIdentity)}
}

// Put registers or replaces a user entry.
func (d *InMemory) Put(userID, displayName string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[userID] = DisplayIdentity{UserID: userID, DisplayName: displayName}
}

func (d *InMemory) Resolve(_ context.Context, userID string) (*DisplayIdentity, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if identity, ok := d.users[userID]; ok {
		return &identity, nil
	}
	return nil, fmt.Errorf("user %q not found: %w", userID, sentinel.ErrNotFound)
}
