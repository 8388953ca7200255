// Package audit records security-relevant facts about the authorization
// flow. Events are append-only; sinks are swappable behind the Store
// interface so tests stay in memory.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the authorization flow.
const (
	TypeCodeIssued    = "authorization_code.issued"
	TypeSessionEnded  = "session.ended"
	TypeSweepComplete = "code_sweep.completed"
)

// Event is one audit record.
type Event struct {
	ID        uuid.UUID         `json:"id"`
	Type      string            `json:"type"`
	UserID    string            `json:"user_id,omitempty"`
	ClientID  string            `json:"client_id,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// Store is the append-only sink behind the publisher.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByUser(ctx context.Context, userID string) ([]Event, error)
}

// Publisher captures structured audit events into a Store.
type Publisher struct {
	store Store
}

// NewPublisher constructs a publisher over the given sink.
func NewPublisher(store Store) *Publisher {
	return &Publisher{store: store}
}

// Emit appends one event, stamping id and timestamp when absent.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	return p.store.Append(ctx, event)
}

// List returns all events recorded for a user.
func (p *Publisher) List(ctx context.Context, userID string) ([]Event, error) {
	return p.store.ListByUser(ctx, userID)
}
