package audit

import (
	"context"
	"log/slog"
)

// Worker drains audit events from a channel and persists them, decoupling
// the request path from the sink's latency.
type Worker struct {
	store  Store
	inbox  <-chan Event
	logger *slog.Logger
}

// NewWorker constructs a worker over the given sink and inbox.
func NewWorker(store Store, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, inbox: inbox, logger: logger}
}

// Run consumes until the context is cancelled. Append failures are logged
// and dropped; audit must never take the flow down.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "audit append failed",
					"event_type", event.Type,
					"error", err,
				)
			}
		}
	}
}
