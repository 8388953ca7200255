package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ChannelEmitter hands events to the worker's inbox without blocking the
// request path. When the inbox is full the event is dropped; the worker logs
// what it does persist.
type ChannelEmitter struct {
	inbox chan<- Event
}

// NewChannelEmitter constructs an emitter feeding the given inbox.
func NewChannelEmitter(inbox chan<- Event) *ChannelEmitter {
	return &ChannelEmitter{inbox: inbox}
}

// Emit stamps the event and enqueues it. A full inbox is not an error for
// the caller.
func (e *ChannelEmitter) Emit(_ context.Context, event Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case e.inbox <- event:
	default:
	}
	return nil
}
