// Package sweep purges expired authorization codes in the background.
// Redemption already refuses expired codes; the sweeper just keeps the store
// from accumulating dead rows.
package sweep

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"authd/internal/audit"
	"authd/internal/authz/store"
)

// Auditor records sweep results.
type Auditor interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Sweeper periodically deletes expired codes.
type Sweeper struct {
	codes    store.CodeStore
	logger   *slog.Logger
	auditor  Auditor
	interval time.Duration
	clock    func() time.Time
}

// Option configures a Sweeper.
type Option func(*Sweeper)

// WithClock sets the clock function for testability.
func WithClock(clock func() time.Time) Option {
	return func(s *Sweeper) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// New constructs a sweeper over the given code store.
func New(codes store.CodeStore, logger *slog.Logger, auditor Auditor, interval time.Duration, opts ...Option) *Sweeper {
	s := &Sweeper{
		codes:    codes,
		logger:   logger,
		auditor:  auditor,
		interval: interval,
		clock:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Run sweeps on the configured interval until the context is cancelled.
// Store errors are logged and retried next tick; a flaky backend must not
// stop the loop.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

func (s *Sweeper) sweepOnce(ctx context.Context) {
	deleted, err := s.codes.DeleteExpired(ctx, s.clock())
	if err != nil {
		s.logger.ErrorContext(ctx, "code sweep failed", "error", err)
		return
	}
	if deleted == 0 {
		return
	}
	s.logger.InfoContext(ctx, "expired authorization codes purged", "deleted", deleted)
	if err := s.auditor.Emit(ctx, audit.Event{
		Type:    audit.TypeSweepComplete,
		Details: map[string]string{"deleted": strconv.Itoa(deleted)},
	}); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "error", err)
	}
}
