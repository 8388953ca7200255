package sweep

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"authd/internal/audit"
	"authd/internal/authz/models"
	"authd/internal/authz/store/code"
)

func TestSweeper_PurgesOnlyExpiredCodes(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	codes := code.NewInMemory()
	sink := audit.NewInMemoryStore()

	live := &models.AuthorizationCodeRecord{Code: "live", ClientID: uuid.New(), UserID: "alice", ExpiresAt: now.Add(time.Hour)}
	dead := &models.AuthorizationCodeRecord{Code: "dead", ClientID: uuid.New(), UserID: "alice", ExpiresAt: now.Add(-time.Hour)}
	require.NoError(t, codes.Create(ctx, live))
	require.NoError(t, codes.Create(ctx, dead))

	s := New(codes, slog.New(slog.NewTextHandler(io.Discard, nil)), audit.NewPublisher(sink),
		time.Minute, WithClock(func() time.Time { return now }))
	s.sweepOnce(ctx)

	_, err := codes.FindByCode(ctx, "live")
	require.NoError(t, err)
	_, err = codes.FindByCode(ctx, "dead")
	require.Error(t, err)
}

func TestSweeper_RunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := New(code.NewInMemory(), slog.New(slog.NewTextHandler(io.Discard, nil)),
		audit.NewPublisher(audit.NewInMemoryStore()), time.Millisecond)

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop on cancel")
	}
}
