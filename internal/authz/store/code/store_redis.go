package code

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"authd/internal/authz/models"
	"authd/pkg/platform/sentinel"
)

var consumeDurationMs = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "authd_code_consume_duration_ms",
	Help:    "Latency of authorization code consume operations in milliseconds",
	Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
})

const codeKeyPrefix = "authz:code:"

// RedisStore is a Redis-backed code store. Expiry piggybacks on key TTL, so
// DeleteExpired is a no-op kept for interface parity; Redis reclaims expired
// codes on its own.
//
// This is the recommended backend for distributed deployments where several
// instances issue and redeem codes against shared state.
type RedisStore struct {
	client *redis.Client
}

// NewRedis constructs a Redis-backed code store.
func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) key(code string) string {
	return codeKeyPrefix + code
}

// Create persists the record under its code with a TTL derived from
// ExpiresAt. SETNX enforces code uniqueness.
func (s *RedisStore) Create(ctx context.Context, record *models.AuthorizationCodeRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal code record: %w", err)
	}
	ttl := time.Until(record.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("code already expired at create: %w", sentinel.ErrExpired)
	}
	ok, err := s.client.SetNX(ctx, s.key(record.Code), payload, ttl).Result()
	if err != nil {
		return fmt.Errorf("store code: %w", err)
	}
	if !ok {
		return fmt.Errorf("authorization code collision: %w", sentinel.ErrConflict)
	}
	return nil
}

func (s *RedisStore) FindByCode(ctx context.Context, code string) (*models.AuthorizationCodeRecord, error) {
	payload, err := s.client.Get(ctx, s.key(code)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("authorization code not found: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load code: %w", err)
	}
	var record models.AuthorizationCodeRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("unmarshal code record: %w", err)
	}
	return &record, nil
}

// consumeRetries bounds WATCH transaction restarts under contention.
const consumeRetries = 5

// Consume validates and marks the code used inside a WATCH/MULTI
// transaction, so two concurrent redemptions resolve to exactly one winner;
// the loser restarts, reads the used marker, and reports a replay. A
// vanished key means either an unknown or an expired code; Redis cannot
// tell the two apart once the TTL fires, so both surface as ErrNotFound.
func (s *RedisStore) Consume(ctx context.Context, code string, now time.Time) (*models.AuthorizationCodeRecord, error) {
	start := time.Now()
	defer func() {
		consumeDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	key := s.key(code)
	var record *models.AuthorizationCodeRecord

	txn := func(tx *redis.Tx) error {
		payload, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("authorization code not found: %w", sentinel.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("load code: %w", err)
		}
		var rec models.AuthorizationCodeRecord
		if err := json.Unmarshal(payload, &rec); err != nil {
			return fmt.Errorf("unmarshal code record: %w", err)
		}
		record = &rec
		if err := rec.ValidateForConsume(now); err != nil {
			return err
		}
		rec.MarkUsed()
		updated, err := json.Marshal(&rec)
		if err != nil {
			return fmt.Errorf("marshal code record: %w", err)
		}
		// KEEPTTL preserves the remaining expiry on the used marker.
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, redis.KeepTTL)
			return nil
		})
		if err != nil {
			return fmt.Errorf("mark code used: %w", err)
		}
		return nil
	}

	for attempt := 0; attempt < consumeRetries; attempt++ {
		record = nil
		err := s.client.Watch(ctx, txn, key)
		switch {
		case err == nil:
			return record, nil
		case errors.Is(err, redis.TxFailedErr):
			// Lost the race; re-read and revalidate.
			continue
		case errors.Is(err, sentinel.ErrExpired), errors.Is(err, sentinel.ErrAlreadyUsed):
			return record, err
		default:
			return nil, err
		}
	}
	return nil, fmt.Errorf("consume code contended beyond %d attempts: %w", consumeRetries, sentinel.ErrUnavailable)
}

// DeleteExpired is unnecessary under Redis key TTLs.
func (s *RedisStore) DeleteExpired(_ context.Context, _ time.Time) (int, error) {
	return 0, nil
}
