package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"authd/pkg/platform/sentinel"
)

// AuthorizationCodeRecord is a single-use credential binding one client to
// one authenticated user. This core only creates records; redemption happens
// at the (external) token endpoint through the store's Consume operation.
type AuthorizationCodeRecord struct {
	Code      string    `json:"code"`
	ClientID  uuid.UUID `json:"client_id"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	Used      bool      `json:"used"`
	CreatedAt time.Time `json:"created_at"`
}

// NewAuthorizationCodeRecord binds a freshly generated code to a client and
// user with the given time-to-live.
func NewAuthorizationCodeRecord(code string, clientID uuid.UUID, userID string, ttl time.Duration, now time.Time) *AuthorizationCodeRecord {
	return &AuthorizationCodeRecord{
		Code:      code,
		ClientID:  clientID,
		UserID:    userID,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
}

// Expired reports whether the code is past its expiry at the given instant.
func (r *AuthorizationCodeRecord) Expired(now time.Time) bool {
	return r.ExpiresAt.Before(now)
}

// MarkUsed flags the code as consumed. Must only be called after
// ValidateForConsume returns nil.
func (r *AuthorizationCodeRecord) MarkUsed() {
	r.Used = true
}

// ValidateForConsume checks the consume-once contract, wrapping the
// matching sentinel so stores can pass the error through unchanged.
func (r *AuthorizationCodeRecord) ValidateForConsume(now time.Time) error {
	if r.Expired(now) {
		return fmt.Errorf("authorization code expired: %w", sentinel.ErrExpired)
	}
	if r.Used {
		return fmt.Errorf("authorization code already used: %w", sentinel.ErrAlreadyUsed)
	}
	return nil
}
