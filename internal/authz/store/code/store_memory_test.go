package code

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"authd/internal/authz/models"
	"authd/pkg/platform/sentinel"
)

type CodeStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *CodeStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestCodeStoreSuite(t *testing.T) {
	suite.Run(t, new(CodeStoreSuite))
}

func (s *CodeStoreSuite) newRecord(code string, expiresAt time.Time) *models.AuthorizationCodeRecord {
	return &models.AuthorizationCodeRecord{
		Code:      code,
		ClientID:  uuid.New(),
		UserID:    "alice",
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
}

// TestCodeLookup tests code retrieval behavior.
func (s *CodeStoreSuite) TestCodeLookup() {
	s.Run("returns stored code when found", func() {
		record := s.newRecord("authz_123456", time.Now().Add(10*time.Minute))
		s.Require().NoError(s.store.Create(s.ctx, record))

		found, err := s.store.FindByCode(s.ctx, "authz_123456")
		s.Require().NoError(err)
		s.Equal(record, found)
	})

	s.Run("returns ErrNotFound when code does not exist", func() {
		_, err := s.store.FindByCode(s.ctx, "non_existent_code")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("duplicate code value returns ErrConflict", func() {
		record := s.newRecord("authz_dup", time.Now().Add(time.Minute))
		s.Require().NoError(s.store.Create(s.ctx, record))

		err := s.store.Create(s.ctx, s.newRecord("authz_dup", time.Now().Add(time.Minute)))
		s.Require().ErrorIs(err, sentinel.ErrConflict)
	})
}

// TestCodeConsumption tests the consume-once semantics of authorization codes.
func (s *CodeStoreSuite) TestCodeConsumption() {
	now := time.Now()

	s.Run("fresh code can be consumed once", func() {
		store := NewInMemory()
		record := s.newRecord("authz_fresh", now.Add(time.Minute))
		s.Require().NoError(store.Create(s.ctx, record))

		consumed, err := store.Consume(s.ctx, record.Code, now)
		s.Require().NoError(err)
		s.True(consumed.Used)
	})

	s.Run("consumed code returns already-used error with record for replay detection", func() {
		store := NewInMemory()
		record := s.newRecord("authz_reuse", now.Add(time.Minute))
		s.Require().NoError(store.Create(s.ctx, record))

		_, err := store.Consume(s.ctx, record.Code, now)
		s.Require().NoError(err)

		consumed, err := store.Consume(s.ctx, record.Code, now)
		s.Require().ErrorIs(err, sentinel.ErrAlreadyUsed)
		s.NotNil(consumed)
	})

	s.Run("expired code returns expired error", func() {
		store := NewInMemory()
		record := s.newRecord("authz_expired", now.Add(-time.Minute))
		s.Require().NoError(store.Create(s.ctx, record))

		_, err := store.Consume(s.ctx, record.Code, now)
		s.Require().ErrorIs(err, sentinel.ErrExpired)
	})

	s.Run("non-existent code returns ErrNotFound", func() {
		_, err := s.store.Consume(s.ctx, "missing", now)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

// TestDeleteExpired verifies the sweeper contract.
func (s *CodeStoreSuite) TestDeleteExpired() {
	now := time.Now()

	s.Require().NoError(s.store.Create(s.ctx, s.newRecord("live", now.Add(time.Minute))))
	s.Require().NoError(s.store.Create(s.ctx, s.newRecord("dead_1", now.Add(-time.Second))))
	s.Require().NoError(s.store.Create(s.ctx, s.newRecord("dead_2", now.Add(-time.Hour))))

	deleted, err := s.store.DeleteExpired(s.ctx, now)
	s.Require().NoError(err)
	s.Equal(2, deleted)

	_, err = s.store.FindByCode(s.ctx, "live")
	s.Require().NoError(err)
	_, err = s.store.FindByCode(s.ctx, "dead_1")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}
