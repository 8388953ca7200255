package service

import (
	"net/url"
	"time"

	"go.uber.org/mock/gomock"

	"authd/internal/audit"
	"authd/internal/authz/models"
	"authd/pkg/platform/sentinel"
)

// TestIssue_HappyPath covers code minting, persistence, and the final
// redirect target.
func (s *ServiceSuite) TestIssue_HappyPath() {
	s.Run("issues a code and redirects with code and state", func() {
		client := s.registeredClient()
		s.clients.EXPECT().FindByOAuthClientID(gomock.Any(), "acme").Return(client, nil)

		var created *models.AuthorizationCodeRecord
		s.codes.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, record *models.AuthorizationCodeRecord) error {
				created = record
				return nil
			})
		s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, event audit.Event) error {
				s.Equal(audit.TypeCodeIssued, event.Type)
				s.Equal("alice", event.UserID)
				s.Equal("acme", event.ClientID)
				return nil
			})

		target, err := s.service.Issue(s.ctx, validQuery(), alice)
		s.Require().NoError(err)

		s.Require().NotNil(created)
		s.Equal(client.ID, created.ClientID)
		s.Equal("alice", created.UserID)
		s.Equal(testNow.Add(10*time.Minute), created.ExpiresAt)
		s.Len(created.Code, 43)

		s.Equal("https://acme.example/cb?code="+created.Code+"&state=xyz", target)
	})

	s.Run("omits state when absent", func() {
		client := s.registeredClient()
		s.clients.EXPECT().FindByOAuthClientID(gomock.Any(), "acme").Return(client, nil)
		s.codes.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		q := validQuery()
		q.Del("state")
		target, err := s.service.Issue(s.ctx, q, alice)
		s.Require().NoError(err)

		u, err := url.Parse(target)
		s.Require().NoError(err)
		s.NotEmpty(u.Query().Get("code"))
		_, hasState := u.Query()["state"]
		s.False(hasState)
	})

	s.Run("echoes state URL-encoded", func() {
		client := s.registeredClient()
		s.clients.EXPECT().FindByOAuthClientID(gomock.Any(), "acme").Return(client, nil)
		s.codes.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		q := validQuery()
		q.Set("state", "a b&c=d")
		target, err := s.service.Issue(s.ctx, q, alice)
		s.Require().NoError(err)

		u, err := url.Parse(target)
		s.Require().NoError(err)
		s.Equal("a b&c=d", u.Query().Get("state"))
	})

	s.Run("two issuances for the same request produce distinct codes", func() {
		client := s.registeredClient()
		s.clients.EXPECT().FindByOAuthClientID(gomock.Any(), "acme").Return(client, nil).Times(2)

		var codes []string
		s.codes.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, record *models.AuthorizationCodeRecord) error {
				codes = append(codes, record.Code)
				return nil
			}).Times(2)
		s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil).Times(2)

		_, err := s.service.Issue(s.ctx, validQuery(), alice)
		s.Require().NoError(err)
		_, err = s.service.Issue(s.ctx, validQuery(), alice)
		s.Require().NoError(err)

		s.Require().Len(codes, 2)
		s.NotEqual(codes[0], codes[1])
	})
}

// TestIssue_Rejections verifies every client-input failure silently lands on
// the default page with no code created.
func (s *ServiceSuite) TestIssue_Rejections() {
	landing := "https://auth.example.org/"

	s.Run("malformed request redirects to landing page", func() {
		q := validQuery()
		q.Del("redirect_uri")

		target, err := s.service.Issue(s.ctx, q, alice)
		s.Require().NoError(err)
		s.Equal(landing, target)
	})

	s.Run("response_type token creates no code", func() {
		q := validQuery()
		q.Set("response_type", "token")

		target, err := s.service.Issue(s.ctx, q, alice)
		s.Require().NoError(err)
		s.Equal(landing, target)
	})

	s.Run("unknown client redirects to landing page", func() {
		s.clients.EXPECT().FindByOAuthClientID(gomock.Any(), "acme").
			Return(nil, sentinel.ErrNotFound)

		target, err := s.service.Issue(s.ctx, validQuery(), alice)
		s.Require().NoError(err)
		s.Equal(landing, target)
	})

	s.Run("redirect URI mismatch redirects to landing page", func() {
		client := s.registeredClient()
		s.clients.EXPECT().FindByOAuthClientID(gomock.Any(), "acme").Return(client, nil)
		q := validQuery()
		q.Set("redirect_uri", "https://notacme.example/cb")

		target, err := s.service.Issue(s.ctx, q, alice)
		s.Require().NoError(err)
		s.Equal(landing, target)
	})

	s.Run("registry failure propagates", func() {
		s.clients.EXPECT().FindByOAuthClientID(gomock.Any(), "acme").
			Return(nil, sentinel.ErrUnavailable)

		_, err := s.service.Issue(s.ctx, validQuery(), alice)
		s.Require().ErrorIs(err, sentinel.ErrUnavailable)
	})

	s.Run("code store failure propagates", func() {
		client := s.registeredClient()
		s.clients.EXPECT().FindByOAuthClientID(gomock.Any(), "acme").Return(client, nil)
		s.codes.EXPECT().Create(gomock.Any(), gomock.Any()).Return(sentinel.ErrConflict)

		_, err := s.service.Issue(s.ctx, validQuery(), alice)
		s.Require().ErrorIs(err, sentinel.ErrConflict)
	})
}
