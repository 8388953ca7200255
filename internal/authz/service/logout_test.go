package service

import (
	"net/url"

	"go.uber.org/mock/gomock"

	"authd/internal/audit"
)

// TestLogout verifies the identity-switch branch preserves the original
// authorization request across re-authentication.
func (s *ServiceSuite) TestLogout() {
	s.Run("builds login redirect with full authorize callback", func() {
		s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, event audit.Event) error {
				s.Equal(audit.TypeSessionEnded, event.Type)
				s.Equal("alice", event.UserID)
				return nil
			})

		q := validQuery()
		q.Set("user", "bob")
		target, ok := s.service.Logout(s.ctx, q, alice)
		s.Require().True(ok)

		loginURL, err := url.Parse(target)
		s.Require().NoError(err)
		s.Equal("/login", loginURL.Path)
		s.Equal("bob", loginURL.Query().Get("user"))

		callback, err := url.Parse(loginURL.Query().Get("redirect_url"))
		s.Require().NoError(err)
		s.Equal("/authorize", callback.Path)
		s.Equal("code", callback.Query().Get("response_type"))
		s.Equal("acme", callback.Query().Get("client_id"))
		s.Equal("https://acme.example/cb", callback.Query().Get("redirect_uri"))
		s.Equal("xyz", callback.Query().Get("state"))
		s.Equal("bob", callback.Query().Get("user"))
	})

	s.Run("omits optional params from callback when absent", func() {
		s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		q := validQuery()
		q.Del("state")
		target, ok := s.service.Logout(s.ctx, q, alice)
		s.Require().True(ok)

		loginURL, err := url.Parse(target)
		s.Require().NoError(err)
		_, hasUser := loginURL.Query()["user"]
		s.False(hasUser)

		callback, err := url.Parse(loginURL.Query().Get("redirect_url"))
		s.Require().NoError(err)
		_, hasState := callback.Query()["state"]
		s.False(hasState)
	})

	s.Run("malformed request is not redirected", func() {
		q := validQuery()
		q.Del("client_id")

		_, ok := s.service.Logout(s.ctx, q, alice)
		s.False(ok)
	})
}
