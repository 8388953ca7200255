package service

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"authd/internal/authz/models"
	servicemocks "authd/internal/authz/service/mocks"
	storemocks "authd/internal/authz/store/mocks"
	"authd/internal/directory"
	"authd/internal/platform/metrics"
	"authd/internal/session"
	"authd/pkg/platform/sentinel"
)

// Prometheus collectors register globally; one instance serves every test in
// this binary.
var testMetrics = metrics.New()

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type ServiceSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	clients   *storemocks.MockClientRegistry
	codes     *storemocks.MockCodeStore
	auditor   *servicemocks.MockAuditor
	directory *directory.InMemory
	service   *Service
	ctx       context.Context
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.clients = storemocks.NewMockClientRegistry(s.ctrl)
	s.codes = storemocks.NewMockCodeStore(s.ctrl)
	s.auditor = servicemocks.NewMockAuditor(s.ctrl)
	s.directory = directory.NewInMemory()
	s.ctx = context.Background()

	s.service = New(
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		testMetrics,
		s.clients,
		s.codes,
		s.directory,
		s.auditor,
		Endpoints{
			BaseURL:           "https://auth.example.org",
			DefaultLandingURL: "https://auth.example.org/",
			LoginURL:          "https://auth.example.org/login",
		},
		10*time.Minute,
		WithClock(func() time.Time { return testNow }),
	)
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) registeredClient() *models.Client {
	return &models.Client{
		ID:            uuid.New(),
		Name:          "Acme Reader",
		OAuthClientID: "acme",
		RedirectURI:   "https://acme.example/cb",
	}
}

func validQuery() url.Values {
	return url.Values{
		"response_type": {"code"},
		"client_id":     {"acme"},
		"redirect_uri":  {"https://acme.example/cb"},
		"state":         {"xyz"},
	}
}

var alice = session.Identity{UserID: "alice", DisplayName: "Alice Adams"}

// TestAuthorize_RequestShape covers the malformed-request outcome, which
// must short-circuit before any client lookup.
func (s *ServiceSuite) TestAuthorize_RequestShape() {
	s.Run("missing response_type is malformed without client lookup", func() {
		q := validQuery()
		q.Del("response_type")

		outcome := s.service.Authorize(s.ctx, q, alice)

		s.Equal(OutcomeError, outcome.Kind)
		s.Equal(ReasonMalformedRequest, outcome.Reason)
		s.Nil(outcome.ClientName)
		s.Equal("https://auth.example.org/", outcome.BackURL)
	})

	s.Run("empty client_id is malformed", func() {
		q := validQuery()
		q.Set("client_id", "")

		outcome := s.service.Authorize(s.ctx, q, alice)
		s.Equal(ReasonMalformedRequest, outcome.Reason)
	})

	s.Run("repeated state parameter is malformed", func() {
		q := validQuery()
		q["state"] = []string{"one", "two"}

		outcome := s.service.Authorize(s.ctx, q, alice)
		s.Equal(ReasonMalformedRequest, outcome.Reason)
	})

	s.Run("oversized state is malformed", func() {
		q := validQuery()
		long := make([]byte, 501)
		for i := range long {
			long[i] = 'a'
		}
		q.Set("state", string(long))

		outcome := s.service.Authorize(s.ctx, q, alice)
		s.Equal(ReasonMalformedRequest, outcome.Reason)
	})
}

// TestAuthorize_IdentitySwitch covers the switch-user branch, which also
// runs before client resolution.
func (s *ServiceSuite) TestAuthorize_IdentitySwitch() {
	s.Run("different requested user renders switch page", func() {
		s.directory.Put("bob", "Bob Barker")
		q := validQuery()
		q.Set("user", "bob")

		outcome := s.service.Authorize(s.ctx, q, alice)

		s.Equal(OutcomeSwitchUser, outcome.Kind)
		s.Contains(outcome.CurrentUserHTML, "Alice Adams")
		s.Contains(outcome.CurrentUserHTML, "alice")
		s.Contains(outcome.RequestedUserHTML, "Bob Barker")

		logoutURL, err := url.Parse(outcome.LogoutURL)
		s.Require().NoError(err)
		s.Equal("/authorize/logout", logoutURL.Path)
		s.Equal("bob", logoutURL.Query().Get("user"))
		s.Equal("xyz", logoutURL.Query().Get("state"))
		s.Equal("acme", logoutURL.Query().Get("client_id"))
		s.Equal("https://acme.example/cb", logoutURL.Query().Get("redirect_uri"))
	})

	s.Run("unknown requested user falls back to escaped id", func() {
		q := validQuery()
		q.Set("user", "<script>alert(1)</script>")

		outcome := s.service.Authorize(s.ctx, q, alice)

		s.Equal(OutcomeSwitchUser, outcome.Kind)
		s.NotContains(outcome.RequestedUserHTML, "<script>")
		s.Contains(outcome.RequestedUserHTML, "&lt;script&gt;")
	})

	s.Run("matching requested user proceeds to consent", func() {
		client := s.registeredClient()
		s.clients.EXPECT().FindByOAuthClientID(gomock.Any(), "acme").Return(client, nil)
		q := validQuery()
		q.Set("user", "alice")

		outcome := s.service.Authorize(s.ctx, q, alice)
		s.Equal(OutcomeConsent, outcome.Kind)
	})
}

// TestAuthorize_ClientChecks covers resolution and redirect URI policy.
func (s *ServiceSuite) TestAuthorize_ClientChecks() {
	s.Run("unknown client renders error without a client name", func() {
		s.clients.EXPECT().FindByOAuthClientID(gomock.Any(), "acme").
			Return(nil, sentinel.ErrNotFound)

		outcome := s.service.Authorize(s.ctx, validQuery(), alice)

		s.Equal(OutcomeError, outcome.Kind)
		s.Equal(ReasonUnknownClient, outcome.Reason)
		s.Nil(outcome.ClientName)
	})

	s.Run("registry failure renders generic error", func() {
		s.clients.EXPECT().FindByOAuthClientID(gomock.Any(), "acme").
			Return(nil, sentinel.ErrUnavailable)

		outcome := s.service.Authorize(s.ctx, validQuery(), alice)

		s.Equal(OutcomeError, outcome.Kind)
		s.Equal(ReasonStoreFailure, outcome.Reason)
		s.Nil(outcome.ClientName)
	})

	s.Run("redirect URI mismatch renders error with the client name", func() {
		client := s.registeredClient()
		s.clients.EXPECT().FindByOAuthClientID(gomock.Any(), "acme").Return(client, nil)
		q := validQuery()
		q.Set("redirect_uri", "https://evil.example/cb")

		outcome := s.service.Authorize(s.ctx, q, alice)

		s.Equal(OutcomeError, outcome.Kind)
		s.Equal(ReasonRedirectURIMismatch, outcome.Reason)
		s.Require().NotNil(outcome.ClientName)
		s.Equal("Acme Reader", *outcome.ClientName)
	})

	s.Run("subdomain accepted only when the client allows it", func() {
		client := s.registeredClient()
		client.AllowSubdomains = true
		s.clients.EXPECT().FindByOAuthClientID(gomock.Any(), "acme").Return(client, nil)
		q := validQuery()
		q.Set("redirect_uri", "https://app.acme.example/cb")

		outcome := s.service.Authorize(s.ctx, q, alice)
		s.Equal(OutcomeConsent, outcome.Kind)
	})

	s.Run("unsupported response type renders error with the client name", func() {
		client := s.registeredClient()
		s.clients.EXPECT().FindByOAuthClientID(gomock.Any(), "acme").Return(client, nil)
		q := validQuery()
		q.Set("response_type", "token")

		outcome := s.service.Authorize(s.ctx, q, alice)

		s.Equal(OutcomeError, outcome.Kind)
		s.Equal(ReasonUnsupportedResponseType, outcome.Reason)
		s.Require().NotNil(outcome.ClientName)
		s.Equal("Acme Reader", *outcome.ClientName)
	})

	s.Run("valid request renders consent with the client name", func() {
		client := s.registeredClient()
		s.clients.EXPECT().FindByOAuthClientID(gomock.Any(), "acme").Return(client, nil)

		outcome := s.service.Authorize(s.ctx, validQuery(), alice)

		s.Equal(OutcomeConsent, outcome.Kind)
		s.Require().NotNil(outcome.ClientName)
		s.Equal("Acme Reader", *outcome.ClientName)
	})
}
