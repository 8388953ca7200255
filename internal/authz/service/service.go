// Package service holds the decision and issuance logic of the authorization
// code grant. It validates requests, renders decisions as tagged outcomes,
// and mints codes; everything it touches beyond that sits behind narrow
// collaborator interfaces.
package service

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"authd/internal/audit"
	"authd/internal/authz/codegen"
	"authd/internal/authz/store"
	"authd/internal/directory"
	"authd/internal/platform/metrics"
)

//go:generate mockgen -destination=mocks/mocks.go -package=mocks authd/internal/authz/service Auditor

// Auditor records security-relevant events from the flow.
type Auditor interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Endpoints carries the deployment URLs the flow redirects through. The
// gateway never invents redirect targets; they all derive from these values
// or from a validated client registration.
type Endpoints struct {
	// BaseURL is the external origin of this deployment.
	BaseURL string
	// DefaultLandingURL is the safe fallback target for failed requests.
	DefaultLandingURL string
	// LoginURL is the login flow entry point.
	LoginURL string
}

// AuthorizeURL builds the absolute URL re-entering the authorize endpoint
// with the given parameters (used as the post-login callback).
func (e Endpoints) AuthorizeURL(params url.Values) string {
	return e.BaseURL + "/authorize?" + params.Encode()
}

// LogoutSwitchURL builds the absolute URL of the logout branch carrying the
// original authorization parameters.
func (e Endpoints) LogoutSwitchURL(params url.Values) string {
	return e.BaseURL + "/authorize/logout?" + params.Encode()
}

// LoginRedirectURL points at the login entry with a callback and an optional
// login hint for the target user.
func (e Endpoints) LoginRedirectURL(user *string, callbackURL string) string {
	params := url.Values{}
	params.Set("redirect_url", callbackURL)
	if user != nil {
		params.Set("user", *user)
	}
	return e.LoginURL + "?" + params.Encode()
}

// Service implements the decision engine, the code issuer, and the logout
// redirector over injected collaborators.
type Service struct {
	logger    *slog.Logger
	metrics   *metrics.Metrics
	clients   store.ClientRegistry
	codes     store.CodeStore
	directory directory.Directory
	auditor   Auditor
	endpoints Endpoints

	codeTTL  time.Duration
	generate func() (string, error)
	clock    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithCodeGenerator replaces the random code source (tests only).
func WithCodeGenerator(generate func() (string, error)) Option {
	return func(s *Service) {
		if generate != nil {
			s.generate = generate
		}
	}
}

// WithClock sets the clock function for testability.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// New wires the authorization service.
func New(
	logger *slog.Logger,
	m *metrics.Metrics,
	clients store.ClientRegistry,
	codes store.CodeStore,
	dir directory.Directory,
	auditor Auditor,
	endpoints Endpoints,
	codeTTL time.Duration,
	opts ...Option,
) *Service {
	s := &Service{
		logger:    logger,
		metrics:   m,
		clients:   clients,
		codes:     codes,
		directory: dir,
		auditor:   auditor,
		endpoints: endpoints,
		codeTTL:   codeTTL,
		generate:  codegen.Generate,
		clock:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}
