package service

import (
	"context"
	"net/url"

	"authd/internal/audit"
	"authd/internal/authz/models"
	"authd/internal/platform/middleware"
	"authd/internal/session"
)

// Logout resolves the identity-switch branch: it validates the carried
// authorization parameters and builds the login redirect whose callback
// re-enters /authorize with everything preserved, so the re-authenticated
// user lands back in the decision engine.
//
// The transport layer terminates the session cookie unconditionally before
// following the returned URL; ok=false means the request was malformed and
// the error view should render instead of redirecting.
func (s *Service) Logout(ctx context.Context, query url.Values, current session.Identity) (string, bool) {
	req, ok := models.ParseAuthorizeRequest(query)
	if !ok {
		s.metrics.IncAuthorizeOutcome(ReasonMalformedRequest)
		return "", false
	}

	if current.UserID != "" {
		if err := s.auditor.Emit(ctx, audit.Event{
			Type:   audit.TypeSessionEnded,
			UserID: current.UserID,
		}); err != nil {
			s.logger.WarnContext(ctx, "audit emit failed", "error", err)
		}
	}
	s.logger.DebugContext(ctx, "session terminated for identity switch",
		"request_id", middleware.GetRequestID(ctx),
	)

	params := url.Values{}
	params.Set("response_type", req.ResponseType)
	params.Set("client_id", req.ClientID)
	params.Set("redirect_uri", req.RedirectURI)
	if req.State != nil {
		params.Set("state", *req.State)
	}
	if req.User != nil {
		params.Set("user", *req.User)
	}

	callback := s.endpoints.AuthorizeURL(params)
	return s.endpoints.LoginRedirectURL(req.User, callback), true
}
