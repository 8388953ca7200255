package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"authd/internal/audit"
	"authd/internal/authz/models"
	"authd/internal/authz/redirecturi"
	"authd/internal/platform/middleware"
	"authd/internal/session"
	"authd/pkg/platform/sentinel"
)

// Issue implements the authorization response: it re-validates everything
// the decision engine validated (issuance never trusts a prior render-time
// decision), mints a single-use code bound to the client and the session
// user, and returns the redirect target.
//
// Every client-input failure redirects to the default landing page without
// issuing anything; no detail leaks back to the caller. A store failure is
// the only returned error.
func (s *Service) Issue(ctx context.Context, query url.Values, current session.Identity) (string, error) {
	req, ok := models.ParseAuthorizeRequest(query)
	if !ok {
		s.debugReject(ctx, ReasonMalformedRequest)
		return s.endpoints.DefaultLandingURL, nil
	}

	if req.ResponseType != "code" {
		s.debugReject(ctx, ReasonUnsupportedResponseType)
		return s.endpoints.DefaultLandingURL, nil
	}

	client, err := s.clients.FindByOAuthClientID(ctx, req.ClientID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.debugReject(ctx, ReasonUnknownClient)
			return s.endpoints.DefaultLandingURL, nil
		}
		return "", fmt.Errorf("client lookup: %w", err)
	}

	if !redirecturi.Validate(client.RedirectURI, req.RedirectURI, client.AllowSubdomains) {
		s.debugReject(ctx, ReasonRedirectURIMismatch)
		return s.endpoints.DefaultLandingURL, nil
	}

	code, err := s.generate()
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}

	record := models.NewAuthorizationCodeRecord(code, client.ID, current.UserID, s.codeTTL, s.clock())
	if err := s.codes.Create(ctx, record); err != nil {
		return "", fmt.Errorf("persist code: %w", err)
	}

	target, err := buildRedirectTarget(req.RedirectURI, code, req.State)
	if err != nil {
		// Unreachable after Validate accepted the URI; guard anyway.
		return "", fmt.Errorf("build redirect target: %w", err)
	}

	s.metrics.IncCodesIssued()
	s.logger.InfoContext(ctx, "authorization code issued",
		"client_name", client.Name,
		"request_id", middleware.GetRequestID(ctx),
	)
	if err := s.auditor.Emit(ctx, audit.Event{
		Type:     audit.TypeCodeIssued,
		UserID:   current.UserID,
		ClientID: client.OAuthClientID,
	}); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "error", err)
	}

	return target, nil
}

// buildRedirectTarget appends code and the echoed state to the validated
// redirect URI. Going through url.Values keeps the result well-formed even
// when the registered URI already carries a query.
func buildRedirectTarget(redirectURI, code string, state *string) (string, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("code", code)
	if state != nil {
		q.Set("state", *state)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// debugReject keeps failure paths out of info-level logs; attempt details
// are diagnostics, not audit material.
func (s *Service) debugReject(ctx context.Context, reason string) {
	s.logger.DebugContext(ctx, "code issuance rejected",
		"reason", reason,
		"request_id", middleware.GetRequestID(ctx),
	)
}
