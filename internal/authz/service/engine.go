package service

import (
	"context"
	"errors"
	"net/url"

	"authd/internal/authz/models"
	"authd/internal/authz/redirecturi"
	"authd/internal/platform/middleware"
	"authd/internal/session"
	"authd/pkg/platform/sentinel"
)

// Authorize runs the decision state machine over one authorization request.
// The caller must have authenticated the resource owner already; current is
// that session identity.
//
// Check order is deliberate: request shape and identity-switch detection run
// before any client lookup so malformed or misdirected requests learn
// nothing about which clients exist.
func (s *Service) Authorize(ctx context.Context, query url.Values, current session.Identity) Outcome {
	req, ok := models.ParseAuthorizeRequest(query)
	if !ok {
		return s.errorOutcome(ReasonMalformedRequest, nil)
	}

	if req.User != nil && *req.User != current.UserID {
		return s.switchUserOutcome(ctx, req, current)
	}

	client, err := s.clients.FindByOAuthClientID(ctx, req.ClientID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return s.errorOutcome(ReasonUnknownClient, nil)
		}
		s.logger.ErrorContext(ctx, "client lookup failed",
			"error", err,
			"request_id", middleware.GetRequestID(ctx),
		)
		return s.errorOutcome(ReasonStoreFailure, nil)
	}

	if !redirecturi.Validate(client.RedirectURI, req.RedirectURI, client.AllowSubdomains) {
		return s.errorOutcome(ReasonRedirectURIMismatch, &client.Name)
	}

	if req.ResponseType != "code" {
		return s.errorOutcome(ReasonUnsupportedResponseType, &client.Name)
	}

	s.metrics.IncAuthorizeOutcome(ReasonConsent)
	return Outcome{
		Kind:       OutcomeConsent,
		Reason:     ReasonConsent,
		ClientName: &client.Name,
		BackURL:    s.endpoints.DefaultLandingURL,
	}
}

func (s *Service) errorOutcome(reason string, clientName *string) Outcome {
	s.metrics.IncAuthorizeOutcome(reason)
	return Outcome{
		Kind:       OutcomeError,
		Reason:     reason,
		ClientName: clientName,
		BackURL:    s.endpoints.DefaultLandingURL,
	}
}

// switchUserOutcome renders the identity-switch confirmation. Both
// identities are shown escaped; the requested one goes through the directory
// for a display name, never trusting the raw parameter for presentation.
func (s *Service) switchUserOutcome(ctx context.Context, req *models.AuthorizeRequest, current session.Identity) Outcome {
	s.metrics.IncAuthorizeOutcome(ReasonIdentitySwitch)

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

	return Outcome{
		Kind:              OutcomeSwitchUser,
		Reason:            ReasonIdentitySwitch,
		BackURL:           s.endpoints.DefaultLandingURL,
		CurrentUserHTML:   displayForIdentity(current),
		RequestedUserHTML: s.displayForUserID(ctx, *req.User),
		LogoutURL:         s.endpoints.LogoutSwitchURL(params),
	}
}
