package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"authd/internal/authz/service"
	"authd/internal/session"
)

// Decider is the slice of the authorization service the transport needs.
type Decider interface {
	Authorize(ctx context.Context, query url.Values, current session.Identity) service.Outcome
	Issue(ctx context.Context, query url.Values, current session.Identity) (string, error)
	Logout(ctx context.Context, query url.Values, current session.Identity) (string, bool)
}

type AuthorizeHandler struct {
	logger    *slog.Logger
	svc       Decider
	sessions  session.Provider
	endpoints service.Endpoints
}

func NewAuthorizeHandler(logger *slog.Logger, svc Decider, sessions session.Provider, endpoints service.Endpoints) *AuthorizeHandler {
	return &AuthorizeHandler{
		logger:    logger,
		svc:       svc,
		sessions:  sessions,
		endpoints: endpoints,
	}
}

// Authorize renders the decision for an authorization request: consent,
// switch-user, or the error view.
func (h *AuthorizeHandler) Authorize(w http.ResponseWriter, r *http.Request) {
	current, ok := h.sessions.CurrentUser(r)
	if !ok {
		h.redirectToLogin(w, r)
		return
	}

	outcome := h.svc.Authorize(r.Context(), r.URL.Query(), current)
	renderOutcome(w, r, h.logger, outcome, r.URL.RawQuery)
}

// Confirm issues an authorization code after the user approved the request
// and sends the browser back to the client.
func (h *AuthorizeHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	current, ok := h.sessions.CurrentUser(r)
	if !ok {
		h.redirectToLogin(w, r)
		return
	}

	target, err := h.svc.Issue(r.Context(), r.URL.Query(), current)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "authorization code issuance failed",
			"error", err,
		)
		renderPage(w, r, h.logger, http.StatusInternalServerError, "error", errorView{
			BackURL: h.endpoints.DefaultLandingURL,
		})
		return
	}

	http.Redirect(w, r, target, http.StatusSeeOther)
}

// Success is the static landing page shown to clients without a redirect URI
// of their own.
func (h *AuthorizeHandler) Success(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, h.logger, http.StatusOK, "success", nil)
}

// Logout ends the current session and sends the browser to the login page
// with the original authorization request preserved as the callback.
func (h *AuthorizeHandler) Logout(w http.ResponseWriter, r *http.Request) {
	current, _ := h.sessions.CurrentUser(r)

	target, ok := h.svc.Logout(r.Context(), r.URL.Query(), current)
	if !ok {
		renderPage(w, r, h.logger, http.StatusOK, "error", errorView{
			BackURL: h.endpoints.DefaultLandingURL,
		})
		return
	}

	h.sessions.Clear(w)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *AuthorizeHandler) redirectToLogin(w http.ResponseWriter, r *http.Request) {
	callback := h.endpoints.AuthorizeURL(r.URL.Query())
	http.Redirect(w, r, h.endpoints.LoginRedirectURL(nil, callback), http.StatusSeeOther)
}
