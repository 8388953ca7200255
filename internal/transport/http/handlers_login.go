package httptransport

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"authd/internal/directory"
	"authd/internal/session"
	"github.com/asaskevich/govalidator"
)

// LoginHandler binds a session cookie to a user id. Credential verification
// belongs to the upstream identity provider; this endpoint only establishes
// the local session once the user is known.
type LoginHandler struct {
	logger   *slog.Logger
	sessions session.Provider
	users    directory.Directory
	base     *url.URL
	landing  string
}

func NewLoginHandler(logger *slog.Logger, sessions session.Provider, users directory.Directory, baseURL, landingURL string) *LoginHandler {
	base, err := url.Parse(baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		base = nil
	}
	return &LoginHandler{
		logger:   logger,
		sessions: sessions,
		users:    users,
		base:     base,
		landing:  landingURL,
	}
}

func (h *LoginHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	userID := r.Form.Get("user")
	if userID == "" || !govalidator.StringLength(userID, "1", "255") {
		http.Error(w, "user required", http.StatusBadRequest)
		return
	}

	identity := session.Identity{UserID: userID, DisplayName: userID}
	if resolved, err := h.users.Resolve(r.Context(), userID); err == nil {
		identity.DisplayName = resolved.DisplayName
	}

	if err := h.sessions.Issue(w, identity); err != nil {
		h.logger.ErrorContext(r.Context(), "session issuance failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, h.redirectTarget(r.Form.Get("redirect_url")), http.StatusSeeOther)
}

// redirectTarget only bounces back to this deployment's own origin,
// comparing parsed scheme and host rather than string prefixes.
func (h *LoginHandler) redirectTarget(raw string) string {
	if h.base == nil || raw == "" {
		return h.landing
	}
	u, err := url.Parse(raw)
	if err != nil {
		return h.landing
	}
	if u.Scheme != h.base.Scheme || !strings.EqualFold(u.Host, h.base.Host) {
		return h.landing
	}
	return raw
}
