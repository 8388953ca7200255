package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const cookieName = "authd_session"

// Claims carries the session identity inside the cookie token.
type Claims struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	jwt.RegisteredClaims
}

// CookieProvider keeps the session in an HS256-signed JWT cookie, which
// keeps the gateway stateless across instances.
type CookieProvider struct {
	signingKey []byte
	ttl        time.Duration
	secure     bool
	clock      func() time.Time
}

// CookieProviderOption configures a CookieProvider.
type CookieProviderOption func(*CookieProvider)

// WithClock sets the clock function for testability.
func WithClock(clock func() time.Time) CookieProviderOption {
	return func(p *CookieProvider) {
		if clock != nil {
			p.clock = clock
		}
	}
}

// WithSecureCookies toggles the Secure cookie attribute (off for local dev).
func WithSecureCookies(secure bool) CookieProviderOption {
	return func(p *CookieProvider) {
		p.secure = secure
	}
}

// NewCookieProvider constructs a JWT-cookie session provider.
func NewCookieProvider(signingKey string, ttl time.Duration, opts ...CookieProviderOption) *CookieProvider {
	p := &CookieProvider{
		signingKey: []byte(signingKey),
		ttl:        ttl,
		secure:     true,
		clock:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// CurrentUser parses and verifies the session cookie. Any failure (absent,
// expired, tampered) reads as "no session".
func (p *CookieProvider) CurrentUser(r *http.Request) (Identity, bool) {
	cookie, err := r.Cookie(cookieName)
	if err != nil || cookie.Value == "" {
		return Identity{}, false
	}

	parsed, err := jwt.ParseWithClaims(cookie.Value, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return p.signingKey, nil
	}, jwt.WithTimeFunc(p.clock))
	if err != nil || !parsed.Valid {
		return Identity{}, false
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || claims.UserID == "" {
		return Identity{}, false
	}
	return Identity{UserID: claims.UserID, DisplayName: claims.DisplayName}, true
}

// Issue signs a fresh session token and sets it on the response.
func (p *CookieProvider) Issue(w http.ResponseWriter, identity Identity) error {
	if identity.UserID == "" {
		return errors.New("cannot issue session without user id")
	}
	now := p.clock()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:      identity.UserID,
		DisplayName: identity.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	})
	signed, err := token.SignedString(p.signingKey)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    signed,
		Path:     "/",
		Expires:  now.Add(p.ttl),
		HttpOnly: true,
		Secure:   p.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear expires the session cookie.
func (p *CookieProvider) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   p.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
