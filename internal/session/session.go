// Package session answers "who is the resource owner on this request" for
// the authorization flow. The flow never reaches into ambient state; it is
// handed an Identity explicitly by the transport layer.
package session

import "net/http"

// Identity is the authenticated resource owner bound to a request.
type Identity struct {
	UserID      string
	DisplayName string
}

// Provider abstracts session management for the HTTP layer.
type Provider interface {
	// CurrentUser resolves the request's session, if any.
	CurrentUser(r *http.Request) (Identity, bool)
	// Issue establishes a session for the identity on the response.
	Issue(w http.ResponseWriter, identity Identity) error
	// Clear terminates the session on the response unconditionally.
	Clear(w http.ResponseWriter)
}
