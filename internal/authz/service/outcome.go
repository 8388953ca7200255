package service

// OutcomeKind tags the terminal result of one authorization decision. The
// presentation layer selects a view from the tag; no template names leak out
// of the service.
type OutcomeKind int

const (
	// OutcomeConsent asks the resource owner to approve the client.
	OutcomeConsent OutcomeKind = iota
	// OutcomeError renders the safe error page with a back link.
	OutcomeError
	// OutcomeSwitchUser asks the resource owner to confirm switching to the
	// requested identity via logout and re-login.
	OutcomeSwitchUser
)

// Decision reasons, used for metrics labels and debug logging.
const (
	ReasonMalformedRequest        = "malformed_request"
	ReasonIdentitySwitch          = "identity_switch"
	ReasonUnknownClient           = "unknown_client"
	ReasonRedirectURIMismatch     = "redirect_uri_mismatch"
	ReasonUnsupportedResponseType = "unsupported_response_type"
	ReasonStoreFailure            = "store_failure"
	ReasonConsent                 = "consent"
)

// Outcome is what the decision engine hands to the presentation layer.
type Outcome struct {
	Kind   OutcomeKind
	Reason string

	// ClientName is nil until the client was resolved. Error pages shown
	// before resolution must not leak whether the client exists.
	ClientName *string

	// BackURL is the deployment's default landing page, carried on every
	// error page.
	BackURL string

	// Switch-user page fields. The HTML fragments are fully escaped by the
	// engine; the view embeds them as-is.
	CurrentUserHTML   string
	RequestedUserHTML string
	LogoutURL         string
}
