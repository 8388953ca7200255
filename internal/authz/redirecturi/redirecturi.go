// Package redirecturi decides whether a requested redirect URI may be used
// for a registered client. This comparison is the security boundary of the
// whole flow: a loose match here is an open redirect carrying the code.
package redirecturi

import (
	"net/url"
	"strings"
)

// Validate compares a registered redirect URI against a requested one. The
// requested URI must already be URL-decoded.
//
// Scheme, path, query, and fragment must match the registration exactly.
// With allowSubdomains, the requested hostname may also be a strict subdomain
// of the registered hostname; ports must still match. Any malformed input
// yields false, never an error.
func Validate(registered, requested string, allowSubdomains bool) bool {
	reg, err := url.Parse(registered)
	if err != nil {
		return false
	}
	req, err := url.Parse(requested)
	if err != nil {
		return false
	}
	if reg.Scheme == "" || reg.Host == "" || req.Scheme == "" || req.Host == "" {
		return false
	}
	if req.Scheme != reg.Scheme || req.Path != reg.Path {
		return false
	}
	// Query or fragment drift is a mismatch outright.
	if req.RawQuery != reg.RawQuery || req.Fragment != reg.Fragment {
		return false
	}
	// Hostnames compare case-insensitively in both modes.
	if !allowSubdomains {
		return strings.EqualFold(req.Host, reg.Host)
	}
	if req.Port() != reg.Port() {
		return false
	}
	return hostMatches(req.Hostname(), reg.Hostname())
}

// hostMatches accepts the exact registered hostname or a strict subdomain of
// it. The dot boundary is what keeps "evilexample.com" away from
// "example.com".
func hostMatches(requested, registered string) bool {
	if registered == "" || requested == "" {
		return false
	}
	requested = strings.ToLower(requested)
	registered = strings.ToLower(registered)
	if requested == registered {
		return true
	}
	return strings.HasSuffix(requested, "."+registered)
}
