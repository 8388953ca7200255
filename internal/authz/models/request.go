package models

import (
	"net/url"

	"github.com/asaskevich/govalidator"
)

// AuthorizeRequest is the transient shape of one authorization request. It is
// never persisted; it only drives the decision and issuance logic.
//
// State and User distinguish "absent" from "present but empty" because the
// flow echoes state verbatim and treats any supplied user as a switch target.
type AuthorizeRequest struct {
	ResponseType string
	ClientID     string
	RedirectURI  string
	State        *string
	User         *string
}

// ParseAuthorizeRequest extracts an AuthorizeRequest from query parameters.
// The second return is false for malformed requests: a required parameter
// missing or empty, any parameter repeated, or any value beyond its length
// cap. Malformed input is an outcome, never a panic.
func ParseAuthorizeRequest(q url.Values) (*AuthorizeRequest, bool) {
	responseType, ok := requiredParam(q, "response_type", 50)
	if !ok {
		return nil, false
	}
	clientID, ok := requiredParam(q, "client_id", 100)
	if !ok {
		return nil, false
	}
	redirectURI, ok := requiredParam(q, "redirect_uri", 2048)
	if !ok {
		return nil, false
	}
	state, ok := optionalParam(q, "state", 500)
	if !ok {
		return nil, false
	}
	user, ok := optionalParam(q, "user", 255)
	if !ok {
		return nil, false
	}
	return &AuthorizeRequest{
		ResponseType: responseType,
		ClientID:     clientID,
		RedirectURI:  redirectURI,
		State:        state,
		User:         user,
	}, true
}

func requiredParam(q url.Values, name string, maxLen int) (string, bool) {
	values, present := q[name]
	if !present || len(values) != 1 {
		return "", false
	}
	v := values[0]
	if !govalidator.StringLength(v, "1", itoa(maxLen)) {
		return "", false
	}
	return v, true
}

func optionalParam(q url.Values, name string, maxLen int) (*string, bool) {
	values, present := q[name]
	if !present {
		return nil, true
	}
	if len(values) != 1 {
		return nil, false
	}
	v := values[0]
	if !govalidator.StringLength(v, "0", itoa(maxLen)) {
		return nil, false
	}
	return &v, true
}

func itoa(n int) string {
	return govalidator.ToString(n)
}
