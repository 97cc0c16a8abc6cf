package service

import (
	"net/url"
	"strings"
)

// BuildCallbackURL appends oauth_token, and oauth_verifier when verifier is
// non-nil, to base. An existing query string is extended as-is: its
// parameters are never re-encoded, replaced or deduplicated. base must be
// absolute.
func BuildCallbackURL(base, token string, verifier *string) (string, error) {
	u, err := parseCallbackURL(base)
	if err != nil {
		return "", err
	}

	params := "oauth_token=" + url.QueryEscape(token)
	if verifier != nil {
		params += "&oauth_verifier=" + url.QueryEscape(*verifier)
	}

	if u.RawQuery == "" {
		u.RawQuery = params
	} else {
		u.RawQuery += "&" + params
	}
	u.ForceQuery = false

	return u.String(), nil
}

// CallbackMatchesRegistered reports whether callback points at the same
// scheme and host as the registered URL.
func CallbackMatchesRegistered(callback, registered string) bool {
	if strings.TrimSpace(registered) == "" {
		return false
	}

	cb, err := url.Parse(callback)
	if err != nil || !cb.IsAbs() {
		return false
	}
	reg, err := url.Parse(registered)
	if err != nil {
		return false
	}

	return strings.EqualFold(cb.Scheme, reg.Scheme) && strings.EqualFold(cb.Host, reg.Host)
}

// validateCallbackURL is used when a callback is registered or stored. Any
// absolute URL is accepted so native apps can use a custom scheme.
func validateCallbackURL(raw string) error {
	if raw == "" {
		return nil
	}
	_, err := parseCallbackURL(raw)
	return err
}

func parseCallbackURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() {
		return nil, ErrInvalidCallback
	}
	if u.Host == "" && u.Opaque == "" && u.Path == "" {
		return nil, ErrInvalidCallback
	}
	switch strings.ToLower(u.Scheme) {
	case "javascript", "data", "vbscript":
		return nil, ErrInvalidCallback
	}
	return u, nil
}
