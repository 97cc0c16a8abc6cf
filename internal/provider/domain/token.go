package domain

import "time"

// Token type markers stored in the shared oauth_tokens table.
const (
	TokenTypeRequest = "RequestToken"
	TokenTypeAccess  = "AccessToken"
)

// TokenState is the derived lifecycle state of a request token.
type TokenState int

const (
	StateIssued TokenState = iota
	StateAuthorized
	StateInvalidated
)

func (s TokenState) String() string {
	switch s {
	case StateIssued:
		return "issued"
	case StateAuthorized:
		return "authorized"
	case StateInvalidated:
		return "invalidated"
	default:
		return "unknown"
	}
}

// RequestToken is the pre-authorization token handed to a client application.
type RequestToken struct {
	ID                  string
	Token               string
	Secret              string
	ClientApplicationID string
	UserID              *string // set once authorized
	AuthorizedAt        *time.Time
	InvalidatedAt       *time.Time
	Verifier            *string // 1.0a only
	Permissions         PermissionSet
	OAuth10             bool // legacy 1.0 semantics (no verifier)
	OOB                 bool // out-of-band callback requested at initiation
	CallbackURL         string
	CreatedAt           time.Time
}

// State derives the lifecycle state from the timestamps.
func (t RequestToken) State() TokenState {
	switch {
	case t.InvalidatedAt != nil:
		return StateInvalidated
	case t.AuthorizedAt != nil:
		return StateAuthorized
	default:
		return StateIssued
	}
}

func (t RequestToken) Invalidated() bool { return t.InvalidatedAt != nil }

func (t RequestToken) Authorized() bool {
	return t.AuthorizedAt != nil && t.UserID != nil
}

// AccessToken is the long-lived credential minted by a successful exchange.
type AccessToken struct {
	ID                  string
	Token               string
	Secret              string
	UserID              string
	ClientApplicationID string
	Permissions         PermissionSet
	InvalidatedAt       *time.Time
	CreatedAt           time.Time
}

func (t AccessToken) Invalidated() bool { return t.InvalidatedAt != nil }
