package domain

import "time"

// ClientApplication is a registered third party allowed to request tokens.
type ClientApplication struct {
	ID          string
	Name        string
	CallbackURL string // registered callback, may be empty
	Key         string // consumer key
	Secret      string // consumer secret (kept in plaintext, OAuth 1.0a signs with it)
	Permissions PermissionSet
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
