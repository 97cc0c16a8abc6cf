package oauthsdk

import "time"

// RegisterClientRequest is the body of POST /v1/clients.
type RegisterClientRequest struct {
	Name        string   `json:"name"`
	CallbackURL string   `json:"callback_url,omitempty"`
	Permissions []string `json:"permissions"`
}

// ClientApplication is a registered client as returned by the admin API.
// Secret is only populated in the registration response.
type ClientApplication struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CallbackURL string    `json:"callback_url,omitempty"`
	Key         string    `json:"key"`
	Secret      string    `json:"secret,omitempty"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListClientsResponse is the body of GET /v1/clients.
type ListClientsResponse struct {
	Clients []ClientApplication `json:"clients"`
}

// ErrorResponse is the JSON error body written by the admin API.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the readiness of each dependency.
type HealthChecks struct {
	Database string `json:"database"`
	Sessions string `json:"sessions"`
}
