package oauthsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// SDKClient talks to an oauth1d provider.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a client with a 10s timeout that does not follow
// redirects, so callers can inspect the authorize redirect themselves.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// ExchangeRequestToken trades an authorized request token for an access token.
func (c *SDKClient) ExchangeRequestToken(ctx context.Context, creds Credentials) (*AccessTokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/oauth/access_token", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", creds.Header())

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, ErrAccessDenied
	default:
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	out, err := ParseAccessTokenResponse(string(body))
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RegisterClient creates a client application. bearer must carry admin:write.
func (c *SDKClient) RegisterClient(ctx context.Context, bearer string, in RegisterClientRequest) (*ClientApplication, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var out ClientApplication
	if err := c.doJSON(ctx, http.MethodPost, "/v1/clients", bearer, body, http.StatusCreated, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListClients lists client applications. bearer must carry admin:read.
func (c *SDKClient) ListClients(ctx context.Context, bearer string) ([]ClientApplication, error) {
	var out ListClientsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/clients", bearer, nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return out.Clients, nil
}

// Ready reports whether /readyz answers 200.
func (c *SDKClient) Ready(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/readyz", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return &StatusError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	return nil
}

func (c *SDKClient) doJSON(ctx context.Context, method, path, bearer string, body []byte, want int, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		b, _ := io.ReadAll(resp.Body)
		return &StatusError{StatusCode: resp.StatusCode, Body: string(b)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
