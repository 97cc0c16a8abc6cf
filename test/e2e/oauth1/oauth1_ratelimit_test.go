package oauth1_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/aussiebroadwan/oauth1d/pkg/oauthsdk"
	"github.com/stretchr/testify/require"
)

// TestRateLimitAccessToken verifies the exchange endpoint allows 5 requests
// per minute per address.
func TestRateLimitAccessToken(t *testing.T) {
	p := setupProviderWithDefaultRateLimits(t)

	creds := oauthsdk.Credentials{Token: "guess", Secret: "guess"}
	for i := range 5 {
		_, err := p.sdk.ExchangeRequestToken(t.Context(), creds)
		require.ErrorIs(t, err, oauthsdk.ErrAccessDenied, "request %d", i+1)
	}

	_, err := p.sdk.ExchangeRequestToken(t.Context(), creds)
	var statusErr *oauthsdk.StatusError
	require.True(t, errors.As(err, &statusErr), "got %v", err)
	require.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
}
