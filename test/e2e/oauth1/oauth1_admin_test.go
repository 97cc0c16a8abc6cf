package oauth1_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/aussiebroadwan/oauth1d/pkg/oauthsdk"
	"github.com/stretchr/testify/require"
)

func TestClientsRequireAdminScopes(t *testing.T) {
	p := setupProvider(t)
	userID := p.addUser(t, userName)

	_, err := p.sdk.ListClients(t.Context(), "not-a-jwt")
	var statusErr *oauthsdk.StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)

	_, err = p.sdk.RegisterClient(t.Context(), p.session(t, userID, userName, "admin:read"), oauthsdk.RegisterClientRequest{
		Name: clientName,
	})
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusForbidden, statusErr.StatusCode)

	created := p.registerClient(t, p.session(t, userID, userName, "admin:write"), "allow_read_gpx")

	clients, err := p.sdk.ListClients(t.Context(), p.session(t, userID, userName, "admin:read"))
	require.NoError(t, err)
	require.Len(t, clients, 1)
	require.Equal(t, created.Key, clients[0].Key)
	require.Empty(t, clients[0].Secret)
	require.Equal(t, []string{"allow_read_gpx"}, clients[0].Permissions)
}

func TestHealth(t *testing.T) {
	p := setupProvider(t)
	require.NoError(t, p.sdk.Ready(t.Context()))

	resp, err := http.Get(p.baseURL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
