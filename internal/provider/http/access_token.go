package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/oauth1d/internal/provider/service"
	"github.com/aussiebroadwan/oauth1d/pkg/httpx"
	"github.com/aussiebroadwan/oauth1d/pkg/oauthsdk"
	"github.com/aussiebroadwan/oauth1d/pkg/slogx"
)

// AccessTokenHandler exchanges an authorized request token for an access
// token.
type AccessTokenHandler struct {
	ExchangeService *service.ExchangeService
}

// ServeHTTP handles POST /oauth/access_token
//
//	@Summary		Exchange a request token
//	@Description	Credentials are read from a Digest Authorization header with the keys
//	@Description	oauth_token, request_token_secret (or oauth_token_secret) and an optional oauth_verifier.
//	@Description	Every credential mismatch returns the same 401 body.
//	@Tags			OAuth
//	@Produce		plain
//	@Param			Authorization	header		string	true	"Digest oauth_token=\"...\", request_token_secret=\"...\""
//	@Success		200				{string}	string	"oauth_token=...&oauth_token_secret=...&username=...&userId=..."
//	@Failure		401				{string}	string	"Access Denied"
//	@Failure		500				{string}	string	"Internal Server Error"
//	@Router			/oauth/access_token [post].
func (h *AccessTokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	creds, err := oauthsdk.ParseCredentials(r.Header.Get("Authorization"))
	if err != nil {
		h.ExchangeService.Deny(ctx, err)
		httpx.WriteText(w, http.StatusUnauthorized, accessDeniedBody)
		return
	}

	res, err := h.ExchangeService.Exchange(ctx, service.Credentials{
		Token:    creds.Token,
		Secret:   creds.Secret,
		Verifier: creds.Verifier,
	})
	if err != nil {
		if errors.Is(err, service.ErrAccessDenied) {
			httpx.WriteText(w, http.StatusUnauthorized, accessDeniedBody)
			return
		}
		slogx.FromContext(ctx).Error("token exchange failed", "error", err)
		httpx.WriteText(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	httpx.WriteText(w, http.StatusOK, res.Response().Encode())
}
