package http

import (
	"net/http"
	"net/url"

	"github.com/aussiebroadwan/oauth1d/internal/provider/i18n"
	"github.com/aussiebroadwan/oauth1d/internal/provider/service"
	"github.com/aussiebroadwan/oauth1d/pkg/httpx"
	"github.com/aussiebroadwan/oauth1d/pkg/slogx"
)

const tokensPath = "/oauth/tokens"

// TokensHandler lists and revokes the signed-in user's access tokens.
type TokensHandler struct {
	RevokeService *service.RevokeService
	Views         *Views
}

// HandleList handles GET /oauth/tokens
//
//	@Summary		Authorized applications
//	@Description	Lists the user's live access tokens with a revoke button for each.
//	@Tags			OAuth
//	@Produce		html
//	@Param			display_name	query	string	false	"Display name of the signed-in user"
//	@Success		200
//	@Failure		401	{string}	string	"Login Required"
//	@Router			/oauth/tokens [get].
func (h *TokensHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, _ := httpx.SessionFromContext(ctx)

	listing, err := h.RevokeService.ListAccessTokens(ctx, sess.UserID)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list access tokens", "error", err)
		h.Views.failure(w, r, http.StatusInternalServerError, i18n.KeyFailureInternal)
		return
	}

	rows := make([]tokenRow, 0, len(listing))
	for _, l := range listing {
		rows = append(rows, tokenRow{
			Token:       l.Token.Token,
			ClientName:  l.Client.Name,
			Issued:      l.Token.CreatedAt.Format("2006-01-02"),
			Permissions: l.Token.Permissions.Names(),
		})
	}

	h.Views.render(w, r, http.StatusOK, viewTokens, tokensData{Tokens: rows}, popFlash(w, r))
}

// HandleRevoke handles POST /oauth/revoke
//
//	@Summary		Revoke an access token
//	@Description	Invalidates the named token if the signed-in user owns it. Unknown tokens are ignored.
//	@Description	Always redirects back to the listing.
//	@Tags			OAuth
//	@Accept			x-www-form-urlencoded
//	@Param			token	formData	string	true	"Access token to revoke"
//	@Success		303		"Redirect to /oauth/tokens"
//	@Failure		401		{string}	string	"Login Required"
//	@Router			/oauth/revoke [post].
func (h *TokensHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, _ := httpx.SessionFromContext(ctx)

	if err := r.ParseForm(); err == nil {
		res, err := h.RevokeService.Revoke(ctx, sess.UserID, r.PostForm.Get("token"))
		if err != nil {
			slogx.FromContext(ctx).Error("failed to revoke access token", "error", err)
			h.Views.failure(w, r, http.StatusInternalServerError, i18n.KeyFailureInternal)
			return
		}
		if res.Revoked {
			_, printer := localizer(w, r)
			setFlash(w, printer.Sprintf(i18n.KeyRevokeFlash, res.ClientName))
		}
	}

	http.Redirect(w, r, listingURL(sess.DisplayName), http.StatusSeeOther)
}

func listingURL(displayName string) string {
	if displayName == "" {
		return tokensPath
	}
	return tokensPath + "?" + url.Values{"display_name": {displayName}}.Encode()
}
