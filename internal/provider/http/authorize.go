package http

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/oauth1d/internal/provider/domain"
	"github.com/aussiebroadwan/oauth1d/internal/provider/i18n"
	"github.com/aussiebroadwan/oauth1d/internal/provider/service"
	"github.com/aussiebroadwan/oauth1d/pkg/httpx"
	"github.com/aussiebroadwan/oauth1d/pkg/slogx"
)

// AuthorizeHandler serves the user-facing decision on a request token.
type AuthorizeHandler struct {
	AuthorizeService *service.AuthorizeService
	Views            *Views
}

// HandleGet handles GET /oauth/authorize
//
//	@Summary		Authorization form
//	@Description	Renders the decision form for a pending request token. Requires a user session.
//	@Tags			OAuth
//	@Produce		html
//	@Param			oauth_token		query	string	true	"Request token"
//	@Param			oauth_callback	query	string	false	"Callback override"
//	@Success		200
//	@Failure		401	{string}	string	"Login Required"
//	@Failure		404
//	@Failure		409
//	@Failure		410
//	@Router			/oauth/authorize [get].
func (h *AuthorizeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	pending, err := h.AuthorizeService.Pending(ctx, q.Get("oauth_token"))
	if err != nil {
		status, key := failureFor(err)
		if status >= http.StatusInternalServerError {
			slogx.FromContext(ctx).Error("failed to load request token", "error", err)
		}
		h.Views.failure(w, r, status, key)
		return
	}

	h.Views.render(w, r, http.StatusOK, viewAuthorize, authorizeData{
		Token:       pending.Token.Token,
		Callback:    q.Get("oauth_callback"),
		ClientName:  pending.Client.Name,
		Permissions: pending.Client.Permissions.Names(),
	}, "")
}

// HandlePost handles POST /oauth/authorize
//
//	@Summary		Record the user's decision
//	@Description	Each checked permission field grants that permission. No grants denies the token.
//	@Description	On grant the user agent is redirected to the callback with oauth_token and, for 1.0a, oauth_verifier.
//	@Tags			OAuth
//	@Accept			x-www-form-urlencoded
//	@Produce		html
//	@Param			oauth_token			formData	string	true	"Request token"
//	@Param			oauth_callback		formData	string	false	"Callback override"
//	@Param			allow_read_prefs	formData	string	false	"Grant read_prefs"
//	@Success		200	"Confirmation or denial page"
//	@Success		302	"Redirect to the callback"
//	@Failure		400
//	@Failure		401	{string}	string	"Login Required"
//	@Failure		404
//	@Failure		409
//	@Failure		410
//	@Router			/oauth/authorize [post].
func (h *AuthorizeHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if err := r.ParseForm(); err != nil {
		h.Views.failure(w, r, http.StatusBadRequest, i18n.KeyFailureInvalid)
		return
	}

	sess, _ := httpx.SessionFromContext(ctx)

	d, err := h.AuthorizeService.Decide(ctx, service.DecisionRequest{
		Token:    r.PostForm.Get("oauth_token"),
		UserID:   sess.UserID,
		Grants:   grantsFromForm(r),
		Callback: r.PostForm.Get("oauth_callback"),
	})
	if err != nil {
		status, key := failureFor(err)
		if status >= http.StatusInternalServerError {
			log.Error("failed to record authorization", "error", err)
		}
		h.Views.failure(w, r, status, key)
		return
	}

	switch d.Outcome {
	case service.OutcomeRedirect:
		http.Redirect(w, r, d.RedirectURL, http.StatusFound)
	case service.OutcomeAuthorized:
		data := successData{ClientName: d.Client.Name}
		if d.Token.Verifier != nil {
			data.Verifier = *d.Token.Verifier
		}
		h.Views.render(w, r, http.StatusOK, viewSuccess, data, "")
	default:
		h.Views.failure(w, r, http.StatusOK, i18n.KeyFailureDenied, d.Client.Name)
	}
}

// grantsFromForm reads one field per known permission. Unknown fields are
// ignored.
func grantsFromForm(r *http.Request) domain.PermissionSet {
	var grants domain.PermissionSet
	for _, p := range domain.AllPermissions {
		if truthy(r.PostForm.Get(p.String())) {
			grants = grants.With(p)
		}
	}
	return grants
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "yes", "on", "true":
		return true
	default:
		return false
	}
}
