package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aussiebroadwan/oauth1d/internal/provider/domain"
	"github.com/aussiebroadwan/oauth1d/internal/provider/service"
	"github.com/aussiebroadwan/oauth1d/pkg/httpx"
	"github.com/aussiebroadwan/oauth1d/pkg/oauthsdk"
	"github.com/aussiebroadwan/oauth1d/pkg/slogx"
)

// ClientsHandler handles client application management endpoints.
type ClientsHandler struct {
	ClientService *service.ClientService
}

// HandleCreate handles POST /v1/clients
//
//	@Summary		Register a client application
//	@Description	Generates a consumer key and secret. The secret is only returned here.
//	@Tags			Clients
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			Authorization	header		string							true	"Bearer token with admin:write scope"
//	@Param			request			body		oauthsdk.RegisterClientRequest	true	"Client registration request"
//	@Success		201				{object}	oauthsdk.ClientApplication
//	@Failure		400				{object}	oauthsdk.ErrorResponse	"error, error_description"
//	@Failure		401				{object}	oauthsdk.ErrorResponse	"error, error_description"
//	@Failure		403				{object}	oauthsdk.ErrorResponse	"error, error_description"
//	@Failure		500				{object}	oauthsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/clients [post].
func (h *ClientsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req oauthsdk.RegisterClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON in request body")
		return
	}

	perms, err := domain.ParsePermissions(req.Permissions)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	c, err := h.ClientService.Register(ctx, service.RegisterClient{
		Name:        req.Name,
		CallbackURL: req.CallbackURL,
		Permissions: perms,
	})
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Client name is required")
		return
	case errors.Is(err, service.ErrInvalidCallback):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "callback_url must be an absolute http(s) URL")
		return
	case err != nil:
		log.Error("failed to register client", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to register client")
		return
	}

	out := toClientResponse(c)
	out.Secret = c.Secret
	httpx.WriteJSON(w, http.StatusCreated, out)
}

// HandleList handles GET /v1/clients
//
//	@Summary		List client applications
//	@Tags			Clients
//	@Produce		json
//	@Security		BearerAuth
//	@Param			Authorization	header		string							true	"Bearer token with admin:read scope"
//	@Success		200				{object}	oauthsdk.ListClientsResponse
//	@Failure		401				{object}	oauthsdk.ErrorResponse	"error, error_description"
//	@Failure		403				{object}	oauthsdk.ErrorResponse	"error, error_description"
//	@Failure		500				{object}	oauthsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/clients [get].
func (h *ClientsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	clients, err := h.ClientService.List(ctx)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list clients", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to list clients")
		return
	}

	out := oauthsdk.ListClientsResponse{Clients: make([]oauthsdk.ClientApplication, 0, len(clients))}
	for _, c := range clients {
		out.Clients = append(out.Clients, toClientResponse(c))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func toClientResponse(c domain.ClientApplication) oauthsdk.ClientApplication {
	return oauthsdk.ClientApplication{
		ID:          c.ID,
		Name:        c.Name,
		CallbackURL: c.CallbackURL,
		Key:         c.Key,
		Permissions: c.Permissions.Names(),
		CreatedAt:   c.CreatedAt,
	}
}
