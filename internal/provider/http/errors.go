package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/oauth1d/internal/provider/i18n"
	"github.com/aussiebroadwan/oauth1d/internal/provider/service"
)

const accessDeniedBody = "Access Denied"

// failureFor maps an authorization error to a status and failure message.
// Storage details never reach the page.
func failureFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrTokenNotFound), errors.Is(err, service.ErrClientNotFound):
		return http.StatusNotFound, i18n.KeyFailureInvalid
	case errors.Is(err, service.ErrExpiredToken):
		return http.StatusGone, i18n.KeyFailureInvalid
	case errors.Is(err, service.ErrAlreadyAuthorized):
		return http.StatusConflict, i18n.KeyFailureAlready
	case errors.Is(err, service.ErrInvalidCallback):
		return http.StatusBadRequest, i18n.KeyFailureCallback
	case errors.Is(err, service.ErrInvalidRequest):
		return http.StatusBadRequest, i18n.KeyFailureInvalid
	default:
		return http.StatusInternalServerError, i18n.KeyFailureInternal
	}
}
