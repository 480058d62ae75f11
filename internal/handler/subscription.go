package handler

import (
	"errors"
	"net/http"

	"whatsapp-disparador/internal/i18n"
	"whatsapp-disparador/internal/service"
	"whatsapp-disparador/pkg/logger"
)

// SubscriptionHandler opens the billing portal
type SubscriptionHandler struct {
	portal     service.BillingPortal
	translator *i18n.Translator
	logger     *logger.Logger
}

// NewSubscriptionHandler creates a new subscription handler
func NewSubscriptionHandler(portal service.BillingPortal, translator *i18n.Translator, log *logger.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		portal:     portal,
		translator: translator,
		logger:     log,
	}
}

// PortalSession is the redirect target of the billing portal
type PortalSession struct {
	URL string `json:"url"`
}

// OpenPortal handles POST /api/v1/subscription/portal.
// The session token is validated by the portal itself.
func (h *SubscriptionHandler) OpenPortal(w http.ResponseWriter, r *http.Request) {
	loc := localizer(h.translator, r)
	errTitle := loc.T(i18n.MsgErrorTitle, nil)

	header := r.Header.Get("Authorization")
	if header == "" {
		sendErrorResponse(w, http.StatusUnauthorized, "ERR_UNAUTHORIZED", "Missing bearer token",
			alert(errTitle, loc.T(i18n.MsgLoginRequired, nil)))
		return
	}

	url, err := h.portal.OpenPortal(r.Context(), service.BearerToken(header))
	switch {
	case err == nil:
	case errors.Is(err, service.ErrInvalidToken):
		sendErrorResponse(w, http.StatusUnauthorized, "ERR_UNAUTHORIZED", err.Error(),
			alert(errTitle, loc.T(i18n.MsgLoginRequired, nil)))
		return
	case errors.Is(err, service.ErrNoSubscription):
		sendErrorResponse(w, http.StatusNotFound, "ERR_NO_SUBSCRIPTION", err.Error(),
			alert(errTitle, loc.T(i18n.MsgPortalFailed, nil)))
		return
	default:
		h.logger.WithError(err).Error("Failed to open billing portal")
		sendErrorResponse(w, http.StatusBadGateway, "ERR_PORTAL_FAILED", "Failed to open billing portal",
			alert(errTitle, loc.T(i18n.MsgPortalFailed, nil)))
		return
	}

	sendSuccessResponse(w, http.StatusOK, "Billing portal opened", PortalSession{URL: url},
		notice(loc.T(i18n.MsgPortalOpenedTitle, nil), loc.T(i18n.MsgPortalOpened, nil)))
}
