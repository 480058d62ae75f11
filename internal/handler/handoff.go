package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"whatsapp-disparador/internal/i18n"
	"whatsapp-disparador/internal/repository"
	"whatsapp-disparador/internal/service"
	"whatsapp-disparador/pkg/logger"
)

// HandoffHandler exposes handed-off payloads to the next page of a flow
type HandoffHandler struct {
	handoffs   service.HandoffStore
	translator *i18n.Translator
	logger     *logger.Logger
}

// NewHandoffHandler creates a new handoff handler
func NewHandoffHandler(handoffs service.HandoffStore, translator *i18n.Translator, log *logger.Logger) *HandoffHandler {
	return &HandoffHandler{
		handoffs:   handoffs,
		translator: translator,
		logger:     log,
	}
}

// Get handles GET /api/v1/handoff/{key}
func (h *HandoffHandler) Get(w http.ResponseWriter, r *http.Request) {
	loc := localizer(h.translator, r)
	uid := userID(r)

	var payload json.RawMessage
	err := h.handoffs.Get(r.Context(), uid, r.PathValue("key"), &payload)
	if errors.Is(err, repository.ErrHandoffNotFound) {
		sendErrorResponse(w, http.StatusNotFound, "ERR_HANDOFF_NOT_FOUND", "Handoff not found or expired",
			alert(loc.T(i18n.MsgErrorTitle, nil), loc.T(i18n.MsgHandoffMissing, nil)))
		return
	}
	if err != nil {
		h.logger.WithUserID(uid).WithError(err).Error("Failed to read handoff")
		sendErrorResponse(w, http.StatusInternalServerError, "ERR_INTERNAL_SERVER", "Failed to read handoff",
			alert(loc.T(i18n.MsgErrorTitle, nil), loc.T(i18n.MsgHandoffMissing, nil)))
		return
	}

	sendSuccessResponse(w, http.StatusOK, "Handoff loaded", payload, nil)
}
