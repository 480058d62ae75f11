package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"whatsapp-disparador/internal/i18n"
	"whatsapp-disparador/internal/model"
	"whatsapp-disparador/internal/repository"
	"whatsapp-disparador/internal/service"
	"whatsapp-disparador/pkg/logger"
)

// Campaigns is the campaign service as seen by the API
type Campaigns interface {
	Launch(ctx context.Context, userID string, req model.LaunchRequest) (*model.Campaign, error)
	List(ctx context.Context, userID string) ([]model.Campaign, error)
	Dashboard(ctx context.Context, userID string) (*model.Dashboard, error)
}

// CampaignHandler serves campaigns and the dashboard aggregate
type CampaignHandler struct {
	campaigns  Campaigns
	translator *i18n.Translator
	logger     *logger.Logger
}

// NewCampaignHandler creates a new campaign handler
func NewCampaignHandler(campaigns Campaigns, translator *i18n.Translator, log *logger.Logger) *CampaignHandler {
	return &CampaignHandler{
		campaigns:  campaigns,
		translator: translator,
		logger:     log,
	}
}

// List handles GET /api/v1/campaigns
func (h *CampaignHandler) List(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	campaigns, err := h.campaigns.List(r.Context(), uid)
	if err != nil {
		h.logger.WithUserID(uid).WithError(err).Error("Failed to list campaigns")
		sendErrorResponse(w, http.StatusInternalServerError, "ERR_INTERNAL_SERVER", "Failed to list campaigns", nil)
		return
	}
	sendSuccessResponse(w, http.StatusOK, "Campaigns loaded", campaigns, nil)
}

// Launch handles POST /api/v1/campaigns
func (h *CampaignHandler) Launch(w http.ResponseWriter, r *http.Request) {
	loc := localizer(h.translator, r)
	uid := userID(r)
	errTitle := loc.T(i18n.MsgErrorTitle, nil)

	var req model.LaunchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUploadBytes)).Decode(&req); err != nil {
		sendErrorResponse(w, http.StatusBadRequest, "ERR_INVALID_BODY", "Invalid JSON body",
			alert(errTitle, loc.T(i18n.MsgBadRequest, nil)))
		return
	}

	campaign, err := h.campaigns.Launch(r.Context(), uid, req)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrInvalidCampaign):
		sendErrorResponse(w, http.StatusBadRequest, "ERR_INVALID_PARAMETER", err.Error(),
			alert(errTitle, loc.T(i18n.MsgBadRequest, nil)))
		return
	case errors.Is(err, service.ErrNotConnected):
		sendErrorResponse(w, http.StatusConflict, "ERR_WHATSAPP_NOT_CONNECTED", err.Error(),
			alert(errTitle, loc.T(i18n.MsgNotConnected, nil)))
		return
	case errors.Is(err, repository.ErrHandoffNotFound):
		sendErrorResponse(w, http.StatusNotFound, "ERR_HANDOFF_NOT_FOUND", err.Error(),
			alert(errTitle, loc.T(i18n.MsgHandoffMissing, nil)))
		return
	default:
		h.logger.WithUserID(uid).WithError(err).Error("Failed to launch campaign")
		sendErrorResponse(w, http.StatusInternalServerError, "ERR_INTERNAL_SERVER", "Failed to launch campaign",
			alert(errTitle, loc.T(i18n.MsgCampaignFailed, nil)))
		return
	}

	sendSuccessResponse(w, http.StatusAccepted, "Campaign started", campaign,
		notice(loc.T(i18n.MsgCampaignStartedTitle, nil), loc.Count(i18n.MsgCampaignStarted, campaign.Total)))
}

// Dashboard handles GET /api/v1/dashboard
func (h *CampaignHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	dash, err := h.campaigns.Dashboard(r.Context(), uid)
	if err != nil {
		h.logger.WithUserID(uid).WithError(err).Error("Failed to load dashboard")
		sendErrorResponse(w, http.StatusInternalServerError, "ERR_INTERNAL_SERVER", "Failed to load dashboard", nil)
		return
	}
	sendSuccessResponse(w, http.StatusOK, "Dashboard loaded", dash, nil)
}
