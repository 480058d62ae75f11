package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"whatsapp-disparador/internal/model"
	"whatsapp-disparador/internal/repository"
	"whatsapp-disparador/internal/service"
	"whatsapp-disparador/pkg/logger"
)

func TestCampaignHandler_Launch(t *testing.T) {
	campaigns := &mockCampaigns{}
	req := model.LaunchRequest{Name: "Junho", Message: "Parabéns, {name}!", HandoffKey: "k1"}
	campaigns.On("Launch", "user-1", req).Return(&model.Campaign{ID: "c1", Total: 3, Status: model.CampaignStatusRunning}, nil)
	h := NewCampaignHandler(campaigns, newTranslator(t), logger.Discard())

	rec := httptest.NewRecorder()
	h.Launch(rec, authed(http.MethodPost, "/api/v1/campaigns",
		`{"name":"Junho","message":"Parabéns, {name}!","handoff_key":"k1"}`))

	require.Equal(t, http.StatusAccepted, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, "Campanha iniciada", resp.Notification.Title)
	assert.Equal(t, "Enviando para 3 contatos", resp.Notification.Description)
	campaigns.AssertExpectations(t)
}

func TestCampaignHandler_LaunchErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantDesc   string
	}{
		{"invalid", fmt.Errorf("%w: no recipients", service.ErrInvalidCampaign), http.StatusBadRequest, "ERR_INVALID_PARAMETER", "Requisição inválida"},
		{"not connected", service.ErrNotConnected, http.StatusConflict, "ERR_WHATSAPP_NOT_CONNECTED", "Conecte seu WhatsApp antes de enviar campanhas."},
		{"handoff expired", repository.ErrHandoffNotFound, http.StatusNotFound, "ERR_HANDOFF_NOT_FOUND", "A seleção de contatos expirou. Importe novamente."},
		{"store failure", errBoom, http.StatusInternalServerError, "ERR_INTERNAL_SERVER", "Não foi possível iniciar a campanha"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			campaigns := &mockCampaigns{}
			campaigns.On("Launch", "user-1", mock.Anything).Return(nil, tt.err)
			h := NewCampaignHandler(campaigns, newTranslator(t), logger.Discard())

			rec := httptest.NewRecorder()
			h.Launch(rec, authed(http.MethodPost, "/api/v1/campaigns", `{"name":"x","message":"y","handoff_key":"k"}`))

			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := decode(t, rec)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, tt.wantDesc, resp.Notification.Description)
		})
	}
}

func TestCampaignHandler_LaunchBadBody(t *testing.T) {
	h := NewCampaignHandler(&mockCampaigns{}, newTranslator(t), logger.Discard())

	rec := httptest.NewRecorder()
	h.Launch(rec, authed(http.MethodPost, "/api/v1/campaigns", `{not json`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCampaignHandler_ListAndDashboard(t *testing.T) {
	campaigns := &mockCampaigns{}
	campaigns.On("List", "user-1").Return([]model.Campaign{{ID: "c1"}}, nil)
	campaigns.On("Dashboard", "user-1").Return(&model.Dashboard{HasActiveSubscription: true, Campaigns: []model.Campaign{}}, nil)
	h := NewCampaignHandler(campaigns, newTranslator(t), logger.Discard())

	rec := httptest.NewRecorder()
	h.List(rec, authed(http.MethodGet, "/api/v1/campaigns", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec).Data, 1)

	rec = httptest.NewRecorder()
	h.Dashboard(rec, authed(http.MethodGet, "/api/v1/dashboard", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	data := decode(t, rec).Data.(map[string]any)
	assert.Equal(t, true, data["has_active_subscription"])
}

func TestCampaignHandler_DashboardFailure(t *testing.T) {
	campaigns := &mockCampaigns{}
	campaigns.On("Dashboard", "user-1").Return(nil, errBoom)
	h := NewCampaignHandler(campaigns, newTranslator(t), logger.Discard())

	rec := httptest.NewRecorder()
	h.Dashboard(rec, authed(http.MethodGet, "/api/v1/dashboard", ""))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
