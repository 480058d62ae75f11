package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whatsapp-disparador/internal/model"
	"whatsapp-disparador/internal/service"
	"whatsapp-disparador/pkg/logger"
)

func newInstanceHandler(t *testing.T, inst *fakeInstance, hub *service.InstanceHub) *InstanceHandler {
	t.Helper()
	return NewInstanceHandler(inst, hub, newTranslator(t), logger.Discard())
}

func TestInstanceHandler_Refresh(t *testing.T) {
	inst := &fakeInstance{status: model.InstanceStatus{Status: model.InstanceConnected, PhoneNumber: "5511999990000"}}
	h := newInstanceHandler(t, inst, service.NewInstanceHub())

	rec := httptest.NewRecorder()
	h.Refresh(rec, authed(http.MethodPost, "/api/v1/instance/refresh", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, "Status atualizado", resp.Notification.Title)
	assert.Equal(t, "WhatsApp conectado: 5511999990000", resp.Notification.Description)

	inst.status = model.InstanceStatus{Status: model.InstanceDisconnected}
	rec = httptest.NewRecorder()
	h.Refresh(rec, authed(http.MethodPost, "/api/v1/instance/refresh", ""))
	assert.Equal(t, "WhatsApp desconectado", decode(t, rec).Notification.Description)
}

func TestInstanceHandler_RefreshFailure(t *testing.T) {
	h := newInstanceHandler(t, &fakeInstance{refreshErr: errBoom}, service.NewInstanceHub())

	rec := httptest.NewRecorder()
	h.Refresh(rec, authed(http.MethodPost, "/api/v1/instance/refresh", ""))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, "Erro ao atualizar", resp.Notification.Title)
	assert.Equal(t, "boom", resp.Notification.Description)
}

func TestInstanceHandler_Disconnect(t *testing.T) {
	h := newInstanceHandler(t, &fakeInstance{}, service.NewInstanceHub())

	rec := httptest.NewRecorder()
	h.Disconnect(rec, authed(http.MethodPost, "/api/v1/instance/disconnect", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Sua instância foi desconectada com sucesso.", decode(t, rec).Notification.Description)

	h = newInstanceHandler(t, &fakeInstance{disconnectErr: errBoom}, service.NewInstanceHub())
	rec = httptest.NewRecorder()
	h.Disconnect(rec, authed(http.MethodPost, "/api/v1/instance/disconnect", ""))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "Erro ao desconectar", decode(t, rec).Notification.Title)
}

func TestInstanceHandler_QRCode(t *testing.T) {
	h := newInstanceHandler(t, &fakeInstance{png: []byte("\x89PNG...")}, service.NewInstanceHub())
	rec := httptest.NewRecorder()
	h.QRCode(rec, authed(http.MethodGet, "/api/v1/instance/qr", ""))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	h = newInstanceHandler(t, &fakeInstance{qrErr: service.ErrNoQRCode}, service.NewInstanceHub())
	rec = httptest.NewRecorder()
	h.QRCode(rec, authed(http.MethodGet, "/api/v1/instance/qr", ""))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func readEvent(t *testing.T, r *bufio.Reader) model.InstanceStatus {
	t.Helper()
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		if data, ok := strings.CutPrefix(line, "data: "); ok {
			var status model.InstanceStatus
			require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(data)), &status))
			return status
		}
	}
}

func TestInstanceHandler_Events(t *testing.T) {
	hub := service.NewInstanceHub()
	h := newInstanceHandler(t, &fakeInstance{status: model.InstanceStatus{Status: model.InstanceDisconnected}}, hub)
	srv := httptest.NewServer(http.HandlerFunc(h.Events))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	body := bufio.NewReader(resp.Body)
	assert.Equal(t, model.InstanceDisconnected, readEvent(t, body).Status)

	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, time.Second, 5*time.Millisecond)
	hub.Publish(model.InstanceStatus{Status: model.InstanceConnected, PhoneNumber: "5511999990000"})

	next := readEvent(t, body)
	assert.Equal(t, model.InstanceConnected, next.Status)
	assert.Equal(t, "5511999990000", next.PhoneNumber)

	cancel()
	assert.Eventually(t, func() bool { return hub.Subscribers() == 0 }, time.Second, 5*time.Millisecond)
}

func TestInstanceHandler_ShutdownEndsStreams(t *testing.T) {
	h := newInstanceHandler(t, &fakeInstance{status: model.InstanceStatus{Status: model.InstanceDisconnected}}, service.NewInstanceHub())
	srv := httptest.NewUnstartedServer(http.HandlerFunc(h.Events))
	srv.Config.RegisterOnShutdown(h.Shutdown)
	srv.Start()
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	readEvent(t, bufio.NewReader(resp.Body))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	start := time.Now()

	require.NoError(t, srv.Config.Shutdown(ctx))
	assert.Less(t, time.Since(start), time.Second)
}
