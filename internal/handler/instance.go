package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"whatsapp-disparador/internal/i18n"
	"whatsapp-disparador/internal/model"
	"whatsapp-disparador/internal/service"
	"whatsapp-disparador/pkg/logger"
)

const (
	qrImageSize    = 512
	eventHeartbeat = 25 * time.Second
)

// Instance is the linked WhatsApp number as seen by the API
type Instance interface {
	Status() model.InstanceStatus
	Refresh(ctx context.Context) (model.InstanceStatus, error)
	Disconnect(ctx context.Context) error
	QRPNG(size int) ([]byte, error)
}

// InstanceHandler manages the WhatsApp instance
type InstanceHandler struct {
	instance   Instance
	notifier   service.Notifier
	translator *i18n.Translator
	logger     *logger.Logger
	heartbeat  time.Duration

	done     chan struct{}
	stopOnce sync.Once
}

// NewInstanceHandler creates a new instance handler
func NewInstanceHandler(instance Instance, notifier service.Notifier, translator *i18n.Translator, log *logger.Logger) *InstanceHandler {
	return &InstanceHandler{
		instance:   instance,
		notifier:   notifier,
		translator: translator,
		logger:     log,
		heartbeat:  eventHeartbeat,
		done:       make(chan struct{}),
	}
}

// Shutdown ends every open event stream. http.Server.Shutdown does not
// cancel running requests, so register it with RegisterOnShutdown.
func (h *InstanceHandler) Shutdown() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Refresh handles POST /api/v1/instance/refresh
func (h *InstanceHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	loc := localizer(h.translator, r)

	status, err := h.instance.Refresh(r.Context())
	if err != nil {
		h.logger.WithUserID(userID(r)).WithError(err).Warn("Instance refresh failed")
		sendErrorResponse(w, http.StatusBadGateway, "ERR_REFRESH_FAILED", err.Error(),
			alert(loc.T(i18n.MsgRefreshFailedTitle, nil), err.Error()))
		return
	}

	description := loc.T(i18n.MsgStatusDisconnected, nil)
	if status.Connected() {
		description = loc.T(i18n.MsgStatusConnected, map[string]any{"Phone": status.PhoneNumber})
	}
	sendSuccessResponse(w, http.StatusOK, "Instance status refreshed", status,
		notice(loc.T(i18n.MsgStatusUpdatedTitle, nil), description))
}

// Disconnect handles POST /api/v1/instance/disconnect
func (h *InstanceHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	loc := localizer(h.translator, r)
	uid := userID(r)

	if err := h.instance.Disconnect(r.Context()); err != nil {
		h.logger.WithUserID(uid).WithError(err).Error("Instance disconnect failed")
		sendErrorResponse(w, http.StatusBadGateway, "ERR_DISCONNECT_FAILED", err.Error(),
			alert(loc.T(i18n.MsgDisconnectFailedTitle, nil), err.Error()))
		return
	}

	h.logger.WithUserID(uid).Info("Instance disconnected by user")
	sendSuccessResponse(w, http.StatusOK, "Instance disconnected", nil,
		notice(loc.T(i18n.MsgDisconnectedTitle, nil), loc.T(i18n.MsgDisconnected, nil)))
}

// QRCode handles GET /api/v1/instance/qr
func (h *InstanceHandler) QRCode(w http.ResponseWriter, r *http.Request) {
	png, err := h.instance.QRPNG(qrImageSize)
	if errors.Is(err, service.ErrNoQRCode) {
		sendErrorResponse(w, http.StatusNotFound, "ERR_NO_QR_CODE", "No pairing in progress", nil)
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to render QR code")
		sendErrorResponse(w, http.StatusInternalServerError, "ERR_INTERNAL_SERVER", "Failed to render QR code", nil)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// Events handles GET /api/v1/instance/events as a server-sent event stream.
// The current status is sent first, then every change until the client leaves.
func (h *InstanceHandler) Events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		sendErrorResponse(w, http.StatusInternalServerError, "ERR_STREAMING_UNSUPPORTED", "Streaming unsupported", nil)
		return
	}

	updates := make(chan model.InstanceStatus, 8)
	cancel := h.notifier.OnChange(func(status model.InstanceStatus) {
		select {
		case updates <- status:
		default:
			// slow client; it gets the next change
		}
	})
	defer cancel()

	// The server write timeout would otherwise end the stream.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := writeEvent(w, h.instance.Status()); err != nil {
		return
	}
	flusher.Flush()

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-h.done:
			return
		case status := <-updates:
			if err := writeEvent(w, status); err != nil {
				return
			}
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
		}
		flusher.Flush()
	}
}

func writeEvent(w http.ResponseWriter, status model.InstanceStatus) error {
	data, err := json.Marshal(status)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: instance\ndata: %s\n\n", data)
	return err
}
