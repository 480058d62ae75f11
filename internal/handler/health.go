package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"whatsapp-disparador/internal/model"
	"whatsapp-disparador/pkg/logger"
)

// StatusReporter reports the WhatsApp instance state
type StatusReporter interface {
	Status() model.InstanceStatus
}

// HealthHandler handles health check requests
type HealthHandler struct {
	instance  StatusReporter
	languages []string
	logger    *logger.Logger
	startTime time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(instance StatusReporter, languages []string, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		instance:  instance,
		languages: languages,
		logger:    log,
		startTime: time.Now(),
	}
}

// CheckHealth handles GET /health
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(h.startTime)

	response := map[string]any{
		"status":    "healthy",
		"whatsapp":  h.instance.Status(),
		"languages": h.languages,
		"uptime":    uptime.String(),
		"timestamp": time.Now().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}
