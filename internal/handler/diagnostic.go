package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"whatsapp-disparador/internal/middleware"
	"whatsapp-disparador/internal/model"
	"whatsapp-disparador/internal/service"
	"whatsapp-disparador/pkg/logger"
)

// DiagnosticRunner assembles the configuration report
type DiagnosticRunner interface {
	Run(ctx context.Context, req service.DiagnosticRequest) (model.DiagnosticReport, error)
	Now() string
}

// DiagnosticHandler serves the public billing/auth diagnostic report
type DiagnosticHandler struct {
	reporter DiagnosticRunner
	logger   *logger.Logger
}

// NewDiagnosticHandler creates a new diagnostic handler
func NewDiagnosticHandler(reporter DiagnosticRunner, log *logger.Logger) *DiagnosticHandler {
	return &DiagnosticHandler{
		reporter: reporter,
		logger:   log,
	}
}

// Report handles /functions/v1/diagnostic-stripe for every method.
// OPTIONS gets an empty 200; anything else gets the report, or a 500 with
// {error, timestamp} when the report cannot be assembled.
func (h *DiagnosticHandler) Report(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", middleware.AllowedHeaders)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("Diagnostic report panicked", "panic", rec)
			h.writeJSON(w, http.StatusInternalServerError, model.DiagnosticFailure{
				Error:     fmt.Sprint(rec),
				Timestamp: h.reporter.Now(),
			})
		}
	}()

	report, err := h.reporter.Run(r.Context(), service.DiagnosticRequest{
		Authorization: r.Header.Get("Authorization"),
		Origin:        r.Header.Get("Origin"),
		Method:        r.Method,
	})
	if err != nil {
		h.logger.WithError(err).Error("Diagnostic report failed")
		h.writeJSON(w, http.StatusInternalServerError, model.DiagnosticFailure{
			Error:     err.Error(),
			Timestamp: h.reporter.Now(),
		})
		return
	}

	h.writeJSON(w, http.StatusOK, report)
}

// writeJSON writes v indented by two spaces
func (h *DiagnosticHandler) writeJSON(w http.ResponseWriter, statusCode int, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		h.logger.WithError(err).Error("Failed to encode diagnostic response")
		statusCode = http.StatusInternalServerError
		data = []byte(`{"error":"encoding failed"}`)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(data)
}
