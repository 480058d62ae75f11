package handler

import (
	"encoding/json"
	"net/http"

	"whatsapp-disparador/internal/i18n"
	"whatsapp-disparador/internal/middleware"
	"whatsapp-disparador/internal/model"
)

// maxUploadBytes bounds request bodies read by the API
const maxUploadBytes = 10 << 20

// sendSuccessResponse sends a success envelope
func sendSuccessResponse(w http.ResponseWriter, statusCode int, message string, data any, notification *model.Notification) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := model.APIResponse{
		Status:       "success",
		Message:      message,
		Data:         data,
		Notification: notification,
	}

	json.NewEncoder(w).Encode(response)
}

// sendErrorResponse sends an error envelope
func sendErrorResponse(w http.ResponseWriter, statusCode int, code, message string, notification *model.Notification) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := model.APIResponse{
		Status:  "error",
		Message: message,
		Error: &model.APIError{
			Code:    code,
			Message: message,
		},
		Notification: notification,
	}

	json.NewEncoder(w).Encode(response)
}

// localizer picks the language of the request
func localizer(t *i18n.Translator, r *http.Request) *i18n.Localizer {
	return t.Localizer(r.Header.Get("Accept-Language"))
}

func notice(title, description string) *model.Notification {
	return &model.Notification{Title: title, Description: description, Variant: model.VariantDefault}
}

func alert(title, description string) *model.Notification {
	return &model.Notification{Title: title, Description: description, Variant: model.VariantDestructive}
}

// userID returns the authenticated user; routes are wrapped by Authenticate
func userID(r *http.Request) string {
	if user, ok := middleware.UserFromContext(r.Context()); ok {
		return user.ID
	}
	return ""
}
