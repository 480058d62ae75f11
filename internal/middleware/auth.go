package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"whatsapp-disparador/internal/i18n"
	"whatsapp-disparador/internal/model"
	"whatsapp-disparador/internal/service"
	"whatsapp-disparador/pkg/logger"
)

type contextKey struct{}

// WithUser stores the authenticated user in ctx
func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

// UserFromContext returns the user set by Authenticate
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(contextKey{}).(*model.User)
	return user, ok && user != nil
}

// AuthMiddleware validates bearer session tokens
type AuthMiddleware struct {
	identity   service.IdentityProvider
	translator *i18n.Translator
	logger     *logger.Logger
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(identity service.IdentityProvider, translator *i18n.Translator, log *logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		identity:   identity,
		translator: translator,
		logger:     log,
	}
}

// Authenticate resolves the Authorization header to a user and rejects
// the request with 401 when that fails
func (m *AuthMiddleware) Authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			m.logger.Warn("Missing bearer token",
				"path", r.URL.Path,
				"method", r.Method,
				"remote_addr", r.RemoteAddr,
			)
			m.sendErrorResponse(w, r, "ERR_UNAUTHORIZED", "Missing bearer token")
			return
		}

		user, err := m.identity.GetUser(r.Context(), service.BearerToken(header))
		if err != nil {
			m.logger.Warn("Invalid bearer token",
				"path", r.URL.Path,
				"method", r.Method,
				"remote_addr", r.RemoteAddr,
				"error", err,
			)
			m.sendErrorResponse(w, r, "ERR_UNAUTHORIZED", "Invalid bearer token")
			return
		}

		next(w, r.WithContext(WithUser(r.Context(), user)))
	}
}

// sendErrorResponse sends a 401 envelope with a localized notification
func (m *AuthMiddleware) sendErrorResponse(w http.ResponseWriter, r *http.Request, code, message string) {
	loc := m.translator.Localizer(r.Header.Get("Accept-Language"))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)

	response := model.APIResponse{
		Status:  "error",
		Message: message,
		Error: &model.APIError{
			Code:    code,
			Message: message,
		},
		Notification: &model.Notification{
			Title:       loc.T(i18n.MsgErrorTitle, nil),
			Description: loc.T(i18n.MsgLoginRequired, nil),
			Variant:     model.VariantDestructive,
		},
	}

	json.NewEncoder(w).Encode(response)
}
