package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"whatsapp-disparador/internal/config"
	"whatsapp-disparador/internal/model"
	"whatsapp-disparador/pkg/logger"
)

// ErrInvalidToken is returned when no usable bearer token was supplied
var ErrInvalidToken = errors.New("invalid token")

// IdentityProvider resolves a session token to a user
type IdentityProvider interface {
	GetUser(ctx context.Context, token string) (*model.User, error)
}

// IdentityError carries the provider's rejection of a token
type IdentityError struct {
	StatusCode int
	Message    string
}

func (e *IdentityError) Error() string {
	return e.Message
}

// Is lets errors.Is(err, ErrInvalidToken) match provider rejections
func (e *IdentityError) Is(target error) bool {
	return target == ErrInvalidToken
}

// SupabaseIdentity validates tokens against the hosted auth backend
type SupabaseIdentity struct {
	httpClient *http.Client
	baseURL    string
	secrets    config.SecretSource
	logger     *logger.Logger
}

// NewSupabaseIdentity creates an identity provider for cfg.URL
func NewSupabaseIdentity(cfg *config.BackendConfig, secrets config.SecretSource, log *logger.Logger) *SupabaseIdentity {
	return &SupabaseIdentity{
		httpClient: &http.Client{
			Timeout: cfg.IdentityTimeout,
		},
		baseURL: strings.TrimRight(cfg.URL, "/"),
		secrets: secrets,
		logger:  log.WithComponent("identity"),
	}
}

// BearerToken strips the first "Bearer " from an Authorization header value
func BearerToken(header string) string {
	return strings.Replace(header, "Bearer ", "", 1)
}

// GetUser performs a single GET /auth/v1/user with the token
func (s *SupabaseIdentity) GetUser(ctx context.Context, token string) (*model.User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrInvalidToken
	}
	if s.baseURL == "" {
		return nil, fmt.Errorf("%s is not configured", config.EnvBackendURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if key := config.MustLookup(s.secrets, config.EnvServiceRoleKey); key != "" {
		req.Header.Set("apikey", key)
	}

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	s.logger.Debug("Identity lookup finished",
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &IdentityError{StatusCode: resp.StatusCode, Message: providerMessage(body, resp.StatusCode)}
	}

	var user model.User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	if user.ID == "" {
		return nil, &IdentityError{StatusCode: resp.StatusCode, Message: "user not found"}
	}
	return &user, nil
}

// providerMessage extracts the error text of an auth backend response
func providerMessage(body []byte, status int) string {
	var payload struct {
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		ErrorDescription string `json:"error_description"`
		Error            string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, m := range []string{payload.Msg, payload.Message, payload.ErrorDescription, payload.Error} {
			if m != "" {
				return m
			}
		}
	}
	return fmt.Sprintf("auth backend returned status %d", status)
}
