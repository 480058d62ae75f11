package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/stripe/stripe-go/v81"
	portalsession "github.com/stripe/stripe-go/v81/billingportal/session"

	"whatsapp-disparador/internal/config"
	"whatsapp-disparador/internal/model"
	"whatsapp-disparador/pkg/logger"
)

var (
	// ErrNoSubscription is returned when the user has no active paid plan
	ErrNoSubscription = errors.New("no active subscription")
	// ErrBillingNotConfigured is returned when the billing secret is missing
	ErrBillingNotConfigured = errors.New("billing key not configured")
)

// BillingPortal opens a self-service subscription management session
type BillingPortal interface {
	OpenPortal(ctx context.Context, sessionToken string) (string, error)
}

// SubscriptionStore reads subscription state
type SubscriptionStore interface {
	Active(ctx context.Context, userID string) (*model.Subscription, error)
}

// StripePortal creates billing portal sessions through stripe-go
type StripePortal struct {
	backend       stripe.Backend
	returnURL     string
	identity      IdentityProvider
	subscriptions SubscriptionStore
	secrets       config.SecretSource
	logger        *logger.Logger
}

// NewStripePortal creates a billing portal client. The secret key is read
// per request so a rotated key takes effect without a restart.
func NewStripePortal(cfg *config.BillingConfig, identity IdentityProvider, subscriptions SubscriptionStore, secrets config.SecretSource, log *logger.Logger) *StripePortal {
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL: stripe.String(strings.TrimRight(cfg.APIURL, "/")),
		HTTPClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})

	return &StripePortal{
		backend:       backend,
		returnURL:     cfg.ReturnURL,
		identity:      identity,
		subscriptions: subscriptions,
		secrets:       secrets,
		logger:        log.WithComponent("billing"),
	}
}

// OpenPortal validates the session, finds the customer and returns the
// portal URL. Nothing is retried.
func (s *StripePortal) OpenPortal(ctx context.Context, sessionToken string) (string, error) {
	user, err := s.identity.GetUser(ctx, sessionToken)
	if err != nil {
		return "", err
	}

	sub, err := s.subscriptions.Active(ctx, user.ID)
	if err != nil {
		return "", fmt.Errorf("failed to load subscription: %w", err)
	}
	if sub == nil || sub.StripeCustomerID == "" {
		return "", ErrNoSubscription
	}

	secretKey, ok, err := s.secrets.Lookup(config.EnvStripeKey)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", config.EnvStripeKey, err)
	}
	if !ok {
		return "", ErrBillingNotConfigured
	}

	sessions := portalsession.Client{B: s.backend, Key: secretKey}
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(sub.StripeCustomerID),
		ReturnURL: stripe.String(s.returnURL),
	}
	params.Context = ctx

	session, err := sessions.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
			return "", fmt.Errorf("billing portal rejected: %s", stripeErr.Msg)
		}
		return "", fmt.Errorf("failed to create portal session: %w", err)
	}
	if session.URL == "" {
		return "", fmt.Errorf("billing portal returned no url")
	}

	s.logger.WithUserID(user.ID).Info("Billing portal session created", "session_id", session.ID)
	return session.URL, nil
}
