package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/zalando/go-keyring"
)

// Names of the values inspected by the diagnostic report.
const (
	EnvStripeKey       = "STRIPE_SECRET_KEY_NOVA"
	EnvLegacyStripeKey = "STRIPE_SECRET_KEY"
	EnvBackendURL      = "SUPABASE_URL"
	EnvServiceRoleKey  = "SUPABASE_SERVICE_ROLE_KEY"
)

// SecretSource resolves named configuration values at request time.
// A missing value is reported with ok=false and a nil error; an error means
// the backing store itself failed.
type SecretSource interface {
	Lookup(name string) (value string, ok bool, err error)
}

// Secrets reads the process environment first and, when a keyring service
// is configured, falls back to the OS keyring.
type Secrets struct {
	keyringService string
}

// NewSecrets creates a secret source from the secrets configuration
func NewSecrets(cfg SecretsConfig) *Secrets {
	return &Secrets{keyringService: cfg.KeyringService}
}

// Lookup implements SecretSource
func (s *Secrets) Lookup(name string) (string, bool, error) {
	if value := os.Getenv(name); value != "" {
		return value, true, nil
	}
	if s.keyringService == "" {
		return "", false, nil
	}

	value, err := keyring.Get(s.keyringService, name)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("keyring lookup %s: %w", name, err)
	}
	return value, value != "", nil
}

// MustLookup returns the value or an empty string, discarding backend errors.
// Use it only where absence and failure are handled the same way.
func MustLookup(src SecretSource, name string) string {
	value, ok, err := src.Lookup(name)
	if err != nil || !ok {
		return ""
	}
	return value
}
