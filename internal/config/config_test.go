package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("HOST", "")
	t.Setenv("MAX_MESSAGES_PER_SECOND", "")
	t.Setenv("HANDOFF_TTL", "")
	t.Setenv("LANGUAGES", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 5, cfg.Campaign.MaxMessagesPerSecond)
	assert.Equal(t, 30*time.Minute, cfg.Storage.HandoffTTL)
	assert.Equal(t, []string{"pt-BR", "en"}, cfg.Locale.Languages)
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("MAX_MESSAGES_PER_SECOND", "2")
	t.Setenv("IDENTITY_TIMEOUT", "3s")
	t.Setenv("LANGUAGES", " en , pt-BR ")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.Addr())
	assert.Equal(t, 2, cfg.Campaign.MaxMessagesPerSecond)
	assert.Equal(t, 3*time.Second, cfg.Backend.IdentityTimeout)
	assert.Equal(t, []string{"en", "pt-BR"}, cfg.Locale.Languages)
}

func TestLoad_InvalidRate(t *testing.T) {
	t.Setenv("MAX_MESSAGES_PER_SECOND", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestParseHelpers_FallBackOnGarbage(t *testing.T) {
	assert.Equal(t, 7, parseInt("seven", 7))
	assert.Equal(t, time.Second, parseDuration("soon", time.Second))
	assert.Empty(t, parseStringList(""))
	assert.Equal(t, []string{"a", "b"}, parseStringList("a,,b, "))
}

func TestSecrets_EnvironmentFirst(t *testing.T) {
	keyring.MockInit()
	require.NoError(t, keyring.Set("disparador", EnvStripeKey, "sk_from_keyring"))
	t.Setenv(EnvStripeKey, "sk_from_env")

	src := NewSecrets(SecretsConfig{KeyringService: "disparador"})
	value, ok, err := src.Lookup(EnvStripeKey)

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "sk_from_env", value)
}

func TestSecrets_KeyringFallback(t *testing.T) {
	keyring.MockInit()
	require.NoError(t, keyring.Set("disparador", EnvLegacyStripeKey, "sk_legacy"))
	t.Setenv(EnvLegacyStripeKey, "")

	src := NewSecrets(SecretsConfig{KeyringService: "disparador"})

	value, ok, err := src.Lookup(EnvLegacyStripeKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "sk_legacy", value)

	_, ok, err = src.Lookup(EnvServiceRoleKey)
	require.NoError(t, err, "keyring.ErrNotFound is plain absence")
	assert.False(t, ok)
}

func TestSecrets_KeyringFailure(t *testing.T) {
	keyring.MockInitWithError(errors.New("dbus unavailable"))
	t.Setenv(EnvStripeKey, "")

	src := NewSecrets(SecretsConfig{KeyringService: "disparador"})
	_, _, err := src.Lookup(EnvStripeKey)

	assert.ErrorContains(t, err, "dbus unavailable")
	assert.Empty(t, MustLookup(src, EnvStripeKey))
}

func TestSecrets_NoKeyringConfigured(t *testing.T) {
	t.Setenv(EnvBackendURL, "")

	src := NewSecrets(SecretsConfig{})
	_, ok, err := src.Lookup(EnvBackendURL)

	assert.NoError(t, err)
	assert.False(t, ok)
}
