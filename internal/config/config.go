package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	WhatsApp WhatsAppConfig
	Storage  StorageConfig
	Backend  BackendConfig
	Billing  BillingConfig
	Campaign CampaignConfig
	Locale   LocaleConfig
	Secrets  SecretsConfig
	LogLevel string
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Host string
}

// WhatsAppConfig holds WhatsApp configuration
type WhatsAppConfig struct {
	DBPath             string
	LogLevel           string
	DefaultCountryCode string
}

// StorageConfig holds the application database settings
type StorageConfig struct {
	DBPath     string
	HandoffTTL time.Duration
}

// BackendConfig holds the identity backend settings.
// The service role key is a secret and is read through SecretSource.
type BackendConfig struct {
	URL             string
	IdentityTimeout time.Duration
}

// BillingConfig holds billing provider settings
type BillingConfig struct {
	APIURL    string
	ReturnURL string
	Timeout   time.Duration
}

// CampaignConfig holds campaign delivery settings
type CampaignConfig struct {
	MaxMessagesPerSecond int
}

// LocaleConfig holds localization settings.
// Languages is ordered by preference; the first entry is the default.
type LocaleConfig struct {
	Languages []string
}

// SecretsConfig holds secret lookup settings
type SecretsConfig struct {
	KeyringService string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Host: getEnv("HOST", "0.0.0.0"),
		},
		WhatsApp: WhatsAppConfig{
			DBPath:             getEnv("WA_DB_PATH", "./db/whatsmeow.db"),
			LogLevel:           getEnv("WA_LOG_LEVEL", "INFO"),
			DefaultCountryCode: getEnv("DEFAULT_COUNTRY_CODE", "55"),
		},
		Storage: StorageConfig{
			DBPath:     getEnv("APP_DB_PATH", "./db/app.db"),
			HandoffTTL: parseDuration(getEnv("HANDOFF_TTL", "30m"), 30*time.Minute),
		},
		Backend: BackendConfig{
			URL:             getEnv(EnvBackendURL, ""),
			IdentityTimeout: parseDuration(getEnv("IDENTITY_TIMEOUT", "10s"), 10*time.Second),
		},
		Billing: BillingConfig{
			APIURL:    getEnv("STRIPE_API_URL", "https://api.stripe.com"),
			ReturnURL: getEnv("BILLING_RETURN_URL", "http://localhost:8080/dashboard"),
			Timeout:   parseDuration(getEnv("BILLING_TIMEOUT", "15s"), 15*time.Second),
		},
		Campaign: CampaignConfig{
			MaxMessagesPerSecond: parseInt(getEnv("MAX_MESSAGES_PER_SECOND", "5"), 5),
		},
		Locale: LocaleConfig{
			Languages: parseStringList(getEnv("LANGUAGES", "pt-BR,en")),
		},
		Secrets: SecretsConfig{
			KeyringService: getEnv("KEYRING_SERVICE", ""),
		},
		LogLevel: getEnv("LOG_LEVEL", "INFO"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects configurations the service cannot run with
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.Campaign.MaxMessagesPerSecond <= 0 {
		return fmt.Errorf("MAX_MESSAGES_PER_SECOND must be positive, got %d", c.Campaign.MaxMessagesPerSecond)
	}
	if len(c.Locale.Languages) == 0 {
		return fmt.Errorf("LANGUAGES must name at least one language")
	}
	if c.Storage.HandoffTTL <= 0 {
		return fmt.Errorf("HANDOFF_TTL must be positive")
	}
	return nil
}

// Addr returns the listen address of the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// parseInt parses string to int with default value
func parseInt(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

// parseDuration parses string to time.Duration with default value
func parseDuration(value string, defaultValue time.Duration) time.Duration {
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}

// parseStringList parses comma-separated string to slice
func parseStringList(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
