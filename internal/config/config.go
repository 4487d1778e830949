package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvProduction is the Environment value that switches the service to
// hardened cookie attributes (Secure, SameSite=None).
const EnvProduction = "production"

// ProviderCredentials holds one OAuth provider's client configuration.
type ProviderCredentials struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	Tenant       string `yaml:"tenant,omitempty"`
}

// Configured reports whether the provider has usable credentials.
func (p ProviderCredentials) Configured() bool {
	return p.ClientID != "" && p.ClientSecret != ""
}

// Config holds application configuration
type Config struct {
	DatabaseURL string
	ServerPort  string
	BaseURL     string
	FrontendURL string
	Environment string

	JWTSecret string
	JWTIssuer string

	SessionCookieName string
	SessionTTL        time.Duration

	Google    ProviderCredentials
	Microsoft ProviderCredentials

	AMQPURL string

	EnableHSTS      bool
	ServerDebugMode bool
	OTELEnabled     bool
	OTELEndpoint    string
}

// fileConfig is the optional YAML overlay, used mainly to keep provider
// secrets out of the environment in development.
type fileConfig struct {
	JWTSecret string              `yaml:"jwt_secret"`
	Google    ProviderCredentials `yaml:"google"`
	Microsoft ProviderCredentials `yaml:"microsoft"`
}

// Load loads configuration from environment variables, with an optional
// YAML overlay from the file named by CONFIG_FILE.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		BaseURL:           getEnv("BASE_URL", "http://localhost:8080"),
		FrontendURL:       getEnv("FRONTEND_URL", "http://localhost:3000"),
		Environment:       getEnv("ENVIRONMENT", "development"),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		JWTIssuer:         getEnv("JWT_ISSUER", "identity-api"),
		SessionCookieName: getEnv("SESSION_COOKIE_NAME", "session"),
		SessionTTL:        time.Duration(getEnvInt("SESSION_TTL_HOURS", 24)) * time.Hour,
		Google: ProviderCredentials{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		},
		Microsoft: ProviderCredentials{
			ClientID:     getEnv("MICROSOFT_CLIENT_ID", ""),
			ClientSecret: getEnv("MICROSOFT_CLIENT_SECRET", ""),
			Tenant:       getEnv("MICROSOFT_TENANT", "common"),
		},
		AMQPURL:         getEnv("AMQP_URL", ""),
		EnableHSTS:      getEnvBool("ENABLE_HSTS", false),
		ServerDebugMode: getEnvBool("SERVER_DEBUG_MODE", false),
		OTELEnabled:     getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if path := getEnv("CONFIG_FILE", ""); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

// Production reports whether the deployment should use hardened
// transport settings.
func (c *Config) Production() bool {
	return c.Environment == EnvProduction
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if fc.JWTSecret != "" {
		c.JWTSecret = fc.JWTSecret
	}
	if fc.Google.Configured() {
		c.Google = fc.Google
	}
	if fc.Microsoft.Configured() {
		tenant := fc.Microsoft.Tenant
		if tenant == "" {
			tenant = c.Microsoft.Tenant
		}
		c.Microsoft = fc.Microsoft
		c.Microsoft.Tenant = tenant
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
