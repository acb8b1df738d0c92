package config

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port        string
	Env         string
	DatabaseURL string
	SentryDSN   string
	LogLevel    string
	LogFormat   string

	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// FrontendCallbackURL receives the session after an OAuth callback.
	FrontendCallbackURL string
	BaseURL             string

	GitHub OAuthConfig
	GitLab OAuthConfig
	Google OAuthConfig
	Azure  AzureConfig

	Auth  AuthConfig
	Email EmailAuthConfig
	SMTP  SMTPConfig
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type AzureConfig struct {
	OAuthConfig
	TenantID string
}

// AuthConfig maps provider names to the scopes requested when a sign-in
// names none.
type AuthConfig struct {
	DefaultScopes map[string][]string `yaml:"default_scopes"`
}

type EmailTemplate struct {
	Subject     string `yaml:"subject" json:"subject"`
	From        string `yaml:"from" json:"from"`
	ReplyTo     string `yaml:"reply_to" json:"reply_to,omitempty"`
	Template    string `yaml:"template" json:"template"`
	ButtonText  string `yaml:"button_text" json:"button_text,omitempty"`
	ExpiryHours int    `yaml:"expiry_hours" json:"expiry_hours,omitempty"`
}

type EmailAuthConfig struct {
	RedirectTo         string         `yaml:"redirect_to"`
	Template           *EmailTemplate `yaml:"template"`
	TokenExpiryMinutes int            `yaml:"token_expiry_minutes"`
}

const DefaultTokenExpiryMinutes = 60

// fileConfig is the optional YAML overlay named by AUTH_CONFIG_FILE.
type fileConfig struct {
	Auth  AuthConfig      `yaml:"auth"`
	Email EmailAuthConfig `yaml:"email"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	accessExpiry, err := time.ParseDuration(getEnv("JWT_ACCESS_EXPIRY", "1h"))
	if err != nil {
		accessExpiry = time.Hour
	}

	refreshExpiry, err := time.ParseDuration(getEnv("JWT_REFRESH_EXPIRY", "168h"))
	if err != nil {
		refreshExpiry = 168 * time.Hour
	}

	tokenExpiry, err := strconv.Atoi(getEnv("EMAIL_TOKEN_EXPIRY_MINUTES", "60"))
	if err != nil || tokenExpiry <= 0 {
		tokenExpiry = DefaultTokenExpiryMinutes
	}

	baseURL := getEnv("BASE_URL", "http://localhost:8080")

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		SentryDSN:   getEnv("SENTRY_DSN", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),

		JWTSecret:        getEnvOrPanic("JWT_SECRET"),
		JWTAccessExpiry:  accessExpiry,
		JWTRefreshExpiry: refreshExpiry,

		FrontendCallbackURL: getEnv("FRONTEND_CALLBACK_URL", "http://localhost:3000/auth/callback"),
		BaseURL:             baseURL,

		GitHub: OAuthConfig{
			ClientID:     getEnv("GITHUB_CLIENT_ID", ""),
			ClientSecret: getEnv("GITHUB_CLIENT_SECRET", ""),
			RedirectURL:  getEnv("GITHUB_REDIRECT_URL", baseURL+"/api/v1/auth/oauth/github/callback"),
		},
		GitLab: OAuthConfig{
			ClientID:     getEnv("GITLAB_CLIENT_ID", ""),
			ClientSecret: getEnv("GITLAB_CLIENT_SECRET", ""),
			RedirectURL:  getEnv("GITLAB_REDIRECT_URL", baseURL+"/api/v1/auth/oauth/gitlab/callback"),
		},
		Google: OAuthConfig{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURL:  getEnv("GOOGLE_REDIRECT_URL", baseURL+"/api/v1/auth/oauth/google/callback"),
		},
		Azure: AzureConfig{
			OAuthConfig: OAuthConfig{
				ClientID:     getEnv("AZURE_CLIENT_ID", ""),
				ClientSecret: getEnv("AZURE_CLIENT_SECRET", ""),
				RedirectURL:  getEnv("AZURE_REDIRECT_URL", baseURL+"/api/v1/auth/oauth/azure/callback"),
			},
			TenantID: getEnv("AZURE_TENANT_ID", "common"),
		},

		Auth: AuthConfig{DefaultScopes: map[string][]string{}},
		Email: EmailAuthConfig{
			RedirectTo:         getEnv("EMAIL_REDIRECT_TO", "http://localhost:3000/auth/confirm"),
			TokenExpiryMinutes: tokenExpiry,
		},

		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnv("SMTP_PORT", "587"),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", ""),
		},
	}

	if path := getEnv("AUTH_CONFIG_FILE", ""); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read auth config: %w", err)
		}
		if err := cfg.applyFile(data); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// applyFile overlays the YAML auth config on top of the environment.
func (c *Config) applyFile(data []byte) error {
	var fc fileConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&fc); err != nil {
		return fmt.Errorf("parse auth config: %w", err)
	}

	for provider, scopes := range fc.Auth.DefaultScopes {
		c.Auth.DefaultScopes[provider] = scopes
	}
	if fc.Email.RedirectTo != "" {
		c.Email.RedirectTo = fc.Email.RedirectTo
	}
	if fc.Email.Template != nil {
		c.Email.Template = fc.Email.Template
	}
	if fc.Email.TokenExpiryMinutes > 0 {
		c.Email.TokenExpiryMinutes = fc.Email.TokenExpiryMinutes
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvOrPanic(key string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		panic("required environment variable not set: " + key)
	}
	return value
}
