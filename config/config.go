package config

import (
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"biketowork/models"
	"biketowork/utils"
)

const (
	AuthProviderClerk = "clerk"
	AuthProviderDev   = "dev"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

type SlackConfig struct {
	AlertWebhookURL string
	RidesWebhookURL string
}

// IsConfigured returns true if any Slack webhook is present
func (c SlackConfig) IsConfigured() bool {
	return c.AlertWebhookURL != "" || c.RidesWebhookURL != ""
}

type ClerkConfig struct {
	SecretKey      string
	PublishableKey string
	SignInURL      string
}

// IsConfigured returns true if all required Clerk configuration is present
func (c ClerkConfig) IsConfigured() bool {
	return c.SecretKey != "" && c.PublishableKey != "" && c.SignInURL != ""
}

// FrontendAPI decodes the Clerk frontend API host embedded in the publishable key,
// e.g. "pk_test_Zm9vLmNsZXJrLmFjY291bnRzLmRldiQ" is "foo.clerk.accounts.dev".
func (c ClerkConfig) FrontendAPI() (string, error) {
	encoded, ok := strings.CutPrefix(c.PublishableKey, "pk_test_")
	if !ok {
		encoded, ok = strings.CutPrefix(c.PublishableKey, "pk_live_")
	}
	if !ok {
		return "", fmt.Errorf("publishable key must start with pk_test_ or pk_live_")
	}

	decoded, err := base64.RawStdEncoding.DecodeString(strings.TrimRight(encoded, "="))
	if err != nil {
		return "", fmt.Errorf("failed to decode publishable key: %w", err)
	}

	host, ok := strings.CutSuffix(string(decoded), "$")
	if !ok || host == "" {
		return "", fmt.Errorf("publishable key does not contain a frontend API host")
	}
	return host, nil
}

// ScriptURL is where the browser loads clerk-js from, which keeps the __session cookie fresh.
func (c ClerkConfig) ScriptURL() (string, error) {
	host, err := c.FrontendAPI()
	if err != nil {
		return "", err
	}
	return "https://" + host + "/npm/@clerk/clerk-js@5/dist/clerk.browser.js", nil
}

type SessionConfig struct {
	Secret string
	TTL    time.Duration
}

// IsConfigured returns true if a signing secret for local sessions is present
func (c SessionConfig) IsConfigured() bool {
	return c.Secret != ""
}

type AppConfig struct {
	// Core configuration (always required)
	DatabaseDriver     string
	DatabaseURL        string
	DatabaseSchema     string
	Port               string // Optional with default "8080"
	PublicURL          string // Optional with default "http://localhost:<port>"
	CORSAllowedOrigins string // Optional with default "*"
	Environment        string
	ServerLogsURL      string
	TimeZone           *time.Location
	AuthProvider       string
	AdminSubjects      []string // "<auth provider>:<subject>", e.g. "clerk:user_2abc"
	UseStrictConfig    bool // If true, error when an optional integration is not fully configured

	// Integration configurations (grouped)
	SlackConfig   SlackConfig
	ClerkConfig   ClerkConfig
	SessionConfig SessionConfig
}

// IsAdmin reports whether the user may use the admin pages.
// Only the provider-issued subject counts; usernames are derived and can be chosen by anyone.
func (c *AppConfig) IsAdmin(user *models.User) bool {
	if user == nil || user.AuthProvider == "" || user.AuthProviderID == "" {
		return false
	}
	subject := user.AuthProvider + ":" + user.AuthProviderID
	for _, admin := range c.AdminSubjects {
		if admin == subject {
			return true
		}
	}
	return false
}

func parseAdminSubjects(list string) ([]string, error) {
	subjects := utils.SplitAndTrim(list)
	for _, subject := range subjects {
		provider, id, ok := strings.Cut(subject, ":")
		if !ok || id == "" || (provider != AuthProviderClerk && provider != AuthProviderDev) {
			return nil, fmt.Errorf("ADMIN_SUBJECTS entry %q must look like <clerk|dev>:<subject>", subject)
		}
	}
	return subjects, nil
}

func LoadConfig() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("⚠️ Could not load .env file, continuing with system env vars")
	}

	databaseURL, err := getEnvRequired("DB_URL")
	if err != nil {
		return nil, err
	}

	databaseDriver := getEnvWithDefault("DB_DRIVER", DriverPostgres)
	if databaseDriver != DriverPostgres && databaseDriver != DriverSQLite {
		return nil, fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, databaseDriver)
	}

	defaultSchema := "public"
	if databaseDriver == DriverSQLite {
		defaultSchema = "main"
	}

	timeZone, err := time.LoadLocation(getEnvWithDefault("TIME_ZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIME_ZONE: %w", err)
	}

	authProvider := getEnvWithDefault("AUTH_PROVIDER", AuthProviderClerk)
	if authProvider != AuthProviderClerk && authProvider != AuthProviderDev {
		return nil, fmt.Errorf("AUTH_PROVIDER must be %q or %q, got %q", AuthProviderClerk, AuthProviderDev, authProvider)
	}

	sessionTTL, err := time.ParseDuration(getEnvWithDefault("SESSION_TTL", "336h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}

	adminSubjects, err := parseAdminSubjects(os.Getenv("ADMIN_SUBJECTS"))
	if err != nil {
		return nil, err
	}

	port := getEnvWithDefault("PORT", "8080")

	config := &AppConfig{
		DatabaseDriver:     databaseDriver,
		DatabaseURL:        databaseURL,
		DatabaseSchema:     getEnvWithDefault("DB_SCHEMA", defaultSchema),
		Port:               port,
		PublicURL:          strings.TrimSuffix(getEnvWithDefault("PUBLIC_URL", "http://localhost:"+port), "/"),
		CORSAllowedOrigins: getEnvWithDefault("CORS_ALLOWED_ORIGINS", "*"),
		Environment:        getEnvWithDefault("ENVIRONMENT", "dev"),
		ServerLogsURL:      getEnvWithDefault("SERVER_LOGS_URL", ""),
		TimeZone:           timeZone,
		AuthProvider:       authProvider,
		AdminSubjects:      adminSubjects,
		UseStrictConfig:    getEnvWithDefault("USE_STRICT_CONFIG", "true") == "true",

		// Slack webhooks (optional)
		SlackConfig: SlackConfig{
			AlertWebhookURL: os.Getenv("SLACK_ALERT_WEBHOOK_URL"),
			RidesWebhookURL: os.Getenv("SLACK_RIDES_WEBHOOK_URL"),
		},

		// Clerk configuration (required when AUTH_PROVIDER=clerk)
		ClerkConfig: ClerkConfig{
			SecretKey:      os.Getenv("CLERK_SECRET_KEY"),
			PublishableKey: os.Getenv("CLERK_PUBLISHABLE_KEY"),
			SignInURL:      os.Getenv("CLERK_SIGN_IN_URL"),
		},

		// Local session configuration (required when AUTH_PROVIDER=dev)
		SessionConfig: SessionConfig{
			Secret: os.Getenv("SESSION_SECRET"),
			TTL:    sessionTTL,
		},
	}

	switch config.AuthProvider {
	case AuthProviderClerk:
		if !config.ClerkConfig.IsConfigured() {
			return nil, fmt.Errorf("clerk authentication requires CLERK_SECRET_KEY, CLERK_PUBLISHABLE_KEY and CLERK_SIGN_IN_URL")
		}
		if _, err := config.ClerkConfig.FrontendAPI(); err != nil {
			return nil, fmt.Errorf("invalid CLERK_PUBLISHABLE_KEY: %w", err)
		}
		log.Printf("✅ Clerk authentication configured")
	case AuthProviderDev:
		if !config.SessionConfig.IsConfigured() {
			return nil, fmt.Errorf("dev authentication requires SESSION_SECRET")
		}
		if config.Environment == "prod" {
			return nil, fmt.Errorf("dev authentication cannot be used with ENVIRONMENT=prod")
		}
		log.Printf("⚠️ Dev authentication enabled - anyone can sign in with any username")
	}

	if config.SlackConfig.IsConfigured() {
		log.Printf("✅ Slack webhooks configured")
	} else {
		log.Printf("⚠️ Slack webhooks not configured - alerts and ride announcements will be disabled")
		if config.UseStrictConfig {
			return nil, fmt.Errorf("slack webhooks are not configured (USE_STRICT_CONFIG=true)")
		}
	}

	if len(config.AdminSubjects) == 0 {
		log.Printf("⚠️ ADMIN_SUBJECTS is empty - admin pages will reject everyone")
	}

	return config, nil
}

func getEnvRequired(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s is not set", key)
	}
	return value, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
