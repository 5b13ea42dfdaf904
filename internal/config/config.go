package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server  ServerConfig
	MongoDB MongoDBConfig
	Auth    AuthConfig
	Export  ExportConfig
	Sheets  SheetsConfig
	Webhook WebhookConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// MongoDBConfig holds settings for MongoDB. An empty URI switches the
// application into the in-memory mode with limited features.
type MongoDBConfig struct {
	URI     string
	DBName  string
	Timeout time.Duration
}

// AuthConfig holds authentication settings.
type AuthConfig struct {
	TokenSecret   string
	AdminUsername string
	AdminPassword string
}

// ExportConfig holds scheduled export settings. Snapshots are disabled when
// Dir is empty.
type ExportConfig struct {
	CronSchedule string
	Dir          string
}

// SheetsConfig holds the optional Google Sheets export target.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// WebhookConfig holds the optional report-saved notification target.
type WebhookConfig struct {
	URL string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are acceptable when configuration comes from the
		// environment directly.
		_ = godotenv.Load()
	}

	timeoutSeconds, err := strconv.Atoi(getenvWithDefault("MONGODB_TIMEOUT_SECONDS", "10"))
	if err != nil {
		return nil, fmt.Errorf("MONGODB_TIMEOUT_SECONDS must be an integer: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		MongoDB: MongoDBConfig{
			URI:     os.Getenv("MONGODB_URI"),
			DBName:  getenvWithDefault("MONGODB_DB_NAME", "adsc_reports"),
			Timeout: time.Duration(timeoutSeconds) * time.Second,
		},
		Auth: AuthConfig{
			TokenSecret:   os.Getenv("AUTH_TOKEN_SECRET"),
			AdminUsername: getenvWithDefault("ADMIN_USERNAME", "admin"),
			AdminPassword: getenvWithDefault("ADMIN_PASSWORD", "admin123"),
		},
		Export: ExportConfig{
			CronSchedule: getenvWithDefault("EXPORT_CRON_SCHEDULE", "0 21 * * *"),
			Dir:          os.Getenv("EXPORT_DIR"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_EXPORT_ID"),
		},
		Webhook: WebhookConfig{
			URL: os.Getenv("REPORT_WEBHOOK_URL"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.MongoDB.URI != "" && c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must be provided")
	}

	if c.Auth.AdminUsername == "" {
		return errors.New("ADMIN_USERNAME must not be empty")
	}
	if c.Auth.AdminPassword == "" {
		return errors.New("ADMIN_PASSWORD must not be empty")
	}

	if c.Export.Dir != "" && c.Export.CronSchedule == "" {
		return errors.New("EXPORT_CRON_SCHEDULE must be provided when EXPORT_DIR is set")
	}

	// Sheets export needs both halves of its configuration.
	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_EXPORT_ID must be set together")
	}

	return nil
}

// SheetsEnabled reports whether the Google Sheets export target is configured.
func (c *Config) SheetsEnabled() bool {
	return c.Sheets.CredentialsPath != "" && c.Sheets.SpreadsheetID != ""
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
