package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string // development, production

	// Database
	DatabaseURL string

	// Storage
	UploadDir       string
	ReportsDir      string
	MaxUploadSizeMB int

	// SMTP
	SMTPHost         string
	SMTPPort         int
	SMTPUser         string
	SMTPPass         string
	SMTPFromEmail    string
	SMTPFromName     string
	DestinationEmail string
}

func Load() (*Config, error) {
	// Load .env file if it exists (don't error if missing)
	_ = godotenv.Load()

	cfg := &Config{}

	// Define flags with env var fallbacks
	flag.StringVar(&cfg.Port, "port", getEnv("PORT", "8080"), "Server port")
	flag.StringVar(&cfg.Env, "env", getEnv("ENV", "development"), "Environment (development, production)")
	flag.StringVar(&cfg.DatabaseURL, "database-url", getEnv("DATABASE_URL", "data/salesreport.db"), "SQLite database path")
	flag.StringVar(&cfg.UploadDir, "upload-dir", getEnv("UPLOAD_DIR", "uploads"), "Directory for uploaded files")
	flag.StringVar(&cfg.ReportsDir, "reports-dir", getEnv("REPORTS_DIR", "reports"), "Directory for generated reports")

	cfg.MaxUploadSizeMB = getEnvInt("MAX_UPLOAD_SIZE_MB", 50)
	cfg.SMTPHost = getEnv("SMTP_HOST", "")
	cfg.SMTPPort = getEnvInt("SMTP_PORT", 587)
	cfg.SMTPUser = getEnv("SMTP_USER", "")
	cfg.SMTPPass = getEnv("SMTP_PASS", "")
	cfg.SMTPFromEmail = getEnv("SMTP_FROM_EMAIL", "")
	cfg.SMTPFromName = getEnv("SMTP_FROM_NAME", "Sales Reporter")
	cfg.DestinationEmail = getEnv("DESTINATION_EMAIL", "")

	flag.Parse()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.UploadDir == "" || c.ReportsDir == "" {
		return fmt.Errorf("UPLOAD_DIR and REPORTS_DIR must not be empty")
	}
	if c.MaxUploadSizeMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE_MB must be positive")
	}
	// Without SMTP the mailer logs to stdout, but a host with no recipient can never deliver.
	if c.SMTPHost != "" && c.DestinationEmail == "" {
		return fmt.Errorf("DESTINATION_EMAIL is required when SMTP_HOST is set")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
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

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}
