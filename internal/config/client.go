package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const defaultServerURL = "http://localhost:8080"

// ClientConfig configures the reporter command line client.
type ClientConfig struct {
	ServerURL string `toml:"server_url"`
	LogLevel  string `toml:"log_level"`
}

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// DefaultClientConfigPath returns the default TOML config path for the client.
func DefaultClientConfigPath() string {
	return filepath.Join(XDGConfigHome(), "salesreport", "client.toml")
}

// LoadClient reads the client config from path and applies environment
// overrides. A missing file is not an error.
func LoadClient(path string) (ClientConfig, error) {
	// Load .env file if it exists (don't error if missing)
	_ = godotenv.Load()

	cfg := ClientConfig{ServerURL: defaultServerURL, LogLevel: "warn"}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return ClientConfig{}, fmt.Errorf("failed to decode config: %w", err)
			}
		} else if !os.IsNotExist(err) {
			return ClientConfig{}, fmt.Errorf("failed to stat config: %w", err)
		}
	}

	if v := os.Getenv("REPORTER_SERVER_URL"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv("REPORTER_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if cfg.ServerURL == "" {
		cfg.ServerURL = defaultServerURL
	}
	return cfg, nil
}
