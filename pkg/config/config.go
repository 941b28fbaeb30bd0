package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables that override the file settings.
const (
	EnvAPIKey   = "EKISPERT_API_KEY"
	EnvDelay    = "EKIROUTE_DELAY_MS"
	EnvProxyURL = "EKIROUTE_PROXY_URL"
	EnvAddr     = "EKIROUTE_ADDR"
)

// DefaultDelayMillis is used when no delay is configured anywhere.
const DefaultDelayMillis = 300

// DefaultListenAddr is where the proxy server listens by default.
const DefaultListenAddr = ":8080"

// AppConfig holds all user-defined persistent settings
type AppConfig struct {
	APIKey             string `json:"api_key,omitempty"`
	RequestDelayMillis *int   `json:"request_delay_ms,omitempty"`
	ProxyURL           string `json:"proxy_url,omitempty"`
	ListenAddr         string `json:"listen_addr,omitempty"`
	AccentColor        string `json:"accent_color,omitempty"`
	LastInputPath      string `json:"last_input_path,omitempty"`
}

// getConfigPath returns the absolute path to ~/.ekiroute.json
func getConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".ekiroute.json"), nil
}

// Load reads the application configuration from disk.
// Returns an empty struct if the file does not exist.
func Load() (*AppConfig, error) {
	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &AppConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Save writes the application configuration back to disk. The file holds the
// API key, so it is only readable by the owner.
func Save(cfg *AppConfig) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadDotEnv loads a .env file from the working directory if there is one.
// Variables already set in the environment win.
func LoadDotEnv() error {
	err := godotenv.Load()
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

// ApplyEnv overrides file settings with non-empty environment variables.
func (c *AppConfig) ApplyEnv() error {
	if v := strings.TrimSpace(os.Getenv(EnvAPIKey)); v != "" {
		c.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvProxyURL)); v != "" {
		c.ProxyURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAddr)); v != "" {
		c.ListenAddr = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDelay)); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms < 0 {
			return fmt.Errorf("%s must be a non-negative integer, got %q", EnvDelay, v)
		}
		c.RequestDelayMillis = &ms
	}
	return nil
}

// RequestDelay is the pause between provider queries.
func (c *AppConfig) RequestDelay() time.Duration {
	if c.RequestDelayMillis == nil {
		return DefaultDelayMillis * time.Millisecond
	}
	return time.Duration(*c.RequestDelayMillis) * time.Millisecond
}

// Addr is the listen address of the proxy server.
func (c *AppConfig) Addr() string {
	if c.ListenAddr == "" {
		return DefaultListenAddr
	}
	return c.ListenAddr
}

// Resolve loads .env, the config file and the environment, in that order of
// increasing precedence. Command-line flags are applied by the caller.
func Resolve() (*AppConfig, error) {
	if err := LoadDotEnv(); err != nil {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}
