// Package config provides YAML-based configuration for the status backend.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig represents the root configuration structure
type AppConfig struct {
	// Server configuration
	Server ServerConfig `yaml:"server"`

	// Status file watching
	Status StatusConfig `yaml:"status"`

	// Journal tailing and event storage
	Journal JournalConfig `yaml:"journal"`

	// Inara market-data client
	Inara InaraConfig `yaml:"inara"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int    `yaml:"port"`
	BindAddress  string `yaml:"bind_address"`
	EnableCORS   bool   `yaml:"enable_cors"`
	AllowOrigins string `yaml:"allow_origins"`
	APIToken     string `yaml:"api_token"`
	ReadTimeout  int    `yaml:"read_timeout_seconds"`
	WriteTimeout int    `yaml:"write_timeout_seconds"`
	IdleTimeout  int    `yaml:"idle_timeout_seconds"`
	BodyLimit    string `yaml:"body_limit"`
}

// StatusConfig contains status/cargo file settings
type StatusConfig struct {
	Dir              string `yaml:"dir"` // empty: discover the save directory
	File             string `yaml:"file"`
	CargoFile        string `yaml:"cargo_file"`
	PollIntervalMS   int    `yaml:"poll_interval_ms"`
	ReadRetries      int    `yaml:"read_retries"`
	ReadRetryDelayMS int    `yaml:"read_retry_delay_ms"`
}

// JournalConfig contains journal tailing settings
type JournalConfig struct {
	Enabled        bool   `yaml:"enabled"`
	Dir            string `yaml:"dir"` // empty: same as status dir
	Pattern        string `yaml:"pattern"`
	PollIntervalMS int    `yaml:"poll_interval_ms"`
	DBPath         string `yaml:"db_path"`
}

// InaraConfig contains Inara API client settings
type InaraConfig struct {
	Enabled                bool    `yaml:"enabled"`
	APIKey                 string  `yaml:"api_key"`
	AppName                string  `yaml:"app_name"`
	AppVersion             string  `yaml:"app_version"`
	APIURL                 string  `yaml:"api_url"`
	CommanderName          string  `yaml:"commander_name"`
	TimeoutSeconds         int     `yaml:"timeout_seconds"`
	MaxRetries             int     `yaml:"max_retries"`
	RetryDelayMS           int     `yaml:"retry_delay_ms"`
	BackoffFactor          float64 `yaml:"backoff_factor"`
	RateLimitRequests      int     `yaml:"rate_limit_requests"`
	RateLimitWindowSeconds int     `yaml:"rate_limit_window_seconds"`
	CacheTTLSeconds        int     `yaml:"cache_ttl_seconds"`
	UseMock                bool    `yaml:"use_mock"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         8000,
			BindAddress:  "0.0.0.0",
			EnableCORS:   true,
			AllowOrigins: "*",
			APIToken:     "",
			ReadTimeout:  30,
			WriteTimeout: 30,
			IdleTimeout:  120,
			BodyLimit:    "1M",
		},
		Status: StatusConfig{
			Dir:              "",
			File:             "Status.json",
			CargoFile:        "Cargo.json",
			PollIntervalMS:   2000,
			ReadRetries:      3,
			ReadRetryDelayMS: 50,
		},
		Journal: JournalConfig{
			Enabled:        true,
			Dir:            "",
			Pattern:        "Journal.*.log",
			PollIntervalMS: 2000,
			DBPath:         "./data/journal.duckdb",
		},
		Inara: InaraConfig{
			Enabled:                true,
			APIKey:                 "",
			AppName:                "EliteStatusCheck",
			AppVersion:             "1.1.0",
			APIURL:                 "https://inara.cz/inapi/v1/",
			CommanderName:          "",
			TimeoutSeconds:         30,
			MaxRetries:             3,
			RetryDelayMS:           1000,
			BackoffFactor:          2.0,
			RateLimitRequests:      100,
			RateLimitWindowSeconds: 3600,
			CacheTTLSeconds:        300,
			UseMock:                false,
		},
	}
}

// LoadConfig loads configuration from a YAML file, creating it with
// defaults when missing. Environment overrides apply on top.
func LoadConfig(configPath string) (*AppConfig, error) {
	var config *AppConfig

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config = DefaultConfig()
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		config = DefaultConfig()
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	config.applyEnvironmentOverrides()
	config.resolvePaths(filepath.Dir(configPath))

	return config, nil
}

// Save writes the configuration to a YAML file
func (c *AppConfig) Save(configPath string) error {
	output, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte("# Elite Status Check configuration\n# This file is auto-generated on first run\n\n")
	content := append(header, output...)

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	if host := os.Getenv("ELITE_HOST"); host != "" {
		c.Server.BindAddress = host
	}
	if port := os.Getenv("ELITE_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}
	if token := os.Getenv("ELITE_API_TOKEN"); token != "" {
		c.Server.APIToken = token
	}
	if dir := os.Getenv("ELITE_STATUS_PATH"); dir != "" {
		c.Status.Dir = dir
	}
	if dir := os.Getenv("ELITE_JOURNAL_PATH"); dir != "" {
		c.Journal.Dir = dir
	}
	if key := os.Getenv("INARA_API_KEY"); key != "" {
		c.Inara.APIKey = key
	}
	if url := os.Getenv("INARA_API_URL"); url != "" {
		c.Inara.APIURL = url
	}
	if name := os.Getenv("INARA_COMMANDER_NAME"); name != "" {
		c.Inara.CommanderName = name
	}
	if mock := os.Getenv("INARA_USE_MOCK"); mock != "" {
		if b, err := strconv.ParseBool(mock); err == nil {
			c.Inara.UseMock = b
		}
	}
}

// resolvePaths fills in discovered directories and makes relative paths
// absolute based on the config file location
func (c *AppConfig) resolvePaths(configDir string) {
	if c.Status.Dir == "" {
		c.Status.Dir = DiscoverSaveDir()
	}
	if c.Journal.Dir == "" {
		c.Journal.Dir = c.Status.Dir
	}
	if c.Journal.DBPath != "" && !filepath.IsAbs(c.Journal.DBPath) {
		c.Journal.DBPath = filepath.Join(configDir, c.Journal.DBPath)
	}
}

// DiscoverSaveDir returns the platform's default save directory for the
// game's status files. ELITE_STATUS_PATH wins when set. Existence is not
// checked here; the watcher reports an unavailable path.
func DiscoverSaveDir() string {
	if p := os.Getenv("ELITE_STATUS_PATH"); p != "" {
		return p
	}

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	if runtime.GOOS == "windows" {
		return filepath.Join(home, "Saved Games", "Frontier Developments", "Elite Dangerous")
	}

	// Steam Proton prefix on Linux.
	return filepath.Join(home, ".steam", "steam", "steamapps", "compatdata", "359320",
		"pfx", "drive_c", "users", "steamuser", "Saved Games", "Frontier Developments", "Elite Dangerous")
}

// StatusFilePath returns the absolute path of the watched status file
func (c *AppConfig) StatusFilePath() string {
	return filepath.Join(c.Status.Dir, c.Status.File)
}

// CargoFilePath returns the absolute path of the cargo manifest
func (c *AppConfig) CargoFilePath() string {
	return filepath.Join(c.Status.Dir, c.Status.CargoFile)
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// StatusPollInterval returns the watch poll fallback interval
func (c *AppConfig) StatusPollInterval() time.Duration {
	return time.Duration(c.Status.PollIntervalMS) * time.Millisecond
}

// ReadRetryDelay returns the delay between status file read retries
func (c *AppConfig) ReadRetryDelay() time.Duration {
	return time.Duration(c.Status.ReadRetryDelayMS) * time.Millisecond
}

// JournalPollInterval returns the journal scan interval
func (c *AppConfig) JournalPollInterval() time.Duration {
	return time.Duration(c.Journal.PollIntervalMS) * time.Millisecond
}

// InaraTimeout returns the Inara HTTP timeout
func (c *AppConfig) InaraTimeout() time.Duration {
	return time.Duration(c.Inara.TimeoutSeconds) * time.Second
}

// InaraRetryDelay returns the base delay between Inara retries
func (c *AppConfig) InaraRetryDelay() time.Duration {
	return time.Duration(c.Inara.RetryDelayMS) * time.Millisecond
}

// InaraRateLimitWindow returns the sliding rate-limit window
func (c *AppConfig) InaraRateLimitWindow() time.Duration {
	return time.Duration(c.Inara.RateLimitWindowSeconds) * time.Second
}

// InaraCacheTTL returns the response cache lifetime
func (c *AppConfig) InaraCacheTTL() time.Duration {
	return time.Duration(c.Inara.CacheTTLSeconds) * time.Second
}

// EnsureDirectories creates all necessary directories
func (c *AppConfig) EnsureDirectories() error {
	if c.Journal.Enabled && c.Journal.DBPath != "" {
		dir := filepath.Dir(c.Journal.DBPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
