package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ServerConfig holds the endpoints of the collaboration backend.
type ServerConfig struct {
	// BaseURL is the root URL of the REST API.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// SocketURL is the websocket endpoint for push events. When empty
	// it is derived from BaseURL at connect time.
	SocketURL string `mapstructure:"socket_url" yaml:"socket_url"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`

	// LogFile is where diagnostics are written; the TUI owns stdout.
	LogFile string `mapstructure:"log_file" yaml:"log_file"`

	// CachePath is the sqlite file used for the offline cache.
	CachePath string `mapstructure:"cache_path" yaml:"cache_path"`

	// TypingTimeoutSec is how long a typing indicator stays visible
	// after the last userTyping event.
	TypingTimeoutSec int `mapstructure:"typing_timeout_sec" yaml:"typing_timeout_sec"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/nexus/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "nexus", "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	home, _ := os.UserHomeDir()
	base := filepath.Join(home, ".config", "nexus")
	return &AppConfig{
		Server: ServerConfig{
			BaseURL: "http://localhost:5000",
		},
		Display: DisplayConfig{
			Theme: "default",
		},
		LogFile:          filepath.Join(base, "nexus.log"),
		CachePath:        filepath.Join(base, "cache.db"),
		TypingTimeoutSec: 3,
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	defaults := defaultAppConfig()
	v.SetDefault("server.base_url", defaults.Server.BaseURL)
	v.SetDefault("display.theme", defaults.Display.Theme)
	v.SetDefault("log_file", defaults.LogFile)
	v.SetDefault("cache_path", defaults.CachePath)
	v.SetDefault("typing_timeout_sec", defaults.TypingTimeoutSec)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaults, nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("server.base_url", cfg.Server.BaseURL)
	v.Set("server.socket_url", cfg.Server.SocketURL)
	v.Set("display.theme", cfg.Display.Theme)
	v.Set("log_file", cfg.LogFile)
	v.Set("cache_path", cfg.CachePath)
	v.Set("typing_timeout_sec", cfg.TypingTimeoutSec)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
