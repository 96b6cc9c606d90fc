package model

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, "http://localhost:5000", cfg.Server.BaseURL)
	require.Equal(t, 3, cfg.TypingTimeoutSec)
}

func TestConfigSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	cfg.Server.BaseURL = "https://nexus.example.com"
	cfg.Server.SocketURL = "wss://nexus.example.com/socket"
	cfg.Display.Theme = "dark"
	cfg.TypingTimeoutSec = 7

	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "https://nexus.example.com", loaded.Server.BaseURL)
	require.Equal(t, "wss://nexus.example.com/socket", loaded.Server.SocketURL)
	require.Equal(t, "dark", loaded.Display.Theme)
	require.Equal(t, 7, loaded.TypingTimeoutSec)
	require.Equal(t, cfg.CachePath, loaded.CachePath)
	require.Equal(t, cfg.LogFile, loaded.LogFile)
}
