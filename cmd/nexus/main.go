// Command nexus is a terminal client for the Nexus collaboration
// backend: a kanban board with optimistic drag-and-drop and a realtime
// chat panel, sharing one websocket push channel.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/api"
	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/app"
	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/model"
	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/push"
	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/store"
)

func main() {
	configPath := flag.String("config", model.DefaultConfigPath(), "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "nexus:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return err
	}

	// First run: persist the defaults so the user has a file to edit.
	if _, statErr := os.Stat(configPath); os.IsNotExist(statErr) {
		if err := model.SaveConfig(configPath, cfg); err != nil {
			return fmt.Errorf("writing default config: %w", err)
		}
	}

	log, closeLog, err := newLogger(cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	if err := os.MkdirAll(filepath.Dir(cfg.CachePath), 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	cache, err := store.NewSQLiteStore(cfg.CachePath)
	if err != nil {
		return fmt.Errorf("opening cache: %w", err)
	}
	defer cache.Close()

	client := api.NewClient(cfg.Server.BaseURL, "")

	socketURL := cfg.Server.SocketURL
	if socketURL == "" {
		socketURL = push.DeriveSocketURL(cfg.Server.BaseURL)
	}

	typingTTL := time.Duration(cfg.TypingTimeoutSec) * time.Second

	root := app.New(client, cache, socketURL, typingTTL, log)
	p := tea.NewProgram(root, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running ui: %w", err)
	}
	return nil
}

// newLogger writes diagnostics to a file; stdout belongs to the TUI.
func newLogger(path string) (*logrus.Logger, func(), error) {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	log.SetOutput(f)

	return log, func() { _ = f.Close() }, nil
}
