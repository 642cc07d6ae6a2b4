// Package app orchestrates process startup.
package app

import (
	"log/slog"

	"github.com/joho/godotenv"

	"pairs_go/internal/infra"
	"pairs_go/internal/infra/journal"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config  *infra.Config
	Journal *journal.Journal
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization (config, logger, journal)
func (b *Bootstrap) Initialize(configPath string) error {
	// .env is optional; env vars override the YAML either way
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig(configPath)
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	if cfg.Journal.Enabled {
		store, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			return err
		}
		b.Journal = store
		slog.Info("journal initialized",
			slog.String("path", cfg.Journal.Path),
			slog.String("session", store.SessionID()),
		)
	}

	return nil
}
