package config

import (
	"context"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"

	"github.com/sandevgo/venuebot/pkg/log"
)

type RuntimePathConfig struct {
	RuntimePath string `env:"VENUEBOT_RUNTIME_PATH" envDefault:".venuebot"`
}

// GetRuntimePath resolves the runtime directory under the user's home and
// makes sure it exists.
func GetRuntimePath(ctx context.Context) string {
	logger := log.FromCtx(ctx)

	var cfg RuntimePathConfig
	if err := env.Parse(&cfg); err != nil {
		logger.Fatal().Err(err).Msg("failed to parse runtime path config")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to resolve user home directory")
	}

	path := filepath.Join(home, cfg.RuntimePath)
	if err := os.MkdirAll(path, 0o755); err != nil {
		logger.Fatal().Err(err).Msgf("failed to create runtime directory %s", path)
	}

	return path
}

func GetDatabasePath(ctx context.Context) string {
	return filepath.Join(GetRuntimePath(ctx), "venuebot.db")
}

func GetEnvPath(ctx context.Context) string {
	return filepath.Join(GetRuntimePath(ctx), ".env")
}
