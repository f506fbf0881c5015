package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/sandevgo/venuebot/pkg/log"
)

// DispatcherConfig bounds tool execution: per-attempt timeout, total attempt
// count for retryable failures, backoff shape, and in-flight concurrency.
type DispatcherConfig struct {
	RequestTimeout time.Duration `env:"VENUEBOT_TOOL_REQUEST_TIMEOUT" envDefault:"30s"`
	MaxAttempts    int           `env:"VENUEBOT_TOOL_MAX_ATTEMPTS" envDefault:"3"`
	BackoffBase    time.Duration `env:"VENUEBOT_TOOL_BACKOFF_BASE" envDefault:"500ms"`
	BackoffCap     time.Duration `env:"VENUEBOT_TOOL_BACKOFF_CAP" envDefault:"8s"`
	Concurrency    int64         `env:"VENUEBOT_TOOL_CONCURRENCY" envDefault:"4"`
}

func GetDispatcherConfig(ctx context.Context) DispatcherConfig {
	var cfg DispatcherConfig
	if err := env.Parse(&cfg); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse dispatcher config")
	}
	return cfg
}
