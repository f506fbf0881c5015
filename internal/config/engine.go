package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/sandevgo/venuebot/pkg/log"
)

// EngineConfig configures the OpenAI-compatible reasoning endpoint.
type EngineConfig struct {
	BaseURL string        `env:"VENUEBOT_ENGINE_BASE_URL" envDefault:"https://openrouter.ai/api"`
	APIKey  string        `env:"VENUEBOT_ENGINE_API_KEY,required"`
	Model   string        `env:"VENUEBOT_ENGINE_MODEL" envDefault:"openai/gpt-4o-mini"`
	Timeout time.Duration `env:"VENUEBOT_ENGINE_TIMEOUT" envDefault:"60s"`
}

func GetEngineConfig(ctx context.Context) EngineConfig {
	var cfg EngineConfig
	if err := env.Parse(&cfg); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse engine config")
	}
	return cfg
}
