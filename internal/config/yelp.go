package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/sandevgo/venuebot/pkg/log"
)

// YelpConfig configures the venue search backend used by the worker.
type YelpConfig struct {
	APIKey  string        `env:"VENUEBOT_YELP_API_KEY,required"`
	BaseURL string        `env:"VENUEBOT_YELP_BASE_URL" envDefault:"https://api.yelp.com/v3"`
	Timeout time.Duration `env:"VENUEBOT_YELP_TIMEOUT" envDefault:"15s"`
}

func GetYelpConfig(ctx context.Context) YelpConfig {
	var cfg YelpConfig
	if err := env.Parse(&cfg); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse yelp config")
	}
	return cfg
}
