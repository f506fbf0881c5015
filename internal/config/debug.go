package config

import "github.com/caarlos0/env/v11"

type DebugConfig struct {
	Debug bool `env:"VENUEBOT_DEBUG" envDefault:"false"`
}

func IsDebugEnabled() bool {
	var cfg DebugConfig
	if err := env.Parse(&cfg); err != nil {
		return false
	}
	return cfg.Debug
}
