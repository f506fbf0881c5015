package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/sandevgo/venuebot/pkg/log"
)

// AppConfig holds the session orchestration knobs.
type AppConfig struct {
	// ContextBudgetTokens is the estimated-size threshold that triggers
	// log compaction.
	ContextBudgetTokens int `env:"VENUEBOT_CONTEXT_BUDGET_TOKENS" envDefault:"6000"`

	// CompactKeepRecent is how many trailing events every compaction keeps
	// verbatim for short-term continuity.
	CompactKeepRecent int `env:"VENUEBOT_COMPACT_KEEP_RECENT" envDefault:"4"`

	// IdleSessionTimeout closes sessions with no user activity.
	IdleSessionTimeout time.Duration `env:"VENUEBOT_IDLE_SESSION_TIMEOUT" envDefault:"15m"`

	// MemoryRecallLimit caps how many memory records are recalled into a
	// new session.
	MemoryRecallLimit int `env:"VENUEBOT_MEMORY_RECALL_LIMIT" envDefault:"5"`

	// MaxToolRounds bounds tool-call round-trips within a single user turn.
	MaxToolRounds int `env:"VENUEBOT_MAX_TOOL_ROUNDS" envDefault:"6"`
}

func GetAppConfig(ctx context.Context) AppConfig {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse app config")
	}
	return cfg
}
