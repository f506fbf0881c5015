package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/sandevgo/venuebot/internal/config"
	"github.com/sandevgo/venuebot/internal/dispatch"
	"github.com/sandevgo/venuebot/internal/memory"
	"github.com/sandevgo/venuebot/internal/providers/engine"
	"github.com/sandevgo/venuebot/internal/providers/mcp"
	"github.com/sandevgo/venuebot/internal/session"
	"github.com/sandevgo/venuebot/internal/storage/sqlite"
	"github.com/sandevgo/venuebot/internal/transport/cli"
	"github.com/sandevgo/venuebot/pkg/log"
	"github.com/sandevgo/venuebot/pkg/srv"
)

func NewServices(ctx context.Context, stop func()) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	runtimePath := config.GetRuntimePath(ctx)
	if err := initEnv(ctx, runtimePath); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.GetAppConfig(ctx)
	engineCfg := config.GetEngineConfig(ctx)
	dispatchCfg := config.GetDispatcherConfig(ctx)

	// 2. Storage and memory
	db, err := sqlite.NewDB(ctx, config.GetDatabasePath(ctx))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	services = append(services, srv.NewCleanup(db.Close))

	memoryStore := memory.NewStore(sqlite.NewMemoriesRepo(db))

	// 3. Reasoning engine
	eng := engine.NewOpenAICompatible(engineCfg)

	// 4. Tool worker: this same binary, launched as a subprocess
	executable, err := os.Executable()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to resolve own executable")
	}
	worker, err := mcp.Dial(ctx, executable, "worker")
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to start tool worker")
	}
	services = append(services, srv.NewCleanup(worker.Close))

	tools, err := worker.ListTools(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to list worker tools")
	}

	// 5. Dispatcher
	dispatcher := dispatch.New(worker, dispatchCfg)

	// 6. Session manager
	manager := session.NewManager(session.Config{
		Engine:        eng,
		Dispatcher:    dispatcher,
		Memory:        memoryStore,
		Tools:         tools,
		Compactor:     session.NewCompactor(eng, appCfg.ContextBudgetTokens, appCfg.CompactKeepRecent),
		RecallLimit:   appCfg.MemoryRecallLimit,
		MaxToolRounds: appCfg.MaxToolRounds,
	}, appCfg.IdleSessionTimeout)
	services = append(services, manager)

	// 7. Chat transport
	chat, err := cli.NewReadLine(manager, runtimePath, stop)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize chat")
	}
	services = append(services, chat)

	return services
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
