package main

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/sandevgo/venuebot/internal/config"
	"github.com/sandevgo/venuebot/internal/providers/yelp"
	"github.com/sandevgo/venuebot/internal/worker"
	"github.com/sandevgo/venuebot/pkg/log"
)

var workerCmd = &cobra.Command{
	Use:    "worker",
	Short:  "Run the tool worker process",
	Long:   `Runs the tool execution worker that the orchestrator launches as a subprocess. Speaks the tool protocol on stdin/stdout.`,
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		// stdout belongs to the protocol; logs must go to stderr
		var flushLog func()
		ctx, flushLog = log.NewContextWithLoggerOutput(ctx, debug || config.IsDebugEnabled(), os.Stderr)
		defer flushLog()

		if err := initEnv(ctx, config.GetRuntimePath(ctx)); err != nil {
			log.FromCtx(ctx).Fatal().Err(err).Msg("failed to init env")
		}

		venues := yelp.NewClient(config.GetYelpConfig(ctx))
		return worker.NewServer(venues).Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
