package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/sandevgo/venuebot/internal/config"
	"github.com/sandevgo/venuebot/pkg/log"
)

var (
	debug bool
)

var rootCmd = &cobra.Command{
	Use:   "venuebot",
	Short: "VenueBot — a venue recommendation agent",
	Long:  `VenueBot recommends restaurants, cafes and bars through a tool-using conversational agent.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", config.IsDebugEnabled(), "enable debug logging")
}

func setupLogger(ctx context.Context) (context.Context, func()) {
	isDebug := debug || config.IsDebugEnabled()
	return log.NewContextWithLogger(ctx, isDebug)
}
