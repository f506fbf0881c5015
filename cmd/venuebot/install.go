package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sandevgo/venuebot/internal/config"
	"github.com/sandevgo/venuebot/internal/service/installer"
	"github.com/sandevgo/venuebot/pkg/log"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive first-run configuration",
	Long:  `Walks through API keys and model selection, then writes the configuration to the runtime directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		envPath := config.GetEnvPath(ctx)
		if _, err := installer.RunWizard(envPath); err != nil {
			return err
		}

		log.FromCtx(ctx).Info().Str("path", envPath).Msg("configuration written")
		fmt.Println("Setup complete. Run 'venuebot start' to chat.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(setupCmd)
}
