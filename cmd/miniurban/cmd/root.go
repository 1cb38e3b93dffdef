package cmd

import (
	"fmt"
	"os"

	"miniurban-backend/internal/common/config"
	"miniurban-backend/internal/common/logger"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const serviceName = "miniurban-backend"

var (
	cfg *config.Config
	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "miniurban",
	Short: "MiniUrban authentication and session backend",
	Long: `miniurban serves the Mini App and admin panel authentication API and runs
the Telegram bot that confirms admin deep-link logins.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		log = logger.Init(serviceName, cfg.Debug)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(botCmd)
	rootCmd.AddCommand(initDataCmd)
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
