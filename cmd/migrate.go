package cmd

import (
	"sonique/config"
	"sonique/db"
	"sonique/logger"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		logger.Init(logger.Config{Level: cfg.LogLevel, OutputPath: cfg.LogPath})

		if err := db.ConnectGorm(cfg); err != nil {
			logger.Fatal("connect database", logger.ErrorField(err))
		}
		defer db.CloseGorm()

		if err := db.Migrate(); err != nil {
			logger.Fatal("migrate schema", logger.ErrorField(err))
		}
		logger.Info("schema migrated")
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
