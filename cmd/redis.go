package cmd

import (
	"context"
	"time"

	"sonique/cache"
	"sonique/config"
	"sonique/logger"

	"github.com/spf13/cobra"
)

var redisCmd = &cobra.Command{
	Use:   "redis",
	Short: "Check the Redis connection",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		logger.Init(logger.Config{Level: cfg.LogLevel, OutputPath: cfg.LogPath})

		if err := cache.Connect(cfg); err != nil {
			logger.Fatal("connect redis", logger.ErrorField(err))
		}
		defer cache.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := cache.Ping(ctx); err != nil {
			logger.Fatal("redis ping", logger.ErrorField(err))
		}
		logger.Info("redis connection ok")
	},
}

func init() {
	rootCmd.AddCommand(redisCmd)
}
