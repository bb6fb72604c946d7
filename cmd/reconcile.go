package cmd

import (
	"context"
	"time"

	"sonique/config"
	"sonique/db"
	"sonique/logger"
	"sonique/repository"

	"github.com/spf13/cobra"
)

// The like counters on songs and albums are denormalized from the edge
// tables. They only drift if rows are changed outside the API; this
// command recomputes them from scratch.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Rebuild the denormalized like counters from the edge tables",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		logger.Init(logger.Config{Level: cfg.LogLevel, OutputPath: cfg.LogPath})

		if err := db.Connect(cfg); err != nil {
			logger.Fatal("connect database", logger.ErrorField(err))
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		socialRepo := repository.NewMySQLSocialRepository(db.DB)
		songs, albums, err := socialRepo.RebuildLikeCounters(ctx)
		if err != nil {
			logger.Fatal("rebuild like counters", logger.ErrorField(err))
		}
		logger.Info("like counters rebuilt",
			logger.Int64("songsUpdated", songs), logger.Int64("albumsUpdated", albums))
	},
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
}
