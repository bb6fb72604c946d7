package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sonique/cache"
	"sonique/config"
	"sonique/core/discover"
	"sonique/core/social"
	"sonique/core/stats"
	"sonique/db"
	"sonique/email"
	"sonique/logger"
	"sonique/model"
	"sonique/repository"
	"sonique/storage"

	"github.com/gorilla/mux"
)

// Start wires the whole service and runs the HTTP server until SIGINT or
// SIGTERM.
func Start() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, OutputPath: cfg.LogPath})

	if err := storage.InitMinio(cfg); err != nil {
		logger.Fatal("init minio", logger.ErrorField(err))
	}
	if err := db.Connect(cfg); err != nil {
		logger.Fatal("connect database", logger.ErrorField(err))
	}
	defer db.Close()

	if err := cache.Connect(cfg); err != nil {
		logger.Fatal("connect redis", logger.ErrorField(err))
	}
	defer cache.Close()

	userRepo := repository.NewMySQLUserRepository(db.DB)
	artistRepo := repository.NewMySQLArtistRepository(db.DB)
	albumRepo := repository.NewMySQLAlbumRepository(db.DB)
	songRepo := repository.NewMySQLSongRepository(db.DB)
	streamRepo := repository.NewMySQLStreamRepository(db.DB)
	playlistRepo := repository.NewMySQLPlaylistRepository(db.DB)
	socialRepo := repository.NewMySQLSocialRepository(db.DB)

	statsService := stats.NewService(userRepo, streamRepo, songRepo, artistRepo)
	socialMutator := social.NewMutator(socialRepo, userRepo, songRepo, albumRepo, artistRepo)
	recommender := discover.NewRecommender(userRepo, songRepo, streamRepo)
	searcher := discover.NewSearcher(artistRepo, albumRepo, songRepo)
	mailer := email.NewSMTPMailer(cfg)

	h := NewAPIHandler(cfg, userRepo, artistRepo, albumRepo, songRepo, streamRepo,
		playlistRepo, statsService, socialMutator, recommender, searcher, mailer)

	router := mux.NewRouter()
	router.Use(corsMiddleware)

	// Auth
	router.HandleFunc("/api/auth/register", h.RegisterHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/login", h.LoginHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/forgot-password", h.ForgotPasswordHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/reset-password", h.ResetPasswordHandler).Methods(http.MethodPost)

	// Users
	router.HandleFunc("/api/users", h.AuthMiddleware(h.RequireRole(model.RoleAdmin, h.ListUsersHandler))).Methods(http.MethodGet)
	router.HandleFunc("/api/users/{id}", h.AuthMiddleware(h.GetUserHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/users/{id}", h.AuthMiddleware(h.UpdateUserHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/users/{id}", h.AuthMiddleware(h.DeleteUserHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/me/songs", h.AuthMiddleware(h.LikedSongsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/me/albums", h.AuthMiddleware(h.LikedAlbumsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/me/artists", h.AuthMiddleware(h.FollowedArtistsHandler)).Methods(http.MethodGet)

	// Artists
	router.HandleFunc("/api/artists", h.ListArtistsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/artists/{id}", h.GetArtistHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/artists/{id}", h.AuthMiddleware(h.UpdateArtistHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/artists/{id}", h.AuthMiddleware(h.DeleteArtistHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/artists/{id}/follow", h.AuthMiddleware(h.FollowArtistHandler)).Methods(http.MethodPost)

	// Albums
	router.HandleFunc("/api/albums", h.ListAlbumsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/albums", h.AuthMiddleware(h.RequireRole(model.RoleArtist, h.CreateAlbumHandler))).Methods(http.MethodPost)
	router.HandleFunc("/api/albums/{id}", h.GetAlbumHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/albums/{id}", h.AuthMiddleware(h.UpdateAlbumHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/albums/{id}", h.AuthMiddleware(h.DeleteAlbumHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/albums/{id}/like", h.AuthMiddleware(h.LikeAlbumHandler)).Methods(http.MethodPost)

	// Songs
	router.HandleFunc("/api/songs", h.ListSongsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/songs", h.AuthMiddleware(h.RequireRole(model.RoleArtist, h.UploadSongHandler))).Methods(http.MethodPost)
	router.HandleFunc("/api/songs/{id}", h.GetSongHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/songs/{id}", h.AuthMiddleware(h.UpdateSongHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/songs/{id}", h.AuthMiddleware(h.DeleteSongHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/songs/{id}/like", h.AuthMiddleware(h.LikeSongHandler)).Methods(http.MethodPost)

	// Streams
	router.HandleFunc("/api/streams", h.OptionalAuthMiddleware(h.CreateStreamHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/streams/recent", h.AuthMiddleware(h.RecentlyPlayedHandler)).Methods(http.MethodGet)

	// Playlists
	router.HandleFunc("/api/playlists", h.AuthMiddleware(h.CreatePlaylistHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/playlists", h.AuthMiddleware(h.MyPlaylistsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/playlists/{id}", h.AuthMiddleware(h.GetPlaylistHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/playlists/{id}", h.AuthMiddleware(h.UpdatePlaylistHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/playlists/{id}", h.AuthMiddleware(h.DeletePlaylistHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/playlists/{id}/songs/{songId}", h.AuthMiddleware(h.AddPlaylistSongHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/playlists/{id}/songs/{songId}", h.AuthMiddleware(h.RemovePlaylistSongHandler)).Methods(http.MethodDelete)

	// Discovery
	router.HandleFunc("/api/recommendations", h.AuthMiddleware(h.RecommendationsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/search", h.SearchHandler).Methods(http.MethodGet)

	// Dashboards
	router.HandleFunc("/api/stats/admin", h.AuthMiddleware(h.RequireRole(model.RoleAdmin, h.AdminDashboardHandler))).Methods(http.MethodGet)
	router.HandleFunc("/api/stats/artist", h.AuthMiddleware(h.RequireRole(model.RoleArtist, h.ArtistDashboardHandler))).Methods(http.MethodGet)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", logger.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("forced shutdown", logger.ErrorField(err))
	}
	logger.Info("server stopped")
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
