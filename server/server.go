package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wavecrate/config"
	"wavecrate/core/auth"
	"wavecrate/core/media"
	"wavecrate/core/stats"
	"wavecrate/logger"
	"wavecrate/repository"
	"wavecrate/storage"

	"github.com/gorilla/mux"
)

// Start wires the components and runs the HTTP server until SIGINT or
// SIGTERM.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	})

	files, err := storage.NewFileStore(cfg.UploadDir)
	if err != nil {
		logger.Fatal("failed to initialize file store", logger.ErrorField(err))
	}

	// The backup is advisory: if it cannot be reached at startup the
	// service still runs, producing local-only records.
	var backup storage.BackupStorage
	if cfg.MinioEndpoint != "" {
		b, err := storage.NewBackupStorage(cfg)
		if err != nil {
			logger.Warn("backup storage unavailable, continuing local-only", logger.ErrorField(err))
		} else {
			backup = b
			logger.Info("backup storage connected", logger.String("bucket", cfg.MinioBucket))
		}
	} else {
		logger.Info("backup storage not configured, running local-only")
	}

	catalog := repository.NewMemoryCatalog()
	counters := stats.NewCounters()
	mediaSvc := media.NewService(catalog, files, backup, counters)
	verifier := auth.NewStaticVerifier(cfg.AdminUsername, cfg.AdminPassword)
	tokens := auth.NewTokenIssuer(cfg.JWTSecret)
	apiHandler := NewAPIHandler(mediaSvc, verifier, tokens, counters, cfg)

	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	if err := storage.WatchUploads(watchCtx, files.AudioDir(), files.ImageDir()); err != nil {
		logger.Warn("upload watcher disabled", logger.ErrorField(err))
	}

	router := newRouter(apiHandler, cfg)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server starting",
			logger.String("addr", server.Addr),
			logger.String("uploadDir", cfg.UploadDir))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", logger.ErrorField(err))
	}

	logger.Info("server stopped")
}

// newRouter builds the full route table: REST API, admin endpoints,
// uploaded-media serving and the front-end assets.
func newRouter(apiHandler *APIHandler, cfg *config.Config) *mux.Router {
	router := mux.NewRouter()

	router.Use(func(next http.Handler) http.Handler {
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
	})

	// Public API
	router.HandleFunc("/api/songs", apiHandler.GetSongsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/songs/{id}/play", apiHandler.PlayHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/songs/{id}/download", apiHandler.DownloadHandler).Methods(http.MethodPost)

	// Admin API
	router.HandleFunc("/api/admin/login", apiHandler.LoginHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/admin/upload", apiHandler.AdminAuthMiddleware(apiHandler.UploadSongHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/admin/songs/{id}", apiHandler.AdminAuthMiddleware(apiHandler.DeleteSongHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/admin/songs/{id}/refresh-urls", apiHandler.AdminAuthMiddleware(apiHandler.RefreshURLsHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/admin/stats", apiHandler.AdminAuthMiddleware(apiHandler.StatsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/admin/stats/ws", apiHandler.AdminAuthMiddleware(apiHandler.StatsFeedHandler)).Methods(http.MethodGet)

	// Static file serving for uploaded media
	uploadsFileServer := http.FileServer(http.Dir(cfg.UploadDir))
	router.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", uploadsFileServer))

	// Frontend UI serving
	uiFileServer := http.FileServer(http.Dir(cfg.WebAppDir))
	router.PathPrefix("/").Handler(uiFileServer)

	return router
}
