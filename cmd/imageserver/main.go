package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"imageserver/internal/api"
	"imageserver/internal/api/middleware"
	"imageserver/internal/cache"
	"imageserver/internal/catalog"
	"imageserver/internal/config"
	"imageserver/internal/fetch"
	"imageserver/internal/logger"
	"imageserver/internal/repository"
	"imageserver/internal/selector"
	"imageserver/internal/service"
)

func main() {
	// Optional config file path: positional argument, then CONFIG_PATH env.
	configPath := os.Getenv("CONFIG_PATH")
	if len(os.Args) > 2 || (len(os.Args) == 2 && (os.Args[1] == "-h" || os.Args[1] == "--help")) {
		fmt.Fprintf(os.Stderr, "Usage: %s [config_file]\n", os.Args[0])
		os.Exit(2)
	}
	if len(os.Args) == 2 {
		configPath = os.Args[1]
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	lg := logger.New(&logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		File:        cfg.Log.File,
		ServiceName: "imageserver",
	})
	logger.SetDefaultLogger(lg)

	// Resolve the source catalog; a bad locator or empty catalog is fatal
	cat, err := catalog.Resolve(cfg.Sources)
	if err != nil {
		lg.WithError(err).Fatal("Failed to resolve image sources")
	}
	lg.WithField(logger.FieldCount, cat.Len()).Info("Resolved image catalog")

	fetcher := fetch.New(cfg.Fetch.Timeout)

	backend, err := cache.ParseBackend(cfg.Cache.Backend)
	if err != nil {
		lg.WithError(err).Fatal("Invalid cache backend")
	}

	// The file-system backend keeps its fingerprint index in SQLite next to
	// the payload files
	var entries *repository.CacheEntryRepository
	if backend == cache.BackendFileSystem {
		db, err := repository.InitDB(filepath.Join(cfg.Cache.Dir, "index.db"))
		if err != nil {
			lg.WithError(err).Fatal("Failed to initialize cache index")
		}
		entries = repository.NewCacheEntryRepository(db)
	}

	ctx := context.Background()
	store, err := cache.New(ctx, backend, cat, fetcher, cache.Options{
		Dir:     cfg.Cache.Dir,
		Entries: entries,
	}, lg.WithField(logger.FieldBackend, string(backend)))
	if err != nil {
		lg.WithError(err).Fatal("Failed to initialize cache")
	}

	svc := service.NewCatalogService(cat, store, selector.New(), lg)

	router := api.SetupRouter(svc, cfg.Server.Mode, middleware.CORSConfig{
		AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
	})

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		lg.Infof("Server running on http://%s", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			lg.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	lg.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.WithError(err).Fatal("Server forced to shutdown")
	}

	lg.Info("Server exited")
}
