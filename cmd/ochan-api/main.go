package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ochan-dev/ochan/internal/config"
	"github.com/ochan-dev/ochan/internal/logger"
	"github.com/ochan-dev/ochan/internal/router"
	"github.com/ochan-dev/ochan/internal/setup"
)

func main() {
	configFolder := flag.String("config_folder", "./configs", "Path to the folder with public.yaml and private.yaml")
	flag.Parse()

	cfg := config.MustLoad(*configFolder)
	logger.Initialize(cfg.Public.LogLevel, cfg.Public.LogJSON)

	deps, err := setup.SetupDependencies(cfg)
	if err != nil {
		logger.Log.Error("failed to set up dependencies", "error", err)
		os.Exit(1)
	}
	defer deps.Cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := deps.StartCacheInvalidator(ctx); err != nil {
		logger.Log.Error("failed to start cache invalidator", "error", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:    cfg.Public.Address,
		Handler: router.New(deps.Handler),
	}

	go func() {
		logger.Log.Info("starting server", "address", cfg.Public.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("graceful shutdown failed", "error", err)
	}
}
