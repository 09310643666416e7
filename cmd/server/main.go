package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zaqqye/salon_backoffice/internal/config"
	"github.com/zaqqye/salon_backoffice/internal/database"
	"github.com/zaqqye/salon_backoffice/internal/logger"
	"github.com/zaqqye/salon_backoffice/internal/middleware"
	"github.com/zaqqye/salon_backoffice/internal/routes"
	"github.com/zaqqye/salon_backoffice/internal/ws"
)

func main() {
	if err := run(); err != nil {
		logger.GetDefault().Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = logger.ParseLevel(cfg.LogLevel)
	logCfg.JSON = cfg.LogJSON
	logger.Init(logCfg)
	log := logger.GetDefault()

	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}
	if err := database.SeedAdmin(db, cfg, log); err != nil {
		return err
	}
	if cfg.SeedCatalog {
		if err := database.SeedCatalog(db, log); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := ws.NewEventHub(log)
	go hub.Run(ctx)

	r := gin.New()
	r.Use(gin.Recovery())
	if err := routes.Register(r, db, cfg, hub, log, middleware.NewMetrics()); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
