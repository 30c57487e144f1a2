package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/agribalance/internal/app"
	"github.com/mamadbah2/agribalance/internal/config"
	"github.com/mamadbah2/agribalance/internal/scheduler"
	"github.com/mamadbah2/agribalance/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	a, err := app.New(context.Background(), cfg, baseLogger)
	if err != nil {
		baseLogger.Fatal("failed to init application", zap.Error(err))
	}
	defer a.Close(context.Background())

	engine := a.Router(baseLogger)

	if cfg.Sheets.SyncCron != "" {
		sched, err := scheduler.NewScheduler(cfg.Sheets.SyncCron, a.Publishing, baseLogger.Named("scheduler"))
		if err != nil {
			baseLogger.Fatal("failed to init scheduler", zap.Error(err))
		}
		sched.Start()
		defer sched.Stop()
	}

	// No write timeout: formulation calls can take up to AI_TIMEOUT and the
	// notification stream stays open.
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("store", cfg.Store.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	// Ends open notification streams before Shutdown waits on them.
	a.Bus.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
