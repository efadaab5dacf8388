package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/DoyleJ11/hots-draft-backend/internal/config"
	"github.com/DoyleJ11/hots-draft-backend/internal/httpapi"
	"github.com/DoyleJ11/hots-draft-backend/internal/hub"
	"github.com/DoyleJ11/hots-draft-backend/internal/logging"
	"github.com/DoyleJ11/hots-draft-backend/internal/stats"
	"github.com/DoyleJ11/hots-draft-backend/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rules, err := config.NewRulesSource(cfg.HeroConfigPath)
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}
	go func() {
		if err := rules.Watch(ctx, logger); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("rules watcher stopped", zap.Error(err))
		}
	}()

	snap, err := stats.LoadSnapshot(cfg.StatsSnapshotPath)
	if err != nil {
		return err
	}
	provider := stats.NewCachedProvider(stats.NewSnapshotProvider(snap))
	go provider.ExpireEvery(ctx, cfg.StatsCacheTTL)

	var archive store.Store = store.NewMemoryStore()
	if cfg.DatabaseURL != "" {
		gs, err := store.OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		archive = gs
		logger.Info("archiving drafts to postgres")
	}

	// The hub outlives the signal context and is stopped explicitly below.
	h := hub.NewHub(context.Background())

	// Build the router *with* the hub, stats and archive injected
	handler := httpapi.SetupRoutes(httpapi.New(httpapi.Config{
		Hub:            h,
		Provider:       provider,
		Rules:          rules.Current,
		Store:          archive,
		Logger:         logger,
		Mode:           cfg.GameMode,
		AllowedOrigins: cfg.AllowedOrigins,
		CreateRate:     rate.Limit(cfg.CreateRate),
		CreateBurst:    cfg.CreateBurst,
	}))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Rooms stop first so running drafts get archived as aborted.
	h.Inbox() <- hub.ShutdownHub{}
	select {
	case <-h.Done():
	case <-shutdownCtx.Done():
	}
	return srv.Shutdown(shutdownCtx)
}
