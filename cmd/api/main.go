package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Mehtab-21/CareConnect-Backend/internal/api/router"
	"github.com/Mehtab-21/CareConnect-Backend/internal/arbiter"
	"github.com/Mehtab-21/CareConnect-Backend/internal/callers"
	appconfig "github.com/Mehtab-21/CareConnect-Backend/internal/config"
	"github.com/Mehtab-21/CareConnect-Backend/internal/dashboard"
	"github.com/Mehtab-21/CareConnect-Backend/internal/observability/metrics"
	"github.com/Mehtab-21/CareConnect-Backend/internal/providers"
	"github.com/Mehtab-21/CareConnect-Backend/internal/store"
	"github.com/Mehtab-21/CareConnect-Backend/internal/triage"
	"github.com/Mehtab-21/CareConnect-Backend/internal/voice"
	"github.com/Mehtab-21/CareConnect-Backend/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting careconnect API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	pingCtx, cancelPing := context.WithTimeout(ctx, 5*time.Second)
	if err := pool.Ping(pingCtx); err != nil {
		cancelPing()
		logger.Error("failed to reach database", "error", err)
		os.Exit(1)
	}
	cancelPing()

	st := store.New(pool)

	providerResolver := providers.NewResolver(st, logger)
	callerResolver := callers.NewResolver(st, logger)
	bookingArbiter := arbiter.NewService(st, providerResolver, callerResolver, logger)
	triageIngestor := triage.NewIngestor(st, callerResolver, logger)

	toolMetrics := metrics.NewToolCallMetrics(nil)

	voiceHandler := voice.NewHandler(voice.HandlerConfig{
		Arbiter:        bookingArbiter,
		Triage:         triageIngestor,
		Discovery:      providerResolver,
		Logger:         logger,
		Metrics:        toolMetrics,
		MaxBodyBytes:   cfg.VoiceToolMaxBodyBytes,
		DiscoveryLimit: cfg.DiscoveryResultLimit,
	})
	dashboardHandler := dashboard.NewHandler(st, logger)

	r := router.New(&router.Config{
		Logger:             logger,
		VoiceHandler:       voiceHandler,
		DashboardHandler:   dashboardHandler,
		DB:                 pool,
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: splitOrigins(cfg.CORSAllowedOrigins),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func splitOrigins(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
