package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/netwave/isp-portal-bfa-go/internal/config"
	"github.com/netwave/isp-portal-bfa-go/internal/domain"
	"github.com/netwave/isp-portal-bfa-go/internal/handler"
	"github.com/netwave/isp-portal-bfa-go/internal/infra/cache"
	"github.com/netwave/isp-portal-bfa-go/internal/infra/observability"
	"github.com/netwave/isp-portal-bfa-go/internal/infra/resilience"
	"github.com/netwave/isp-portal-bfa-go/internal/infra/supabase"
	"github.com/netwave/isp-portal-bfa-go/internal/port"
	"github.com/netwave/isp-portal-bfa-go/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Duration("jwt_access_ttl", cfg.JWTAccessTTL),
		zap.Bool("dev_auth", cfg.DevAuth),
	)

	if cfg.SupabaseURL == "" {
		logger.Fatal("SUPABASE_URL is required")
	}

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "isp-portal-bfa")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("record-store")

	// --- Record store client ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	store := supabase.NewClient(
		httpClient,
		cfg.SupabaseURL,
		cfg.SupabaseAnonKey,
		cfg.SupabaseServiceKey,
		cb,
		resilienceCfg,
		logger,
	)

	// --- Services ---
	sessions := service.NewSessionService(cfg.JWTSecret, cfg.JWTAccessTTL, store, cfg.DevAuth, logger)
	identity := service.NewIdentityService(store, logger)
	reporting := service.NewReportingService(store, store, store, store, metrics, logger)
	directory := service.NewDirectoryService(store, logger)

	planCache := cache.New[[]domain.ServicePlan](cfg.CacheTTL)
	catalog := service.NewCatalogService(store, planCache, metrics, logger)

	svcs := &handler.Services{
		Page:      service.NewPageService(identity, reporting, logger),
		Identity:  identity,
		Sessions:  sessions,
		Directory: directory,
		Catalog:   catalog,
		Billing:   service.NewBillingService(store, store, metrics, logger),
		Tickets:   service.NewTicketService(store, store, logger),
		Account:   service.NewAccountService(store, logger),
		Reporting: reporting,
	}

	cancelAudit := auditSessions(sessions, logger)
	defer cancelAudit()

	// --- Router ---
	router := handler.NewRouter(svcs, metrics, cfg.Locale, cfg.Currency, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

// auditSessions logs session lifecycle events as they happen. The returned
// function unsubscribes and stops the drain goroutine.
func auditSessions(events port.SessionEvents, logger *zap.Logger) func() {
	ch, cancel := events.Subscribe()
	go func() {
		for ev := range ch {
			logger.Info("session event",
				zap.String("type", string(ev.Type)),
				zap.String("user_id", ev.UserID),
			)
		}
	}()
	return cancel
}
