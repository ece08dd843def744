package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Kerhoff/wedding/internal/api"
	"github.com/Kerhoff/wedding/internal/config"
	"github.com/Kerhoff/wedding/internal/handlers"
	"github.com/Kerhoff/wedding/internal/metrics"
	"github.com/Kerhoff/wedding/internal/service"
	"github.com/Kerhoff/wedding/internal/storage"
	"github.com/Kerhoff/wedding/internal/telegram"
	"github.com/Kerhoff/wedding/internal/telemetry"
	"github.com/Kerhoff/wedding/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	l := logger.New(cfg.LogLevel, cfg.LogFormat)
	l.Info("Starting wedding RSVP service...")

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Tracing
	shutdownTracing, err := telemetry.Init(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		l.Fatalf("Failed to initialise tracing: %v", err)
	}
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer flushCancel()
		if err := shutdownTracing(flushCtx); err != nil {
			l.Errorf("Failed to flush traces: %v", err)
		}
	}()

	// Database
	store, err := storage.Open(ctx, cfg.DatabaseURL, l)
	if err != nil {
		l.Fatalf("Failed to open storage: %v", err)
	}
	defer store.Close()

	// Run migrations
	if err := store.Migrate(cfg.MigrationsPath); err != nil {
		l.Fatalf("Failed to run migrations: %v", err)
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Service layer
	svc := service.New(l, store.Guests, store.Stories, m)

	// Telegram admin bot
	if cfg.TelegramEnabled() {
		bot, err := telegram.NewBot(cfg.TelegramToken, cfg.TelegramAdminChatID, l)
		if err != nil {
			l.Fatalf("Failed to create Telegram bot: %v", err)
		}

		bot.RegisterCommand("start", handlers.NewStartHandler(l))
		bot.RegisterCommand("help", handlers.NewHelpHandler(l))
		bot.RegisterCommand("stats", handlers.NewStatsHandler(svc, l))
		bot.RegisterCommand("find", handlers.NewFindHandler(svc, l))
		bot.RegisterCommand("party", handlers.NewPartyHandler(svc, l))
		svc.SetNotifier(bot)

		go svc.StartDigestScheduler(ctx, cfg.DigestInterval, bot.SendDigest)

		// Start Telegram bot polling
		go func() {
			if err := bot.Start(ctx); err != nil {
				l.Errorf("Bot error: %v", err)
			}
		}()
	} else {
		l.Info("TELEGRAM_TOKEN not set, admin bot disabled")
	}

	// Start HTTP server for the RSVP API
	apiServer := api.NewServer(svc, l, api.Options{
		AdminUser:     cfg.AdminUser,
		AdminPassword: cfg.AdminPassword,
		ServiceName:   cfg.ServiceName,
		Ping:          store.Ping,
	})
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	metricsServer := &http.Server{
		Addr:              ":" + cfg.PrometheusPort,
		Handler:           metricsMux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	for _, srv := range []*http.Server{httpServer, metricsServer} {
		go func(srv *http.Server) {
			l.Infof("HTTP server listening on %s", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				l.Errorf("HTTP server error: %v", err)
				cancel()
			}
		}(srv)
	}

	l.WithField("backend", store.Backend).Info("Wedding RSVP service started successfully")

	<-ctx.Done()
	l.Info("Received shutdown signal...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	l.Info("Shutting down HTTP servers...")
	for _, srv := range []*http.Server{httpServer, metricsServer} {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			l.Errorf("HTTP server shutdown error: %v", err)
		}
	}

	l.Info("Wedding RSVP service stopped")
}
