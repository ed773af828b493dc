// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/letterdesk/internal/api"
	"github.com/tomtom215/letterdesk/internal/cache"
	"github.com/tomtom215/letterdesk/internal/client"
	"github.com/tomtom215/letterdesk/internal/config"
	"github.com/tomtom215/letterdesk/internal/console"
	"github.com/tomtom215/letterdesk/internal/dashboard"
	"github.com/tomtom215/letterdesk/internal/events"
	"github.com/tomtom215/letterdesk/internal/fulfillment"
	"github.com/tomtom215/letterdesk/internal/logging"
	"github.com/tomtom215/letterdesk/internal/models"
	"github.com/tomtom215/letterdesk/internal/session"
	"github.com/tomtom215/letterdesk/internal/stats"
	"github.com/tomtom215/letterdesk/internal/supervisor"
	"github.com/tomtom215/letterdesk/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	host, _ := os.Hostname()
	logging.Init(logging.Config{
		Level:    cfg.Logging.Level,
		Format:   cfg.Logging.Format,
		Caller:   cfg.Logging.Caller,
		Instance: host,
	})

	logging.Info().
		Str("version", version).
		Str("api_url", cfg.API.BaseURL).
		Str("cache", cfg.Cache.Type).
		Bool("session_persist", cfg.Session.Persist).
		Msg("Starting Letterdesk with supervisor tree")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// === CACHE ===
	store := cache.Open(ctx, cache.Config{
		Type:          cache.Type(cfg.Cache.Type),
		TTL:           cfg.Cache.TTL,
		RedisAddr:     cfg.Cache.RedisAddr,
		RedisPassword: cfg.Cache.RedisPassword,
		RedisDB:       cfg.Cache.RedisDB,
		Namespace:     cfg.Cache.Namespace,
	})
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing cache")
		}
	}()
	logging.Info().Str("backend", store.Backend()).Msg("Cache initialized")

	// === SESSION ===
	authz, err := session.NewAuthorizer(models.RolePermissions)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build authorizer")
	}

	var sessionStore session.Store
	if cfg.Session.Persist {
		badgerStore, err := session.OpenBadgerStore(cfg.Session.StorePath)
		if err != nil {
			logging.Fatal().Err(err).Str("path", cfg.Session.StorePath).Msg("Failed to open session store")
		}
		defer func() {
			if err := badgerStore.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing session store")
			}
		}()
		sessionStore = badgerStore
	}
	sess := session.New(sessionStore, authz)
	if err := sess.Restore(ctx); err != nil {
		logging.Warn().Err(err).Msg("Failed to restore session, starting signed out")
	}

	// === REMOTE API ===
	apiClient, err := client.New(client.Config{
		BaseURL:        cfg.API.BaseURL,
		Timeout:        cfg.API.Timeout,
		MaxRetries:     cfg.API.MaxRetries,
		RetryBaseDelay: cfg.API.RetryBaseDelay,
		CircuitBreaker: cfg.API.CircuitBreaker,
	}, sess)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create admin API client")
	}

	// === EVENTS AND INVALIDATION ===
	bus := events.NewBus(events.BusConfig{})
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()
	dispatcher := cache.NewDispatcher(store, cache.DefaultInvalidationTable())
	dispatcher.Subscribe(bus.InvalidationListener())
	recorder := events.NewRecorder(bus, events.DefaultRecorderSize)

	// === SERVICES ===
	fulfillmentSvc := fulfillment.NewService(apiClient, dispatcher, bus, fulfillment.Config{
		NativeBulk:        cfg.Fulfillment.NativeBulk,
		BulkConcurrency:   cfg.Fulfillment.BulkConcurrency,
		BulkRatePerSecond: cfg.Fulfillment.BulkRatePerSecond,
		VerifyMode:        fulfillment.VerifyMode(cfg.Fulfillment.VerifyMode),
		VerifyAttempts:    cfg.Fulfillment.VerifyAttempts,
		VerifyBaseDelay:   cfg.Fulfillment.VerifyBaseDelay,
	})
	defer fulfillmentSvc.Wait()

	reader := fulfillment.NewReader(apiClient, store, cfg.Cache.TTL)
	statsSvc := stats.NewService(apiClient, store, stats.ServiceConfig{
		PreferServer:  cfg.Stats.PreferServer,
		FallbackLimit: cfg.Stats.FallbackLimit,
		TTL:           cfg.Cache.TTL,
	})
	dashboardSvc := dashboard.NewService(apiClient, store, cfg.Cache.TTL)
	consoleSvc := console.NewService(apiClient, store, dispatcher, sess, cfg.Cache.TTL)

	defaultRange, err := stats.ParseRange(cfg.Dashboard.DefaultRange)
	if err != nil {
		logging.Fatal().Err(err).Msg("Invalid dashboard default range")
	}

	refresher, err := dashboard.NewRefresher(dashboardSvc, statsSvc, dashboard.RefresherConfig{
		Schedule: cfg.Dashboard.RefreshSchedule,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create dashboard refresher")
	}

	// === HTTP ===
	handler, err := api.NewHandler(api.Deps{
		Fulfillment:  fulfillmentSvc,
		Reader:       reader,
		Stats:        statsSvc,
		Dashboard:    dashboardSvc,
		Console:      consoleSvc,
		Session:      sess,
		Events:       recorder,
		Upstream:     apiClient,
		Cache:        store,
		DefaultRange: defaultRange,
		Version:      version,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create API handler")
	}

	chiMiddleware := api.NewChiMiddleware(&api.ChiMiddlewareConfig{
		CORSAllowedOrigins: cfg.Server.CORSOrigins,
		CORSMaxAge:         300,
		RateLimitRequests:  cfg.Server.RateLimitPerMinute,
		RateLimitWindow:    time.Minute,
	})
	router := api.NewRouter(handler, chiMiddleware)

	server := &http.Server{
		Addr:         cfg.Server.Listen,
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// === SUPERVISOR TREE ===
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddBackgroundService(recorder)
	tree.AddBackgroundService(services.NewSchedulerService(refresher, "dashboard-refresher"))
	logging.Info().Msg("Event recorder and dashboard refresher added to supervisor tree")
	tree.AddAPIService(services.NewHTTPServerService(server, server.Addr, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Letterdesk stopped gracefully")
}
