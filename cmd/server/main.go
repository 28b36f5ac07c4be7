// BotServer - General Bots Conversational Platform
// Copyright 2026 General Bots
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GeneralBots/botserver-sub005

// Command server runs the authorization service: the RBAC engine wrapped
// in an HTTP listener with the stock route table, metrics, and the
// SuperAdmin ACL administration surface.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/GeneralBots/botserver-sub005/internal/config"
	"github.com/GeneralBots/botserver-sub005/internal/logging"
	"github.com/GeneralBots/botserver-sub005/internal/middleware"
	"github.com/GeneralBots/botserver-sub005/internal/rbac"
)

const version = "0.1.0"

func main() {
	if err := run(); err != nil {
		logging.Err(err).Msg("server exited with error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	audit := rbac.NewAuditLogger(rbac.AuditConfig{
		Enabled:    cfg.Audit.Enabled,
		LogAllowed: cfg.Audit.LogAllowed,
		LogDenied:  cfg.Audit.LogDenied,
		SampleRate: cfg.Audit.SampleRate,
		BufferSize: cfg.Audit.BufferSize,
	})

	manager := rbac.NewManager(rbac.Config{
		CacheTTL:               cfg.Security.RBAC.CacheTTL(),
		EnableCache:            cfg.Security.RBAC.EnablePermissionCache,
		EnableGroupInheritance: cfg.Security.RBAC.EnableGroupInheritance,
		DefaultDeny:            cfg.Security.RBAC.DefaultDeny,
		AuditAllDecisions:      cfg.Security.RBAC.AuditAllDecisions,
	}, audit)
	defer manager.Close()

	manager.RegisterRoutes(rbac.DefaultRoutePermissions())
	logging.Info().
		Int("routes", manager.RouteCount()).
		Bool("default_deny", cfg.Security.RBAC.DefaultDeny).
		Msg("authorization engine ready")

	router := buildRouter(cfg, manager)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logging.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func buildRouter(cfg *config.Config, manager *rbac.Manager) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if cfg.Server.RateLimit > 0 {
		r.Use(httprate.LimitByIP(cfg.Server.RateLimit, time.Minute))
	}

	// Metrics stay outside the authorization middleware so scrapers do
	// not need an identity.
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(rbac.Middleware(manager))

		r.Get("/health", healthHandler)
		r.Get("/healthz", healthHandler)
		r.Get("/api/health", healthHandler)
		r.Get("/api/version", versionHandler)

		r.Mount("/api/rbac", rbac.NewHandlers(manager).Routes())
	})

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func versionHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"version": version})
}
