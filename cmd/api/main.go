// Copyright (c) 2026 Visibles. All rights reserved.
// Author: dev@visibles.org

// Command api is the entry point for the Visibles HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Wire domain services and HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/visibles-org/visibles/internal/ai"
	"github.com/visibles-org/visibles/internal/api"
	"github.com/visibles-org/visibles/internal/core/comment"
	"github.com/visibles-org/visibles/internal/core/intake"
	"github.com/visibles-org/visibles/internal/core/profile"
	"github.com/visibles-org/visibles/internal/platform/config"
	"github.com/visibles-org/visibles/internal/platform/constants"
	"github.com/visibles-org/visibles/internal/platform/migration"
	pgstore "github.com/visibles-org/visibles/internal/platform/postgres"
	redisstore "github.com/visibles-org/visibles/internal/platform/redis"
	"github.com/visibles-org/visibles/internal/platform/sec"
	"github.com/visibles-org/visibles/internal/users/session"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Token Service ──────────────────────────────────────────────────
	tokenService, err := sec.NewTokenService(cfg.SessionSecret, constants.AuthIssuer)
	must(log, err, "initialize token service")

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 8. Generative Gateway ─────────────────────────────────────────────
	// A missing API key leaves the gateway in permanently-degraded mode:
	// reformulation passes input through, analysis returns its notice.
	var generator ai.Generator
	if cfg.GeminiAPIKey != "" {
		geminiGenerator, err := ai.NewGeminiGenerator(startupCtx, cfg.GeminiAPIKey, cfg.GeminiModel)
		must(log, err, "initialize gemini generator")
		generator = geminiGenerator
	} else {
		log.Warn("ai_gateway_disabled_no_api_key")
	}
	aiGateway := ai.NewGateway(generator, log)

	// ── 9. Domain Wiring ──────────────────────────────────────────────────
	userRepository := session.NewPostgresUserRepository(pool)
	sessionRepository := session.NewRedisSessionRepository(rdb)
	sessionService := session.NewService(userRepository, sessionRepository, tokenService, log)
	sessionHandler := session.NewHandler(sessionService)

	if cfg.IsDevelopment() {
		must(log, sessionService.EnsureSeedAccounts(startupCtx, cfg.DemoPasswordHash), "seed demo accounts")
	}

	profileRepository := profile.NewPostgresRepository(pool)
	profileService := profile.NewService(profileRepository, cfg.PublicBaseURL, log)
	profileHandler := profile.NewHandler(profileService)

	commentRepository := comment.NewPostgresRepository(pool)
	commentService := comment.NewService(commentRepository, profileRepository, log)
	commentHandler := comment.NewHandler(commentService)

	// Comments follow their profile out of existence on every delete path.
	profileService.OnDelete(commentService.PurgeForProfile)

	draftStore := intake.NewRedisDraftStore(rdb)
	intakeService := intake.NewService(draftStore, aiGateway, profileService, log)
	intakeHandler := intake.NewHandler(intakeService)

	// ── 10. HTTP Server ───────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Session:   sessionHandler,
		Profile:   profileHandler,
		Comment:   commentHandler,
		Intake:    intakeHandler,
	}

	server := api.NewServer(context.Background(), cfg, log, sessionService, handlers)

	// ── 11. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failed",
			slog.String("step", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
