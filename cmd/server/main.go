package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edupulse/class-service/internal/config"
	"github.com/edupulse/class-service/internal/database"
	"github.com/edupulse/class-service/internal/handler"
	"github.com/edupulse/class-service/internal/identity"
	"github.com/edupulse/class-service/internal/logger"
	"github.com/edupulse/class-service/internal/middleware"
	"github.com/edupulse/class-service/internal/repository"
	"github.com/edupulse/class-service/internal/router"
	"github.com/edupulse/class-service/internal/service"
	"github.com/edupulse/class-service/internal/validator"
	"github.com/rs/zerolog"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Str("identity_url", cfg.IdentityServiceURL).
		Msg("Starting class service")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	classRepo := repository.NewClassRepository(pool)
	lectureRepo := repository.NewLectureRepository(pool)
	attendanceRepo := repository.NewAttendanceRepository(pool)

	// ─── Identity Resolver ─────────────────────────────────────────────
	identityClient := identity.NewClient(cfg.IdentityServiceURL, cfg.IdentityTimeout, log)

	// ─── Initialize Services ──────────────────────────────────────────
	feed := service.NewAttendanceFeed(rdb)
	classService := service.NewClassService(classRepo, identityClient, cfg.EnrichConcurrency, log)
	lectureService := service.NewLectureService(classRepo, lectureRepo, log)
	attendanceService := service.NewAttendanceService(lectureRepo, attendanceRepo, identityClient, feed, cfg.EnrichConcurrency, log)

	// HTTP and WebSocket marks share one per-principal budget.
	markLimiter := middleware.NewRateLimiter(ctx, cfg.MarkRateLimit, time.Minute)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Class:      handler.NewClassHandler(classService, log),
		Lecture:    handler.NewLectureHandler(lectureService, log),
		Attendance: handler.NewAttendanceHandler(attendanceService, log),
		Monitor:    handler.NewMonitorHandler(feed, lectureService, log),
		WS:         handler.NewWSHandler(feed, lectureService, attendanceService, markLimiter, log, cfg.AllowedOrigins),
		Health: handler.NewHealthHandler(map[string]handler.HealthCheck{
			"postgres": pool.Ping,
			"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		}, log),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(identityClient, markLimiter, handlers, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// Stops the rate limiter sweeper.
	cancel()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
