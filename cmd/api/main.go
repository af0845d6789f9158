package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "skill-assessment/docs" // registers the OpenAPI document

	"skill-assessment/internal/config"
	"skill-assessment/internal/database"
	"skill-assessment/internal/handlers"
	"skill-assessment/internal/logger"
	"skill-assessment/internal/middleware"
	"skill-assessment/internal/repository"
	"skill-assessment/internal/service"
)

// @title Assessment Round API
// @version 1.0
// @description Assessment rounds, worker sessions and question delivery

// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(logger.Config{Level: cfg.Log.Level})
	slog.Info("Starting service", "name", cfg.App.Name, "version", cfg.App.Version, "env", cfg.App.Env)

	db, err := database.New(&cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("Database connection established")

	startup, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if cfg.Assessment.RunMigrations {
		applied, err := database.NewMigrationExecutor(db.DB).RunMigrations(startup, cfg.Assessment.MigrationsPath)
		if err != nil {
			slog.Error("Failed to run migrations", "error", err)
			os.Exit(1)
		}
		slog.Info("Database migrations completed", "applied", applied)
	}

	caps, err := database.DetectCapabilities(startup, db.DB)
	if err != nil {
		slog.Error("Failed to detect question bank capabilities", "error", err)
		os.Exit(1)
	}
	slog.Info("Question bank capabilities", "difficulty_level", caps.DifficultyLevel, "set_number", caps.SetNumber)

	availabilityStore, closeStore, err := newAvailabilityStore(startup, &cfg.Redis)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	publisher, err := newPublisher(&cfg.AMQP)
	if err != nil {
		slog.Error("Failed to connect to message broker", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			slog.Warn("Failed to close event publisher", "error", err)
		}
	}()

	// Initialize repositories
	roundRepo := repository.NewRoundRepository(db.DB)
	sessionRepo := repository.NewSessionRepository(db.DB)
	questionRepo := repository.NewQuestionRepository(db.DB)

	// Initialize services
	roundService := service.NewRoundService(roundRepo, publisher)
	sessionService := service.NewSessionService(sessionRepo, service.NewSourceResolver(cfg.Assessment.StructuralCategory))
	sampler := service.NewSampler(questionRepo, service.NewRandomPicker(cfg.Assessment.SamplerSeed), caps)
	deliveryService := service.NewDeliveryService(
		roundRepo,
		sessionService,
		sessionRepo,
		sampler,
		service.NewHydrator(questionRepo),
		publisher,
	)
	gradingService := service.NewGradingService(roundRepo, sessionRepo, service.PendingGrader{})
	availabilityService := service.NewAvailabilityService(availabilityStore)

	// Initialize middleware
	actorMw := middleware.NewActorMiddleware(&cfg.Auth)
	corsMw := middleware.NewCORSMiddleware(&cfg.CORS)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit)
	defer rateLimiter.Stop()

	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux, handlers.Routes{
		Rounds:       handlers.NewRoundHandler(roundService),
		Delivery:     handlers.NewDeliveryHandler(deliveryService, gradingService),
		Availability: handlers.NewAvailabilityHandler(availabilityService),
		Health:       handlers.NewHealthHandler(db, cfg.App.Version, sampler.Capabilities()),
		Metrics:      promhttp.Handler(),
		Docs:         httpSwagger.WrapHandler,
	}, actorMw.Authenticate)

	// Apply global middleware
	handler := middleware.LoggingMiddleware(
		middleware.SecurityHeaders(
			corsMw.Handler(
				rateLimiter.Limit(
					middleware.Metrics(mux),
				),
			),
		),
	)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.TimeoutRead,
		WriteTimeout: cfg.Server.TimeoutWrite,
		IdleTimeout:  cfg.Server.TimeoutIdle,
	}

	go func() {
		slog.Info("Server starting", "address", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Server shutting down...")

	ctx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped")
}
