package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/go-co-op/gocron"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"gorm.io/gorm"

	"github.com/scamguard/scamguard-backend/internal/ai"
	"github.com/scamguard/scamguard-backend/internal/config"
	"github.com/scamguard/scamguard-backend/internal/database"
	"github.com/scamguard/scamguard-backend/internal/dto"
	"github.com/scamguard/scamguard-backend/internal/handlers"
	"github.com/scamguard/scamguard-backend/internal/logging"
	"github.com/scamguard/scamguard-backend/internal/middleware"
	"github.com/scamguard/scamguard-backend/internal/routes"
	"github.com/scamguard/scamguard-backend/internal/services"
	"github.com/scamguard/scamguard-backend/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Structured logging (JSON to stdout, optional rotating file)
	baseHandler, logFile := logging.Setup(logging.Options{Level: cfg.SlogLevel(), File: cfg.LogFile})
	defer logFile.Close()

	// Report store
	var (
		reportStore  store.ReportStore
		db           *gorm.DB
		pgLogHandler *logging.PGHandler
		retention    *gocron.Scheduler
	)
	switch cfg.StoreDriver {
	case config.StorePostgres:
		db, err = database.Connect(cfg)
		if err != nil {
			slog.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		if err := database.Migrate(db); err != nil {
			slog.Error("migration failed", "error", err)
			os.Exit(1)
		}

		// PostgreSQL log handler (ERROR+ async batch)
		pgLogHandler = logging.NewPGHandler(db, 5*time.Second)
		slog.SetDefault(slog.New(logging.NewMultiHandler(baseHandler, pgLogHandler)))

		// Log cleanup (30-day retention)
		retention, err = logging.StartRetention(db, logging.LogRetention)
		if err != nil {
			slog.Error("failed to schedule log retention", "error", err)
			os.Exit(1)
		}

		reportStore = store.NewGormStore(db, nil)
	default:
		reportStore = store.NewMemoryStore(nil)
	}

	if err := reportStore.Seed(context.Background()); err != nil {
		slog.Error("failed to seed reports", "error", err)
		os.Exit(1)
	}
	slog.Info("report store ready", "driver", cfg.StoreDriver)

	// Services
	reportService := services.NewReportService(reportStore, services.ReportServiceConfig{
		SearchDelay: cfg.SearchDelay,
		SubmitDelay: cfg.SubmitDelay,
	})

	var completer services.Completer
	if cfg.AIEnabled() {
		completer = ai.NewClient(ai.Config{
			APIKey:  cfg.AIAPIKey,
			BaseURL: cfg.AIBaseURL,
			Model:   cfg.AIModel,
			Timeout: cfg.AITimeout,
		})
	} else {
		slog.Warn("AI_API_KEY not set, safety tips use the built-in fallback")
	}
	safetyService := services.NewSafetyService(completer, services.SafetyServiceConfig{
		Timeout:  cfg.AITimeout,
		CacheTTL: cfg.TipsCacheTTL,
	})

	// Handlers
	healthHandler := handlers.NewHealthHandler(reportStore, cfg.StoreDriver)
	if db != nil {
		healthHandler.WithPing(func(ctx context.Context) error { return database.Ping(ctx, db) })
	}
	reportHandler := handlers.NewReportHandler(reportService, safetyService)
	safetyHandler := handlers.NewSafetyHandler(safetyService)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.SentryContext())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())

	routes.Setup(app, routes.DefaultLimits, healthHandler, reportHandler, safetyHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "store", cfg.StoreDriver, "ai", cfg.AIEnabled())
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	safetyService.Wait()

	if retention != nil {
		retention.Stop()
	}
	if pgLogHandler != nil {
		pgLogHandler.Stop()
	}
	sentry.Flush(2 * time.Second)

	if db != nil {
		if err := database.Close(db); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.ErrorContext(c.UserContext(), "unhandled server error",
			"method", c.Method(), "path", c.Path(), "request_id", c.Locals("requestid"), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(dto.ErrorResponse{
		Error:   true,
		Message: message,
	})
}
