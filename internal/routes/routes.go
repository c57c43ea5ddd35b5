package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/scamguard/scamguard-backend/internal/dto"
	"github.com/scamguard/scamguard-backend/internal/handlers"
)

type Limits struct {
	// API applies to every /api route, Submit additionally to POST /api/reports.
	API    int
	Submit int
}

var DefaultLimits = Limits{API: 60, Submit: 10}

func Setup(
	app *fiber.App,
	limits Limits,
	healthHandler *handlers.HealthHandler,
	reportHandler *handlers.ReportHandler,
	safetyHandler *handlers.SafetyHandler,
) {
	api := app.Group("/api")

	// General API rate limiter per IP
	api.Use(perMinute(limits.API))

	api.Get("/health", healthHandler.Check)
	api.Get("/categories", reportHandler.Categories)
	api.Get("/search", reportHandler.Search)

	// Submissions get a stricter limit
	api.Post("/reports", perMinute(limits.Submit), reportHandler.CreateReport)

	api.Get("/reports/:id/safety-tips", safetyHandler.GetReportTips)
	api.Post("/safety-tips", safetyHandler.AnalyzeDescription)
}

func perMinute(max int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Error: true, Message: "Too many requests",
			})
		},
	})
}
