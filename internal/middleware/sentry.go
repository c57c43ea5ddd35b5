package middleware

import (
	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
)

// SentryContext copies the request's Sentry hub into the user context so
// services that only see a context.Context report to the right scope.
// Must run after the sentryfiber and requestid middleware.
func SentryContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		hub := sentryfiber.GetHubFromContext(c)
		if hub == nil {
			return c.Next()
		}
		if id, ok := c.Locals("requestid").(string); ok && id != "" {
			hub.Scope().SetTag("request_id", id)
		}
		c.SetUserContext(sentry.SetHubOnContext(c.UserContext(), hub))
		return c.Next()
	}
}
