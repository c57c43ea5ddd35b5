package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/scamguard/scamguard-backend/internal/dto"
	"github.com/scamguard/scamguard-backend/internal/store"
)

type HealthHandler struct {
	store     store.ReportStore
	storeName string
	ping      func(ctx context.Context) error
}

func NewHealthHandler(s store.ReportStore, storeName string) *HealthHandler {
	return &HealthHandler{store: s, storeName: storeName}
}

// WithPing adds a database check to the health report.
func (h *HealthHandler) WithPing(ping func(ctx context.Context) error) *HealthHandler {
	h.ping = ping
	return h
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx := c.UserContext()
	status := "ok"

	var dbStatus string
	if h.ping != nil {
		dbStatus = "ok"
		if err := h.ping(ctx); err != nil {
			dbStatus = "unhealthy: " + err.Error()
			status = "degraded"
		}
	}

	count, err := h.store.Count(ctx)
	if err != nil {
		status = "degraded"
	}

	return c.JSON(dto.HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Store:     h.storeName,
		DB:        dbStatus,
		Reports:   count,
	})
}
