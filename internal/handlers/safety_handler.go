package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/scamguard/scamguard-backend/internal/dto"
	"github.com/scamguard/scamguard-backend/internal/services"
)

type SafetyHandler struct {
	safety *services.SafetyService
}

func NewSafetyHandler(safety *services.SafetyService) *SafetyHandler {
	return &SafetyHandler{safety: safety}
}

// GetReportTips returns the background analysis started when the report
// was submitted.
func (h *SafetyHandler) GetReportTips(c *fiber.Ctx) error {
	result, ok := h.safety.Lookup(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "No safety analysis for this report",
		})
	}
	return c.JSON(result)
}

func (h *SafetyHandler) AnalyzeDescription(c *fiber.Ctx) error {
	var req dto.SafetyTipsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: validationMessage(err),
		})
	}

	analysis := h.safety.Analyze(c.UserContext(), req.Description)
	if analysis == nil {
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{
			Error: true, Message: "Safety analysis is unavailable",
		})
	}
	return c.JSON(analysis)
}
