package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/scamguard/scamguard-backend/internal/dto"
	"github.com/scamguard/scamguard-backend/internal/models"
	"github.com/scamguard/scamguard-backend/internal/services"
)

type ReportHandler struct {
	reports *services.ReportService
	safety  *services.SafetyService
}

func NewReportHandler(reports *services.ReportService, safety *services.SafetyService) *ReportHandler {
	return &ReportHandler{reports: reports, safety: safety}
}

func (h *ReportHandler) Categories(c *fiber.Ctx) error {
	return c.JSON(models.AllCategories())
}

func (h *ReportHandler) Search(c *fiber.Ctx) error {
	result := h.reports.Search(c.UserContext(), c.Query("q"))
	if result.Error != "" {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: result.Error,
		})
	}
	return c.JSON(result.Reports)
}

func (h *ReportHandler) CreateReport(c *fiber.Ctx) error {
	var req dto.CreateReportRequest
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

	result := h.reports.Submit(c.UserContext(), req.ToNewReportData())
	if !result.Success {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.CreateReportResponse{
			Success: false, NewReport: nil, Message: result.Error,
		})
	}

	h.safety.AnalyzeReport(*result.NewReport)
	return c.Status(fiber.StatusCreated).JSON(dto.CreateReportResponse{
		Success: true, NewReport: result.NewReport,
	})
}

func validationMessage(err error) string {
	if !errors.Is(err, dto.ErrValidation) {
		return err.Error()
	}
	return strings.TrimPrefix(err.Error(), dto.ErrValidation.Error()+": ")
}
