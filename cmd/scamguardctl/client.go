package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/scamguard/scamguard-backend/internal/dto"
	"github.com/scamguard/scamguard-backend/internal/models"
	"github.com/scamguard/scamguard-backend/internal/services"
)

var ErrServer = errors.New("server error")

// apiClient talks to a running scamguard server.
type apiClient struct {
	base    string
	timeout time.Duration
}

func newAPIClient(server string, timeout time.Duration) *apiClient {
	return &apiClient{base: strings.TrimRight(server, "/"), timeout: timeout}
}

func (c *apiClient) Categories() ([]models.SearchCategory, error) {
	var out []models.SearchCategory
	err := c.do(fiber.Get(c.base+"/api/categories"), fiber.StatusOK, &out)
	return out, err
}

func (c *apiClient) Search(query string) ([]models.Report, error) {
	var out []models.Report
	err := c.do(fiber.Get(c.base+"/api/search?q="+url.QueryEscape(query)), fiber.StatusOK, &out)
	return out, err
}

func (c *apiClient) Submit(req dto.CreateReportRequest) (*models.Report, error) {
	var out dto.CreateReportResponse
	if err := c.do(fiber.Post(c.base+"/api/reports").JSON(req), fiber.StatusCreated, &out); err != nil {
		return nil, err
	}
	return out.NewReport, nil
}

func (c *apiClient) Tips(reportID string) (services.TipsResult, error) {
	var out services.TipsResult
	err := c.do(fiber.Get(c.base+"/api/reports/"+url.PathEscape(reportID)+"/safety-tips"), fiber.StatusOK, &out)
	return out, err
}

func (c *apiClient) Analyze(description string) (*models.SafetyAnalysis, error) {
	var out models.SafetyAnalysis
	err := c.do(fiber.Post(c.base+"/api/safety-tips").JSON(dto.SafetyTipsRequest{Description: description}), fiber.StatusOK, &out)
	return &out, err
}

func (c *apiClient) do(agent *fiber.Agent, want int, out any) error {
	agent.Timeout(c.timeout)
	if err := agent.Parse(); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("request failed: %w", errors.Join(errs...))
	}
	if code != want {
		var e dto.ErrorResponse
		if json.Unmarshal(body, &e) == nil && e.Message != "" {
			return fmt.Errorf("%w: %d %s", ErrServer, code, e.Message)
		}
		return fmt.Errorf("%w: %d", ErrServer, code)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
