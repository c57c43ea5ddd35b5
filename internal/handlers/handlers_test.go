package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/scamguard/scamguard-backend/internal/dto"
	"github.com/scamguard/scamguard-backend/internal/handlers"
	"github.com/scamguard/scamguard-backend/internal/models"
	"github.com/scamguard/scamguard-backend/internal/services"
	"github.com/scamguard/scamguard-backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validDescription = "A caller claiming to be my bank asked me to move savings to a safe account."

type stubCompleter struct {
	content string
	err     error
}

func (s stubCompleter) JSONCompletion(context.Context, string, string, float32) (string, error) {
	return s.content, s.err
}

type brokenStore struct{ *store.MemoryStore }

func (brokenStore) All(context.Context) ([]models.Report, error) {
	return nil, store.ErrStoreUnavailable
}

func (brokenStore) Prepend(context.Context, models.Report) error {
	return store.ErrStoreUnavailable
}

type testEnv struct {
	app    *fiber.App
	store  store.ReportStore
	safety *services.SafetyService
}

func newEnv(t *testing.T, s store.ReportStore, completer services.Completer) *testEnv {
	t.Helper()
	require.NoError(t, s.Seed(context.Background()))

	reports := services.NewReportService(s, services.ReportServiceConfig{})
	safety := services.NewSafetyService(completer, services.SafetyServiceConfig{Timeout: time.Second})

	reportHandler := handlers.NewReportHandler(reports, safety)
	safetyHandler := handlers.NewSafetyHandler(safety)
	healthHandler := handlers.NewHealthHandler(s, "memory")

	app := fiber.New()
	app.Get("/api/health", healthHandler.Check)
	app.Get("/api/categories", reportHandler.Categories)
	app.Get("/api/search", reportHandler.Search)
	app.Post("/api/reports", reportHandler.CreateReport)
	app.Get("/api/reports/:id/safety-tips", safetyHandler.GetReportTips)
	app.Post("/api/safety-tips", safetyHandler.AnalyzeDescription)

	return &testEnv{app: app, store: s, safety: safety}
}

func (e *testEnv) do(t *testing.T, method, target, body string, out any) int {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	env := newEnv(t, store.NewMemoryStore(nil), nil)

	var got dto.HealthResponse
	status := env.do(t, http.MethodGet, "/api/health", "", &got)

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ok", got.Status)
	assert.Equal(t, "memory", got.Store)
	assert.Empty(t, got.DB, "no database to ping")
	assert.Equal(t, int64(3), got.Reports)
}

func TestHealth_DatabasePing(t *testing.T) {
	tests := []struct {
		name       string
		ping       error
		wantStatus string
		wantDB     string
	}{
		{name: "reachable", wantStatus: "ok", wantDB: "ok"},
		{name: "unreachable", ping: errors.New("connection refused"), wantStatus: "degraded", wantDB: "unhealthy: connection refused"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := store.NewMemoryStore(nil)
			h := handlers.NewHealthHandler(s, "postgres").WithPing(func(context.Context) error { return tt.ping })
			app := fiber.New()
			app.Get("/api/health", h.Check)

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil), -1)
			require.NoError(t, err)
			defer resp.Body.Close()

			var got dto.HealthResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
			assert.Equal(t, fiber.StatusOK, resp.StatusCode)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.wantDB, got.DB)
			assert.Equal(t, "postgres", got.Store)
		})
	}
}

func TestCategories(t *testing.T) {
	env := newEnv(t, store.NewMemoryStore(nil), nil)

	var got []models.SearchCategory
	status := env.do(t, http.MethodGet, "/api/categories", "", &got)

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, models.AllCategories(), got)
}

func TestSearch(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "match", query: "?q=fake-bank", want: []string{"1"}},
		{name: "encoded spaces", query: "?q=%20%2018005551234%20", want: []string{"2"}},
		{name: "no query", query: "", want: []string{}},
		{name: "no match", query: "?q=nobody", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newEnv(t, store.NewMemoryStore(nil), nil)

			var got []models.Report
			status := env.do(t, http.MethodGet, "/api/search"+tt.query, "", &got)

			assert.Equal(t, fiber.StatusOK, status)
			ids := []string{}
			for _, r := range got {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestSearch_StoreFault(t *testing.T) {
	env := newEnv(t, brokenStore{store.NewMemoryStore(nil)}, nil)

	var got dto.ErrorResponse
	status := env.do(t, http.MethodGet, "/api/search?q=bank", "", &got)

	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.True(t, got.Error)
	assert.Equal(t, services.MsgSearchFailed, got.Message)
}

func TestCreateReport(t *testing.T) {
	env := newEnv(t, store.NewMemoryStore(nil), nil)
	body := `{
		"categories": ["Email Address"],
		"identifiers": {"Email Address": " scam@example.com ", "Website": "ignored.example"},
		"description": "` + validDescription + `",
		"scammerInfo": {"name": "Mr. Smith"},
		"incidentDate": "2024-03-01"
	}`

	var got dto.CreateReportResponse
	status := env.do(t, http.MethodPost, "/api/reports", body, &got)

	require.Equal(t, fiber.StatusCreated, status)
	require.True(t, got.Success)
	require.NotNil(t, got.NewReport)
	assert.Equal(t, models.StatusApproved, got.NewReport.Status)
	assert.Equal(t, map[models.SearchCategory]string{models.CategoryEmail: " scam@example.com "}, got.NewReport.Identifiers)
	assert.Equal(t, []string{}, got.NewReport.EvidenceLinks)
	assert.Equal(t, "Mr. Smith", got.NewReport.ScammerInfo.Name)

	var found []models.Report
	env.do(t, http.MethodGet, "/api/search?q=scam@example.com", "", &found)
	require.Len(t, found, 1)
	assert.Equal(t, got.NewReport.ID, found[0].ID)

	env.safety.Wait()
	var tips services.TipsResult
	status = env.do(t, http.MethodGet, "/api/reports/"+got.NewReport.ID+"/safety-tips", "", &tips)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, services.TipsReady, tips.Status)
	assert.Equal(t, services.DisabledAnalysis(), tips.Analysis)
}

func TestCreateReport_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{
			name:    "malformed json",
			body:    `{"categories":`,
			message: "Invalid request body",
		},
		{
			name:    "no categories",
			body:    `{"categories":[],"description":"` + validDescription + `","incidentDate":"2024-03-01"}`,
			message: "Please select at least one category.",
		},
		{
			name:    "missing identifier",
			body:    `{"categories":["Website"],"description":"` + validDescription + `","incidentDate":"2024-03-01"}`,
			message: "Website is required.",
		},
		{
			name:    "short description",
			body:    `{"categories":["Website"],"identifiers":{"Website":"x.example"},"description":"too short","incidentDate":"2024-03-01"}`,
			message: "Please provide at least 50 characters.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newEnv(t, store.NewMemoryStore(nil), nil)

			var got dto.ErrorResponse
			status := env.do(t, http.MethodPost, "/api/reports", tt.body, &got)

			assert.Equal(t, fiber.StatusBadRequest, status)
			assert.True(t, got.Error)
			assert.Equal(t, tt.message, got.Message)

			count, err := env.store.Count(context.Background())
			require.NoError(t, err)
			assert.Equal(t, int64(3), count)
		})
	}
}

func TestCreateReport_StoreFault(t *testing.T) {
	env := newEnv(t, brokenStore{store.NewMemoryStore(nil)}, nil)
	body := `{"categories":["Website"],"identifiers":{"Website":"x.example"},"description":"` + validDescription + `","incidentDate":"2024-03-01"}`

	var got map[string]any
	status := env.do(t, http.MethodPost, "/api/reports", body, &got)

	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, false, got["success"])
	assert.Nil(t, got["newReport"])
	assert.Equal(t, services.MsgSubmitFailed, got["message"])
}

func TestGetReportTips_Unknown(t *testing.T) {
	env := newEnv(t, store.NewMemoryStore(nil), nil)

	var got dto.ErrorResponse
	status := env.do(t, http.MethodGet, "/api/reports/nope/safety-tips", "", &got)

	assert.Equal(t, fiber.StatusNotFound, status)
	assert.True(t, got.Error)
}

func TestAnalyzeDescription(t *testing.T) {
	tests := []struct {
		name      string
		completer services.Completer
		body      string
		status    int
	}{
		{
			name:      "ok",
			completer: stubCompleter{content: `{"summary":"Bank impersonation.","tips":["Hang up."]}`},
			body:      `{"description":"fake bank call"}`,
			status:    fiber.StatusOK,
		},
		{
			name:      "collaborator down",
			completer: stubCompleter{err: errors.New("503")},
			body:      `{"description":"fake bank call"}`,
			status:    fiber.StatusBadGateway,
		},
		{
			name:   "disabled",
			body:   `{"description":"fake bank call"}`,
			status: fiber.StatusOK,
		},
		{
			name:   "blank description",
			body:   `{"description":"   "}`,
			status: fiber.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newEnv(t, store.NewMemoryStore(nil), tt.completer)

			status := env.do(t, http.MethodPost, "/api/safety-tips", tt.body, nil)

			assert.Equal(t, tt.status, status)
		})
	}
}
