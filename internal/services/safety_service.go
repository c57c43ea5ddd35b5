package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/scamguard/scamguard-backend/internal/models"
)

const (
	maxSafetyTips      = 5
	safetyTemperature  = 0.5
	safetySystemPrompt = `You are a fraud-prevention assistant. Reply with a JSON object {"summary": string, "tips": [string]} where "summary" is a brief, 1-2 sentence summary of the scam type and "tips" is a list of 3-5 actionable safety tips.`
)

var errInvalidAnalysis = errors.New("invalid safety analysis")

// DisabledAnalysis is returned when no AI credential is configured.
func DisabledAnalysis() *models.SafetyAnalysis {
	return &models.SafetyAnalysis{
		Summary: "AI analysis is disabled. Please configure your API key.",
		Tips: []string{
			"Enable two-factor authentication on all your accounts.",
			"Never share personal information with unverified sources.",
			"Be cautious of unsolicited offers that seem too good to be true.",
		},
	}
}

// Completer produces a JSON chat completion. Implemented by ai.Client.
type Completer interface {
	JSONCompletion(ctx context.Context, system, prompt string, temperature float32) (string, error)
}

type TipsStatus string

const (
	TipsPending TipsStatus = "pending"
	TipsReady   TipsStatus = "ready"
	TipsFailed  TipsStatus = "failed"
)

type TipsResult struct {
	Status   TipsStatus             `json:"status"`
	Analysis *models.SafetyAnalysis `json:"analysis"`
}

type SafetyServiceConfig struct {
	// Timeout bounds one background analysis.
	Timeout  time.Duration
	CacheTTL time.Duration
}

// SafetyService asks the AI collaborator for safety tips about a scam
// description. It never fails the caller: a broken collaborator yields nil.
type SafetyService struct {
	completer Completer
	timeout   time.Duration
	results   *cache.Cache
	wg        sync.WaitGroup
}

// NewSafetyService returns a service backed by completer. A nil completer
// means no credential is configured and every analysis is DisabledAnalysis.
func NewSafetyService(completer Completer, cfg SafetyServiceConfig) *SafetyService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Hour
	}
	return &SafetyService{
		completer: completer,
		timeout:   cfg.Timeout,
		results:   cache.New(cfg.CacheTTL, 10*time.Minute),
	}
}

func (s *SafetyService) Enabled() bool {
	return s.completer != nil
}

// Analyze returns a summary and tips for description, or nil when the
// collaborator fails.
func (s *SafetyService) Analyze(ctx context.Context, description string) *models.SafetyAnalysis {
	if !s.Enabled() {
		return DisabledAnalysis()
	}

	prompt := fmt.Sprintf("Analyze the following scam report description and provide a brief summary and actionable safety tips. Description: %q", description)
	content, err := s.completer.JSONCompletion(ctx, safetySystemPrompt, prompt, safetyTemperature)
	if err != nil {
		s.analysisFault(ctx, err)
		return nil
	}

	analysis, err := parseAnalysis(content)
	if err != nil {
		s.analysisFault(ctx, err)
		return nil
	}
	return analysis
}

func (s *SafetyService) analysisFault(ctx context.Context, err error) {
	slog.ErrorContext(ctx, "safety analysis failed", "operation", "safety_analysis", "error", err)
	captureError(ctx, err)
}

func parseAnalysis(content string) (*models.SafetyAnalysis, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var analysis models.SafetyAnalysis
	if err := json.Unmarshal([]byte(content), &analysis); err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidAnalysis, err)
	}
	analysis.Summary = strings.TrimSpace(analysis.Summary)
	tips := make([]string, 0, len(analysis.Tips))
	for _, tip := range analysis.Tips {
		if tip = strings.TrimSpace(tip); tip != "" {
			tips = append(tips, tip)
		}
	}
	if len(tips) > maxSafetyTips {
		tips = tips[:maxSafetyTips]
	}
	analysis.Tips = tips

	if analysis.Summary == "" || len(analysis.Tips) == 0 {
		return nil, fmt.Errorf("%w: missing summary or tips", errInvalidAnalysis)
	}
	return &analysis, nil
}

// AnalyzeReport starts analysis of a freshly submitted report in the
// background. Progress is available through Lookup.
func (s *SafetyService) AnalyzeReport(report models.Report) {
	s.results.SetDefault(report.ID, TipsResult{Status: TipsPending})

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		result := TipsResult{Status: TipsFailed}
		if analysis := s.Analyze(ctx, report.Description); analysis != nil {
			result = TipsResult{Status: TipsReady, Analysis: analysis}
		}
		s.results.SetDefault(report.ID, result)
		slog.Info("safety analysis finished", "report_id", report.ID, "status", result.Status)
	}()
}

// Lookup returns the analysis state for reportID. ok is false when no
// analysis was started or it has expired.
func (s *SafetyService) Lookup(reportID string) (TipsResult, bool) {
	v, ok := s.results.Get(reportID)
	if !ok {
		return TipsResult{}, false
	}
	result, ok := v.(TipsResult)
	return result, ok
}

// Wait blocks until every background analysis has finished.
func (s *SafetyService) Wait() {
	s.wg.Wait()
}
