package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/scamguard/scamguard-backend/internal/models"
	"github.com/scamguard/scamguard-backend/internal/store"
)

const (
	MsgSearchFailed = "An unexpected error occurred during search."
	MsgSubmitFailed = "Failed to submit report."
)

var errPanic = errors.New("recovered panic")

type SearchResult struct {
	Reports []models.Report
	// Error is empty unless the search faulted.
	Error string
}

type SubmitResult struct {
	Success   bool
	NewReport *models.Report
	Error     string
}

type ReportServiceConfig struct {
	SearchDelay time.Duration
	SubmitDelay time.Duration
	// Now and NewID default to time.Now and uuid.NewString.
	Now   func() time.Time
	NewID func() string
}

// ReportService answers searches and accepts new reports. Faults never
// reach the caller as errors: they come back as empty results and are kept
// in the LastError slot.
type ReportService struct {
	store       store.ReportStore
	searchDelay time.Duration
	submitDelay time.Duration
	now         func() time.Time
	newID       func() string

	inFlight atomic.Int64
	mu       sync.RWMutex
	lastErr  string
}

func NewReportService(s store.ReportStore, cfg ReportServiceConfig) *ReportService {
	svc := &ReportService{
		store:       s,
		searchDelay: cfg.SearchDelay,
		submitDelay: cfg.SubmitDelay,
		now:         cfg.Now,
		newID:       cfg.NewID,
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	if svc.newID == nil {
		svc.newID = uuid.NewString
	}
	return svc
}

// Loading is true while a Search or Submit is in flight.
func (s *ReportService) Loading() bool {
	return s.inFlight.Load() > 0
}

// LastError returns the message of the most recent fault, or "" if the
// latest call succeeded.
func (s *ReportService) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

func (s *ReportService) setError(msg string) {
	s.mu.Lock()
	s.lastErr = msg
	s.mu.Unlock()
}

func (s *ReportService) begin() func() {
	s.inFlight.Add(1)
	s.setError("")
	return func() { s.inFlight.Add(-1) }
}

// Search returns approved reports with an identifier containing query,
// case-insensitively, newest first. A blank query returns no reports and
// does not wait.
func (s *ReportService) Search(ctx context.Context, query string) (result SearchResult) {
	done := s.begin()
	defer done()

	result.Reports = []models.Report{}
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return result
	}

	defer func() {
		if r := recover(); r != nil {
			result = s.searchFault(ctx, fmt.Errorf("%w: %v", errPanic, r))
		}
	}()

	if err := sleep(ctx, s.searchDelay); err != nil {
		return s.searchFault(ctx, err)
	}

	all, err := s.store.All(ctx)
	if err != nil {
		return s.searchFault(ctx, err)
	}
	for _, report := range all {
		if matches(report, needle) {
			result.Reports = append(result.Reports, report)
		}
	}
	slog.DebugContext(ctx, "search completed", "query_len", len(needle), "results", len(result.Reports))
	return result
}

func matches(report models.Report, needle string) bool {
	if report.Status != models.StatusApproved {
		return false
	}
	for _, value := range report.Identifiers {
		if strings.Contains(strings.ToLower(value), needle) {
			return true
		}
	}
	return false
}

func (s *ReportService) searchFault(ctx context.Context, err error) SearchResult {
	slog.ErrorContext(ctx, "search failed", "operation", "search", "error", err)
	captureError(ctx, err)
	s.setError(MsgSearchFailed)
	return SearchResult{Reports: []models.Report{}, Error: MsgSearchFailed}
}

// Submit publishes a new report. The data is copied verbatim; the service
// assigns the id, status, creation time and evidence links. Validation is
// the caller's job.
func (s *ReportService) Submit(ctx context.Context, data models.NewReportData) (result SubmitResult) {
	done := s.begin()
	defer done()

	defer func() {
		if r := recover(); r != nil {
			result = s.submitFault(ctx, fmt.Errorf("%w: %v", errPanic, r))
		}
	}()

	if err := sleep(ctx, s.submitDelay); err != nil {
		return s.submitFault(ctx, err)
	}

	report := models.Report{
		ID:            s.newID(),
		Categories:    data.Categories,
		Identifiers:   data.Identifiers,
		Description:   data.Description,
		EvidenceLinks: []string{},
		Status:        models.StatusApproved,
		CreatedAt:     s.now().UTC(),
		ScammerInfo:   data.ScammerInfo,
		IncidentDate:  data.IncidentDate,
	}
	if err := s.store.Prepend(ctx, report); err != nil {
		return s.submitFault(ctx, err)
	}

	slog.InfoContext(ctx, "report submitted and approved", "report_id", report.ID, "categories", len(report.Categories))
	return SubmitResult{Success: true, NewReport: &report}
}

func (s *ReportService) submitFault(ctx context.Context, err error) SubmitResult {
	slog.ErrorContext(ctx, "submit failed", "operation", "submit", "error", err)
	captureError(ctx, err)
	s.setError(MsgSubmitFailed)
	return SubmitResult{Success: false, NewReport: nil, Error: MsgSubmitFailed}
}

// sleep waits d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func captureError(ctx context.Context, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.CaptureException(err)
}
