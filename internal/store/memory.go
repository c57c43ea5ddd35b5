package store

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/scamguard/scamguard-backend/internal/models"
)

// MemoryStore keeps reports in process memory, newest first. Reports do not
// survive a restart.
type MemoryStore struct {
	mu      sync.RWMutex
	reports []models.Report
	seeded  bool
	now     func() time.Time
}

// NewMemoryStore returns an empty store. now dates the fixtures; nil means time.Now.
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{now: now}
}

func (s *MemoryStore) Seed(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seeded {
		return nil
	}
	fixtures := Fixtures(s.now())
	// Fixtures sit behind anything prepended before seeding.
	s.reports = append(s.reports, fixtures...)
	s.seeded = true
	return nil
}

func (s *MemoryStore) Prepend(_ context.Context, report models.Report) error {
	report = cloneReport(report)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = slices.Insert(s.reports, 0, report)
	return nil
}

func (s *MemoryStore) All(_ context.Context) ([]models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Report, len(s.reports))
	for i, r := range s.reports {
		out[i] = cloneReport(r)
	}
	return out, nil
}

func (s *MemoryStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.reports)), nil
}

func cloneReport(r models.Report) models.Report {
	r.Categories = slices.Clone(r.Categories)
	r.Identifiers = maps.Clone(r.Identifiers)
	r.EvidenceLinks = slices.Clone(r.EvidenceLinks)
	if r.EvidenceLinks == nil {
		r.EvidenceLinks = []string{}
	}
	return r
}
