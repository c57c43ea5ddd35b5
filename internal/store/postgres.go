package store

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/scamguard/scamguard-backend/internal/models"
	"gorm.io/gorm"
)

// GormStore keeps reports in a SQL table. Insertion order comes from the
// auto-increment Seq column.
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormStore(db *gorm.DB, now func() time.Time) *GormStore {
	if now == nil {
		now = time.Now
	}
	return &GormStore{db: db, now: now}
}

// Seed inserts the fixtures when the table is empty, so it is also a no-op
// across restarts against the same database.
func (s *GormStore) Seed(ctx context.Context) error {
	count, err := s.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	fixtures := Fixtures(s.now())
	// Oldest insert first so that seq DESC yields fixture order.
	slices.Reverse(fixtures)
	if err := s.db.WithContext(ctx).Create(&fixtures).Error; err != nil {
		return fmt.Errorf("%w: seed reports: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *GormStore) Prepend(ctx context.Context, report models.Report) error {
	report.Seq = 0
	if report.EvidenceLinks == nil {
		report.EvidenceLinks = []string{}
	}
	if err := s.db.WithContext(ctx).Create(&report).Error; err != nil {
		return fmt.Errorf("%w: create report: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *GormStore) All(ctx context.Context) ([]models.Report, error) {
	var reports []models.Report
	if err := s.db.WithContext(ctx).Order("seq DESC").Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("%w: list reports: %v", ErrStoreUnavailable, err)
	}
	for i := range reports {
		if reports[i].EvidenceLinks == nil {
			reports[i].EvidenceLinks = []string{}
		}
	}
	return reports, nil
}

func (s *GormStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Report{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("%w: count reports: %v", ErrStoreUnavailable, err)
	}
	return count, nil
}
