package store

import (
	"context"
	"errors"

	"github.com/scamguard/scamguard-backend/internal/models"
)

var ErrStoreUnavailable = errors.New("report store unavailable")

// ReportStore is the ordered, append-only collection of published reports.
// Reports are never updated or removed; the only mutation is Prepend.
type ReportStore interface {
	// Seed loads the fixture reports. Calling it again is a no-op.
	Seed(ctx context.Context) error

	// Prepend inserts report at the head of the sequence. It does not validate.
	Prepend(ctx context.Context, report models.Report) error

	// All returns every report, newest first. The slice is a snapshot owned
	// by the caller.
	All(ctx context.Context) ([]models.Report, error)

	Count(ctx context.Context) (int64, error)
}
