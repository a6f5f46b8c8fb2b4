package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"clinic-logistics-backend/internal/model"
	"clinic-logistics-backend/internal/schedule"
)

// GormStore implements schedule.Store, schedule.ConflictDetector and
// schedule.ResourceFinder on top of GORM. It holds no business rules.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// DB exposes the underlying handle for the plain CRUD handlers.
func (s *GormStore) DB() *gorm.DB {
	return s.db
}

// Insert persists a new appointment.
func (s *GormStore) Insert(ctx context.Context, appt *model.Appointment) error {
	if err := s.db.WithContext(ctx).Create(appt).Error; err != nil {
		return fmt.Errorf("failed to insert appointment %s: %w", appt.ID, err)
	}
	return nil
}

// GetByID looks up an appointment, returning schedule.ErrNotFound if absent.
func (s *GormStore) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	var appt model.Appointment
	err := s.db.WithContext(ctx).First(&appt, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, schedule.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load appointment %s: %w", id, err)
	}
	return &appt, nil
}

// Query lists appointments matching the filter, ascending by start time.
func (s *GormStore) Query(ctx context.Context, f schedule.Filter) ([]model.Appointment, error) {
	q := s.db.WithContext(ctx).Model(&model.Appointment{})
	if f.StartFrom != nil {
		q = q.Where("start_time >= ?", *f.StartFrom)
	}
	if f.StartTo != nil {
		q = q.Where("start_time <= ?", *f.StartTo)
	}
	if f.RequesterID != "" {
		q = q.Where("requester_id = ?", f.RequesterID)
	}
	if f.ResourceID != "" {
		q = q.Where("resource_id = ?", f.ResourceID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var appts []model.Appointment
	if err := q.Order("start_time ASC").Find(&appts).Error; err != nil {
		return nil, fmt.Errorf("failed to query appointments: %w", err)
	}
	return appts, nil
}

// Save persists mutations to an existing appointment.
func (s *GormStore) Save(ctx context.Context, appt *model.Appointment) error {
	if err := s.db.WithContext(ctx).Save(appt).Error; err != nil {
		return fmt.Errorf("failed to save appointment %s: %w", appt.ID, err)
	}
	return nil
}

// Transaction runs fn against a store bound to one serializable transaction,
// so conflict scans and the write they guard cannot interleave with a
// concurrent booking on the same dimension keys.
func (s *GormStore) Transaction(ctx context.Context, fn func(schedule.Store, schedule.ConflictDetector) error) error {
	run := func(tx *gorm.DB) error {
		txStore := NewGormStore(tx)
		return fn(txStore, txStore)
	}
	// SQLite is serializable by construction (single writer); ask for it
	// explicitly everywhere else.
	if s.db.Dialector.Name() == "sqlite" {
		return s.db.WithContext(ctx).Transaction(run)
	}
	return s.db.WithContext(ctx).Transaction(run, &sql.TxOptions{Isolation: sql.LevelSerializable})
}

// HasConflict reports whether the candidate window collides with an existing
// non-cancelled appointment on the given dimension.
//
// The resource scan uses a widened window: existing start times are matched
// in [start - duration, end] with duration taken from the candidate window
// itself, so equal-duration bookings cannot sit back to back.
// The requester scan is the plain inclusive [start, end] containment. The
// asymmetry is contractual; do not unify the two.
func (s *GormStore) HasConflict(ctx context.Context, dim schedule.Dimension, key string, start, end time.Time, excludeID string) (bool, error) {
	q := s.db.WithContext(ctx).Model(&model.Appointment{}).
		Where("status <> ?", model.StatusCancelled)

	switch dim {
	case schedule.DimensionResource:
		duration := end.Sub(start)
		q = q.Where("resource_id = ?", key).
			Where("start_time BETWEEN ? AND ?", start.Add(-duration), end)
	case schedule.DimensionRequester:
		q = q.Where("requester_id = ?", key).
			Where("start_time BETWEEN ? AND ?", start, end)
	default:
		return false, fmt.Errorf("unknown conflict dimension %d", dim)
	}

	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}

	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, fmt.Errorf("conflict scan failed: %w", err)
	}
	return n > 0, nil
}
