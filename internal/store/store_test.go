package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"clinic-logistics-backend/internal/model"
	"clinic-logistics-backend/internal/schedule"
)

func newTestStore(t *testing.T, name string) *GormStore {
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.ExamResource{}, &model.Appointment{}))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return NewGormStore(db)
}

// 2025-01-06 is a Monday.
func at(hour, min int) time.Time {
	return time.Date(2025, 1, 6, hour, min, 0, 0, time.UTC)
}

func seedAppointment(t *testing.T, s *GormStore, id, requesterID, resourceID string, start time.Time, status model.AppointmentStatus) {
	t.Helper()
	require.NoError(t, s.Insert(context.Background(), &model.Appointment{
		ID:          id,
		RequesterID: requesterID,
		ResourceID:  resourceID,
		StartTime:   start,
		Status:      status,
	}))
}

func TestHasConflict_ResourceDimension(t *testing.T) {
	s := newTestStore(t, "conflict_resource")
	ctx := context.Background()

	// Existing booking on resource X: 09:00, 30 minute slot.
	seedAppointment(t, s, "a1", "p1", "x", at(9, 0), model.StatusScheduled)

	testCases := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{"partial overlap from inside", at(9, 15), at(9, 45), true},
		{"identical window", at(9, 0), at(9, 30), true},
		{"back-to-back after, zero gap, still rejected", at(9, 30), at(10, 0), true},
		{"back-to-back before, zero gap, still rejected", at(8, 30), at(9, 0), true},
		{"one minute of clearance after", at(9, 31), at(10, 1), false},
		{"well clear before", at(8, 0), at(8, 29), false},
		{"other resource key", at(9, 0), at(9, 30), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			key := "x"
			if tc.name == "other resource key" {
				key = "y"
			}
			hit, err := s.HasConflict(ctx, schedule.DimensionResource, key, tc.start, tc.end, "")
			require.NoError(t, err)
			assert.Equal(t, tc.want, hit)
		})
	}
}

func TestHasConflict_RequesterDimension(t *testing.T) {
	s := newTestStore(t, "conflict_requester")
	ctx := context.Background()

	// Requester p1 is booked at 09:00 (on resource x, but the requester scan
	// spans resources).
	seedAppointment(t, s, "a1", "p1", "x", at(9, 0), model.StatusScheduled)

	testCases := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{"window containing the existing start", at(8, 45), at(9, 15), true},
		{"inclusive lower boundary", at(9, 0), at(9, 30), true},
		{"inclusive upper boundary", at(8, 30), at(9, 0), true},
		{"back-to-back after existing slot is accepted", at(9, 30), at(10, 0), false},
		{"well clear", at(10, 0), at(10, 30), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			hit, err := s.HasConflict(ctx, schedule.DimensionRequester, "p1", tc.start, tc.end, "")
			require.NoError(t, err)
			assert.Equal(t, tc.want, hit)
		})
	}

	t.Run("other requester key", func(t *testing.T) {
		hit, err := s.HasConflict(ctx, schedule.DimensionRequester, "p2", at(8, 45), at(9, 15), "")
		require.NoError(t, err)
		assert.False(t, hit)
	})
}

func TestHasConflict_ExclusionsAndCancelled(t *testing.T) {
	s := newTestStore(t, "conflict_exclusions")
	ctx := context.Background()

	seedAppointment(t, s, "a1", "p1", "x", at(9, 0), model.StatusScheduled)
	seedAppointment(t, s, "a2", "p2", "x", at(11, 0), model.StatusCancelled)

	t.Run("excluding own id removes self-conflict", func(t *testing.T) {
		hit, err := s.HasConflict(ctx, schedule.DimensionResource, "x", at(9, 0), at(9, 30), "a1")
		require.NoError(t, err)
		assert.False(t, hit)

		hit, err = s.HasConflict(ctx, schedule.DimensionRequester, "p1", at(9, 0), at(9, 30), "a1")
		require.NoError(t, err)
		assert.False(t, hit)
	})

	t.Run("cancelled bookings never conflict", func(t *testing.T) {
		hit, err := s.HasConflict(ctx, schedule.DimensionResource, "x", at(11, 0), at(11, 30), "")
		require.NoError(t, err)
		assert.False(t, hit)

		hit, err = s.HasConflict(ctx, schedule.DimensionRequester, "p2", at(11, 0), at(11, 30), "")
		require.NoError(t, err)
		assert.False(t, hit)
	})
}

func TestGetByID_NotFound(t *testing.T) {
	s := newTestStore(t, "getbyid")

	_, err := s.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, schedule.ErrNotFound)
}

func TestQuery_FiltersAndOrdering(t *testing.T) {
	s := newTestStore(t, "query")
	ctx := context.Background()

	seedAppointment(t, s, "a1", "p1", "x", at(14, 0), model.StatusScheduled)
	seedAppointment(t, s, "a2", "p2", "x", at(9, 0), model.StatusScheduled)
	seedAppointment(t, s, "a3", "p1", "y", at(11, 0), model.StatusCancelled)

	t.Run("no filters returns everything ascending", func(t *testing.T) {
		appts, err := s.Query(ctx, schedule.Filter{})
		require.NoError(t, err)
		require.Len(t, appts, 3)
		assert.Equal(t, "a2", appts[0].ID)
		assert.Equal(t, "a3", appts[1].ID)
		assert.Equal(t, "a1", appts[2].ID)
	})

	t.Run("filters are AND-combined", func(t *testing.T) {
		from := at(10, 0)
		appts, err := s.Query(ctx, schedule.Filter{
			StartFrom:   &from,
			RequesterID: "p1",
		})
		require.NoError(t, err)
		require.Len(t, appts, 2)
		assert.Equal(t, "a3", appts[0].ID)
		assert.Equal(t, "a1", appts[1].ID)
	})

	t.Run("status and window filters", func(t *testing.T) {
		from, to := at(8, 0), at(12, 0)
		appts, err := s.Query(ctx, schedule.Filter{
			StartFrom: &from,
			StartTo:   &to,
			Status:    model.StatusScheduled,
		})
		require.NoError(t, err)
		require.Len(t, appts, 1)
		assert.Equal(t, "a2", appts[0].ID)
	})
}

func TestTransaction_RollsBackOnError(t *testing.T) {
	s := newTestStore(t, "txrollback")
	ctx := context.Background()

	sentinel := errors.New("boom")
	err := s.Transaction(ctx, func(txStore schedule.Store, _ schedule.ConflictDetector) error {
		if err := txStore.Insert(ctx, &model.Appointment{
			ID:          "tx1",
			RequesterID: "p1",
			ResourceID:  "x",
			StartTime:   at(9, 0),
			Status:      model.StatusScheduled,
		}); err != nil {
			return err
		}
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)

	_, err = s.GetByID(ctx, "tx1")
	assert.ErrorIs(t, err, schedule.ErrNotFound)
}

func TestFindActiveResource(t *testing.T) {
	s := newTestStore(t, "resources")
	ctx := context.Background()

	require.NoError(t, s.DB().Create(&model.ExamResource{
		ID: "x", Name: "Ultrasound", EstimatedDurationMinutes: 30, Active: true,
	}).Error)
	require.NoError(t, s.DB().Create(&model.ExamResource{
		ID: "y", Name: "Old Scanner", EstimatedDurationMinutes: 15, Active: false,
	}).Error)

	res, err := s.FindActiveResource(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, 30, res.EstimatedDurationMinutes)

	_, err = s.FindActiveResource(ctx, "y")
	assert.ErrorIs(t, err, schedule.ErrResourceNotFound)

	_, err = s.FindActiveResource(ctx, "missing")
	assert.ErrorIs(t, err, schedule.ErrResourceNotFound)
}
