package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"clinic-logistics-backend/internal/model"
	"clinic-logistics-backend/internal/schedule"
)

// FindActiveResource resolves an exam resource that is still bookable.
// Inactive resources are treated the same as absent ones.
func (s *GormStore) FindActiveResource(ctx context.Context, id string) (*model.ExamResource, error) {
	var res model.ExamResource
	err := s.db.WithContext(ctx).Where("id = ? AND active = ?", id, true).First(&res).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, schedule.ErrResourceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load resource %s: %w", id, err)
	}
	return &res, nil
}
