package store

import (
	"context"
	"fmt"

	"staffcall-backend/internal/model"
)

func (s *gormStore) ListNotificationTypes(ctx context.Context, restaurantID string) ([]model.NotificationType, error) {
	var types []model.NotificationType
	err := s.db.WithContext(ctx).
		Where("restaurant_id = ?", restaurantID).
		Order("sort_order, id").
		Find(&types).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notification types: %w", err)
	}
	return types, nil
}

func (s *gormStore) CountNotificationTypes(ctx context.Context, restaurantID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.NotificationType{}).Where("restaurant_id = ?", restaurantID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count notification types: %w", err)
	}
	return count, nil
}

func (s *gormStore) CreateNotificationTypes(ctx context.Context, types []model.NotificationType) error {
	if len(types) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Create(&types).Error; err != nil {
		return fmt.Errorf("failed to create notification types: %w", err)
	}
	return nil
}

func (s *gormStore) GetNotificationType(ctx context.Context, id string) (*model.NotificationType, error) {
	var t model.NotificationType
	if err := s.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (s *gormStore) DeleteNotificationType(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Delete(&model.NotificationType{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete notification type %s: %w", id, err)
	}
	return nil
}
