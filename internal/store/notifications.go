package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"staffcall-backend/internal/model"
)

func (s *gormStore) CreateNotification(ctx context.Context, n *model.Notification) error {
	if err := s.db.WithContext(ctx).Omit("Reads").Create(n).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// GetNotification loads a notification together with its read set.
func (s *gormStore) GetNotification(ctx context.Context, id string) (*model.Notification, error) {
	var n model.Notification
	if err := s.withReads(ctx).First(&n, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &n, nil
}

// ListDirectNotifications returns the newest notifications addressed to userID within a
// restaurant. A non-positive limit returns all of them.
func (s *gormStore) ListDirectNotifications(ctx context.Context, restaurantID, userID string, limit int) ([]model.Notification, error) {
	q := s.withReads(ctx).Where("restaurant_id = ? AND to_user_id = ?", restaurantID, userID)
	return s.listNewest(q, limit)
}

// ListRoleNotifications returns the newest notifications whose to_role equals toRole
// ("all" for broadcasts). A non-positive limit returns all of them.
func (s *gormStore) ListRoleNotifications(ctx context.Context, restaurantID, toRole string, limit int) ([]model.Notification, error) {
	q := s.withReads(ctx).Where("restaurant_id = ? AND to_role = ?", restaurantID, toRole)
	return s.listNewest(q, limit)
}

func (s *gormStore) withReads(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Preload("Reads", func(db *gorm.DB) *gorm.DB {
		return db.Order("read_at")
	})
}

func (s *gormStore) listNewest(q *gorm.DB, limit int) ([]model.Notification, error) {
	q = q.Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []model.Notification
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return out, nil
}

// AddReader inserts userID into the read set. It reports whether a row was added;
// an existing reader is left untouched.
func (s *gormStore) AddReader(ctx context.Context, notificationID, userID string, at time.Time) (bool, error) {
	read := model.NotificationRead{NotificationID: notificationID, UserID: userID, ReadAt: at}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&read)
	if res.Error != nil {
		return false, fmt.Errorf("failed to mark notification %s read: %w", notificationID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// MarkPushSent flips push_sent to true. It reports false when the flag was already set.
func (s *gormStore) MarkPushSent(ctx context.Context, notificationID string) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("id = ? AND push_sent = ?", notificationID, false).
		Update("push_sent", true)
	if res.Error != nil {
		return false, fmt.Errorf("failed to mark push sent for %s: %w", notificationID, res.Error)
	}
	return res.RowsAffected > 0, nil
}
