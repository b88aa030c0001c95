package store

import (
	"context"
	"fmt"
	"time"

	"staffcall-backend/internal/model"
)

// ListAttemptTimes returns the timestamps of attempts at or after since, oldest first.
func (s *gormStore) ListAttemptTimes(ctx context.Context, identifier string, action model.RateLimitAction, since time.Time) ([]time.Time, error) {
	var times []time.Time
	err := s.db.WithContext(ctx).
		Model(&model.RateLimitRecord{}).
		Where("identifier = ? AND action = ? AND timestamp >= ?", identifier, action, since).
		Order("timestamp").
		Pluck("timestamp", &times).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list %s attempts: %w", action, err)
	}
	return times, nil
}

func (s *gormStore) RecordAttempt(ctx context.Context, record *model.RateLimitRecord) error {
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to record %s attempt: %w", record.Action, err)
	}
	return nil
}

// DeleteAttemptsBefore removes records older than cutoff and returns how many were removed.
func (s *gormStore) DeleteAttemptsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("timestamp < ?", cutoff).Delete(&model.RateLimitRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete stale attempts: %w", res.Error)
	}
	return res.RowsAffected, nil
}
