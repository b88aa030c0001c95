package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"staffcall-backend/internal/model"
)

// CreateRestaurant inserts the restaurant and its owner membership in one transaction.
func (s *gormStore) CreateRestaurant(ctx context.Context, restaurant *model.Restaurant, owner *model.Membership) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(restaurant).Error; err != nil {
			return fmt.Errorf("failed to create restaurant: %w", err)
		}
		owner.RestaurantID = restaurant.ID
		if err := tx.Create(owner).Error; err != nil {
			return fmt.Errorf("failed to create owner membership for restaurant %s: %w", restaurant.ID, err)
		}
		return nil
	})
}

func (s *gormStore) GetRestaurant(ctx context.Context, id string) (*model.Restaurant, error) {
	var r model.Restaurant
	if err := s.db.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

func (s *gormStore) GetRestaurantByInviteCode(ctx context.Context, code string) (*model.Restaurant, error) {
	var r model.Restaurant
	if err := s.db.WithContext(ctx).First(&r, "invite_code = ?", code).Error; err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

func (s *gormStore) GetRestaurantsByID(ctx context.Context, ids []string) (map[string]model.Restaurant, error) {
	restaurants := make(map[string]model.Restaurant, len(ids))
	if len(ids) == 0 {
		return restaurants, nil
	}
	var rows []model.Restaurant
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load restaurants: %w", err)
	}
	for _, r := range rows {
		restaurants[r.ID] = r
	}
	return restaurants, nil
}

func (s *gormStore) InviteCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Restaurant{}).Where("invite_code = ?", code).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check invite code: %w", err)
	}
	return count > 0, nil
}

func (s *gormStore) UpdateInviteCode(ctx context.Context, restaurantID, code string) error {
	return s.updateRestaurant(ctx, restaurantID, "invite_code", code)
}

func (s *gormStore) RenameRestaurant(ctx context.Context, restaurantID, name string) error {
	return s.updateRestaurant(ctx, restaurantID, "name", name)
}

func (s *gormStore) updateRestaurant(ctx context.Context, restaurantID, column string, value any) error {
	res := s.db.WithContext(ctx).Model(&model.Restaurant{}).Where("id = ?", restaurantID).Update(column, value)
	if res.Error != nil {
		return fmt.Errorf("failed to update %s of restaurant %s: %w", column, restaurantID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormStore) CreateMembership(ctx context.Context, membership *model.Membership) error {
	if err := s.db.WithContext(ctx).Create(membership).Error; err != nil {
		return fmt.Errorf("failed to create membership: %w", err)
	}
	return nil
}

func (s *gormStore) GetMembership(ctx context.Context, userID, restaurantID string) (*model.Membership, error) {
	var m model.Membership
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND restaurant_id = ?", userID, restaurantID).
		First(&m).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

// ListMembers returns every membership of a restaurant in join order.
func (s *gormStore) ListMembers(ctx context.Context, restaurantID string) ([]model.Membership, error) {
	var members []model.Membership
	err := s.db.WithContext(ctx).
		Where("restaurant_id = ?", restaurantID).
		Order("joined_at, id").
		Find(&members).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list members of restaurant %s: %w", restaurantID, err)
	}
	return members, nil
}

func (s *gormStore) ListMembershipsByUser(ctx context.Context, userID string) ([]model.Membership, error) {
	var members []model.Membership
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("joined_at, id").
		Find(&members).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships of user %s: %w", userID, err)
	}
	return members, nil
}

// MembershipsForUsers maps user id to membership for the given users within one restaurant.
func (s *gormStore) MembershipsForUsers(ctx context.Context, restaurantID string, userIDs []string) (map[string]model.Membership, error) {
	out := make(map[string]model.Membership, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	var rows []model.Membership
	err := s.db.WithContext(ctx).
		Where("restaurant_id = ? AND user_id IN ?", restaurantID, userIDs).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load memberships of restaurant %s: %w", restaurantID, err)
	}
	for _, m := range rows {
		out[m.UserID] = m
	}
	return out, nil
}

func (s *gormStore) CountMembers(ctx context.Context, restaurantIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(restaurantIDs))
	if len(restaurantIDs) == 0 {
		return counts, nil
	}
	type countRow struct {
		RestaurantID string
		Total        int64
	}
	var rows []countRow
	err := s.db.WithContext(ctx).
		Model(&model.Membership{}).
		Select("restaurant_id AS restaurant_id, COUNT(*) AS total").
		Where("restaurant_id IN ?", restaurantIDs).
		Group("restaurant_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count members: %w", err)
	}
	for _, r := range rows {
		counts[r.RestaurantID] = r.Total
	}
	return counts, nil
}

// UpdatePresence stores a heartbeat. It reports false when the user is not a member.
func (s *gormStore) UpdatePresence(ctx context.Context, userID, restaurantID string, online bool, at time.Time) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&model.Membership{}).
		Where("user_id = ? AND restaurant_id = ?", userID, restaurantID).
		Updates(map[string]any{"is_online": online, "last_seen": at})
	if res.Error != nil {
		return false, fmt.Errorf("failed to update presence: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
