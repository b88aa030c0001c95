package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"staffcall-backend/internal/model"
)

// ErrNotFound is returned when a looked-up record does not exist.
var ErrNotFound = errors.New("record not found")

// UserStore persists staff accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUsersByID(ctx context.Context, ids []string) (map[string]model.User, error)
	SetPushToken(ctx context.Context, userID, token string) error
}

// RestaurantStore persists restaurants and their memberships.
type RestaurantStore interface {
	CreateRestaurant(ctx context.Context, restaurant *model.Restaurant, owner *model.Membership) error
	GetRestaurant(ctx context.Context, id string) (*model.Restaurant, error)
	GetRestaurantByInviteCode(ctx context.Context, code string) (*model.Restaurant, error)
	GetRestaurantsByID(ctx context.Context, ids []string) (map[string]model.Restaurant, error)
	InviteCodeExists(ctx context.Context, code string) (bool, error)
	UpdateInviteCode(ctx context.Context, restaurantID, code string) error
	RenameRestaurant(ctx context.Context, restaurantID, name string) error

	CreateMembership(ctx context.Context, membership *model.Membership) error
	GetMembership(ctx context.Context, userID, restaurantID string) (*model.Membership, error)
	ListMembers(ctx context.Context, restaurantID string) ([]model.Membership, error)
	ListMembershipsByUser(ctx context.Context, userID string) ([]model.Membership, error)
	MembershipsForUsers(ctx context.Context, restaurantID string, userIDs []string) (map[string]model.Membership, error)
	CountMembers(ctx context.Context, restaurantIDs []string) (map[string]int64, error)
	UpdatePresence(ctx context.Context, userID, restaurantID string, online bool, at time.Time) (bool, error)
}

// NotificationTypeStore persists quick-send templates.
type NotificationTypeStore interface {
	ListNotificationTypes(ctx context.Context, restaurantID string) ([]model.NotificationType, error)
	CountNotificationTypes(ctx context.Context, restaurantID string) (int64, error)
	CreateNotificationTypes(ctx context.Context, types []model.NotificationType) error
	GetNotificationType(ctx context.Context, id string) (*model.NotificationType, error)
	DeleteNotificationType(ctx context.Context, id string) error
}

// NotificationStore persists notifications and their read sets.
type NotificationStore interface {
	CreateNotification(ctx context.Context, n *model.Notification) error
	GetNotification(ctx context.Context, id string) (*model.Notification, error)
	ListDirectNotifications(ctx context.Context, restaurantID, userID string, limit int) ([]model.Notification, error)
	ListRoleNotifications(ctx context.Context, restaurantID, toRole string, limit int) ([]model.Notification, error)
	AddReader(ctx context.Context, notificationID, userID string, at time.Time) (bool, error)
	MarkPushSent(ctx context.Context, notificationID string) (bool, error)
}

// RateLimitStore persists sliding-window attempt records.
type RateLimitStore interface {
	ListAttemptTimes(ctx context.Context, identifier string, action model.RateLimitAction, since time.Time) ([]time.Time, error)
	RecordAttempt(ctx context.Context, record *model.RateLimitRecord) error
	DeleteAttemptsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// SubscriptionStore persists browser push subscriptions.
type SubscriptionStore interface {
	UpsertPushSubscription(ctx context.Context, sub *model.PushSubscription) error
	ListPushSubscriptions(ctx context.Context, userIDs []string) ([]model.PushSubscription, error)
	DeletePushSubscription(ctx context.Context, endpoint string) error
}

// Store defines the interface for all database operations.
type Store interface {
	UserStore
	RestaurantStore
	NotificationTypeStore
	NotificationStore
	RateLimitStore
	SubscriptionStore
	DB() *gorm.DB
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// DB exposes the underlying connection for health checks and tests.
func (s *gormStore) DB() *gorm.DB {
	return s.db
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
