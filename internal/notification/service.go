package notification

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"staffcall-backend/internal/apperr"
	"staffcall-backend/internal/model"
	"staffcall-backend/internal/ratelimit"
	"staffcall-backend/internal/store"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Dispatcher schedules push delivery for a stored notification.
type Dispatcher interface {
	Dispatch(notificationID string)
}

// SendLimiter caps how many notifications one sender may send per window.
type SendLimiter interface {
	Check(ctx context.Context, identifier string, action model.RateLimitAction) (ratelimit.Status, error)
	Record(ctx context.Context, identifier string, action model.RateLimitAction) error
}

type serviceStore interface {
	CreateNotification(ctx context.Context, n *model.Notification) error
	GetNotification(ctx context.Context, id string) (*model.Notification, error)
	ListDirectNotifications(ctx context.Context, restaurantID, userID string, limit int) ([]model.Notification, error)
	ListRoleNotifications(ctx context.Context, restaurantID, toRole string, limit int) ([]model.Notification, error)
	AddReader(ctx context.Context, notificationID, userID string, at time.Time) (bool, error)
	GetUsersByID(ctx context.Context, ids []string) (map[string]model.User, error)
	MembershipsForUsers(ctx context.Context, restaurantID string, userIDs []string) (map[string]model.Membership, error)
}

// SendInput carries the fields of a new notification as they arrive from a client.
// Exactly one of ToUserID and ToRole must be set; ToRole "all" broadcasts.
type SendInput struct {
	RestaurantID string
	FromUserID   string
	ToUserID     string
	ToRole       string
	Title        string
	Message      *string
	Priority     model.Priority
	Category     model.Category
}

// Entry is a notification as seen by one viewer.
type Entry struct {
	ID           string         `json:"id"`
	RestaurantID string         `json:"restaurantId"`
	FromUserID   string         `json:"fromUserId"`
	FromUserName string         `json:"fromUserName"`
	FromUserRole model.Role     `json:"fromUserRole"`
	ToUserID     *string        `json:"toUserId,omitempty"`
	ToRole       *string        `json:"toRole,omitempty"`
	Title        string         `json:"title"`
	Message      *string        `json:"message,omitempty"`
	Priority     model.Priority `json:"priority"`
	Category     model.Category `json:"category"`
	PushSent     bool           `json:"pushSent"`
	ReadBy       []string       `json:"readBy"`
	IsRead       bool           `json:"isRead"`
	CreatedAt    time.Time      `json:"createdAt"`
}

// Service implements sending, listing and read tracking of notifications.
type Service struct {
	store      serviceStore
	dispatcher Dispatcher
	limiter    SendLimiter
	now        func() time.Time
	unread     singleflight.Group
}

func NewService(s serviceStore, dispatcher Dispatcher) *Service {
	return &Service{
		store:      s,
		dispatcher: dispatcher,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// SetLimiter enables per-sender send limits.
func (s *Service) SetLimiter(l SendLimiter) {
	s.limiter = l
}

// SetClock overrides the time source, for tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Send validates and stores a notification, then hands it to the dispatcher. It
// returns as soon as the record is committed.
func (s *Service) Send(ctx context.Context, in SendInput) (string, error) {
	target, ok := model.ParseTarget(in.ToUserID, in.ToRole)
	if !ok {
		return "", apperr.ErrInvalidTarget
	}
	if !in.Priority.Valid() {
		return "", apperr.ErrInvalidPriority
	}
	if !in.Category.Valid() {
		return "", apperr.ErrInvalidCategory
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return "", apperr.ErrTitleRequired
	}

	if s.limiter != nil {
		status, err := s.limiter.Check(ctx, in.FromUserID, model.ActionNotification)
		if err != nil {
			return "", err
		}
		if !status.Allowed {
			return "", ratelimit.Exceeded("bildirim gönderimi", status.ResetAt)
		}
	}

	n := model.NewNotification(in.RestaurantID, in.FromUserID, target, title, in.Message, in.Priority, in.Category)
	n.CreatedAt = s.now()
	if err := s.store.CreateNotification(ctx, n); err != nil {
		return "", err
	}

	if s.limiter != nil {
		if err := s.limiter.Record(ctx, in.FromUserID, model.ActionNotification); err != nil {
			log.Printf("Failed to record send attempt for %s: %v", in.FromUserID, err)
		}
	}
	if s.dispatcher != nil {
		s.dispatcher.Dispatch(n.ID)
	}
	return n.ID, nil
}

// ListByUser returns the newest notifications addressed to the viewer directly, to
// their role, or to everyone, newest first. The page is cut to limit before
// senders are resolved, so entries from deleted senders leave it short rather
// than being backfilled with older rows.
func (s *Service) ListByUser(ctx context.Context, restaurantID, userID string, role model.Role, limit int) ([]Entry, error) {
	limit = clampLimit(limit)

	notifications, err := s.relevant(ctx, restaurantID, userID, role, limit)
	if err != nil {
		return nil, err
	}
	if len(notifications) > limit {
		notifications = notifications[:limit]
	}
	return s.enrich(ctx, restaurantID, userID, notifications)
}

// MarkAsRead adds userID to the notification's read set. Repeating it is a no-op.
func (s *Service) MarkAsRead(ctx context.Context, notificationID, userID string) error {
	if _, err := s.store.GetNotification(ctx, notificationID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.ErrNotificationNotFound
		}
		return err
	}
	_, err := s.store.AddReader(ctx, notificationID, userID, s.now())
	return err
}

// UnreadCount counts the viewer's relevant notifications they have not read.
// Identical concurrent calls share one computation, which is not tied to any
// single caller's cancellation; each caller still returns early on its own ctx.
func (s *Service) UnreadCount(ctx context.Context, restaurantID, userID string, role model.Role) (int, error) {
	key := restaurantID + "|" + userID + "|" + string(role)
	shared := context.WithoutCancel(ctx)
	ch := s.unread.DoChan(key, func() (any, error) {
		notifications, err := s.relevant(shared, restaurantID, userID, role, 0)
		if err != nil {
			return 0, err
		}
		count := 0
		for i := range notifications {
			if !notifications[i].IsReadBy(userID) {
				count++
			}
		}
		return count, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return 0, res.Err
		}
		return res.Val.(int), nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// relevant merges the direct, role and broadcast queries, each capped at limit,
// de-duplicated and sorted newest first. A non-positive limit loads everything.
func (s *Service) relevant(ctx context.Context, restaurantID, userID string, role model.Role, limit int) ([]model.Notification, error) {
	var batches [][]model.Notification

	direct, err := s.store.ListDirectNotifications(ctx, restaurantID, userID, limit)
	if err != nil {
		return nil, err
	}
	batches = append(batches, direct)

	if role != "" && string(role) != model.RoleAll {
		byRole, err := s.store.ListRoleNotifications(ctx, restaurantID, string(role), limit)
		if err != nil {
			return nil, err
		}
		batches = append(batches, byRole)
	}

	broadcast, err := s.store.ListRoleNotifications(ctx, restaurantID, model.RoleAll, limit)
	if err != nil {
		return nil, err
	}
	batches = append(batches, broadcast)

	seen := make(map[string]struct{})
	var merged []model.Notification
	for _, batch := range batches {
		for _, n := range batch {
			if _, dup := seen[n.ID]; dup {
				continue
			}
			seen[n.ID] = struct{}{}
			merged = append(merged, n)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if !merged[i].CreatedAt.Equal(merged[j].CreatedAt) {
			return merged[i].CreatedAt.After(merged[j].CreatedAt)
		}
		return merged[i].ID > merged[j].ID
	})
	return merged, nil
}

// enrich attaches the sender's current name and role. Entries whose sender no
// longer exists are dropped.
func (s *Service) enrich(ctx context.Context, restaurantID, viewerID string, notifications []model.Notification) ([]Entry, error) {
	if len(notifications) == 0 {
		return []Entry{}, nil
	}

	senderIDs := make([]string, 0, len(notifications))
	seen := make(map[string]struct{})
	for _, n := range notifications {
		if _, ok := seen[n.FromUserID]; !ok {
			seen[n.FromUserID] = struct{}{}
			senderIDs = append(senderIDs, n.FromUserID)
		}
	}

	senders, err := s.store.GetUsersByID(ctx, senderIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load senders: %w", err)
	}
	memberships, err := s.store.MembershipsForUsers(ctx, restaurantID, senderIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load sender roles: %w", err)
	}

	entries := make([]Entry, 0, len(notifications))
	for i := range notifications {
		n := &notifications[i]
		sender, ok := senders[n.FromUserID]
		if !ok {
			continue
		}
		entries = append(entries, Entry{
			ID:           n.ID,
			RestaurantID: n.RestaurantID,
			FromUserID:   n.FromUserID,
			FromUserName: sender.Name,
			FromUserRole: memberships[n.FromUserID].Role,
			ToUserID:     n.ToUserID,
			ToRole:       n.ToRole,
			Title:        n.Title,
			Message:      n.Message,
			Priority:     n.Priority,
			Category:     n.Category,
			PushSent:     n.PushSent,
			ReadBy:       n.ReadBy(),
			IsRead:       n.IsReadBy(viewerID),
			CreatedAt:    n.CreatedAt,
		})
	}
	return entries, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	}
	return limit
}
