package notificationtype

import (
	"context"
	"errors"
	"strings"

	"staffcall-backend/internal/apperr"
	"staffcall-backend/internal/model"
	"staffcall-backend/internal/store"
)

// Template is the content of a quick-send button.
type Template struct {
	Title string
	Icon  string
	Color string
}

// Defaults are installed by CreateDefaults, in display order.
var Defaults = []Template{
	{Title: "Moladayım", Icon: "☕", Color: "#2196F3"},
	{Title: "Acil Yardım Lazım", Icon: "🆘", Color: "#F44336"},
	{Title: "Sipariş Hazır", Icon: "✅", Color: "#4CAF50"},
	{Title: "Malzeme Bitti", Icon: "📦", Color: "#FF9800"},
	{Title: "Müşteri Çağırıyor", Icon: "🔔", Color: "#9C27B0"},
}

type typeStore interface {
	store.NotificationTypeStore
	GetRestaurant(ctx context.Context, id string) (*model.Restaurant, error)
}

// Service manages a restaurant's notification types. Only the owner may change them.
type Service struct {
	store typeStore
}

func NewService(s typeStore) *Service {
	return &Service{store: s}
}

// List returns the restaurant's types in display order.
func (s *Service) List(ctx context.Context, restaurantID string) ([]model.NotificationType, error) {
	types, err := s.store.ListNotificationTypes(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	if types == nil {
		types = []model.NotificationType{}
	}
	return types, nil
}

// Create appends a type after the existing ones.
func (s *Service) Create(ctx context.Context, restaurantID, userID string, tmpl Template) (*model.NotificationType, error) {
	if err := s.requireOwner(ctx, restaurantID, userID, apperr.ErrNotOwnerCreateType); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(tmpl.Title)
	if title == "" {
		return nil, apperr.ErrTitleRequired
	}

	count, err := s.store.CountNotificationTypes(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	t := model.NotificationType{
		RestaurantID: restaurantID,
		Title:        title,
		Icon:         tmpl.Icon,
		Color:        tmpl.Color,
		Order:        int(count),
	}
	types := []model.NotificationType{t}
	if err := s.store.CreateNotificationTypes(ctx, types); err != nil {
		return nil, err
	}
	return &types[0], nil
}

// Delete removes a type and returns it so callers know which restaurant changed.
func (s *Service) Delete(ctx context.Context, typeID, userID string) (*model.NotificationType, error) {
	t, err := s.store.GetNotificationType(ctx, typeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.ErrNotificationTypeNotFound
		}
		return nil, err
	}
	if err := s.requireOwner(ctx, t.RestaurantID, userID, apperr.ErrNotOwnerDeleteType); err != nil {
		return nil, err
	}
	if err := s.store.DeleteNotificationType(ctx, typeID); err != nil {
		return nil, err
	}
	return t, nil
}

// CreateDefaults installs the default templates. It does nothing unless userID
// owns the restaurant.
func (s *Service) CreateDefaults(ctx context.Context, restaurantID, userID string) error {
	err := s.requireOwner(ctx, restaurantID, userID, apperr.ErrNotOwnerCreateType)
	if apperr.KindOf(err) == apperr.KindForbidden || errors.Is(err, apperr.ErrRestaurantNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	types := make([]model.NotificationType, 0, len(Defaults))
	for i, d := range Defaults {
		types = append(types, model.NotificationType{
			RestaurantID: restaurantID,
			Title:        d.Title,
			Icon:         d.Icon,
			Color:        d.Color,
			Order:        i,
		})
	}
	return s.store.CreateNotificationTypes(ctx, types)
}

func (s *Service) requireOwner(ctx context.Context, restaurantID, userID string, notOwner error) error {
	r, err := s.store.GetRestaurant(ctx, restaurantID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.ErrRestaurantNotFound
		}
		return err
	}
	if r.OwnerID != userID {
		return notOwner
	}
	return nil
}
