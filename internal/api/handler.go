package api

import (
	"github.com/go-playground/validator/v10"
	"github.com/patrickmn/go-cache"

	"staffcall-backend/internal/account"
	"staffcall-backend/internal/membership"
	"staffcall-backend/internal/notification"
	"staffcall-backend/internal/notificationtype"
	"staffcall-backend/internal/push"
)

// Services are the domain services the API exposes.
type Services struct {
	Accounts      *account.Service
	Memberships   *membership.Service
	Notifications *notification.Service
	Types         *notificationtype.Service
	// WebPush is nil when VAPID keys are not configured.
	WebPush *push.WebPush
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	accounts      *account.Service
	memberships   *membership.Service
	notifications *notification.Service
	types         *notificationtype.Service
	webpush       *push.WebPush
	validator     *validator.Validate
	cache         *cache.Cache
}

// NewHandler creates a new API handler. responses caches GET responses and is
// invalidated by the handlers that change them.
func NewHandler(svc Services, v *validator.Validate, responses *cache.Cache) *Handler {
	return &Handler{
		accounts:      svc.Accounts,
		memberships:   svc.Memberships,
		notifications: svc.Notifications,
		types:         svc.Types,
		webpush:       svc.WebPush,
		validator:     v,
		cache:         responses,
	}
}
