package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"staffcall-backend/config"
	"staffcall-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(svc Services, cfg config.ServerConfig) *gin.Engine {
	r := gin.Default()

	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(ttl, 2*ttl)
	handler := NewHandler(svc, NewValidator(), cacheStore)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)
	typesCache := mw.Cache(cacheStore, ttl, typesCacheKeyFor)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.POST("/users", handler.Signup)
		api.POST("/sessions", handler.Login)
		api.GET("/users/:user_id", handler.GetUser)
		api.PUT("/users/:user_id/push_token", handler.PutPushToken)
		api.PUT("/users/:user_id/subscriptions", handler.PutSubscription)
		api.DELETE("/users/:user_id/subscriptions", handler.DeleteSubscription)
		api.GET("/users/:user_id/restaurants", handler.GetUserRestaurants)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)

		api.POST("/restaurants", handler.CreateRestaurant)
		api.GET("/restaurants/:restaurant_id", handler.GetRestaurant)
		api.PATCH("/restaurants/:restaurant_id", handler.RenameRestaurant)
		api.POST("/restaurants/:restaurant_id/invite_code", handler.RefreshInviteCode)
		api.GET("/restaurants/:restaurant_id/members", handler.GetMembers)
		api.PUT("/restaurants/:restaurant_id/members/:user_id/presence", handler.PutPresence)
		api.GET("/invites/:code", handler.GetInvite)
		api.POST("/memberships", handler.JoinRestaurant)

		api.GET("/restaurants/:restaurant_id/notification_types", typesCache, handler.GetNotificationTypes)
		api.POST("/restaurants/:restaurant_id/notification_types", handler.CreateNotificationType)
		api.POST("/restaurants/:restaurant_id/notification_types/defaults", handler.CreateDefaultNotificationTypes)
		api.DELETE("/notification_types/:type_id", handler.DeleteNotificationType)

		api.POST("/restaurants/:restaurant_id/notifications", handler.SendNotification)
		api.GET("/restaurants/:restaurant_id/notifications", handler.ListNotifications)
		api.GET("/restaurants/:restaurant_id/notifications/unread_count", handler.GetUnreadCount)
		api.POST("/notifications/:notification_id/read", handler.MarkAsRead)
	}

	return r
}
