package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"staffcall-backend/internal/model"
	"staffcall-backend/internal/notification"
)

type sendRequest struct {
	FromUserID string  `json:"fromUserId" validate:"required"`
	ToUserID   string  `json:"toUserId" validate:"required_without=ToRole,excluded_with=ToRole"`
	ToRole     string  `json:"toRole" validate:"omitempty,targetrole"`
	Title      string  `json:"title" validate:"required"`
	Message    *string `json:"message"`
	Priority   string  `json:"priority" validate:"required,priority"`
	Category   string  `json:"category" validate:"required,category"`
}

// SendNotification handles POST /api/restaurants/:restaurant_id/notifications.
// Push delivery happens after the response.
func (h *Handler) SendNotification(c *gin.Context) {
	var req sendRequest
	if !h.bindJSON(c, &req) {
		return
	}

	id, err := h.notifications.Send(c.Request.Context(), notification.SendInput{
		RestaurantID: c.Param("restaurant_id"),
		FromUserID:   req.FromUserID,
		ToUserID:     req.ToUserID,
		ToRole:       req.ToRole,
		Title:        req.Title,
		Message:      req.Message,
		Priority:     model.Priority(req.Priority),
		Category:     model.Category(req.Category),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "notificationId": id})
}

type viewerQuery struct {
	UserID string `form:"user_id" validate:"required"`
	Role   string `form:"role" validate:"required,staffrole"`
	Limit  int    `form:"limit" validate:"omitempty,min=1"`
}

// ListNotifications handles GET /api/restaurants/:restaurant_id/notifications.
func (h *Handler) ListNotifications(c *gin.Context) {
	var q viewerQuery
	if !h.bindQuery(c, &q) {
		return
	}

	entries, err := h.notifications.ListByUser(c.Request.Context(), c.Param("restaurant_id"), q.UserID, model.Role(q.Role), q.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// GetUnreadCount handles GET /api/restaurants/:restaurant_id/notifications/unread_count.
func (h *Handler) GetUnreadCount(c *gin.Context) {
	var q viewerQuery
	if !h.bindQuery(c, &q) {
		return
	}

	count, err := h.notifications.UnreadCount(c.Request.Context(), c.Param("restaurant_id"), q.UserID, model.Role(q.Role))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

type markReadRequest struct {
	UserID string `json:"userId" validate:"required"`
}

// MarkAsRead handles POST /api/notifications/:notification_id/read.
func (h *Handler) MarkAsRead(c *gin.Context) {
	var req markReadRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.notifications.MarkAsRead(c.Request.Context(), c.Param("notification_id"), req.UserID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
