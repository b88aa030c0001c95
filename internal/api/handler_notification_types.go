package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"staffcall-backend/internal/mw"
	"staffcall-backend/internal/notificationtype"
)

// typesCacheKey names a restaurant's cached notification type list.
func typesCacheKey(restaurantID string) string {
	return "notification_types:" + restaurantID
}

func typesCacheKeyFor(c *gin.Context) string {
	return typesCacheKey(c.Param("restaurant_id"))
}

// GetNotificationTypes handles GET /api/restaurants/:restaurant_id/notification_types.
// Responses are cached until a type of the restaurant changes.
func (h *Handler) GetNotificationTypes(c *gin.Context) {
	types, err := h.types.List(c.Request.Context(), c.Param("restaurant_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types)
}

type createTypeRequest struct {
	UserID string `json:"userId" validate:"required"`
	Title  string `json:"title" validate:"required"`
	Icon   string `json:"icon"`
	Color  string `json:"color" validate:"omitempty,hexcolor"`
}

// CreateNotificationType handles POST /api/restaurants/:restaurant_id/notification_types.
func (h *Handler) CreateNotificationType(c *gin.Context) {
	var req createTypeRequest
	if !h.bindJSON(c, &req) {
		return
	}

	restaurantID := c.Param("restaurant_id")
	t, err := h.types.Create(c.Request.Context(), restaurantID, req.UserID, notificationtype.Template{
		Title: req.Title,
		Icon:  req.Icon,
		Color: req.Color,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	mw.Invalidate(h.cache, typesCacheKey(restaurantID))
	c.JSON(http.StatusCreated, gin.H{"success": true, "typeId": t.ID})
}

// CreateDefaultNotificationTypes handles POST .../notification_types/defaults. Non-owners
// get a success response and no change.
func (h *Handler) CreateDefaultNotificationTypes(c *gin.Context) {
	var req ownerRequest
	if !h.bindJSON(c, &req) {
		return
	}

	restaurantID := c.Param("restaurant_id")
	if err := h.types.CreateDefaults(c.Request.Context(), restaurantID, req.UserID); err != nil {
		respondError(c, err)
		return
	}
	mw.Invalidate(h.cache, typesCacheKey(restaurantID))
	c.Status(http.StatusNoContent)
}

type deleteTypeQuery struct {
	UserID string `form:"user_id" validate:"required"`
}

// DeleteNotificationType handles DELETE /api/notification_types/:type_id?user_id=.
func (h *Handler) DeleteNotificationType(c *gin.Context) {
	var q deleteTypeQuery
	if !h.bindQuery(c, &q) {
		return
	}

	t, err := h.types.Delete(c.Request.Context(), c.Param("type_id"), q.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	mw.Invalidate(h.cache, typesCacheKey(t.RestaurantID))
	c.JSON(http.StatusOK, gin.H{"success": true})
}
