package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"staffcall-backend/internal/model"
)

type createRestaurantRequest struct {
	Name    string `json:"name" validate:"required"`
	OwnerID string `json:"ownerId" validate:"required"`
}

// CreateRestaurant handles POST /api/restaurants.
func (h *Handler) CreateRestaurant(c *gin.Context) {
	var req createRestaurantRequest
	if !h.bindJSON(c, &req) {
		return
	}

	created, err := h.memberships.CreateRestaurant(c.Request.Context(), req.Name, req.OwnerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetRestaurant handles GET /api/restaurants/:restaurant_id.
func (h *Handler) GetRestaurant(c *gin.Context) {
	r, err := h.memberships.GetRestaurant(c.Request.Context(), c.Param("restaurant_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, restaurantResponse(r))
}

type renameRestaurantRequest struct {
	UserID string `json:"userId" validate:"required"`
	Name   string `json:"name" validate:"required"`
}

// RenameRestaurant handles PATCH /api/restaurants/:restaurant_id.
func (h *Handler) RenameRestaurant(c *gin.Context) {
	var req renameRestaurantRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.memberships.RenameRestaurant(c.Request.Context(), c.Param("restaurant_id"), req.UserID, req.Name); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type ownerRequest struct {
	UserID string `json:"userId" validate:"required"`
}

// RefreshInviteCode handles POST /api/restaurants/:restaurant_id/invite_code.
func (h *Handler) RefreshInviteCode(c *gin.Context) {
	var req ownerRequest
	if !h.bindJSON(c, &req) {
		return
	}

	code, err := h.memberships.RefreshInviteCode(c.Request.Context(), c.Param("restaurant_id"), req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "newInviteCode": code})
}

// GetMembers handles GET /api/restaurants/:restaurant_id/members.
func (h *Handler) GetMembers(c *gin.Context) {
	members, err := h.memberships.ListMembers(c.Request.Context(), c.Param("restaurant_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

type presenceRequest struct {
	IsOnline *bool `json:"isOnline" validate:"required"`
}

// PutPresence handles PUT /api/restaurants/:restaurant_id/members/:user_id/presence.
func (h *Handler) PutPresence(c *gin.Context) {
	var req presenceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	err := h.memberships.UpdatePresence(c.Request.Context(), c.Param("user_id"), c.Param("restaurant_id"), *req.IsOnline)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetInvite handles GET /api/invites/:code.
func (h *Handler) GetInvite(c *gin.Context) {
	r, err := h.memberships.GetByInviteCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, restaurantResponse(r))
}

type joinRequest struct {
	UserID     string `json:"userId" validate:"required"`
	InviteCode string `json:"inviteCode" validate:"required"`
	Role       string `json:"role" validate:"required,joinrole"`
}

// JoinRestaurant handles POST /api/memberships.
func (h *Handler) JoinRestaurant(c *gin.Context) {
	var req joinRequest
	if !h.bindJSON(c, &req) {
		return
	}

	restaurantID, err := h.memberships.JoinRestaurant(c.Request.Context(), req.UserID, req.InviteCode, model.Role(req.Role))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "restaurantId": restaurantID})
}

func restaurantResponse(r *model.Restaurant) gin.H {
	return gin.H{
		"id":         r.ID,
		"name":       r.Name,
		"inviteCode": r.InviteCode,
		"ownerId":    r.OwnerID,
		"createdAt":  r.CreatedAt,
	}
}
