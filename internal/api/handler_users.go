package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type signupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Signup handles POST /api/users.
func (h *Handler) Signup(c *gin.Context) {
	var req signupRequest
	if !h.bindJSON(c, &req) {
		return
	}

	userID, err := h.accounts.Signup(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "userId": userID})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/sessions. Field rules are enforced by the account
// service so that failed attempts are counted.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	userID, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "userId": userID})
}

// GetUser handles GET /api/users/:user_id.
func (h *Handler) GetUser(c *gin.Context) {
	profile, err := h.accounts.GetUser(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

type pushTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

// PutPushToken handles PUT /api/users/:user_id/push_token.
func (h *Handler) PutPushToken(c *gin.Context) {
	var req pushTokenRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.accounts.SavePushToken(c.Request.Context(), c.Param("user_id"), req.Token); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetUserRestaurants handles GET /api/users/:user_id/restaurants.
func (h *Handler) GetUserRestaurants(c *gin.Context) {
	list, err := h.memberships.ListUserRestaurants(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
