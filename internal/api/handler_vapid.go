package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetVAPIDPublicKey returns the VAPID public key to the client.
func (h *Handler) GetVAPIDPublicKey(c *gin.Context) {
	key := h.webpush.PublicKey()
	if key == "" {
		fail(c, http.StatusServiceUnavailable, "Tarayıcı bildirimleri yapılandırılmamış")
		return
	}

	c.JSON(http.StatusOK, gin.H{"public_key": key})
}
