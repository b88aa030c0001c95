package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"staffcall-backend/internal/apperr"
)

const (
	msgInvalidRequest = "Geçersiz istek"
	msgInternal       = "Sunucu hatası. Lütfen daha sonra tekrar deneyin."
)

func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": msg})
}

// respondError maps a service error to its status code. Domain errors carry
// their message to the client; anything else is logged and hidden.
func respondError(c *gin.Context, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		fail(c, http.StatusNotFound, err.Error())
	case apperr.KindForbidden:
		fail(c, http.StatusForbidden, err.Error())
	case apperr.KindInvalid:
		fail(c, http.StatusBadRequest, err.Error())
	case apperr.KindConflict:
		fail(c, http.StatusConflict, err.Error())
	case apperr.KindRateLimited:
		fail(c, http.StatusTooManyRequests, err.Error())
	case apperr.KindUnauthorized:
		fail(c, http.StatusUnauthorized, err.Error())
	default:
		log.Printf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
		fail(c, http.StatusInternalServerError, msgInternal)
	}
}

// bindJSON decodes the body into req and validates it. On failure it writes a
// 400 and returns false.
func (h *Handler) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		fail(c, http.StatusBadRequest, msgInvalidRequest)
		return false
	}
	return h.validate(c, req)
}

// bindQuery is bindJSON for query parameters.
func (h *Handler) bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		fail(c, http.StatusBadRequest, msgInvalidRequest)
		return false
	}
	return h.validate(c, req)
}

func (h *Handler) validate(c *gin.Context, req any) bool {
	if err := h.validator.Struct(req); err != nil {
		fail(c, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}
