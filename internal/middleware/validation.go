package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/sims/internal/app/models/dto"
)

// BindJSON binds and validates the request body into obj. On failure it
// writes a 400 with per-field details and returns false.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.HandleValidationError(err))
		return false
	}
	return true
}

// BindLogin binds a login-style body. Any failure yields the fixed
// {"error":"Invalid data"} body so the endpoint reveals nothing about which
// field was wrong.
func BindLogin(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: dto.MessageInvalidData})
		return false
	}
	return true
}
