package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/sims/internal/app/models"
	"github.com/yigit/sims/internal/app/models/dto"
	"github.com/yigit/sims/internal/pkg/auth"
	"github.com/yigit/sims/internal/pkg/websocket"
)

const principalKey = "principal"

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	jwtService *auth.JWTService
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwtService: jwtService}
}

// JWTAuth middleware for JWT access token validation. Tokens are stateless;
// the account behind a valid token is not looked up here. Websocket
// handshakes may carry the token in the access_token query parameter.
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" && websocket.IsUpgrade(c.Request) {
			// browsers cannot set headers on a websocket handshake
			if token := c.Query("access_token"); token != "" {
				authHeader = "Bearer " + token
			}
		}
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(dto.ErrorCodeUnauthorized, "Authentication required").
					WithDetails("Authorization header missing"))
			return
		}

		tokenString, err := auth.ExtractBearerToken(authHeader)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(dto.ErrorCodeUnauthorized, "Authentication required").
					WithDetails("Invalid token format"))
			return
		}

		claims, err := m.jwtService.ValidateAccessToken(tokenString)
		if err != nil {
			code, details := dto.ErrorCodeInvalidToken, "Invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				code, details = dto.ErrorCodeExpiredToken, "Token has expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(code, "Authentication failed").WithDetails(details))
			return
		}

		c.Set(principalKey, claims.Principal())
		c.Next()
	}
}

// RoleRequired middleware lets the request through only for the given roles
func (m *AuthMiddleware) RoleRequired(roles ...models.UserType) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(dto.ErrorCodeUnauthorized, "Authentication required"))
			return
		}

		for _, role := range roles {
			if principal.UserType == role {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden,
			dto.NewErrorResponse(dto.ErrorCodeForbidden, "Access denied").
				WithDetails("You don't have sufficient permissions for this operation"))
	}
}

// GetPrincipal returns the identity JWTAuth stored on the context
func GetPrincipal(c *gin.Context) (auth.Principal, bool) {
	v, exists := c.Get(principalKey)
	if !exists {
		return auth.Principal{}, false
	}
	p, ok := v.(auth.Principal)
	return p, ok
}

// MustPrincipal is GetPrincipal for handlers mounted behind JWTAuth. When the
// principal is missing it writes a 401 and returns false.
func MustPrincipal(c *gin.Context) (auth.Principal, bool) {
	p, ok := GetPrincipal(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized,
			dto.NewErrorResponse(dto.ErrorCodeUnauthorized, "Authentication required"))
	}
	return p, ok
}
