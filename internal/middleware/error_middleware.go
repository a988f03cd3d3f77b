package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/sims/internal/app/models/dto"
	"github.com/yigit/sims/internal/pkg/apperrors"
	"github.com/yigit/sims/internal/pkg/logger"
)

// errorMapping ties an error category to its status, code and fallback message
type errorMapping struct {
	target  error
	status  int
	code    dto.ErrorCode
	message string
}

var errorMappings = []errorMapping{
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"},
	{apperrors.ErrResourceAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Resource already exists"},
	{apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeConflict, "Conflict"},
	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"},
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, dto.MessageInvalidCredentials},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"},
	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"},
	{apperrors.ErrBadRequest, http.StatusBadRequest, dto.ErrorCodeBadRequest, "Bad request"},
}

// HandleAPIError writes the response for an error returned by a service.
// Domain errors carry their own message; anything unrecognised is logged and
// reported as a bare 500.
func HandleAPIError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		resp := dto.NewErrorResponse(m.code, m.message)
		// credentials failures must read the same whatever the cause
		if m.target != apperrors.ErrInvalidCredentials {
			var custom *apperrors.CustomError
			if errors.As(err, &custom) && custom.Message != "" {
				resp.Error = custom.Message
				if custom.Code != "" {
					resp.Code = dto.ErrorCode(custom.Code)
				}
				if custom.Details != nil {
					resp.Details = custom.Details
				}
			}
		}
		c.AbortWithStatusJSON(m.status, resp)
		return
	}

	logger.Error().Err(err).
		Str("method", c.Request.Method).
		Str("path", c.FullPath()).
		Msg("Unhandled error")
	c.AbortWithStatusJSON(http.StatusInternalServerError,
		dto.NewErrorResponse(dto.ErrorCodeInternalServer, "Internal server error"))
}
