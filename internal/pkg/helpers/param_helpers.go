package helpers

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/sims/internal/pkg/apperrors"
	"github.com/yigit/sims/internal/pkg/validation"
)

// ParseIDParam reads a positive int64 path parameter.
func ParseIDParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError(fmt.Sprintf("%s must be a positive integer", name))
	}
	return id, nil
}

// QueryInt64 reads an optional positive int64 query parameter; 0 means absent.
func QueryInt64(c *gin.Context, name string) (int64, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return 0, apperrors.NewValidationError(fmt.Sprintf("%s must be a positive integer", name))
	}
	return v, nil
}

// QueryBool reads an optional boolean query parameter.
func QueryBool(c *gin.Context, name string) (*bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("%s must be true or false", name))
	}
	return &v, nil
}

// QueryDate reads an optional YYYY-MM-DD query parameter.
func QueryDate(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	d, err := validation.ParseDate(raw)
	if err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("%s must be a date in YYYY-MM-DD format", name))
	}
	return &d, nil
}
