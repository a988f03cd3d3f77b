package helpers

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/sims/internal/app/models"
	"github.com/yigit/sims/internal/app/models/dto"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	DefaultPage     = 1 // pages are 1-based
)

// NewPaginationInfo creates a standard PaginationInfo DTO.
// page should be the 1-based page number.
func NewPaginationInfo(totalItems int64, page, size int) dto.PaginationInfo {
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 1 {
		page = DefaultPage
	}

	totalPages := 0
	if totalItems > 0 {
		totalPages = int(math.Ceil(float64(totalItems) / float64(size)))
	} else if page == 1 {
		totalPages = 1
	}

	return dto.PaginationInfo{
		CurrentPage: page,
		TotalPages:  totalPages,
		PageSize:    size,
		TotalItems:  totalItems,
	}
}

// ParsePaginationParams extracts and validates pagination parameters from the request
func ParsePaginationParams(c *gin.Context) models.Page {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = DefaultPage
	}

	size, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(DefaultPageSize)))
	if err != nil || size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}

	return models.Page{Number: page, Size: size}
}

// NewPaginatedResponse wraps a page of items with its metadata
func NewPaginatedResponse(items interface{}, total int64, page models.Page) dto.PaginatedResponse {
	return dto.PaginatedResponse{
		Items:      items,
		Pagination: NewPaginationInfo(total, page.Number, page.Size),
	}
}

// SliceBounds returns the [start, end) window of a page over n items. Used by
// the in-memory repositories.
func SliceBounds(page models.Page, n int) (start, end int) {
	if page.Unbounded() {
		return 0, n
	}
	start = page.Offset()
	if start > n {
		start = n
	}
	end = start + page.Size
	if end > n {
		end = n
	}
	return start, end
}
