package utils

import (
	"strconv"

	"github.com/custor/portal-api/internal/constants"
	"github.com/gin-gonic/gin"
)

// PaginationParams is the window requested through ?page=&limit=.
type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
}

// PaginationResponse is echoed back next to paged lists.
type PaginationResponse struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// NewPaginationParams clamps page and limit to the allowed range.
func NewPaginationParams(page, limit int) PaginationParams {
	if page < constants.MinPageSize {
		page = constants.MinPageSize
	}
	if limit < constants.MinPageSize || limit > constants.MaxPageSize {
		limit = constants.DefaultPageSize
	}
	return PaginationParams{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// GetPaginationParams reads page and limit from the query string. Bad values
// fall back to the defaults instead of failing the request.
func GetPaginationParams(c *gin.Context) PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(constants.MinPageSize)))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(constants.DefaultPageSize)))
	return NewPaginationParams(page, limit)
}

// Response builds the metadata block for a page of total rows.
func (p PaginationParams) Response(total int64) PaginationResponse {
	return PaginationResponse{Page: p.Page, Limit: p.Limit, Total: total}
}
