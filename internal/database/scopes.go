package database

import (
	"gorm.io/gorm"

	"github.com/custor/portal-api/internal/utils"
)

// Paginate applies pagination to a GORM query
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// Active restricts a query to rows whose is_active flag is set.
func Active(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true)
}
