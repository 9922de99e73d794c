package postgres

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/unilink-hq/placement-service/internal/repositories"
)

// SharedHelpers contains common query helpers used by the sub-repositories
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// ApplyOpportunityFilters applies common filters to opportunity queries
func (h *SharedHelpers) ApplyOpportunityFilters(query *gorm.DB, filters repositories.OpportunityFilters) *gorm.DB {
	if filters.Type != nil {
		query = query.Where("type = ?", *filters.Type)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Organization != nil {
		query = query.Where("organization ILIKE ?", "%"+*filters.Organization+"%")
	}
	if filters.Location != nil {
		query = query.Where("location ILIKE ?", "%"+*filters.Location+"%")
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	if filters.DeadlineAfter != nil {
		query = query.Where("application_deadline > ?", *filters.DeadlineAfter)
	}
	return query
}

// ApplyApplicationFilters applies common filters to application queries
func (h *SharedHelpers) ApplyApplicationFilters(query *gorm.DB, filters repositories.ApplicationFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.OpportunityID != nil {
		query = query.Where("opportunity_id = ?", *filters.OpportunityID)
	}
	if filters.AppliedAfter != nil {
		query = query.Where("applied_at >= ?", *filters.AppliedAfter)
	}
	return query
}

// ApplySort builds an ORDER BY clause restricted to an allow-list of columns.
func (h *SharedHelpers) ApplySort(query *gorm.DB, sortBy, sortOrder, fallback string, allowed []string) *gorm.DB {
	column := fallback
	for _, a := range allowed {
		if sortBy == a {
			column = sortBy
			break
		}
	}
	direction := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		direction = "ASC"
	}
	return query.Order(fmt.Sprintf("%s %s", column, direction))
}

// ApplyPagination applies limit/offset with a default page size cap.
func (h *SharedHelpers) ApplyPagination(query *gorm.DB, limit, offset int) *gorm.DB {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return query.Limit(limit).Offset(offset)
}
