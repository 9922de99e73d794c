package repositories

import (
	"time"

	"github.com/unilink-hq/placement-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type OpportunityFilters struct {
	Type          *models.OpportunityType   `json:"type"`
	Status        *models.OpportunityStatus `json:"status"`
	Organization  *string                   `json:"organization"` // substring match
	Location      *string                   `json:"location"`     // substring match
	CreatedBy     *string                   `json:"created_by"`
	DeadlineAfter *time.Time                `json:"deadline_after"`
	Limit         int                       `json:"limit"`
	Offset        int                       `json:"offset"`
	SortBy        string                    `json:"sort_by"`    // "created_at", "title", "application_deadline"
	SortOrder     string                    `json:"sort_order"` // "asc", "desc"
}

type ApplicationFilters struct {
	Status        *models.ApplicationStatus `json:"status"`
	UserID        *string                   `json:"user_id"`
	OpportunityID *string                   `json:"opportunity_id"`
	AppliedAfter  *time.Time                `json:"applied_after"`
	Limit         int                       `json:"limit"`
	Offset        int                       `json:"offset"`
	SortBy        string                    `json:"sort_by"`    // "applied_at", "updated_at", "status"
	SortOrder     string                    `json:"sort_order"` // "asc", "desc"
}

type NotificationFilters struct {
	Read   *bool                    `json:"read"`
	Type   *models.NotificationType `json:"type"`
	Limit  int                      `json:"limit"`
	Offset int                      `json:"offset"`
}

type UserFilters struct {
	Role   *models.UserRole `json:"role"`
	Query  string           `json:"query"` // search by name or email
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

// ===== SHARED STATISTICS STRUCTS =====

type ApplicationStats struct {
	Total    int64                              `json:"total"`
	ByStatus map[models.ApplicationStatus]int64 `json:"by_status"`
}

type OpportunityStats struct {
	TotalOpportunities  int64   `json:"total_opportunities"`
	ActiveOpportunities int64   `json:"active_opportunities"`
	TotalApplications   int64   `json:"total_applications"`
	AverageApplications float64 `json:"average_applications"`
}

type UserStats struct {
	TotalUsers        int64                      `json:"total_users"`
	ActiveUsers       int64                      `json:"active_users"`
	NewUsersThisMonth int64                      `json:"new_users_this_month"`
	UserRoles         map[models.UserRole]int64  `json:"user_roles"`
}

type OpportunityAnalytics struct {
	ByType            map[models.OpportunityType]int64   `json:"by_type"`
	ByStatus          map[models.OpportunityStatus]int64 `json:"by_status"`
	ApplicationTrends []ApplicationTrendData             `json:"application_trends"`
}

type ApplicationTrendData struct {
	Date  time.Time `json:"date"`
	Count int64     `json:"count"`
}
