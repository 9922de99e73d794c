package repositories

import (
	"context"

	"gorm.io/gorm"
)

// DashboardRepository interface for role-scoped dashboard aggregates
type DashboardRepository interface {
	// Student dashboard
	GetStudentDashboard(ctx context.Context, tx *gorm.DB, userID string) (*StudentDashboardData, error)

	// Administrator dashboard, scoped to opportunities the admin owns
	GetAdminDashboard(ctx context.Context, tx *gorm.DB, adminID string) (*AdminDashboardData, error)

	// Catalog-wide dashboard with per-user applications slice
	GetCatalogDashboard(ctx context.Context, tx *gorm.DB, userID string, adminView bool) (*CatalogDashboardData, error)
}

type StudentDashboardData struct {
	ApplicationsCount    int64 `json:"applications_count"`
	PendingApplications  int64 `json:"pending_applications"`
	AcceptedApplications int64 `json:"accepted_applications"`
	SavedOpportunities   int64 `json:"saved_opportunities"`
	UpcomingInterviews   int64 `json:"upcoming_interviews"`
}

type AdminDashboardData struct {
	TotalOpportunities        int64 `json:"total_opportunities"`
	ActiveOpportunities       int64 `json:"active_opportunities"`
	TotalApplicationsReceived int64 `json:"total_applications_received"`
	PendingReviews            int64 `json:"pending_reviews"`
}

type CatalogDashboardData struct {
	TotalOpportunities   int64 `json:"total_opportunities"`
	ActiveOpportunities  int64 `json:"active_opportunities"`
	SavedOpportunities   int64 `json:"saved_opportunities"`
	PendingApplications  int64 `json:"pending_applications"`
	AcceptedApplications int64 `json:"accepted_applications"`
	SuccessRate          int64 `json:"success_rate"`
}
