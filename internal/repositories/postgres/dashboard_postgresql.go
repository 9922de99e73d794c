package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/unilink-hq/placement-service/internal/models"
	"github.com/unilink-hq/placement-service/internal/repositories"
)

type DashboardPostgreSQL struct {
	db *gorm.DB
}

func NewDashboardPostgreSQL(db *gorm.DB) repositories.DashboardRepository {
	return &DashboardPostgreSQL{db: db}
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (d *DashboardPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return d.db
}

// GetStudentDashboard aggregates a student's application and save counts
func (d *DashboardPostgreSQL) GetStudentDashboard(ctx context.Context, tx *gorm.DB, userID string) (*repositories.StudentDashboardData, error) {
	db := d.getDB(tx).WithContext(ctx)
	data := &repositories.StudentDashboardData{}

	if err := db.Model(&models.Application{}).
		Where("user_id = ?", userID).
		Count(&data.ApplicationsCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count applications: %w", err)
	}

	if err := db.Model(&models.Application{}).
		Where("user_id = ? AND status = ?", userID, models.ApplicationPending).
		Count(&data.PendingApplications).Error; err != nil {
		return nil, fmt.Errorf("failed to count pending applications: %w", err)
	}

	if err := db.Model(&models.Application{}).
		Where("user_id = ? AND status = ?", userID, models.ApplicationAccepted).
		Count(&data.AcceptedApplications).Error; err != nil {
		return nil, fmt.Errorf("failed to count accepted applications: %w", err)
	}

	if err := db.Model(&models.OpportunitySave{}).
		Where("user_id = ?", userID).
		Count(&data.SavedOpportunities).Error; err != nil {
		return nil, fmt.Errorf("failed to count saved opportunities: %w", err)
	}

	if err := db.Model(&models.Application{}).
		Where("user_id = ? AND interview_date IS NOT NULL AND interview_date > ?", userID, time.Now()).
		Count(&data.UpcomingInterviews).Error; err != nil {
		return nil, fmt.Errorf("failed to count upcoming interviews: %w", err)
	}

	return data, nil
}

// GetAdminDashboard aggregates counts over the opportunities an admin owns
func (d *DashboardPostgreSQL) GetAdminDashboard(ctx context.Context, tx *gorm.DB, adminID string) (*repositories.AdminDashboardData, error) {
	db := d.getDB(tx).WithContext(ctx)
	data := &repositories.AdminDashboardData{}

	if err := db.Model(&models.Opportunity{}).
		Where("created_by = ?", adminID).
		Count(&data.TotalOpportunities).Error; err != nil {
		return nil, fmt.Errorf("failed to count opportunities: %w", err)
	}

	if err := db.Model(&models.Opportunity{}).
		Where("created_by = ? AND status = ?", adminID, models.OpportunityActive).
		Count(&data.ActiveOpportunities).Error; err != nil {
		return nil, fmt.Errorf("failed to count active opportunities: %w", err)
	}

	if err := db.Model(&models.Application{}).
		Joins("JOIN opportunities ON opportunities.id = applications.opportunity_id").
		Where("opportunities.created_by = ?", adminID).
		Count(&data.TotalApplicationsReceived).Error; err != nil {
		return nil, fmt.Errorf("failed to count received applications: %w", err)
	}

	if err := db.Model(&models.Application{}).
		Joins("JOIN opportunities ON opportunities.id = applications.opportunity_id").
		Where("opportunities.created_by = ? AND applications.status = ?", adminID, models.ApplicationPending).
		Count(&data.PendingReviews).Error; err != nil {
		return nil, fmt.Errorf("failed to count pending reviews: %w", err)
	}

	return data, nil
}

// GetCatalogDashboard aggregates catalog-wide counts with the caller's own
// application and save slices. Admin view counts all opportunities; the
// student view still sees the full catalog totals but personal slices.
func (d *DashboardPostgreSQL) GetCatalogDashboard(ctx context.Context, tx *gorm.DB, userID string, adminView bool) (*repositories.CatalogDashboardData, error) {
	db := d.getDB(tx).WithContext(ctx)
	data := &repositories.CatalogDashboardData{}

	if err := db.Model(&models.Opportunity{}).Count(&data.TotalOpportunities).Error; err != nil {
		return nil, fmt.Errorf("failed to count opportunities: %w", err)
	}

	if err := db.Model(&models.Opportunity{}).
		Where("status = ?", models.OpportunityActive).
		Count(&data.ActiveOpportunities).Error; err != nil {
		return nil, fmt.Errorf("failed to count active opportunities: %w", err)
	}

	if err := db.Model(&models.OpportunitySave{}).
		Where("user_id = ?", userID).
		Count(&data.SavedOpportunities).Error; err != nil {
		return nil, fmt.Errorf("failed to count saved opportunities: %w", err)
	}

	applicationScope := db.Model(&models.Application{})
	if !adminView {
		applicationScope = applicationScope.Where("user_id = ?", userID)
	}

	var total, pending, accepted int64
	if err := applicationScope.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count applications: %w", err)
	}
	if err := applicationScope.Session(&gorm.Session{}).
		Where("status = ?", models.ApplicationPending).
		Count(&pending).Error; err != nil {
		return nil, fmt.Errorf("failed to count pending applications: %w", err)
	}
	if err := applicationScope.Session(&gorm.Session{}).
		Where("status = ?", models.ApplicationAccepted).
		Count(&accepted).Error; err != nil {
		return nil, fmt.Errorf("failed to count accepted applications: %w", err)
	}

	data.PendingApplications = pending
	data.AcceptedApplications = accepted
	if total > 0 {
		data.SuccessRate = accepted * 100 / total
	}

	return data, nil
}
