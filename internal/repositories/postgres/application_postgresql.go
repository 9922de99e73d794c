package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/unilink-hq/placement-service/internal/cache"
	"github.com/unilink-hq/placement-service/internal/models"
	"github.com/unilink-hq/placement-service/internal/repositories"
)

type ApplicationPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewApplicationPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.ApplicationRepository {
	return &ApplicationPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (a *ApplicationPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return a.db
}

// Create inserts the application row. Duplicate submissions surface as
// gorm.ErrDuplicatedKey through the unique (user_id, opportunity_id) index.
func (a *ApplicationPostgreSQL) Create(ctx context.Context, tx *gorm.DB, application *models.Application) error {
	if err := a.getDB(tx).WithContext(ctx).Create(application).Error; err != nil {
		return err
	}
	cache.InvalidateApplicationCache(ctx, a.cacheManager, application.ID, application.UserID, application.OpportunityID)
	return nil
}

// GetByID retrieves an application by ID
func (a *ApplicationPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Application, error) {
	var application models.Application
	if err := a.getDB(tx).WithContext(ctx).First(&application, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &application, nil
}

// GetByIDWithDetails retrieves an application with applicant and opportunity preloaded
func (a *ApplicationPostgreSQL) GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id string) (*models.Application, error) {
	var application models.Application
	err := a.getDB(tx).WithContext(ctx).
		Preload("User").
		Preload("Opportunity").
		Preload("Opportunity.Creator").
		First(&application, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &application, nil
}

// Update persists the full application row and invalidates cache
func (a *ApplicationPostgreSQL) Update(ctx context.Context, tx *gorm.DB, application *models.Application) error {
	if err := a.getDB(tx).WithContext(ctx).Save(application).Error; err != nil {
		return fmt.Errorf("failed to update application: %w", err)
	}
	cache.InvalidateApplicationCache(ctx, a.cacheManager, application.ID, application.UserID, application.OpportunityID)
	return nil
}

// Delete removes an application row
func (a *ApplicationPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	result := a.getDB(tx).WithContext(ctx).Delete(&models.Application{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete application: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	cache.SafeDelete(ctx, a.cacheManager.Application, fmt.Sprintf("id:%s", id))
	cache.SafeInvalidatePattern(ctx, a.cacheManager.Stats, "application:*")
	return nil
}

// List returns applications matching the filters with a total count
func (a *ApplicationPostgreSQL) List(ctx context.Context, filters repositories.ApplicationFilters) ([]*models.Application, int64, error) {
	query := a.db.WithContext(ctx).Model(&models.Application{})
	query = a.helpers.ApplyApplicationFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count applications: %w", err)
	}

	var applications []*models.Application
	query = a.helpers.ApplySort(query, filters.SortBy, filters.SortOrder, "applied_at",
		[]string{"applied_at", "updated_at", "status"})
	query = a.helpers.ApplyPagination(query, filters.Limit, filters.Offset)
	err := query.
		Preload("User").
		Preload("Opportunity").
		Find(&applications).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list applications: %w", err)
	}

	return applications, total, nil
}

// ListForExport returns all matching applications without pagination,
// preloaded for the spreadsheet export.
func (a *ApplicationPostgreSQL) ListForExport(ctx context.Context, filters repositories.ApplicationFilters) ([]*models.Application, error) {
	query := a.db.WithContext(ctx).Model(&models.Application{})
	query = a.helpers.ApplyApplicationFilters(query, filters)

	var applications []*models.Application
	err := query.
		Preload("User").
		Preload("Opportunity").
		Order("applied_at DESC").
		Find(&applications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list applications for export: %w", err)
	}

	return applications, nil
}

// BulkUpdateStatus overwrites status for the given applications, scoped to
// one opportunity so stray IDs from other opportunities are ignored.
func (a *ApplicationPostgreSQL) BulkUpdateStatus(ctx context.Context, tx *gorm.DB, opportunityID string, applicationIDs []string, status models.ApplicationStatus) (int64, error) {
	if len(applicationIDs) == 0 {
		return 0, nil
	}

	result := a.getDB(tx).WithContext(ctx).
		Model(&models.Application{}).
		Where("opportunity_id = ? AND id IN ?", opportunityID, applicationIDs).
		Update("status", status)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to bulk update status: %w", result.Error)
	}

	cache.SafeInvalidatePattern(ctx, a.cacheManager.Application, "*")
	cache.SafeInvalidatePattern(ctx, a.cacheManager.Stats, "application:*")
	return result.RowsAffected, nil
}

// ExistsByUserAndOpportunity checks for an existing application
func (a *ApplicationPostgreSQL) ExistsByUserAndOpportunity(ctx context.Context, tx *gorm.DB, userID, opportunityID string) (bool, error) {
	var count int64
	err := a.getDB(tx).WithContext(ctx).
		Model(&models.Application{}).
		Where("user_id = ? AND opportunity_id = ?", userID, opportunityID).
		Count(&count).Error
	return count > 0, err
}

// GetStats returns application counts total and by status
func (a *ApplicationPostgreSQL) GetStats(ctx context.Context, filters repositories.ApplicationFilters) (*repositories.ApplicationStats, error) {
	stats := &repositories.ApplicationStats{
		ByStatus: make(map[models.ApplicationStatus]int64),
	}

	query := a.db.WithContext(ctx).Model(&models.Application{})
	query = a.helpers.ApplyApplicationFilters(query, filters)

	var statusCounts []struct {
		Status models.ApplicationStatus
		Count  int64
	}
	if err := query.
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return nil, fmt.Errorf("failed to count applications by status: %w", err)
	}

	for _, sc := range statusCounts {
		stats.ByStatus[sc.Status] = sc.Count
		stats.Total += sc.Count
	}

	return stats, nil
}

// CountByUser counts a user's applications, optionally by status
func (a *ApplicationPostgreSQL) CountByUser(ctx context.Context, userID string, status *models.ApplicationStatus) (int64, error) {
	query := a.db.WithContext(ctx).
		Model(&models.Application{}).
		Where("user_id = ?", userID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

// CountByOpportunityOwner counts applications received across an admin's opportunities
func (a *ApplicationPostgreSQL) CountByOpportunityOwner(ctx context.Context, ownerID string, status *models.ApplicationStatus) (int64, error) {
	query := a.db.WithContext(ctx).
		Model(&models.Application{}).
		Joins("JOIN opportunities ON opportunities.id = applications.opportunity_id").
		Where("opportunities.created_by = ?", ownerID)
	if status != nil {
		query = query.Where("applications.status = ?", *status)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

// CountUpcomingInterviews counts a user's scheduled interviews after the given time
func (a *ApplicationPostgreSQL) CountUpcomingInterviews(ctx context.Context, userID string, after time.Time) (int64, error) {
	var count int64
	err := a.db.WithContext(ctx).
		Model(&models.Application{}).
		Where("user_id = ? AND interview_date IS NOT NULL AND interview_date > ?", userID, after).
		Count(&count).Error
	return count, err
}
