package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/unilink-hq/placement-service/internal/cache"
	"github.com/unilink-hq/placement-service/internal/models"
	"github.com/unilink-hq/placement-service/internal/repositories"
)

type OpportunityPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewOpportunityPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.OpportunityRepository {
	return &OpportunityPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (o *OpportunityPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return o.db
}

// Create creates a new opportunity and invalidates listing caches
func (o *OpportunityPostgreSQL) Create(ctx context.Context, tx *gorm.DB, opportunity *models.Opportunity) error {
	if err := o.getDB(tx).WithContext(ctx).Create(opportunity).Error; err != nil {
		return fmt.Errorf("failed to create opportunity: %w", err)
	}
	cache.SafeInvalidatePattern(ctx, o.cacheManager.Opportunity, fmt.Sprintf("creator:%s:*", opportunity.CreatedBy))
	cache.SafeInvalidatePattern(ctx, o.cacheManager.Opportunity, "list:*")
	return nil
}

// GetByID retrieves an opportunity with its creator, cached
func (o *OpportunityPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Opportunity, error) {
	if tx != nil {
		// Transactional reads must see in-flight writes, never the cache
		var opportunity models.Opportunity
		if err := tx.WithContext(ctx).Preload("Creator").First(&opportunity, "id = ?", id).Error; err != nil {
			return nil, err
		}
		return &opportunity, nil
	}

	cacheKey := fmt.Sprintf("id:%s", id)
	var opportunity models.Opportunity

	err := o.cacheManager.Opportunity.CacheOrExecute(ctx, cacheKey, &opportunity, cache.OpportunityCacheConfig.TTL, func() (interface{}, error) {
		var dbOpportunity models.Opportunity
		if err := o.db.WithContext(ctx).Preload("Creator").First(&dbOpportunity, "id = ?", id).Error; err != nil {
			return nil, err
		}
		return &dbOpportunity, nil
	})
	if err != nil {
		return nil, err
	}

	return &opportunity, nil
}

// Update persists the full opportunity row and invalidates cache
func (o *OpportunityPostgreSQL) Update(ctx context.Context, tx *gorm.DB, opportunity *models.Opportunity) error {
	if err := o.getDB(tx).WithContext(ctx).Save(opportunity).Error; err != nil {
		return fmt.Errorf("failed to update opportunity: %w", err)
	}
	cache.InvalidateOpportunityCache(ctx, o.cacheManager, opportunity.ID, opportunity.CreatedBy)
	return nil
}

// Delete removes an opportunity; application rows cascade
func (o *OpportunityPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	result := o.getDB(tx).WithContext(ctx).Delete(&models.Opportunity{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete opportunity: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	cache.SafeDelete(ctx, o.cacheManager.Opportunity, fmt.Sprintf("id:%s", id))
	cache.SafeInvalidatePattern(ctx, o.cacheManager.Opportunity, "list:*")
	cache.SafeInvalidatePattern(ctx, o.cacheManager.Stats, "opportunity:*")
	return nil
}

// List returns opportunities matching the filters with a total count
func (o *OpportunityPostgreSQL) List(ctx context.Context, filters repositories.OpportunityFilters) ([]*models.Opportunity, int64, error) {
	query := o.db.WithContext(ctx).Model(&models.Opportunity{})
	query = o.helpers.ApplyOpportunityFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count opportunities: %w", err)
	}

	var opportunities []*models.Opportunity
	query = o.helpers.ApplySort(query, filters.SortBy, filters.SortOrder, "created_at",
		[]string{"created_at", "title", "application_deadline", "views_count", "applications_count"})
	query = o.helpers.ApplyPagination(query, filters.Limit, filters.Offset)
	if err := query.Preload("Creator").Find(&opportunities).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list opportunities: %w", err)
	}

	return opportunities, total, nil
}

// GetSavedByUser returns the opportunities a user has saved
func (o *OpportunityPostgreSQL) GetSavedByUser(ctx context.Context, userID string, filters repositories.OpportunityFilters) ([]*models.Opportunity, int64, error) {
	query := o.db.WithContext(ctx).Model(&models.Opportunity{}).
		Joins("JOIN opportunity_saves ON opportunity_saves.opportunity_id = opportunities.id").
		Where("opportunity_saves.user_id = ?", userID)
	query = o.helpers.ApplyOpportunityFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count saved opportunities: %w", err)
	}

	var opportunities []*models.Opportunity
	query = o.helpers.ApplyPagination(query, filters.Limit, filters.Offset)
	if err := query.Order("opportunities.created_at DESC").Find(&opportunities).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list saved opportunities: %w", err)
	}

	return opportunities, total, nil
}

// RecomputeApplicationCount sets applications_count to the live count of
// application rows in one UPDATE. The subquery keeps it correct under
// concurrent submissions and deletions.
func (o *OpportunityPostgreSQL) RecomputeApplicationCount(ctx context.Context, tx *gorm.DB, id string) (int64, error) {
	db := o.getDB(tx)
	err := db.WithContext(ctx).
		Model(&models.Opportunity{}).
		Where("id = ?", id).
		Update("applications_count", gorm.Expr(
			"(SELECT COUNT(*) FROM applications WHERE applications.opportunity_id = opportunities.id AND applications.deleted_at IS NULL)",
		)).Error
	if err != nil {
		return 0, fmt.Errorf("failed to recompute application count: %w", err)
	}

	var count int64
	err = db.WithContext(ctx).
		Model(&models.Opportunity{}).
		Where("id = ?", id).
		Pluck("applications_count", &count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to read application count: %w", err)
	}

	cache.SafeDelete(ctx, o.cacheManager.Opportunity, fmt.Sprintf("id:%s", id))
	return count, nil
}

// IncrementViews bumps the view counter without touching updated_at
func (o *OpportunityPostgreSQL) IncrementViews(ctx context.Context, tx *gorm.DB, id string) error {
	err := o.getDB(tx).WithContext(ctx).
		Model(&models.Opportunity{}).
		Where("id = ?", id).
		UpdateColumn("views_count", gorm.Expr("views_count + 1")).Error
	if err != nil {
		return fmt.Errorf("failed to increment views: %w", err)
	}
	return nil
}

// IsSavedBy checks save-list membership
func (o *OpportunityPostgreSQL) IsSavedBy(ctx context.Context, tx *gorm.DB, id, userID string) (bool, error) {
	var count int64
	err := o.getDB(tx).WithContext(ctx).
		Model(&models.OpportunitySave{}).
		Where("opportunity_id = ? AND user_id = ?", id, userID).
		Count(&count).Error
	return count > 0, err
}

// AddSave adds an opportunity to a user's save list; duplicate adds are no-ops
func (o *OpportunityPostgreSQL) AddSave(ctx context.Context, tx *gorm.DB, id, userID string) error {
	save := models.OpportunitySave{OpportunityID: id, UserID: userID}
	err := o.getDB(tx).WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&save).Error
	if err != nil {
		return fmt.Errorf("failed to save opportunity: %w", err)
	}
	return nil
}

// RemoveSave removes an opportunity from a user's save list
func (o *OpportunityPostgreSQL) RemoveSave(ctx context.Context, tx *gorm.DB, id, userID string) error {
	err := o.getDB(tx).WithContext(ctx).
		Where("opportunity_id = ? AND user_id = ?", id, userID).
		Delete(&models.OpportunitySave{}).Error
	if err != nil {
		return fmt.Errorf("failed to unsave opportunity: %w", err)
	}
	return nil
}

// CountSavedBy counts a user's saved opportunities
func (o *OpportunityPostgreSQL) CountSavedBy(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := o.db.WithContext(ctx).
		Model(&models.OpportunitySave{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// GetStats returns catalog-wide statistics with caching
func (o *OpportunityPostgreSQL) GetStats(ctx context.Context) (*repositories.OpportunityStats, error) {
	var stats repositories.OpportunityStats

	err := o.cacheManager.Stats.CacheOrExecute(ctx, "opportunity:catalog", &stats, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		result := &repositories.OpportunityStats{}

		if err := o.db.WithContext(ctx).Model(&models.Opportunity{}).Count(&result.TotalOpportunities).Error; err != nil {
			return nil, fmt.Errorf("failed to count opportunities: %w", err)
		}
		if err := o.db.WithContext(ctx).Model(&models.Opportunity{}).
			Where("status = ?", models.OpportunityActive).
			Count(&result.ActiveOpportunities).Error; err != nil {
			return nil, fmt.Errorf("failed to count active opportunities: %w", err)
		}
		if err := o.db.WithContext(ctx).Model(&models.Application{}).Count(&result.TotalApplications).Error; err != nil {
			return nil, fmt.Errorf("failed to count applications: %w", err)
		}
		if result.TotalOpportunities > 0 {
			result.AverageApplications = float64(result.TotalApplications) / float64(result.TotalOpportunities)
		}

		return result, nil
	})
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

// GetAnalytics returns distribution and trend data for the admin analytics view
func (o *OpportunityPostgreSQL) GetAnalytics(ctx context.Context, trendDays int) (*repositories.OpportunityAnalytics, error) {
	if trendDays <= 0 {
		trendDays = 30
	}

	analytics := &repositories.OpportunityAnalytics{
		ByType:   make(map[models.OpportunityType]int64),
		ByStatus: make(map[models.OpportunityStatus]int64),
	}

	var typeCounts []struct {
		Type  models.OpportunityType
		Count int64
	}
	if err := o.db.WithContext(ctx).Model(&models.Opportunity{}).
		Select("type, COUNT(*) as count").
		Group("type").
		Scan(&typeCounts).Error; err != nil {
		return nil, fmt.Errorf("failed to count opportunities by type: %w", err)
	}
	for _, tc := range typeCounts {
		analytics.ByType[tc.Type] = tc.Count
	}

	var statusCounts []struct {
		Status models.OpportunityStatus
		Count  int64
	}
	if err := o.db.WithContext(ctx).Model(&models.Opportunity{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return nil, fmt.Errorf("failed to count opportunities by status: %w", err)
	}
	for _, sc := range statusCounts {
		analytics.ByStatus[sc.Status] = sc.Count
	}

	since := time.Now().AddDate(0, 0, -trendDays)
	var trends []repositories.ApplicationTrendData
	if err := o.db.WithContext(ctx).Model(&models.Application{}).
		Select("DATE(applied_at) as date, COUNT(*) as count").
		Where("applied_at >= ?", since).
		Group("DATE(applied_at)").
		Order("date ASC").
		Scan(&trends).Error; err != nil {
		return nil, fmt.Errorf("failed to compute application trends: %w", err)
	}
	analytics.ApplicationTrends = trends

	return analytics, nil
}

// CountByCreator counts opportunities owned by a creator, optionally by status
func (o *OpportunityPostgreSQL) CountByCreator(ctx context.Context, creatorID string, status *models.OpportunityStatus) (int64, error) {
	query := o.db.WithContext(ctx).
		Model(&models.Opportunity{}).
		Where("created_by = ?", creatorID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}
