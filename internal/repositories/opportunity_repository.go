package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/unilink-hq/placement-service/internal/models"
)

// OpportunityRepository interface for catalog operations
type OpportunityRepository interface {
	// Core CRUD
	Create(ctx context.Context, tx *gorm.DB, opportunity *models.Opportunity) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Opportunity, error)
	Update(ctx context.Context, tx *gorm.DB, opportunity *models.Opportunity) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error

	// List and search
	List(ctx context.Context, filters OpportunityFilters) ([]*models.Opportunity, int64, error)
	GetSavedByUser(ctx context.Context, userID string, filters OpportunityFilters) ([]*models.Opportunity, int64, error)

	// Aggregate consistency: sets applications_count to the live count of
	// application rows and persists only that column.
	RecomputeApplicationCount(ctx context.Context, tx *gorm.DB, id string) (int64, error)

	// Monotonic view counter
	IncrementViews(ctx context.Context, tx *gorm.DB, id string) error

	// Save-list membership
	IsSavedBy(ctx context.Context, tx *gorm.DB, id, userID string) (bool, error)
	AddSave(ctx context.Context, tx *gorm.DB, id, userID string) error
	RemoveSave(ctx context.Context, tx *gorm.DB, id, userID string) error
	CountSavedBy(ctx context.Context, userID string) (int64, error)

	// Statistics
	GetStats(ctx context.Context) (*OpportunityStats, error)
	GetAnalytics(ctx context.Context, trendDays int) (*OpportunityAnalytics, error)
	CountByCreator(ctx context.Context, creatorID string, status *models.OpportunityStatus) (int64, error)
}
