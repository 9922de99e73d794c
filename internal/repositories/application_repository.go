package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/unilink-hq/placement-service/internal/models"
)

// ApplicationRepository interface for ledger operations
type ApplicationRepository interface {
	// Core CRUD. Create relies on the (user_id, opportunity_id) uniqueness
	// constraint for duplicate rejection; there is no pre-check read.
	Create(ctx context.Context, tx *gorm.DB, application *models.Application) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Application, error)
	GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id string) (*models.Application, error)
	Update(ctx context.Context, tx *gorm.DB, application *models.Application) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error

	// List and search
	List(ctx context.Context, filters ApplicationFilters) ([]*models.Application, int64, error)
	ListForExport(ctx context.Context, filters ApplicationFilters) ([]*models.Application, error)

	// Bulk status overwrite scoped to one opportunity. Returns affected rows.
	BulkUpdateStatus(ctx context.Context, tx *gorm.DB, opportunityID string, applicationIDs []string, status models.ApplicationStatus) (int64, error)

	// Checks
	ExistsByUserAndOpportunity(ctx context.Context, tx *gorm.DB, userID, opportunityID string) (bool, error)

	// Statistics
	GetStats(ctx context.Context, filters ApplicationFilters) (*ApplicationStats, error)
	CountByUser(ctx context.Context, userID string, status *models.ApplicationStatus) (int64, error)
	CountByOpportunityOwner(ctx context.Context, ownerID string, status *models.ApplicationStatus) (int64, error)
	CountUpcomingInterviews(ctx context.Context, userID string, after time.Time) (int64, error)
}
