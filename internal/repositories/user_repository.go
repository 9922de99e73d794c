package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/unilink-hq/placement-service/internal/models"
)

// UserRepository interface for identity-store operations
type UserRepository interface {
	// Write operations
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	Update(ctx context.Context, tx *gorm.DB, user *models.User) error
	UpdateFields(ctx context.Context, tx *gorm.DB, id string, fields map[string]interface{}) error

	// Read operations
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.User, error)

	// List and search operations
	List(ctx context.Context, filters UserFilters) ([]*models.User, int64, error)

	// Validation and checks
	ExistsByID(ctx context.Context, id string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	HasRole(ctx context.Context, id string, role models.UserRole) (bool, error)

	// Statistics
	GetStats(ctx context.Context) (*UserStats, error)
}
