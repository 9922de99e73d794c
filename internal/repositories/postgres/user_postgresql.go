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

type UserPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewUserPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.UserRepository {
	return &UserPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (u *UserPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return u.db
}

// Create creates a new user account
func (u *UserPostgreSQL) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	if err := u.getDB(tx).WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	cache.SafeInvalidatePattern(ctx, u.cacheManager.Stats, "user:*")
	return nil
}

// Update persists the full user row and invalidates cache
func (u *UserPostgreSQL) Update(ctx context.Context, tx *gorm.DB, user *models.User) error {
	if err := u.getDB(tx).WithContext(ctx).Save(user).Error; err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	cache.InvalidateUserCache(ctx, u.cacheManager, user.ID)
	return nil
}

// UpdateFields updates only the given columns
func (u *UserPostgreSQL) UpdateFields(ctx context.Context, tx *gorm.DB, id string, fields map[string]interface{}) error {
	result := u.getDB(tx).WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("failed to update user fields: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	cache.InvalidateUserCache(ctx, u.cacheManager, id)
	return nil
}

// GetByID retrieves a user by ID with caching
func (u *UserPostgreSQL) GetByID(ctx context.Context, id string) (*models.User, error) {
	cacheKey := fmt.Sprintf("id:%s", id)
	var user models.User

	err := u.cacheManager.User.CacheOrExecute(ctx, cacheKey, &user, cache.UserCacheConfig.TTL, func() (interface{}, error) {
		var dbUser models.User
		if err := u.db.WithContext(ctx).First(&dbUser, "id = ?", id).Error; err != nil {
			return nil, err
		}
		return &dbUser, nil
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// GetByEmail retrieves a user by email. Not cached: used on the login path
// where a stale password hash would be harmful.
func (u *UserPostgreSQL) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByIDs retrieves multiple users by their IDs
func (u *UserPostgreSQL) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []*models.User
	if err := u.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	return users, nil
}

// List returns users matching the filters with a total count
func (u *UserPostgreSQL) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	query := u.db.WithContext(ctx).Model(&models.User{})

	if filters.Role != nil {
		query = query.Where("role = ?", *filters.Role)
	}
	if filters.Query != "" {
		pattern := "%" + filters.Query + "%"
		query = query.Where("name ILIKE ? OR email ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	var users []*models.User
	query = u.helpers.ApplyPagination(query, filters.Limit, filters.Offset)
	if err := query.Order("join_date DESC").Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	return users, total, nil
}

// ExistsByID checks whether a user exists
func (u *UserPostgreSQL) ExistsByID(ctx context.Context, id string) (bool, error) {
	var count int64
	err := u.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

// ExistsByEmail checks whether an email is already registered
func (u *UserPostgreSQL) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := u.db.WithContext(ctx).
		Model(&models.User{}).
		Where("email = ?", email).
		Count(&count).Error
	return count > 0, err
}

// HasRole checks whether a user holds the given role
func (u *UserPostgreSQL) HasRole(ctx context.Context, id string, role models.UserRole) (bool, error) {
	var count int64
	err := u.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND role = ?", id, role).
		Count(&count).Error
	return count > 0, err
}

// GetStats returns platform-wide user statistics with caching
func (u *UserPostgreSQL) GetStats(ctx context.Context) (*repositories.UserStats, error) {
	var stats repositories.UserStats

	err := u.cacheManager.Stats.CacheOrExecute(ctx, "user:platform", &stats, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		result := &repositories.UserStats{
			UserRoles: make(map[models.UserRole]int64),
		}

		if err := u.db.WithContext(ctx).Model(&models.User{}).Count(&result.TotalUsers).Error; err != nil {
			return nil, fmt.Errorf("failed to count users: %w", err)
		}
		if err := u.db.WithContext(ctx).Model(&models.User{}).Where("is_active = ?", true).Count(&result.ActiveUsers).Error; err != nil {
			return nil, fmt.Errorf("failed to count active users: %w", err)
		}

		monthStart := time.Now().AddDate(0, 0, -30)
		if err := u.db.WithContext(ctx).Model(&models.User{}).Where("join_date >= ?", monthStart).Count(&result.NewUsersThisMonth).Error; err != nil {
			return nil, fmt.Errorf("failed to count new users: %w", err)
		}

		var roleCounts []struct {
			Role  models.UserRole
			Count int64
		}
		if err := u.db.WithContext(ctx).Model(&models.User{}).
			Select("role, COUNT(*) as count").
			Group("role").
			Scan(&roleCounts).Error; err != nil {
			return nil, fmt.Errorf("failed to count users by role: %w", err)
		}
		for _, rc := range roleCounts {
			result.UserRoles[rc.Role] = rc.Count
		}

		return result, nil
	})
	if err != nil {
		return nil, err
	}

	return &stats, nil
}
