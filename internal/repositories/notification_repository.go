package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/unilink-hq/placement-service/internal/models"
)

// NotificationRepository interface for inbox operations
type NotificationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, notification *models.Notification) error
	CreateBatch(ctx context.Context, tx *gorm.DB, notifications []*models.Notification) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Notification, error)

	// Inbox views, always scoped to one user
	ListByUser(ctx context.Context, userID string, filters NotificationFilters) ([]*models.Notification, int64, error)
	CountUnread(ctx context.Context, userID string) (int64, error)

	// Read-flag mutations; the only permitted updates
	MarkRead(ctx context.Context, tx *gorm.DB, id, userID string) error
	MarkAllRead(ctx context.Context, tx *gorm.DB, userID string) (int64, error)
}
