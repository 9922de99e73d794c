package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/unilink-hq/placement-service/internal/repositories"
)

type dashboardService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
}

func NewDashboardService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger) DashboardService {
	return &dashboardService{
		repo:   repo,
		db:     db,
		logger: logger,
	}
}

// GetDashboard returns the role-appropriate dashboard: students see their
// application pipeline, administrators see their listings.
func (s *dashboardService) GetDashboard(ctx context.Context, userID string) (*DashboardResponse, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	resp := &DashboardResponse{Role: user.Role}

	catalog, err := s.repo.Dashboard().GetCatalogDashboard(ctx, nil, userID, user.IsAdministrator())
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog dashboard: %w", err)
	}
	resp.Catalog = catalog

	if user.IsAdministrator() {
		admin, err := s.repo.Dashboard().GetAdminDashboard(ctx, nil, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to load admin dashboard: %w", err)
		}
		resp.Admin = admin
		return resp, nil
	}

	student, err := s.repo.Dashboard().GetStudentDashboard(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load student dashboard: %w", err)
	}
	resp.Student = student
	return resp, nil
}
