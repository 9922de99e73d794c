package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"github.com/unilink-hq/placement-service/internal/models"
	"github.com/unilink-hq/placement-service/internal/repositories"
	"github.com/unilink-hq/placement-service/internal/storage"
	"github.com/unilink-hq/placement-service/internal/validator"
)

const maxProfilePictureSize = 2 * 1024 * 1024

type userService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	store     storage.BlobStore
}

func NewUserService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, store storage.BlobStore) UserService {
	return &userService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		store:     store,
	}
}

// GetProfile returns the caller's own profile
func (s *userService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// UpdateProfile applies partial updates and recomputes the completion rate
func (s *userService) UpdateProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*models.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.MatriculationNumber != nil {
		user.MatriculationNumber = *req.MatriculationNumber
	}
	if req.Course != nil {
		user.Course = *req.Course
	}
	if req.YearOfStudy != nil {
		user.YearOfStudy = req.YearOfStudy
	}
	if req.Description != nil {
		user.Description = *req.Description
	}
	if req.OrganizationDetails != nil {
		user.OrganizationDetails = *req.OrganizationDetails
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = *req.PhoneNumber
	}
	if req.Location != nil {
		user.Location = *req.Location
	}

	user.CompletionRate = user.CalculateCompletionRate()

	if err := s.repo.User().Update(ctx, nil, user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return user, nil
}

// UploadProfilePicture stores the image and updates the profile, then
// recomputes the completion rate since the picture counts toward it.
func (s *userService) UploadProfilePicture(ctx context.Context, userID string, filename, contentType string, size int64, content io.Reader) (*models.User, error) {
	if size > maxProfilePictureSize {
		return nil, validator.ValidationErrors{{
			Field:   "profile_picture",
			Message: "must not exceed 2 MB",
			Value:   size,
			Rule:    "max_size",
		}}
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, validator.ValidationErrors{{
			Field:   "profile_picture",
			Message: "must be an image",
			Value:   contentType,
			Rule:    "content_type",
		}}
	}

	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	key, err := s.store.Store(ctx, "profile_pictures", filename, content)
	if err != nil {
		return nil, fmt.Errorf("failed to store profile picture: %w", err)
	}

	oldKey := user.ProfilePictureURL
	url := s.store.URL(key)
	user.ProfilePictureURL = &url
	user.CompletionRate = user.CalculateCompletionRate()

	if err := s.repo.User().Update(ctx, nil, user); err != nil {
		// Roll back the orphaned blob
		if cleanupErr := s.store.Delete(ctx, key); cleanupErr != nil {
			s.logger.Warn("failed to clean up profile picture", "key", key, "error", cleanupErr)
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	if oldKey != nil {
		if err := s.store.Delete(ctx, s.store.KeyFromURL(*oldKey)); err != nil {
			s.logger.Warn("failed to delete old profile picture", "error", err)
		}
	}

	return user, nil
}

// List returns users for the admin directory
func (s *userService) List(ctx context.Context, actorID string, filters repositories.UserFilters) ([]*models.User, int64, error) {
	actor, err := s.repo.User().GetByID(ctx, actorID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get actor: %w", err)
	}
	if !actor.IsAdministrator() {
		return nil, 0, NewPermissionError(actorID, "", "user", "list", "administrator role required")
	}

	return s.repo.User().List(ctx, filters)
}

// GetByID returns a user; students can only read themselves
func (s *userService) GetByID(ctx context.Context, actorID, userID string) (*models.User, error) {
	if actorID != userID {
		actor, err := s.repo.User().GetByID(ctx, actorID)
		if err != nil {
			return nil, fmt.Errorf("failed to get actor: %w", err)
		}
		if !actor.IsAdministrator() {
			return nil, NewPermissionError(actorID, userID, "user", "read", "administrator role required")
		}
	}

	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetStats returns platform user statistics, admin-only
func (s *userService) GetStats(ctx context.Context, actorID string) (*repositories.UserStats, error) {
	actor, err := s.repo.User().GetByID(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get actor: %w", err)
	}
	if !actor.IsAdministrator() {
		return nil, NewPermissionError(actorID, "", "user", "stats", "administrator role required")
	}

	return s.repo.User().GetStats(ctx)
}
