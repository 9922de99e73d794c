package services

import (
	"context"
	"io"
	"time"

	"github.com/unilink-hq/placement-service/internal/models"
	"github.com/unilink-hq/placement-service/internal/repositories"
	"github.com/unilink-hq/placement-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type RegisterRequest = validator.RegisterRequest
type LoginRequest = validator.LoginRequest
type RefreshRequest = validator.RefreshRequest
type ChangePasswordRequest = validator.ChangePasswordRequest
type UpdateProfileRequest = validator.UpdateProfileRequest
type CreateOpportunityRequest = validator.OpportunityCreateRequest
type UpdateOpportunityRequest = validator.OpportunityUpdateRequest
type CreateApplicationRequest = validator.ApplicationCreateRequest
type UpdateApplicationStatusRequest = validator.ApplicationStatusUpdateRequest
type ScheduleInterviewRequest = validator.ScheduleInterviewRequest
type SubmitFeedbackRequest = validator.SubmitFeedbackRequest
type BulkStatusUpdateRequest = validator.BulkStatusUpdateRequest

// TokenPair is issued on login and refresh
type TokenPair struct {
	AccessToken  string       `json:"access"`
	RefreshToken string       `json:"refresh"`
	User         *models.User `json:"user"`
}

type OpportunityResponse struct {
	*models.Opportunity
	IsSaved    bool `json:"is_saved"`
	HasApplied bool `json:"has_applied"`
	CanEdit    bool `json:"can_edit"`
}

type OpportunityListResponse struct {
	Opportunities []*OpportunityResponse `json:"opportunities"`
	Total         int64                  `json:"total"`
	Page          int                    `json:"page"`
	Size          int                    `json:"size"`
}

type ApplicationResponse struct {
	*models.Application
	ResumeURL string `json:"resume_url,omitempty"`
	CanEdit   bool   `json:"can_edit"`
}

type ApplicationListResponse struct {
	Applications []*ApplicationResponse `json:"applications"`
	Total        int64                  `json:"total"`
	Page         int                    `json:"page"`
	Size         int                    `json:"size"`
}

type NotificationListResponse struct {
	Notifications []*models.Notification `json:"notifications"`
	Total         int64                  `json:"total"`
	Unread        int64                  `json:"unread"`
	Page          int                    `json:"page"`
	Size          int                    `json:"size"`
}

type BulkStatusUpdateResponse struct {
	Updated int64 `json:"updated"`
}

// ResumeUpload bundles the multipart resume file with its declared metadata.
type ResumeUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// DashboardResponse is the role-scoped dashboard payload. Exactly one of
// the role sections is populated.
type DashboardResponse struct {
	Role    models.UserRole                    `json:"role"`
	Student *repositories.StudentDashboardData `json:"student,omitempty"`
	Admin   *repositories.AdminDashboardData   `json:"admin,omitempty"`
	Catalog *repositories.CatalogDashboardData `json:"catalog"`
}

// ===== SERVICE INTERFACES =====

type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*TokenPair, error)
	Login(ctx context.Context, req *LoginRequest) (*TokenPair, error)
	Refresh(ctx context.Context, req *RefreshRequest) (*TokenPair, error)
	ChangePassword(ctx context.Context, userID string, req *ChangePasswordRequest) error

	// ParseAccessToken validates a bearer token and returns the claims.
	ParseAccessToken(token string) (*AccessClaims, error)
}

type UserService interface {
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*models.User, error)
	UploadProfilePicture(ctx context.Context, userID string, filename, contentType string, size int64, content io.Reader) (*models.User, error)

	// Admin-only listing
	List(ctx context.Context, actorID string, filters repositories.UserFilters) ([]*models.User, int64, error)
	GetByID(ctx context.Context, actorID, userID string) (*models.User, error)
	GetStats(ctx context.Context, actorID string) (*repositories.UserStats, error)
}

type OpportunityService interface {
	// Core CRUD operations
	Create(ctx context.Context, req *CreateOpportunityRequest, actorID string) (*OpportunityResponse, error)
	GetByID(ctx context.Context, id string, actorID string) (*OpportunityResponse, error)
	Update(ctx context.Context, id string, req *UpdateOpportunityRequest, actorID string) (*OpportunityResponse, error)
	Delete(ctx context.Context, id string, actorID string) error

	// List and search operations
	List(ctx context.Context, filters repositories.OpportunityFilters, actorID string) (*OpportunityListResponse, error)
	GetSaved(ctx context.Context, actorID string, filters repositories.OpportunityFilters) (*OpportunityListResponse, error)

	// Save-list toggle; returns the resulting membership
	ToggleSave(ctx context.Context, id string, actorID string) (bool, error)

	// Duplicate clones an opportunity as a fresh draft
	Duplicate(ctx context.Context, id string, actorID string) (*OpportunityResponse, error)

	// Statistics
	GetStats(ctx context.Context, actorID string) (*repositories.OpportunityStats, error)
	GetAnalytics(ctx context.Context, actorID string, trendDays int) (*repositories.OpportunityAnalytics, error)
}

type ApplicationService interface {
	// Submission with the initial resume upload
	Create(ctx context.Context, req *CreateApplicationRequest, resume *ResumeUpload, actorID string) (*ApplicationResponse, error)

	GetByID(ctx context.Context, id string, actorID string) (*ApplicationResponse, error)
	List(ctx context.Context, filters repositories.ApplicationFilters, actorID string) (*ApplicationListResponse, error)

	// Status workflow
	UpdateStatus(ctx context.Context, id string, req *UpdateApplicationStatusRequest, actorID string) (*ApplicationResponse, error)
	ScheduleInterview(ctx context.Context, id string, req *ScheduleInterviewRequest, actorID string) (*ApplicationResponse, error)
	SubmitFeedback(ctx context.Context, id string, req *SubmitFeedbackRequest, actorID string) (*ApplicationResponse, error)
	BulkUpdateStatus(ctx context.Context, opportunityID string, req *BulkStatusUpdateRequest, actorID string) (*BulkStatusUpdateResponse, error)
	Withdraw(ctx context.Context, id string, actorID string) (*ApplicationResponse, error)

	// Resume replacement
	UploadResume(ctx context.Context, id string, resume *ResumeUpload, actorID string) (*ApplicationResponse, error)

	// Statistics and export
	GetStats(ctx context.Context, filters repositories.ApplicationFilters, actorID string) (*repositories.ApplicationStats, error)
	Export(ctx context.Context, filters repositories.ApplicationFilters, actorID string) (*ExportResult, error)
}

// ExportResult carries a generated spreadsheet.
type ExportResult struct {
	Filename    string
	ContentType string
	Content     []byte
}

type NotificationService interface {
	// Inbox operations, always scoped to the authenticated user
	List(ctx context.Context, userID string, filters repositories.NotificationFilters) (*NotificationListResponse, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)

	// Event consumption; Start blocks until ctx is cancelled
	Start(ctx context.Context) error
}

type DashboardService interface {
	GetDashboard(ctx context.Context, userID string) (*DashboardResponse, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	// Core service getters
	Auth() AuthService
	User() UserService
	Opportunity() OpportunityService
	Application() ApplicationService
	Notification() NotificationService
	Dashboard() DashboardService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// AccessClaims are the verified fields of a bearer token.
type AccessClaims struct {
	UserID    string
	Email     string
	Role      models.UserRole
	ExpiresAt time.Time
}
