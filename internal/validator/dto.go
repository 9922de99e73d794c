package validator

import (
	"time"

	"github.com/unilink-hq/placement-service/internal/models"
)

// RegisterRequest represents the multi-step registration payload.
type RegisterRequest struct {
	Email               string          `json:"email" validate:"required,email"`
	Password            string          `json:"password" validate:"required,min=8,max=128"`
	ConfirmPassword     string          `json:"confirm_password" validate:"required,eqfield=Password"`
	Name                string          `json:"name" validate:"required,max=255"`
	Role                models.UserRole `json:"role" validate:"omitempty,oneof=student administrator"`
	MatriculationNumber string          `json:"matriculation_number" validate:"omitempty,max=50"`
	Course              string          `json:"course" validate:"omitempty,max=255"`
	Description         string          `json:"description" validate:"omitempty,max=2000"`
	OrganizationDetails string          `json:"organization_details" validate:"omitempty,max=2000"`
	PhoneNumber         string          `json:"phone_number" validate:"omitempty,max=20"`
}

// LoginRequest carries the credential pair for token issuance.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest exchanges a refresh token for a new pair.
type RefreshRequest struct {
	RefreshToken string `json:"refresh" validate:"required"`
}

// ChangePasswordRequest carries a password rotation.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=128"`
}

// UpdateProfileRequest carries partial profile updates. The completion rate
// is recomputed after applying it, never accepted from the caller.
type UpdateProfileRequest struct {
	Name                *string `json:"name" validate:"omitempty,max=255"`
	MatriculationNumber *string `json:"matriculation_number" validate:"omitempty,max=50"`
	Course              *string `json:"course" validate:"omitempty,max=255"`
	YearOfStudy         *int    `json:"year_of_study" validate:"omitempty,min=1,max=10"`
	Description         *string `json:"description" validate:"omitempty,max=2000"`
	OrganizationDetails *string `json:"organization_details" validate:"omitempty,max=2000"`
	PhoneNumber         *string `json:"phone_number" validate:"omitempty,max=20"`
	Location            *string `json:"location" validate:"omitempty,max=255"`
}

// OpportunityCreateRequest represents the request structure for creating opportunities
type OpportunityCreateRequest struct {
	Title               string                    `json:"title" validate:"required,opportunity_title"`
	Description         string                    `json:"description" validate:"required"`
	Organization        string                    `json:"organization" validate:"required,max=255"`
	Location            string                    `json:"location" validate:"required,max=255"`
	Type                models.OpportunityType    `json:"type" validate:"required,opportunity_type"`
	Status              *models.OpportunityStatus `json:"status" validate:"omitempty,opportunity_status"`
	Requirements        []string                  `json:"requirements" validate:"omitempty,dive,max=255"`
	RequiredDocuments   []string                  `json:"required_documents" validate:"omitempty,dive,max=255"`
	ApplicationDeadline time.Time                 `json:"application_deadline" validate:"required,future_date"`
	StartDate           *time.Time                `json:"start_date"`
	Duration            string                    `json:"duration" validate:"omitempty,max=100"`
	Compensation        string                    `json:"compensation" validate:"omitempty,max=255"`
}

// OpportunityUpdateRequest represents the request structure for updating opportunities
type OpportunityUpdateRequest struct {
	Title               *string                   `json:"title" validate:"omitempty,opportunity_title"`
	Description         *string                   `json:"description"`
	Organization        *string                   `json:"organization" validate:"omitempty,max=255"`
	Location            *string                   `json:"location" validate:"omitempty,max=255"`
	Type                *models.OpportunityType   `json:"type" validate:"omitempty,opportunity_type"`
	Status              *models.OpportunityStatus `json:"status" validate:"omitempty,opportunity_status"`
	Requirements        []string                  `json:"requirements" validate:"omitempty,dive,max=255"`
	RequiredDocuments   []string                  `json:"required_documents" validate:"omitempty,dive,max=255"`
	ApplicationDeadline *time.Time                `json:"application_deadline"`
	StartDate           *time.Time                `json:"start_date"`
	Duration            *string                   `json:"duration" validate:"omitempty,max=100"`
	Compensation        *string                   `json:"compensation" validate:"omitempty,max=255"`
}

// ApplicationCreateRequest represents a student submitting an application.
// The resume itself arrives as a multipart file; only its declared metadata
// is carried here for validation.
type ApplicationCreateRequest struct {
	OpportunityID     string `json:"opportunity" validate:"required,uuid4"`
	CoverLetter       string `json:"cover_letter" validate:"required"`
	ResumeFilename    string `json:"-" validate:"required"`
	ResumeContentType string `json:"-" validate:"required,document_type"`
	ResumeSize        int64  `json:"-" validate:"required,min=1"`
}

// ApplicationStatusUpdateRequest overwrites status and annotation fields.
type ApplicationStatusUpdateRequest struct {
	Status            *models.ApplicationStatus `json:"status" validate:"omitempty,application_status"`
	AdminNotes        *string                   `json:"admin_notes"`
	InterviewDate     *time.Time                `json:"interview_date"`
	InterviewFeedback *string                   `json:"interview_feedback"`
	RejectionReason   *string                   `json:"rejection_reason"`
}

// ScheduleInterviewRequest sets the interview fields and forces shortlisting.
type ScheduleInterviewRequest struct {
	InterviewDate  time.Time `json:"interview_date" validate:"required,future_date"`
	InterviewNotes string    `json:"interview_notes"`
}

// SubmitFeedbackRequest records interview feedback with a decision status.
type SubmitFeedbackRequest struct {
	Feedback string                   `json:"feedback" validate:"required"`
	Decision models.ApplicationStatus `json:"decision" validate:"required,application_status"`
}

// BulkStatusUpdateRequest mass-overwrites status for an opportunity's applications.
type BulkStatusUpdateRequest struct {
	ApplicationIDs []string                 `json:"application_ids" validate:"required,min=1,dive,uuid4"`
	Status         models.ApplicationStatus `json:"status" validate:"required,application_status"`
}
