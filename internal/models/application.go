package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ApplicationStatus string

const (
	ApplicationPending     ApplicationStatus = "pending"
	ApplicationUnderReview ApplicationStatus = "under_review"
	ApplicationShortlisted ApplicationStatus = "shortlisted"
	ApplicationAccepted    ApplicationStatus = "accepted"
	ApplicationRejected    ApplicationStatus = "rejected"
	ApplicationWithdrawn   ApplicationStatus = "withdrawn"
)

// ApplicationStatuses lists every status in workflow order. Stats and
// validation iterate it so the set stays defined in one place.
var ApplicationStatuses = []ApplicationStatus{
	ApplicationPending,
	ApplicationUnderReview,
	ApplicationShortlisted,
	ApplicationAccepted,
	ApplicationRejected,
	ApplicationWithdrawn,
}

// IsValid reports whether s is one of the declared status values.
func (s ApplicationStatus) IsValid() bool {
	for _, known := range ApplicationStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type Application struct {
	ID            string `json:"id" gorm:"primaryKey;size:36"`
	UserID        string `json:"user_id" gorm:"not null;index;size:36;uniqueIndex:idx_applications_user_opportunity"`
	OpportunityID string `json:"opportunity_id" gorm:"not null;index;size:36;uniqueIndex:idx_applications_user_opportunity"`

	Status      ApplicationStatus `json:"status" gorm:"default:pending;index;size:20" validate:"omitempty,oneof=pending under_review shortlisted accepted rejected withdrawn"`
	CoverLetter string            `json:"cover_letter" gorm:"type:text;not null" validate:"required"`

	// Storage key of the uploaded resume, nil until one is stored.
	ResumeKey *string `json:"resume_url" gorm:"size:500"`

	AdminNotes        string     `json:"admin_notes" gorm:"type:text"`
	InterviewDate     *time.Time `json:"interview_date"`
	InterviewFeedback string     `json:"interview_feedback" gorm:"type:text"`
	RejectionReason   string     `json:"rejection_reason" gorm:"type:text"`

	AppliedAt time.Time      `json:"applied_at" gorm:"autoCreateTime;index:,sort:desc"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	User        User        `json:"user" gorm:"foreignKey:UserID"`
	Opportunity Opportunity `json:"opportunity" gorm:"foreignKey:OpportunityID"`
}

func (Application) TableName() string {
	return "applications"
}

func (a *Application) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
