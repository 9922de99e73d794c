package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type OpportunityStatus string

const (
	OpportunityDraft    OpportunityStatus = "draft"
	OpportunityActive   OpportunityStatus = "active"
	OpportunityClosed   OpportunityStatus = "closed"
	OpportunityArchived OpportunityStatus = "archived"
)

type OpportunityType string

const (
	TypeInternship OpportunityType = "internship"
	TypeJob        OpportunityType = "job"
	TypeProject    OpportunityType = "project"
	TypeResearch   OpportunityType = "research"
)

type Opportunity struct {
	ID           string            `json:"id" gorm:"primaryKey;size:36"`
	Title        string            `json:"title" gorm:"not null;size:255" validate:"required,max=255"`
	Description  string            `json:"description" gorm:"type:text;not null" validate:"required"`
	Organization string            `json:"organization" gorm:"not null;size:255" validate:"required,max=255"`
	Location     string            `json:"location" gorm:"not null;size:255" validate:"required,max=255"`
	Type         OpportunityType   `json:"type" gorm:"not null;index;size:50" validate:"required,oneof=internship job project research"`
	Status       OpportunityStatus `json:"status" gorm:"default:draft;index;size:20" validate:"omitempty,oneof=draft active closed archived"`

	// Required skills / document types, free-form JSON lists
	Requirements      datatypes.JSON `json:"requirements" gorm:"type:jsonb"`
	RequiredDocuments datatypes.JSON `json:"required_documents" gorm:"type:jsonb"`

	ApplicationDeadline time.Time  `json:"application_deadline" gorm:"not null;index" validate:"required"`
	StartDate           *time.Time `json:"start_date"`
	Duration            string     `json:"duration" gorm:"size:100"`
	Compensation        string     `json:"compensation" gorm:"size:255"`

	// Denormalized counters. ViewsCount is monotonic; ApplicationsCount is
	// always recomputed from the live application rows, never incremented.
	ViewsCount        int `json:"views_count" gorm:"default:0"`
	ApplicationsCount int `json:"applications_count" gorm:"default:0"`

	// Metadata
	CreatedBy string         `json:"created_by" gorm:"not null;index;size:36"`
	CreatedAt time.Time      `json:"created_at" gorm:"index:,sort:desc"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Creator      User          `json:"creator" gorm:"foreignKey:CreatedBy"`
	Applications []Application `json:"-" gorm:"foreignKey:OpportunityID;constraint:OnDelete:CASCADE"`
	SavedBy      []*User       `json:"-" gorm:"many2many:opportunity_saves;"`
}

func (Opportunity) TableName() string {
	return "opportunities"
}

func (o *Opportunity) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// OpportunitySave is the join row behind the saved-by set. Declared so the
// toggle operation can target the join table directly.
type OpportunitySave struct {
	OpportunityID string `gorm:"primaryKey;size:36"`
	UserID        string `gorm:"primaryKey;size:36"`
}

func (OpportunitySave) TableName() string {
	return "opportunity_saves"
}
