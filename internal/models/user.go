package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleStudent       UserRole = "student"
	RoleAdministrator UserRole = "administrator"
)

type User struct {
	ID           string   `json:"id" gorm:"primaryKey;size:36"`
	Email        string   `json:"email" gorm:"uniqueIndex;not null;size:255" validate:"required,email"`
	PasswordHash string   `json:"-" gorm:"not null;size:255"`
	Name         string   `json:"name" gorm:"not null;size:255" validate:"required,max=255"`
	Role         UserRole `json:"role" gorm:"not null;default:student;index;size:20" validate:"omitempty,oneof=student administrator"`

	// Profile info
	MatriculationNumber string  `json:"matriculation_number" gorm:"size:50"`
	Course              string  `json:"course" gorm:"size:255"`
	YearOfStudy         *int    `json:"year_of_study"`
	Description         string  `json:"description" gorm:"type:text"`
	OrganizationDetails string  `json:"organization_details" gorm:"type:text"`
	PhoneNumber         string  `json:"phone_number" gorm:"size:20"`
	ProfilePictureURL   *string `json:"profile_picture" gorm:"size:500"`
	Location            string  `json:"location" gorm:"size:255"`

	// Derived, recomputed on every profile mutation. Never set directly.
	CompletionRate int `json:"completion_rate" gorm:"default:0"`

	// Status
	IsActive bool `json:"is_active" gorm:"default:true"`

	JoinDate  time.Time      `json:"join_date" gorm:"autoCreateTime;index:,sort:desc"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Applications       []Application  `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	SavedOpportunities []*Opportunity `json:"-" gorm:"many2many:opportunity_saves;"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// CalculateCompletionRate recomputes the profile completion percentage from
// the eight profile fields. The caller is responsible for persisting it.
func (u *User) CalculateCompletionRate() int {
	fields := []bool{
		u.Name != "",
		u.Email != "",
		u.PhoneNumber != "",
		u.Location != "",
		u.Course != "",
		u.YearOfStudy != nil,
		u.Description != "",
		u.ProfilePictureURL != nil && *u.ProfilePictureURL != "",
	}
	completed := 0
	for _, ok := range fields {
		if ok {
			completed++
		}
	}
	u.CompletionRate = completed * 100 / len(fields)
	return u.CompletionRate
}

// IsAdministrator reports whether the user holds the administrator role.
func (u *User) IsAdministrator() bool {
	return u.Role == RoleAdministrator
}
