package services

import (
	"errors"
	"fmt"
)

// Sentinel errors translated to HTTP statuses at the handler layer
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrOpportunityNotFound  = errors.New("opportunity not found")
	ErrApplicationNotFound  = errors.New("application not found")
	ErrNotificationNotFound = errors.New("notification not found")

	ErrEmailTaken           = errors.New("email already registered")
	ErrDuplicateApplication = errors.New("application already exists for this opportunity")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrInvalidToken         = errors.New("invalid or expired token")
	ErrAccountDisabled      = errors.New("account is disabled")
)

// PermissionError carries the actor, resource and denied action for logging
type PermissionError struct {
	UserID     string
	ResourceID string
	Resource   string
	Action     string
	Reason     string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %s: %s",
		e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

// NewPermissionError creates a permission error
func NewPermissionError(userID, resourceID, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// IsPermissionError reports whether err is a permission denial.
func IsPermissionError(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}
