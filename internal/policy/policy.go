// Package policy is the single place role and ownership rules live. Every
// service consults it instead of re-checking roles inline.
package policy

import (
	"github.com/unilink-hq/placement-service/internal/models"
	"github.com/unilink-hq/placement-service/internal/repositories"
)

// Action identifies an operation being authorized.
type Action string

const (
	ActionView         Action = "view"
	ActionManage       Action = "manage"
	ActionUpdateStatus Action = "update_status"
	ActionWithdraw     Action = "withdraw"
)

// AccessPolicy decides owner-vs-admin visibility and mutation rights.
type AccessPolicy interface {
	// CanViewOpportunity: administrators see everything, students only
	// active listings.
	CanViewOpportunity(actor *models.User, opportunity *models.Opportunity) bool

	// CanManageOpportunity: only the creating administrator mutates a listing.
	CanManageOpportunity(actor *models.User, opportunity *models.Opportunity) bool

	// CanManageApplication covers read and withdraw for the owning student,
	// everything for administrators. Status transitions go through
	// CanTransitionApplication instead.
	CanManageApplication(actor *models.User, application *models.Application) bool

	// CanTransitionApplication: status overwrites are administrator-only.
	CanTransitionApplication(actor *models.User, application *models.Application) bool

	// CanScheduleInterview: restricted to the administrator owning the
	// application's opportunity.
	CanScheduleInterview(actor *models.User, application *models.Application, opportunity *models.Opportunity) bool

	// ScopeApplications narrows a filter set to what the actor may list.
	ScopeApplications(actor *models.User, filters repositories.ApplicationFilters) repositories.ApplicationFilters

	// ScopeUsers narrows a user listing to what the actor may see.
	ScopeUsers(actor *models.User, filters repositories.UserFilters) (repositories.UserFilters, bool)
}

type rolePolicy struct{}

// NewAccessPolicy returns the fixed student/administrator policy.
func NewAccessPolicy() AccessPolicy {
	return rolePolicy{}
}

func (rolePolicy) CanViewOpportunity(actor *models.User, opportunity *models.Opportunity) bool {
	if actor.IsAdministrator() {
		return true
	}
	return opportunity.Status == models.OpportunityActive
}

func (rolePolicy) CanManageOpportunity(actor *models.User, opportunity *models.Opportunity) bool {
	return actor.IsAdministrator() && opportunity.CreatedBy == actor.ID
}

func (rolePolicy) CanManageApplication(actor *models.User, application *models.Application) bool {
	if actor.IsAdministrator() {
		return true
	}
	return application.UserID == actor.ID
}

func (rolePolicy) CanTransitionApplication(actor *models.User, application *models.Application) bool {
	return actor.IsAdministrator()
}

func (rolePolicy) CanScheduleInterview(actor *models.User, application *models.Application, opportunity *models.Opportunity) bool {
	return actor.IsAdministrator() && opportunity.CreatedBy == actor.ID
}

func (rolePolicy) ScopeApplications(actor *models.User, filters repositories.ApplicationFilters) repositories.ApplicationFilters {
	if actor.IsAdministrator() {
		return filters
	}
	userID := actor.ID
	filters.UserID = &userID
	return filters
}

func (rolePolicy) ScopeUsers(actor *models.User, filters repositories.UserFilters) (repositories.UserFilters, bool) {
	if actor.IsAdministrator() {
		return filters, true
	}
	// Students only ever see themselves; the caller loads by id instead.
	return filters, false
}
