package policy

import (
	"testing"

	"github.com/unilink-hq/placement-service/internal/models"
	"github.com/unilink-hq/placement-service/internal/repositories"
)

var (
	student      = &models.User{ID: "student-1", Role: models.RoleStudent}
	otherStudent = &models.User{ID: "student-2", Role: models.RoleStudent}
	admin        = &models.User{ID: "admin-1", Role: models.RoleAdministrator}
	otherAdmin   = &models.User{ID: "admin-2", Role: models.RoleAdministrator}
)

func TestRolePolicy_CanViewOpportunity(t *testing.T) {
	p := NewAccessPolicy()

	tests := []struct {
		name   string
		actor  *models.User
		status models.OpportunityStatus
		want   bool
	}{
		{name: "student sees active", actor: student, status: models.OpportunityActive, want: true},
		{name: "student cannot see draft", actor: student, status: models.OpportunityDraft, want: false},
		{name: "student cannot see closed", actor: student, status: models.OpportunityClosed, want: false},
		{name: "student cannot see archived", actor: student, status: models.OpportunityArchived, want: false},
		{name: "admin sees draft", actor: admin, status: models.OpportunityDraft, want: true},
		{name: "admin sees archived", actor: admin, status: models.OpportunityArchived, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opportunity := &models.Opportunity{Status: tt.status}
			if got := p.CanViewOpportunity(tt.actor, opportunity); got != tt.want {
				t.Errorf("CanViewOpportunity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRolePolicy_CanManageOpportunity(t *testing.T) {
	p := NewAccessPolicy()
	opportunity := &models.Opportunity{CreatedBy: admin.ID}

	if !p.CanManageOpportunity(admin, opportunity) {
		t.Error("Expected the creating administrator to manage the listing")
	}
	if p.CanManageOpportunity(otherAdmin, opportunity) {
		t.Error("Expected another administrator to be denied")
	}
	if p.CanManageOpportunity(student, opportunity) {
		t.Error("Expected students to be denied")
	}
}

func TestRolePolicy_CanManageApplication(t *testing.T) {
	p := NewAccessPolicy()
	application := &models.Application{UserID: student.ID}

	if !p.CanManageApplication(student, application) {
		t.Error("Expected the applicant to access their own application")
	}
	if p.CanManageApplication(otherStudent, application) {
		t.Error("Expected another student to be denied")
	}
	if !p.CanManageApplication(admin, application) {
		t.Error("Expected administrators to access any application")
	}
}

func TestRolePolicy_CanTransitionApplication(t *testing.T) {
	p := NewAccessPolicy()
	application := &models.Application{UserID: student.ID}

	if p.CanTransitionApplication(student, application) {
		t.Error("Expected the applicant to be denied status overwrites")
	}
	if !p.CanTransitionApplication(admin, application) {
		t.Error("Expected administrators to transition any application")
	}
}

func TestRolePolicy_CanScheduleInterview(t *testing.T) {
	p := NewAccessPolicy()
	application := &models.Application{UserID: student.ID}
	opportunity := &models.Opportunity{CreatedBy: admin.ID}

	if !p.CanScheduleInterview(admin, application, opportunity) {
		t.Error("Expected the owning administrator to schedule interviews")
	}
	if p.CanScheduleInterview(otherAdmin, application, opportunity) {
		t.Error("Expected a non-owning administrator to be denied")
	}
	if p.CanScheduleInterview(student, application, opportunity) {
		t.Error("Expected students to be denied")
	}
}

func TestRolePolicy_ScopeApplications(t *testing.T) {
	p := NewAccessPolicy()

	t.Run("students are pinned to their own rows", func(t *testing.T) {
		other := otherStudent.ID
		scoped := p.ScopeApplications(student, repositories.ApplicationFilters{UserID: &other})
		if scoped.UserID == nil || *scoped.UserID != student.ID {
			t.Fatalf("Expected filters pinned to %s, got %v", student.ID, scoped.UserID)
		}
	})

	t.Run("administrators keep their filters", func(t *testing.T) {
		scoped := p.ScopeApplications(admin, repositories.ApplicationFilters{})
		if scoped.UserID != nil {
			t.Fatalf("Expected unscoped filters, got pinned to %s", *scoped.UserID)
		}
	})
}

func TestRolePolicy_ScopeUsers(t *testing.T) {
	p := NewAccessPolicy()

	if _, allowed := p.ScopeUsers(student, repositories.UserFilters{}); allowed {
		t.Error("Expected students to be denied user listings")
	}
	if _, allowed := p.ScopeUsers(admin, repositories.UserFilters{}); !allowed {
		t.Error("Expected administrators to list users")
	}
}
