package validator

import (
	"testing"
	"time"

	"github.com/unilink-hq/placement-service/internal/models"
)

func TestValidateResume(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		size        int64
		maxSize     int64
		wantErrors  int
		wantRule    string
	}{
		{
			name:        "pdf within limit",
			contentType: "application/pdf",
			size:        1 * 1024 * 1024,
			maxSize:     MaxResumeSizeCreate,
			wantErrors:  0,
		},
		{
			name:        "docx within limit",
			contentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			size:        2 * 1024 * 1024,
			maxSize:     MaxResumeSizeCreate,
			wantErrors:  0,
		},
		{
			name:        "legacy doc within limit",
			contentType: "application/msword",
			size:        512,
			maxSize:     MaxResumeSizeCreate,
			wantErrors:  0,
		},
		{
			name:        "content type with parameters",
			contentType: "application/pdf; charset=binary",
			size:        512,
			maxSize:     MaxResumeSizeCreate,
			wantErrors:  0,
		},
		{
			name:        "rejects plain text",
			contentType: "text/plain",
			size:        512,
			maxSize:     MaxResumeSizeCreate,
			wantErrors:  1,
			wantRule:    "document_type",
		},
		{
			name:        "rejects executable disguised by extension",
			contentType: "application/x-executable",
			size:        512,
			maxSize:     MaxResumeSizeCreate,
			wantErrors:  1,
			wantRule:    "document_type",
		},
		{
			name:        "rejects oversize on create",
			contentType: "application/pdf",
			size:        MaxResumeSizeCreate + 1,
			maxSize:     MaxResumeSizeCreate,
			wantErrors:  1,
			wantRule:    "max_size",
		},
		{
			name:        "replacement ceiling is higher",
			contentType: "application/pdf",
			size:        7 * 1024 * 1024,
			maxSize:     MaxResumeSizeReplace,
			wantErrors:  0,
		},
		{
			name:        "rejects oversize on replacement",
			contentType: "application/pdf",
			size:        MaxResumeSizeReplace + 1,
			maxSize:     MaxResumeSizeReplace,
			wantErrors:  1,
			wantRule:    "max_size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateResume(tt.contentType, tt.size, tt.maxSize)
			if len(errs) != tt.wantErrors {
				t.Fatalf("Expected %d errors, got %d: %v", tt.wantErrors, len(errs), errs)
			}
			if tt.wantErrors > 0 && errs[0].Rule != tt.wantRule {
				t.Errorf("Expected rule %q, got %q", tt.wantRule, errs[0].Rule)
			}
		})
	}
}

func TestValidateOpportunityCreate(t *testing.T) {
	bv := NewBusinessValidator()

	valid := func() *OpportunityCreateRequest {
		return &OpportunityCreateRequest{
			Title:               "Backend Internship",
			Description:         "Work on the placement platform backend.",
			Organization:        "Unilink",
			Location:            "Remote",
			Type:                models.TypeInternship,
			ApplicationDeadline: time.Now().Add(30 * 24 * time.Hour),
		}
	}

	t.Run("valid request passes", func(t *testing.T) {
		if errs := bv.ValidateOpportunityCreate(valid()); len(errs) != 0 {
			t.Fatalf("Expected no errors, got %v", errs)
		}
	})

	t.Run("past deadline fails", func(t *testing.T) {
		req := valid()
		req.ApplicationDeadline = time.Now().Add(-time.Hour)
		errs := bv.ValidateOpportunityCreate(req)
		if len(errs) == 0 {
			t.Fatal("Expected a future_date error")
		}
	})

	t.Run("unknown type fails", func(t *testing.T) {
		req := valid()
		req.Type = models.OpportunityType("apprenticeship")
		if errs := bv.ValidateOpportunityCreate(req); len(errs) == 0 {
			t.Fatal("Expected an opportunity_type error")
		}
	})

	t.Run("start date before deadline fails", func(t *testing.T) {
		req := valid()
		start := time.Now().Add(24 * time.Hour)
		req.StartDate = &start
		errs := bv.ValidateOpportunityCreate(req)
		if len(errs) != 1 || errs[0].Rule != "business_logic" {
			t.Fatalf("Expected one business_logic error, got %v", errs)
		}
	})
}

func TestValidateOpportunityUpdate(t *testing.T) {
	bv := NewBusinessValidator()

	t.Run("archived rows only accept status changes", func(t *testing.T) {
		title := "Renamed"
		errs := bv.ValidateOpportunityUpdate(
			&OpportunityUpdateRequest{Title: &title},
			&models.Opportunity{Status: models.OpportunityArchived},
		)
		if len(errs) != 1 || errs[0].Rule != "business_logic" {
			t.Fatalf("Expected one business_logic error, got %v", errs)
		}
	})

	t.Run("archived rows accept a status change", func(t *testing.T) {
		status := models.OpportunityActive
		errs := bv.ValidateOpportunityUpdate(
			&OpportunityUpdateRequest{Status: &status},
			&models.Opportunity{Status: models.OpportunityArchived},
		)
		if len(errs) != 0 {
			t.Fatalf("Expected no errors, got %v", errs)
		}
	})

	t.Run("deadline cannot move into the past", func(t *testing.T) {
		past := time.Now().Add(-time.Hour)
		errs := bv.ValidateOpportunityUpdate(
			&OpportunityUpdateRequest{ApplicationDeadline: &past},
			&models.Opportunity{Status: models.OpportunityActive},
		)
		if len(errs) != 1 || errs[0].Field != "application_deadline" {
			t.Fatalf("Expected an application_deadline error, got %v", errs)
		}
	})
}

func TestValidateApplicationCreate(t *testing.T) {
	bv := NewBusinessValidator()

	valid := func() *ApplicationCreateRequest {
		return &ApplicationCreateRequest{
			OpportunityID:     "7f8de9f2-30c1-4b51-bb1b-88f2c3a90b9a",
			CoverLetter:       "I am excited to apply.",
			ResumeFilename:    "resume.pdf",
			ResumeContentType: "application/pdf",
			ResumeSize:        1024,
		}
	}

	t.Run("valid request passes", func(t *testing.T) {
		if errs := bv.ValidateApplicationCreate(valid()); len(errs) != 0 {
			t.Fatalf("Expected no errors, got %v", errs)
		}
	})

	t.Run("missing cover letter fails", func(t *testing.T) {
		req := valid()
		req.CoverLetter = ""
		if errs := bv.ValidateApplicationCreate(req); len(errs) == 0 {
			t.Fatal("Expected a required error for cover_letter")
		}
	})

	t.Run("oversize resume fails with create ceiling", func(t *testing.T) {
		req := valid()
		req.ResumeSize = MaxResumeSizeCreate + 1
		errs := bv.ValidateApplicationCreate(req)
		found := false
		for _, e := range errs {
			if e.Rule == "max_size" {
				found = true
			}
		}
		if !found {
			t.Fatalf("Expected a max_size error, got %v", errs)
		}
	})
}

func TestValidateInterviewSchedule(t *testing.T) {
	bv := NewBusinessValidator()

	t.Run("future date passes", func(t *testing.T) {
		errs := bv.ValidateInterviewSchedule(&ScheduleInterviewRequest{
			InterviewDate: time.Now().Add(48 * time.Hour),
		})
		if len(errs) != 0 {
			t.Fatalf("Expected no errors, got %v", errs)
		}
	})

	t.Run("past date fails", func(t *testing.T) {
		errs := bv.ValidateInterviewSchedule(&ScheduleInterviewRequest{
			InterviewDate: time.Now().Add(-time.Hour),
		})
		if len(errs) == 0 {
			t.Fatal("Expected a future_date error")
		}
	})
}
