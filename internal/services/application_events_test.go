package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/unilink-hq/placement-service/internal/events"
	"github.com/unilink-hq/placement-service/internal/models"
)

func newTestApplicationService(publisher events.EventPublisher) *applicationService {
	return &applicationService{
		logger:    slog.New(slog.NewTextHandler(os.Stdout, nil)),
		publisher: publisher,
	}
}

func TestApplicationService_PublishSubmitted(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	mockPublisher := events.NewMockEventPublisher(logger)
	service := newTestApplicationService(mockPublisher)

	application := &models.Application{ID: "app-1"}
	applicant := &models.User{ID: "student-1", Name: "Dana Velasquez"}
	opportunity := &models.Opportunity{ID: "opp-1", Title: "Backend Internship", CreatedBy: "admin-1"}

	service.publishSubmitted(context.Background(), application, applicant, opportunity)

	published := mockPublisher.GetPublishedEvents()
	if len(published) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(published))
	}

	event := published[0]
	if event.Type != events.TypeApplicationSubmitted {
		t.Errorf("Expected event type %s, got %s", events.TypeApplicationSubmitted, event.Type)
	}
	if event.ID == "" {
		t.Error("Event ID should not be empty")
	}
	if event.Source != events.Source {
		t.Errorf("Expected source %s, got %s", events.Source, event.Source)
	}
	if event.OccurredAt.IsZero() {
		t.Error("Event timestamp should not be zero")
	}

	var payload events.ApplicationSubmittedEvent
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		t.Fatalf("Failed to decode payload: %v", err)
	}
	if payload.ApplicantID != "student-1" || payload.OwnerID != "admin-1" {
		t.Errorf("Payload carries wrong parties: applicant=%s owner=%s",
			payload.ApplicantID, payload.OwnerID)
	}
	if payload.OpportunityTitle != "Backend Internship" {
		t.Errorf("Expected opportunity title in payload, got %q", payload.OpportunityTitle)
	}
}

func TestApplicationService_PublishStatusChanged(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	mockPublisher := events.NewMockEventPublisher(logger)
	service := newTestApplicationService(mockPublisher)

	application := &models.Application{
		ID:          "app-1",
		UserID:      "student-1",
		Status:      models.ApplicationShortlisted,
		Opportunity: models.Opportunity{Title: "Backend Internship"},
	}

	service.publishStatusChanged(context.Background(), application, models.ApplicationPending)

	published := mockPublisher.GetPublishedEvents()
	if len(published) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(published))
	}

	var payload events.StatusChangedEvent
	if err := json.Unmarshal(published[0].Data, &payload); err != nil {
		t.Fatalf("Failed to decode payload: %v", err)
	}
	if payload.OldStatus != "pending" || payload.NewStatus != "shortlisted" {
		t.Errorf("Expected pending -> shortlisted, got %s -> %s",
			payload.OldStatus, payload.NewStatus)
	}
}

func TestApplicationService_PublishInterviewScheduled(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	mockPublisher := events.NewMockEventPublisher(logger)
	service := newTestApplicationService(mockPublisher)

	t.Run("publishes when a date is set", func(t *testing.T) {
		interviewDate := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)
		application := &models.Application{
			ID:            "app-1",
			UserID:        "student-1",
			InterviewDate: &interviewDate,
			User:          models.User{Name: "Dana Velasquez"},
			Opportunity:   models.Opportunity{Title: "Backend Internship", CreatedBy: "admin-1"},
		}

		service.publishInterviewScheduled(context.Background(), application)

		published := mockPublisher.GetPublishedEvents()
		if len(published) != 1 {
			t.Fatalf("Expected 1 event, got %d", len(published))
		}
		if published[0].Type != events.TypeInterviewScheduled {
			t.Errorf("Expected event type %s, got %s", events.TypeInterviewScheduled, published[0].Type)
		}

		var payload events.InterviewScheduledEvent
		if err := json.Unmarshal(published[0].Data, &payload); err != nil {
			t.Fatalf("Failed to decode payload: %v", err)
		}
		if !payload.InterviewDate.Equal(interviewDate) {
			t.Errorf("Expected interview date %v, got %v", interviewDate, payload.InterviewDate)
		}
	})

	t.Run("skips when no date is set", func(t *testing.T) {
		mockPublisher.ClearEvents()

		service.publishInterviewScheduled(context.Background(), &models.Application{ID: "app-2"})

		if published := mockPublisher.GetPublishedEvents(); len(published) != 0 {
			t.Fatalf("Expected no events, got %d", len(published))
		}
	})
}

func TestApplicationService_PublishFailureIsBestEffort(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	mockPublisher := events.NewMockEventPublisher(logger)
	mockPublisher.FailNext = errors.New("broker unavailable")
	service := newTestApplicationService(mockPublisher)

	// Publishing must never propagate a failure back to the caller.
	service.publishStatusChanged(context.Background(), &models.Application{
		ID:          "app-1",
		UserID:      "student-1",
		Status:      models.ApplicationAccepted,
		Opportunity: models.Opportunity{Title: "Backend Internship"},
	}, models.ApplicationShortlisted)

	if published := mockPublisher.GetPublishedEvents(); len(published) != 0 {
		t.Fatalf("Expected the failed publish to be dropped, got %d events", len(published))
	}
}
