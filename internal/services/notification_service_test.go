package services

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/unilink-hq/placement-service/internal/events"
	"github.com/unilink-hq/placement-service/internal/models"
	"github.com/unilink-hq/placement-service/internal/repositories"
)

// recordingNotificationRepo captures created notifications in memory
type recordingNotificationRepo struct {
	created []*models.Notification
}

func (r *recordingNotificationRepo) Create(ctx context.Context, tx *gorm.DB, notification *models.Notification) error {
	r.created = append(r.created, notification)
	return nil
}

func (r *recordingNotificationRepo) CreateBatch(ctx context.Context, tx *gorm.DB, notifications []*models.Notification) error {
	r.created = append(r.created, notifications...)
	return nil
}

func (r *recordingNotificationRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Notification, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *recordingNotificationRepo) ListByUser(ctx context.Context, userID string, filters repositories.NotificationFilters) ([]*models.Notification, int64, error) {
	return nil, 0, nil
}

func (r *recordingNotificationRepo) CountUnread(ctx context.Context, userID string) (int64, error) {
	return 0, nil
}

func (r *recordingNotificationRepo) MarkRead(ctx context.Context, tx *gorm.DB, id, userID string) error {
	return nil
}

func (r *recordingNotificationRepo) MarkAllRead(ctx context.Context, tx *gorm.DB, userID string) (int64, error) {
	return 0, nil
}

// MockRepository for testing - minimal implementation
type MockRepository struct {
	notification *recordingNotificationRepo
}

func (m *MockRepository) User() repositories.UserRepository               { return nil }
func (m *MockRepository) Opportunity() repositories.OpportunityRepository { return nil }
func (m *MockRepository) Application() repositories.ApplicationRepository { return nil }
func (m *MockRepository) Notification() repositories.NotificationRepository {
	return m.notification
}
func (m *MockRepository) Dashboard() repositories.DashboardRepository { return nil }
func (m *MockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}
func (m *MockRepository) Ping(ctx context.Context) error { return nil }
func (m *MockRepository) Close() error                   { return nil }

func newTestNotificationService() (*notificationService, *recordingNotificationRepo) {
	inbox := &recordingNotificationRepo{}
	service := &notificationService{
		repo:   &MockRepository{notification: inbox},
		logger: slog.New(slog.NewTextHandler(os.Stdout, nil)),
	}
	return service, inbox
}

func TestNotificationService_HandleSubmitted(t *testing.T) {
	service, inbox := newTestNotificationService()
	ctx := context.Background()

	event, err := events.NewEvent(events.TypeApplicationSubmitted, events.ApplicationSubmittedEvent{
		ApplicationID:    "app-1",
		ApplicantID:      "student-1",
		ApplicantName:    "Dana Velasquez",
		OpportunityID:    "opp-1",
		OpportunityTitle: "Backend Internship",
		OwnerID:          "admin-1",
	})
	if err != nil {
		t.Fatalf("Failed to build event: %v", err)
	}

	if err := service.handleEvent(ctx, event); err != nil {
		t.Fatalf("Failed to handle event: %v", err)
	}

	if len(inbox.created) != 2 {
		t.Fatalf("Expected 2 notifications, got %d", len(inbox.created))
	}

	applicant, owner := inbox.created[0], inbox.created[1]
	if applicant.UserID != "student-1" {
		t.Errorf("Expected applicant notification for student-1, got %s", applicant.UserID)
	}
	if owner.UserID != "admin-1" {
		t.Errorf("Expected owner notification for admin-1, got %s", owner.UserID)
	}
	for _, n := range inbox.created {
		if n.Type != models.NotificationApplicationUpdate {
			t.Errorf("Expected type %s, got %s", models.NotificationApplicationUpdate, n.Type)
		}
		if !strings.Contains(n.Message, "Backend Internship") {
			t.Errorf("Expected message to name the opportunity, got %q", n.Message)
		}
	}
}

func TestNotificationService_HandleStatusChanged(t *testing.T) {
	tests := []struct {
		name      string
		newStatus models.ApplicationStatus
		want      int
		message   string
	}{
		{name: "under review notifies applicant", newStatus: models.ApplicationUnderReview, want: 1, message: "under review"},
		{name: "accepted notifies applicant", newStatus: models.ApplicationAccepted, want: 1, message: "accepted"},
		{name: "reset to pending stays silent", newStatus: models.ApplicationPending, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, inbox := newTestNotificationService()

			err := service.handleStatusChanged(context.Background(), &events.StatusChangedEvent{
				ApplicationID:    "app-1",
				ApplicantID:      "student-1",
				OpportunityTitle: "Backend Internship",
				OldStatus:        string(models.ApplicationPending),
				NewStatus:        string(tt.newStatus),
			})
			if err != nil {
				t.Fatalf("Failed to handle event: %v", err)
			}

			if len(inbox.created) != tt.want {
				t.Fatalf("Expected %d notifications, got %d", tt.want, len(inbox.created))
			}
			if tt.want == 1 {
				n := inbox.created[0]
				if n.UserID != "student-1" {
					t.Errorf("Expected notification for student-1, got %s", n.UserID)
				}
				if !strings.Contains(n.Message, tt.message) {
					t.Errorf("Expected message to contain %q, got %q", tt.message, n.Message)
				}
			}
		})
	}
}

func TestNotificationService_HandleInterviewScheduled(t *testing.T) {
	service, inbox := newTestNotificationService()

	interviewDate := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)
	err := service.handleInterviewScheduled(context.Background(), &events.InterviewScheduledEvent{
		ApplicationID:    "app-1",
		ApplicantID:      "student-1",
		ApplicantName:    "Dana Velasquez",
		OpportunityTitle: "Backend Internship",
		OwnerID:          "admin-1",
		InterviewDate:    interviewDate,
	})
	if err != nil {
		t.Fatalf("Failed to handle event: %v", err)
	}

	if len(inbox.created) != 2 {
		t.Fatalf("Expected 2 notifications, got %d", len(inbox.created))
	}
	for _, n := range inbox.created {
		if n.Type != models.NotificationInterview {
			t.Errorf("Expected type %s, got %s", models.NotificationInterview, n.Type)
		}
		if !strings.Contains(n.Message, "Mar 14, 2026 at 10:30") {
			t.Errorf("Expected formatted interview date in message, got %q", n.Message)
		}
	}
	if inbox.created[0].UserID != "student-1" || inbox.created[1].UserID != "admin-1" {
		t.Errorf("Expected both parties notified, got %s and %s",
			inbox.created[0].UserID, inbox.created[1].UserID)
	}
}

func TestNotificationService_HandleEventIgnoresUnknownType(t *testing.T) {
	service, inbox := newTestNotificationService()

	event, err := events.NewEvent("opportunity.published", map[string]string{"opportunity_id": "opp-1"})
	if err != nil {
		t.Fatalf("Failed to build event: %v", err)
	}

	if err := service.handleEvent(context.Background(), event); err != nil {
		t.Fatalf("Unknown event types should be ignored, got error: %v", err)
	}
	if len(inbox.created) != 0 {
		t.Fatalf("Expected no notifications, got %d", len(inbox.created))
	}
}
