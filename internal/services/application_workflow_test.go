package services

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/unilink-hq/placement-service/internal/events"
	"github.com/unilink-hq/placement-service/internal/models"
	"github.com/unilink-hq/placement-service/internal/policy"
	"github.com/unilink-hq/placement-service/internal/repositories"
	"github.com/unilink-hq/placement-service/internal/storage"
	"github.com/unilink-hq/placement-service/internal/validator"
)

const testOpportunityID = "3f9d2b58-7c41-4a6f-9b6e-0d5c1a2b3c4d"

// In-memory repository stubs. Embedding the interface keeps the stubs small;
// only the methods the workflow under test touches are implemented.

type stubUserRepo struct {
	repositories.UserRepository
	users map[string]*models.User
}

func (r *stubUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := r.users[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubOpportunityRepo struct {
	repositories.OpportunityRepository
	opportunities map[string]*models.Opportunity
	saves         map[string]bool
	recounts      int
}

func (r *stubOpportunityRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Opportunity, error) {
	if opportunity, ok := r.opportunities[id]; ok {
		return opportunity, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubOpportunityRepo) RecomputeApplicationCount(ctx context.Context, tx *gorm.DB, id string) (int64, error) {
	r.recounts++
	return 0, nil
}

func (r *stubOpportunityRepo) IsSavedBy(ctx context.Context, tx *gorm.DB, id, userID string) (bool, error) {
	return r.saves[id+"/"+userID], nil
}

func (r *stubOpportunityRepo) AddSave(ctx context.Context, tx *gorm.DB, id, userID string) error {
	r.saves[id+"/"+userID] = true
	return nil
}

func (r *stubOpportunityRepo) RemoveSave(ctx context.Context, tx *gorm.DB, id, userID string) error {
	delete(r.saves, id+"/"+userID)
	return nil
}

type stubApplicationRepo struct {
	repositories.ApplicationRepository
	applications map[string]*models.Application
	createErr    error
}

func (r *stubApplicationRepo) Create(ctx context.Context, tx *gorm.DB, application *models.Application) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.applications[application.ID] = application
	return nil
}

func (r *stubApplicationRepo) GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id string) (*models.Application, error) {
	if application, ok := r.applications[id]; ok {
		return application, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubApplicationRepo) Update(ctx context.Context, tx *gorm.DB, application *models.Application) error {
	r.applications[application.ID] = application
	return nil
}

type stubRepository struct {
	user        *stubUserRepo
	opportunity *stubOpportunityRepo
	application *stubApplicationRepo
}

func (r *stubRepository) User() repositories.UserRepository                 { return r.user }
func (r *stubRepository) Opportunity() repositories.OpportunityRepository   { return r.opportunity }
func (r *stubRepository) Application() repositories.ApplicationRepository   { return r.application }
func (r *stubRepository) Notification() repositories.NotificationRepository { return nil }
func (r *stubRepository) Dashboard() repositories.DashboardRepository       { return nil }
func (r *stubRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(r)
}
func (r *stubRepository) Ping(ctx context.Context) error { return nil }
func (r *stubRepository) Close() error                   { return nil }

type workflowFixture struct {
	repo      *stubRepository
	publisher *events.MockEventPublisher
	mediaRoot string
	service   *applicationService
}

// newWorkflowFixture seeds one student, one administrator, one active
// opportunity owned by the administrator, and one under-review application
// from the student.
func newWorkflowFixture(t *testing.T) *workflowFixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	mediaRoot := t.TempDir()
	store, err := storage.NewFileStore(mediaRoot, "/media")
	if err != nil {
		t.Fatalf("Failed to create file store: %v", err)
	}

	student := &models.User{ID: "student-1", Name: "Dana Velasquez", Role: models.RoleStudent, IsActive: true}
	admin := &models.User{ID: "admin-1", Name: "Priya Nair", Role: models.RoleAdministrator, IsActive: true}
	opportunity := &models.Opportunity{
		ID:                  testOpportunityID,
		Title:               "Backend Internship",
		Status:              models.OpportunityActive,
		ApplicationDeadline: time.Now().Add(72 * time.Hour),
		CreatedBy:           "admin-1",
	}
	application := &models.Application{
		ID:            "app-1",
		UserID:        "student-1",
		OpportunityID: testOpportunityID,
		Status:        models.ApplicationUnderReview,
		User:          *student,
		Opportunity:   *opportunity,
	}

	repo := &stubRepository{
		user:        &stubUserRepo{users: map[string]*models.User{"student-1": student, "admin-1": admin}},
		opportunity: &stubOpportunityRepo{opportunities: map[string]*models.Opportunity{testOpportunityID: opportunity}, saves: map[string]bool{}},
		application: &stubApplicationRepo{applications: map[string]*models.Application{"app-1": application}},
	}
	publisher := events.NewMockEventPublisher(logger)

	return &workflowFixture{
		repo:      repo,
		publisher: publisher,
		mediaRoot: mediaRoot,
		service: &applicationService{
			repo:      repo,
			logger:    logger,
			validator: validator.New(),
			policy:    policy.NewAccessPolicy(),
			store:     store,
			publisher: publisher,
		},
	}
}

func TestApplicationService_UpdateStatusPersistsSuppliedFields(t *testing.T) {
	t.Run("supplied status wins over interview date", func(t *testing.T) {
		fixture := newWorkflowFixture(t)

		status := models.ApplicationAccepted
		interviewDate := time.Now().Add(24 * time.Hour)
		resp, err := fixture.service.UpdateStatus(context.Background(), "app-1", &UpdateApplicationStatusRequest{
			Status:        &status,
			InterviewDate: &interviewDate,
		}, "admin-1")
		if err != nil {
			t.Fatalf("Failed to update status: %v", err)
		}

		if resp.Application.Status != models.ApplicationAccepted {
			t.Errorf("Expected status accepted, got %s", resp.Application.Status)
		}
		if resp.Application.InterviewDate == nil || !resp.Application.InterviewDate.Equal(interviewDate) {
			t.Errorf("Expected interview date persisted verbatim, got %v", resp.Application.InterviewDate)
		}

		published := fixture.publisher.GetPublishedEvents()
		if len(published) != 1 {
			t.Fatalf("Expected 1 event, got %d", len(published))
		}
		if published[0].Type != events.TypeStatusChanged {
			t.Errorf("Expected event type %s, got %s", events.TypeStatusChanged, published[0].Type)
		}
		var payload events.StatusChangedEvent
		if err := json.Unmarshal(published[0].Data, &payload); err != nil {
			t.Fatalf("Failed to decode payload: %v", err)
		}
		if payload.NewStatus != string(models.ApplicationAccepted) {
			t.Errorf("Expected new status accepted in payload, got %s", payload.NewStatus)
		}
	})

	t.Run("re-applying the current status still notifies", func(t *testing.T) {
		fixture := newWorkflowFixture(t)

		status := models.ApplicationUnderReview
		if _, err := fixture.service.UpdateStatus(context.Background(), "app-1", &UpdateApplicationStatusRequest{
			Status: &status,
		}, "admin-1"); err != nil {
			t.Fatalf("Failed to update status: %v", err)
		}

		published := fixture.publisher.GetPublishedEvents()
		if len(published) != 1 {
			t.Fatalf("Expected 1 event, got %d", len(published))
		}
		var payload events.StatusChangedEvent
		if err := json.Unmarshal(published[0].Data, &payload); err != nil {
			t.Fatalf("Failed to decode payload: %v", err)
		}
		if payload.OldStatus != payload.NewStatus {
			t.Errorf("Expected old and new status to match, got %s -> %s",
				payload.OldStatus, payload.NewStatus)
		}
	})

	t.Run("annotations alone stay silent", func(t *testing.T) {
		fixture := newWorkflowFixture(t)

		notes := "strong portfolio"
		resp, err := fixture.service.UpdateStatus(context.Background(), "app-1", &UpdateApplicationStatusRequest{
			AdminNotes: &notes,
		}, "admin-1")
		if err != nil {
			t.Fatalf("Failed to update status: %v", err)
		}

		if resp.Application.Status != models.ApplicationUnderReview {
			t.Errorf("Expected status untouched, got %s", resp.Application.Status)
		}
		if published := fixture.publisher.GetPublishedEvents(); len(published) != 0 {
			t.Fatalf("Expected no events, got %d", len(published))
		}
	})

	t.Run("every update recounts the opportunity", func(t *testing.T) {
		fixture := newWorkflowFixture(t)

		status := models.ApplicationRejected
		if _, err := fixture.service.UpdateStatus(context.Background(), "app-1", &UpdateApplicationStatusRequest{
			Status: &status,
		}, "admin-1"); err != nil {
			t.Fatalf("Failed to update status: %v", err)
		}

		if fixture.repo.opportunity.recounts != 1 {
			t.Errorf("Expected 1 application recount, got %d", fixture.repo.opportunity.recounts)
		}
	})
}

func TestApplicationService_CreateRejectsDuplicate(t *testing.T) {
	fixture := newWorkflowFixture(t)
	fixture.repo.application.createErr = gorm.ErrDuplicatedKey

	resume := &ResumeUpload{
		Filename:    "resume.pdf",
		ContentType: "application/pdf",
		Size:        1024,
		Content:     strings.NewReader("%PDF-1.7 dummy"),
	}
	_, err := fixture.service.Create(context.Background(), &CreateApplicationRequest{
		OpportunityID: testOpportunityID,
		CoverLetter:   "I would like to apply.",
	}, resume, "student-1")

	if !errors.Is(err, ErrDuplicateApplication) {
		t.Fatalf("Expected ErrDuplicateApplication, got %v", err)
	}
	if published := fixture.publisher.GetPublishedEvents(); len(published) != 0 {
		t.Fatalf("Expected no events for a rejected submission, got %d", len(published))
	}

	// The stored blob must be cleaned up when the insert is rejected.
	var files int
	err = filepath.WalkDir(fixture.mediaRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files++
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to walk media root: %v", err)
	}
	if files != 0 {
		t.Errorf("Expected orphaned resume to be deleted, found %d files", files)
	}
}

func TestOpportunityService_ToggleSaveAlternates(t *testing.T) {
	fixture := newWorkflowFixture(t)
	service := &opportunityService{
		repo:      fixture.repo,
		logger:    slog.New(slog.NewTextHandler(os.Stdout, nil)),
		validator: validator.New(),
		policy:    policy.NewAccessPolicy(),
	}
	ctx := context.Background()

	saved, err := service.ToggleSave(ctx, testOpportunityID, "student-1")
	if err != nil {
		t.Fatalf("Failed to toggle save: %v", err)
	}
	if !saved {
		t.Error("Expected first toggle to save")
	}

	saved, err = service.ToggleSave(ctx, testOpportunityID, "student-1")
	if err != nil {
		t.Fatalf("Failed to toggle save: %v", err)
	}
	if saved {
		t.Error("Expected second toggle to unsave")
	}
	if len(fixture.repo.opportunity.saves) != 0 {
		t.Errorf("Expected empty save list after the round trip, got %d entries", len(fixture.repo.opportunity.saves))
	}

	saved, err = service.ToggleSave(ctx, testOpportunityID, "student-1")
	if err != nil {
		t.Fatalf("Failed to toggle save: %v", err)
	}
	if !saved {
		t.Error("Expected third toggle to save again")
	}
}
