package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/unilink-hq/placement-service/internal/events"
	"github.com/unilink-hq/placement-service/internal/models"
	"github.com/unilink-hq/placement-service/internal/policy"
	"github.com/unilink-hq/placement-service/internal/repositories"
	"github.com/unilink-hq/placement-service/internal/storage"
	"github.com/unilink-hq/placement-service/internal/validator"
)

type applicationService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	policy    policy.AccessPolicy
	store     storage.BlobStore
	publisher events.EventPublisher
}

func NewApplicationService(
	repo repositories.Repository,
	db *gorm.DB,
	logger *slog.Logger,
	validator *validator.Validator,
	accessPolicy policy.AccessPolicy,
	store storage.BlobStore,
	publisher events.EventPublisher,
) ApplicationService {
	return &applicationService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		policy:    accessPolicy,
		store:     store,
		publisher: publisher,
	}
}

// Create submits an application with its resume. The row insert and the
// opportunity counter recount commit together; the submission event is
// published only after the transaction commits.
func (s *applicationService) Create(ctx context.Context, req *CreateApplicationRequest, resume *ResumeUpload, actorID string) (*ApplicationResponse, error) {
	if resume != nil {
		req.ResumeFilename = resume.Filename
		req.ResumeContentType = resume.ContentType
		req.ResumeSize = resume.Size
	}
	if errs := s.validator.GetBusinessValidator().ValidateApplicationCreate(req); len(errs) > 0 {
		return nil, errs
	}

	actor, err := s.getActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor.IsAdministrator() {
		return nil, NewPermissionError(actorID, req.OpportunityID, "application", "create", "administrators cannot apply")
	}

	opportunity, err := s.repo.Opportunity().GetByID(ctx, nil, req.OpportunityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOpportunityNotFound
		}
		return nil, fmt.Errorf("failed to get opportunity: %w", err)
	}
	if !s.policy.CanViewOpportunity(actor, opportunity) {
		return nil, ErrOpportunityNotFound
	}
	if opportunity.Status != models.OpportunityActive {
		return nil, validator.ValidationErrors{{
			Field:   "opportunity",
			Message: "is not accepting applications",
			Value:   opportunity.Status,
			Rule:    "business_logic",
		}}
	}
	if time.Now().After(opportunity.ApplicationDeadline) {
		return nil, validator.ValidationErrors{{
			Field:   "opportunity",
			Message: "application deadline has passed",
			Value:   opportunity.ApplicationDeadline,
			Rule:    "business_logic",
		}}
	}

	resumeKey, err := s.store.Store(ctx, "resumes/"+actorID, resume.Filename, resume.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to store resume: %w", err)
	}

	application := &models.Application{
		UserID:        actorID,
		OpportunityID: req.OpportunityID,
		Status:        models.ApplicationPending,
		CoverLetter:   req.CoverLetter,
		ResumeKey:     &resumeKey,
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Application().Create(ctx, nil, application); err != nil {
			return err
		}
		if _, err := txRepo.Opportunity().RecomputeApplicationCount(ctx, nil, req.OpportunityID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		// The blob is orphaned if the insert failed; clean it up
		if cleanupErr := s.store.Delete(ctx, resumeKey); cleanupErr != nil {
			s.logger.Warn("failed to clean up resume", "key", resumeKey, "error", cleanupErr)
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateApplication
		}
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	s.publishSubmitted(ctx, application, actor, opportunity)

	s.logger.Info("application submitted",
		"application_id", application.ID,
		"opportunity_id", req.OpportunityID,
		"user_id", actorID)

	application.User = *actor
	application.Opportunity = *opportunity
	return s.buildResponse(application, actor), nil
}

// GetByID returns an application visible to the actor
func (s *applicationService) GetByID(ctx context.Context, id string, actorID string) (*ApplicationResponse, error) {
	actor, err := s.getActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	application, err := s.repo.Application().GetByIDWithDetails(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	if !s.policy.CanManageApplication(actor, application) {
		// Foreign applications read as absent
		return nil, ErrApplicationNotFound
	}

	return s.buildResponse(application, actor), nil
}

// List returns applications scoped by role: students see their own rows,
// administrators see everything the filters match.
func (s *applicationService) List(ctx context.Context, filters repositories.ApplicationFilters, actorID string) (*ApplicationListResponse, error) {
	actor, err := s.getActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	filters = s.policy.ScopeApplications(actor, filters)

	applications, total, err := s.repo.Application().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}

	responses := make([]*ApplicationResponse, 0, len(applications))
	for _, application := range applications {
		responses = append(responses, s.buildResponse(application, actor))
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = 20
	}
	return &ApplicationListResponse{
		Applications: responses,
		Total:        total,
		Page:         filters.Offset/limit + 1,
		Size:         limit,
	}, nil
}

// UpdateStatus overwrites the supplied workflow fields verbatim;
// administrators only. Transitions are unconditional: any status may follow
// any other. A supplied status notifies the applicant through the
// status-changed event (the consumer skips moves back to pending). Interview
// scheduling with its forced shortlisting lives in ScheduleInterview.
func (s *applicationService) UpdateStatus(ctx context.Context, id string, req *UpdateApplicationStatusRequest, actorID string) (*ApplicationResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	actor, err := s.getActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	application, err := s.repo.Application().GetByIDWithDetails(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	if !s.policy.CanTransitionApplication(actor, application) {
		return nil, NewPermissionError(actorID, id, "application", "update_status", "administrator role required")
	}

	oldStatus := application.Status
	if req.Status != nil {
		application.Status = *req.Status
	}
	if req.AdminNotes != nil {
		application.AdminNotes = *req.AdminNotes
	}
	if req.InterviewDate != nil {
		application.InterviewDate = req.InterviewDate
	}
	if req.InterviewFeedback != nil {
		application.InterviewFeedback = *req.InterviewFeedback
	}
	if req.RejectionReason != nil {
		application.RejectionReason = *req.RejectionReason
	}

	if err := s.saveWithRecount(ctx, application); err != nil {
		return nil, fmt.Errorf("failed to update application: %w", err)
	}

	if req.Status != nil {
		s.publishStatusChanged(ctx, application, oldStatus)
	}

	return s.buildResponse(application, actor), nil
}

// ScheduleInterview sets the interview date and forces the shortlisted
// status. Restricted to the administrator owning the opportunity.
func (s *applicationService) ScheduleInterview(ctx context.Context, id string, req *ScheduleInterviewRequest, actorID string) (*ApplicationResponse, error) {
	if errs := s.validator.GetBusinessValidator().ValidateInterviewSchedule(req); len(errs) > 0 {
		return nil, errs
	}

	actor, err := s.getActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	application, err := s.repo.Application().GetByIDWithDetails(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	if !s.policy.CanScheduleInterview(actor, application, &application.Opportunity) {
		return nil, NewPermissionError(actorID, id, "application", "schedule_interview", "not the opportunity owner")
	}

	interviewDate := req.InterviewDate
	application.InterviewDate = &interviewDate
	application.Status = models.ApplicationShortlisted
	if req.InterviewNotes != "" {
		application.AdminNotes = req.InterviewNotes
	}

	if err := s.saveWithRecount(ctx, application); err != nil {
		return nil, fmt.Errorf("failed to schedule interview: %w", err)
	}

	s.publishInterviewScheduled(ctx, application)

	s.logger.Info("interview scheduled",
		"application_id", id,
		"interview_date", interviewDate,
		"scheduled_by", actorID)

	return s.buildResponse(application, actor), nil
}

// SubmitFeedback records interview feedback together with the decision
func (s *applicationService) SubmitFeedback(ctx context.Context, id string, req *SubmitFeedbackRequest, actorID string) (*ApplicationResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	actor, err := s.getActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	application, err := s.repo.Application().GetByIDWithDetails(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	if !s.policy.CanTransitionApplication(actor, application) {
		return nil, NewPermissionError(actorID, id, "application", "submit_feedback", "administrator role required")
	}

	oldStatus := application.Status
	application.InterviewFeedback = req.Feedback
	application.Status = req.Decision

	if err := s.saveWithRecount(ctx, application); err != nil {
		return nil, fmt.Errorf("failed to submit feedback: %w", err)
	}

	s.publishStatusChanged(ctx, application, oldStatus)

	return s.buildResponse(application, actor), nil
}

// BulkUpdateStatus overwrites status for many applications of one
// opportunity in a single statement. Deliberately fires no notifications.
func (s *applicationService) BulkUpdateStatus(ctx context.Context, opportunityID string, req *BulkStatusUpdateRequest, actorID string) (*BulkStatusUpdateResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	actor, err := s.getActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	opportunity, err := s.repo.Opportunity().GetByID(ctx, nil, opportunityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOpportunityNotFound
		}
		return nil, fmt.Errorf("failed to get opportunity: %w", err)
	}

	if !s.policy.CanManageOpportunity(actor, opportunity) {
		return nil, NewPermissionError(actorID, opportunityID, "application", "bulk_update_status", "not the opportunity owner")
	}

	var updated int64
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		updated, err = txRepo.Application().BulkUpdateStatus(ctx, nil, opportunityID, req.ApplicationIDs, req.Status)
		if err != nil {
			return err
		}
		_, err = txRepo.Opportunity().RecomputeApplicationCount(ctx, nil, opportunityID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to bulk update status: %w", err)
	}

	s.logger.Info("bulk status update",
		"opportunity_id", opportunityID,
		"status", req.Status,
		"updated", updated,
		"updated_by", actorID)

	return &BulkStatusUpdateResponse{Updated: updated}, nil
}

// Withdraw lets the applicant retract their own application
func (s *applicationService) Withdraw(ctx context.Context, id string, actorID string) (*ApplicationResponse, error) {
	actor, err := s.getActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	application, err := s.repo.Application().GetByIDWithDetails(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	if application.UserID != actorID {
		return nil, NewPermissionError(actorID, id, "application", "withdraw", "not the applicant")
	}
	if application.Status == models.ApplicationWithdrawn {
		return s.buildResponse(application, actor), nil
	}

	application.Status = models.ApplicationWithdrawn
	if err := s.saveWithRecount(ctx, application); err != nil {
		return nil, fmt.Errorf("failed to withdraw application: %w", err)
	}

	s.logger.Info("application withdrawn", "application_id", id, "user_id", actorID)
	return s.buildResponse(application, actor), nil
}

// UploadResume replaces the stored resume: store the new blob, swap the
// reference, then delete the old blob as best-effort cleanup. A crash
// between steps leaves at worst an orphaned file, never a dangling
// reference.
func (s *applicationService) UploadResume(ctx context.Context, id string, resume *ResumeUpload, actorID string) (*ApplicationResponse, error) {
	if errs := validator.ValidateResume(resume.ContentType, resume.Size, validator.MaxResumeSizeReplace); len(errs) > 0 {
		return nil, errs
	}

	actor, err := s.getActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	application, err := s.repo.Application().GetByIDWithDetails(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	if !s.policy.CanManageApplication(actor, application) {
		return nil, NewPermissionError(actorID, id, "application", "upload_resume", "not the applicant")
	}

	newKey, err := s.store.Store(ctx, "resumes/"+application.UserID, resume.Filename, resume.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to store resume: %w", err)
	}

	oldKey := application.ResumeKey
	application.ResumeKey = &newKey

	if err := s.saveWithRecount(ctx, application); err != nil {
		if cleanupErr := s.store.Delete(ctx, newKey); cleanupErr != nil {
			s.logger.Warn("failed to clean up resume", "key", newKey, "error", cleanupErr)
		}
		return nil, fmt.Errorf("failed to update application: %w", err)
	}

	if oldKey != nil {
		if err := s.store.Delete(ctx, *oldKey); err != nil {
			s.logger.Warn("failed to delete old resume", "key", *oldKey, "error", err)
		}
	}

	return s.buildResponse(application, actor), nil
}

// GetStats returns application counts scoped by role
func (s *applicationService) GetStats(ctx context.Context, filters repositories.ApplicationFilters, actorID string) (*repositories.ApplicationStats, error) {
	actor, err := s.getActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	filters = s.policy.ScopeApplications(actor, filters)
	return s.repo.Application().GetStats(ctx, filters)
}

func (s *applicationService) getActor(ctx context.Context, actorID string) (*models.User, error) {
	actor, err := s.repo.User().GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get actor: %w", err)
	}
	return actor, nil
}

// saveWithRecount persists the application and refreshes the opportunity's
// denormalized applications_count in the same transaction. Every write path
// recounts, mirroring the submission path, so the counter never drifts.
func (s *applicationService) saveWithRecount(ctx context.Context, application *models.Application) error {
	return s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Application().Update(ctx, nil, application); err != nil {
			return err
		}
		_, err := txRepo.Opportunity().RecomputeApplicationCount(ctx, nil, application.OpportunityID)
		return err
	})
}

func (s *applicationService) buildResponse(application *models.Application, actor *models.User) *ApplicationResponse {
	resp := &ApplicationResponse{
		Application: application,
		CanEdit:     s.policy.CanTransitionApplication(actor, application),
	}
	if application.ResumeKey != nil {
		resp.ResumeURL = s.store.URL(*application.ResumeKey)
	}
	return resp
}

// publish helpers log failures and move on: notification fan-out is
// fire-and-forget and never fails the request that triggered it.

func (s *applicationService) publishSubmitted(ctx context.Context, application *models.Application, applicant *models.User, opportunity *models.Opportunity) {
	event, err := events.NewEvent(events.TypeApplicationSubmitted, events.ApplicationSubmittedEvent{
		ApplicationID:    application.ID,
		ApplicantID:      applicant.ID,
		ApplicantName:    applicant.Name,
		OpportunityID:    opportunity.ID,
		OpportunityTitle: opportunity.Title,
		OwnerID:          opportunity.CreatedBy,
	})
	if err != nil {
		s.logger.Error("failed to build submission event", "application_id", application.ID, "error", err)
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish submission event", "application_id", application.ID, "error", err)
	}
}

func (s *applicationService) publishStatusChanged(ctx context.Context, application *models.Application, oldStatus models.ApplicationStatus) {
	event, err := events.NewEvent(events.TypeStatusChanged, events.StatusChangedEvent{
		ApplicationID:    application.ID,
		ApplicantID:      application.UserID,
		OpportunityTitle: application.Opportunity.Title,
		OldStatus:        string(oldStatus),
		NewStatus:        string(application.Status),
	})
	if err != nil {
		s.logger.Error("failed to build status event", "application_id", application.ID, "error", err)
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish status event", "application_id", application.ID, "error", err)
	}
}

func (s *applicationService) publishInterviewScheduled(ctx context.Context, application *models.Application) {
	if application.InterviewDate == nil {
		return
	}
	event, err := events.NewEvent(events.TypeInterviewScheduled, events.InterviewScheduledEvent{
		ApplicationID:    application.ID,
		ApplicantID:      application.UserID,
		ApplicantName:    application.User.Name,
		OpportunityTitle: application.Opportunity.Title,
		OwnerID:          application.Opportunity.CreatedBy,
		InterviewDate:    *application.InterviewDate,
	})
	if err != nil {
		s.logger.Error("failed to build interview event", "application_id", application.ID, "error", err)
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish interview event", "application_id", application.ID, "error", err)
	}
}
