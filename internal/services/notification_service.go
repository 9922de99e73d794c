package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/unilink-hq/placement-service/internal/events"
	"github.com/unilink-hq/placement-service/internal/models"
	"github.com/unilink-hq/placement-service/internal/repositories"
)

type notificationService struct {
	repo       repositories.Repository
	db         *gorm.DB
	logger     *slog.Logger
	subscriber events.EventSubscriber
}

func NewNotificationService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, subscriber events.EventSubscriber) NotificationService {
	return &notificationService{
		repo:       repo,
		db:         db,
		logger:     logger,
		subscriber: subscriber,
	}
}

// List returns a page of the user's inbox with the unread badge count
func (s *notificationService) List(ctx context.Context, userID string, filters repositories.NotificationFilters) (*NotificationListResponse, error) {
	notifications, total, err := s.repo.Notification().ListByUser(ctx, userID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	unread, err := s.repo.Notification().CountUnread(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = 20
	}
	return &NotificationListResponse{
		Notifications: notifications,
		Total:         total,
		Unread:        unread,
		Page:          filters.Offset/limit + 1,
		Size:          limit,
	}, nil
}

// MarkRead flips one notification's read flag; owner only
func (s *notificationService) MarkRead(ctx context.Context, id, userID string) error {
	if err := s.repo.Notification().MarkRead(ctx, nil, id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

// MarkAllRead marks the whole inbox read
func (s *notificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.repo.Notification().MarkAllRead(ctx, nil, userID)
}

// UnreadCount returns the badge count
func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.repo.Notification().CountUnread(ctx, userID)
}

// Start consumes the event stream and fans events out into inbox rows.
// It blocks until the context is cancelled. Failed events are logged and
// acknowledged: notification delivery is best-effort and a poison message
// must not wedge the stream.
func (s *notificationService) Start(ctx context.Context) error {
	messages, err := s.subscriber.Subscribe(ctx, events.Topic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to events: %w", err)
	}

	s.logger.Info("notification consumer started", "topic", events.Topic)

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			event, err := events.UnmarshalEvent(msg)
			if err != nil {
				s.logger.Error("failed to decode event", "message_id", msg.UUID, "error", err)
				msg.Ack()
				continue
			}
			if err := s.handleEvent(ctx, event); err != nil {
				s.logger.Error("failed to handle event",
					"event_id", event.ID,
					"event_type", event.Type,
					"error", err)
			}
			msg.Ack()
		}
	}
}

func (s *notificationService) handleEvent(ctx context.Context, event *events.Event) error {
	switch event.Type {
	case events.TypeApplicationSubmitted:
		var payload events.ApplicationSubmittedEvent
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return fmt.Errorf("failed to decode submission payload: %w", err)
		}
		return s.handleSubmitted(ctx, &payload)

	case events.TypeStatusChanged:
		var payload events.StatusChangedEvent
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return fmt.Errorf("failed to decode status payload: %w", err)
		}
		return s.handleStatusChanged(ctx, &payload)

	case events.TypeInterviewScheduled:
		var payload events.InterviewScheduledEvent
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return fmt.Errorf("failed to decode interview payload: %w", err)
		}
		return s.handleInterviewScheduled(ctx, &payload)

	default:
		s.logger.Debug("ignoring unknown event type", "event_type", event.Type)
		return nil
	}
}

// handleSubmitted notifies both sides of a new application
func (s *notificationService) handleSubmitted(ctx context.Context, payload *events.ApplicationSubmittedEvent) error {
	notifications := []*models.Notification{
		{
			UserID:  payload.ApplicantID,
			Title:   "Application Submitted",
			Message: fmt.Sprintf("Your application for %s has been submitted successfully.", payload.OpportunityTitle),
			Type:    models.NotificationApplicationUpdate,
		},
		{
			UserID:  payload.OwnerID,
			Title:   "New Application Received",
			Message: fmt.Sprintf("%s applied for %s.", payload.ApplicantName, payload.OpportunityTitle),
			Type:    models.NotificationApplicationUpdate,
		},
	}
	return s.repo.Notification().CreateBatch(ctx, nil, notifications)
}

// handleStatusChanged notifies the applicant unless the row moved back to pending
func (s *notificationService) handleStatusChanged(ctx context.Context, payload *events.StatusChangedEvent) error {
	if payload.NewStatus == string(models.ApplicationPending) {
		return nil
	}

	notification := &models.Notification{
		UserID:  payload.ApplicantID,
		Title:   "Application Status Updated",
		Message: fmt.Sprintf("Your application for %s is now %s.", payload.OpportunityTitle, statusLabel(payload.NewStatus)),
		Type:    models.NotificationApplicationUpdate,
	}
	return s.repo.Notification().Create(ctx, nil, notification)
}

// handleInterviewScheduled notifies both the applicant and the owner
func (s *notificationService) handleInterviewScheduled(ctx context.Context, payload *events.InterviewScheduledEvent) error {
	when := payload.InterviewDate.Format("Jan 2, 2006 at 15:04")
	notifications := []*models.Notification{
		{
			UserID:  payload.ApplicantID,
			Title:   "Interview Scheduled",
			Message: fmt.Sprintf("Your interview for %s is scheduled for %s.", payload.OpportunityTitle, when),
			Type:    models.NotificationInterview,
		},
		{
			UserID:  payload.OwnerID,
			Title:   "Interview Scheduled",
			Message: fmt.Sprintf("Interview with %s for %s is scheduled for %s.", payload.ApplicantName, payload.OpportunityTitle, when),
			Type:    models.NotificationInterview,
		},
	}
	return s.repo.Notification().CreateBatch(ctx, nil, notifications)
}

func statusLabel(status string) string {
	switch models.ApplicationStatus(status) {
	case models.ApplicationUnderReview:
		return "under review"
	default:
		return status
	}
}
