package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Topic is the single stream every placement event is published on.
// Consumers dispatch on Event.Type.
const Topic = "placement.events"

// Source identifies this service in published events.
const Source = "placement-service"

// Event types emitted by the application ledger.
const (
	TypeApplicationSubmitted = "application.submitted"
	TypeStatusChanged        = "application.status_changed"
	TypeInterviewScheduled   = "application.interview_scheduled"
)

// Event is the envelope published after a ledger transaction commits.
type Event struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Source     string          `json:"source"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

// NewEvent wraps a payload in an envelope. Marshal failures are returned so
// the publisher can log and drop rather than emit a half-built event.
func NewEvent(eventType string, payload interface{}) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Source:     Source,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}, nil
}

// ApplicationSubmittedEvent fans out to the applicant and the opportunity owner.
type ApplicationSubmittedEvent struct {
	ApplicationID    string `json:"application_id"`
	ApplicantID      string `json:"applicant_id"`
	ApplicantName    string `json:"applicant_name"`
	OpportunityID    string `json:"opportunity_id"`
	OpportunityTitle string `json:"opportunity_title"`
	OwnerID          string `json:"owner_id"`
}

// StatusChangedEvent fans out to the applicant unless the new status is pending.
type StatusChangedEvent struct {
	ApplicationID    string `json:"application_id"`
	ApplicantID      string `json:"applicant_id"`
	OpportunityTitle string `json:"opportunity_title"`
	OldStatus        string `json:"old_status"`
	NewStatus        string `json:"new_status"`
}

// InterviewScheduledEvent fans out to both the applicant and the owner.
type InterviewScheduledEvent struct {
	ApplicationID    string    `json:"application_id"`
	ApplicantID      string    `json:"applicant_id"`
	ApplicantName    string    `json:"applicant_name"`
	OpportunityTitle string    `json:"opportunity_title"`
	OwnerID          string    `json:"owner_id"`
	InterviewDate    time.Time `json:"interview_date"`
}
