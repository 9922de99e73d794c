package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"
)

func TestBus_PublishSubscribe(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	bus := NewBus(logger)
	defer bus.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	messages, err := bus.Subscribe(ctx, Topic)
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}

	event, err := NewEvent(TypeApplicationSubmitted, ApplicationSubmittedEvent{
		ApplicationID: "app-1",
		ApplicantID:   "student-1",
		OwnerID:       "admin-1",
	})
	if err != nil {
		t.Fatalf("Failed to build event: %v", err)
	}
	if err := bus.Publish(ctx, event); err != nil {
		t.Fatalf("Failed to publish: %v", err)
	}

	select {
	case msg := <-messages:
		received, err := UnmarshalEvent(msg)
		if err != nil {
			t.Fatalf("Failed to unmarshal: %v", err)
		}
		msg.Ack()

		if received.ID != event.ID {
			t.Errorf("Expected event ID %s, got %s", event.ID, received.ID)
		}
		if received.Type != TypeApplicationSubmitted {
			t.Errorf("Expected type %s, got %s", TypeApplicationSubmitted, received.Type)
		}
		if msg.Metadata.Get("type") != TypeApplicationSubmitted {
			t.Errorf("Expected type metadata, got %q", msg.Metadata.Get("type"))
		}

		var payload ApplicationSubmittedEvent
		if err := json.Unmarshal(received.Data, &payload); err != nil {
			t.Fatalf("Failed to decode payload: %v", err)
		}
		if payload.ApplicationID != "app-1" {
			t.Errorf("Expected app-1, got %s", payload.ApplicationID)
		}

	case <-ctx.Done():
		t.Fatal("Timed out waiting for the event")
	}
}

func TestNewEvent(t *testing.T) {
	event, err := NewEvent(TypeStatusChanged, StatusChangedEvent{
		ApplicationID: "app-1",
		OldStatus:     "pending",
		NewStatus:     "shortlisted",
	})
	if err != nil {
		t.Fatalf("Failed to build event: %v", err)
	}

	if event.ID == "" {
		t.Error("Event ID should not be empty")
	}
	if event.Source != Source {
		t.Errorf("Expected source %s, got %s", Source, event.Source)
	}
	if event.OccurredAt.IsZero() {
		t.Error("Event timestamp should not be zero")
	}

	t.Run("unmarshalable payload fails", func(t *testing.T) {
		if _, err := NewEvent("bad.event", make(chan int)); err == nil {
			t.Fatal("Expected marshal failure for a channel payload")
		}
	})
}
