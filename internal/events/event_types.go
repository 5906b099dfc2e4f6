package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserSignedUp     EventType = "user_signed_up"
	EventLoginSucceeded   EventType = "login_succeeded"
	EventLoginFailed      EventType = "login_failed"
	EventSessionRefreshed EventType = "session_refreshed"
	EventLoggedOut        EventType = "logged_out"
)

// Event represents an authentication event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    int64       `json:"user_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(eventType EventType, userID int64, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// LoginFailedPayload payload. Only the email domain is recorded.
type LoginFailedPayload struct {
	EmailDomain string `json:"email_domain"`
}

// UserSignedUpPayload payload.
type UserSignedUpPayload struct {
	Role        string `json:"role"`
	EmailDomain string `json:"email_domain"`
}
