package queue

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType classifies a security audit event.
type EventType string

const (
	EventUserSignup EventType = "user_signup"
	EventUserLogin  EventType = "user_login"
	EventOAuthLogin EventType = "oauth_login"
	EventUserLogout EventType = "user_logout"
)

// Event is one security-relevant authentication event published for
// downstream consumers (audit trail, anomaly detection).
type Event struct {
	ID       uuid.UUID `json:"id"`
	Type     EventType `json:"type"`
	UserID   uuid.UUID `json:"user_id"`
	Provider string    `json:"provider,omitempty"`
	At       time.Time `json:"at"`
}

// NewEvent creates an audit event stamped with the current time.
func NewEvent(eventType EventType, userID uuid.UUID, provider string) *Event {
	return &Event{
		ID:       uuid.New(),
		Type:     eventType,
		UserID:   userID,
		Provider: provider,
		At:       time.Now().UTC(),
	}
}

// AuditPublisher publishes authentication audit events. Publishing is
// best-effort: auth flows never fail because the audit trail is down.
type AuditPublisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}
