// Package queue defines the notification payloads exchanged over the
// message broker, the publisher that sends them and the background
// consumer that records them.
package queue

import (
	"time"

	"github.com/google/uuid"
)

// Actions carried by notification events.
const (
	ActionSubscriptionConfirmed = "subscription_confirmed"
	ActionEventDeleted          = "event_deleted"
)

// NotificationEvent is the message published to the notification
// queue.  A single event may address many recipients; deleting an
// event produces exactly one message carrying every affected contact,
// not one message per subscriber.
type NotificationEvent struct {
	ID        uuid.UUID `json:"id"`
	Action    string    `json:"action"`
	EventID   uint64    `json:"event_id"`
	Emails    []string  `json:"emails,omitempty"`
	UserIDs   []uint64  `json:"user_ids,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// NewNotificationEvent stamps a fresh event with an id and creation
// time.
func NewNotificationEvent(action string, eventID uint64, message string) NotificationEvent {
	return NotificationEvent{
		ID:        uuid.New(),
		Action:    action,
		EventID:   eventID,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
}
