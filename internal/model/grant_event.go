package model

import "time"

// GrantEvent records a processed payment-provider webhook event.
// The primary key is the provider's event ID, which is what makes
// credit grants idempotent under at-least-once delivery.
type GrantEvent struct {
	ID         string    `json:"id"`
	EventType  string    `json:"event_type"`
	UserID     string    `json:"user_id"`
	Credits    int       `json:"credits"`
	ReceivedAt time.Time `json:"received_at"`
}
