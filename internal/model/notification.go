package model

import "time"

// Notification represents an alert surfaced to the user about activity
// outside the currently displayed conversation or board.
type Notification struct {
	// ID is the unique identifier for this notification.
	ID string `json:"id" db:"id"`

	// Target identifies the conversation the activity happened in.
	Target Target `json:"target"`

	// SenderID is the user whose activity produced the notification.
	SenderID string `json:"sender_id" db:"sender_id"`

	// Message is the human-readable notification text.
	Message string `json:"message" db:"message"`

	// Read indicates whether the user has seen this notification.
	Read bool `json:"read" db:"read"`

	// CreatedAt is when this notification was generated.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
