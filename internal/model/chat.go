package model

import "time"

// TargetKind distinguishes channel conversations from direct threads.
type TargetKind string

const (
	TargetChannel TargetKind = "channel"
	TargetDirect  TargetKind = "direct"
)

// Target identifies a conversation: either a named channel or a direct
// thread with a single peer user.
type Target struct {
	Kind TargetKind `json:"kind"`

	// ID is the channel ID for TargetChannel, or the peer user ID for
	// TargetDirect.
	ID string `json:"id"`
}

// IsZero reports whether no conversation is selected.
func (t Target) IsZero() bool {
	return t.Kind == "" && t.ID == ""
}

// Channel is a named group conversation within the workspace.
type Channel struct {
	ID        string `json:"id" db:"id"`
	Name      string `json:"name" db:"name"`
	ProjectID string `json:"project_id,omitempty" db:"project_id"`
}

// ChatMessage is a single message within a conversation.
//
// The display ordering key is (CreatedAt, ID): ascending timestamp,
// tie-broken by identifier for stability.
type ChatMessage struct {
	ID        string    `json:"id" db:"id"`
	SenderID  string    `json:"sender_id" db:"sender_id"`
	Body      string    `json:"body" db:"body"`
	FileURL   string    `json:"file_url,omitempty" db:"file_url"`
	Target    Target    `json:"target"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	Read      bool      `json:"read" db:"read"`
}

// Before reports whether m sorts before other under the display ordering.
func (m ChatMessage) Before(other ChatMessage) bool {
	if !m.CreatedAt.Equal(other.CreatedAt) {
		return m.CreatedAt.Before(other.CreatedAt)
	}
	return m.ID < other.ID
}
