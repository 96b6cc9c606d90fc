// Package push consumes the backend's server-to-client event channel.
// The client never polls; it reacts to named events delivered over a
// single websocket connection.
package push

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/model"
)

// Wire event names, matching the backend's socket protocol.
const (
	EventNewMessage = "newMessage"
	EventUserTyping = "userTyping"
	EventPresence   = "presence"
)

// Event is a typed push event delivered to the merger.
type Event interface {
	// Name returns the wire event name.
	Name() string
}

// MessageEvent carries a newly sent chat message.
type MessageEvent struct {
	Message model.ChatMessage
}

func (MessageEvent) Name() string { return EventNewMessage }

// TypingEvent signals that a user is typing in a conversation.
type TypingEvent struct {
	Target   model.Target
	SenderID string
}

func (TypingEvent) Name() string { return EventUserTyping }

// PresenceEvent carries a full replacement online-user set.
type PresenceEvent struct {
	Online []string
}

func (PresenceEvent) Name() string { return EventPresence }

// StateEvent reports connection state changes, for the UI indicator.
type StateEvent struct {
	Connected bool
}

func (StateEvent) Name() string { return "connectionState" }

// envelope is the wire framing: every frame names its event and nests
// the payload.
type envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

type messagePayload struct {
	ID         string    `json:"_id"`
	SenderID   string    `json:"sender"`
	ReceiverID string    `json:"receiver"`
	ChannelID  string    `json:"channel"`
	Body       string    `json:"text"`
	FileURL    string    `json:"file"`
	CreatedAt  time.Time `json:"createdAt"`
}

type typingPayload struct {
	SenderID  string `json:"sender"`
	ChannelID string `json:"channel"`
}

type presencePayload struct {
	Online []string `json:"online"`
}

// decodeEvent turns one wire frame into a typed event. selfID resolves
// direct-message conversation keys the same way the REST adapter does.
// Unknown event names return (nil, nil) and are skipped.
func decodeEvent(data []byte, selfID string) (Event, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decoding event envelope: %w", err)
	}

	switch env.Event {
	case EventNewMessage:
		var p messagePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, fmt.Errorf("decoding %s payload: %w", env.Event, err)
		}
		target := model.Target{Kind: model.TargetChannel, ID: p.ChannelID}
		if p.ChannelID == "" {
			peer := p.SenderID
			if peer == selfID {
				peer = p.ReceiverID
			}
			target = model.Target{Kind: model.TargetDirect, ID: peer}
		}
		return MessageEvent{Message: model.ChatMessage{
			ID:        p.ID,
			SenderID:  p.SenderID,
			Body:      p.Body,
			FileURL:   p.FileURL,
			Target:    target,
			CreatedAt: p.CreatedAt,
		}}, nil

	case EventUserTyping:
		var p typingPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, fmt.Errorf("decoding %s payload: %w", env.Event, err)
		}
		target := model.Target{Kind: model.TargetChannel, ID: p.ChannelID}
		if p.ChannelID == "" {
			target = model.Target{Kind: model.TargetDirect, ID: p.SenderID}
		}
		return TypingEvent{Target: target, SenderID: p.SenderID}, nil

	case EventPresence:
		var p presencePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, fmt.Errorf("decoding %s payload: %w", env.Event, err)
		}
		return PresenceEvent{Online: p.Online}, nil
	}

	return nil, nil
}
