package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/model"
)

// FetchUsers lists all workspace members, used for direct-message
// targets and display names.
func (c *Client) FetchUsers(ctx context.Context) ([]model.User, error) {
	var resp []userDTO
	if err := c.get(ctx, "/api/users", &resp); err != nil {
		return nil, fmt.Errorf("fetching users: %w", err)
	}
	users := make([]model.User, len(resp))
	for i, u := range resp {
		users[i] = u.toModel()
	}
	return users, nil
}

// FetchChannels lists the channels visible to the user.
func (c *Client) FetchChannels(ctx context.Context) ([]model.Channel, error) {
	var resp []channelDTO
	if err := c.get(ctx, "/api/channels", &resp); err != nil {
		return nil, fmt.Errorf("fetching channels: %w", err)
	}
	channels := make([]model.Channel, len(resp))
	for i, ch := range resp {
		channels[i] = ch.toModel()
	}
	return channels, nil
}

// FetchHistory retrieves the message history for a conversation: a
// channel's messages, or the direct thread with one peer. selfID is the
// local user, needed to resolve direct-message conversation keys.
func (c *Client) FetchHistory(ctx context.Context, target model.Target, selfID string) ([]model.ChatMessage, error) {
	var path string
	switch target.Kind {
	case model.TargetChannel:
		path = "/api/channels/" + url.PathEscape(target.ID) + "/messages"
	case model.TargetDirect:
		path = "/api/messages/direct/" + url.PathEscape(target.ID)
	default:
		return nil, fmt.Errorf("fetching history: unknown target kind %q", target.Kind)
	}

	var resp []messageDTO
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("fetching history for %s %s: %w", target.Kind, target.ID, err)
	}
	msgs := make([]model.ChatMessage, len(resp))
	for i, m := range resp {
		msgs[i] = m.toModel(selfID)
	}
	return msgs, nil
}

// SendMessage posts a message to a channel or direct peer and returns
// the stored message with its server-assigned ID and timestamp.
func (c *Client) SendMessage(ctx context.Context, target model.Target, body, fileURL, selfID string) (model.ChatMessage, error) {
	req := sendMessageRequest{Body: body, FileURL: fileURL}
	switch target.Kind {
	case model.TargetChannel:
		req.ChannelID = target.ID
	case model.TargetDirect:
		req.ReceiverID = target.ID
	default:
		return model.ChatMessage{}, fmt.Errorf("sending message: unknown target kind %q", target.Kind)
	}

	var resp messageDTO
	if err := c.post(ctx, "/api/messages", req, &resp); err != nil {
		return model.ChatMessage{}, fmt.Errorf("sending message to %s %s: %w", target.Kind, target.ID, err)
	}
	return resp.toModel(selfID), nil
}

// FetchPresence returns the currently online user IDs.
func (c *Client) FetchPresence(ctx context.Context) ([]string, error) {
	var resp presenceResponse
	if err := c.get(ctx, "/api/presence", &resp); err != nil {
		return nil, fmt.Errorf("fetching presence: %w", err)
	}
	return resp.Online, nil
}
