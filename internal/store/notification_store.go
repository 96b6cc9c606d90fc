package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/model"
)

// notificationRow mirrors the notifications table.
type notificationRow struct {
	ID         string `db:"id"`
	TargetKind string `db:"target_kind"`
	TargetID   string `db:"target_id"`
	SenderID   string `db:"sender_id"`
	Message    string `db:"message"`
	Read       bool   `db:"read"`
	CreatedAt  string `db:"created_at"`
}

// CreateNotification persists a new notification. A missing ID or
// timestamp is filled in.
func (s *SQLiteStore) CreateNotification(ctx context.Context, n model.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notifications (id, target_kind, target_id, sender_id, message, read, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.ID, string(n.Target.Kind), n.Target.ID, n.SenderID, n.Message, n.Read, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating notification: %w", err)
	}
	return nil
}

// GetUnreadNotifications returns unread notifications, newest first.
func (s *SQLiteStore) GetUnreadNotifications(ctx context.Context) ([]model.Notification, error) {
	var rows []notificationRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, target_kind, target_id, sender_id, message, read, created_at
		 FROM notifications WHERE read = 0 ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("reading unread notifications: %w", err)
	}

	out := make([]model.Notification, 0, len(rows))
	for _, r := range rows {
		n := model.Notification{
			ID:       r.ID,
			Target:   model.Target{Kind: model.TargetKind(r.TargetKind), ID: r.TargetID},
			SenderID: r.SenderID,
			Message:  r.Message,
			Read:     r.Read,
		}
		if ts, err := parseStoredTime(r.CreatedAt); err == nil {
			n.CreatedAt = ts
		}
		out = append(out, n)
	}
	return out, nil
}

// MarkNotificationRead flags one notification as seen.
func (s *SQLiteStore) MarkNotificationRead(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "UPDATE notifications SET read = 1 WHERE id = ?", id); err != nil {
		return fmt.Errorf("marking notification %s read: %w", id, err)
	}
	return nil
}

// MarkTargetRead flags every notification for one conversation as seen,
// used when the user opens that conversation.
func (s *SQLiteStore) MarkTargetRead(ctx context.Context, target model.Target) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET read = 1 WHERE target_kind = ? AND target_id = ?",
		string(target.Kind), target.ID,
	)
	if err != nil {
		return fmt.Errorf("marking notifications read for %s %s: %w", target.Kind, target.ID, err)
	}
	return nil
}
