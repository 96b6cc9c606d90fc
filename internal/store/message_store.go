package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/model"
)

// messageRow mirrors the messages table.
type messageRow struct {
	ID         string `db:"id"`
	TargetKind string `db:"target_kind"`
	TargetID   string `db:"target_id"`
	SenderID   string `db:"sender_id"`
	Body       string `db:"body"`
	FileURL    string `db:"file_url"`
	CreatedAt  string `db:"created_at"`
	Read       bool   `db:"read"`
}

// ReplaceHistory overwrites the cached history for one conversation.
func (s *SQLiteStore) ReplaceHistory(ctx context.Context, target model.Target, msgs []model.ChatMessage) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning history cache tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM messages WHERE target_kind = ? AND target_id = ?",
		string(target.Kind), target.ID,
	); err != nil {
		return fmt.Errorf("clearing cached history: %w", err)
	}

	for _, m := range msgs {
		if err := insertMessage(ctx, tx, m); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing history cache: %w", err)
	}
	return nil
}

// AppendMessage caches one message, ignoring duplicates by ID.
func (s *SQLiteStore) AppendMessage(ctx context.Context, m model.ChatMessage) error {
	return insertMessage(ctx, s.db, m)
}

// execContexter is satisfied by both *sqlx.DB and *sqlx.Tx.
type execContexter interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func insertMessage(ctx context.Context, db execContexter, m model.ChatMessage) error {
	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO messages
			(id, target_kind, target_id, sender_id, body, file_url, created_at, read)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, string(m.Target.Kind), m.Target.ID, m.SenderID,
		m.Body, m.FileURL, m.CreatedAt, m.Read,
	)
	if err != nil {
		return fmt.Errorf("caching message %s: %w", m.ID, err)
	}
	return nil
}

// GetHistory reads back the cached history for a conversation in
// timestamp order, up to limit messages (0 means no limit).
func (s *SQLiteStore) GetHistory(ctx context.Context, target model.Target, limit int) ([]model.ChatMessage, error) {
	query := `SELECT id, target_kind, target_id, sender_id, body, file_url, created_at, read
	          FROM messages WHERE target_kind = ? AND target_id = ?
	          ORDER BY created_at, id`
	args := []interface{}{string(target.Kind), target.ID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	var rows []messageRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("reading cached history: %w", err)
	}

	msgs := make([]model.ChatMessage, 0, len(rows))
	for _, r := range rows {
		m := model.ChatMessage{
			ID:       r.ID,
			SenderID: r.SenderID,
			Body:     r.Body,
			FileURL:  r.FileURL,
			Target:   model.Target{Kind: model.TargetKind(r.TargetKind), ID: r.TargetID},
			Read:     r.Read,
		}
		if ts, err := parseStoredTime(r.CreatedAt); err == nil {
			m.CreatedAt = ts
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}
