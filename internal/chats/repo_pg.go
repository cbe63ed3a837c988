package chats

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// PGRepo stores chats in the chats and chat_messages tables.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts the chat row and its initial messages in one transaction.
func (r *PGRepo) Create(ctx context.Context, chat Chat) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin chat create: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const query = `
INSERT INTO chats (id, user_id, title, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5)`
	if _, err := tx.ExecContext(ctx, query, chat.ID, chat.UserID, chat.Title, chat.CreatedAt, chat.UpdatedAt); err != nil {
		return fmt.Errorf("insert chat id=%s: %w", chat.ID, err)
	}
	if err := insertMessages(ctx, tx, chat.ID, chat.Messages); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *PGRepo) GetByID(ctx context.Context, userID, chatID string) (Chat, error) {
	const chatQuery = `
SELECT id, user_id, title, created_at, updated_at
FROM chats
WHERE user_id = $1 AND id = $2
LIMIT 1`
	var chat Chat
	err := r.DB.QueryRowContext(ctx, chatQuery, userID, chatID).Scan(
		&chat.ID,
		&chat.UserID,
		&chat.Title,
		&chat.CreatedAt,
		&chat.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Chat{}, ErrNotFound
		}
		return Chat{}, err
	}

	const msgQuery = `
SELECT role, content, created_at
FROM chat_messages
WHERE chat_id = $1
ORDER BY id ASC`
	rows, err := r.DB.QueryContext(ctx, msgQuery, chatID)
	if err != nil {
		return Chat{}, err
	}
	defer rows.Close()

	chat.Messages = []Message{}
	for rows.Next() {
		var msg Message
		if err := rows.Scan(&msg.Role, &msg.Content, &msg.CreatedAt); err != nil {
			return Chat{}, err
		}
		chat.Messages = append(chat.Messages, msg)
	}
	if err := rows.Err(); err != nil {
		return Chat{}, err
	}
	return chat, nil
}

// ListByUser returns chat headers without messages, most recently active first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit int) ([]Chat, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	const query = `
SELECT id, user_id, title, created_at, updated_at
FROM chats
WHERE user_id = $1
ORDER BY updated_at DESC
LIMIT $2`
	rows, err := r.DB.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Chat{}
	for rows.Next() {
		var chat Chat
		if err := rows.Scan(&chat.ID, &chat.UserID, &chat.Title, &chat.CreatedAt, &chat.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, chat)
	}
	return out, rows.Err()
}

func (r *PGRepo) AppendMessages(ctx context.Context, userID, chatID string, updatedAt time.Time, msgs ...Message) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin chat append: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const touch = `
UPDATE chats SET updated_at = $3
WHERE user_id = $1 AND id = $2`
	res, err := tx.ExecContext(ctx, touch, userID, chatID, updatedAt)
	if err != nil {
		return fmt.Errorf("touch chat id=%s: %w", chatID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	if err := insertMessages(ctx, tx, chatID, msgs); err != nil {
		return err
	}
	return tx.Commit()
}

func insertMessages(ctx context.Context, tx *sql.Tx, chatID string, msgs []Message) error {
	const query = `
INSERT INTO chat_messages (chat_id, role, content, created_at)
VALUES ($1, $2, $3, $4)`
	for _, msg := range msgs {
		if _, err := tx.ExecContext(ctx, query, chatID, msg.Role, msg.Content, msg.CreatedAt); err != nil {
			return fmt.Errorf("insert chat message chat=%s: %w", chatID, err)
		}
	}
	return nil
}

var _ Repo = (*PGRepo)(nil)
