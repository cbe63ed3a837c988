package chats

import (
	"context"
	"time"
)

// Repo persists chats and their messages.
type Repo interface {
	Create(ctx context.Context, chat Chat) error
	GetByID(ctx context.Context, userID, chatID string) (Chat, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]Chat, error)
	AppendMessages(ctx context.Context, userID, chatID string, updatedAt time.Time, msgs ...Message) error
}
