package chats

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo keeps chats in process memory.
type MemoryRepo struct {
	mu    sync.RWMutex
	chats map[string]Chat
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{chats: make(map[string]Chat)}
}

func (r *MemoryRepo) Create(ctx context.Context, chat Chat) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	chat.Messages = append([]Message(nil), chat.Messages...)
	r.chats[chat.ID] = chat
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID, chatID string) (Chat, error) {
	if err := ctx.Err(); err != nil {
		return Chat{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	chat, ok := r.chats[chatID]
	if !ok || chat.UserID != userID {
		return Chat{}, ErrNotFound
	}
	chat.Messages = append([]Message(nil), chat.Messages...)
	return chat, nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit int) ([]Chat, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := []Chat{}
	for _, chat := range r.chats {
		if chat.UserID == userID {
			chat.Messages = nil
			out = append(out, chat)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepo) AppendMessages(ctx context.Context, userID, chatID string, updatedAt time.Time, msgs ...Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	chat, ok := r.chats[chatID]
	if !ok || chat.UserID != userID {
		return ErrNotFound
	}
	chat.Messages = append(chat.Messages, msgs...)
	chat.UpdatedAt = updatedAt
	r.chats[chatID] = chat
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
