package chats

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"study-assistant/internal/llm"
	"study-assistant/internal/shared/apperr"
	"study-assistant/internal/shared/auth"
	"study-assistant/internal/shared/metrics"
	"study-assistant/internal/shared/telemetry"
)

var tracer = telemetry.Tracer("chats")

const titleRunes = 30

// SendRequest is one user message, optionally continuing a chat.
// A non-empty History replaces the stored messages as model context.
type SendRequest struct {
	Message string
	ChatID  string
	History []Message
}

// SendResult carries the model reply and the full context it was given.
type SendResult struct {
	ChatID   string
	Response string
	History  []Message
}

// Service runs chat turns against the model and persists them.
type Service struct {
	Repo Repo
	AI   llm.Completer
	Now  func() time.Time
}

// Title derives a chat title from its first message.
func Title(message string) string {
	if utf8.RuneCountInString(message) <= titleRunes {
		return message
	}
	return string([]rune(message)[:titleRunes]) + "..."
}

// Send asks the model for a reply and records both turns.
func (s *Service) Send(ctx context.Context, id auth.Identity, req SendRequest) (SendResult, error) {
	if id.UserID == "" {
		return SendResult{}, apperr.Auth("You must be logged in.")
	}
	if strings.TrimSpace(req.Message) == "" {
		return SendResult{}, apperr.Validation("Message is required")
	}

	var existing *Chat
	if req.ChatID != "" {
		chat, err := s.Repo.GetByID(ctx, id.UserID, req.ChatID)
		if errors.Is(err, ErrNotFound) {
			return SendResult{}, apperr.NotFound("Chat not found")
		}
		if err != nil {
			return SendResult{}, apperr.Storage("Failed to load chat", err)
		}
		existing = &chat
	}

	prior := req.History
	if len(prior) == 0 && existing != nil {
		prior = existing.Messages
	}

	if s.AI == nil {
		return SendResult{}, apperr.Internal("Failed to generate response", llm.ErrNotConfigured)
	}
	ctx, span := tracer.Start(ctx, "chats.complete")
	reply, err := s.AI.Complete(ctx, llm.Request{
		Prompt:  req.Message,
		History: toTurns(prior),
		Profile: llm.ProfileChat,
	})
	span.End()
	if err != nil {
		telemetry.Error("chat.failed", map[string]any{
			"user_id":    id.UserID,
			"chat_id":    req.ChatID,
			"request_id": telemetry.RequestID(ctx),
			"error":      err.Error(),
		})
		return SendResult{}, apperr.Internal("Failed to generate response", err)
	}
	metrics.IncChatCompletion()

	now := s.now()
	turns := []Message{
		{Role: RoleUser, Content: req.Message, CreatedAt: now},
		{Role: RoleAssistant, Content: reply, CreatedAt: now},
	}

	chatID := req.ChatID
	if existing != nil {
		err = s.Repo.AppendMessages(ctx, id.UserID, chatID, now, turns...)
	} else {
		chatID = uuid.NewString()
		err = s.Repo.Create(ctx, Chat{
			ID:        chatID,
			UserID:    id.UserID,
			Title:     Title(req.Message),
			Messages:  turns,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	if err != nil {
		return SendResult{}, apperr.Storage("Failed to save chat", err)
	}

	history := make([]Message, 0, len(prior)+len(turns))
	history = append(history, prior...)
	history = append(history, turns...)
	return SendResult{ChatID: chatID, Response: reply, History: history}, nil
}

// Get returns one chat with its messages.
func (s *Service) Get(ctx context.Context, id auth.Identity, chatID string) (Chat, error) {
	chat, err := s.Repo.GetByID(ctx, id.UserID, chatID)
	if errors.Is(err, ErrNotFound) {
		return Chat{}, apperr.NotFound("Chat not found")
	}
	if err != nil {
		return Chat{}, apperr.Storage("Failed to load chat", err)
	}
	return chat, nil
}

// List returns the caller's chats without messages.
func (s *Service) List(ctx context.Context, id auth.Identity, limit int) ([]Chat, error) {
	chats, err := s.Repo.ListByUser(ctx, id.UserID, limit)
	if err != nil {
		return nil, apperr.Storage("Failed to load chats", err)
	}
	return chats, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// toTurns maps stored roles onto model roles. Anything but assistant is the user.
func toTurns(msgs []Message) []llm.Turn {
	if len(msgs) == 0 {
		return nil
	}
	turns := make([]llm.Turn, 0, len(msgs))
	for _, msg := range msgs {
		role := llm.RoleUser
		if msg.Role == RoleAssistant {
			role = llm.RoleModel
		}
		turns = append(turns, llm.Turn{Role: role, Text: msg.Content})
	}
	return turns
}
