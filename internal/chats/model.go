package chats

import "time"

// Roles stored on chat messages.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one persisted turn of a chat.
type Message struct {
	Role      string    `json:"role" bson:"role"`
	Content   string    `json:"content" bson:"content"`
	CreatedAt time.Time `json:"timestamp" bson:"timestamp"`
}

// Chat is a titled conversation owned by one user.
type Chat struct {
	ID        string    `json:"id" bson:"_id"`
	UserID    string    `json:"userId" bson:"userId"`
	Title     string    `json:"title" bson:"title"`
	Messages  []Message `json:"messages,omitempty" bson:"messages"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}
