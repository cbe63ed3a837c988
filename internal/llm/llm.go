package llm

import (
	"context"
	"errors"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one message of prior conversation passed along with a request.
type Turn struct {
	Role Role
	Text string
}

// Attachment is an inline binary payload sent alongside the prompt.
type Attachment struct {
	MIMEType string
	Data     []byte
}

// Profile selects a generation configuration.
type Profile int

const (
	// ProfileExtraction favors faithful, low-variance transcription.
	ProfileExtraction Profile = iota
	// ProfileChat favors conversational answers.
	ProfileChat
)

// GenerationConfig holds sampling parameters shared by all providers.
type GenerationConfig struct {
	Temperature     float32
	TopP            float32
	TopK            int32
	MaxOutputTokens int32
}

// Config returns the sampling parameters for the profile.
func (p Profile) Config() GenerationConfig {
	switch p {
	case ProfileChat:
		return GenerationConfig{Temperature: 0.7, TopP: 0.95, TopK: 64, MaxOutputTokens: 8192}
	default:
		return GenerationConfig{Temperature: 0.2, TopP: 0.95, TopK: 64, MaxOutputTokens: 8192}
	}
}

func (p Profile) String() string {
	if p == ProfileChat {
		return "chat"
	}
	return "extraction"
}

// Request is a single completion call.
type Request struct {
	Prompt     string
	Attachment *Attachment
	History    []Turn
	Profile    Profile
}

// Completer abstracts the generative model used for extraction, scanning and chat.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// ErrNotConfigured is returned by the placeholder client.
var ErrNotConfigured = errors.New("LLM provider not configured")

// ErrUnsupportedAttachment is returned when a provider cannot read an attachment type.
var ErrUnsupportedAttachment = errors.New("unsupported attachment type")

// PlaceholderClient is used when LLM_PROVIDER=none.
type PlaceholderClient struct{}

// Complete returns ErrNotConfigured.
func (PlaceholderClient) Complete(ctx context.Context, req Request) (string, error) {
	_ = ctx
	_ = req
	return "", ErrNotConfigured
}

var _ Completer = PlaceholderClient{}
