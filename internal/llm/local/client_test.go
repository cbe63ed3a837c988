package local

import (
	"context"
	"errors"
	"testing"

	"study-assistant/internal/llm"
)

func TestCompleteReturnsPlainText(t *testing.T) {
	out, err := NewClient().Complete(context.Background(), llm.Request{
		Prompt:     "ignored",
		Attachment: &llm.Attachment{MIMEType: "text/plain", Data: []byte("Hello")},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "Hello" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestCompleteRejectsImages(t *testing.T) {
	_, err := NewClient().Complete(context.Background(), llm.Request{
		Attachment: &llm.Attachment{MIMEType: "image/png", Data: []byte{0x89}},
	})
	if !errors.Is(err, llm.ErrUnsupportedAttachment) {
		t.Fatalf("expected ErrUnsupportedAttachment, got %v", err)
	}
}

func TestCompleteRequiresAttachment(t *testing.T) {
	_, err := NewClient().Complete(context.Background(), llm.Request{Prompt: "hi"})
	if !errors.Is(err, llm.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
