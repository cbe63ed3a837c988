package gemini

import (
	"context"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"

	"study-assistant/internal/llm"
)

func TestRequestPartsIncludesBlob(t *testing.T) {
	parts := requestParts(llm.Request{
		Prompt:     "transcribe",
		Attachment: &llm.Attachment{MIMEType: "image/jpeg", Data: []byte{1, 2, 3}},
	})
	if len(parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(parts))
	}
	if text, ok := parts[0].(genai.Text); !ok || string(text) != "transcribe" {
		t.Fatalf("unexpected first part %#v", parts[0])
	}
	blob, ok := parts[1].(genai.Blob)
	if !ok || blob.MIMEType != "image/jpeg" || len(blob.Data) != 3 {
		t.Fatalf("unexpected blob part %#v", parts[1])
	}
}

func TestToHistoryMapsRoles(t *testing.T) {
	history := toHistory([]llm.Turn{
		{Role: llm.RoleUser, Text: "q"},
		{Role: llm.RoleModel, Text: "a"},
	})
	if history[0].Role != "user" || history[1].Role != "model" {
		t.Fatalf("unexpected roles %q %q", history[0].Role, history[1].Role)
	}
}

func TestResponseTextJoinsTextParts(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("Hello "), genai.Text("world")}}},
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("ignored")}}},
		},
	}
	if got := responseText(resp); got != "Hello world" {
		t.Fatalf("unexpected text %q", got)
	}
	if got := responseText(nil); got != "" {
		t.Fatalf("expected empty text for nil response, got %q", got)
	}
}

func TestCallContextAppliesTimeout(t *testing.T) {
	bounded := &Client{timeout: 2 * time.Second}
	ctx, cancel := bounded.callContext(context.Background())
	defer cancel()
	deadline, ok := ctx.Deadline()
	if !ok || time.Until(deadline) > 2*time.Second {
		t.Fatalf("expected deadline within timeout, got %v %v", deadline, ok)
	}

	unbounded := &Client{}
	ctx, cancel = unbounded.callContext(context.Background())
	defer cancel()
	if _, ok := ctx.Deadline(); ok {
		t.Fatalf("expected no deadline without a timeout")
	}
}
