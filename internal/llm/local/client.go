package local

import (
	"context"
	"errors"
	"fmt"

	"study-assistant/internal/extract"
	"study-assistant/internal/llm"
)

// Client is an offline Completer that extracts text locally instead of calling a model.
// It only handles requests that carry a PDF, DOCX or plain-text attachment.
type Client struct{}

// NewClient returns a local extraction client.
func NewClient() *Client {
	return &Client{}
}

// Complete returns the attachment's text. Prompts without an attachment are rejected.
func (c *Client) Complete(ctx context.Context, req llm.Request) (string, error) {
	if req.Attachment == nil {
		return "", fmt.Errorf("local provider requires an attachment: %w", llm.ErrNotConfigured)
	}
	text, err := extract.Text(ctx, req.Attachment.Data, req.Attachment.MIMEType, "")
	if errors.Is(err, extract.ErrUnsupported) {
		return "", fmt.Errorf("%w: %s", llm.ErrUnsupportedAttachment, req.Attachment.MIMEType)
	}
	if err != nil {
		return "", fmt.Errorf("local extract mime=%s: %w", req.Attachment.MIMEType, err)
	}
	return text, nil
}

var _ llm.Completer = (*Client)(nil)
