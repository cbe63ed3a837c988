package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"study-assistant/internal/llm"
	"study-assistant/internal/shared/telemetry"
)

var apiURL = "https://api.openai.com/v1/chat/completions"

// Client implements llm.Completer using OpenAI Chat Completions.
type Client struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient constructs a new OpenAI client.
func NewClient(apiKey, model string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for OpenAI")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
	File     *filePart `json:"file,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type filePart struct {
	FileName string `json:"filename"`
	FileData string `json:"file_data"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float32      `json:"temperature,omitempty"`
	TopP        *float32      `json:"top_p,omitempty"`
	MaxTokens   int32         `json:"max_completion_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

type apiError struct {
	status  int
	message string
	kind    string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("openai http status %d: %s (%s)", e.status, e.message, e.kind)
}

// Complete sends the prompt, history and optional attachment and returns the reply text.
func (c *Client) Complete(ctx context.Context, req llm.Request) (string, error) {
	messages, err := buildMessages(req)
	if err != nil {
		return "", err
	}
	cfg := req.Profile.Config()
	body := chatRequest{
		Model:     c.model,
		Messages:  messages,
		MaxTokens: cfg.MaxOutputTokens,
	}
	if !isGPT5(c.model) {
		temp, topP := cfg.Temperature, cfg.TopP
		body.Temperature = &temp
		body.TopP = &topP
	}

	content, err := c.send(ctx, body, req.Profile)
	var apiErr *apiError
	if errors.As(err, &apiErr) && body.Temperature != nil && temperatureUnsupported(apiErr.message) {
		body.Temperature = nil
		body.TopP = nil
		content, err = c.send(ctx, body, req.Profile)
	}
	return content, err
}

func (c *Client) send(ctx context.Context, body chatRequest, profile llm.Profile) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return "", fmt.Errorf("openai request timeout: %w", err)
		}
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		if resp.StatusCode >= 400 {
			return "", fmt.Errorf("openai http status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
		}
		return "", fmt.Errorf("openai response parse: %w", err)
	}
	if parsed.Error != nil {
		return "", &apiError{status: resp.StatusCode, message: parsed.Error.Message, kind: parsed.Error.Type}
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("openai response missing choices")
	}

	fields := map[string]any{"model": c.model, "profile": profile.String()}
	if parsed.Usage != nil {
		fields["prompt_tokens"] = parsed.Usage.PromptTokens
		fields["completion_tokens"] = parsed.Usage.CompletionTokens
		fields["total_tokens"] = parsed.Usage.TotalTokens
	}
	telemetry.Info("llm.response", fields)

	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

func buildMessages(req llm.Request) ([]chatMessage, error) {
	messages := make([]chatMessage, 0, len(req.History)+1)
	for _, turn := range req.History {
		role := "user"
		if turn.Role == llm.RoleModel {
			role = "assistant"
		}
		messages = append(messages, chatMessage{Role: role, Content: turn.Text})
	}

	if req.Attachment == nil {
		return append(messages, chatMessage{Role: "user", Content: req.Prompt}), nil
	}
	part, err := attachmentPart(*req.Attachment)
	if err != nil {
		return nil, err
	}
	parts := []contentPart{{Type: "text", Text: req.Prompt}, part}
	return append(messages, chatMessage{Role: "user", Content: parts}), nil
}

func attachmentPart(a llm.Attachment) (contentPart, error) {
	mime := strings.ToLower(strings.TrimSpace(a.MIMEType))
	dataURL := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(a.Data)
	switch {
	case strings.HasPrefix(mime, "image/"):
		return contentPart{Type: "image_url", ImageURL: &imageURL{URL: dataURL}}, nil
	case mime == "text/plain":
		return contentPart{Type: "text", Text: string(a.Data)}, nil
	case mime == "application/pdf":
		return contentPart{Type: "file", File: &filePart{FileName: "document.pdf", FileData: dataURL}}, nil
	default:
		return contentPart{}, fmt.Errorf("%w: %s", llm.ErrUnsupportedAttachment, mime)
	}
}

func temperatureUnsupported(message string) bool {
	msg := strings.ToLower(message)
	return strings.Contains(msg, "temperature") && strings.Contains(msg, "unsupported")
}

func isGPT5(model string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(model)), "gpt-5")
}

var _ llm.Completer = (*Client)(nil)
