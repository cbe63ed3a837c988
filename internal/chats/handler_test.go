package chats

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"study-assistant/internal/shared/auth"
	"study-assistant/internal/shared/server/middleware"
	"study-assistant/internal/shared/telemetry"
)

func newRouter(t *testing.T, ai *scriptedCompleter) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Cleanup(telemetry.SetOutput(io.Discard))

	issuer, err := auth.NewTokenIssuer("test-secret", time.Hour, "dev")
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	token, err := issuer.Sign(student)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	svc, _ := newService(ai)

	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(middleware.Auth(issuer))
	NewHandler(svc).RegisterRoutes(api)
	return r, token
}

func do(r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: middleware.AuthCookieName, Value: token})
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestChatRoundTrip(t *testing.T) {
	r, token := newRouter(t, &scriptedCompleter{replies: []string{"Photosynthesis converts light."}})

	resp := do(r, http.MethodPost, "/api/v1/chat", token, map[string]any{"message": "Explain photosynthesis"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var sent sendResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &sent); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sent.ChatID == "" || len(sent.History) != 2 || sent.History[1].Role != "assistant" {
		t.Fatalf("unexpected response %+v", sent)
	}

	resp = do(r, http.MethodGet, "/api/v1/chats", token, nil)
	var listed struct {
		Chats []Chat `json:"chats"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed.Chats) != 1 || listed.Chats[0].Title != "Explain photosynthesis" {
		t.Fatalf("unexpected list %+v", listed)
	}

	resp = do(r, http.MethodGet, "/api/v1/chats/"+sent.ChatID, token, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestChatErrorsMapToStatus(t *testing.T) {
	r, token := newRouter(t, &scriptedCompleter{replies: []string{"x"}})

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"missing message", http.MethodPost, "/api/v1/chat", map[string]any{}, http.StatusBadRequest},
		{"unknown chat", http.MethodPost, "/api/v1/chat", map[string]any{"message": "hi", "chatId": "nope"}, http.StatusNotFound},
		{"get unknown chat", http.MethodGet, "/api/v1/chats/nope", nil, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := do(r, tc.method, tc.path, token, tc.body)
			if resp.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, resp.Code, resp.Body.String())
			}
		})
	}
}
