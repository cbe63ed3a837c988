package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"study-assistant/internal/shared/apperr"
	"study-assistant/internal/shared/telemetry"
)

func serve(t *testing.T, handler gin.HandlerFunc) (*httptest.ResponseRecorder, ErrorResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	restore := telemetry.SetOutput(io.Discard)
	defer restore()

	router := gin.New()
	router.GET("/x", handler)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/x", nil))

	var body ErrorResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return resp, body
}

func TestFromErrorMapsTaxonomy(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"validation", apperr.Validation("File is required"), http.StatusBadRequest, "File is required"},
		{"auth", apperr.Auth("You must be logged in."), http.StatusUnauthorized, "You must be logged in."},
		{"not found", fmt.Errorf("chat: %w", apperr.NotFound("Chat not found")), http.StatusNotFound, "Chat not found"},
		{"extraction", apperr.Extraction("Failed to process document: timeout", errors.New("timeout")), http.StatusInternalServerError, "Failed to process document: timeout"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "Something went wrong"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			resp, body := serve(t, func(c *gin.Context) { FromError(c, tt.err) })
			if resp.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, resp.Code)
			}
			if body.Success {
				t.Fatalf("expected success=false")
			}
			if body.Error != tt.msg {
				t.Fatalf("expected message %q, got %q", tt.msg, body.Error)
			}
		})
	}
}

func TestErrorWritesCode(t *testing.T) {
	resp, body := serve(t, func(c *gin.Context) {
		Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
	})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
	if body.Code != "unauthorized" {
		t.Fatalf("unexpected code: %q", body.Code)
	}
}
