package scan

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"study-assistant/internal/ingest"
	"study-assistant/internal/llm"
	"study-assistant/internal/shared/auth"
	"study-assistant/internal/shared/server/middleware"
	"study-assistant/internal/shared/telemetry"
)

type stubCompleter struct {
	text string
	err  error
	last llm.Request
}

func (s *stubCompleter) Complete(ctx context.Context, req llm.Request) (string, error) {
	s.last = req
	return s.text, s.err
}

func setup(t *testing.T, ai *stubCompleter) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Cleanup(telemetry.SetOutput(io.Discard))

	issuer, err := auth.NewTokenIssuer("test-secret", time.Hour, "dev")
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	token, err := issuer.Sign(auth.Identity{UserID: "user-1"})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(middleware.Auth(issuer))
	NewHandler(&Service{AI: ai}, 10<<20).RegisterRoutes(api)
	return r, token
}

func postScan(t *testing.T, r *gin.Engine, token, fileName, contentType string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	_, _ = part.Write(data)
	_ = writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scan", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestPromptPerKind(t *testing.T) {
	t.Parallel()
	cases := []struct {
		mime ingest.MIMEType
		want string
	}{
		{ingest.MIMEPNG, "For this image"},
		{ingest.MIMEJPEG, "For this image"},
		{ingest.MIMEPDF, "For this PDF document"},
		{ingest.MIMEMSWord, "For this Word document"},
		{ingest.MIMEWordXML, "For this Word document"},
		{ingest.MIMEText, "For this text document"},
	}
	for _, tc := range cases {
		got := Prompt(tc.mime)
		if !strings.HasPrefix(got, promptLead) || !strings.HasSuffix(got, promptTrail) {
			t.Fatalf("%s: prompt missing lead or trail: %q", tc.mime, got)
		}
		if !strings.Contains(got, tc.want) {
			t.Fatalf("%s: expected %q in %q", tc.mime, tc.want, got)
		}
	}
}

func TestScanReturnsSummary(t *testing.T) {
	ai := &stubCompleter{text: "## Summary\n- cells"}
	r, token := setup(t, ai)

	resp := postScan(t, r, token, "notes.pdf", "application/x-pdf", []byte("%PDF-1.4 body"))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var body scanResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || body.Result != "## Summary\n- cells" || body.FileType != "application/pdf" || body.FileName != "notes.pdf" {
		t.Fatalf("unexpected body %+v", body)
	}
	if ai.last.Attachment == nil || ai.last.Attachment.MIMEType != "application/pdf" {
		t.Fatalf("expected pdf attachment, got %+v", ai.last.Attachment)
	}
	if ai.last.Profile != llm.ProfileExtraction {
		t.Fatalf("expected extraction profile, got %v", ai.last.Profile)
	}
}

func TestScanRejectsUnsupportedType(t *testing.T) {
	ai := &stubCompleter{text: "x"}
	r, token := setup(t, ai)

	resp := postScan(t, r, token, "clip.mp4", "video/mp4", []byte("data"))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if ai.last.Prompt != "" {
		t.Fatalf("model should not be called")
	}
}

func TestScanModelFailure(t *testing.T) {
	r, token := setup(t, &stubCompleter{err: errors.New("quota exceeded")})

	resp := postScan(t, r, token, "notes.txt", "text/plain", []byte("hello"))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "Failed to process document. Please try again.") {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}
}

func TestScanRequiresIdentity(t *testing.T) {
	r, _ := setup(t, &stubCompleter{text: "x"})

	resp := postScan(t, r, "", "notes.txt", "text/plain", []byte("hello"))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}
