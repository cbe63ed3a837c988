package auth

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	sharedauth "study-assistant/internal/shared/auth"
	"study-assistant/internal/shared/storage/cache"
	"study-assistant/internal/shared/telemetry"
	"study-assistant/internal/users"
)

func newGoogle(t *testing.T, opts GoogleOptions) (*GoogleService, *gin.Engine, cache.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Cleanup(telemetry.SetOutput(io.Discard))

	issuer, err := sharedauth.NewTokenIssuer("test-secret", time.Hour, "dev")
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	states := cache.NewMemory()
	svc := NewGoogleService(opts, states, users.NewService(users.NewMemoryRepo()), users.Sessions{Issuer: issuer})
	r := gin.New()
	svc.RegisterRoutes(r.Group("/api/v1"))
	return svc, r, states
}

func TestStartStoresStateAndRedirects(t *testing.T) {
	_, r, states := newGoogle(t, GoogleOptions{ClientID: "id", ClientSecret: "secret", RedirectURL: "http://localhost/cb"})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/start", nil))
	if resp.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", resp.Code)
	}
	loc, err := url.Parse(resp.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse location: %v", err)
	}
	state := loc.Query().Get("state")
	if state == "" {
		t.Fatalf("missing state in %s", loc)
	}
	if _, err := states.Get(context.Background(), stateKeyPrefix+state); err != nil {
		t.Fatalf("state not stored: %v", err)
	}
}

func TestStartWithoutConfig(t *testing.T) {
	_, r, _ := newGoogle(t, GoogleOptions{})
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/start", nil))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
}

func TestCallbackRejectsUnknownState(t *testing.T) {
	_, r, _ := newGoogle(t, GoogleOptions{ClientID: "id", ClientSecret: "secret", RedirectURL: "http://localhost/cb"})
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/callback?state=nope&code=abc", nil))
	if resp.Code != http.StatusBadRequest || !strings.Contains(resp.Body.String(), "invalid or expired state") {
		t.Fatalf("unexpected response %d: %s", resp.Code, resp.Body.String())
	}
}

func TestFetchUserInfoFallsBackToID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":"123","email":"ada@example.com","name":"Ada"}`)
	}))
	defer srv.Close()

	svc, _, _ := newGoogle(t, GoogleOptions{})
	svc.userInfoURL = srv.URL
	info, err := svc.fetchUserInfo(context.Background(), srv.Client())
	if err != nil {
		t.Fatalf("fetchUserInfo: %v", err)
	}
	if info.Sub != "123" || info.Email != "ada@example.com" {
		t.Fatalf("unexpected info %+v", info)
	}
}

func TestAppendToken(t *testing.T) {
	got, err := appendToken("http://localhost:3000/login?next=/docs", "tok")
	if err != nil {
		t.Fatalf("appendToken: %v", err)
	}
	if !strings.Contains(got, "token=tok") || !strings.Contains(got, "next=%2Fdocs") {
		t.Fatalf("unexpected url %s", got)
	}
	if _, err := appendToken("", "tok"); err == nil {
		t.Fatalf("expected error for empty url")
	}
}
