package minio

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

func TestBaseURL(t *testing.T) {
	tests := []struct {
		endpoint string
		ssl      bool
		want     string
	}{
		{endpoint: "localhost:9000", want: "http://localhost:9000/notes"},
		{endpoint: "minio.internal:9000", ssl: true, want: "https://minio.internal:9000/notes"},
		{endpoint: "https://files.example.com/", ssl: true, want: "https://files.example.com/notes"},
	}
	for _, tt := range tests {
		if got := baseURL(tt.endpoint, "notes", tt.ssl); got != tt.want {
			t.Fatalf("baseURL(%q) = %q, want %q", tt.endpoint, got, tt.want)
		}
	}
}

type recordedCall struct {
	method string
	path   string
	query  string
}

// fakeS3 answers just enough of the S3 API for bucket checks and object writes.
type fakeS3 struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_, _ = io.Copy(io.Discard, r.Body)
	f.mu.Lock()
	f.calls = append(f.calls, recordedCall{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery})
	f.mu.Unlock()

	switch {
	case r.URL.Query().Has("location"):
		w.Header().Set("Content-Type", "application/xml")
		_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><LocationConstraint xmlns="http://s3.amazonaws.com/doc/2006-03-01/">us-east-1</LocationConstraint>`)
	case r.Method == http.MethodPut:
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusOK)
	}
}

func (f *fakeS3) snapshot() []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedCall(nil), f.calls...)
}

func TestSaveWithKnownSizeUsesSinglePut(t *testing.T) {
	fake := &fakeS3{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	ctx := context.Background()
	store, err := New(ctx, Options{
		Endpoint:  strings.TrimPrefix(srv.URL, "http://"),
		AccessKey: "minio",
		SecretKey: "minio-secret",
		Bucket:    "notes",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	data := []byte("lecture notes")
	obj, err := store.Save(ctx, "owner/abc-notes.txt", "text/plain", bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if obj.Key != "owner/abc-notes.txt" || obj.URL != srv.URL+"/notes/owner/abc-notes.txt" {
		t.Fatalf("unexpected object %+v", obj)
	}

	var puts int
	for _, call := range fake.snapshot() {
		if strings.Contains(call.query, "uploads") || strings.Contains(call.query, "uploadId") {
			t.Fatalf("expected no multipart upload, got %s %s?%s", call.method, call.path, call.query)
		}
		if call.method == http.MethodPut && call.path == "/notes/owner/abc-notes.txt" {
			puts++
		}
	}
	if puts != 1 {
		t.Fatalf("expected exactly one object PUT, got %d", puts)
	}
}
