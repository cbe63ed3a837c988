package object

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestCleanKey(t *testing.T) {
	tests := []struct {
		key     string
		want    string
		wantErr bool
	}{
		{key: "owner/file.pdf", want: "owner/file.pdf"},
		{key: "owner//nested/./file.pdf", want: "owner/nested/file.pdf"},
		{key: "", wantErr: true},
		{key: "/etc/passwd", wantErr: true},
		{key: "../escape", wantErr: true},
		{key: "owner/../../escape", wantErr: true},
	}
	for _, tt := range tests {
		got, err := CleanKey(tt.key)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidKey) {
				t.Fatalf("CleanKey(%q) expected ErrInvalidKey, got %v", tt.key, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("CleanKey(%q): %v", tt.key, err)
		}
		if got != tt.want {
			t.Fatalf("CleanKey(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestJoinURL(t *testing.T) {
	if got := JoinURL("/uploads/", "/a/b.pdf"); got != "/uploads/a/b.pdf" {
		t.Fatalf("unexpected url %q", got)
	}
	if got := JoinURL("", "a.pdf"); got != "/a.pdf" {
		t.Fatalf("unexpected url %q", got)
	}
}

func TestCountingReader(t *testing.T) {
	c := &CountingReader{R: strings.NewReader("hello world")}
	if _, err := io.ReadAll(c); err != nil {
		t.Fatalf("read: %v", err)
	}
	if c.N != 11 {
		t.Fatalf("expected 11 bytes, got %d", c.N)
	}
}
