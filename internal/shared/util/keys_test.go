package util

import (
	"errors"
	"strings"
	"testing"
)

func TestOwnerKeyIsStableHex(t *testing.T) {
	got := OwnerKey("user-12345")
	if got != OwnerKey("user-12345") {
		t.Fatalf("expected stable key, got %s", got)
	}
	if len(got) != 64 {
		t.Fatalf("expected 64 hex characters, got %d", len(got))
	}
	for _, ch := range got {
		if !((ch >= 'a' && ch <= 'f') || (ch >= '0' && ch <= '9')) {
			t.Fatalf("key contains non-hex character: %c", ch)
		}
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "plain", in: "notes.docx", want: "notes.docx"},
		{name: "separators", in: "a/b\\c.txt", want: "a_b_c.txt"},
		{name: "control chars", in: "scan\x00.png", want: "scan.png"},
		{name: "traversal", in: "../etc/passwd", want: ".._etc_passwd"},
		{name: "inner dots", in: "chapter1..final.pdf", want: "chapter1..final.pdf"},
		{name: "dot dot", in: "..", wantErr: true},
		{name: "blank", in: "   ", wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := SanitizeFileName(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidFileName) {
					t.Fatalf("expected ErrInvalidFileName, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBlobKeyIsUniquePerCall(t *testing.T) {
	a, err := BlobKey("user-1", "essay.txt")
	if err != nil {
		t.Fatalf("BlobKey: %v", err)
	}
	b, err := BlobKey("user-1", "essay.txt")
	if err != nil {
		t.Fatalf("BlobKey: %v", err)
	}
	if a == b {
		t.Fatalf("expected distinct keys, got %s twice", a)
	}
	prefix := OwnerKey("user-1") + "/"
	if !strings.HasPrefix(a, prefix) || !strings.HasSuffix(a, "-essay.txt") {
		t.Fatalf("unexpected key layout: %s", a)
	}
}
