package ingest

import (
	"errors"
	"testing"

	"study-assistant/internal/shared/apperr"
)

func TestRouteImages(t *testing.T) {
	t.Parallel()

	for _, mime := range []MIMEType{MIMEJPEG, MIMEPNG, "image/webp"} {
		s, err := Route(mime, true)
		if err != nil || s.Kind != StrategyHandwriting || s.Method != "gemini_handwriting_1.5" {
			t.Fatalf("Route(%q, true) = %+v, %v", mime, s, err)
		}
		s, err = Route(mime, false)
		if err != nil || s.Kind != StrategyImage || s.Method != "gemini_image_1.5" {
			t.Fatalf("Route(%q, false) = %+v, %v", mime, s, err)
		}
	}
}

func TestRouteDocuments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mime   MIMEType
		kind   StrategyKind
		method string
	}{
		{mime: MIMEPDF, kind: StrategyPDF, method: "gemini_pdf_1.5"},
		{mime: MIMEMSWord, kind: StrategyWord, method: "gemini_word_1.5"},
		{mime: MIMEWordXML, kind: StrategyWord, method: "gemini_word_1.5"},
		{mime: MIMEText, kind: StrategyPlainText, method: "gemini_text_1.5"},
	}
	for _, tt := range tests {
		for _, handwritten := range []bool{false, true} {
			s, err := Route(tt.mime, handwritten)
			if err != nil {
				t.Fatalf("Route(%q): %v", tt.mime, err)
			}
			if s.Kind != tt.kind || s.Method != tt.method {
				t.Fatalf("Route(%q, %v) = %+v", tt.mime, handwritten, s)
			}
		}
	}
}

func TestRouteUnroutable(t *testing.T) {
	t.Parallel()

	_, err := Route("application/zip", false)
	if !errors.Is(err, ErrUnroutableType) {
		t.Fatalf("expected ErrUnroutableType, got %v", err)
	}
	if !apperr.IsKind(err, apperr.KindInternal) {
		t.Fatalf("expected internal error kind")
	}
}

func TestEverySupportedTypeRoutes(t *testing.T) {
	t.Parallel()

	for mime := range DefaultTable.supported {
		if _, err := Route(mime, false); err != nil {
			t.Fatalf("supported type %q has no strategy: %v", mime, err)
		}
	}
}

func TestStrategyFor(t *testing.T) {
	t.Parallel()

	s, ok := StrategyFor(StrategyWord)
	if !ok || s.Prompt == "" {
		t.Fatalf("expected word strategy")
	}
	if _, ok := StrategyFor(StrategyKind(99)); ok {
		t.Fatalf("unexpected strategy for unknown kind")
	}
}
