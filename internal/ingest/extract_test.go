package ingest

import (
	"context"
	"errors"
	"testing"

	"study-assistant/internal/llm"
	"study-assistant/internal/shared/apperr"
)

type fakeCompleter struct {
	text string
	err  error
	got  llm.Request
}

func (f *fakeCompleter) Complete(ctx context.Context, req llm.Request) (string, error) {
	f.got = req
	return f.text, f.err
}

func TestExtractSendsInlineAttachment(t *testing.T) {
	ai := &fakeCompleter{text: "Mitochondria"}
	strategy, _ := Route(MIMEPNG, true)
	file := NormalizedFile{CanonicalType: MIMEPNG, SizeBytes: 3}

	out, err := Extractor{AI: ai}.Extract(context.Background(), strategy, file, []byte{1, 2, 3})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if out.Text != "Mitochondria" || out.Method != "gemini_handwriting_1.5" {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if ai.got.Prompt != strategy.Prompt || ai.got.Profile != llm.ProfileExtraction {
		t.Fatalf("unexpected request %+v", ai.got)
	}
	if ai.got.Attachment == nil || ai.got.Attachment.MIMEType != "image/png" || len(ai.got.Attachment.Data) != 3 {
		t.Fatalf("unexpected attachment %+v", ai.got.Attachment)
	}
}

func TestExtractNeverReturnsBlankSuccess(t *testing.T) {
	for _, blank := range []string{"", "   ", "\n\t"} {
		ai := &fakeCompleter{text: blank}
		strategy, _ := Route(MIMEPDF, false)
		_, err := Extractor{AI: ai}.Extract(context.Background(), strategy, NormalizedFile{CanonicalType: MIMEPDF}, []byte("x"))
		if !errors.Is(err, ErrEmptyExtraction) {
			t.Fatalf("blank %q: expected ErrEmptyExtraction, got %v", blank, err)
		}
		appErr := apperr.As(err)
		if appErr.Kind != apperr.KindExtraction || appErr.Message != "Failed to extract content from the document" {
			t.Fatalf("unexpected error %+v", appErr)
		}
	}
}

func TestExtractWrapsCollaboratorError(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	ai := &fakeCompleter{err: cause}
	strategy, _ := Route(MIMEText, false)

	_, err := Extractor{AI: ai}.Extract(context.Background(), strategy, NormalizedFile{CanonicalType: MIMEText}, []byte("x"))
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause in chain, got %v", err)
	}
	appErr := apperr.As(err)
	if appErr.Kind != apperr.KindExtraction {
		t.Fatalf("expected extraction kind, got %v", appErr.Kind)
	}
	if appErr.Message != "Failed to process document: dial tcp: connection refused" {
		t.Fatalf("unexpected message %q", appErr.Message)
	}
}

func TestSniff(t *testing.T) {
	if got := Sniff([]byte("%PDF-1.4\n")); got != "application/pdf" {
		t.Fatalf("Sniff pdf = %q", got)
	}
	if got := Sniff(nil); got != "" {
		t.Fatalf("Sniff(nil) = %q", got)
	}
}
