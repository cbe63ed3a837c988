package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"study-assistant/internal/llm"
	"study-assistant/internal/shared/apperr"
	"study-assistant/internal/shared/metrics"
	"study-assistant/internal/shared/telemetry"
)

var tracer = telemetry.Tracer("ingest")

// ErrEmptyExtraction is the cause when the model returns blank text.
var ErrEmptyExtraction = errors.New("empty extraction")

// Outcome is a successful extraction. Text is never blank.
type Outcome struct {
	Text   string
	Method string
}

// Extractor runs a strategy against the AI completer. It never retries.
type Extractor struct {
	AI llm.Completer
}

// Extract sends the strategy prompt with the file inlined as an attachment.
func (e Extractor) Extract(ctx context.Context, strategy Strategy, file NormalizedFile, data []byte) (Outcome, error) {
	ctx, span := tracer.Start(ctx, "ingest.extract")
	defer span.End()
	span.SetAttributes(
		attribute.String("strategy", strategy.Kind.String()),
		attribute.String("mime", file.CanonicalType.String()),
		attribute.Int64("size_bytes", file.SizeBytes),
	)

	start := time.Now()
	text, err := e.AI.Complete(ctx, llm.Request{
		Prompt:     strategy.Prompt,
		Attachment: &llm.Attachment{MIMEType: file.CanonicalType.String(), Data: data},
		Profile:    llm.ProfileExtraction,
	})
	metrics.ObserveExtractionDurationMs(float64(time.Since(start).Milliseconds()))
	if err != nil {
		span.RecordError(err)
		return Outcome{}, apperr.Extraction(
			fmt.Sprintf("Failed to process document: %s", err.Error()),
			err,
		)
	}
	if strings.TrimSpace(text) == "" {
		span.RecordError(ErrEmptyExtraction)
		return Outcome{}, apperr.Extraction("Failed to extract content from the document", ErrEmptyExtraction)
	}
	span.SetAttributes(attribute.Int("text_length", len(text)))
	return Outcome{Text: text, Method: strategy.Method}, nil
}
