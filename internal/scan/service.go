package scan

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"study-assistant/internal/ingest"
	"study-assistant/internal/llm"
	"study-assistant/internal/shared/apperr"
	"study-assistant/internal/shared/auth"
	"study-assistant/internal/shared/metrics"
	"study-assistant/internal/shared/telemetry"
)

var tracer = telemetry.Tracer("scan")

const (
	promptLead  = "Please analyze this document and provide a detailed summary of its contents. "
	promptTrail = "Format the response with clear sections and bullet points where appropriate."
)

var kindPrompts = map[ingest.MIMEType]string{
	ingest.MIMEPDF:     "For this PDF document, please extract and summarize the main content, including any headings, key points, and important information. ",
	ingest.MIMEMSWord:  "For this Word document, please analyze the structure and content, highlighting main sections, key points, and important information. ",
	ingest.MIMEWordXML: "For this Word document, please analyze the structure and content, highlighting main sections, key points, and important information. ",
	ingest.MIMEText:    "For this text document, please provide a comprehensive summary of the content, highlighting main topics and key information. ",
}

const imagePrompt = "For this image, please describe the visual content and any text that appears in it. "

// Result is a summary produced without persisting anything.
type Result struct {
	Summary       string
	FileName      string
	CanonicalType ingest.MIMEType
	SizeBytes     int64
}

// Service summarizes uploaded files.
type Service struct {
	AI llm.Completer
}

// Prompt builds the summary prompt for a canonical type.
func Prompt(m ingest.MIMEType) string {
	var b strings.Builder
	b.WriteString(promptLead)
	if m.IsImage() {
		b.WriteString(imagePrompt)
	} else {
		b.WriteString(kindPrompts[m])
	}
	b.WriteString(promptTrail)
	return b.String()
}

// Summarize admits the file through guard and asks the model for a summary.
func (s *Service) Summarize(ctx context.Context, id auth.Identity, guard ingest.Guard, req ingest.UploadRequest) (Result, error) {
	if id.UserID == "" {
		return Result{}, apperr.Auth("You must be logged in.")
	}
	metrics.IncScan()

	fields := map[string]any{
		"user_id":       id.UserID,
		"request_id":    telemetry.RequestID(ctx),
		"file_name":     req.FileName,
		"declared_type": req.DeclaredType,
	}

	file, err := guard.Admit(req)
	if err != nil {
		fields["error"] = err.Error()
		telemetry.Warn("scan.rejected", fields)
		return Result{}, err
	}
	fields["normalized_type"] = file.CanonicalType.String()
	fields["sniffed_type"] = ingest.Sniff(req.Data)

	if s.AI == nil {
		return Result{}, apperr.Internal("Failed to process document. Please try again.", llm.ErrNotConfigured)
	}

	ctx, span := tracer.Start(ctx, "scan.summarize")
	span.SetAttributes(attribute.String("mime_type", file.CanonicalType.String()))
	defer span.End()

	text, err := s.AI.Complete(ctx, llm.Request{
		Prompt:     Prompt(file.CanonicalType),
		Attachment: &llm.Attachment{MIMEType: file.CanonicalType.String(), Data: req.Data},
		Profile:    llm.ProfileExtraction,
	})
	if err != nil {
		span.RecordError(err)
		fields["error"] = err.Error()
		telemetry.Error("scan.failed", fields)
		return Result{}, apperr.Extraction("Failed to process document. Please try again.", err)
	}
	if strings.TrimSpace(text) == "" {
		telemetry.Error("scan.failed", fields)
		return Result{}, apperr.Extraction("Failed to process document. Please try again.", ingest.ErrEmptyExtraction)
	}

	telemetry.Info("scan.complete", fields)
	return Result{
		Summary:       text,
		FileName:      file.FileName,
		CanonicalType: file.CanonicalType,
		SizeBytes:     file.SizeBytes,
	}, nil
}
