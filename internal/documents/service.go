package documents

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"study-assistant/internal/ingest"
	"study-assistant/internal/shared/apperr"
	"study-assistant/internal/shared/auth"
	"study-assistant/internal/shared/metrics"
	"study-assistant/internal/shared/storage/object"
	"study-assistant/internal/shared/telemetry"
	"study-assistant/internal/shared/util"
)

var tracer = telemetry.Tracer("documents")

// UploadResult is what the pipeline returns for a persisted upload.
type UploadResult struct {
	Document      Document
	CanonicalType ingest.MIMEType
}

// Service runs the ingestion pipeline and serves document reads.
type Service struct {
	Repo      DocumentsRepo
	Store     object.ObjectStore
	Extractor ingest.Extractor
	Table     *ingest.Table
	Now       func() time.Time
}

// Upload admits, stores, extracts and persists one file for the caller.
// The blob is written before extraction, so a later failure leaves it in place.
// Cancelling ctx does not abort a pipeline that has started.
func (s *Service) Upload(ctx context.Context, id auth.Identity, guard ingest.Guard, req ingest.UploadRequest) (UploadResult, error) {
	ctx = context.WithoutCancel(ctx)
	metrics.IncUploadStarted()

	fields := map[string]any{
		"user_id":       id.UserID,
		"request_id":    telemetry.RequestID(ctx),
		"file_name":     req.FileName,
		"declared_type": req.DeclaredType,
		"size_bytes":    len(req.Data),
	}

	res, err := s.run(ctx, id, guard, req, fields)
	if err != nil {
		appErr := apperr.As(err)
		metrics.IncUploadFailed(string(appErr.Kind))
		fields["kind"] = string(appErr.Kind)
		fields["error"] = err.Error()
		telemetry.Error("upload.failed", fields)
		return UploadResult{}, err
	}

	metrics.IncUploadCompleted()
	fields["document_id"] = res.Document.ID
	fields["processing_method"] = res.Document.ProcessingMethod
	telemetry.Info("upload.complete", fields)
	return res, nil
}

func (s *Service) run(ctx context.Context, id auth.Identity, guard ingest.Guard, req ingest.UploadRequest, fields map[string]any) (UploadResult, error) {
	if id.UserID == "" {
		return UploadResult{}, apperr.Auth("You must be logged in.")
	}
	if guard.Table == nil {
		guard.Table = s.table()
	}

	_, span := tracer.Start(ctx, "ingest.admit")
	file, err := guard.Admit(req)
	span.End()
	sniffed := ingest.Sniff(req.Data)
	fields["sniffed_type"] = sniffed
	if err != nil {
		fields["normalized_type"] = s.table().Normalize(req.DeclaredType, req.FileName).String()
		return UploadResult{}, err
	}
	fields["normalized_type"] = file.CanonicalType.String()

	obj, err := s.saveBlob(ctx, id, file, sniffed, req.Data)
	if err != nil {
		return UploadResult{}, err
	}
	fields["storage_key"] = obj.Key

	strategy, err := ingest.Route(file.CanonicalType, req.IsHandwritten)
	if err != nil {
		fields["orphaned_key"] = obj.Key
		return UploadResult{}, err
	}
	fields["strategy"] = strategy.Kind.String()

	outcome, err := s.Extractor.Extract(ctx, strategy, file, req.Data)
	if err != nil {
		fields["orphaned_key"] = obj.Key
		return UploadResult{}, err
	}

	doc := s.newRecord(id, req, file, outcome, obj)
	ctx, span = tracer.Start(ctx, "documents.persist")
	span.SetAttributes(attribute.String("document.id", doc.ID), attribute.String("file_type", doc.FileType))
	err = s.Repo.Create(ctx, doc)
	if err != nil {
		span.RecordError(err)
	}
	span.End()
	if err != nil {
		fields["orphaned_key"] = obj.Key
		return UploadResult{}, apperr.Storage("Failed to save document", err)
	}

	return UploadResult{Document: doc, CanonicalType: file.CanonicalType}, nil
}

func (s *Service) saveBlob(ctx context.Context, id auth.Identity, file ingest.NormalizedFile, sniffed string, data []byte) (object.Object, error) {
	key, err := util.BlobKey(id.UserID, file.FileName)
	if errors.Is(err, util.ErrInvalidFileName) {
		return object.Object{}, &apperr.Error{Kind: apperr.KindValidation, Message: "Invalid file name", Cause: err}
	}
	if err != nil {
		return object.Object{}, apperr.Internal("Something went wrong", err)
	}

	contentType := file.CanonicalType.String()
	if sniffed != "" && !strings.HasPrefix(sniffed, "application/octet-stream") {
		contentType = sniffed
	}

	ctx, span := tracer.Start(ctx, "blob.save")
	defer span.End()
	span.SetAttributes(attribute.String("object.key", key), attribute.String("content_type", contentType))

	obj, err := s.Store.Save(ctx, key, contentType, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		span.RecordError(err)
		return object.Object{}, apperr.Storage("Failed to store file", err)
	}
	return obj, nil
}

func (s *Service) newRecord(id auth.Identity, req ingest.UploadRequest, file ingest.NormalizedFile, outcome ingest.Outcome, obj object.Object) Document {
	now := s.now()
	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}
	return Document{
		ID:               uuid.NewString(),
		UserID:           id.UserID,
		Title:            ingest.TitleOrDefault(req.Title, req.FileName),
		Content:          outcome.Text,
		OriginalText:     outcome.Text,
		FileType:         string(s.table().FileTypeOf(file.CanonicalType, req.IsHandwritten)),
		MimeType:         file.CanonicalType.String(),
		ProcessingMethod: outcome.Method,
		FileName:         file.FileName,
		SizeBytes:        file.SizeBytes,
		StorageKey:       obj.Key,
		FileURL:          obj.URL,
		Tags:             tags,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// Get returns one of the caller's documents.
func (s *Service) Get(ctx context.Context, id auth.Identity, documentID string) (Document, error) {
	if strings.TrimSpace(documentID) == "" {
		return Document{}, apperr.Validation("documentId is required")
	}
	doc, err := s.Repo.GetByID(ctx, id.UserID, documentID)
	if errors.Is(err, ErrNotFound) {
		return Document{}, &apperr.Error{Kind: apperr.KindNotFound, Message: "Document not found", Cause: err}
	}
	if err != nil {
		return Document{}, apperr.Storage("Failed to load document", err)
	}
	return doc, nil
}

// OpenFile returns the stored upload behind one of the caller's documents.
// The caller closes the reader.
func (s *Service) OpenFile(ctx context.Context, id auth.Identity, documentID string) (Document, io.ReadCloser, error) {
	doc, err := s.Get(ctx, id, documentID)
	if err != nil {
		return Document{}, nil, err
	}
	if doc.StorageKey == "" {
		return Document{}, nil, &apperr.Error{Kind: apperr.KindNotFound, Message: "File not found"}
	}
	rc, err := s.Store.Open(ctx, doc.StorageKey)
	if errors.Is(err, fs.ErrNotExist) {
		return Document{}, nil, &apperr.Error{Kind: apperr.KindNotFound, Message: "File not found", Cause: err}
	}
	if err != nil {
		return Document{}, nil, apperr.Storage("Failed to open file", err)
	}
	return doc, rc, nil
}

// List returns the caller's documents, newest first.
func (s *Service) List(ctx context.Context, id auth.Identity, limit, offset int) ([]Document, error) {
	docs, err := s.Repo.ListByUser(ctx, id.UserID, limit, offset)
	if err != nil {
		return nil, apperr.Storage("Failed to list documents", err)
	}
	return docs, nil
}

func (s *Service) table() *ingest.Table {
	if s.Table != nil {
		return s.Table
	}
	return ingest.DefaultTable
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
