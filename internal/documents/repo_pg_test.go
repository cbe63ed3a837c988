package documents

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoCreateEncodesTags(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()
	doc := Document{
		ID:               "doc-1",
		UserID:           "user-1",
		Title:            "Biology",
		Content:          "text",
		OriginalText:     "text",
		FileType:         "pdf",
		MimeType:         "application/pdf",
		ProcessingMethod: "gemini_pdf_1.5",
		FileName:         "bio.pdf",
		SizeBytes:        10,
		StorageKey:       "owner/uuid-bio.pdf",
		FileURL:          "/uploads/owner/uuid-bio.pdf",
		Tags:             []string{"bio", "exam"},
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	mock.ExpectExec("INSERT INTO documents").
		WithArgs(
			doc.ID,
			doc.UserID,
			doc.Title,
			doc.Content,
			doc.OriginalText,
			nil, // summary
			doc.FileType,
			doc.MimeType,
			doc.ProcessingMethod,
			doc.FileName,
			doc.SizeBytes,
			doc.StorageKey,
			doc.FileURL,
			[]byte(`["bio","exam"]`),
			doc.CreatedAt,
			doc.UpdatedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), doc); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func documentRow(mock sqlmock.Sqlmock, now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "title", "content", "original_text", "summary", "file_type", "mime_type",
		"processing_method", "file_name", "size_bytes", "storage_key", "file_url", "tags", "created_at", "updated_at",
	}).AddRow(
		"doc-1", "user-1", "Biology", "text", "text", nil, "handwritten", "image/png",
		"gemini_handwriting_1.5", "scan.png", int64(4), "k", "/uploads/k", []byte(`["bio"]`), now, now,
	)
}

func TestPGRepoGetByIDDecodesRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM documents").
		WithArgs("user-1", "doc-1").
		WillReturnRows(documentRow(mock, now))

	doc, err := (&PGRepo{DB: db}).GetByID(context.Background(), "user-1", "doc-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if doc.FileType != "handwritten" || len(doc.Tags) != 1 || doc.Tags[0] != "bio" || doc.Summary != "" {
		t.Fatalf("unexpected document %+v", doc)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery("SELECT (.+) FROM documents").
		WithArgs("user-1", "nope").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = (&PGRepo{DB: db}).GetByID(context.Background(), "user-1", "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoListClampsLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery("SELECT (.+) FROM documents").
		WithArgs("user-1", 100, 0).
		WillReturnRows(documentRow(mock, time.Now().UTC()))

	docs, err := (&PGRepo{DB: db}).ListByUser(context.Background(), "user-1", 1000, -5)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
