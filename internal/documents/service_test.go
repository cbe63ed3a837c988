package documents

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"study-assistant/internal/ingest"
	"study-assistant/internal/shared/apperr"
	"study-assistant/internal/shared/auth"
	"study-assistant/internal/shared/storage/cache"
	"study-assistant/internal/shared/storage/object/local"
	"study-assistant/internal/shared/telemetry"
	"study-assistant/internal/shared/util"
)

type failingRepo struct {
	MemoryRepo
	err error
}

func (r *failingRepo) Create(ctx context.Context, doc Document) error {
	return r.err
}

func TestUploadRepoFailureLogsOrphanedKey(t *testing.T) {
	var logs bytes.Buffer
	restore := telemetry.SetOutput(&logs)
	defer restore()

	svc := &Service{
		Repo:      &failingRepo{err: errors.New("connection reset")},
		Store:     local.New(t.TempDir(), "/uploads"),
		Extractor: ingest.Extractor{AI: &fakeCompleter{text: "ok"}},
	}
	_, err := svc.Upload(context.Background(), auth.Identity{UserID: "user-1"}, ingest.Guard{MaxBytes: 1024}, ingest.UploadRequest{
		Data:         []byte("hello"),
		DeclaredType: "text/plain",
		FileName:     "a.txt",
	})
	if !apperr.IsKind(err, apperr.KindStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if !bytes.Contains(logs.Bytes(), []byte(`"orphaned_key"`)) {
		t.Fatalf("expected orphaned_key in logs, got %s", logs.String())
	}
	if !bytes.Contains(logs.Bytes(), []byte(`"sniffed_type"`)) {
		t.Fatalf("expected sniffed_type in logs, got %s", logs.String())
	}
}

func TestUploadIgnoresCallerCancellation(t *testing.T) {
	restore := telemetry.SetOutput(io.Discard)
	defer restore()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := NewMemoryRepo()
	svc := &Service{
		Repo:      repo,
		Store:     local.New(t.TempDir(), "/uploads"),
		Extractor: ingest.Extractor{AI: &fakeCompleter{text: "ok"}},
		Now:       func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) },
	}
	res, err := svc.Upload(ctx, auth.Identity{UserID: "user-1"}, ingest.Guard{MaxBytes: 1024}, ingest.UploadRequest{
		Data:         []byte("hello"),
		DeclaredType: "text/plain",
		FileName:     "a.txt",
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if res.Document.CreatedAt.Year() != 2024 || repo.Count() != 1 {
		t.Fatalf("unexpected result %+v", res.Document)
	}
}

func TestUploadKeepsTraversalNameInsideOwnerPrefix(t *testing.T) {
	restore := telemetry.SetOutput(io.Discard)
	defer restore()

	svc := &Service{
		Repo:      NewMemoryRepo(),
		Store:     local.New(t.TempDir(), "/uploads"),
		Extractor: ingest.Extractor{AI: &fakeCompleter{text: "ok"}},
	}
	res, err := svc.Upload(context.Background(), auth.Identity{UserID: "user-1"}, ingest.Guard{MaxBytes: 1024}, ingest.UploadRequest{
		Data:         []byte("hello"),
		DeclaredType: "text/plain",
		FileName:     "../../etc/passwd.txt",
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	want := util.OwnerKey("user-1") + "/"
	if key := res.Document.StorageKey; !strings.HasPrefix(key, want) || strings.Count(key, "/") != 1 {
		t.Fatalf("storage key escaped owner prefix: %s", key)
	}
}

type countingRepo struct {
	*MemoryRepo
	gets int
}

func (r *countingRepo) GetByID(ctx context.Context, userID, documentID string) (Document, error) {
	r.gets++
	return r.MemoryRepo.GetByID(ctx, userID, documentID)
}

func TestCachedRepoReadsThrough(t *testing.T) {
	inner := &countingRepo{MemoryRepo: NewMemoryRepo()}
	_ = inner.Create(context.Background(), Document{ID: "doc-1", UserID: "user-1", Title: "Cells"})

	repo := &CachedRepo{Repo: inner, Cache: cache.NewMemory(), TTL: time.Minute}
	for i := 0; i < 3; i++ {
		doc, err := repo.GetByID(context.Background(), "user-1", "doc-1")
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if doc.Title != "Cells" {
			t.Fatalf("unexpected doc %+v", doc)
		}
	}
	if inner.gets != 1 {
		t.Fatalf("expected 1 backing read, got %d", inner.gets)
	}

	if _, err := repo.GetByID(context.Background(), "user-2", "doc-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other owner, got %v", err)
	}
}
