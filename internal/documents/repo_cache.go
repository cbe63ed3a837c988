package documents

import (
	"context"
	"errors"
	"time"

	"study-assistant/internal/shared/storage/cache"
	"study-assistant/internal/shared/telemetry"
)

// CachedRepo wraps a DocumentsRepo with a read-through cache for GetByID.
// Records are never mutated after creation, so entries only expire.
type CachedRepo struct {
	Repo  DocumentsRepo
	Cache cache.Store
	TTL   time.Duration
}

func cacheKey(userID, documentID string) string {
	return "document:" + userID + ":" + documentID
}

func (r *CachedRepo) Create(ctx context.Context, doc Document) error {
	return r.Repo.Create(ctx, doc)
}

func (r *CachedRepo) GetByID(ctx context.Context, userID, documentID string) (Document, error) {
	key := cacheKey(userID, documentID)
	var doc Document
	err := cache.GetJSON(ctx, r.Cache, key, &doc)
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		telemetry.Warn("documents.cache_get_failed", map[string]any{"document_id": documentID, "error": err.Error()})
	}

	doc, err = r.Repo.GetByID(ctx, userID, documentID)
	if err != nil {
		return Document{}, err
	}
	if err := cache.SetJSON(ctx, r.Cache, key, doc, r.TTL); err != nil {
		telemetry.Warn("documents.cache_set_failed", map[string]any{"document_id": documentID, "error": err.Error()})
	}
	return doc, nil
}

func (r *CachedRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Document, error) {
	return r.Repo.ListByUser(ctx, userID, limit, offset)
}

var _ DocumentsRepo = (*CachedRepo)(nil)
