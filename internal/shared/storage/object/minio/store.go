package minio

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.opentelemetry.io/otel/attribute"

	"study-assistant/internal/shared/storage/object"
	"study-assistant/internal/shared/telemetry"
)

var tracer = telemetry.Tracer("storage/minio")

// Options configures the MinIO-backed store.
type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Store implements ObjectStore on an S3-compatible MinIO deployment.
type Store struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// New connects to MinIO and creates the bucket if it does not exist yet.
func New(ctx context.Context, opts Options) (*Store, error) {
	if strings.TrimSpace(opts.Endpoint) == "" || strings.TrimSpace(opts.Bucket) == "" {
		return nil, fmt.Errorf("minio endpoint and bucket are required")
	}
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", opts.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", opts.Bucket, err)
		}
		telemetry.Info("minio.bucket_created", map[string]any{"bucket": opts.Bucket})
	}

	return &Store{
		client:  client,
		bucket:  opts.Bucket,
		baseURL: baseURL(opts.Endpoint, opts.Bucket, opts.UseSSL),
	}, nil
}

// Save streams the reader into the bucket at key. A negative size makes the
// client fall back to a buffered multipart upload.
func (s *Store) Save(ctx context.Context, key, contentType string, r io.Reader, size int64) (object.Object, error) {
	clean, err := object.CleanKey(key)
	if err != nil {
		return object.Object{}, err
	}
	ctx, span := tracer.Start(ctx, "minio.put_object")
	defer span.End()
	span.SetAttributes(
		attribute.String("bucket", s.bucket),
		attribute.String("object.key", clean),
	)

	info, err := s.client.PutObject(ctx, s.bucket, clean, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		span.RecordError(err)
		return object.Object{}, fmt.Errorf("minio put object bucket=%s key=%s: %w", s.bucket, clean, err)
	}
	span.SetAttributes(attribute.Int64("object.size", info.Size))
	return object.Object{
		Key:  clean,
		Size: info.Size,
		URL:  object.JoinURL(s.baseURL, clean),
	}, nil
}

// Open returns a reader for the object at key.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	clean, err := object.CleanKey(key)
	if err != nil {
		return nil, err
	}
	obj, err := s.client.GetObject(ctx, s.bucket, clean, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("minio get object bucket=%s key=%s: %w", s.bucket, clean, err)
	}
	return obj, nil
}

func baseURL(endpoint, bucket string, useSSL bool) string {
	host := strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		scheme := "http://"
		if useSSL {
			scheme = "https://"
		}
		host = scheme + host
	}
	return host + "/" + bucket
}

var _ object.ObjectStore = (*Store)(nil)
