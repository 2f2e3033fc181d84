// Package objectstore removes post images from the bucket that serves them.
package objectstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"club-points-ledger/internal/models"
)

// ObjectStorage defines common object operations across backends.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Delete(ctx context.Context, key string) error
	Bucket() string
}

// Storage wraps an ObjectStorage backend and maps public image URLs to keys.
type Storage struct {
	backend       ObjectStorage
	publicBaseURL string
}

// NewStorage constructs a Storage wrapper for the provided backend.
func NewStorage(backend ObjectStorage, publicBaseURL string) *Storage {
	return &Storage{backend: backend, publicBaseURL: strings.TrimRight(publicBaseURL, "/")}
}

// New builds the configured backend. It returns nil, nil when no backend is configured.
func New(ctx context.Context, cfg models.ObjectStoreConfig) (*Storage, error) {
	var backend ObjectStorage
	var err error
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", "none":
		return nil, nil
	case "minio":
		backend, err = NewMinioClient(cfg.Minio)
	case "gcs":
		backend, err = NewGCSClient(ctx, cfg.GCS)
	case "s3":
		backend, err = NewS3Client(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unsupported object store backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to init %s object store: %w", cfg.Backend, err)
	}
	return NewStorage(backend, cfg.PublicBaseURL), nil
}

// EnsureBucket ensures the configured bucket exists.
func (s *Storage) EnsureBucket(ctx context.Context) error {
	return s.backend.EnsureBucket(ctx)
}

// Delete removes an object from the configured bucket.
func (s *Storage) Delete(ctx context.Context, key string) error {
	return s.backend.Delete(ctx, key)
}

// Bucket returns the configured bucket name.
func (s *Storage) Bucket() string {
	return s.backend.Bucket()
}

// KeyFromURL derives the object key behind a public image URL. ok is false
// when the URL does not point into this bucket.
func (s *Storage) KeyFromURL(raw string) (key string, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	if s.publicBaseURL != "" {
		prefix := s.publicBaseURL + "/"
		if !strings.HasPrefix(raw, prefix) {
			return "", false
		}
		rest := strings.TrimPrefix(raw, prefix)
		if i := strings.IndexAny(rest, "?#"); i >= 0 {
			rest = rest[:i]
		}
		key, err := url.PathUnescape(rest)
		if err != nil {
			return "", false
		}
		return key, key != ""
	}

	u, err := url.Parse(raw)
	if err != nil || u.Path == "" {
		return "", false
	}
	key = strings.TrimPrefix(u.Path, "/")
	key = strings.TrimPrefix(key, s.Bucket()+"/")
	return key, key != ""
}

// DeleteByURL removes the object behind a public URL. It reports false when
// the URL is not one of ours and nothing was attempted.
func (s *Storage) DeleteByURL(ctx context.Context, imageURL string) (bool, error) {
	key, ok := s.KeyFromURL(imageURL)
	if !ok {
		return false, nil
	}
	if err := s.backend.Delete(ctx, key); err != nil {
		return true, fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return true, nil
}
