package objectstore

import (
	"context"
	"errors"
	"testing"

	"club-points-ledger/internal/models"
)

type fakeBackend struct {
	bucket  string
	deleted []string
	err     error
}

func (f *fakeBackend) EnsureBucket(ctx context.Context) error { return nil }

func (f *fakeBackend) Delete(ctx context.Context, key string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeBackend) Bucket() string { return f.bucket }

func TestKeyFromURL_PublicBase(t *testing.T) {
	s := NewStorage(&fakeBackend{bucket: "club"}, "https://cdn.example.com/media/")

	tests := []struct {
		url    string
		key    string
		wantOK bool
	}{
		{"https://cdn.example.com/media/posts/u1/cat.png", "posts/u1/cat.png", true},
		{"https://cdn.example.com/media/posts/u1/my%20cat.png?v=2", "posts/u1/my cat.png", true},
		{"https://elsewhere.example.com/posts/u1/cat.png", "", false},
		{"https://cdn.example.com/media/", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		key, ok := s.KeyFromURL(tt.url)
		if ok != tt.wantOK || key != tt.key {
			t.Errorf("KeyFromURL(%q) = %q, %v; want %q, %v", tt.url, key, ok, tt.key, tt.wantOK)
		}
	}
}

func TestKeyFromURL_PathStyle(t *testing.T) {
	s := NewStorage(&fakeBackend{bucket: "club"}, "")

	key, ok := s.KeyFromURL("http://localhost:9000/club/posts/u1/cat.png")
	if !ok || key != "posts/u1/cat.png" {
		t.Errorf("Expected posts/u1/cat.png, got %q (%v)", key, ok)
	}
}

func TestDeleteByURL(t *testing.T) {
	backend := &fakeBackend{bucket: "club"}
	s := NewStorage(backend, "https://cdn.example.com")
	ctx := context.Background()

	attempted, err := s.DeleteByURL(ctx, "https://cdn.example.com/posts/p1.png")
	if err != nil || !attempted {
		t.Fatalf("DeleteByURL failed: attempted=%v err=%v", attempted, err)
	}
	if len(backend.deleted) != 1 || backend.deleted[0] != "posts/p1.png" {
		t.Errorf("Unexpected deletes: %v", backend.deleted)
	}

	attempted, err = s.DeleteByURL(ctx, "https://other.example.com/posts/p1.png")
	if err != nil || attempted {
		t.Errorf("Expected foreign URL to be skipped, attempted=%v err=%v", attempted, err)
	}

	backend.err = errors.New("denied")
	if _, err := s.DeleteByURL(ctx, "https://cdn.example.com/posts/p2.png"); err == nil {
		t.Error("Expected backend error to surface")
	}
}

func TestNew_NoneBackend(t *testing.T) {
	s, err := New(context.Background(), models.ObjectStoreConfig{Backend: "none"})
	if err != nil || s != nil {
		t.Errorf("Expected nil storage for none backend, got %v, %v", s, err)
	}
	if _, err := New(context.Background(), models.ObjectStoreConfig{Backend: "ftp"}); err == nil {
		t.Error("Expected error for unknown backend")
	}
}
