package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"club-points-ledger/internal/models"
	"club-points-ledger/internal/store"
)

func insertTestPost(t *testing.T, service *Service, post *models.Post) {
	t.Helper()
	err := service.RunInTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		return tx.InsertPost(ctx, post)
	})
	if err != nil {
		t.Fatalf("InsertPost failed: %v", err)
	}
}

func TestPost_RoundTrip(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Millisecond)
	insertTestPost(t, service, &models.Post{
		Id:         "p1",
		AuthorId:   "author",
		AuthorName: "Author",
		AuthorTier: models.TierSilver,
		Title:      "Hello",
		Content:    "World",
		Category:   models.CategoryStudy,
		CreatedAt:  now,
		UpdatedAt:  now,
	})

	post, err := service.GetPostById(ctx, "p1")
	if err != nil {
		t.Fatalf("GetPostById failed: %v", err)
	}
	if post.Title != "Hello" || post.Category != models.CategoryStudy || post.AuthorTier != models.TierSilver {
		t.Errorf("Unexpected post: %+v", post)
	}
	if post.Likes == nil || len(post.Likes) != 0 {
		t.Errorf("Expected empty like set, got %v", post.Likes)
	}
	if !post.CreatedAt.Equal(now) {
		t.Errorf("Expected created_at %v, got %v", now, post.CreatedAt)
	}

	err = service.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		p, err := tx.GetPost(ctx, "p1")
		if err != nil {
			return err
		}
		p.Likes = append(p.Likes, "fan")
		p.Comments = append(p.Comments, models.Comment{Id: "c1", AuthorId: "fan", Content: "nice", CreatedAt: now.UnixMilli()})
		return tx.SavePost(ctx, p)
	})
	if err != nil {
		t.Fatalf("SavePost failed: %v", err)
	}

	post, _ = service.GetPostById(ctx, "p1")
	if !post.HasLike("fan") {
		t.Error("Expected fan in like set")
	}
	if idx := post.FindComment("c1"); idx != 0 {
		t.Errorf("Expected comment c1 at index 0, got %d", idx)
	}
	if post.Version != 2 {
		t.Errorf("Expected version 2, got %d", post.Version)
	}

	err = service.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		p, err := tx.GetPost(ctx, "p1")
		if err != nil {
			return err
		}
		return tx.DeletePost(ctx, p)
	})
	if err != nil {
		t.Fatalf("DeletePost failed: %v", err)
	}
	if _, err := service.GetPostById(ctx, "p1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}

func TestPointEvents_HistoryAndOutbox(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Millisecond)
	err := service.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		events := []models.PointEvent{
			{Key: "post:create:p1", TargetUserId: "u1", Delta: 10, PointsBefore: 0, PointsAfter: 10, CreatedAt: base},
			{Key: "comment:create:p1:c1", TargetUserId: "u1", Delta: 3, PointsBefore: 10, PointsAfter: 13, CreatedAt: base.Add(time.Second)},
			{Key: "post:create:p2", TargetUserId: "u2", Delta: 50, PointsBefore: 0, PointsAfter: 50, CreatedAt: base.Add(2 * time.Second)},
		}
		for _, e := range events {
			if err := tx.InsertPointEvent(ctx, e); err != nil {
				return err
			}
			if err := tx.EnqueueOutbox(ctx, e.Key); err != nil {
				return err
			}
		}
		// Enqueueing twice is harmless
		return tx.EnqueueOutbox(ctx, "post:create:p1")
	})
	if err != nil {
		t.Fatalf("RunInTx failed: %v", err)
	}

	err = service.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		exists, err := tx.HasPointEvent(ctx, "post:create:p1")
		if err != nil {
			return err
		}
		if !exists {
			t.Error("Expected post:create:p1 to exist")
		}
		exists, err = tx.HasPointEvent(ctx, "post:create:nope")
		if err != nil {
			return err
		}
		if exists {
			t.Error("Did not expect post:create:nope to exist")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RunInTx failed: %v", err)
	}

	history, err := service.GetPointHistory(ctx, "u1", 10, 0)
	if err != nil {
		t.Fatalf("GetPointHistory failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("Expected 2 events for u1, got %d", len(history))
	}
	if history[0].Key != "comment:create:p1:c1" {
		t.Errorf("Expected newest event first, got %s", history[0].Key)
	}
	if history[0].Applied() != 3 {
		t.Errorf("Expected applied 3, got %d", history[0].Applied())
	}

	entries, err := service.FetchOutbox(ctx, 10)
	if err != nil {
		t.Fatalf("FetchOutbox failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Expected 3 outbox entries, got %d", len(entries))
	}
	if entries[0].Event.Key != "post:create:p1" || entries[2].Event.Key != "post:create:p2" {
		t.Errorf("Outbox not in commit order: %s, %s", entries[0].Event.Key, entries[2].Event.Key)
	}

	if err := service.AckOutbox(ctx, entries[0].Seq); err != nil {
		t.Fatalf("AckOutbox failed: %v", err)
	}
	entries, _ = service.FetchOutbox(ctx, 10)
	if len(entries) != 2 {
		t.Errorf("Expected 2 entries after ack, got %d", len(entries))
	}

	// Acking removes only the outbox row
	history, _ = service.GetPointHistory(ctx, "u1", 10, 0)
	if len(history) != 2 {
		t.Errorf("Expected point events to survive ack, got %d", len(history))
	}
}
