package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"club-points-ledger/internal/models"
	"club-points-ledger/internal/store"

	"go.uber.org/zap"
)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// RunInTx runs fn inside a database transaction. Contention failures roll the
// attempt back and run fn again from scratch, up to the configured budget.
func (s *Service) RunInTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	var lastErr error
	for attempt := 1; attempt <= s.txMaxAttempts; attempt++ {
		err := s.runOnce(ctx, fn)
		if err == nil {
			return nil
		}
		if !isTransient(err) {
			return err
		}
		lastErr = err

		zap.L().Debug("Transaction contended, retrying",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", s.txMaxAttempts),
			zap.Error(err))

		if attempt == s.txMaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.txBackoff * time.Duration(attempt)):
		}
	}

	zap.L().Warn("Transaction retry budget exhausted",
		zap.Int("attempts", s.txMaxAttempts),
		zap.Error(lastErr))
	return fmt.Errorf("%w after %d attempts: %v", store.ErrTxContention, s.txMaxAttempts, lastErr)
}

func (s *Service) runOnce(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(ctx, &txHandle{q: sqlTx}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// txHandle implements store.Tx on top of a *sql.Tx
type txHandle struct {
	q queryer
}

var _ store.Tx = (*txHandle)(nil)

func (t *txHandle) GetUser(ctx context.Context, userId string) (*models.User, error) {
	return getUser(ctx, t.q, userId)
}

func (t *txHandle) SaveUser(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	result, err := t.q.ExecContext(ctx, queryUpdateUser,
		user.Points, string(user.Tier), user.IsAdmin, user.IsChallenger, user.IsTestAccount,
		toMillis(now), user.Id, user.Version)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if err := expectOneRow(result, "user update"); err != nil {
		return err
	}
	user.Version++
	user.UpdatedAt = now
	return nil
}

func (t *txHandle) GetPost(ctx context.Context, postId string) (*models.Post, error) {
	return getPost(ctx, t.q, postId)
}

func (t *txHandle) InsertPost(ctx context.Context, post *models.Post) error {
	likes, comments, err := encodeEngagement(post)
	if err != nil {
		return err
	}
	if post.Version == 0 {
		post.Version = 1
	}
	_, err = t.q.ExecContext(ctx, queryInsertPost,
		post.Id, post.AuthorId, post.AuthorName, post.AuthorPhotoURL, string(post.AuthorTier),
		post.Title, post.Content, post.ImageURL, string(post.Category), likes, comments,
		post.Version, toMillis(post.CreatedAt), toMillis(post.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}
	return nil
}

func (t *txHandle) SavePost(ctx context.Context, post *models.Post) error {
	likes, comments, err := encodeEngagement(post)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	result, err := t.q.ExecContext(ctx, queryUpdatePostEngagement, likes, comments, toMillis(now), post.Id, post.Version)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	if err := expectOneRow(result, "post update"); err != nil {
		return err
	}
	post.Version++
	post.UpdatedAt = now
	return nil
}

func (t *txHandle) DeletePost(ctx context.Context, post *models.Post) error {
	result, err := t.q.ExecContext(ctx, queryDeletePost, post.Id, post.Version)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	return expectOneRow(result, "post delete")
}

func (t *txHandle) HasPointEvent(ctx context.Context, key string) (bool, error) {
	var one int
	err := t.q.QueryRowContext(ctx, queryHasPointEvent, key).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check point event: %w", err)
	}
	return true, nil
}

func (t *txHandle) InsertPointEvent(ctx context.Context, event models.PointEvent) error {
	_, err := t.q.ExecContext(ctx, queryInsertPointEvent,
		event.Key, event.TargetUserId, event.Delta, event.PointsBefore, event.PointsAfter, toMillis(event.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert point event: %w", err)
	}
	return nil
}

func (t *txHandle) EnqueueOutbox(ctx context.Context, key string) error {
	_, err := t.q.ExecContext(ctx, queryEnqueueOutbox, key, toMillis(time.Now()))
	if err != nil {
		return fmt.Errorf("failed to enqueue point event: %w", err)
	}
	return nil
}

// expectOneRow turns a version-guarded write that matched nothing into
// ErrConcurrentModification.
func expectOneRow(result sql.Result, what string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s failed - %w", what, store.ErrConcurrentModification)
	}
	return nil
}
