package store

import (
	"context"
	"errors"

	"club-points-ledger/internal/models"
)

// Sentinel errors shared across all backend implementations.
var (
	ErrNotFound               = errors.New("not found")
	ErrDuplicateUser          = errors.New("user already exists")
	ErrConcurrentModification = errors.New("concurrent modification detected")
	ErrTxContention           = errors.New("transaction retry budget exhausted")
)

// Tx is the handle a transaction body uses. Every read and write made through
// it commits or rolls back together.
type Tx interface {
	// --- Users ---
	GetUser(ctx context.Context, userId string) (*models.User, error)
	// SaveUser writes standing and role fields guarded by user.Version and
	// advances the version on success.
	SaveUser(ctx context.Context, user *models.User) error

	// --- Posts ---
	GetPost(ctx context.Context, postId string) (*models.Post, error)
	InsertPost(ctx context.Context, post *models.Post) error
	// SavePost writes likes and comments guarded by post.Version.
	SavePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, post *models.Post) error

	// --- Point events (write-once) ---
	HasPointEvent(ctx context.Context, key string) (bool, error)
	InsertPointEvent(ctx context.Context, event models.PointEvent) error
	EnqueueOutbox(ctx context.Context, key string) error
}

// TxRunner runs a function inside a store transaction, retrying it on contention.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// LedgerStore defines the contract every SQL backend must satisfy.
type LedgerStore interface {
	TxRunner

	// --- Users ---
	GetUsers(ctx context.Context) ([]models.User, error)
	GetUserById(ctx context.Context, userId string) (*models.User, error)
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
	GetRanking(ctx context.Context, limit int) ([]models.User, error)

	// --- Posts ---
	GetPostById(ctx context.Context, postId string) (*models.Post, error)

	// --- Point events ---
	GetPointHistory(ctx context.Context, userId string, limit, offset int) ([]models.PointEvent, error)
	FetchOutbox(ctx context.Context, limit int) ([]models.OutboxEntry, error)
	AckOutbox(ctx context.Context, seq int64) error

	// --- Lifecycle ---
	Ping(ctx context.Context) error
	Close()
}

// InTx runs fn in a transaction and returns the value produced by the attempt
// that committed.
func InTx[T any](ctx context.Context, runner TxRunner, fn func(ctx context.Context, tx Tx) (T, error)) (T, error) {
	var result T
	err := runner.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		v, err := fn(ctx, tx)
		if err != nil {
			return err
		}
		result = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
