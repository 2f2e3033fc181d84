package store

import (
	"context"
	"errors"
	"testing"
)

// retryRunner calls fn until it stops returning ErrConcurrentModification.
type retryRunner struct {
	attempts int
}

func (r *retryRunner) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	for {
		r.attempts++
		err := fn(ctx, nil)
		if errors.Is(err, ErrConcurrentModification) {
			continue
		}
		return err
	}
}

func TestInTx_ReturnsCommittedAttempt(t *testing.T) {
	runner := &retryRunner{}
	calls := 0

	got, err := InTx(context.Background(), runner, func(ctx context.Context, tx Tx) (int, error) {
		calls++
		if calls < 3 {
			return calls, ErrConcurrentModification
		}
		return calls * 10, nil
	})
	if err != nil {
		t.Fatalf("InTx failed: %v", err)
	}
	if got != 30 {
		t.Errorf("Expected result from the third attempt (30), got %d", got)
	}
	if runner.attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", runner.attempts)
	}
}

func TestInTx_ErrorReturnsZeroValue(t *testing.T) {
	runner := &retryRunner{}
	boom := errors.New("boom")

	got, err := InTx(context.Background(), runner, func(ctx context.Context, tx Tx) (string, error) {
		return "partial", boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected boom, got %v", err)
	}
	if got != "" {
		t.Errorf("Expected zero value on error, got %q", got)
	}
}
