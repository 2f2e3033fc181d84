/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package ledger applies idempotent point deltas to member balances.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"club-points-ledger/internal/models"
	"club-points-ledger/internal/store"
	"club-points-ledger/internal/tier"

	"go.uber.org/zap"
)

var ErrInvalidEvent = errors.New("invalid point event")

// Standing is a member's balance and tier after ApplyDelta.
// Applied is false when the event key had already been recorded.
type Standing struct {
	Applied bool
	Points  int64
	Tier    models.Tier
}

// Engine applies point deltas inside a caller-owned transaction
type Engine struct {
	outbox bool
	now    func() time.Time
}

// NewEngine creates an engine. When outbox is true every recorded event is
// also queued for the relay in the same transaction.
func NewEngine(outbox bool) *Engine {
	return &Engine{outbox: outbox, now: time.Now}
}

// ApplyDelta adds delta to the target's balance exactly once per key.
// The balance is clamped at zero and the tier recomputed from the result.
// A key that was already recorded is a no-op returning the current standing.
func (e *Engine) ApplyDelta(ctx context.Context, tx store.Tx, targetUserId string, delta int64, key string) (Standing, error) {
	if key == "" || targetUserId == "" {
		return Standing{}, fmt.Errorf("%w: key and target are required", ErrInvalidEvent)
	}

	exists, err := tx.HasPointEvent(ctx, key)
	if err != nil {
		return Standing{}, err
	}

	user, err := tx.GetUser(ctx, targetUserId)
	if exists {
		zap.L().Info("Point event already applied, skipping",
			zap.String("event_key", key),
			zap.String("user_id", targetUserId))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return Standing{}, nil
			}
			return Standing{}, err
		}
		return Standing{Applied: false, Points: user.Points, Tier: user.Tier}, nil
	}
	if err != nil {
		return Standing{}, err
	}

	before := user.Points
	next := clampedSum(before, delta)
	user.Points = next
	user.Tier = tier.Classify(next, user.IsChallenger)

	if err := tx.SaveUser(ctx, user); err != nil {
		return Standing{}, err
	}

	event := models.PointEvent{
		Key:          key,
		TargetUserId: targetUserId,
		Delta:        delta,
		PointsBefore: before,
		PointsAfter:  next,
		CreatedAt:    e.now().UTC(),
	}
	if err := tx.InsertPointEvent(ctx, event); err != nil {
		return Standing{}, err
	}
	if e.outbox {
		if err := tx.EnqueueOutbox(ctx, key); err != nil {
			return Standing{}, err
		}
	}

	zap.L().Info("Point delta applied",
		zap.String("event_key", key),
		zap.String("user_id", targetUserId),
		zap.Int64("delta", delta),
		zap.Int64("old_points", before),
		zap.Int64("new_points", next),
		zap.String("tier", string(user.Tier)))

	return Standing{Applied: true, Points: next, Tier: user.Tier}, nil
}

// clampedSum returns max(0, points+delta), saturating at math.MaxInt64.
func clampedSum(points, delta int64) int64 {
	if delta > 0 && points > math.MaxInt64-delta {
		return math.MaxInt64
	}
	next := points + delta
	if next < 0 {
		return 0
	}
	return next
}
