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

package formance

import (
	"context"
	"fmt"
	"strconv"

	"club-points-ledger/internal/models"

	"github.com/formancehq/formance-sdk-go/v3/pkg/models/operations"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/shared"
	"go.uber.org/zap"
)

// Points carry no fractional part.
const pointsAsset = "PTS"

// ---------------------------------------------------------------------------
// Numscript templates
//
// The treasury issues every awarded point and takes back every reversed one,
// so @club:treasury runs negative by the total outstanding balance.
// ---------------------------------------------------------------------------

const numscriptPointsAward = `vars {
  asset $asset
  number $amount
  account $member_id
  string $event_key
  string $delta
}

send [$asset $amount] (
  source = @club:treasury allowing unbounded overdraft
  destination = @members:$member_id
)

set_tx_meta("event_type", "points_award")
set_tx_meta("event_key", $event_key)
set_tx_meta("delta", $delta)
`

const numscriptPointsReversal = `vars {
  asset $asset
  number $amount
  account $member_id
  string $event_key
  string $delta
}

send [$asset $amount] (
  source = @members:$member_id allowing unbounded overdraft
  destination = @club:treasury
)

set_tx_meta("event_type", "points_reversal")
set_tx_meta("event_key", $event_key)
set_tx_meta("delta", $delta)
`

// mirrorPlan picks the script and amount for an event. ok is false when the
// event moved no points, e.g. a reversal clamped at zero.
func mirrorPlan(event models.PointEvent) (script string, amount int64, ok bool) {
	applied := event.Applied()
	switch {
	case applied > 0:
		return numscriptPointsAward, applied, true
	case applied < 0:
		return numscriptPointsReversal, -applied, true
	default:
		return "", 0, false
	}
}

func memberAccount(userId string) string {
	return "members:" + userId
}

// Deliver records the event as a Formance transaction referenced by its key.
// A CONFLICT means the event was mirrored before.
func (s *Service) Deliver(ctx context.Context, event models.PointEvent) error {
	script, amount, ok := mirrorPlan(event)
	if !ok {
		zap.L().Debug("Skipping zero-effect point event", zap.String("event_key", event.Key))
		return nil
	}

	postTx := shared.V2PostTransaction{
		Reference: strPtr(event.Key),
		Script: &shared.V2PostTransactionScript{
			Plain: script,
			Vars: map[string]string{
				"asset":     pointsAsset,
				"amount":    strconv.FormatInt(amount, 10),
				"member_id": event.TargetUserId,
				"event_key": event.Key,
				"delta":     strconv.FormatInt(event.Delta, 10),
			},
		},
	}
	if !event.CreatedAt.IsZero() {
		ts := event.CreatedAt
		postTx.Timestamp = &ts
	}

	_, err := s.client.Ledger.V2.CreateTransaction(ctx, operations.V2CreateTransactionRequest{
		Ledger:            s.ledger,
		V2PostTransaction: postTx,
	})
	if err != nil {
		if isConflictError(err) {
			return nil // idempotent
		}
		return fmt.Errorf("error mirroring point event %s: %w", event.Key, err)
	}

	zap.L().Info("Point event mirrored in Formance",
		zap.String("event_key", event.Key),
		zap.String("user_id", event.TargetUserId),
		zap.Int64("amount", amount))
	return nil
}

func strPtr(s string) *string {
	return &s
}
