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
	"math/big"

	v3 "github.com/formancehq/formance-sdk-go/v3"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/operations"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/shared"
	"go.uber.org/zap"
)

// MemberPoints returns the mirrored balance of a member. An account the
// ledger has never seen reports zero.
func (s *Service) MemberPoints(ctx context.Context, userId string) (int64, error) {
	zap.L().Debug("Getting mirrored points from Formance", zap.String("user_id", userId))

	resp, err := s.client.Ledger.V2.GetAccount(ctx, operations.V2GetAccountRequest{
		Ledger:  s.ledger,
		Address: memberAccount(userId),
		Expand:  v3.Pointer("volumes"),
	})
	if err != nil {
		if isNotFoundError(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get account %s: %w", memberAccount(userId), err)
	}

	bal := volumeBalance(resp.V2AccountResponse.Data.Volumes, pointsAsset)
	if bal == nil {
		return 0, nil
	}
	if !bal.IsInt64() {
		return 0, fmt.Errorf("mirrored balance for %s overflows int64", userId)
	}
	return bal.Int64(), nil
}

// volumeBalance extracts the balance for a specific asset from volumes.
func volumeBalance(vols map[string]shared.V2Volume, asset string) *big.Int {
	vol, ok := vols[asset]
	if !ok {
		return nil
	}
	if vol.Balance != nil {
		return vol.Balance
	}
	if vol.Input == nil {
		return nil
	}
	result := new(big.Int).Set(vol.Input)
	if vol.Output != nil {
		result.Sub(result, vol.Output)
	}
	return result
}
