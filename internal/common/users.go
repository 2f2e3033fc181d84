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

package common

import (
	"context"
	"errors"
	"fmt"

	"club-points-ledger/internal/models"
	"club-points-ledger/internal/store"

	"go.uber.org/zap"
)

// SeedResult counts what SeedMembers did
type SeedResult struct {
	Created int
	Skipped int
}

// SeedMembers creates each member that does not exist yet. Existing members
// are left untouched so the seed can be re-run safely.
func SeedMembers(ctx context.Context, dbService store.LedgerStore, members []models.User, logger *zap.Logger) (SeedResult, error) {
	var result SeedResult
	for _, member := range members {
		user, err := dbService.CreateUser(ctx, member)
		if errors.Is(err, store.ErrDuplicateUser) {
			logger.Info("Member already exists, skipping", zap.String("user_id", member.Id))
			result.Skipped++
			continue
		}
		if err != nil {
			return result, fmt.Errorf("failed to create member %s: %w", member.Id, err)
		}
		logger.Info("Created member",
			zap.String("user_id", user.Id),
			zap.Int64("points", user.Points),
			zap.String("tier", string(user.Tier)))
		result.Created++
	}
	return result, nil
}
