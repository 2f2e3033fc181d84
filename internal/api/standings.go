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

package api

import (
	"context"
	"errors"

	"club-points-ledger/internal/apperr"
	"club-points-ledger/internal/models"
	"club-points-ledger/internal/store"
	"club-points-ledger/internal/tier"

	"go.uber.org/zap"
)

const (
	DefaultRankingLimit = 50
	MaxRankingLimit     = 100
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// GetStanding returns a member's points, tier and progress toward the next tier
func (s *LedgerService) GetStanding(ctx context.Context, userId string) (models.Standing, error) {
	if userId == "" {
		return models.Standing{}, apperr.New(apperr.InvalidArgument, "user_id is required")
	}

	user, err := s.db.GetUserById(ctx, userId)
	if errors.Is(err, store.ErrNotFound) {
		return models.Standing{}, apperr.New(apperr.NotFound, "user not found")
	}
	if err != nil {
		zap.L().Error("Failed to get user standing", zap.String("user_id", userId), zap.Error(err))
		return models.Standing{}, apperr.Wrap(apperr.Internal, "failed to retrieve standing", err)
	}

	standing := models.Standing{
		UserId:          user.Id,
		Name:            user.DisplayLabel(),
		Points:          user.Points,
		Tier:            user.Tier,
		ProgressPercent: tier.Progress(user.Tier, user.Points),
	}
	if next, needed, ok := tier.Next(user.Tier, user.Points); ok {
		standing.NextTier = next
		standing.PointsToNext = needed
	}
	return standing, nil
}

// GetRanking returns the top members by points, excluding test accounts
func (s *LedgerService) GetRanking(ctx context.Context, limit int) ([]models.RankEntry, error) {
	if limit <= 0 {
		limit = DefaultRankingLimit
	}
	if limit > MaxRankingLimit {
		limit = MaxRankingLimit
	}

	users, err := s.db.GetRanking(ctx, limit)
	if err != nil {
		zap.L().Error("Failed to get ranking", zap.Int("limit", limit), zap.Error(err))
		return nil, apperr.Wrap(apperr.Internal, "failed to retrieve ranking", err)
	}

	result := make([]models.RankEntry, len(users))
	for i, user := range users {
		result[i] = models.RankEntry{
			Rank:   i + 1,
			UserId: user.Id,
			Name:   user.DisplayLabel(),
			Points: user.Points,
			Tier:   user.Tier,
		}
	}
	return result, nil
}

// GetPointHistory returns paginated point events for a member, newest first
func (s *LedgerService) GetPointHistory(ctx context.Context, userId string, limit, offset int) ([]models.PointEventRecord, error) {
	if userId == "" {
		return nil, apperr.New(apperr.InvalidArgument, "user_id is required")
	}

	if limit <= 0 || limit > MaxHistoryLimit {
		limit = DefaultHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}

	events, err := s.db.GetPointHistory(ctx, userId, limit, offset)
	if err != nil {
		zap.L().Error("Failed to get point history",
			zap.String("user_id", userId),
			zap.Error(err))
		return nil, apperr.Wrap(apperr.Internal, "failed to retrieve point history", err)
	}

	result := make([]models.PointEventRecord, len(events))
	for i, event := range events {
		result[i] = models.PointEventRecord{
			Key:       event.Key,
			Delta:     event.Delta,
			Applied:   event.Applied(),
			Points:    event.PointsAfter,
			CreatedAt: event.CreatedAt,
		}
	}
	return result, nil
}
