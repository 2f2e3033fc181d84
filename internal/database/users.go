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

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"club-points-ledger/internal/models"
	"club-points-ledger/internal/store"
	"club-points-ledger/internal/tier"

	"go.uber.org/zap"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	var tierName string
	var createdAt, updatedAt int64
	err := row.Scan(&user.Id, &user.Email, &user.DisplayName, &user.Nickname, &user.PhotoURL,
		&user.Points, &tierName, &user.IsAdmin, &user.IsChallenger, &user.IsTestAccount,
		&user.Version, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	user.Tier = models.Tier(tierName)
	if !user.Tier.Valid() {
		zap.L().Warn("Unknown stored tier, deriving from points",
			zap.String("user_id", user.Id),
			zap.String("tier", tierName))
		user.Tier = tier.Classify(user.Points, user.IsChallenger)
	}
	user.CreatedAt = fromMillis(createdAt)
	user.UpdatedAt = fromMillis(updatedAt)
	return &user, nil
}

func getUser(ctx context.Context, q queryer, userId string) (*models.User, error) {
	user, err := scanUser(q.QueryRowContext(ctx, queryGetUserById, userId))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %s: %w", userId, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func queryUsers(ctx context.Context, q queryer, query string, args ...any) ([]models.User, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func (s *Service) GetUsers(ctx context.Context) ([]models.User, error) {
	users, err := queryUsers(ctx, s.db, queryGetUsers)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	return users, nil
}

func (s *Service) GetUserById(ctx context.Context, userId string) (*models.User, error) {
	return getUser(ctx, s.db, userId)
}

// CreateUser provisions a member profile. Points are clamped to zero and the
// tier is derived, so seeded profiles start consistent.
func (s *Service) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	if user.Id == "" {
		return nil, fmt.Errorf("user id cannot be empty")
	}
	if user.Points < 0 {
		user.Points = 0
	}
	user.Tier = tier.Classify(user.Points, user.IsChallenger)
	user.Version = 1
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	result, err := s.db.ExecContext(ctx, queryInsertUser,
		user.Id, user.Email, user.DisplayName, user.Nickname, user.PhotoURL,
		user.Points, string(user.Tier), user.IsAdmin, user.IsChallenger, user.IsTestAccount,
		user.Version, toMillis(user.CreatedAt), toMillis(user.UpdatedAt))
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("user %s: %w", user.Id, store.ErrDuplicateUser)
	}

	zap.L().Info("User created",
		zap.String("user_id", user.Id),
		zap.Int64("points", user.Points),
		zap.String("tier", string(user.Tier)))
	return &user, nil
}

// GetRanking returns non-test members ordered by points, highest first.
func (s *Service) GetRanking(ctx context.Context, limit int) ([]models.User, error) {
	users, err := queryUsers(ctx, s.db, queryGetRanking, false, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get ranking: %w", err)
	}
	return users, nil
}
