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

// Every query uses $n placeholders numbered in order of first appearance so
// the same text runs on both SQLite and PostgreSQL.
const (
	userColumns = `id, email, display_name, nickname, photo_url, points, tier,
		is_admin, is_challenger, is_test_account, version, created_at, updated_at`

	// User queries
	queryGetUsers = `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY created_at, id`

	queryGetUserById = `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1`

	queryInsertUser = `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO NOTHING`

	queryUpdateUser = `
		UPDATE users
		SET points = $1, tier = $2, is_admin = $3, is_challenger = $4, is_test_account = $5,
		    version = version + 1, updated_at = $6
		WHERE id = $7 AND version = $8`

	queryGetRanking = `
		SELECT ` + userColumns + `
		FROM users
		WHERE is_test_account = $1
		ORDER BY points DESC, created_at ASC, id ASC
		LIMIT $2`

	postColumns = `id, author_id, author_name, author_photo_url, author_tier, title, content,
		image_url, category, likes, comments, version, created_at, updated_at`

	// Post queries
	queryGetPostById = `
		SELECT ` + postColumns + `
		FROM posts
		WHERE id = $1`

	queryInsertPost = `
		INSERT INTO posts (` + postColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	queryUpdatePostEngagement = `
		UPDATE posts
		SET likes = $1, comments = $2, version = version + 1, updated_at = $3
		WHERE id = $4 AND version = $5`

	queryDeletePost = `
		DELETE FROM posts
		WHERE id = $1 AND version = $2`

	// Point event queries
	queryHasPointEvent = `
		SELECT 1 FROM point_events WHERE event_key = $1`

	queryInsertPointEvent = `
		INSERT INTO point_events (event_key, target_user_id, delta, points_before, points_after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	queryGetPointHistory = `
		SELECT event_key, target_user_id, delta, points_before, points_after, created_at
		FROM point_events
		WHERE target_user_id = $1
		ORDER BY created_at DESC, event_key DESC
		LIMIT $2 OFFSET $3`

	// Outbox queries
	queryEnqueueOutbox = `
		INSERT INTO point_event_outbox (event_key, created_at)
		VALUES ($1, $2)
		ON CONFLICT (event_key) DO NOTHING`

	queryFetchOutbox = `
		SELECT o.seq, e.event_key, e.target_user_id, e.delta, e.points_before, e.points_after, e.created_at
		FROM point_event_outbox o
		JOIN point_events e ON e.event_key = o.event_key
		ORDER BY o.seq
		LIMIT $1`

	queryAckOutbox = `
		DELETE FROM point_event_outbox WHERE seq = $1`
)
