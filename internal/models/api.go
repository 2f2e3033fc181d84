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

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreatePostRequest is the input of createPost
type CreatePostRequest struct {
	Category string `json:"category"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	ImageURL string `json:"imageURL,omitempty"`
}

type CreatePostResult struct {
	PostId string `json:"postId"`
}

// PostRequest identifies a post; used by togglePostLike and deletePost
type PostRequest struct {
	PostId string `json:"postId"`
}

type ToggleLikeResult struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likesCount"`
}

type AddCommentRequest struct {
	PostId  string `json:"postId"`
	Content string `json:"content"`
}

type AddCommentResult struct {
	Comment Comment `json:"comment"`
}

type DeleteCommentRequest struct {
	PostId    string `json:"postId"`
	CommentId string `json:"commentId"`
}

// AdjustPointsRequest is the input of adminAdjustPoints
type AdjustPointsRequest struct {
	TargetUid string `json:"targetUid"`
	Delta     int64  `json:"delta"`
	RequestId string `json:"requestId"`
}

type AdjustPointsResult struct {
	Points int64 `json:"points"`
	Tier   Tier  `json:"tier"`
}

// SetRoleRequest is the input of adminSetRole. Nil flags are left unchanged.
type SetRoleRequest struct {
	TargetUid     string `json:"targetUid"`
	IsAdmin       *bool  `json:"isAdmin,omitempty"`
	IsChallenger  *bool  `json:"isChallenger,omitempty"`
	IsTestAccount *bool  `json:"isTestAccount,omitempty"`
}

// SuccessResult is returned by operations with no other output
type SuccessResult struct {
	Success bool `json:"success"`
}

// Standing is a member's current rank and progress
type Standing struct {
	UserId          string          `json:"userId"`
	Name            string          `json:"name"`
	Points          int64           `json:"points"`
	Tier            Tier            `json:"tier"`
	NextTier        Tier            `json:"nextTier,omitempty"`
	PointsToNext    int64           `json:"pointsToNext"`
	ProgressPercent decimal.Decimal `json:"progressPercent"`
}

// RankEntry is one row of the ranking board
type RankEntry struct {
	Rank   int    `json:"rank"`
	UserId string `json:"userId"`
	Name   string `json:"name"`
	Points int64  `json:"points"`
	Tier   Tier   `json:"tier"`
}

// PointEventRecord represents a point event in a member's history
type PointEventRecord struct {
	Key       string    `json:"key"`
	Delta     int64     `json:"delta"`
	Applied   int64     `json:"applied"`
	Points    int64     `json:"points"`
	CreatedAt time.Time `json:"createdAt"`
}
