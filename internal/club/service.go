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

// Package club implements the member operations that create content and move points.
package club

import (
	"context"
	"errors"
	"strings"
	"time"

	"club-points-ledger/internal/apperr"
	"club-points-ledger/internal/auth"
	"club-points-ledger/internal/ledger"
	"club-points-ledger/internal/models"
	"club-points-ledger/internal/store"
	"club-points-ledger/internal/tier"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ImageRemover deletes a stored image by its public URL
type ImageRemover interface {
	DeleteByURL(ctx context.Context, imageURL string) (bool, error)
}

type Service struct {
	db     store.TxRunner
	engine *ledger.Engine
	images ImageRemover
	newId  func() string
	now    func() time.Time
}

type Option func(*Service)

// WithImageRemover enables best-effort image cleanup after a post is deleted.
func WithImageRemover(images ImageRemover) Option {
	return func(s *Service) {
		s.images = images
	}
}

func NewService(db store.TxRunner, engine *ledger.Engine, opts ...Option) *Service {
	s := &Service{
		db:     db,
		engine: engine,
		newId:  uuid.NewString,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func requireCaller(ctx context.Context) (string, error) {
	uid, ok := auth.CallerFrom(ctx)
	if !ok {
		return "", apperr.New(apperr.Unauthenticated, "authentication required")
	}
	return uid, nil
}

func nonEmpty(value, field string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", apperr.Newf(apperr.InvalidArgument, "%s must not be empty", field)
	}
	return trimmed, nil
}

// loadCaller reads the caller's profile; a missing profile is not-found.
func loadCaller(ctx context.Context, tx store.Tx, uid string) (*models.User, error) {
	user, err := tx.GetUser(ctx, uid)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Wrap(apperr.NotFound, "user profile not found", err)
	}
	return user, err
}

func requireAdmin(ctx context.Context, tx store.Tx, uid string) error {
	actor, err := loadCaller(ctx, tx, uid)
	if err != nil {
		return err
	}
	if !actor.IsAdmin {
		return apperr.New(apperr.PermissionDenied, "admin role required")
	}
	return nil
}

func loadPost(ctx context.Context, tx store.Tx, postId string) (*models.Post, error) {
	post, err := tx.GetPost(ctx, postId)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Wrap(apperr.NotFound, "post not found", err)
	}
	return post, err
}

// applyDelta moves points and reports a missing target as not-found.
func (s *Service) applyDelta(ctx context.Context, tx store.Tx, targetUid string, delta int64, key string) (ledger.Standing, error) {
	standing, err := s.engine.ApplyDelta(ctx, tx, targetUid, delta, key)
	if errors.Is(err, store.ErrNotFound) {
		return standing, apperr.Wrap(apperr.NotFound, "point target not found", err)
	}
	return standing, err
}

// translate maps storage failures that escaped a transaction to caller codes.
func translate(op string, err error) error {
	var appErr *apperr.Error
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, store.ErrTxContention):
		zap.L().Warn("Transaction contention", zap.String("operation", op), zap.Error(err))
		return apperr.Wrap(apperr.Aborted, "too much contention, try again", err)
	case errors.Is(err, store.ErrNotFound):
		return apperr.Wrap(apperr.NotFound, "resource not found", err)
	default:
		zap.L().Error("Operation failed", zap.String("operation", op), zap.Error(err))
		return apperr.Wrap(apperr.Internal, "internal error", err)
	}
}

func (s *Service) CreatePost(ctx context.Context, req models.CreatePostRequest) (models.CreatePostResult, error) {
	uid, err := requireCaller(ctx)
	if err != nil {
		return models.CreatePostResult{}, err
	}
	rawCategory, err := nonEmpty(req.Category, "category")
	if err != nil {
		return models.CreatePostResult{}, err
	}
	title, err := nonEmpty(req.Title, "title")
	if err != nil {
		return models.CreatePostResult{}, err
	}
	content, err := nonEmpty(req.Content, "content")
	if err != nil {
		return models.CreatePostResult{}, err
	}
	category, err := models.ParseCategory(rawCategory)
	if err != nil {
		return models.CreatePostResult{}, apperr.Wrap(apperr.InvalidArgument, "unsupported category", err)
	}

	postId := s.newId()
	now := s.now().UTC()
	result, err := store.InTx(ctx, s.db, func(ctx context.Context, tx store.Tx) (models.CreatePostResult, error) {
		author, err := loadCaller(ctx, tx, uid)
		if err != nil {
			return models.CreatePostResult{}, err
		}
		post := &models.Post{
			Id:             postId,
			AuthorId:       uid,
			AuthorName:     author.DisplayLabel(),
			AuthorPhotoURL: author.PhotoURL,
			AuthorTier:     author.Tier,
			Title:          title,
			Content:        content,
			ImageURL:       strings.TrimSpace(req.ImageURL),
			Category:       category,
			Likes:          []string{},
			Comments:       []models.Comment{},
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := tx.InsertPost(ctx, post); err != nil {
			return models.CreatePostResult{}, err
		}
		if _, err := s.applyDelta(ctx, tx, uid, category.Award(), ledger.PostCreateKey(postId)); err != nil {
			return models.CreatePostResult{}, err
		}
		return models.CreatePostResult{PostId: postId}, nil
	})
	if err != nil {
		return models.CreatePostResult{}, translate("createPost", err)
	}

	zap.L().Info("Post created",
		zap.String("post_id", postId),
		zap.String("user_id", uid),
		zap.String("category", string(category)))
	return result, nil
}

func (s *Service) TogglePostLike(ctx context.Context, req models.PostRequest) (models.ToggleLikeResult, error) {
	uid, err := requireCaller(ctx)
	if err != nil {
		return models.ToggleLikeResult{}, err
	}
	postId, err := nonEmpty(req.PostId, "postId")
	if err != nil {
		return models.ToggleLikeResult{}, err
	}

	result, err := store.InTx(ctx, s.db, func(ctx context.Context, tx store.Tx) (models.ToggleLikeResult, error) {
		post, err := loadPost(ctx, tx, postId)
		if err != nil {
			return models.ToggleLikeResult{}, err
		}
		if post.AuthorId == "" {
			return models.ToggleLikeResult{}, apperr.New(apperr.FailedPrecondition, "post has no author")
		}
		if post.AuthorId == uid {
			return models.ToggleLikeResult{}, apperr.New(apperr.FailedPrecondition, "cannot like your own post")
		}

		liked := !post.HasLike(uid)
		if liked {
			post.Likes = append(post.Likes, uid)
		} else {
			likes := make([]string, 0, len(post.Likes))
			for _, id := range post.Likes {
				if id != uid {
					likes = append(likes, id)
				}
			}
			post.Likes = likes
		}
		post.UpdatedAt = s.now().UTC()
		if err := tx.SavePost(ctx, post); err != nil {
			return models.ToggleLikeResult{}, err
		}

		delta := models.PointsLikeReceived
		if !liked {
			delta = -delta
		}
		if _, err := s.applyDelta(ctx, tx, post.AuthorId, delta, ledger.LikeKey(postId, uid, liked)); err != nil {
			return models.ToggleLikeResult{}, err
		}
		return models.ToggleLikeResult{Liked: liked, LikesCount: len(post.Likes)}, nil
	})
	if err != nil {
		return models.ToggleLikeResult{}, translate("togglePostLike", err)
	}
	return result, nil
}

func (s *Service) AddPostComment(ctx context.Context, req models.AddCommentRequest) (models.AddCommentResult, error) {
	uid, err := requireCaller(ctx)
	if err != nil {
		return models.AddCommentResult{}, err
	}
	postId, err := nonEmpty(req.PostId, "postId")
	if err != nil {
		return models.AddCommentResult{}, err
	}
	content, err := nonEmpty(req.Content, "content")
	if err != nil {
		return models.AddCommentResult{}, err
	}

	commentId := s.newId()
	createdAt := s.now().UTC()
	result, err := store.InTx(ctx, s.db, func(ctx context.Context, tx store.Tx) (models.AddCommentResult, error) {
		author, err := loadCaller(ctx, tx, uid)
		if err != nil {
			return models.AddCommentResult{}, err
		}
		post, err := loadPost(ctx, tx, postId)
		if err != nil {
			return models.AddCommentResult{}, err
		}

		comment := models.Comment{
			Id:             commentId,
			AuthorId:       uid,
			AuthorName:     author.DisplayLabel(),
			AuthorPhotoURL: author.PhotoURL,
			AuthorTier:     author.Tier,
			Content:        content,
			CreatedAt:      createdAt.UnixMilli(),
		}
		post.Comments = append(post.Comments, comment)
		post.UpdatedAt = createdAt
		if err := tx.SavePost(ctx, post); err != nil {
			return models.AddCommentResult{}, err
		}
		if _, err := s.applyDelta(ctx, tx, uid, models.PointsComment, ledger.CommentCreateKey(postId, commentId)); err != nil {
			return models.AddCommentResult{}, err
		}
		return models.AddCommentResult{Comment: comment}, nil
	})
	if err != nil {
		return models.AddCommentResult{}, translate("addPostComment", err)
	}
	return result, nil
}

func (s *Service) DeletePostComment(ctx context.Context, req models.DeleteCommentRequest) (models.SuccessResult, error) {
	uid, err := requireCaller(ctx)
	if err != nil {
		return models.SuccessResult{}, err
	}
	postId, err := nonEmpty(req.PostId, "postId")
	if err != nil {
		return models.SuccessResult{}, err
	}
	commentId, err := nonEmpty(req.CommentId, "commentId")
	if err != nil {
		return models.SuccessResult{}, err
	}

	_, err = store.InTx(ctx, s.db, func(ctx context.Context, tx store.Tx) (models.SuccessResult, error) {
		actor, err := loadCaller(ctx, tx, uid)
		if err != nil {
			return models.SuccessResult{}, err
		}
		post, err := loadPost(ctx, tx, postId)
		if err != nil {
			return models.SuccessResult{}, err
		}
		idx := post.FindComment(commentId)
		if idx < 0 {
			return models.SuccessResult{}, apperr.New(apperr.NotFound, "comment not found")
		}

		target := post.Comments[idx]
		canDelete := actor.IsAdmin || post.AuthorId == uid || (target.AuthorId != "" && target.AuthorId == uid)
		if !canDelete {
			return models.SuccessResult{}, apperr.New(apperr.PermissionDenied, "not allowed to delete this comment")
		}

		post.Comments = append(post.Comments[:idx:idx], post.Comments[idx+1:]...)
		post.UpdatedAt = s.now().UTC()
		if err := tx.SavePost(ctx, post); err != nil {
			return models.SuccessResult{}, err
		}
		if target.AuthorId != "" {
			if _, err := s.applyDelta(ctx, tx, target.AuthorId, -models.PointsComment, ledger.CommentDeleteKey(postId, commentId)); err != nil {
				return models.SuccessResult{}, err
			}
		}
		return models.SuccessResult{Success: true}, nil
	})
	if err != nil {
		return models.SuccessResult{}, translate("deletePostComment", err)
	}
	return models.SuccessResult{Success: true}, nil
}

func (s *Service) DeletePost(ctx context.Context, req models.PostRequest) (models.SuccessResult, error) {
	uid, err := requireCaller(ctx)
	if err != nil {
		return models.SuccessResult{}, err
	}
	postId, err := nonEmpty(req.PostId, "postId")
	if err != nil {
		return models.SuccessResult{}, err
	}

	imageURL, err := store.InTx(ctx, s.db, func(ctx context.Context, tx store.Tx) (string, error) {
		actor, err := loadCaller(ctx, tx, uid)
		if err != nil {
			return "", err
		}
		post, err := loadPost(ctx, tx, postId)
		if err != nil {
			return "", err
		}
		if !actor.IsAdmin && post.AuthorId != uid {
			return "", apperr.New(apperr.PermissionDenied, "not allowed to delete this post")
		}

		if err := tx.DeletePost(ctx, post); err != nil {
			return "", err
		}
		if post.AuthorId != "" {
			if _, err := s.applyDelta(ctx, tx, post.AuthorId, -post.Category.Award(), ledger.PostDeleteKey(postId)); err != nil {
				return "", err
			}
		}
		return post.ImageURL, nil
	})
	if err != nil {
		return models.SuccessResult{}, translate("deletePost", err)
	}

	s.removeImage(ctx, postId, imageURL)
	return models.SuccessResult{Success: true}, nil
}

// removeImage runs after the delete committed; failures are logged only.
func (s *Service) removeImage(ctx context.Context, postId, imageURL string) {
	if s.images == nil || imageURL == "" {
		return
	}
	attempted, err := s.images.DeleteByURL(ctx, imageURL)
	if err != nil {
		zap.L().Warn("Failed to delete post image",
			zap.String("post_id", postId),
			zap.String("image_url", imageURL),
			zap.Error(err))
		return
	}
	if attempted {
		zap.L().Info("Deleted post image", zap.String("post_id", postId))
	}
}

func (s *Service) AdminAdjustPoints(ctx context.Context, req models.AdjustPointsRequest) (models.AdjustPointsResult, error) {
	uid, err := requireCaller(ctx)
	if err != nil {
		return models.AdjustPointsResult{}, err
	}
	targetUid, err := nonEmpty(req.TargetUid, "targetUid")
	if err != nil {
		return models.AdjustPointsResult{}, err
	}
	requestId, err := nonEmpty(req.RequestId, "requestId")
	if err != nil {
		return models.AdjustPointsResult{}, err
	}

	result, err := store.InTx(ctx, s.db, func(ctx context.Context, tx store.Tx) (models.AdjustPointsResult, error) {
		if err := requireAdmin(ctx, tx, uid); err != nil {
			return models.AdjustPointsResult{}, err
		}
		if _, err := s.applyDelta(ctx, tx, targetUid, req.Delta, ledger.AdminAdjustKey(targetUid, requestId)); err != nil {
			return models.AdjustPointsResult{}, err
		}
		target, err := tx.GetUser(ctx, targetUid)
		if errors.Is(err, store.ErrNotFound) {
			return models.AdjustPointsResult{}, apperr.Wrap(apperr.NotFound, "point target not found", err)
		}
		if err != nil {
			return models.AdjustPointsResult{}, err
		}
		return models.AdjustPointsResult{Points: target.Points, Tier: target.Tier}, nil
	})
	if err != nil {
		return models.AdjustPointsResult{}, translate("adminAdjustPoints", err)
	}

	zap.L().Info("Admin adjusted points",
		zap.String("actor_id", uid),
		zap.String("user_id", targetUid),
		zap.String("request_id", requestId),
		zap.Int64("delta", req.Delta),
		zap.Int64("points", result.Points))
	return result, nil
}

func (s *Service) AdminSetRole(ctx context.Context, req models.SetRoleRequest) (models.SuccessResult, error) {
	uid, err := requireCaller(ctx)
	if err != nil {
		return models.SuccessResult{}, err
	}
	targetUid, err := nonEmpty(req.TargetUid, "targetUid")
	if err != nil {
		return models.SuccessResult{}, err
	}
	if req.IsAdmin == nil && req.IsChallenger == nil && req.IsTestAccount == nil {
		return models.SuccessResult{}, apperr.New(apperr.InvalidArgument, "no role fields to update")
	}

	_, err = store.InTx(ctx, s.db, func(ctx context.Context, tx store.Tx) (models.SuccessResult, error) {
		if err := requireAdmin(ctx, tx, uid); err != nil {
			return models.SuccessResult{}, err
		}
		target, err := tx.GetUser(ctx, targetUid)
		if errors.Is(err, store.ErrNotFound) {
			return models.SuccessResult{}, apperr.Wrap(apperr.NotFound, "target user not found", err)
		}
		if err != nil {
			return models.SuccessResult{}, err
		}

		if req.IsAdmin != nil {
			target.IsAdmin = *req.IsAdmin
		}
		if req.IsChallenger != nil {
			target.IsChallenger = *req.IsChallenger
		}
		if req.IsTestAccount != nil {
			target.IsTestAccount = *req.IsTestAccount
		}
		target.Tier = tier.Classify(target.Points, target.IsChallenger)

		if err := tx.SaveUser(ctx, target); err != nil {
			return models.SuccessResult{}, err
		}
		return models.SuccessResult{Success: true}, nil
	})
	if err != nil {
		return models.SuccessResult{}, translate("adminSetRole", err)
	}

	zap.L().Info("Admin updated roles",
		zap.String("actor_id", uid),
		zap.String("user_id", targetUid))
	return models.SuccessResult{Success: true}, nil
}
