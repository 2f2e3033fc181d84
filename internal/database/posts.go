package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"club-points-ledger/internal/models"
	"club-points-ledger/internal/store"
)

func scanPost(row rowScanner) (*models.Post, error) {
	var post models.Post
	var authorTier, category, likes, comments string
	var createdAt, updatedAt int64
	err := row.Scan(&post.Id, &post.AuthorId, &post.AuthorName, &post.AuthorPhotoURL, &authorTier,
		&post.Title, &post.Content, &post.ImageURL, &category, &likes, &comments,
		&post.Version, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	post.AuthorTier = models.Tier(authorTier)
	post.Category = models.Category(category)
	post.CreatedAt = fromMillis(createdAt)
	post.UpdatedAt = fromMillis(updatedAt)

	if err := json.Unmarshal([]byte(likes), &post.Likes); err != nil {
		return nil, fmt.Errorf("failed to decode likes of post %s: %w", post.Id, err)
	}
	if err := json.Unmarshal([]byte(comments), &post.Comments); err != nil {
		return nil, fmt.Errorf("failed to decode comments of post %s: %w", post.Id, err)
	}
	if post.Likes == nil {
		post.Likes = []string{}
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	return &post, nil
}

// encodeEngagement serializes the inline like and comment lists. Nil slices
// are stored as empty arrays.
func encodeEngagement(post *models.Post) (string, string, error) {
	likes := post.Likes
	if likes == nil {
		likes = []string{}
	}
	comments := post.Comments
	if comments == nil {
		comments = []models.Comment{}
	}
	likesJSON, err := json.Marshal(likes)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode likes: %w", err)
	}
	commentsJSON, err := json.Marshal(comments)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode comments: %w", err)
	}
	return string(likesJSON), string(commentsJSON), nil
}

func getPost(ctx context.Context, q queryer, postId string) (*models.Post, error) {
	post, err := scanPost(q.QueryRowContext(ctx, queryGetPostById, postId))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("post %s: %w", postId, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

func (s *Service) GetPostById(ctx context.Context, postId string) (*models.Post, error) {
	return getPost(ctx, s.db, postId)
}
