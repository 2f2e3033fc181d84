package models

import (
	"time"
)

// DefaultMemberLabel is the author name used when a member has no nickname or display name.
const DefaultMemberLabel = "Member"

// User is a member profile together with its point standing
type User struct {
	Id            string    `db:"id" json:"id"`
	Email         string    `db:"email" json:"email,omitempty"`
	DisplayName   string    `db:"display_name" json:"displayName,omitempty"`
	Nickname      string    `db:"nickname" json:"nickname,omitempty"`
	PhotoURL      string    `db:"photo_url" json:"photoURL,omitempty"`
	Points        int64     `db:"points" json:"points"`
	Tier          Tier      `db:"tier" json:"tier"`
	IsAdmin       bool      `db:"is_admin" json:"isAdmin"`
	IsChallenger  bool      `db:"is_challenger" json:"isChallenger"`
	IsTestAccount bool      `db:"is_test_account" json:"isTestAccount"`
	Version       int64     `db:"version" json:"-"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}

// DisplayLabel returns the name shown next to the member's content.
func (u *User) DisplayLabel() string {
	if u.Nickname != "" {
		return u.Nickname
	}
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return DefaultMemberLabel
}

// Post is a community post. Likes and comments are stored inline.
type Post struct {
	Id             string    `db:"id" json:"id"`
	AuthorId       string    `db:"author_id" json:"authorId"`
	AuthorName     string    `db:"author_name" json:"authorName"`
	AuthorPhotoURL string    `db:"author_photo_url" json:"authorPhotoURL,omitempty"`
	AuthorTier     Tier      `db:"author_tier" json:"authorTier"`
	Title          string    `db:"title" json:"title"`
	Content        string    `db:"content" json:"content"`
	ImageURL       string    `db:"image_url" json:"imageURL,omitempty"`
	Category       Category  `db:"category" json:"category"`
	Likes          []string  `db:"likes" json:"likes"`
	Comments       []Comment `db:"comments" json:"comments"`
	Version        int64     `db:"version" json:"-"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

// HasLike reports whether userId is in the post's like set.
func (p *Post) HasLike(userId string) bool {
	for _, id := range p.Likes {
		if id == userId {
			return true
		}
	}
	return false
}

// FindComment returns the index of the comment with the given id, or -1.
func (p *Post) FindComment(commentId string) int {
	for i, c := range p.Comments {
		if c.Id == commentId {
			return i
		}
	}
	return -1
}

// Comment is embedded in its parent post. CreatedAt is epoch milliseconds.
type Comment struct {
	Id             string `json:"id"`
	AuthorId       string `json:"authorId"`
	AuthorName     string `json:"authorName"`
	AuthorPhotoURL string `json:"authorPhotoURL,omitempty"`
	AuthorTier     Tier   `json:"authorTier"`
	Content        string `json:"content"`
	CreatedAt      int64  `json:"createdAt"`
}

// PointEvent is the write-once idempotency receipt for one logical point change
type PointEvent struct {
	Key          string    `db:"event_key" json:"key"`
	TargetUserId string    `db:"target_user_id" json:"targetUserId"`
	Delta        int64     `db:"delta" json:"delta"`
	PointsBefore int64     `db:"points_before" json:"pointsBefore"`
	PointsAfter  int64     `db:"points_after" json:"pointsAfter"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// Applied returns the clamped change that actually reached the balance.
func (e PointEvent) Applied() int64 {
	return e.PointsAfter - e.PointsBefore
}

// OutboxEntry is a committed point event waiting for delivery to external sinks
type OutboxEntry struct {
	Seq   int64
	Event PointEvent
}
