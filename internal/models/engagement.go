package models

import "time"

// Like represents a user's like on a post. At most one row may exist per
// (user, post) pair; the row itself is the source of truth for "is liked"
// and posts.likes_count is a derived cache of count(*) over these rows.
// Likes are always hard-deleted so the count stays honest.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_like_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_like_user_post;index" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Save represents a user's bookmark of a post. Same uniqueness and
// hard-delete discipline as Like; saves carry no denormalized counter.
type Save struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_save_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_save_user_post;index" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}
