// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// PostKind is the literary form of a post.
type PostKind = string

const (
	PostKindPoetry PostKind = "poetry"
	PostKindProse  PostKind = "prose"
	PostKindQuote  PostKind = "quote"
)

// Limits for user-supplied post fields.
const (
	MaxPostContentLen = 5000
	MaxAttributionLen = 300
)

// Post represents a short literary post in the Verseflow feed.
//
// UserID is nullable: imported classics carry only a free-text Attribution
// and no platform owner. LikesCount and CommentsCount are denormalized
// counters maintained exclusively by the engagement and comment
// repositories inside the same transaction as the row mutations they
// mirror; they are never accepted from a client.
type Post struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID *uint  `gorm:"index" json:"user_id,omitempty"`
	User   *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Content     string   `gorm:"type:text;not null" json:"content"`
	Attribution string   `json:"attribution,omitempty"`
	Kind        PostKind `gorm:"type:varchar(20);not null;index" json:"kind"`

	LikesCount    int `gorm:"not null;default:0" json:"likes_count"`
	CommentsCount int `gorm:"not null;default:0" json:"comments_count"`

	// Liked and Saved reflect the requesting viewer's state; they are
	// filled in from batch membership queries, not persisted.
	Liked bool `gorm:"-" json:"liked"`
	Saved bool `gorm:"-" json:"saved"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// FeedPage is one page of the randomized feed.
type FeedPage struct {
	Posts      []*Post `json:"posts"`
	NextCursor *int    `json:"next_cursor,omitempty"`
	HasMore    bool    `json:"has_more"`
}
