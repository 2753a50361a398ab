// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a member of the Verseflow platform.
// AuthID is the opaque identifier issued by the external auth provider;
// a row is created on the first successful profile-completion call.
type User struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	AuthID      string         `gorm:"uniqueIndex;not null" json:"-"`
	Handle      string         `gorm:"uniqueIndex;not null" json:"handle"`
	DisplayName string         `json:"display_name"`
	Bio         string         `json:"bio"`
	Avatar      string         `json:"avatar"`
	IsAdmin     bool           `json:"-"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Posts       []Post         `gorm:"foreignKey:UserID" json:"posts,omitempty"`
}

// Profile is the aggregate returned for a profile view. Counts are always
// computed fresh from the follows/posts tables, never denormalized.
type Profile struct {
	User           User `json:"user"`
	FollowerCount  int64 `json:"follower_count"`
	FollowingCount int64 `json:"following_count"`
	PostCount      int64 `json:"post_count"`
	IsFollowing    bool  `json:"is_following"`
}
