package models

import (
	"time"

	"gorm.io/gorm"
)

// MaxCommentLen is the maximum comment length in bytes.
const MaxCommentLen = 1000

// Comment represents a comment on a post. ParentID is nil for top-level
// comments; when set it must reference a comment on the same post.
type Comment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	PostID    uint           `gorm:"not null;index" json:"post_id"`
	UserID    uint           `gorm:"not null" json:"user_id"`
	ParentID  *uint          `gorm:"index" json:"parent_id,omitempty"`
	Content   string         `gorm:"not null" json:"content"`
	User      User           `gorm:"foreignKey:UserID" json:"user"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// CommentNode is a comment embedded in its reconstructed thread position.
// Replies are ordered by creation time ascending, as are root nodes.
type CommentNode struct {
	Comment
	Replies []*CommentNode `json:"replies"`
}
