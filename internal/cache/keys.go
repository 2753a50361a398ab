package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	PostKeyPrefix        = "post:%d"
	CommentTreeKeyPrefix = "post:%d:comments"
)

// Comment trees invalidate on every write, so the TTL is a backstop, not the
// consistency mechanism. Profiles are never cached: their counts are computed
// fresh on every read.
const (
	PostTTL        = 30 * time.Minute
	CommentTreeTTL = 5 * time.Minute
)

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func CommentTreeKey(postID uint) string {
	return fmt.Sprintf(CommentTreeKeyPrefix, postID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
}

func InvalidateCommentTree(ctx context.Context, postID uint) {
	Invalidate(ctx, CommentTreeKey(postID))
}
