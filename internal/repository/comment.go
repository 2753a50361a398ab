package repository

import (
	"context"
	"errors"

	"verseflow/internal/cache"
	"verseflow/internal/models"

	"gorm.io/gorm"
)

// CommentRepository persists comments and keeps the comments_count column on
// posts in step with comment writes.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	Delete(ctx context.Context, id uint) error
	ListByPost(ctx context.Context, postID uint) ([]models.Comment, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create inserts the comment and increments the post's comments_count in the
// same transaction.
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).
			Where("id = ?", comment.PostID).
			UpdateColumn("comments_count", gorm.Expr("comments_count + 1")).Error
	})
	if err != nil {
		if isSerializationError(err) {
			return models.NewRetryableError(err)
		}
		return models.WrapStorageError(err)
	}

	cache.InvalidatePost(ctx, comment.PostID)
	cache.InvalidateCommentTree(ctx, comment.PostID)
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		return nil, models.WrapStorageError(err)
	}
	return &comment, nil
}

// Delete soft-deletes the comment and decrements comments_count in the same
// transaction. Replies are left in place; the tree builder surfaces them as
// roots once the parent disappears.
func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	var postID uint

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		if err := tx.First(&comment, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Comment", id)
			}
			return err
		}
		postID = comment.PostID

		if err := tx.Delete(&comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).
			Where("id = ? AND comments_count > 0", postID).
			UpdateColumn("comments_count", gorm.Expr("comments_count - 1")).Error
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return err
		}
		if isSerializationError(err) {
			return models.NewRetryableError(err)
		}
		return models.WrapStorageError(err)
	}

	cache.InvalidatePost(ctx, postID)
	cache.InvalidateCommentTree(ctx, postID)
	return nil
}

// ListByPost returns every live comment on the post in one query, oldest
// first with ID as the tiebreaker so tree assembly is deterministic. The list
// is cached under the comment-tree key; every comment write invalidates it.
func (r *commentRepository) ListByPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	key := cache.CommentTreeKey(postID)

	err := cache.Aside(ctx, key, &comments, cache.CommentTreeTTL, func() error {
		return r.db.WithContext(ctx).
			Preload("User").
			Where("post_id = ?", postID).
			Order("created_at ASC, id ASC").
			Find(&comments).Error
	})
	if err != nil {
		return nil, models.WrapStorageError(err)
	}
	return comments, nil
}
