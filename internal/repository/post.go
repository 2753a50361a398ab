package repository

import (
	"context"
	"errors"

	"verseflow/internal/cache"
	"verseflow/internal/models"
	"verseflow/internal/observability"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	ListOrdered(ctx context.Context, orderExpr string, limit, offset int) ([]*models.Post, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error)
	ListSavedByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error)
	GetLikedPostIDs(ctx context.Context, userID uint, postIDs []uint) ([]uint, error)
	GetSavedPostIDs(ctx context.Context, userID uint, postIDs []uint) ([]uint, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
	Delete(ctx context.Context, id uint) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.WrapStorageError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	key := cache.PostKey(id)

	err := cache.Aside(ctx, key, &post, cache.PostTTL, func() error {
		return r.db.WithContext(ctx).
			Preload("User").
			First(&post, id).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.WrapStorageError(err)
	}
	return &post, nil
}

// ListOrdered returns posts ordered by the given SQL expression. The
// expression comes from a ranking strategy, never from request input.
func (r *postRepository) ListOrdered(ctx context.Context, orderExpr string, limit, offset int) ([]*models.Post, error) {
	defer observability.TrackQuery("list_ordered", "posts")()

	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Preload("User").
		Order(orderExpr).
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.WrapStorageError(err)
	}
	return posts, nil
}

func (r *postRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.WrapStorageError(err)
	}
	return posts, nil
}

// ListSavedByUser returns the viewer's saved posts, most recently saved first.
func (r *postRepository) ListSavedByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Preload("User").
		Joins("JOIN saves ON saves.post_id = posts.id").
		Where("saves.user_id = ?", userID).
		Order("saves.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.WrapStorageError(err)
	}
	return posts, nil
}

// GetLikedPostIDs returns the subset of postIDs the user has liked. One set
// membership query per page, regardless of page size.
func (r *postRepository) GetLikedPostIDs(ctx context.Context, userID uint, postIDs []uint) ([]uint, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}
	var likedPostIDs []uint
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &likedPostIDs).Error
	if err != nil {
		return nil, models.WrapStorageError(err)
	}
	return likedPostIDs, nil
}

// GetSavedPostIDs returns the subset of postIDs the user has saved.
func (r *postRepository) GetSavedPostIDs(ctx context.Context, userID uint, postIDs []uint) ([]uint, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}
	var savedPostIDs []uint
	err := r.db.WithContext(ctx).
		Model(&models.Save{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &savedPostIDs).Error
	if err != nil {
		return nil, models.WrapStorageError(err)
	}
	return savedPostIDs, nil
}

func (r *postRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, models.WrapStorageError(err)
	}
	return count, nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Post{}, id).Error; err != nil {
		return models.WrapStorageError(err)
	}
	cache.InvalidatePost(ctx, id)
	cache.InvalidateCommentTree(ctx, id)
	return nil
}
