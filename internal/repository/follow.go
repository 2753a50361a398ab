package repository

import (
	"context"
	"errors"

	"verseflow/internal/models"

	"gorm.io/gorm"
)

// FollowRepository persists follow edges and answers count queries for
// profiles. Counts are computed fresh; there is no denormalized follower
// counter.
type FollowRepository interface {
	Toggle(ctx context.Context, followerID, followingID uint) (bool, error)
	IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error)
	FollowerCount(ctx context.Context, userID uint) (int64, error)
	FollowingCount(ctx context.Context, userID uint) (int64, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new follow repository.
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

// Toggle flips the follow edge and returns whether the viewer now follows the
// target. Concurrent duplicate inserts resolve to the already-following state.
func (r *followRepository) Toggle(ctx context.Context, followerID, followingID uint) (bool, error) {
	var following bool

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var member int64
		if err := tx.Model(&models.Follow{}).
			Where("follower_id = ? AND following_id = ?", followerID, followingID).
			Count(&member).Error; err != nil {
			return err
		}

		if member == 0 {
			// A duplicate insert aborts the transaction on Postgres; the race
			// is resolved by the caller after the rollback.
			if err := tx.Create(&models.Follow{FollowerID: followerID, FollowingID: followingID}).Error; err != nil {
				return err
			}
			following = true
			return nil
		}

		res := tx.Where("follower_id = ? AND following_id = ?", followerID, followingID).
			Delete(&models.Follow{})
		if res.Error != nil {
			return res.Error
		}
		following = false
		return nil
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			// Concurrent toggle won the insert and our transaction rolled
			// back. Re-read the edge and report the now-current state.
			return r.IsFollowing(ctx, followerID, followingID)
		}
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return false, err
		}
		if isSerializationError(err) {
			return false, models.NewRetryableError(err)
		}
		return false, models.WrapStorageError(err)
	}

	return following, nil
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	if err != nil {
		return false, models.WrapStorageError(err)
	}
	return count > 0, nil
}

func (r *followRepository) FollowerCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("following_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, models.WrapStorageError(err)
	}
	return count, nil
}

func (r *followRepository) FollowingCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, models.WrapStorageError(err)
	}
	return count, nil
}
