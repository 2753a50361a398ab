package repository

import (
	"context"
	"errors"
	"fmt"

	"verseflow/internal/cache"
	"verseflow/internal/models"
	"verseflow/internal/observability"

	"gorm.io/gorm"
)

// ToggleResult reports the state after a toggle operation.
type ToggleResult struct {
	Active bool  `json:"active"`
	Count  int64 `json:"count"`
}

// EngagementRepository handles like and save membership rows together with
// the denormalized counters on posts. Membership change and counter update
// always commit in the same transaction.
type EngagementRepository interface {
	ToggleLike(ctx context.Context, userID, postID uint) (*ToggleResult, error)
	ToggleSave(ctx context.Context, userID, postID uint) (*ToggleResult, error)
	ReconcileCounters(ctx context.Context) (map[string]int64, error)
}

type engagementRepository struct {
	db *gorm.DB
}

// NewEngagementRepository creates a new engagement repository.
func NewEngagementRepository(db *gorm.DB) EngagementRepository {
	return &engagementRepository{db: db}
}

func (r *engagementRepository) ToggleLike(ctx context.Context, userID, postID uint) (*ToggleResult, error) {
	return r.toggle(ctx, userID, postID, "likes")
}

func (r *engagementRepository) ToggleSave(ctx context.Context, userID, postID uint) (*ToggleResult, error) {
	return r.toggle(ctx, userID, postID, "saves")
}

// toggle flips the membership row for (userID, postID) in the given table and
// adjusts the matching counter on posts in the same transaction. A counter is
// only kept on posts for likes; saves track membership without a public count.
func (r *engagementRepository) toggle(ctx context.Context, userID, postID uint, table string) (*ToggleResult, error) {
	defer observability.TrackQuery("toggle", table)()

	var active bool

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The post must exist and not be deleted.
		var exists int64
		if err := tx.Model(&models.Post{}).Where("id = ?", postID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return models.NewNotFoundError("Post", postID)
		}

		var member int64
		if err := tx.Table(table).
			Where("user_id = ? AND post_id = ?", userID, postID).
			Count(&member).Error; err != nil {
			return err
		}

		if member == 0 {
			// A duplicate insert aborts the whole transaction on Postgres, so
			// the unique-violation race cannot be resolved in here. Return the
			// error and let the caller re-read after the rollback.
			if err := r.insertMembership(tx, table, userID, postID); err != nil {
				return err
			}
			active = true
			return r.adjustCounter(tx, table, postID, +1)
		}

		res := tx.Exec(
			fmt.Sprintf("DELETE FROM %s WHERE user_id = ? AND post_id = ?", table),
			userID, postID,
		)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Concurrent toggle removed the row first; resolve as already-off.
			active = false
			return nil
		}
		active = false
		return r.adjustCounter(tx, table, postID, -1)
	})
	if err != nil {
		if !isUniqueConstraintError(err) {
			return nil, classifyToggleError(err)
		}
		// Concurrent toggle won the insert and our transaction rolled back.
		// The row exists now; report the current state instead of failing.
		member, merr := r.isMember(ctx, table, userID, postID)
		if merr != nil {
			return nil, merr
		}
		active = member
	}

	cache.InvalidatePost(ctx, postID)

	count, err := r.counterValue(ctx, table, postID)
	if err != nil {
		return nil, err
	}
	return &ToggleResult{Active: active, Count: count}, nil
}

func (r *engagementRepository) isMember(ctx context.Context, table string, userID, postID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table(table).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	if err != nil {
		return false, models.WrapStorageError(err)
	}
	return count > 0, nil
}

func (r *engagementRepository) insertMembership(tx *gorm.DB, table string, userID, postID uint) error {
	switch table {
	case "likes":
		return tx.Create(&models.Like{UserID: userID, PostID: postID}).Error
	case "saves":
		return tx.Create(&models.Save{UserID: userID, PostID: postID}).Error
	default:
		return fmt.Errorf("unknown engagement table %q", table)
	}
}

// adjustCounter moves the denormalized likes_count on posts. Saves have no
// public counter, so only likes touch posts. The decrement is guarded so the
// counter can never go below zero even if it had drifted.
func (r *engagementRepository) adjustCounter(tx *gorm.DB, table string, postID uint, delta int) error {
	if table != "likes" {
		return nil
	}
	if delta > 0 {
		return tx.Model(&models.Post{}).
			Where("id = ?", postID).
			UpdateColumn("likes_count", gorm.Expr("likes_count + 1")).Error
	}
	return tx.Model(&models.Post{}).
		Where("id = ? AND likes_count > 0", postID).
		UpdateColumn("likes_count", gorm.Expr("likes_count - 1")).Error
}

// counterValue reads the post-toggle count. Likes read the denormalized
// column; saves count membership rows directly.
func (r *engagementRepository) counterValue(ctx context.Context, table string, postID uint) (int64, error) {
	if table == "likes" {
		var count int64
		err := r.db.WithContext(ctx).
			Model(&models.Post{}).
			Where("id = ?", postID).
			Pluck("likes_count", &count).Error
		if err != nil {
			return 0, models.WrapStorageError(err)
		}
		return count, nil
	}

	var count int64
	err := r.db.WithContext(ctx).
		Table(table).
		Where("post_id = ?", postID).
		Count(&count).Error
	if err != nil {
		return 0, models.WrapStorageError(err)
	}
	return count, nil
}

func classifyToggleError(err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if isSerializationError(err) {
		return models.NewRetryableError(err)
	}
	return models.WrapStorageError(err)
}

// ReconcileCounters recomputes the denormalized counters from their source
// tables and repairs any rows that drifted. Returns repaired row counts per
// counter name.
func (r *engagementRepository) ReconcileCounters(ctx context.Context) (map[string]int64, error) {
	defer observability.TrackQuery("reconcile", "posts")()

	repaired := make(map[string]int64, 2)

	res := r.db.WithContext(ctx).Exec(`
		UPDATE posts SET likes_count = (
			SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id
		)
		WHERE likes_count <> (
			SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id
		)`)
	if res.Error != nil {
		return nil, models.WrapStorageError(res.Error)
	}
	repaired["likes_count"] = res.RowsAffected

	res = r.db.WithContext(ctx).Exec(`
		UPDATE posts SET comments_count = (
			SELECT COUNT(*) FROM comments
			WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL
		)
		WHERE comments_count <> (
			SELECT COUNT(*) FROM comments
			WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL
		)`)
	if res.Error != nil {
		return nil, models.WrapStorageError(res.Error)
	}
	repaired["comments_count"] = res.RowsAffected

	return repaired, nil
}
