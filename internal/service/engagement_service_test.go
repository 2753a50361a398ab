package service

import (
	"context"
	"errors"
	"testing"

	"verseflow/internal/models"
	"verseflow/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// engagementRepoStub is a stub for repository.EngagementRepository.
type engagementRepoStub struct {
	toggleLikeFn        func(context.Context, uint, uint) (*repository.ToggleResult, error)
	toggleSaveFn        func(context.Context, uint, uint) (*repository.ToggleResult, error)
	reconcileCountersFn func(context.Context) (map[string]int64, error)
}

func (s *engagementRepoStub) ToggleLike(ctx context.Context, userID, postID uint) (*repository.ToggleResult, error) {
	return s.toggleLikeFn(ctx, userID, postID)
}
func (s *engagementRepoStub) ToggleSave(ctx context.Context, userID, postID uint) (*repository.ToggleResult, error) {
	return s.toggleSaveFn(ctx, userID, postID)
}
func (s *engagementRepoStub) ReconcileCounters(ctx context.Context) (map[string]int64, error) {
	return s.reconcileCountersFn(ctx)
}

func noopEngagementRepo() *engagementRepoStub {
	return &engagementRepoStub{
		toggleLikeFn: func(_ context.Context, _, _ uint) (*repository.ToggleResult, error) {
			return &repository.ToggleResult{}, nil
		},
		toggleSaveFn: func(_ context.Context, _, _ uint) (*repository.ToggleResult, error) {
			return &repository.ToggleResult{}, nil
		},
		reconcileCountersFn: func(_ context.Context) (map[string]int64, error) {
			return map[string]int64{}, nil
		},
	}
}

func TestEngagementService_ToggleLike(t *testing.T) {
	t.Run("missing post id", func(t *testing.T) {
		svc := NewEngagementService(noopEngagementRepo())
		_, err := svc.ToggleLike(context.Background(), 5, 0)

		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeValidation, appErr.Code)
	})

	t.Run("returns repository state", func(t *testing.T) {
		repo := noopEngagementRepo()
		repo.toggleLikeFn = func(_ context.Context, userID, postID uint) (*repository.ToggleResult, error) {
			assert.Equal(t, uint(5), userID)
			assert.Equal(t, uint(9), postID)
			return &repository.ToggleResult{Active: true, Count: 12}, nil
		}

		svc := NewEngagementService(repo)
		result, err := svc.ToggleLike(context.Background(), 5, 9)
		require.NoError(t, err)
		assert.True(t, result.Active)
		assert.Equal(t, int64(12), result.Count)
	})

	t.Run("retryable error passes through", func(t *testing.T) {
		repo := noopEngagementRepo()
		repo.toggleLikeFn = func(_ context.Context, _, _ uint) (*repository.ToggleResult, error) {
			return nil, models.NewRetryableError(errors.New("serialization failure"))
		}

		svc := NewEngagementService(repo)
		_, err := svc.ToggleLike(context.Background(), 5, 9)

		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeRetryable, appErr.Code)
	})
}

func TestEngagementService_ToggleSave(t *testing.T) {
	repo := noopEngagementRepo()
	repo.toggleSaveFn = func(_ context.Context, _, _ uint) (*repository.ToggleResult, error) {
		return &repository.ToggleResult{Active: false, Count: 2}, nil
	}

	svc := NewEngagementService(repo)
	result, err := svc.ToggleSave(context.Background(), 5, 9)
	require.NoError(t, err)
	assert.False(t, result.Active)
	assert.Equal(t, int64(2), result.Count)
}

func TestReconcileService_RunWithEngagementRepo(t *testing.T) {
	t.Run("reports repaired rows", func(t *testing.T) {
		repo := noopEngagementRepo()
		called := false
		repo.reconcileCountersFn = func(_ context.Context) (map[string]int64, error) {
			called = true
			return map[string]int64{"likes_count": 2, "comments_count": 0}, nil
		}

		svc := NewReconcileService(repo)
		assert.NoError(t, svc.Run(context.Background()))
		assert.True(t, called)
	})

	t.Run("propagates storage errors", func(t *testing.T) {
		repo := noopEngagementRepo()
		repo.reconcileCountersFn = func(_ context.Context) (map[string]int64, error) {
			return nil, models.NewStorageError(errors.New("connection refused"))
		}

		svc := NewReconcileService(repo)
		assert.Error(t, svc.Run(context.Background()))
	})
}
