package service

import (
	"context"

	"verseflow/internal/models"
	"verseflow/internal/observability"
	"verseflow/internal/repository"
)

// EngagementService exposes the like and save toggles. Both are idempotent in
// effect: toggling twice returns to the original state, and concurrent
// duplicates resolve inside the repository transaction.
type EngagementService struct {
	engagementRepo repository.EngagementRepository
}

// NewEngagementService creates a new engagement service.
func NewEngagementService(engagementRepo repository.EngagementRepository) *EngagementService {
	return &EngagementService{engagementRepo: engagementRepo}
}

// ToggleLike flips the viewer's like on the post and returns the new state
// together with the post's like count.
func (s *EngagementService) ToggleLike(ctx context.Context, userID, postID uint) (*repository.ToggleResult, error) {
	span, ctx := observability.NewSpan(ctx, "engagement.ToggleLike")
	defer span.End()

	if postID == 0 {
		return nil, models.NewValidationError("Post ID is required")
	}

	result, err := s.engagementRepo.ToggleLike(ctx, userID, postID)
	if err != nil {
		span.SetError(err)
		observability.EngagementToggles.WithLabelValues("like", "error").Inc()
		return nil, err
	}

	outcome := "off"
	if result.Active {
		outcome = "on"
	}
	observability.EngagementToggles.WithLabelValues("like", outcome).Inc()
	return result, nil
}

// ToggleSave flips the viewer's save on the post.
func (s *EngagementService) ToggleSave(ctx context.Context, userID, postID uint) (*repository.ToggleResult, error) {
	span, ctx := observability.NewSpan(ctx, "engagement.ToggleSave")
	defer span.End()

	if postID == 0 {
		return nil, models.NewValidationError("Post ID is required")
	}

	result, err := s.engagementRepo.ToggleSave(ctx, userID, postID)
	if err != nil {
		span.SetError(err)
		observability.EngagementToggles.WithLabelValues("save", "error").Inc()
		return nil, err
	}

	outcome := "off"
	if result.Active {
		outcome = "on"
	}
	observability.EngagementToggles.WithLabelValues("save", outcome).Inc()
	return result, nil
}
