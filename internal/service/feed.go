// Package service implements the application's business logic on top of the
// repository layer.
package service

import (
	"context"

	"verseflow/internal/models"
	"verseflow/internal/observability"
	"verseflow/internal/repository"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
)

// FeedPageSize is the fixed number of posts per feed page.
const FeedPageSize = 20

// RankingStrategy decides the order posts are served in. The expression is a
// SQL ORDER BY fragment owned by the strategy, never derived from request
// input.
type RankingStrategy interface {
	Name() string
	OrderExpr() string
}

type randomRanking struct{}

func (randomRanking) Name() string      { return "random" }
func (randomRanking) OrderExpr() string { return "RANDOM()" }

// NewRandomRanking returns the default strategy: a fresh shuffle on every
// page request. Pages are not stable across requests; duplicates between
// pages are accepted in exchange for zero per-viewer state.
func NewRandomRanking() RankingStrategy {
	return randomRanking{}
}

type newestRanking struct{}

func (newestRanking) Name() string      { return "newest" }
func (newestRanking) OrderExpr() string { return "created_at DESC" }

// NewNewestRanking returns a chronological strategy, used where stable
// ordering matters more than discovery.
func NewNewestRanking() RankingStrategy {
	return newestRanking{}
}

// FeedService assembles feed pages.
type FeedService struct {
	postRepo repository.PostRepository
	ranking  RankingStrategy
}

// NewFeedService creates a feed service with the given ranking strategy.
// A nil strategy falls back to random ranking.
func NewFeedService(postRepo repository.PostRepository, ranking RankingStrategy) *FeedService {
	if ranking == nil {
		ranking = NewRandomRanking()
	}
	return &FeedService{postRepo: postRepo, ranking: ranking}
}

// GetFeedPage returns one page of the feed starting at cursor. viewerID of 0
// means anonymous; signed-in viewers get liked/saved annotations filled in
// with one set-membership query each, regardless of page size.
func (s *FeedService) GetFeedPage(ctx context.Context, viewerID uint, cursor int) (*models.FeedPage, error) {
	span, ctx := observability.NewSpan(ctx, "feed.GetFeedPage")
	defer span.End()
	span.AddAttributes(
		attribute.Int("feed.cursor", cursor),
		attribute.String("feed.ranking", s.ranking.Name()),
	)

	if cursor < 0 {
		return nil, models.NewValidationError("Cursor must not be negative")
	}

	// Fetch one extra row to learn whether another page exists.
	posts, err := s.postRepo.ListOrdered(ctx, s.ranking.OrderExpr(), FeedPageSize+1, cursor)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	hasMore := len(posts) > FeedPageSize
	if hasMore {
		posts = posts[:FeedPageSize]
	}

	if err := s.annotateEngagement(ctx, viewerID, posts); err != nil {
		span.SetError(err)
		return nil, err
	}

	page := &models.FeedPage{Posts: posts, HasMore: hasMore}
	if hasMore {
		next := cursor + FeedPageSize
		page.NextCursor = &next
	}

	viewer := "anonymous"
	if viewerID != 0 {
		viewer = "signed_in"
	}
	observability.FeedPagesServed.WithLabelValues(viewer).Inc()

	return page, nil
}

// annotateEngagement fills Liked and Saved on each post for the viewer.
// Anonymous viewers keep the zero values.
func (s *FeedService) annotateEngagement(ctx context.Context, viewerID uint, posts []*models.Post) error {
	if viewerID == 0 || len(posts) == 0 {
		return nil
	}

	postIDs := lo.Map(posts, func(p *models.Post, _ int) uint { return p.ID })

	likedIDs, err := s.postRepo.GetLikedPostIDs(ctx, viewerID, postIDs)
	if err != nil {
		return err
	}
	savedIDs, err := s.postRepo.GetSavedPostIDs(ctx, viewerID, postIDs)
	if err != nil {
		return err
	}

	liked := lo.SliceToMap(likedIDs, func(id uint) (uint, struct{}) { return id, struct{}{} })
	saved := lo.SliceToMap(savedIDs, func(id uint) (uint, struct{}) { return id, struct{}{} })

	for _, p := range posts {
		_, p.Liked = liked[p.ID]
		_, p.Saved = saved[p.ID]
	}
	return nil
}
