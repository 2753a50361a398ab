package service

import (
	"context"

	"verseflow/internal/models"
	"verseflow/internal/observability"
	"verseflow/internal/repository"
	"verseflow/internal/sanitize"
)

// PostService manages publishing and retrieving posts outside the feed.
type PostService struct {
	postRepo repository.PostRepository
}

// NewPostService creates a new post service.
func NewPostService(postRepo repository.PostRepository) *PostService {
	return &PostService{postRepo: postRepo}
}

// PublishPostInput carries a new post.
type PublishPostInput struct {
	UserID      uint
	Content     string
	Attribution string
	Kind        string
}

// PublishPost validates and stores a new post authored by the user.
func (s *PostService) PublishPost(ctx context.Context, in PublishPostInput) (*models.Post, error) {
	span, ctx := observability.NewSpan(ctx, "post.PublishPost")
	defer span.End()

	switch in.Kind {
	case models.PostKindPoetry, models.PostKindProse, models.PostKindQuote:
		// valid
	default:
		return nil, models.NewValidationError("Invalid kind (want poetry, prose, or quote)")
	}

	content := sanitize.Text(in.Content)
	if content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(content) > models.MaxPostContentLen {
		return nil, models.NewValidationError("Content too long (max 5000 characters)")
	}

	attribution := sanitize.Text(in.Attribution)
	if len(attribution) > models.MaxAttributionLen {
		return nil, models.NewValidationError("Attribution too long (max 300 characters)")
	}
	if in.Kind == models.PostKindQuote && attribution == "" {
		return nil, models.NewValidationError("Quotes require an attribution")
	}

	userID := in.UserID
	post := &models.Post{
		UserID:      &userID,
		Content:     content,
		Attribution: attribution,
		Kind:        in.Kind,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		span.SetError(err)
		return nil, err
	}
	return post, nil
}

// GetPost returns a single post with the viewer's liked/saved annotations.
func (s *PostService) GetPost(ctx context.Context, postID, viewerID uint) (*models.Post, error) {
	span, ctx := observability.NewSpan(ctx, "post.GetPost")
	defer span.End()

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	if viewerID != 0 {
		likedIDs, err := s.postRepo.GetLikedPostIDs(ctx, viewerID, []uint{postID})
		if err != nil {
			span.SetError(err)
			return nil, err
		}
		savedIDs, err := s.postRepo.GetSavedPostIDs(ctx, viewerID, []uint{postID})
		if err != nil {
			span.SetError(err)
			return nil, err
		}
		post.Liked = len(likedIDs) > 0
		post.Saved = len(savedIDs) > 0
	}
	return post, nil
}

// DeletePost soft-deletes a post. Only the author or an admin may delete.
// Curated posts have no author and can only be removed by admins.
func (s *PostService) DeletePost(ctx context.Context, userID uint, isAdmin bool, postID uint) error {
	span, ctx := observability.NewSpan(ctx, "post.DeletePost")
	defer span.End()

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		span.SetError(err)
		return err
	}

	isAuthor := post.UserID != nil && *post.UserID == userID
	if !isAuthor && !isAdmin {
		return models.NewUnauthorizedError("Only the author or an admin can delete a post")
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		span.SetError(err)
		return err
	}
	return nil
}

// ListUserPosts returns a user's posts, newest first.
func (s *PostService) ListUserPosts(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	if limit <= 0 || limit > 100 {
		limit = FeedPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.postRepo.ListByUser(ctx, userID, limit, offset)
}

// ListSavedPosts returns the viewer's saved posts, most recently saved first.
func (s *PostService) ListSavedPosts(ctx context.Context, viewerID uint, limit, offset int) ([]*models.Post, error) {
	if limit <= 0 || limit > 100 {
		limit = FeedPageSize
	}
	if offset < 0 {
		offset = 0
	}
	posts, err := s.postRepo.ListSavedByUser(ctx, viewerID, limit, offset)
	if err != nil {
		return nil, err
	}
	// Everything on this page is saved by definition.
	for _, p := range posts {
		p.Saved = true
	}
	return posts, nil
}
