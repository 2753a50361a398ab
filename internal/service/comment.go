package service

import (
	"context"

	"verseflow/internal/models"
	"verseflow/internal/observability"
	"verseflow/internal/repository"
	"verseflow/internal/sanitize"
)

// CommentService manages comment threads on posts.
type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

// NewCommentService creates a new comment service.
func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo, postRepo: postRepo}
}

// CreateCommentInput carries a new comment. ParentID is nil for root comments.
type CreateCommentInput struct {
	UserID   uint
	PostID   uint
	ParentID *uint
	Content  string
}

// CreateComment validates, sanitizes, and stores a comment. A reply's parent
// must be a live comment on the same post. The result is a leaf node with an
// empty replies list, ready to splice into a client-side tree.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.CommentNode, error) {
	span, ctx := observability.NewSpan(ctx, "comment.CreateComment")
	defer span.End()

	content := sanitize.Text(in.Content)
	if content == "" {
		return nil, models.NewValidationError("Comment content is required")
	}
	if len(content) > models.MaxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 1000 characters)")
	}

	// The post must exist before we attach anything to it.
	if _, err := s.postRepo.GetByID(ctx, in.PostID); err != nil {
		span.SetError(err)
		return nil, err
	}

	if in.ParentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *in.ParentID)
		if err != nil {
			span.SetError(err)
			return nil, err
		}
		if parent.PostID != in.PostID {
			return nil, models.NewValidationError("Parent comment belongs to a different post")
		}
	}

	comment := &models.Comment{
		PostID:   in.PostID,
		UserID:   in.UserID,
		ParentID: in.ParentID,
		Content:  content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		span.SetError(err)
		return nil, err
	}
	return &models.CommentNode{Comment: *comment, Replies: []*models.CommentNode{}}, nil
}

// DeleteComment soft-deletes a comment. Only the author or an admin may
// delete; replies are not cascaded and surface as roots in the tree.
func (s *CommentService) DeleteComment(ctx context.Context, userID uint, isAdmin bool, commentID uint) error {
	span, ctx := observability.NewSpan(ctx, "comment.DeleteComment")
	defer span.End()

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		span.SetError(err)
		return err
	}
	if comment.UserID != userID && !isAdmin {
		return models.NewUnauthorizedError("Only the author or an admin can delete a comment")
	}

	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		span.SetError(err)
		return err
	}
	return nil
}

// GetCommentTree returns the post's comments as a forest. Every comment
// fetched appears exactly once: replies whose parent is deleted or missing
// become roots rather than being dropped.
func (s *CommentService) GetCommentTree(ctx context.Context, postID uint) ([]*models.CommentNode, error) {
	span, ctx := observability.NewSpan(ctx, "comment.GetCommentTree")
	defer span.End()

	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		span.SetError(err)
		return nil, err
	}

	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	tree := BuildCommentTree(comments)
	observability.CommentTreeSize.Observe(float64(len(comments)))
	return tree, nil
}

// BuildCommentTree assembles a flat, creation-ordered comment list into a
// forest in a single pass over an id-to-node map. Input order is preserved
// among siblings and among roots.
func BuildCommentTree(comments []models.Comment) []*models.CommentNode {
	nodes := make(map[uint]*models.CommentNode, len(comments))
	for i := range comments {
		nodes[comments[i].ID] = &models.CommentNode{Comment: comments[i]}
	}

	roots := make([]*models.CommentNode, 0, len(comments))
	for i := range comments {
		node := nodes[comments[i].ID]
		if comments[i].ParentID != nil {
			if parent, ok := nodes[*comments[i].ParentID]; ok {
				parent.Replies = append(parent.Replies, node)
				continue
			}
			// Orphan: parent deleted or never fetched. Promote to root so the
			// comment is never silently lost.
		}
		roots = append(roots, node)
	}
	return roots
}
