package service

import (
	"context"
	"regexp"
	"strings"

	"verseflow/internal/models"
	"verseflow/internal/observability"
	"verseflow/internal/repository"
	"verseflow/internal/sanitize"
)

var handlePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)

// ProfileService manages user profiles and follow relationships.
type ProfileService struct {
	userRepo   repository.UserRepository
	postRepo   repository.PostRepository
	followRepo repository.FollowRepository
}

// NewProfileService creates a new profile service.
func NewProfileService(userRepo repository.UserRepository, postRepo repository.PostRepository, followRepo repository.FollowRepository) *ProfileService {
	return &ProfileService{userRepo: userRepo, postRepo: postRepo, followRepo: followRepo}
}

// ProfileInput carries profile fields for completion and updates.
type ProfileInput struct {
	Handle      string
	DisplayName string
	Bio         string
	Avatar      string
}

func (in *ProfileInput) validate() error {
	if !handlePattern.MatchString(in.Handle) {
		return models.NewValidationError("Handle must be 3-20 characters of letters, digits, or underscores")
	}
	if len(in.DisplayName) > 100 {
		return models.NewValidationError("Display name too long (max 100 characters)")
	}
	if len(in.Bio) > 150 {
		return models.NewValidationError("Bio too long (max 150 characters)")
	}
	return nil
}

// CompleteProfile creates the internal user row for an external identity the
// first time it picks a handle. Until this happens the identity can read but
// not engage.
func (s *ProfileService) CompleteProfile(ctx context.Context, authID string, in ProfileInput) (*models.User, error) {
	span, ctx := observability.NewSpan(ctx, "profile.CompleteProfile")
	defer span.End()

	if authID == "" {
		return nil, models.NewUnauthorizedError("Missing identity")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetByAuthID(ctx, authID)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("Profile already completed")
	}

	// Handles are stored lowercase so uniqueness is case-insensitive.
	user := &models.User{
		AuthID:      authID,
		Handle:      strings.ToLower(in.Handle),
		DisplayName: sanitize.Text(in.DisplayName),
		Bio:         sanitize.Text(in.Bio),
		Avatar:      in.Avatar,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		span.SetError(err)
		return nil, err
	}
	return user, nil
}

// UpdateProfile changes mutable profile fields. The handle can be changed as
// long as the new one is free.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID uint, in ProfileInput) (*models.User, error) {
	span, ctx := observability.NewSpan(ctx, "profile.UpdateProfile")
	defer span.End()

	if err := in.validate(); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	user.Handle = strings.ToLower(in.Handle)
	user.DisplayName = sanitize.Text(in.DisplayName)
	user.Bio = sanitize.Text(in.Bio)
	user.Avatar = in.Avatar

	if err := s.userRepo.Update(ctx, user); err != nil {
		span.SetError(err)
		return nil, err
	}
	return user, nil
}

// GetProfile returns the user together with freshly computed follower,
// following, and post counts. viewerID of 0 leaves IsFollowing false.
func (s *ProfileService) GetProfile(ctx context.Context, targetID, viewerID uint) (*models.Profile, error) {
	span, ctx := observability.NewSpan(ctx, "profile.GetProfile")
	defer span.End()

	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	return s.buildProfile(ctx, user, viewerID)
}

// GetProfileByHandle is the handle-addressed variant of GetProfile.
func (s *ProfileService) GetProfileByHandle(ctx context.Context, handle string, viewerID uint) (*models.Profile, error) {
	span, ctx := observability.NewSpan(ctx, "profile.GetProfileByHandle")
	defer span.End()

	user, err := s.userRepo.GetByHandle(ctx, strings.ToLower(handle))
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", handle)
	}
	return s.buildProfile(ctx, user, viewerID)
}

func (s *ProfileService) buildProfile(ctx context.Context, user *models.User, viewerID uint) (*models.Profile, error) {
	span, ctx := observability.NewSpan(ctx, "profile.buildProfile")
	defer span.End()
	targetID := user.ID

	followers, err := s.followRepo.FollowerCount(ctx, targetID)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	following, err := s.followRepo.FollowingCount(ctx, targetID)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	posts, err := s.postRepo.CountByUser(ctx, targetID)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	profile := &models.Profile{
		User:           *user,
		FollowerCount:  followers,
		FollowingCount: following,
		PostCount:      posts,
	}

	if viewerID != 0 && viewerID != targetID {
		isFollowing, err := s.followRepo.IsFollowing(ctx, viewerID, targetID)
		if err != nil {
			span.SetError(err)
			return nil, err
		}
		profile.IsFollowing = isFollowing
	}
	return profile, nil
}

// ToggleFollow flips the follow edge from the viewer to the target. Following
// yourself is rejected outright.
func (s *ProfileService) ToggleFollow(ctx context.Context, followerID, targetID uint) (bool, error) {
	span, ctx := observability.NewSpan(ctx, "profile.ToggleFollow")
	defer span.End()

	if followerID == targetID {
		return false, models.NewValidationError("You cannot follow yourself")
	}

	// The target must be a real, live user.
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		span.SetError(err)
		return false, err
	}

	following, err := s.followRepo.Toggle(ctx, followerID, targetID)
	if err != nil {
		span.SetError(err)
		observability.EngagementToggles.WithLabelValues("follow", "error").Inc()
		return false, err
	}

	outcome := "off"
	if following {
		outcome = "on"
	}
	observability.EngagementToggles.WithLabelValues("follow", outcome).Inc()
	return following, nil
}
