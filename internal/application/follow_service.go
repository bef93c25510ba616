package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/mosamir/blogging-api/internal/domain/entity"
	repo "github.com/mosamir/blogging-api/internal/domain/repository"
)

var (
	ErrSelfFollow       = entity.ErrSelfFollow
	ErrAlreadyFollowing = errors.New("already following")
	ErrNotFollowing     = errors.New("not following")
)

// FollowService is the only component allowed to touch the follower and
// following counters; every edge mutation goes through it so the
// edge-count invariant holds.
type FollowService struct {
	Users   repo.UserRepository
	Follows repo.FollowRepository
	Logger  *logrus.Logger
}

func NewFollowService(users repo.UserRepository, follows repo.FollowRepository, logger *logrus.Logger) *FollowService {
	return &FollowService{Users: users, Follows: follows, Logger: logger}
}

// Follow creates the edge from follower to followed and bumps both
// counters. Rejects self-follows and duplicate edges.
func (s *FollowService) Follow(ctx context.Context, followerID, followedID string) (*entity.User, error) {
	f, err := entity.NewFollow(followerID, followedID)
	if err != nil {
		return nil, err
	}
	followed, err := s.Users.GetByID(ctx, followedID)
	if err != nil || followed == nil {
		return nil, ErrUserNotFound
	}
	if err := s.Follows.Create(ctx, f); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrAlreadyFollowing
		}
		return nil, err
	}
	// Reflect the storage-side increment on the aggregate we return.
	followed.IncrementFollowers()
	return followed, nil
}

// Unfollow removes the edge and decrements both counters.
func (s *FollowService) Unfollow(ctx context.Context, followerID, followedID string) error {
	removed, err := s.Follows.Delete(ctx, followerID, followedID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFollowing
	}
	return nil
}

// Profile returns userID's public profile together with whether viewerID
// currently follows them. A viewer on their own profile reads false.
func (s *FollowService) Profile(ctx context.Context, viewerID, userID string) (*entity.User, bool, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil || u == nil {
		return nil, false, ErrUserNotFound
	}
	if viewerID == "" || viewerID == userID {
		return u, false, nil
	}
	following, err := s.Follows.Exists(ctx, viewerID, userID)
	if err != nil {
		return nil, false, err
	}
	return u, following, nil
}

// Followers returns the users following userID.
func (s *FollowService) Followers(ctx context.Context, userID string) ([]*entity.User, error) {
	if _, err := s.Users.GetByID(ctx, userID); err != nil {
		return nil, ErrUserNotFound
	}
	return s.Follows.ListFollowers(ctx, userID)
}

// Following returns the users userID follows.
func (s *FollowService) Following(ctx context.Context, userID string) ([]*entity.User, error) {
	if _, err := s.Users.GetByID(ctx, userID); err != nil {
		return nil, ErrUserNotFound
	}
	return s.Follows.ListFollowing(ctx, userID)
}
