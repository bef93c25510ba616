package repository

import (
	"context"

	"github.com/mosamir/blogging-api/internal/domain/entity"
)

// FollowRepository manages follow edges and the counter invariant that goes
// with them: every edge insert/delete adjusts the two user counters in the
// same transaction, as atomic SQL increments rather than read-modify-write.
type FollowRepository interface {
	// Create inserts the edge and increments the follower's following count
	// and the followed user's followers count. Returns ErrDuplicate when the
	// edge already exists.
	Create(ctx context.Context, f *entity.Follow) error

	// Delete removes the edge and decrements both counters (floored at
	// zero). Reports false when no such edge existed.
	Delete(ctx context.Context, followerID, followedID string) (bool, error)

	// Exists reports whether followerID currently follows followedID.
	Exists(ctx context.Context, followerID, followedID string) (bool, error)

	// ListFollowers returns the users following userID.
	ListFollowers(ctx context.Context, userID string) ([]*entity.User, error)
	// ListFollowing returns the users userID follows.
	ListFollowing(ctx context.Context, userID string) ([]*entity.User, error)
}
