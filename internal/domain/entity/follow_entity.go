package entity

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrSelfFollow is returned when a user attempts to follow themselves.
var ErrSelfFollow = errors.New("a user cannot follow themselves")

// Follow is a directed edge from a follower to a followed user.
// The edge references both users; it is not owned by either aggregate.
type Follow struct {
	ID         string
	FollowerID string
	FollowedID string
	CreatedAt  time.Time
}

// NewFollow builds a follow edge, rejecting self-follows.
func NewFollow(followerID, followedID string) (*Follow, error) {
	if followerID == followedID {
		return nil, ErrSelfFollow
	}
	return &Follow{
		ID:         uuid.NewString(),
		FollowerID: followerID,
		FollowedID: followedID,
	}, nil
}
