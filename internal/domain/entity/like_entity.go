package entity

import (
	"time"

	"github.com/google/uuid"
)

// Interaction types a like can carry.
const (
	InteractionLike  = "like"
	InteractionLove  = "love"
	InteractionLaugh = "laugh"
)

// Like is a single-user interaction with a post. A user holds at most one
// like per post; the storage layer enforces uniqueness.
type Like struct {
	ID              string
	PostID          string
	UserID          string
	InteractionType string `validate:"required,oneof=like love laugh"`

	CreatedAt time.Time
}

// NewLike builds a validated like. An empty interaction type defaults to
// the plain like.
func NewLike(postID, userID, interactionType string) (*Like, error) {
	if interactionType == "" {
		interactionType = InteractionLike
	}
	l := &Like{
		ID:              uuid.NewString(),
		PostID:          postID,
		UserID:          userID,
		InteractionType: interactionType,
	}
	if err := validateAggregated(l); err != nil {
		return nil, err
	}
	return l, nil
}
