package entity

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a reaction, in text, to a single post.
type Comment struct {
	ID      string
	PostID  string
	UserID  string
	Content string `validate:"required,max=1000"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewComment builds a validated comment by the given author on the given post.
func NewComment(postID, userID, content string) (*Comment, error) {
	c := &Comment{
		ID:      uuid.NewString(),
		PostID:  postID,
		UserID:  userID,
		Content: content,
	}
	if err := validateAggregated(c); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateContent validates and applies new text.
func (c *Comment) UpdateContent(content string) error {
	prev := c.Content
	c.Content = content
	if err := validateAggregated(c); err != nil {
		c.Content = prev
		return err
	}
	return nil
}

// AuthoredBy reports whether the given user wrote this comment.
func (c *Comment) AuthoredBy(userID string) bool {
	return c.UserID == userID
}
