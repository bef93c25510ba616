package entity

import (
	"time"

	"github.com/google/uuid"
)

// Post is user-generated content authored by exactly one user.
type Post struct {
	ID       string
	UserID   string
	Title    string `validate:"required,max=200"`
	Content  string `validate:"required"`
	ImageURL string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewPost builds a validated post for the given author.
func NewPost(userID, title, content, imageURL string) (*Post, error) {
	p := &Post{
		ID:       uuid.NewString(),
		UserID:   userID,
		Title:    title,
		Content:  content,
		ImageURL: imageURL,
	}
	if err := validateAggregated(p); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateText validates and applies new title and content.
func (p *Post) UpdateText(title, content string) error {
	prevTitle, prevContent := p.Title, p.Content
	p.Title, p.Content = title, content
	if err := validateAggregated(p); err != nil {
		p.Title, p.Content = prevTitle, prevContent
		return err
	}
	return nil
}

// AuthoredBy reports whether the given user wrote this post.
func (p *Post) AuthoredBy(userID string) bool {
	return p.UserID == userID
}
