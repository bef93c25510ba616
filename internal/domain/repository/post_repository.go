package repository

import (
	"context"

	"github.com/mosamir/blogging-api/internal/domain/entity"
)

// PostRepository defines the interface for post persistence.
type PostRepository interface {
	Create(ctx context.Context, p *entity.Post) error
	GetByID(ctx context.Context, id string) (*entity.Post, error)
	ListByUser(ctx context.Context, userID string) ([]*entity.Post, error)
	Update(ctx context.Context, p *entity.Post) error
	Delete(ctx context.Context, id string) (bool, error)
}

// CommentRepository defines the interface for comment persistence.
type CommentRepository interface {
	Create(ctx context.Context, c *entity.Comment) error
	GetByID(ctx context.Context, id string) (*entity.Comment, error)
	ListByPost(ctx context.Context, postID string) ([]*entity.Comment, error)
	Update(ctx context.Context, c *entity.Comment) error
	Delete(ctx context.Context, id string) (bool, error)
}

// LikeRepository defines the interface for like persistence. A user holds at
// most one like per post; Create returns ErrDuplicate on a second attempt.
type LikeRepository interface {
	Create(ctx context.Context, l *entity.Like) error
	ListByPost(ctx context.Context, postID string) ([]*entity.Like, error)
	// Delete removes the user's like on the post. Reports false when the
	// user had not liked the post.
	Delete(ctx context.Context, postID, userID string) (bool, error)
}

// TagRepository defines the interface for tags and their post attachments.
type TagRepository interface {
	Create(ctx context.Context, t *entity.Tag) error
	GetByID(ctx context.Context, id string) (*entity.Tag, error)
	GetByName(ctx context.Context, name string) (*entity.Tag, error)
	Attach(ctx context.Context, postID, tagID string) error
	Detach(ctx context.Context, postID, tagID string) (bool, error)
	ListByPost(ctx context.Context, postID string) ([]*entity.Tag, error)
}
