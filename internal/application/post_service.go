package application

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mosamir/blogging-api/internal/domain/entity"
	repo "github.com/mosamir/blogging-api/internal/domain/repository"
)

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrTagNotFound     = errors.New("tag not found")
	ErrTagTaken        = errors.New("tag already exists")
	ErrNotAuthor       = errors.New("not the author")
	ErrAlreadyLiked    = errors.New("already liked")
	ErrNotLiked        = errors.New("not liked")
)

// PostService owns post content and its interactions: comments, likes and
// tags. Posts are mirrored into the search index on every write.
type PostService struct {
	Posts    repo.PostRepository
	Comments repo.CommentRepository
	Likes    repo.LikeRepository
	Tags     repo.TagRepository
	Logger   *logrus.Logger
	Index    PostIndex
}

func NewPostService(posts repo.PostRepository, comments repo.CommentRepository, likes repo.LikeRepository,
	tags repo.TagRepository, logger *logrus.Logger, index PostIndex) *PostService {
	return &PostService{
		Posts:    posts,
		Comments: comments,
		Likes:    likes,
		Tags:     tags,
		Logger:   logger,
		Index:    index,
	}
}

// PostDetail is a post with its loaded interactions.
type PostDetail struct {
	Post     *entity.Post
	Comments []*entity.Comment
	Likes    []*entity.Like
	Tags     []*entity.Tag
}

func (s *PostService) CreatePost(ctx context.Context, userID, title, content, imageURL string) (*entity.Post, error) {
	p, err := entity.NewPost(userID, title, content, imageURL)
	if err != nil {
		return nil, err
	}
	if err := s.Posts.Create(ctx, p); err != nil {
		return nil, err
	}
	s.indexPost(ctx, p)
	return p, nil
}

// GetPost loads the post with its comments, likes and tags.
func (s *PostService) GetPost(ctx context.Context, postID string) (*PostDetail, error) {
	p, err := s.Posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	comments, err := s.Comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	likes, err := s.Likes.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	tags, err := s.Tags.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	return &PostDetail{Post: p, Comments: comments, Likes: likes, Tags: tags}, nil
}

func (s *PostService) ListByUser(ctx context.Context, userID string) ([]*entity.Post, error) {
	return s.Posts.ListByUser(ctx, userID)
}

// UpdatePost applies new text; only the author may edit.
func (s *PostService) UpdatePost(ctx context.Context, userID, postID, title, content string) (*entity.Post, error) {
	p, err := s.Posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	if !p.AuthoredBy(userID) {
		return nil, ErrNotAuthor
	}
	if err := p.UpdateText(title, content); err != nil {
		return nil, err
	}
	if err := s.Posts.Update(ctx, p); err != nil {
		return nil, err
	}
	s.indexPost(ctx, p)
	return p, nil
}

// DeletePost removes the post; comments, likes and tag attachments cascade
// at the storage layer. Only the author may delete.
func (s *PostService) DeletePost(ctx context.Context, userID, postID string) error {
	p, err := s.Posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrPostNotFound
		}
		return err
	}
	if !p.AuthoredBy(userID) {
		return ErrNotAuthor
	}
	if _, err := s.Posts.Delete(ctx, postID); err != nil {
		return err
	}
	s.removeFromIndex(ctx, postID)
	return nil
}

func (s *PostService) AddComment(ctx context.Context, userID, postID, content string) (*entity.Comment, error) {
	if _, err := s.Posts.GetByID(ctx, postID); err != nil {
		return nil, ErrPostNotFound
	}
	c, err := entity.NewComment(postID, userID, content)
	if err != nil {
		return nil, err
	}
	if err := s.Comments.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateComment applies new text; only the comment's author may edit.
func (s *PostService) UpdateComment(ctx context.Context, userID, postID, commentID, content string) (*entity.Comment, error) {
	c, err := s.Comments.GetByID(ctx, commentID)
	if err != nil || c.PostID != postID {
		return nil, ErrCommentNotFound
	}
	if !c.AuthoredBy(userID) {
		return nil, ErrNotAuthor
	}
	if err := c.UpdateContent(content); err != nil {
		return nil, err
	}
	if err := s.Comments.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteComment removes a comment; only its author may delete it.
func (s *PostService) DeleteComment(ctx context.Context, userID, postID, commentID string) error {
	c, err := s.Comments.GetByID(ctx, commentID)
	if err != nil || c.PostID != postID {
		return ErrCommentNotFound
	}
	if !c.AuthoredBy(userID) {
		return ErrNotAuthor
	}
	_, err = s.Comments.Delete(ctx, commentID)
	return err
}

func (s *PostService) ListComments(ctx context.Context, postID string) ([]*entity.Comment, error) {
	if _, err := s.Posts.GetByID(ctx, postID); err != nil {
		return nil, ErrPostNotFound
	}
	return s.Comments.ListByPost(ctx, postID)
}

// AddLike records the user's interaction; a second like on the same post is
// rejected.
func (s *PostService) AddLike(ctx context.Context, userID, postID, interactionType string) (*entity.Like, error) {
	if _, err := s.Posts.GetByID(ctx, postID); err != nil {
		return nil, ErrPostNotFound
	}
	l, err := entity.NewLike(postID, userID, interactionType)
	if err != nil {
		return nil, err
	}
	if err := s.Likes.Create(ctx, l); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrAlreadyLiked
		}
		return nil, err
	}
	return l, nil
}

// RemoveLike deletes the user's own like on the post.
func (s *PostService) RemoveLike(ctx context.Context, userID, postID string) error {
	removed, err := s.Likes.Delete(ctx, postID, userID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotLiked
	}
	return nil
}

func (s *PostService) ListLikes(ctx context.Context, postID string) ([]*entity.Like, error) {
	if _, err := s.Posts.GetByID(ctx, postID); err != nil {
		return nil, ErrPostNotFound
	}
	return s.Likes.ListByPost(ctx, postID)
}

func (s *PostService) CreateTag(ctx context.Context, name string) (*entity.Tag, error) {
	t, err := entity.NewTag(name)
	if err != nil {
		return nil, err
	}
	if err := s.Tags.Create(ctx, t); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrTagTaken
		}
		return nil, err
	}
	return t, nil
}

// GetTagByName resolves a tag by its normalized name.
func (s *PostService) GetTagByName(ctx context.Context, name string) (*entity.Tag, error) {
	t, err := s.Tags.GetByName(ctx, strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, err
	}
	return t, nil
}

// AttachTag files the post under the tag; only the post's author may do it.
func (s *PostService) AttachTag(ctx context.Context, userID, postID, tagID string) error {
	p, err := s.Posts.GetByID(ctx, postID)
	if err != nil {
		return ErrPostNotFound
	}
	if !p.AuthoredBy(userID) {
		return ErrNotAuthor
	}
	if _, err := s.Tags.GetByID(ctx, tagID); err != nil {
		return ErrTagNotFound
	}
	return s.Tags.Attach(ctx, postID, tagID)
}

// DetachTag removes the tag from the post; only the post's author may do it.
func (s *PostService) DetachTag(ctx context.Context, userID, postID, tagID string) error {
	p, err := s.Posts.GetByID(ctx, postID)
	if err != nil {
		return ErrPostNotFound
	}
	if !p.AuthoredBy(userID) {
		return ErrNotAuthor
	}
	removed, err := s.Tags.Detach(ctx, postID, tagID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrTagNotFound
	}
	return nil
}

func (s *PostService) indexPost(ctx context.Context, p *entity.Post) {
	if s.Index == nil {
		return
	}
	s.Index.IndexPost(ctx, p)
}

func (s *PostService) removeFromIndex(ctx context.Context, postID string) {
	if s.Index == nil {
		return
	}
	s.Index.RemovePost(ctx, postID)
}

// SearchPosts queries the search index; with no index configured the result
// is empty rather than an error.
func (s *PostService) SearchPosts(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.Index == nil {
		return []map[string]any{}, nil
	}
	return s.Index.Search(ctx, q, size)
}
