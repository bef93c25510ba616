package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mosamir/blogging-api/internal/domain/entity"
)

func newTestPostService(s *memStore) *PostService {
	return NewPostService(&memPostRepo{s: s}, &memCommentRepo{s: s}, &memLikeRepo{s: s},
		&memTagRepo{s: s}, testLogger(), nil)
}

func newIndexedPostService(s *memStore, idx *memIndex) *PostService {
	return NewPostService(&memPostRepo{s: s}, &memCommentRepo{s: s}, &memLikeRepo{s: s},
		&memTagRepo{s: s}, testLogger(), idx)
}

func TestCreateAndGetPost(t *testing.T) {
	ctx := context.Background()
	svc := newTestPostService(newMemStore())

	p, err := svc.CreatePost(ctx, "author-1", "First post", "hello world", "")
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)

	detail, err := svc.GetPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, detail.Post.ID)
	assert.Empty(t, detail.Comments)
	assert.Empty(t, detail.Likes)
	assert.Empty(t, detail.Tags)

	_, err = svc.GetPost(ctx, "no-such-post")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestCreatePostValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestPostService(newMemStore())

	_, err := svc.CreatePost(ctx, "author-1", "", "", "")
	var verr *entity.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Messages, 2)
}

func TestUpdatePostAuthorOnly(t *testing.T) {
	ctx := context.Background()
	svc := newTestPostService(newMemStore())

	p, err := svc.CreatePost(ctx, "author-1", "Title", "content", "")
	require.NoError(t, err)

	_, err = svc.UpdatePost(ctx, "someone-else", p.ID, "New", "text")
	assert.ErrorIs(t, err, ErrNotAuthor)

	got, err := svc.UpdatePost(ctx, "author-1", p.ID, "New", "text")
	require.NoError(t, err)
	assert.Equal(t, "New", got.Title)
}

func TestDeletePostCascades(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newTestPostService(store)

	p, err := svc.CreatePost(ctx, "author-1", "Title", "content", "")
	require.NoError(t, err)
	_, err = svc.AddComment(ctx, "reader-1", p.ID, "nice")
	require.NoError(t, err)
	_, err = svc.AddLike(ctx, "reader-1", p.ID, "")
	require.NoError(t, err)

	err = svc.DeletePost(ctx, "someone-else", p.ID)
	assert.ErrorIs(t, err, ErrNotAuthor)

	require.NoError(t, svc.DeletePost(ctx, "author-1", p.ID))
	_, err = svc.GetPost(ctx, p.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Empty(t, store.comments)
	assert.Empty(t, store.likes)
}

func TestComments(t *testing.T) {
	ctx := context.Background()
	svc := newTestPostService(newMemStore())

	p, err := svc.CreatePost(ctx, "author-1", "Title", "content", "")
	require.NoError(t, err)

	c, err := svc.AddComment(ctx, "reader-1", p.ID, "first!")
	require.NoError(t, err)

	_, err = svc.AddComment(ctx, "reader-1", "no-such-post", "hi")
	assert.ErrorIs(t, err, ErrPostNotFound)

	_, err = svc.UpdateComment(ctx, "someone-else", p.ID, c.ID, "edited")
	assert.ErrorIs(t, err, ErrNotAuthor)

	got, err := svc.UpdateComment(ctx, "reader-1", p.ID, c.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Content)

	// comment addressed through the wrong post is not found
	_, err = svc.UpdateComment(ctx, "reader-1", "other-post", c.ID, "edited")
	assert.ErrorIs(t, err, ErrCommentNotFound)

	require.NoError(t, svc.DeleteComment(ctx, "reader-1", p.ID, c.ID))
	list, err := svc.ListComments(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestLikes(t *testing.T) {
	ctx := context.Background()
	svc := newTestPostService(newMemStore())

	p, err := svc.CreatePost(ctx, "author-1", "Title", "content", "")
	require.NoError(t, err)

	l, err := svc.AddLike(ctx, "reader-1", p.ID, "")
	require.NoError(t, err)
	assert.Equal(t, entity.InteractionLike, l.InteractionType)

	_, err = svc.AddLike(ctx, "reader-1", p.ID, "love")
	assert.ErrorIs(t, err, ErrAlreadyLiked)

	_, err = svc.AddLike(ctx, "reader-2", p.ID, "bogus")
	var verr *entity.ValidationError
	assert.ErrorAs(t, err, &verr)

	require.NoError(t, svc.RemoveLike(ctx, "reader-1", p.ID))
	assert.ErrorIs(t, svc.RemoveLike(ctx, "reader-1", p.ID), ErrNotLiked)
}

func TestTags(t *testing.T) {
	ctx := context.Background()
	svc := newTestPostService(newMemStore())

	p, err := svc.CreatePost(ctx, "author-1", "Title", "content", "")
	require.NoError(t, err)

	tag, err := svc.CreateTag(ctx, "GoLang")
	require.NoError(t, err)
	assert.Equal(t, "golang", tag.Name, "tag names are normalized to lowercase")

	_, err = svc.CreateTag(ctx, "golang")
	assert.ErrorIs(t, err, ErrTagTaken)

	byName, err := svc.GetTagByName(ctx, "  GoLang ")
	require.NoError(t, err)
	assert.Equal(t, tag.ID, byName.ID)
	_, err = svc.GetTagByName(ctx, "missing")
	assert.ErrorIs(t, err, ErrTagNotFound)

	assert.ErrorIs(t, svc.AttachTag(ctx, "someone-else", p.ID, tag.ID), ErrNotAuthor)
	require.NoError(t, svc.AttachTag(ctx, "author-1", p.ID, tag.ID))

	detail, err := svc.GetPost(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, detail.Tags, 1)
	assert.Equal(t, "golang", detail.Tags[0].Name)

	require.NoError(t, svc.DetachTag(ctx, "author-1", p.ID, tag.ID))
	assert.ErrorIs(t, svc.DetachTag(ctx, "author-1", p.ID, tag.ID), ErrTagNotFound)
}

func TestSearchWithoutIndexIsEmpty(t *testing.T) {
	ctx := context.Background()
	svc := newTestPostService(newMemStore())

	hits, err := svc.SearchPosts(ctx, "anything", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestDeletePostRemovesItFromIndex(t *testing.T) {
	ctx := context.Background()
	idx := newMemIndex()
	svc := newIndexedPostService(newMemStore(), idx)

	kept, err := svc.CreatePost(ctx, "author-1", "Kept post", "stays around", "")
	require.NoError(t, err)
	doomed, err := svc.CreatePost(ctx, "author-1", "Doomed post", "goes away", "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{kept.ID, doomed.ID}, idx.ids())

	require.NoError(t, svc.DeletePost(ctx, "author-1", doomed.ID))
	assert.Equal(t, []string{kept.ID}, idx.ids())
}

func TestSearchFindsIndexedPosts(t *testing.T) {
	ctx := context.Background()
	idx := newMemIndex()
	svc := newIndexedPostService(newMemStore(), idx)

	p, err := svc.CreatePost(ctx, "author-1", "Gophers at large", "a field report", "")
	require.NoError(t, err)
	_, err = svc.CreatePost(ctx, "author-2", "Unrelated", "nothing to see", "")
	require.NoError(t, err)

	hits, err := svc.SearchPosts(ctx, "gophers", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, p.ID, hits[0]["id"])
}
