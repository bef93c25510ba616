package application

import (
	"context"
	"strings"
	"sync"

	"github.com/mosamir/blogging-api/internal/domain/entity"
	repo "github.com/mosamir/blogging-api/internal/domain/repository"
)

// memStore backs the in-memory repositories used by the service tests.
// Follow edge mutations adjust the user counters the same way the SQL
// implementations do.
type memStore struct {
	mu      sync.Mutex
	users     map[string]*entity.User
	follows   map[string]*entity.Follow
	tokens    map[string]*entity.EmailVerificationToken
	roles     map[string][]string
	roleNames map[string]bool

	posts    map[string]*entity.Post
	comments map[string]*entity.Comment
	likes    map[string]*entity.Like
	tags     map[string]*entity.Tag
	postTags map[string]map[string]bool
}

func newMemStore() *memStore {
	return &memStore{
		users:   map[string]*entity.User{},
		follows: map[string]*entity.Follow{},
		tokens:  map[string]*entity.EmailVerificationToken{},
		roles:   map[string][]string{},
		// Mirrors the role rows seeded by the init migration.
		roleNames: map[string]bool{entity.RoleUser: true, entity.RoleAdmin: true},
		posts:    map[string]*entity.Post{},
		comments: map[string]*entity.Comment{},
		likes:    map[string]*entity.Like{},
		tags:     map[string]*entity.Tag{},
		postTags: map[string]map[string]bool{},
	}
}

func edgeKey(followerID, followedID string) string {
	return followerID + "|" + followedID
}

func copyUser(u *entity.User) *entity.User {
	cp := *u
	return &cp
}

type memUserRepo struct{ s *memStore }

func (r *memUserRepo) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.users {
		if other.Username == u.Username || other.Email == u.Email {
			return repo.ErrDuplicate
		}
	}
	r.s.users[u.ID] = copyUser(u)
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return copyUser(u), nil
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username {
			return copyUser(u), nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *memUserRepo) Update(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.users[u.ID]
	if !ok {
		return repo.ErrNotFound
	}
	for id, other := range r.s.users {
		if id == u.ID {
			continue
		}
		if other.Username == u.Username || other.Email == u.Email {
			return repo.ErrDuplicate
		}
	}
	cp := copyUser(u)
	// counters are owned by the follow edge mutations, not by Update
	cp.FollowersCount = stored.FollowersCount
	cp.FollowingCount = stored.FollowingCount
	r.s.users[u.ID] = cp
	return nil
}

func (r *memUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return false, nil
	}
	for k, f := range r.s.follows {
		if f.FollowerID == id || f.FollowedID == id {
			delete(r.s.follows, k)
		}
	}
	delete(r.s.users, id)
	return true, nil
}

func (r *memUserRepo) AssignRole(_ context.Context, userID, roleName string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if !r.s.roleNames[roleName] {
		return repo.ErrNotFound
	}
	for _, existing := range r.s.roles[userID] {
		if existing == roleName {
			return nil
		}
	}
	r.s.roles[userID] = append(r.s.roles[userID], roleName)
	return nil
}

func (r *memUserRepo) RolesOf(_ context.Context, userID string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]string(nil), r.s.roles[userID]...), nil
}

type memFollowRepo struct{ s *memStore }

func (r *memFollowRepo) Create(_ context.Context, f *entity.Follow) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := edgeKey(f.FollowerID, f.FollowedID)
	if _, ok := r.s.follows[key]; ok {
		return repo.ErrDuplicate
	}
	cp := *f
	r.s.follows[key] = &cp
	if u, ok := r.s.users[f.FollowerID]; ok {
		u.FollowingCount++
	}
	if u, ok := r.s.users[f.FollowedID]; ok {
		u.FollowersCount++
	}
	return nil
}

func (r *memFollowRepo) Delete(_ context.Context, followerID, followedID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := edgeKey(followerID, followedID)
	if _, ok := r.s.follows[key]; !ok {
		return false, nil
	}
	delete(r.s.follows, key)
	if u, ok := r.s.users[followerID]; ok && u.FollowingCount > 0 {
		u.FollowingCount--
	}
	if u, ok := r.s.users[followedID]; ok && u.FollowersCount > 0 {
		u.FollowersCount--
	}
	return true, nil
}

func (r *memFollowRepo) Exists(_ context.Context, followerID, followedID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.follows[edgeKey(followerID, followedID)]
	return ok, nil
}

func (r *memFollowRepo) ListFollowers(_ context.Context, userID string) ([]*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*entity.User{}
	for _, f := range r.s.follows {
		if f.FollowedID == userID {
			if u, ok := r.s.users[f.FollowerID]; ok {
				out = append(out, copyUser(u))
			}
		}
	}
	return out, nil
}

func (r *memFollowRepo) ListFollowing(_ context.Context, userID string) ([]*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*entity.User{}
	for _, f := range r.s.follows {
		if f.FollowerID == userID {
			if u, ok := r.s.users[f.FollowedID]; ok {
				out = append(out, copyUser(u))
			}
		}
	}
	return out, nil
}

// edgesOf collects every stored edge touching userID, as follower or
// followed.
func edgesOf(s *memStore, userID string) []*entity.Follow {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*entity.Follow{}
	for _, f := range s.follows {
		if f.FollowerID == userID || f.FollowedID == userID {
			cp := *f
			out = append(out, &cp)
		}
	}
	return out
}

type memTokenRepo struct{ s *memStore }

func (r *memTokenRepo) Create(_ context.Context, t *entity.EmailVerificationToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *t
	r.s.tokens[t.Token] = &cp
	return nil
}

func (r *memTokenRepo) GetByToken(_ context.Context, token string) (*entity.EmailVerificationToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tokens[token]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *memTokenRepo) Consume(_ context.Context, t *entity.EmailVerificationToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.tokens[t.Token]
	if !ok {
		return repo.ErrNotFound
	}
	if stored.ConsumedAt != nil {
		return entity.ErrTokenConsumed
	}
	stored.ConsumedAt = t.ConsumedAt
	if u, ok := r.s.users[stored.UserID]; ok {
		u.EmailVerified = true
	}
	return nil
}

type memPostRepo struct{ s *memStore }

func (r *memPostRepo) Create(_ context.Context, p *entity.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *p
	r.s.posts[p.ID] = &cp
	return nil
}

func (r *memPostRepo) GetByID(_ context.Context, id string) (*entity.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.posts[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memPostRepo) ListByUser(_ context.Context, userID string) ([]*entity.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*entity.Post{}
	for _, p := range r.s.posts {
		if p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memPostRepo) Update(_ context.Context, p *entity.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.posts[p.ID]; !ok {
		return repo.ErrNotFound
	}
	cp := *p
	r.s.posts[p.ID] = &cp
	return nil
}

func (r *memPostRepo) Delete(_ context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.posts[id]; !ok {
		return false, nil
	}
	delete(r.s.posts, id)
	for cid, c := range r.s.comments {
		if c.PostID == id {
			delete(r.s.comments, cid)
		}
	}
	for lid, l := range r.s.likes {
		if l.PostID == id {
			delete(r.s.likes, lid)
		}
	}
	delete(r.s.postTags, id)
	return true, nil
}

type memCommentRepo struct{ s *memStore }

func (r *memCommentRepo) Create(_ context.Context, c *entity.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *c
	r.s.comments[c.ID] = &cp
	return nil
}

func (r *memCommentRepo) GetByID(_ context.Context, id string) (*entity.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.comments[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *memCommentRepo) ListByPost(_ context.Context, postID string) ([]*entity.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*entity.Comment{}
	for _, c := range r.s.comments {
		if c.PostID == postID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memCommentRepo) Update(_ context.Context, c *entity.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.comments[c.ID]; !ok {
		return repo.ErrNotFound
	}
	cp := *c
	r.s.comments[c.ID] = &cp
	return nil
}

func (r *memCommentRepo) Delete(_ context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.comments[id]; !ok {
		return false, nil
	}
	delete(r.s.comments, id)
	return true, nil
}

type memLikeRepo struct{ s *memStore }

func (r *memLikeRepo) Create(_ context.Context, l *entity.Like) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := l.PostID + "|" + l.UserID
	if _, ok := r.s.likes[key]; ok {
		return repo.ErrDuplicate
	}
	cp := *l
	r.s.likes[key] = &cp
	return nil
}

func (r *memLikeRepo) ListByPost(_ context.Context, postID string) ([]*entity.Like, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*entity.Like{}
	for _, l := range r.s.likes {
		if l.PostID == postID {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memLikeRepo) Delete(_ context.Context, postID, userID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := postID + "|" + userID
	if _, ok := r.s.likes[key]; !ok {
		return false, nil
	}
	delete(r.s.likes, key)
	return true, nil
}

type memTagRepo struct{ s *memStore }

func (r *memTagRepo) Create(_ context.Context, t *entity.Tag) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.tags {
		if other.Name == t.Name {
			return repo.ErrDuplicate
		}
	}
	cp := *t
	r.s.tags[t.ID] = &cp
	return nil
}

func (r *memTagRepo) GetByID(_ context.Context, id string) (*entity.Tag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tags[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *memTagRepo) GetByName(_ context.Context, name string) (*entity.Tag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.tags {
		if t.Name == name {
			cp := *t
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *memTagRepo) Attach(_ context.Context, postID, tagID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.postTags[postID] == nil {
		r.s.postTags[postID] = map[string]bool{}
	}
	r.s.postTags[postID][tagID] = true
	return nil
}

func (r *memTagRepo) Detach(_ context.Context, postID, tagID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if !r.s.postTags[postID][tagID] {
		return false, nil
	}
	delete(r.s.postTags[postID], tagID)
	return true, nil
}

func (r *memTagRepo) ListByPost(_ context.Context, postID string) ([]*entity.Tag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*entity.Tag{}
	for tagID := range r.s.postTags[postID] {
		if t, ok := r.s.tags[tagID]; ok {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

// memIndex is an in-memory PostIndex that keeps whole posts so tests can
// observe which documents survive each mutation.
type memIndex struct {
	mu   sync.Mutex
	docs map[string]*entity.Post
}

func newMemIndex() *memIndex {
	return &memIndex{docs: map[string]*entity.Post{}}
}

func (x *memIndex) IndexPost(_ context.Context, p *entity.Post) {
	x.mu.Lock()
	defer x.mu.Unlock()
	cp := *p
	x.docs[p.ID] = &cp
}

func (x *memIndex) RemovePost(_ context.Context, postID string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.docs, postID)
}

func (x *memIndex) RemoveUserPosts(_ context.Context, userID string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	for id, p := range x.docs {
		if p.UserID == userID {
			delete(x.docs, id)
		}
	}
}

func (x *memIndex) Search(_ context.Context, q string, size int) ([]map[string]any, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if size <= 0 {
		size = 10
	}
	q = strings.ToLower(q)
	out := []map[string]any{}
	for _, p := range x.docs {
		if len(out) >= size {
			break
		}
		if strings.Contains(strings.ToLower(p.Title), q) || strings.Contains(strings.ToLower(p.Content), q) {
			out = append(out, map[string]any{"id": p.ID, "user_id": p.UserID, "title": p.Title})
		}
	}
	return out, nil
}

func (x *memIndex) ids() []string {
	x.mu.Lock()
	defer x.mu.Unlock()
	out := []string{}
	for id := range x.docs {
		out = append(out, id)
	}
	return out
}

// staleTokenRepo serves tokens that always look unconsumed, so the spent
// check happens only at consume time.
type staleTokenRepo struct {
	*memTokenRepo
}

func (r *staleTokenRepo) GetByToken(ctx context.Context, token string) (*entity.EmailVerificationToken, error) {
	t, err := r.memTokenRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	t.ConsumedAt = nil
	return t, nil
}
