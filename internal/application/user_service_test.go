package application

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mosamir/blogging-api/config"
	"github.com/mosamir/blogging-api/internal/domain/entity"
	repo "github.com/mosamir/blogging-api/internal/domain/repository"
	"github.com/mosamir/blogging-api/pkg/helpers"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestUserService(s *memStore) *UserService {
	jwt := helpers.NewJWTManager("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)
	cfg := &config.Config{
		AppName:        "blogging-api",
		VerifyEmailURL: "http://localhost:3000/verify",
	}
	return NewUserService(&memUserRepo{s: s}, &memTokenRepo{s: s}, jwt, nil, testLogger(), nil, cfg, nil, "", nil)
}

func tokensOf(s *memStore, userID string) []*entity.EmailVerificationToken {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*entity.EmailVerificationToken{}
	for _, t := range s.tokens {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newTestUserService(store)

	u, err := svc.Register(ctx, "alice", "alice@example.com", "s3cretpass")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.False(t, u.EmailVerified)
	assert.NotEqual(t, "s3cretpass", u.PasswordHash, "password must be stored hashed")

	roles, err := svc.Repo.RolesOf(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{entity.RoleUser}, roles)

	toks := tokensOf(store, u.ID)
	require.Len(t, toks, 1)
	assert.Nil(t, toks[0].ConsumedAt)
	assert.WithinDuration(t, time.Now().Add(entity.VerificationTokenTTL), toks[0].ExpiresAt, time.Minute)
}

func TestRegisterRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	svc := newTestUserService(newMemStore())

	_, err := svc.Register(ctx, "", "nope", "s3cretpass")
	var verr *entity.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Messages, 2)
}

func TestRegisterDuplicates(t *testing.T) {
	ctx := context.Background()
	svc := newTestUserService(newMemStore())

	_, err := svc.Register(ctx, "alice", "alice@example.com", "s3cretpass")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "other@example.com", "s3cretpass")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = svc.Register(ctx, "bob", "alice@example.com", "s3cretpass")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestVerifyEmail(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newTestUserService(store)

	u, err := svc.Register(ctx, "alice", "alice@example.com", "s3cretpass")
	require.NoError(t, err)

	toks := tokensOf(store, u.ID)
	require.Len(t, toks, 1)
	raw := toks[0].Token

	require.NoError(t, svc.VerifyEmail(ctx, raw))

	got, err := svc.Repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.EmailVerified)

	// second consume of the same token fails
	assert.ErrorIs(t, svc.VerifyEmail(ctx, raw), ErrInvalidToken)

	// unknown token fails the same way
	assert.ErrorIs(t, svc.VerifyEmail(ctx, "no-such-token"), ErrInvalidToken)
}

func TestVerifyEmailExpiredToken(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newTestUserService(store)

	u, err := svc.Register(ctx, "alice", "alice@example.com", "s3cretpass")
	require.NoError(t, err)

	stale, err := entity.NewEmailVerificationToken(u.ID, time.Now().UTC().Add(-25*time.Hour), entity.VerificationTokenTTL)
	require.NoError(t, err)
	require.NoError(t, svc.Tokens.Create(ctx, stale))

	assert.ErrorIs(t, svc.VerifyEmail(ctx, stale.Token), ErrInvalidToken)

	got, err := svc.Repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, got.EmailVerified, "expired token must not verify")
}

func TestAuthenticateGate(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newTestUserService(store)

	u, err := svc.Register(ctx, "alice", "alice@example.com", "s3cretpass")
	require.NoError(t, err)

	// correct password but unverified email is rejected
	_, err = svc.Authenticate(ctx, "alice", "s3cretpass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// unknown user gets the exact same error
	_, err = svc.Authenticate(ctx, "nobody", "s3cretpass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	raw := tokensOf(store, u.ID)[0].Token
	require.NoError(t, svc.VerifyEmail(ctx, raw))

	// wrong password still rejected
	_, err = svc.Authenticate(ctx, "alice", "wrongpass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	got, err := svc.Authenticate(ctx, "alice", "s3cretpass")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestLoginIssuesTokens(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newTestUserService(store)

	u, err := svc.Register(ctx, "alice", "alice@example.com", "s3cretpass")
	require.NoError(t, err)
	require.NoError(t, svc.VerifyEmail(ctx, tokensOf(store, u.ID)[0].Token))

	res, pair, err := svc.Login(ctx, "alice", "s3cretpass")
	require.NoError(t, err)
	assert.Equal(t, u.ID, res.UserID)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	claims, err := svc.JWT.ParseAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.NotEmpty(t, claims.SessionID)
}

func TestUpdateUsername(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newTestUserService(store)

	u, err := svc.Register(ctx, "alice", "alice@example.com", "s3cretpass")
	require.NoError(t, err)

	got, err := svc.UpdateUsername(ctx, u.ID, "alice2")
	require.NoError(t, err)
	assert.Equal(t, "alice2", got.Username)

	// invalid name is rejected and nothing is persisted
	_, err = svc.UpdateUsername(ctx, u.ID, "!!")
	var verr *entity.ValidationError
	require.ErrorAs(t, err, &verr)
	stored, err := svc.Repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice2", stored.Username)

	_, err = svc.UpdateUsername(ctx, "missing-id", "whoever")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateUsernameTaken(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newTestUserService(store)

	u, err := svc.Register(ctx, "alice", "alice@example.com", "s3cretpass")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "bob", "bob@example.com", "s3cretpass")
	require.NoError(t, err)

	_, err = svc.UpdateUsername(ctx, u.ID, "bob")
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestUpdateEmailResetsVerification(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newTestUserService(store)

	u, err := svc.Register(ctx, "alice", "alice@example.com", "s3cretpass")
	require.NoError(t, err)
	require.NoError(t, svc.VerifyEmail(ctx, tokensOf(store, u.ID)[0].Token))

	got, err := svc.UpdateEmail(ctx, u.ID, "new@example.com")
	require.NoError(t, err)
	assert.False(t, got.EmailVerified)

	// a fresh token was issued for the new address
	fresh := 0
	for _, tok := range tokensOf(store, u.ID) {
		if tok.ConsumedAt == nil {
			fresh++
		}
	}
	assert.Equal(t, 1, fresh)

	// login is gated again until the new address is verified
	_, err = svc.Authenticate(ctx, "alice", "s3cretpass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestDeleteUserRemovesFollowEdges(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newTestUserService(store)
	follows := NewFollowService(svc.Repo, &memFollowRepo{s: store}, testLogger())

	alice, err := svc.Register(ctx, "alice", "alice@example.com", "s3cretpass")
	require.NoError(t, err)
	bob, err := svc.Register(ctx, "bob", "bob@example.com", "s3cretpass")
	require.NoError(t, err)
	carol, err := svc.Register(ctx, "carol", "carol@example.com", "s3cretpass")
	require.NoError(t, err)

	_, err = follows.Follow(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	_, err = follows.Follow(ctx, alice.ID, carol.ID)
	require.NoError(t, err)
	_, err = follows.Follow(ctx, bob.ID, carol.ID)
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, _, err = svc.GetProfile(ctx, alice.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	assert.Empty(t, edgesOf(store, alice.ID), "no dangling edges may survive the delete")

	// the unrelated edge is untouched
	ok, err := follows.Follows.Exists(ctx, bob.ID, carol.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// deleting again reports false without error
	deleted, err = svc.Delete(ctx, alice.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestRegisterSurvivesMissingRoleRow(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	delete(store.roleNames, entity.RoleUser)
	svc := newTestUserService(store)

	// registration still succeeds, the failed assignment is only logged
	u, err := svc.Register(ctx, "alice", "alice@example.com", "s3cretpass")
	require.NoError(t, err)

	roles, err := svc.Repo.RolesOf(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, roles)

	// the repository reports the missing role row instead of succeeding
	assert.ErrorIs(t, svc.Repo.AssignRole(ctx, u.ID, entity.RoleUser), repo.ErrNotFound)
}

func TestGetProfileIncludesRoles(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newTestUserService(store)

	u, err := svc.Register(ctx, "alice", "alice@example.com", "s3cretpass")
	require.NoError(t, err)

	got, roles, err := svc.GetProfile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, []string{entity.RoleUser}, roles)
}

func TestVerifyEmailLosingConsumeRace(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newTestUserService(store)

	u, err := svc.Register(ctx, "alice", "alice@example.com", "s3cretpass")
	require.NoError(t, err)
	tok := tokensOf(store, u.ID)[0]

	require.NoError(t, svc.VerifyEmail(ctx, tok.Token))

	// the lookup hands out a token that still looks fresh, so the spent
	// check only fires at consume time, as when two verifies race
	svc.Tokens = &staleTokenRepo{&memTokenRepo{s: store}}
	assert.ErrorIs(t, svc.VerifyEmail(ctx, tok.Token), ErrInvalidToken)
}

func TestDeleteUserPurgesIndexedPosts(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	idx := newMemIndex()
	svc := newTestUserService(store)
	svc.PostIndex = idx
	posts := newIndexedPostService(store, idx)

	alice, err := svc.Register(ctx, "alice", "alice@example.com", "s3cretpass")
	require.NoError(t, err)
	bob, err := svc.Register(ctx, "bob", "bob@example.com", "s3cretpass")
	require.NoError(t, err)

	_, err = posts.CreatePost(ctx, alice.ID, "First", "by alice", "")
	require.NoError(t, err)
	_, err = posts.CreatePost(ctx, alice.ID, "Second", "also by alice", "")
	require.NoError(t, err)
	kept, err := posts.CreatePost(ctx, bob.ID, "Third", "by bob", "")
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, alice.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	// only the surviving author's document remains searchable
	assert.Equal(t, []string{kept.ID}, idx.ids())
}
