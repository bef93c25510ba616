package application

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/mosamir/blogging-api/config"
	"github.com/mosamir/blogging-api/internal/domain/entity"
	repo "github.com/mosamir/blogging-api/internal/domain/repository"
	"github.com/mosamir/blogging-api/pkg/helpers"
	"github.com/mosamir/blogging-api/pkg/mailer"
)

var (
	// ErrInvalidCredentials covers every login rejection: unknown username,
	// unverified email, and wrong password all look the same to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// UserService owns the user aggregate lifecycle: registration, the
// verification-gated login, profile mutation and deletion.
type UserService struct {
	Repo      repo.UserRepository
	Tokens    repo.TokenRepository
	JWT       *helpers.JWTManager
	Redis     *redis.Client
	Logger    *logrus.Logger
	Pub       *helpers.RabbitPublisher
	Cfg       *config.Config
	GCS       *storage.Client
	GCSBucket string
	PostIndex PostIndex
}

func NewUserService(userRepo repo.UserRepository, tokens repo.TokenRepository, jwt *helpers.JWTManager,
	rdb *redis.Client, logger *logrus.Logger, pub *helpers.RabbitPublisher, cfg *config.Config,
	gcs *storage.Client, gcsBucket string, postIndex PostIndex) *UserService {
	return &UserService{
		Repo:      userRepo,
		Tokens:    tokens,
		JWT:       jwt,
		Redis:     rdb,
		Logger:    logger,
		Pub:       pub,
		Cfg:       cfg,
		GCS:       gcs,
		GCSBucket: gcsBucket,
		PostIndex: postIndex,
	}
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

type LoginResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func sessionKey(userID string) string {
	return "user:session:" + userID
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// Register creates a validated user, assigns the default role, and issues a
// verification token whose link is emailed through the queue. Email delivery
// is fire-and-forget: a publish failure is logged, never rolled back into
// the registration.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*entity.User, error) {
	u, err := entity.NewUser(username, email)
	if err != nil {
		return nil, err
	}
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = hash

	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			if existing, lookupErr := s.Repo.GetByUsername(ctx, username); lookupErr == nil && existing != nil {
				return nil, ErrUsernameTaken
			}
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	if err := s.Repo.AssignRole(ctx, u.ID, entity.RoleUser); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("assign default role failed")
	}

	s.issueVerification(ctx, u)
	return u, nil
}

// issueVerification persists a fresh 24h token and enqueues the email.
func (s *UserService) issueVerification(ctx context.Context, u *entity.User) {
	tok, err := entity.NewEmailVerificationToken(u.ID, time.Now().UTC(), entity.VerificationTokenTTL)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("verification token generation failed")
		}
		return
	}
	if err := s.Tokens.Create(ctx, tok); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("verification token persist failed")
		}
		return
	}

	link := s.Cfg.VerifyEmailURL + "?token=" + tok.Token
	if s.Pub == nil || !s.Cfg.MailSendEnabled {
		return
	}
	job := mailer.EmailJob{
		To:       u.Email,
		Template: mailer.TemplateVerifyEmail,
		Data: map[string]any{
			"Name":      u.Username,
			"AppName":   s.Cfg.AppName,
			"VerifyURL": link,
			"ExpiresAt": tok.ExpiresAt.Format(time.RFC3339),
		},
	}
	if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("verification email enqueue failed")
	}
}

// VerifyEmail consumes a verification token: single use, deterministic
// failure when expired or already spent.
func (s *UserService) VerifyEmail(ctx context.Context, token string) error {
	t, err := s.Tokens.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	if err := t.Consume(time.Now().UTC()); err != nil {
		return ErrInvalidToken
	}
	if err := s.Tokens.Consume(ctx, t); err != nil {
		// A concurrent verify can win between the lookup and the update;
		// the loser sees the token as spent, same as any other replay.
		if errors.Is(err, entity.ErrTokenConsumed) || errors.Is(err, repo.ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	return nil
}

// Authenticate resolves the user by username and applies the verification
// gate: an unverified account is rejected before the password is ever
// checked, and every rejection is the same opaque error.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*entity.User, error) {
	u, err := s.Repo.GetByUsername(ctx, username)
	if err != nil || u == nil {
		return nil, ErrInvalidCredentials
	}
	if !u.EmailVerified {
		return nil, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// IssueTokens generates an access/refresh pair and records a session in Redis.
func (s *UserService) IssueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	sid := uuid.NewString()
	access, aexp, err := s.JWT.GenerateAccessToken(u.ID, sid)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		}
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(u.ID, sid)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate refresh token failed")
		}
		return TokenPair{}, err
	}

	if s.Redis != nil {
		fields := map[string]any{
			"user_id":    u.ID,
			"username":   u.Username,
			"email":      u.Email,
			"sid":        sid,
			"logged_in":  true,
			"created_at": nowRFC3339(),
		}
		key := sessionKey(u.ID)
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, 24*time.Hour)
		if _, rErr := pipe.Exec(ctx); rErr != nil && s.Logger != nil {
			s.Logger.WithError(rErr).WithField("key", key).Warn("redis pipeline failed")
		}
	}

	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

func (s *UserService) Login(ctx context.Context, username, password string) (*LoginResponse, TokenPair, error) {
	u, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, TokenPair{}, err
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	resp := &LoginResponse{UserID: u.ID, Username: u.Username, Email: u.Email}
	return resp, pair, nil
}

func (s *UserService) Refresh(ctx context.Context, refreshToken string) (TokenPair, string, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, "", ErrInvalidCredentials
	}
	u, err := s.Repo.GetByID(ctx, claims.UserID)
	if err != nil || u == nil {
		return TokenPair{}, "", ErrInvalidCredentials
	}
	// Session id in Redis must match the token's sid
	if s.Redis != nil {
		key := sessionKey(u.ID)
		data, rErr := s.Redis.HGetAll(ctx, key).Result()
		if rErr != nil || len(data) == 0 || data["sid"] != claims.SessionID {
			return TokenPair{}, "", ErrInvalidCredentials
		}
	}
	// Rotate session id and tokens
	sid := uuid.NewString()
	access, aexp, err := s.JWT.GenerateAccessToken(u.ID, sid)
	if err != nil {
		return TokenPair{}, "", err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(u.ID, sid)
	if err != nil {
		return TokenPair{}, "", err
	}
	if s.Redis != nil {
		key := sessionKey(u.ID)
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, map[string]any{
			"sid":        sid,
			"updated_at": nowRFC3339(),
		})
		pipe.Expire(ctx, key, 24*time.Hour)
		_, _ = pipe.Exec(ctx)
	}
	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, u.ID, nil
}

// Logout drops the Redis session.
func (s *UserService) Logout(ctx context.Context, userID string) {
	if s.Redis != nil && userID != "" {
		_ = s.Redis.Del(ctx, sessionKey(userID)).Err()
	}
}

// GetProfile loads the user together with their assigned role names.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*entity.User, []string, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil || u == nil {
		return nil, nil, ErrUserNotFound
	}
	roles, err := s.Repo.RolesOf(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return u, roles, nil
}

// UpdateUsername re-validates the new name through the aggregate before
// persisting.
func (s *UserService) UpdateUsername(ctx context.Context, userID, username string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}
	if err := u.SetUsername(username); err != nil {
		return nil, err
	}
	if err := s.Repo.Update(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	s.refreshSession(ctx, u)
	return u, nil
}

// UpdateEmail re-validates the address, drops the verified flag and issues
// a fresh verification token for the new address.
func (s *UserService) UpdateEmail(ctx context.Context, userID, email string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}
	changed := u.Email != email
	if err := u.SetEmail(email); err != nil {
		return nil, err
	}
	if err := s.Repo.Update(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	if changed {
		s.issueVerification(ctx, u)
	}
	s.refreshSession(ctx, u)
	return u, nil
}

// UpdateBasicInfo applies the free-form profile fields.
func (s *UserService) UpdateBasicInfo(ctx context.Context, userID string, info entity.BasicInfo) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}
	if err := u.UpdateBasicInfo(info); err != nil {
		return nil, err
	}
	if err := s.Repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// SetProfileImage records an externally hosted image URL; an empty URL
// clears the image.
func (s *UserService) SetProfileImage(ctx context.Context, userID, url string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}
	u.SetProfileImage(url)
	if err := s.Repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// UploadAvatar stores the image in GCS and records its public URL as the
// profile image.
func (s *UserService) UploadAvatar(ctx context.Context, userID string, r io.Reader, filename, contentType string) (string, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil || u == nil {
		return "", ErrUserNotFound
	}
	if s.GCS == nil || s.GCSBucket == "" {
		return "", errors.New("gcs not configured")
	}
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("avatars", userID, uuid.NewString()+ext))
	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return "", err
	}
	u.SetProfileImage(url)
	if err := s.Repo.Update(ctx, u); err != nil {
		return "", err
	}
	return url, nil
}

// Delete removes the user together with every follow edge referencing them;
// both removals are one transaction at the storage layer. A missing user
// reports false, not an error. The user's posts cascade away in SQL, so
// their search documents are purged here too.
func (s *UserService) Delete(ctx context.Context, userID string) (bool, error) {
	deleted, err := s.Repo.Delete(ctx, userID)
	if err != nil {
		return false, err
	}
	if deleted {
		s.Logout(ctx, userID)
		if s.PostIndex != nil {
			s.PostIndex.RemoveUserPosts(ctx, userID)
		}
	}
	return deleted, nil
}

const resetTokenTTL = 30 * time.Minute

func resetKey(token string) string {
	return "user:pwreset:" + token
}

type resetEntry struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// RequestPasswordReset enqueues a reset email when the address exists.
// The result is identical either way so the endpoint does not leak
// which emails are registered.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) error {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil
		}
		return err
	}

	token := uuid.NewString()
	entry := resetEntry{UserID: u.ID, Email: u.Email}
	if err := helpers.RedisSetJSON(ctx, s.Redis, resetKey(token), entry, resetTokenTTL); err != nil {
		return err
	}

	if s.Pub == nil || !s.Cfg.MailSendEnabled {
		return nil
	}
	job := mailer.EmailJob{
		To:       u.Email,
		Template: mailer.TemplateResetPassword,
		Data: map[string]any{
			"Name":      u.Username,
			"AppName":   s.Cfg.AppName,
			"ResetURL":  s.Cfg.ResetPasswordURL + "?token=" + token,
			"ExpiresAt": time.Now().Add(resetTokenTTL).Format(time.RFC3339),
		},
	}
	if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("reset email enqueue failed")
	}
	return nil
}

// ResetPassword consumes a reset token and sets the new password.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	key := resetKey(token)
	var entry resetEntry
	found, err := helpers.RedisGetJSON(ctx, s.Redis, key, &entry)
	if err != nil || !found {
		return ErrInvalidToken
	}
	_ = helpers.RedisDel(ctx, s.Redis, key)

	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.Repo.UpdatePassword(ctx, entry.UserID, hash); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	s.Logout(ctx, entry.UserID)
	return nil
}

func (s *UserService) refreshSession(ctx context.Context, u *entity.User) {
	if s.Redis == nil {
		return
	}
	key := sessionKey(u.ID)
	pipe := s.Redis.Pipeline()
	pipe.HSet(ctx, key, map[string]any{
		"username":   u.Username,
		"email":      u.Email,
		"updated_at": nowRFC3339(),
	})
	if ttl, tErr := s.Redis.TTL(ctx, key).Result(); tErr == nil && ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	}
	if _, pErr := pipe.Exec(ctx); pErr != nil && s.Logger != nil {
		s.Logger.WithError(pErr).WithField("key", key).Warn("redis pipeline failed")
	}
}
