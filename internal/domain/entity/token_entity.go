package entity

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrTokenExpired is returned when a verification token is consumed
	// after its expiry.
	ErrTokenExpired = errors.New("verification token expired")
	// ErrTokenConsumed is returned when a verification token is consumed
	// a second time.
	ErrTokenConsumed = errors.New("verification token already consumed")
)

// VerificationTokenTTL is how long a freshly issued token stays valid.
const VerificationTokenTTL = 24 * time.Hour

// EmailVerificationToken is a single-use, time-limited credential proving
// control of an email address.
type EmailVerificationToken struct {
	ID         string
	UserID     string
	Token      string
	ExpiresAt  time.Time
	ConsumedAt *time.Time
	CreatedAt  time.Time
}

// NewEmailVerificationToken issues a token for the given user, valid from
// now until now+ttl.
func NewEmailVerificationToken(userID string, now time.Time, ttl time.Duration) (*EmailVerificationToken, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, err
	}
	return &EmailVerificationToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		Token:     base64.RawURLEncoding.EncodeToString(raw),
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}, nil
}

// Expired reports whether the token is past its expiry at the given time.
func (t *EmailVerificationToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// Consume marks the token used. It fails deterministically when the token
// is already consumed or expired.
func (t *EmailVerificationToken) Consume(now time.Time) error {
	if t.ConsumedAt != nil {
		return ErrTokenConsumed
	}
	if t.Expired(now) {
		return ErrTokenExpired
	}
	at := now
	t.ConsumedAt = &at
	return nil
}
