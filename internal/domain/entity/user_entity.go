package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the aggregate root for the user domain.
// Passwords are stored as bcrypt hashes in PasswordHash.
//
// The aggregate carries only identifiers and derived counters; posts,
// comments, likes and follow edges are loaded on demand by repositories
// and are never held as in-memory collections here.
type User struct {
	ID            string
	Username      string `validate:"required,min=3,max=32,alphanum"`
	Email         string `validate:"required,email"`
	PasswordHash  string
	BasicInfo     BasicInfo
	ProfileImage  string
	EmailVerified bool

	// FollowersCount and FollowingCount mirror the number of active
	// incoming/outgoing follow edges. They are adjusted incrementally by
	// the follow component, never recomputed by scanning.
	FollowersCount int
	FollowingCount int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// BasicInfo holds the free-form profile fields of a user.
type BasicInfo struct {
	DisplayName string `validate:"max=64"`
	Bio         string `validate:"max=500"`
	Location    string `validate:"max=64"`
}

// NewUser builds a validated user with a fresh id, zeroed counters and an
// unverified email. Returns *ValidationError when any field is invalid.
func NewUser(username, email string) (*User, error) {
	u := &User{
		ID:       uuid.NewString(),
		Username: username,
		Email:    email,
	}
	if err := validateAggregated(u); err != nil {
		return nil, err
	}
	return u, nil
}

// SetUsername validates and applies a new username.
func (u *User) SetUsername(username string) error {
	prev := u.Username
	u.Username = username
	if err := validateAggregated(u); err != nil {
		u.Username = prev
		return err
	}
	return nil
}

// SetEmail validates and applies a new email. A changed address must be
// re-verified, so the verified flag drops back to false.
func (u *User) SetEmail(email string) error {
	prev := u.Email
	u.Email = email
	if err := validateAggregated(u); err != nil {
		u.Email = prev
		return err
	}
	if email != prev {
		u.EmailVerified = false
	}
	return nil
}

// SetProfileImage replaces the profile image URL. An empty URL clears it.
func (u *User) SetProfileImage(url string) {
	u.ProfileImage = url
}

// UpdateBasicInfo validates and applies the profile fields.
func (u *User) UpdateBasicInfo(info BasicInfo) error {
	if err := validateAggregated(&info); err != nil {
		return err
	}
	u.BasicInfo = info
	return nil
}

// IncrementFollowers records one new incoming follow edge.
func (u *User) IncrementFollowers() {
	u.FollowersCount++
}

// DecrementFollowers records the removal of an incoming follow edge.
// The counter never goes below zero.
func (u *User) DecrementFollowers() {
	if u.FollowersCount > 0 {
		u.FollowersCount--
	}
}

// IncrementFollowing records one new outgoing follow edge.
func (u *User) IncrementFollowing() {
	u.FollowingCount++
}

// DecrementFollowing records the removal of an outgoing follow edge.
// The counter never goes below zero.
func (u *User) DecrementFollowing() {
	if u.FollowingCount > 0 {
		u.FollowingCount--
	}
}
