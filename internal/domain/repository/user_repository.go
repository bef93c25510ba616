package repository

import (
	"context"

	"github.com/mosamir/blogging-api/internal/domain/entity"
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error

	// Delete removes every follow edge referencing the user, then the user
	// row itself, in a single transaction. Reports false when the user does
	// not exist.
	Delete(ctx context.Context, id string) (bool, error)

	AssignRole(ctx context.Context, userID, roleName string) error
	RolesOf(ctx context.Context, userID string) ([]string, error)
}
