package repository

import (
	"context"

	"github.com/mosamir/blogging-api/internal/domain/entity"
)

// TokenRepository defines the interface for email verification tokens.
type TokenRepository interface {
	Create(ctx context.Context, t *entity.EmailVerificationToken) error
	GetByToken(ctx context.Context, token string) (*entity.EmailVerificationToken, error)

	// Consume stamps the token consumed and flips the owning user's
	// email_verified flag, both in one transaction.
	Consume(ctx context.Context, t *entity.EmailVerificationToken) error
}
