package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mosamir/blogging-api/internal/domain/entity"
	"github.com/mosamir/blogging-api/internal/domain/repository"
)

type TokenRepository struct {
	pool *pgxpool.Pool
}

func NewTokenRepository(pool *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{pool: pool}
}

func (r *TokenRepository) Create(ctx context.Context, t *entity.EmailVerificationToken) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO email_verification_tokens (id, user_id, token, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, t.ID, t.UserID, t.Token, t.ExpiresAt, t.CreatedAt)
	return mapPgErr(err)
}

func (r *TokenRepository) GetByToken(ctx context.Context, token string) (*entity.EmailVerificationToken, error) {
	t := &entity.EmailVerificationToken{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, token, expires_at, consumed_at, created_at
		FROM email_verification_tokens
		WHERE token = $1
	`, token).Scan(&t.ID, &t.UserID, &t.Token, &t.ExpiresAt, &t.ConsumedAt, &t.CreatedAt)
	if err != nil {
		return nil, mapPgErr(err)
	}
	return t, nil
}

// Consume stamps the token and flips the user's verified flag in one
// transaction, so the token can never be spent without the flag flipping.
func (r *TokenRepository) Consume(ctx context.Context, t *entity.EmailVerificationToken) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	res, err := tx.Exec(ctx, `
		UPDATE email_verification_tokens
		SET consumed_at = $1
		WHERE id = $2 AND consumed_at IS NULL
	`, t.ConsumedAt, t.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return entity.ErrTokenConsumed
	}
	if _, err := tx.Exec(ctx, `
		UPDATE users SET email_verified = TRUE, updated_at = now() WHERE id = $1
	`, t.UserID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

var _ repository.TokenRepository = (*TokenRepository)(nil)
