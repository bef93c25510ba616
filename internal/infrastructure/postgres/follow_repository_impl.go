package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mosamir/blogging-api/internal/domain/entity"
	"github.com/mosamir/blogging-api/internal/domain/repository"
)

type FollowRepository struct {
	pool *pgxpool.Pool
}

func NewFollowRepository(pool *pgxpool.Pool) *FollowRepository {
	return &FollowRepository{pool: pool}
}

// Create inserts the edge and adjusts both counters in one transaction.
// Counter updates are plain SQL increments, so two concurrent follows on the
// same user cannot lose an update.
func (r *FollowRepository) Create(ctx context.Context, f *entity.Follow) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
		INSERT INTO follows (id, follower_id, followed_id)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, f.ID, f.FollowerID, f.FollowedID)
	if err := row.Scan(&f.CreatedAt); err != nil {
		return mapPgErr(err)
	}
	if _, err := tx.Exec(ctx, `
		UPDATE users SET following_count = following_count + 1, updated_at = now() WHERE id = $1
	`, f.FollowerID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
		UPDATE users SET followers_count = followers_count + 1, updated_at = now() WHERE id = $1
	`, f.FollowedID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Delete removes the edge and decrements both counters, floored at zero.
func (r *FollowRepository) Delete(ctx context.Context, followerID, followedID string) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	res, err := tx.Exec(ctx, `
		DELETE FROM follows WHERE follower_id = $1 AND followed_id = $2
	`, followerID, followedID)
	if err != nil {
		return false, err
	}
	if res.RowsAffected() == 0 {
		return false, nil
	}
	if _, err := tx.Exec(ctx, `
		UPDATE users SET following_count = GREATEST(following_count - 1, 0), updated_at = now() WHERE id = $1
	`, followerID); err != nil {
		return false, err
	}
	if _, err := tx.Exec(ctx, `
		UPDATE users SET followers_count = GREATEST(followers_count - 1, 0), updated_at = now() WHERE id = $1
	`, followedID); err != nil {
		return false, err
	}
	return true, tx.Commit(ctx)
}

func (r *FollowRepository) Exists(ctx context.Context, followerID, followedID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM follows WHERE follower_id = $1 AND followed_id = $2)
	`, followerID, followedID).Scan(&exists)
	return exists, err
}

// qualified variant of userColumns for queries that join follows, where
// id and created_at would otherwise be ambiguous
const joinedUserColumns = `u.id, u.username, u.email, u.password_hash, u.display_name, u.bio, u.location,
	u.profile_image, u.email_verified, u.followers_count, u.following_count, u.created_at, u.updated_at`

func (r *FollowRepository) ListFollowers(ctx context.Context, userID string) ([]*entity.User, error) {
	return r.listUsers(ctx, `
		SELECT `+joinedUserColumns+`
		FROM users u
		JOIN follows f ON f.follower_id = u.id
		WHERE f.followed_id = $1
		ORDER BY f.created_at DESC
	`, userID)
}

func (r *FollowRepository) ListFollowing(ctx context.Context, userID string) ([]*entity.User, error) {
	return r.listUsers(ctx, `
		SELECT `+joinedUserColumns+`
		FROM users u
		JOIN follows f ON f.followed_id = u.id
		WHERE f.follower_id = $1
		ORDER BY f.created_at DESC
	`, userID)
}

func (r *FollowRepository) listUsers(ctx context.Context, query, userID string) ([]*entity.User, error) {
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

var _ repository.FollowRepository = (*FollowRepository)(nil)
