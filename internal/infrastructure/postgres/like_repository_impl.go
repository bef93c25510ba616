package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mosamir/blogging-api/internal/domain/entity"
	"github.com/mosamir/blogging-api/internal/domain/repository"
)

type LikeRepository struct {
	pool *pgxpool.Pool
}

func NewLikeRepository(pool *pgxpool.Pool) *LikeRepository {
	return &LikeRepository{pool: pool}
}

func (r *LikeRepository) Create(ctx context.Context, l *entity.Like) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO likes (id, post_id, user_id, interaction_type)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, l.ID, l.PostID, l.UserID, l.InteractionType)
	return mapPgErr(row.Scan(&l.CreatedAt))
}

func (r *LikeRepository) ListByPost(ctx context.Context, postID string) ([]*entity.Like, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, post_id, user_id, interaction_type, created_at
		FROM likes
		WHERE post_id = $1
		ORDER BY created_at
	`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var likes []*entity.Like
	for rows.Next() {
		l := &entity.Like{}
		if err := rows.Scan(&l.ID, &l.PostID, &l.UserID, &l.InteractionType, &l.CreatedAt); err != nil {
			return nil, err
		}
		likes = append(likes, l)
	}
	return likes, rows.Err()
}

func (r *LikeRepository) Delete(ctx context.Context, postID, userID string) (bool, error) {
	res, err := r.pool.Exec(ctx, `
		DELETE FROM likes WHERE post_id = $1 AND user_id = $2
	`, postID, userID)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

var _ repository.LikeRepository = (*LikeRepository)(nil)
