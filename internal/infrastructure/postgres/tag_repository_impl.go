package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mosamir/blogging-api/internal/domain/entity"
	"github.com/mosamir/blogging-api/internal/domain/repository"
)

type TagRepository struct {
	pool *pgxpool.Pool
}

func NewTagRepository(pool *pgxpool.Pool) *TagRepository {
	return &TagRepository{pool: pool}
}

func scanTag(row pgx.Row) (*entity.Tag, error) {
	t := &entity.Tag{}
	if err := row.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
		return nil, mapPgErr(err)
	}
	return t, nil
}

func (r *TagRepository) Create(ctx context.Context, t *entity.Tag) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO tags (id, name)
		VALUES ($1, $2)
		RETURNING created_at
	`, t.ID, t.Name)
	return mapPgErr(row.Scan(&t.CreatedAt))
}

func (r *TagRepository) GetByID(ctx context.Context, id string) (*entity.Tag, error) {
	return scanTag(r.pool.QueryRow(ctx, `
		SELECT id, name, created_at FROM tags WHERE id = $1
	`, id))
}

func (r *TagRepository) GetByName(ctx context.Context, name string) (*entity.Tag, error) {
	return scanTag(r.pool.QueryRow(ctx, `
		SELECT id, name, created_at FROM tags WHERE name = $1
	`, name))
}

func (r *TagRepository) Attach(ctx context.Context, postID, tagID string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO post_tags (post_id, tag_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, postID, tagID)
	return mapPgErr(err)
}

func (r *TagRepository) Detach(ctx context.Context, postID, tagID string) (bool, error) {
	res, err := r.pool.Exec(ctx, `
		DELETE FROM post_tags WHERE post_id = $1 AND tag_id = $2
	`, postID, tagID)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

func (r *TagRepository) ListByPost(ctx context.Context, postID string) ([]*entity.Tag, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT t.id, t.name, t.created_at
		FROM tags t
		JOIN post_tags pt ON pt.tag_id = t.id
		WHERE pt.post_id = $1
		ORDER BY t.name
	`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []*entity.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

var _ repository.TagRepository = (*TagRepository)(nil)
