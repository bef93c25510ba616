package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mosamir/blogging-api/internal/domain/entity"
	"github.com/mosamir/blogging-api/internal/domain/repository"
)

const uniqueViolation = "23505"

func mapPgErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return repository.ErrDuplicate
	}
	return err
}

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, username, email, password_hash, display_name, bio, location,
	profile_image, email_verified, followers_count, following_count, created_at, updated_at`

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&u.BasicInfo.DisplayName, &u.BasicInfo.Bio, &u.BasicInfo.Location,
		&u.ProfileImage, &u.EmailVerified, &u.FollowersCount, &u.FollowingCount,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, mapPgErr(err)
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (id, username, email, password_hash, display_name, bio, location, profile_image, email_verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`, u.ID, u.Username, u.Email, u.PasswordHash,
		u.BasicInfo.DisplayName, u.BasicInfo.Bio, u.BasicInfo.Location,
		u.ProfileImage, u.EmailVerified)

	return mapPgErr(row.Scan(&u.CreatedAt, &u.UpdatedAt))
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id))
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE username = $1
	`, username))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1
	`, email))
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET username = $1, email = $2, display_name = $3, bio = $4, location = $5,
		    profile_image = $6, email_verified = $7, updated_at = $8
		WHERE id = $9
	`, u.Username, u.Email, u.BasicInfo.DisplayName, u.BasicInfo.Bio, u.BasicInfo.Location,
		u.ProfileImage, u.EmailVerified, u.UpdatedAt, u.ID)
	if err != nil {
		return mapPgErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2
	`, passwordHash, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes the user's follow edges and the user row in one
// transaction, so a crash cannot leave dangling edges. Content rows cascade
// through foreign keys.
func (r *UserRepository) Delete(ctx context.Context, id string) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		DELETE FROM follows WHERE follower_id = $1 OR followed_id = $1
	`, id); err != nil {
		return false, err
	}
	res, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	if res.RowsAffected() == 0 {
		return false, nil
	}
	return true, tx.Commit(ctx)
}

func (r *UserRepository) AssignRole(ctx context.Context, userID, roleName string) error {
	res, err := r.pool.Exec(ctx, `
		INSERT INTO user_roles (user_id, role_id)
		SELECT $1, id FROM roles WHERE name = $2
		ON CONFLICT DO NOTHING
	`, userID, roleName)
	if err != nil {
		return err
	}
	// Zero rows with no conflict means the role row itself is missing;
	// surface that instead of silently leaving the user roleless.
	if res.RowsAffected() == 0 {
		if has, hasErr := r.hasRole(ctx, userID, roleName); hasErr == nil && has {
			return nil
		}
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) hasRole(ctx context.Context, userID, roleName string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM user_roles ur
			JOIN roles ro ON ro.id = ur.role_id
			WHERE ur.user_id = $1 AND ro.name = $2
		)
	`, userID, roleName).Scan(&exists)
	return exists, err
}

func (r *UserRepository) RolesOf(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT r.name
		FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = $1
		ORDER BY r.name
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		roles = append(roles, name)
	}
	return roles, rows.Err()
}

var _ repository.UserRepository = (*UserRepository)(nil)
