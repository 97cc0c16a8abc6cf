package postgres

import (
	"context"

	"github.com/aussiebroadwan/oauth1d/internal/provider/domain"
	"github.com/jackc/pgx/v5"
)

const (
	selectUserSQL = `SELECT id, display_name, created_at FROM users`

	insertUserSQL = `INSERT INTO users (id, display_name, created_at) VALUES ($1, $2, $3)`
)

type usersRepo struct {
	db dbtx
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, selectUserSQL+` WHERE id = $1`, id))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetUserByDisplayName(ctx context.Context, displayName string) (domain.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, selectUserSQL+` WHERE display_name = $1`, displayName))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.Exec(ctx, insertUserSQL, u.ID, u.DisplayName, u.CreatedAt)
	return mapUniqueViolation(err)
}

func (r *usersRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.Query(ctx, selectUserSQL+` ORDER BY display_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.DisplayName, &u.CreatedAt); err != nil {
		return domain.User{}, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return u, nil
}
