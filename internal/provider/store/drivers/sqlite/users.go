package sqlite

import (
	"context"

	"github.com/aussiebroadwan/oauth1d/internal/provider/domain"
)

const (
	selectUserSQL = `SELECT id, display_name, created_at FROM users`

	insertUserSQL = `INSERT INTO users (id, display_name, created_at) VALUES (?, ?, ?)`
)

type usersRepo struct {
	db dbtx
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx, selectUserSQL+` WHERE id = ?`, id)
	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetUserByDisplayName(ctx context.Context, displayName string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx, selectUserSQL+` WHERE display_name = ?`, displayName)
	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx, insertUserSQL, u.ID, u.DisplayName, formatTime(u.CreatedAt))
	return mapUniqueViolation(err)
}

func (r *usersRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, selectUserSQL+` ORDER BY display_name`)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		u         domain.User
		createdAt string
	)
	if err := row.Scan(&u.ID, &u.DisplayName, &createdAt); err != nil {
		return domain.User{}, err
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return domain.User{}, err
	}
	u.CreatedAt = t
	return u, nil
}
