package postgres

import (
	"context"

	"github.com/aussiebroadwan/oauth1d/internal/provider/domain"
	"github.com/jackc/pgx/v5"
)

const (
	permissionColumns = `allow_read_prefs, allow_write_prefs, allow_write_diary, allow_write_api,
		allow_read_gpx, allow_write_gpx, allow_write_notes`

	selectClientSQL = `SELECT id, name, callback_url, consumer_key, consumer_secret, ` +
		permissionColumns + `, created_at, updated_at FROM client_applications`

	insertClientSQL = `INSERT INTO client_applications (id, name, callback_url, consumer_key, consumer_secret, ` +
		permissionColumns + `, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
)

type clientsRepo struct {
	db dbtx
}

func (r *clientsRepo) GetClientByID(ctx context.Context, id string) (domain.ClientApplication, error) {
	c, err := scanClient(r.db.QueryRow(ctx, selectClientSQL+` WHERE id = $1`, id))
	if err != nil {
		return domain.ClientApplication{}, mapNotFound(err)
	}
	return c, nil
}

func (r *clientsRepo) GetClientByKey(ctx context.Context, key string) (domain.ClientApplication, error) {
	c, err := scanClient(r.db.QueryRow(ctx, selectClientSQL+` WHERE consumer_key = $1`, key))
	if err != nil {
		return domain.ClientApplication{}, mapNotFound(err)
	}
	return c, nil
}

func (r *clientsRepo) ListClients(ctx context.Context) ([]domain.ClientApplication, error) {
	rows, err := r.db.Query(ctx, selectClientSQL+` ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []domain.ClientApplication
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (r *clientsRepo) CreateClient(ctx context.Context, c domain.ClientApplication) error {
	args := []any{c.ID, c.Name, c.CallbackURL, c.Key, c.Secret}
	args = append(args, permissionArgs(c.Permissions)...)
	args = append(args, c.CreatedAt, c.UpdatedAt)

	_, err := r.db.Exec(ctx, insertClientSQL, args...)
	return mapUniqueViolation(err)
}

func scanClient(row pgx.Row) (domain.ClientApplication, error) {
	var (
		c     domain.ClientApplication
		flags = make([]bool, len(domain.AllPermissions))
	)

	dest := []any{&c.ID, &c.Name, &c.CallbackURL, &c.Key, &c.Secret}
	for i := range flags {
		dest = append(dest, &flags[i])
	}
	dest = append(dest, &c.CreatedAt, &c.UpdatedAt)

	if err := row.Scan(dest...); err != nil {
		return domain.ClientApplication{}, err
	}

	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	c.Permissions = domain.PermissionSetFromFlags(flags)
	return c, nil
}

func permissionArgs(s domain.PermissionSet) []any {
	flags := s.Flags()
	out := make([]any, len(flags))
	for i, f := range flags {
		out[i] = f
	}
	return out
}
