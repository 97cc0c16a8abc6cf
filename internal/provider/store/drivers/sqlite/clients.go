package sqlite

import (
	"context"

	"github.com/aussiebroadwan/oauth1d/internal/provider/domain"
)

const (
	permissionColumns = `allow_read_prefs, allow_write_prefs, allow_write_diary, allow_write_api,
		allow_read_gpx, allow_write_gpx, allow_write_notes`

	selectClientSQL = `SELECT id, name, callback_url, consumer_key, consumer_secret, ` +
		permissionColumns + `, created_at, updated_at FROM client_applications`

	insertClientSQL = `INSERT INTO client_applications (id, name, callback_url, consumer_key, consumer_secret, ` +
		permissionColumns + `, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
)

type clientsRepo struct {
	db dbtx
}

func (r *clientsRepo) GetClientByID(ctx context.Context, id string) (domain.ClientApplication, error) {
	c, err := scanClient(r.db.QueryRowContext(ctx, selectClientSQL+` WHERE id = ?`, id))
	if err != nil {
		return domain.ClientApplication{}, mapNotFound(err)
	}
	return c, nil
}

func (r *clientsRepo) GetClientByKey(ctx context.Context, key string) (domain.ClientApplication, error) {
	c, err := scanClient(r.db.QueryRowContext(ctx, selectClientSQL+` WHERE consumer_key = ?`, key))
	if err != nil {
		return domain.ClientApplication{}, mapNotFound(err)
	}
	return c, nil
}

func (r *clientsRepo) ListClients(ctx context.Context) ([]domain.ClientApplication, error) {
	rows, err := r.db.QueryContext(ctx, selectClientSQL+` ORDER BY created_at DESC, id DESC`)
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
	args = append(args, formatTime(c.CreatedAt), formatTime(c.UpdatedAt))

	_, err := r.db.ExecContext(ctx, insertClientSQL, args...)
	return mapUniqueViolation(err)
}

func scanClient(row rowScanner) (domain.ClientApplication, error) {
	var (
		c                    domain.ClientApplication
		flags                = make([]bool, len(domain.AllPermissions))
		createdAt, updatedAt string
	)

	dest := []any{&c.ID, &c.Name, &c.CallbackURL, &c.Key, &c.Secret}
	for i := range flags {
		dest = append(dest, &flags[i])
	}
	dest = append(dest, &createdAt, &updatedAt)

	if err := row.Scan(dest...); err != nil {
		return domain.ClientApplication{}, err
	}

	var err error
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.ClientApplication{}, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return domain.ClientApplication{}, err
	}
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
