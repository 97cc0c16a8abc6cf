package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/oauth1d/internal/provider/domain"
	"github.com/aussiebroadwan/oauth1d/internal/provider/store"
)

const (
	tokenColumns = `id, type, token, secret, client_application_id, user_id, authorized_at,
		invalidated_at, verifier, callback_url, oauth10, oob, ` + permissionColumns + `, created_at`

	selectTokenSQL = `SELECT ` + tokenColumns + ` FROM oauth_tokens`

	// ON CONFLICT keeps a collision from aborting the surrounding transaction;
	// the zero row count is reported as store.ErrAlreadyExists.
	insertTokenSQL = `INSERT INTO oauth_tokens (` + tokenColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (token) DO NOTHING`

	authorizeRequestTokenSQL = `UPDATE oauth_tokens
		SET user_id = ?, authorized_at = ?, verifier = ?,
			allow_read_prefs = ?, allow_write_prefs = ?, allow_write_diary = ?, allow_write_api = ?,
			allow_read_gpx = ?, allow_write_gpx = ?, allow_write_notes = ?
		WHERE id = ? AND type = 'RequestToken' AND authorized_at IS NULL AND invalidated_at IS NULL`

	denyRequestTokenSQL = `UPDATE oauth_tokens SET invalidated_at = ?
		WHERE id = ? AND type = 'RequestToken' AND authorized_at IS NULL AND invalidated_at IS NULL`

	consumeRequestTokenSQL = `UPDATE oauth_tokens SET invalidated_at = ?
		WHERE id = ? AND type = 'RequestToken' AND authorized_at IS NOT NULL AND invalidated_at IS NULL`

	invalidateStaleRequestTokensSQL = `UPDATE oauth_tokens SET invalidated_at = ?
		WHERE type = 'RequestToken' AND invalidated_at IS NULL AND created_at < ?`

	invalidateAccessTokenSQL = `UPDATE oauth_tokens SET invalidated_at = ?
		WHERE id = ? AND type = 'AccessToken' AND invalidated_at IS NULL`
)

type tokensRepo struct {
	db dbtx
}

func (r *tokensRepo) CreateRequestToken(ctx context.Context, t domain.RequestToken) error {
	args := []any{
		t.ID, domain.TokenTypeRequest, t.Token, t.Secret, t.ClientApplicationID,
		mapOptionalString(t.UserID), mapOptionalTime(t.AuthorizedAt), mapOptionalTime(t.InvalidatedAt),
		mapOptionalString(t.Verifier), t.CallbackURL, t.OAuth10, t.OOB,
	}
	args = append(args, permissionArgs(t.Permissions)...)
	args = append(args, formatTime(t.CreatedAt))

	return r.insert(ctx, args)
}

func (r *tokensRepo) CreateAccessToken(ctx context.Context, t domain.AccessToken) error {
	userID := t.UserID
	args := []any{
		t.ID, domain.TokenTypeAccess, t.Token, t.Secret, t.ClientApplicationID,
		mapOptionalString(&userID), sql.NullString{}, mapOptionalTime(t.InvalidatedAt),
		sql.NullString{}, "", false, false,
	}
	args = append(args, permissionArgs(t.Permissions)...)
	args = append(args, formatTime(t.CreatedAt))

	return r.insert(ctx, args)
}

func (r *tokensRepo) insert(ctx context.Context, args []any) error {
	res, err := r.db.ExecContext(ctx, insertTokenSQL, args...)
	if err != nil {
		return mapUniqueViolation(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrAlreadyExists
	}
	return nil
}

func (r *tokensRepo) GetRequestToken(ctx context.Context, token string) (domain.RequestToken, error) {
	row := r.db.QueryRowContext(ctx, selectTokenSQL+` WHERE type = 'RequestToken' AND token = ?`, token)
	rec, err := scanToken(row)
	if err != nil {
		return domain.RequestToken{}, mapNotFound(err)
	}
	return rec.requestToken(), nil
}

func (r *tokensRepo) AuthorizeRequestToken(
	ctx context.Context,
	id, userID string,
	verifier *string,
	grants domain.PermissionSet,
	at time.Time,
) error {
	args := []any{userID, formatTime(at), mapOptionalString(verifier)}
	args = append(args, permissionArgs(grants)...)
	args = append(args, id)

	return expectOneRow(r.db.ExecContext(ctx, authorizeRequestTokenSQL, args...))
}

func (r *tokensRepo) DenyRequestToken(ctx context.Context, id string, at time.Time) error {
	return expectOneRow(r.db.ExecContext(ctx, denyRequestTokenSQL, formatTime(at), id))
}

func (r *tokensRepo) ConsumeRequestToken(ctx context.Context, id string, at time.Time) error {
	return expectOneRow(r.db.ExecContext(ctx, consumeRequestTokenSQL, formatTime(at), id))
}

func (r *tokensRepo) InvalidateStaleRequestTokens(ctx context.Context, createdBefore, at time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, invalidateStaleRequestTokensSQL, formatTime(at), formatTime(createdBefore))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *tokensRepo) GetUserAccessToken(ctx context.Context, userID, token string) (domain.AccessToken, error) {
	row := r.db.QueryRowContext(ctx,
		selectTokenSQL+` WHERE type = 'AccessToken' AND user_id = ? AND token = ?`, userID, token)
	rec, err := scanToken(row)
	if err != nil {
		return domain.AccessToken{}, mapNotFound(err)
	}
	return rec.accessToken(), nil
}

func (r *tokensRepo) ListUserAccessTokens(ctx context.Context, userID string) ([]domain.AccessToken, error) {
	rows, err := r.db.QueryContext(ctx,
		selectTokenSQL+` WHERE type = 'AccessToken' AND user_id = ? AND invalidated_at IS NULL
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []domain.AccessToken
	for rows.Next() {
		rec, err := scanToken(rows)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, rec.accessToken())
	}
	return tokens, rows.Err()
}

func (r *tokensRepo) InvalidateAccessToken(ctx context.Context, id string, at time.Time) error {
	return expectOneRow(r.db.ExecContext(ctx, invalidateAccessTokenSQL, formatTime(at), id))
}

// tokenRecord is one oauth_tokens row before it is split by type.
type tokenRecord struct {
	id, kind, token, secret, clientID string
	userID, verifier                  *string
	authorizedAt, invalidatedAt       *time.Time
	callbackURL                       string
	oauth10, oob                      bool
	permissions                       domain.PermissionSet
	createdAt                         time.Time
}

func scanToken(row rowScanner) (tokenRecord, error) {
	var (
		rec                         tokenRecord
		userID, verifier            sql.NullString
		authorizedAt, invalidatedAt sql.NullString
		createdAt                   string
		flags                       = make([]bool, len(domain.AllPermissions))
	)

	dest := []any{
		&rec.id, &rec.kind, &rec.token, &rec.secret, &rec.clientID, &userID, &authorizedAt,
		&invalidatedAt, &verifier, &rec.callbackURL, &rec.oauth10, &rec.oob,
	}
	for i := range flags {
		dest = append(dest, &flags[i])
	}
	dest = append(dest, &createdAt)

	if err := row.Scan(dest...); err != nil {
		return tokenRecord{}, err
	}

	var err error
	if rec.authorizedAt, err = mapNullTimePtr(authorizedAt); err != nil {
		return tokenRecord{}, err
	}
	if rec.invalidatedAt, err = mapNullTimePtr(invalidatedAt); err != nil {
		return tokenRecord{}, err
	}
	if rec.createdAt, err = parseTime(createdAt); err != nil {
		return tokenRecord{}, err
	}
	rec.userID = mapNullStringPtr(userID)
	rec.verifier = mapNullStringPtr(verifier)
	rec.permissions = domain.PermissionSetFromFlags(flags)
	return rec, nil
}

func (rec tokenRecord) requestToken() domain.RequestToken {
	return domain.RequestToken{
		ID:                  rec.id,
		Token:               rec.token,
		Secret:              rec.secret,
		ClientApplicationID: rec.clientID,
		UserID:              rec.userID,
		AuthorizedAt:        rec.authorizedAt,
		InvalidatedAt:       rec.invalidatedAt,
		Verifier:            rec.verifier,
		Permissions:         rec.permissions,
		OAuth10:             rec.oauth10,
		OOB:                 rec.oob,
		CallbackURL:         rec.callbackURL,
		CreatedAt:           rec.createdAt,
	}
}

func (rec tokenRecord) accessToken() domain.AccessToken {
	var userID string
	if rec.userID != nil {
		userID = *rec.userID
	}
	return domain.AccessToken{
		ID:                  rec.id,
		Token:               rec.token,
		Secret:              rec.secret,
		UserID:              userID,
		ClientApplicationID: rec.clientID,
		Permissions:         rec.permissions,
		InvalidatedAt:       rec.invalidatedAt,
		CreatedAt:           rec.createdAt,
	}
}
