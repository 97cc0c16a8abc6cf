package postgres

import (
	"context"
	"time"

	"github.com/aussiebroadwan/oauth1d/internal/provider/domain"
	"github.com/aussiebroadwan/oauth1d/internal/provider/store"
	"github.com/jackc/pgx/v5"
)

const (
	tokenColumns = `id, type, token, secret, client_application_id, user_id, authorized_at,
		invalidated_at, verifier, callback_url, oauth10, oob, ` + permissionColumns + `, created_at`

	selectTokenSQL = `SELECT ` + tokenColumns + ` FROM oauth_tokens`

	// A unique violation would abort the whole transaction, so collisions
	// are reported through the row count instead.
	insertTokenSQL = `INSERT INTO oauth_tokens (` + tokenColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		ON CONFLICT (token) DO NOTHING`

	authorizeRequestTokenSQL = `UPDATE oauth_tokens
		SET user_id = $1, authorized_at = $2, verifier = $3,
			allow_read_prefs = $4, allow_write_prefs = $5, allow_write_diary = $6, allow_write_api = $7,
			allow_read_gpx = $8, allow_write_gpx = $9, allow_write_notes = $10
		WHERE id = $11 AND type = 'RequestToken' AND authorized_at IS NULL AND invalidated_at IS NULL`

	denyRequestTokenSQL = `UPDATE oauth_tokens SET invalidated_at = $1
		WHERE id = $2 AND type = 'RequestToken' AND authorized_at IS NULL AND invalidated_at IS NULL`

	consumeRequestTokenSQL = `UPDATE oauth_tokens SET invalidated_at = $1
		WHERE id = $2 AND type = 'RequestToken' AND authorized_at IS NOT NULL AND invalidated_at IS NULL`

	invalidateStaleRequestTokensSQL = `UPDATE oauth_tokens SET invalidated_at = $1
		WHERE type = 'RequestToken' AND invalidated_at IS NULL AND created_at < $2`

	invalidateAccessTokenSQL = `UPDATE oauth_tokens SET invalidated_at = $1
		WHERE id = $2 AND type = 'AccessToken' AND invalidated_at IS NULL`
)

type tokensRepo struct {
	db dbtx
}

func (r *tokensRepo) CreateRequestToken(ctx context.Context, t domain.RequestToken) error {
	args := []any{
		t.ID, domain.TokenTypeRequest, t.Token, t.Secret, t.ClientApplicationID,
		t.UserID, utcPtr(t.AuthorizedAt), utcPtr(t.InvalidatedAt),
		t.Verifier, t.CallbackURL, t.OAuth10, t.OOB,
	}
	args = append(args, permissionArgs(t.Permissions)...)
	args = append(args, t.CreatedAt.UTC())

	return r.insert(ctx, args)
}

func (r *tokensRepo) CreateAccessToken(ctx context.Context, t domain.AccessToken) error {
	args := []any{
		t.ID, domain.TokenTypeAccess, t.Token, t.Secret, t.ClientApplicationID,
		t.UserID, nil, utcPtr(t.InvalidatedAt),
		nil, "", false, false,
	}
	args = append(args, permissionArgs(t.Permissions)...)
	args = append(args, t.CreatedAt.UTC())

	return r.insert(ctx, args)
}

func (r *tokensRepo) insert(ctx context.Context, args []any) error {
	tag, err := r.db.Exec(ctx, insertTokenSQL, args...)
	if err != nil {
		return mapUniqueViolation(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrAlreadyExists
	}
	return nil
}

func (r *tokensRepo) GetRequestToken(ctx context.Context, token string) (domain.RequestToken, error) {
	rec, err := scanToken(r.db.QueryRow(ctx, selectTokenSQL+` WHERE type = 'RequestToken' AND token = $1`, token))
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
	args := []any{userID, at.UTC(), verifier}
	args = append(args, permissionArgs(grants)...)
	args = append(args, id)

	return expectOneRow(r.db.Exec(ctx, authorizeRequestTokenSQL, args...))
}

func (r *tokensRepo) DenyRequestToken(ctx context.Context, id string, at time.Time) error {
	return expectOneRow(r.db.Exec(ctx, denyRequestTokenSQL, at.UTC(), id))
}

func (r *tokensRepo) ConsumeRequestToken(ctx context.Context, id string, at time.Time) error {
	return expectOneRow(r.db.Exec(ctx, consumeRequestTokenSQL, at.UTC(), id))
}

func (r *tokensRepo) InvalidateStaleRequestTokens(ctx context.Context, createdBefore, at time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, invalidateStaleRequestTokensSQL, at.UTC(), createdBefore.UTC())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *tokensRepo) GetUserAccessToken(ctx context.Context, userID, token string) (domain.AccessToken, error) {
	rec, err := scanToken(r.db.QueryRow(ctx,
		selectTokenSQL+` WHERE type = 'AccessToken' AND user_id = $1 AND token = $2`, userID, token))
	if err != nil {
		return domain.AccessToken{}, mapNotFound(err)
	}
	return rec.accessToken(), nil
}

func (r *tokensRepo) ListUserAccessTokens(ctx context.Context, userID string) ([]domain.AccessToken, error) {
	rows, err := r.db.Query(ctx,
		selectTokenSQL+` WHERE type = 'AccessToken' AND user_id = $1 AND invalidated_at IS NULL
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
	return expectOneRow(r.db.Exec(ctx, invalidateAccessTokenSQL, at.UTC(), id))
}

type tokenRecord struct {
	id, kind, token, secret, clientID string
	userID, verifier                  *string
	authorizedAt, invalidatedAt       *time.Time
	callbackURL                       string
	oauth10, oob                      bool
	permissions                       domain.PermissionSet
	createdAt                         time.Time
}

func scanToken(row pgx.Row) (tokenRecord, error) {
	var (
		rec   tokenRecord
		flags = make([]bool, len(domain.AllPermissions))
	)

	dest := []any{
		&rec.id, &rec.kind, &rec.token, &rec.secret, &rec.clientID, &rec.userID, &rec.authorizedAt,
		&rec.invalidatedAt, &rec.verifier, &rec.callbackURL, &rec.oauth10, &rec.oob,
	}
	for i := range flags {
		dest = append(dest, &flags[i])
	}
	dest = append(dest, &rec.createdAt)

	if err := row.Scan(dest...); err != nil {
		return tokenRecord{}, err
	}

	rec.authorizedAt = utcPtr(rec.authorizedAt)
	rec.invalidatedAt = utcPtr(rec.invalidatedAt)
	rec.createdAt = rec.createdAt.UTC()
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

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
