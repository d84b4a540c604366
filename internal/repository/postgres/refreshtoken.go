package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dfcarvalho/smmpanel/internal/apperrors"
	"github.com/dfcarvalho/smmpanel/internal/models"
)

type RefreshTokenRepo struct {
	db DBTX
}

const saveToken = `-- name: SaveRefreshToken
INSERT INTO refresh_tokens (id, user_id, token, created_at, expires_at, used_at)
VALUES ($1, $2, $3, $4, $5, $6)
`

func (r *RefreshTokenRepo) Save(ctx context.Context, token models.RefreshToken) error {
	_, err := r.db.Exec(ctx, saveToken, token.ID, token.UserID, token.Token, token.CreatedAt, token.ExpiresAt, token.UsedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

const markTokenUsed = `-- name: MarkTokenUsed
UPDATE refresh_tokens
SET used_at = now()
WHERE token = $1 AND used_at IS NULL
RETURNING id, user_id, token, created_at, expires_at, used_at
`

const getToken = `-- name: GetToken
SELECT id, user_id, token, created_at, expires_at, used_at
FROM refresh_tokens
WHERE token = $1
`

// Return the token and mark it used atomically.
// Already used tokens are never overwritten, the first caller wins.
func (r *RefreshTokenRepo) GetAndMarkUsed(ctx context.Context, tokenString string) (models.RefreshToken, error) {
	rows, _ := r.db.Query(ctx, markTokenUsed, tokenString)
	token, err := pgx.CollectOneRow(rows, rowToRefreshToken)

	switch {
	case err == nil:
		return token, nil
	case errors.Is(err, pgx.ErrNoRows):
		// Either the token doesn't exist or it is used already
		rows, _ := r.db.Query(ctx, getToken, tokenString)
		if _, err := pgx.CollectOneRow(rows, rowToRefreshToken); err == nil {
			return token, apperrors.ErrRefreshTokenIsUsed
		}
		return token, apperrors.ErrRefreshTokenNotFound
	default:
		return token, fmt.Errorf("db error: %w", err)
	}
}

func rowToRefreshToken(row pgx.CollectableRow) (models.RefreshToken, error) {
	var t models.RefreshToken
	err := row.Scan(&t.ID, &t.UserID, &t.Token, &t.CreatedAt, &t.ExpiresAt, &t.UsedAt)
	return t, err
}
