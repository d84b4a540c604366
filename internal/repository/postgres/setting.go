package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dfcarvalho/smmpanel/internal/apperrors"
)

type SettingRepo struct {
	db DBTX
}

const getSetting = `-- name: GetSetting
SELECT value FROM settings WHERE key = $1
`

func (r *SettingRepo) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRow(ctx, getSetting, key).Scan(&value)

	switch {
	case err == nil:
		return value, nil
	case errors.Is(err, pgx.ErrNoRows):
		return "", apperrors.ErrSettingNotFound
	default:
		return "", fmt.Errorf("db error: %w", err)
	}
}

const setSetting = `-- name: SetSetting
INSERT INTO settings (key, value, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = now()
`

func (r *SettingRepo) SetSetting(ctx context.Context, key string, value string) error {
	_, err := r.db.Exec(ctx, setSetting, key, value)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

const allSettings = `-- name: AllSettings
SELECT key, value FROM settings
`

func (r *SettingRepo) AllSettings(ctx context.Context) (map[string]string, error) {
	rows, _ := r.db.Query(ctx, allSettings)

	settings := make(map[string]string)
	var key, value string
	_, err := pgx.ForEachRow(rows, []any{&key, &value}, func() error {
		settings[key] = value
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return settings, nil
}
