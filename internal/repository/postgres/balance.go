package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/dfcarvalho/smmpanel/internal/apperrors"
	"github.com/dfcarvalho/smmpanel/internal/models"
)

type BalanceRepo struct {
	db DBTX
}

const createBalance = `-- name: CreateBalance
INSERT INTO balances (id, user_id, current, spent)
VALUES ($1, $2, 0, 0)
`

func (r *BalanceRepo) CreateBalance(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.Exec(ctx, createBalance, uuid.New(), userID)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("user balance already exists: %w", err)
		}

		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

const getBalance = `-- name: GetBalance
SELECT id, user_id, current, spent FROM balances
WHERE user_id = $1
`

func (r *BalanceRepo) GetBalance(ctx context.Context, userID uuid.UUID) (models.Balance, error) {
	rows, _ := r.db.Query(ctx, getBalance, userID)
	return collectBalance(rows)
}

const creditBalance = `-- name: CreditBalance
UPDATE balances
SET current = current + $2
WHERE user_id = $1
RETURNING id, user_id, current, spent
`

func (r *BalanceRepo) Credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (models.Balance, error) {
	rows, _ := r.db.Query(ctx, creditBalance, userID, amount)
	return collectBalance(rows)
}

const debitBalance = `-- name: DebitBalance
UPDATE balances
SET current = current - $2, spent = spent + $2
WHERE user_id = $1 AND current >= $2
RETURNING id, user_id, current, spent
`

// Debit is conditional on sufficient funds: the WHERE clause makes
// concurrent debits serialize on the row without ever going negative.
func (r *BalanceRepo) Debit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (models.Balance, error) {
	rows, _ := r.db.Query(ctx, debitBalance, userID, amount)
	balance, err := pgx.CollectOneRow(rows, rowToBalance)

	switch {
	case err == nil:
		return balance, nil
	case errors.Is(err, pgx.ErrNoRows):
		// Either there is no balance row or the funds are short
		if _, err := r.GetBalance(ctx, userID); err != nil {
			return balance, err
		}
		return balance, apperrors.ErrBalanceInsufficient
	default:
		return balance, fmt.Errorf("db error: %w", err)
	}
}

func collectBalance(rows pgx.Rows) (models.Balance, error) {
	balance, err := pgx.CollectOneRow(rows, rowToBalance)

	switch {
	case err == nil:
		return balance, nil
	case errors.Is(err, pgx.ErrNoRows):
		return balance, apperrors.ErrUserNotFound
	default:
		return balance, fmt.Errorf("db error: %w", err)
	}
}

func rowToBalance(row pgx.CollectableRow) (models.Balance, error) {
	var b models.Balance
	err := row.Scan(&b.ID, &b.UserID, &b.Current, &b.Spent)
	return b, err
}
