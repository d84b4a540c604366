package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/dfcarvalho/smmpanel/internal/apperrors"
	"github.com/dfcarvalho/smmpanel/internal/models"
)

type PaymentRepo struct {
	db DBTX
}

const createPayment = `-- name: CreatePayment
INSERT INTO payments (id, created_at, user_id, amount, external_id, status)
VALUES ($1, $2, $3, $4, NULL, $5)
RETURNING id, created_at, user_id, amount, external_id, status
`

func (r *PaymentRepo) CreatePayment(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (models.Payment, error) {
	rows, _ := r.db.Query(ctx, createPayment, uuid.New(), time.Now(), userID, amount, models.PaymentStatusPending)
	payment, err := pgx.CollectOneRow(rows, rowToPayment)
	if err != nil {
		return payment, fmt.Errorf("db error: %w", err)
	}
	return payment, nil
}

const getUserPayment = `-- name: GetUserPayment
SELECT id, created_at, user_id, amount, external_id, status FROM payments
WHERE id = $1 AND user_id = $2
`

func (r *PaymentRepo) GetUserPayment(ctx context.Context, paymentID uuid.UUID, userID uuid.UUID) (models.Payment, error) {
	rows, _ := r.db.Query(ctx, getUserPayment, paymentID, userID)
	payment, err := pgx.CollectOneRow(rows, rowToPayment)

	switch {
	case err == nil:
		return payment, nil
	case errors.Is(err, pgx.ErrNoRows):
		return payment, apperrors.ErrPaymentNotFound
	default:
		return payment, fmt.Errorf("db error: %w", err)
	}
}

const setExternalID = `-- name: SetExternalID
UPDATE payments SET external_id = $2 WHERE id = $1
`

func (r *PaymentRepo) SetExternalID(ctx context.Context, paymentID uuid.UUID, externalID string) error {
	tag, err := r.db.Exec(ctx, setExternalID, paymentID, externalID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrPaymentNotFound
	}
	return nil
}

const updateStatus = `-- name: UpdatePaymentStatus
UPDATE payments SET status = $2 WHERE id = $1
`

func (r *PaymentRepo) UpdateStatus(ctx context.Context, paymentID uuid.UUID, status string) error {
	tag, err := r.db.Exec(ctx, updateStatus, paymentID, status)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrPaymentNotFound
	}
	return nil
}

const approvePayment = `-- name: ApprovePayment
UPDATE payments
SET status = $2
WHERE id = $1 AND status <> $2
`

// Approve is the serialization point of the credit-once invariant:
// of any number of concurrent reconciliations only the one whose
// UPDATE matched the row gets true and performs the balance credit.
func (r *PaymentRepo) Approve(ctx context.Context, paymentID uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, approvePayment, paymentID, models.PaymentStatusApproved)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

const deletePayment = `-- name: DeletePayment
DELETE FROM payments WHERE id = $1
`

func (r *PaymentRepo) DeletePayment(ctx context.Context, paymentID uuid.UUID) error {
	_, err := r.db.Exec(ctx, deletePayment, paymentID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

const listUserPayments = `-- name: ListUserPayments
SELECT id, created_at, user_id, amount, external_id, status FROM payments
WHERE user_id = $1
ORDER BY created_at DESC
`

func (r *PaymentRepo) ListUserPayments(ctx context.Context, userID uuid.UUID) ([]models.Payment, error) {
	rows, _ := r.db.Query(ctx, listUserPayments, userID)
	payments, err := pgx.CollectRows(rows, rowToPayment)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return payments, nil
}

const approvedRevenue = `-- name: ApprovedRevenue
SELECT coalesce(sum(amount), 0) FROM payments
WHERE status = $1 AND created_at >= $2
`

func (r *PaymentRepo) ApprovedRevenue(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	var revenue decimal.Decimal
	err := r.db.QueryRow(ctx, approvedRevenue, models.PaymentStatusApproved, since).Scan(&revenue)
	if err != nil {
		return revenue, fmt.Errorf("db error: %w", err)
	}
	return revenue, nil
}

func rowToPayment(row pgx.CollectableRow) (models.Payment, error) {
	var p models.Payment
	err := row.Scan(&p.ID, &p.CreatedAt, &p.UserID, &p.Amount, &p.ExternalID, &p.Status)
	return p, err
}
