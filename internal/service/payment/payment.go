package payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dfcarvalho/smmpanel/internal/apperrors"
	"github.com/dfcarvalho/smmpanel/internal/gateway/mercadopago"
	"github.com/dfcarvalho/smmpanel/internal/logger"
	"github.com/dfcarvalho/smmpanel/internal/models"
	"github.com/dfcarvalho/smmpanel/internal/repository"
)

// Gateway is the narrow payment-gateway surface the service consumes.
// Implemented by *mercadopago.Client.
type Gateway interface {
	CreatePayment(ctx context.Context, pr mercadopago.PaymentRequest) (mercadopago.Payment, error)
	GetPayment(ctx context.Context, externalID string) (mercadopago.Payment, error)
	ListPaymentMethods(ctx context.Context) (int, error)
}

type settingsService interface {
	GatewayAccessToken(ctx context.Context) (string, error)
	MinTopUp(ctx context.Context) (decimal.Decimal, error)
}

// Fixed mapping from the gateway's status vocabulary to ours.
// Anything unknown is treated as pending: an unrecognized status must
// never credit a balance.
var statusMapping = map[string]string{
	"approved":   models.PaymentStatusApproved,
	"pending":    models.PaymentStatusPending,
	"in_process": models.PaymentStatusPending,
	"rejected":   models.PaymentStatusRejected,
	"cancelled":  models.PaymentStatusCancelled,
	"refunded":   models.PaymentStatusRefunded,
}

func mapStatus(raw string) string {
	if status, ok := statusMapping[raw]; ok {
		return status
	}
	return models.PaymentStatusPending
}

// CreatedPayment is what the caller needs to present a PIX charge
type CreatedPayment struct {
	Payment      models.Payment
	QRCode       string
	QRCodeBase64 string
}

type PaymentService struct {
	storage  repository.Storage
	settings settingsService
	logger   logger.Logger

	// Gateway credentials resolve at point of use, so the client is
	// built per call from the current token
	newGateway func(accessToken string) Gateway
}

func NewService(storage repository.Storage, settings settingsService, l logger.Logger) *PaymentService {
	return &PaymentService{
		storage:  storage,
		settings: settings,
		logger:   l,
		newGateway: func(accessToken string) Gateway {
			return mercadopago.NewClient(accessToken, l)
		},
	}
}

// Create persists a pending payment, registers the PIX charge at the
// gateway and stores the gateway id. The speculative row is removed
// when the gateway refuses the charge, so failed attempts never
// participate in reconciliation.
func (s *PaymentService) Create(ctx context.Context, user models.User, amount decimal.Decimal) (CreatedPayment, error) {
	var created CreatedPayment

	minTopUp, err := s.settings.MinTopUp(ctx)
	if err != nil {
		return created, fmt.Errorf("can't resolve minimum top-up: %w", err)
	}
	if amount.LessThan(minTopUp) {
		return created, fmt.Errorf("%w: minimum top-up is %s", apperrors.ErrInvalidAmount, minTopUp)
	}

	accessToken, err := s.settings.GatewayAccessToken(ctx)
	if err != nil {
		return created, err
	}

	payment, err := s.storage.Payment().CreatePayment(ctx, user.ID, amount)
	if err != nil {
		return created, fmt.Errorf("can't create payment. Err: %w", err)
	}

	remote, err := s.newGateway(accessToken).CreatePayment(ctx, mercadopago.PaymentRequest{
		Amount:            amount,
		Description:       fmt.Sprintf("Recarga de saldo - %s - %s", user.Username, payment.ID),
		PayerEmail:        user.Email,
		ExternalReference: payment.ID.String(),
		IdempotencyKey:    uuid.NewString(),
	})

	if err != nil || remote.ID == 0 {
		// Compensate: the local row must not outlive a failed creation
		if delErr := s.storage.Payment().DeletePayment(ctx, payment.ID); delErr != nil {
			s.logger.Error("Failed to delete payment after gateway failure", "error", delErr, "payment_id", payment.ID)
		}

		message := "gateway returned no payment id"
		var gwErr *mercadopago.Error
		if errors.As(err, &gwErr) && gwErr.Message != "" {
			message = gwErr.Message
		}
		return created, fmt.Errorf("%w: %s", apperrors.ErrGateway, message)
	}

	externalID := strconv.FormatInt(remote.ID, 10)
	if err := s.storage.Payment().SetExternalID(ctx, payment.ID, externalID); err != nil {
		return created, fmt.Errorf("can't store gateway id. Err: %w", err)
	}
	payment.ExternalID = &externalID

	s.logger.Info("Payment created", "payment_id", payment.ID, "gateway_id", externalID, "amount", amount)

	return CreatedPayment{
		Payment:      payment,
		QRCode:       remote.PointOfInteraction.TransactionData.QRCode,
		QRCodeBase64: remote.PointOfInteraction.TransactionData.QRCodeBase64,
	}, nil
}

// Reconcile queries the gateway for the payment's current status,
// maps it to the internal vocabulary and applies the transition rule:
//   - first observation of 'approved' credits the balance and flips
//     the status as one transaction
//   - any other change updates the status only
//   - repeated observations are no-ops
//
// Safe to retry indefinitely: the stored state is untouched when the
// gateway is unreachable and the approved transition happens at most
// once even for racing callers.
func (s *PaymentService) Reconcile(ctx context.Context, userID uuid.UUID, paymentID uuid.UUID) (string, error) {
	payment, err := s.storage.Payment().GetUserPayment(ctx, paymentID, userID)
	if err != nil {
		return "", err
	}

	if payment.ExternalID == nil {
		return "", apperrors.ErrPaymentNotSubmitted
	}

	accessToken, err := s.settings.GatewayAccessToken(ctx)
	if err != nil {
		return "", err
	}

	remote, err := s.newGateway(accessToken).GetPayment(ctx, *payment.ExternalID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrGatewayUnavailable, err)
	}

	mapped := mapStatus(remote.Status)

	switch {
	case payment.Status != models.PaymentStatusApproved && mapped == models.PaymentStatusApproved:
		err := s.storage.InTx(ctx, func(tx repository.Storage) error {
			credited, err := tx.Payment().Approve(ctx, payment.ID)
			if err != nil {
				return err
			}
			if !credited {
				// A concurrent reconciliation won the transition
				return nil
			}

			_, err = tx.Balance().Credit(ctx, payment.UserID, payment.Amount)
			return err
		})
		if err != nil {
			return "", fmt.Errorf("can't approve payment. Err: %w", err)
		}

		s.logger.Info("Payment approved, balance credited",
			"payment_id", payment.ID, "user_id", payment.UserID, "amount", payment.Amount)
		return models.PaymentStatusApproved, nil

	case payment.Status != mapped:
		if err := s.storage.Payment().UpdateStatus(ctx, payment.ID, mapped); err != nil {
			return "", fmt.Errorf("can't update payment status. Err: %w", err)
		}
		return mapped, nil

	default:
		return payment.Status, nil
	}
}

// List returns the user's payments, newest first
func (s *PaymentService) List(ctx context.Context, userID uuid.UUID) ([]models.Payment, error) {
	return s.storage.Payment().ListUserPayments(ctx, userID)
}

// TestGateway probes the gateway with the configured credentials and
// returns how many payment methods the account offers
func (s *PaymentService) TestGateway(ctx context.Context) (int, error) {
	accessToken, err := s.settings.GatewayAccessToken(ctx)
	if err != nil {
		return 0, err
	}

	count, err := s.newGateway(accessToken).ListPaymentMethods(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", apperrors.ErrGatewayUnavailable, err)
	}
	return count, nil
}
