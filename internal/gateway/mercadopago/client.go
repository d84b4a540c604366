package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dfcarvalho/smmpanel/internal/logger"
)

const (
	defaultBaseURL = "https://api.mercadopago.com"
	defaultTimeout = 10 * time.Second

	// PIX charges expire if not paid within this window
	pixExpiration = 30 * time.Minute
)

const (
	// CodeRejected: the gateway answered and refused the request,
	// its message is safe to surface to the caller
	CodeRejected = "rejected"
	// CodeUnavailable: network failure, timeout or non-JSON response,
	// retrying later is safe
	CodeUnavailable = "unavailable"
)

type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("code: %s, message: %s, error: %v", e.Code, e.Message, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func NewError(code string, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Payment is the subset of the gateway payment resource the panel uses
type Payment struct {
	ID                 int64  `json:"id"`
	Status             string `json:"status"`
	PointOfInteraction struct {
		TransactionData struct {
			QRCode       string `json:"qr_code"`
			QRCodeBase64 string `json:"qr_code_base64"`
		} `json:"transaction_data"`
	} `json:"point_of_interaction"`
}

// errorEnvelope is what the gateway returns on 4xx/5xx
type errorEnvelope struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

type PaymentRequest struct {
	Amount            decimal.Decimal
	Description       string
	PayerEmail        string
	ExternalReference string

	// Fresh random value per creation attempt, the gateway dedupes
	// retried requests that carry the same key
	IdempotencyKey string
}

type Client struct {
	baseURL string
	token   string

	client *http.Client
	logger logger.Logger
}

type Option func(*Client)

func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.client = httpClient }
}

func NewClient(accessToken string, l logger.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		token:   accessToken,
		client:  &http.Client{Timeout: defaultTimeout},
		logger:  l,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreatePayment creates a PIX charge and returns the gateway payment.
// The idempotency key guards against duplicate charges when the
// network call is retried.
func (c *Client) CreatePayment(ctx context.Context, pr PaymentRequest) (Payment, error) {
	amount, _ := pr.Amount.Float64()

	body := map[string]any{
		"transaction_amount": amount,
		"description":        pr.Description,
		"payment_method_id":  "pix",
		"payer":              map[string]string{"email": pr.PayerEmail},
		"date_of_expiration": time.Now().UTC().Add(pixExpiration).Format("2006-01-02T15:04:05.000Z"),
	}
	if pr.ExternalReference != "" {
		body["external_reference"] = pr.ExternalReference
	}

	headers := map[string]string{"X-Idempotency-Key": pr.IdempotencyKey}

	var payment Payment
	if err := c.do(ctx, http.MethodPost, "/v1/payments", body, headers, &payment); err != nil {
		return payment, err
	}

	c.logger.Debug("Gateway payment created", "gateway_id", payment.ID, "status", payment.Status)
	return payment, nil
}

// GetPayment fetches the current state of a payment by its gateway id
func (c *Client) GetPayment(ctx context.Context, externalID string) (Payment, error) {
	var payment Payment
	err := c.do(ctx, http.MethodGet, "/v1/payments/"+externalID, nil, nil, &payment)
	return payment, err
}

// ListPaymentMethods probes the credentials, returns how many payment
// methods the account can use
func (c *Client) ListPaymentMethods(ctx context.Context) (int, error) {
	var methods []json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/v1/payment_methods", nil, nil, &methods); err != nil {
		return 0, err
	}
	return len(methods), nil
}

func (c *Client) do(ctx context.Context, method string, path string, body any, headers map[string]string, out any) error {
	var reqBody *bytes.Buffer
	if body != nil {
		reqBody = &bytes.Buffer{}
		if err := json.NewEncoder(reqBody).Encode(body); err != nil {
			return NewError(CodeUnavailable, "", fmt.Errorf("failed to encode request: %w", err))
		}
	}

	var req *http.Request
	var err error
	if reqBody != nil {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	}
	if err != nil {
		return NewError(CodeUnavailable, "", fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return NewError(CodeUnavailable, "", fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close() // nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope errorEnvelope
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
			c.logger.Warn("Gateway returned non-JSON error", "status_code", resp.StatusCode)
			return NewError(CodeUnavailable, "", fmt.Errorf("unexpected status code %d", resp.StatusCode))
		}

		c.logger.Warn("Gateway rejected request", "status_code", resp.StatusCode, "message", envelope.Message)
		return NewError(CodeRejected, envelope.Message, fmt.Errorf("status code %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return NewError(CodeUnavailable, "", fmt.Errorf("failed to decode response: %w", err))
	}

	return nil
}
