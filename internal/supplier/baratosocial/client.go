package baratosocial

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dfcarvalho/smmpanel/internal/logger"
)

const (
	defaultBaseURL = "https://baratosocial.com/api/v2"
	defaultTimeout = 30 * time.Second
)

const (
	// CodeVendor: the supplier answered with an error payload
	CodeVendor = "vendor"
	// CodeUnavailable: network failure, timeout or non-JSON response
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

// Service is one catalog entry as the supplier reports it.
// The API encodes every field as a string.
type Service struct {
	ServiceID   string `json:"service"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Rate        string `json:"rate"`
	Min         string `json:"min"`
	Max         string `json:"max"`
}

type OrderRequest struct {
	ServiceID int64
	Link      string
	Quantity  int
	Comments  string
}

type Client struct {
	baseURL string
	key     string

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

func NewClient(apiKey string, l logger.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		key:     apiKey,
		client:  &http.Client{Timeout: defaultTimeout, Transport: ipv4Transport()},
		logger:  l,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// The supplier's AAAA record points at a host that drops connections,
// so resolution is pinned to IPv4
func ipv4Transport() *http.Transport {
	dialer := &net.Dialer{Timeout: 10 * time.Second}
	return &http.Transport{
		DialContext: func(ctx context.Context, network string, addr string) (net.Conn, error) {
			return dialer.DialContext(ctx, "tcp4", addr)
		},
	}
}

// Services fetches the full supplier catalog
func (c *Client) Services(ctx context.Context) ([]Service, error) {
	data, err := c.post(ctx, url.Values{"action": {"services"}})
	if err != nil {
		return nil, err
	}

	var services []Service
	if err := json.Unmarshal(data, &services); err != nil {
		return nil, NewError(CodeUnavailable, "", fmt.Errorf("failed to decode catalog: %w", err))
	}

	c.logger.Debug("Supplier catalog fetched", "count", len(services))
	return services, nil
}

// Balance probes the credentials and returns the reseller's funds at
// the supplier
func (c *Client) Balance(ctx context.Context) (decimal.Decimal, error) {
	data, err := c.post(ctx, url.Values{"action": {"balance"}})
	if err != nil {
		return decimal.Zero, err
	}

	var resp struct {
		Balance  decimal.Decimal `json:"balance"`
		Currency string          `json:"currency"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return decimal.Zero, NewError(CodeUnavailable, "", fmt.Errorf("failed to decode balance: %w", err))
	}

	return resp.Balance, nil
}

// AddOrder places an order at the supplier and returns its order id
func (c *Client) AddOrder(ctx context.Context, or OrderRequest) (int64, error) {
	form := url.Values{
		"action":   {"add"},
		"service":  {strconv.FormatInt(or.ServiceID, 10)},
		"link":     {or.Link},
		"quantity": {strconv.Itoa(or.Quantity)},
	}
	if or.Comments != "" {
		form.Set("comments", or.Comments)
	}

	data, err := c.post(ctx, form)
	if err != nil {
		return 0, err
	}

	var resp struct {
		Order int64 `json:"order"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return 0, NewError(CodeUnavailable, "", fmt.Errorf("failed to decode order response: %w", err))
	}
	if resp.Order == 0 {
		return 0, NewError(CodeVendor, "supplier returned no order id", nil)
	}

	c.logger.Debug("Supplier order placed", "supplier_order_id", resp.Order)
	return resp.Order, nil
}

// post sends the form with the api key attached and returns the raw
// JSON body. Vendor error payloads ({"error": "..."}) become typed
// errors here so callers only deal with happy-path shapes.
func (c *Client) post(ctx context.Context, form url.Values) (json.RawMessage, error) {
	form.Set("key", c.key)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, NewError(CodeUnavailable, "", fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, NewError(CodeUnavailable, "", fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close() // nolint:errcheck

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		c.logger.Warn("Supplier returned non-JSON response", "status_code", resp.StatusCode)
		return nil, NewError(CodeUnavailable, "", fmt.Errorf("invalid response: %w", err))
	}

	// The supplier reports failures as {"error": "..."} with any status
	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error != "" {
		c.logger.Warn("Supplier rejected request", "status_code", resp.StatusCode, "message", envelope.Error)
		return nil, NewError(CodeVendor, envelope.Error, fmt.Errorf("status code %d", resp.StatusCode))
	}

	return raw, nil
}
