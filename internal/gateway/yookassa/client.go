package yookassa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/finflow/exchanger/internal/apperrors"
	"github.com/finflow/exchanger/internal/core/ports/gateways"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Client talks to the YooKassa payments API. Every request authenticates
// with shop credentials and carries a fresh Idempotence-Key per logical
// attempt, as the provider requires for safe retries.
type Client struct {
	baseURL    string
	shopID     string
	secretKey  string
	httpClient *http.Client
}

// NewClient creates a payment provider client.
func NewClient(baseURL, shopID, secretKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		shopID:     shopID,
		secretKey:  secretKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

var _ gateways.PaymentGateway = (*Client)(nil)

type amountPayload struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type paymentResponse struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	Confirmation struct {
		ConfirmationURL string `json:"confirmation_url"`
	} `json:"confirmation"`
}

// CreatePayment implements gateways.PaymentGateway.
func (c *Client) CreatePayment(ctx context.Context, amount decimal.Decimal, currencyCode, returnURL, description string) (*gateways.CreatePaymentResult, error) {
	body := map[string]interface{}{
		"amount": amountPayload{Value: amount.StringFixed(2), Currency: currencyCode},
		"confirmation": map[string]string{
			"type":       "redirect",
			"return_url": returnURL,
		},
		"capture":     false,
		"description": description,
	}

	var resp paymentResponse
	if err := c.do(ctx, http.MethodPost, "/payments", body, &resp); err != nil {
		return nil, err
	}
	if resp.ID == "" {
		return nil, fmt.Errorf("%w: provider returned no payment id", apperrors.ErrUpstream)
	}

	return &gateways.CreatePaymentResult{
		PaymentID:       resp.ID,
		ConfirmationURL: resp.Confirmation.ConfirmationURL,
	}, nil
}

// CapturePayment implements gateways.PaymentGateway.
func (c *Client) CapturePayment(ctx context.Context, paymentID string, amount decimal.Decimal, currencyCode string) error {
	body := map[string]interface{}{
		"amount": amountPayload{Value: amount.StringFixed(2), Currency: currencyCode},
	}
	return c.do(ctx, http.MethodPost, "/payments/"+paymentID+"/capture", body, nil)
}

// GetPayment implements gateways.PaymentGateway.
func (c *Client) GetPayment(ctx context.Context, paymentID string) (gateways.PaymentStatus, error) {
	var resp paymentResponse
	if err := c.do(ctx, http.MethodGet, "/payments/"+paymentID, nil, &resp); err != nil {
		return "", err
	}
	return gateways.PaymentStatus(resp.Status), nil
}

// do executes one provider request. Network failures and non-2xx responses
// both surface as ErrUpstream; the response body is never echoed to callers
// beyond what logging needs.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode provider request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build provider request: %w", err)
	}
	req.SetBasicAuth(c.shopID, c.secretKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotence-Key", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: provider returned status %d for %s %s", apperrors.ErrUpstream, resp.StatusCode, method, path)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: failed to decode provider response: %v", apperrors.ErrUpstream, err)
		}
	}
	return nil
}
