package gateways

import (
	"context"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the provider-reported status of an external payment.
type PaymentStatus string

const (
	PaymentPending           PaymentStatus = "pending"
	PaymentWaitingForCapture PaymentStatus = "waiting_for_capture"
	PaymentSucceeded         PaymentStatus = "succeeded"
	PaymentCanceled          PaymentStatus = "canceled"
)

// CreatePaymentResult is the provider's answer to a payment creation request.
type CreatePaymentResult struct {
	PaymentID       string
	ConfirmationURL string
}

// PaymentGateway is the external payment provider consumed by the application
// engine. Implementations must attach a fresh idempotency key to every
// logical attempt. Any network or non-2xx failure surfaces as ErrUpstream.
type PaymentGateway interface {
	CreatePayment(ctx context.Context, amount decimal.Decimal, currencyCode, returnURL, description string) (*CreatePaymentResult, error)
	CapturePayment(ctx context.Context, paymentID string, amount decimal.Decimal, currencyCode string) error
	GetPayment(ctx context.Context, paymentID string) (PaymentStatus, error)
}

// RateOracle provides exchange rates quoted as units of home currency per one
// unit of the keyed currency. The home currency itself is never keyed; a
// missing rate is a hard error for any conversion needing that leg.
type RateOracle interface {
	GetRate(ctx context.Context, currencyCode string) (decimal.Decimal, error)
	GetRates(ctx context.Context) (map[string]decimal.Decimal, error)
}

// TransferNotice carries everything the dispatcher needs to tell a receiver
// about an incoming counterparty transfer.
type TransferNotice struct {
	SenderNumber   string
	ReceiverNumber string
	Amount         decimal.Decimal
	CurrencyCode   string
}

// Notifier delivers best-effort notifications. Implementations swallow and
// log failures; callers never consume a result.
type Notifier interface {
	Notify(ctx context.Context, notice TransferNotice)
}
