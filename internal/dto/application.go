package dto

import (
	"time"

	"github.com/finflow/exchanger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateApplicationRequest starts a deposit via the external payment provider.
type CreateApplicationRequest struct {
	Amount decimal.Decimal        `json:"amount" binding:"required"`
	Type   domain.ApplicationType `json:"type" binding:"required,oneof=refill withdrawal"`
}

// CreateApplicationResponse returns the provider's confirmation URL the user
// is redirected to.
type CreateApplicationResponse struct {
	ApplicationID   int64  `json:"applicationID"`
	ConfirmationURL string `json:"confirmationURL"`
}

// ApplicationResponse is the API shape of an application.
type ApplicationResponse struct {
	ApplicationID int64           `json:"applicationID"`
	AccountNumber string          `json:"accountNumber"`
	CurrencyCode  string          `json:"currencyCode"`
	PaymentID     *string         `json:"paymentID,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Type          string          `json:"type"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// ToApplicationResponse converts a domain application to its API shape.
func ToApplicationResponse(a domain.Application) ApplicationResponse {
	return ApplicationResponse{
		ApplicationID: a.ApplicationID,
		AccountNumber: a.AccountNumber,
		CurrencyCode:  a.CurrencyCode,
		PaymentID:     a.PaymentID,
		Amount:        a.Amount,
		Type:          string(a.Type),
		Status:        string(a.Status),
		CreatedAt:     a.CreatedAt,
	}
}

// SettlementNotification is the provider-defined webhook payload. Only the
// fields the settlement path reads are bound; signature verification happens
// upstream of this core.
type SettlementNotification struct {
	Event  string `json:"event"`
	Object struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"object"`
}
