package domain

import "github.com/shopspring/decimal"

// ApplicationType is the direction of an external payment request.
type ApplicationType string

const (
	Refill     ApplicationType = "refill"
	Withdrawal ApplicationType = "withdrawal"
)

// ApplicationStatus is the settlement state machine:
// pending -> {waiting_for_capture, completed, cancelled, error}.
// completed, cancelled and error are terminal. waiting_for_capture is reserved
// for provider flows that split authorization from capture.
type ApplicationStatus string

const (
	StatusPending           ApplicationStatus = "pending"
	StatusWaitingForCapture ApplicationStatus = "waiting_for_capture"
	StatusCompleted         ApplicationStatus = "completed"
	StatusCancelled         ApplicationStatus = "cancelled"
	StatusError             ApplicationStatus = "error"
)

// Application is a pending external payment request against one account.
// PaymentID is provider-assigned and stays nil until the provider responds.
// Applications are never hard-deleted.
type Application struct {
	ApplicationID int64             `json:"applicationID"`
	AccountNumber string            `json:"accountNumber"`
	CurrencyCode  string            `json:"currencyCode"`
	PaymentID     *string           `json:"paymentID"` // Unique, nullable
	Amount        decimal.Decimal   `json:"amount"`
	Type          ApplicationType   `json:"type"`
	Status        ApplicationStatus `json:"status"`
	Error         *string           `json:"error,omitempty"`
	AuditFields
}

// ApplicationLog is the append-only audit trail: one row per status
// transition, write-once, never mutated or deleted.
type ApplicationLog struct {
	LogID         int64             `json:"logID"`
	ApplicationID int64             `json:"applicationID"`
	Status        ApplicationStatus `json:"status"`
	AuditFields
}
