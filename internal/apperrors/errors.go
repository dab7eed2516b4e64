package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrForbidden indicates that the requester does not own the resource it is acting on.
var ErrForbidden = errors.New("operation not permitted for this user")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInsufficientFunds indicates that an account balance cannot cover the requested debit.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrInvariantViolation indicates the storage layer refused a mutation that would
// break a ledger invariant (e.g. a negative balance). Should be unreachable when
// service-level preconditions hold; the store defends independently.
var ErrInvariantViolation = errors.New("ledger invariant violation")

// ErrUpstream indicates a payment-provider or other external collaborator failure.
var ErrUpstream = errors.New("upstream provider error")

// ErrSettlementRejected indicates the provider reported a non-success payment
// status after capture was requested.
var ErrSettlementRejected = errors.New("settlement rejected by provider")

// ErrInvalidPayload indicates a malformed inbound notification body.
var ErrInvalidPayload = errors.New("invalid notification payload")

// ErrRateUnavailable indicates the rate oracle has no rate for a currency leg.
var ErrRateUnavailable = errors.New("exchange rate unavailable")

// ErrInternal is a generic error for unexpected internal failures.
var ErrInternal = errors.New("internal error")

// AppError carries an HTTP-ish status code alongside the wrapped cause, for
// repository-layer failures that handlers map onto responses.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError wrapping the given cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError that matches errors.Is(err, ErrNotFound).
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}
