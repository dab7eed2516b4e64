package repositories

import (
	"context"

	"github.com/finflow/exchanger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ApplicationRepository persists deposit applications and their audit trail.
type ApplicationRepository interface {
	// CreateApplication inserts a new application in state pending together
	// with its first ApplicationLog row, returning the stored row.
	CreateApplication(ctx context.Context, app domain.Application) (*domain.Application, error)

	// SetPaymentID stores the provider-assigned payment identifier.
	SetPaymentID(ctx context.Context, applicationID int64, paymentID string) error

	// FindPendingByPaymentID returns the pending application with the given
	// provider payment id, or ErrNotFound. Non-pending applications are
	// deliberately invisible here: that is the settlement idempotency guard.
	FindPendingByPaymentID(ctx context.Context, paymentID string) (*domain.Application, error)

	// SettleApplication atomically marks the application completed, appends
	// the completed ApplicationLog row and credits the account balance.
	SettleApplication(ctx context.Context, applicationID int64, accountNumber string, amount decimal.Decimal) error

	// ListApplicationsByUserID returns the user's applications, newest first.
	ListApplicationsByUserID(ctx context.Context, userID string, limit int) ([]domain.Application, error)
}
